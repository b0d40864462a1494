package sns

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/sjpiano/paytrack/internal/config"
)

// Alerter sends the operator an SMS when a run needs manual attention.
type Alerter interface {
	Alert(ctx context.Context, message string) error
}

type alerter struct {
	client *sns.Client
	phone  string
}

func NewAlerter(cfg *config.Config) (Alerter, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &alerter{client: sns.NewFromConfig(awsCfg), phone: cfg.OperatorPhone}, nil
}

func (a *alerter) Alert(ctx context.Context, message string) error {
	_, err := a.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: &a.phone,
		Message:     &message,
	})
	return err
}
