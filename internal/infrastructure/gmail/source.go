package gmail

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/sjpiano/paytrack/internal/application/extract"
	"github.com/sjpiano/paytrack/internal/config"
)

const maxResults = 50

// Source lists deposit-notification messages from a Gmail mailbox.
type Source struct {
	svc *gmail.Service
	now func() time.Time
}

// NewSource builds a Gmail client from the OAuth client-secrets file and a
// previously authorized token file (the same two files the legacy tracker
// used). Interactive authorization is out of scope here; the token must
// already exist.
func NewSource(ctx context.Context, cfg *config.Config) (*Source, error) {
	secrets, err := os.ReadFile(cfg.GmailCredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read gmail credentials: %w", err)
	}
	oauthCfg, err := google.ConfigFromJSON(secrets, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse gmail credentials: %w", err)
	}

	tokBytes, err := os.ReadFile(cfg.GmailTokenFile)
	if err != nil {
		return nil, fmt.Errorf("read gmail token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(tokBytes, &tok); err != nil {
		return nil, fmt.Errorf("parse gmail token: %w", err)
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, &tok)))
	if err != nil {
		return nil, fmt.Errorf("build gmail service: %w", err)
	}
	return &Source{svc: svc, now: time.Now}, nil
}

// ListMonthlyDepositNotifications returns every Interac e-Transfer deposit
// email received from the start of the current calendar month (UTC) to now.
func (s *Source) ListMonthlyDepositNotifications(ctx context.Context) ([]extract.RawMessage, error) {
	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	query := fmt.Sprintf(`subject:"Interac e-Transfer" subject:"automatically deposited" after:%d`, monthStart.Unix())
	list, err := s.svc.Users.Messages.List("me").Q(query).MaxResults(maxResults).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gmail list: %w", err)
	}

	raws := []extract.RawMessage{}
	for _, ref := range list.Messages {
		msg, err := s.svc.Users.Messages.Get("me", ref.Id).
			Format("metadata").
			MetadataHeaders("Subject", "Reply-To", "Date").
			Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("gmail get %s: %w", ref.Id, err)
		}

		subject := header(msg, "Subject")
		// The query matches subject terms loosely; re-check the deposit
		// marker before handing the message to the pipeline.
		if !strings.Contains(strings.ToLower(subject), "automatically deposited") {
			continue
		}

		raws = append(raws, extract.RawMessage{
			MessageID: ref.Id,
			Subject:   subject,
			ReplyTo:   header(msg, "Reply-To"),
			Date:      header(msg, "Date"),
		})
	}
	return raws, nil
}

func header(msg *gmail.Message, name string) string {
	if msg.Payload == nil {
		return ""
	}
	for _, h := range msg.Payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}
