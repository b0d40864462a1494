package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sjpiano/paytrack/internal/application/directory"
	"github.com/sjpiano/paytrack/internal/application/ledger"
	"github.com/sjpiano/paytrack/internal/application/receipt"
	"github.com/sjpiano/paytrack/internal/application/reconcile"
	"github.com/sjpiano/paytrack/internal/config"
	"github.com/sjpiano/paytrack/internal/infrastructure/dynamo"
	"github.com/sjpiano/paytrack/internal/infrastructure/gmail"
	"github.com/sjpiano/paytrack/internal/infrastructure/pdf"
	s3infra "github.com/sjpiano/paytrack/internal/infrastructure/s3"
	"github.com/sjpiano/paytrack/internal/infrastructure/smtp"
	"github.com/sjpiano/paytrack/internal/infrastructure/sns"
	transportmcp "github.com/sjpiano/paytrack/internal/transport/mcp"
)

// main serves the payment tools over MCP stdio.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}
	log.SetPrefix("[MCP] ")

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	mailSource, err := gmail.NewSource(ctx, cfg)
	if err != nil {
		log.Fatalf("gmail source: %v", err)
	}

	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	var alerter sns.Alerter
	if a, err := sns.NewAlerter(cfg); err == nil {
		alerter = a
	} else {
		log.Printf("WARN: SNS alerter not available: %v", err)
	}

	directorySvc := directory.NewService(dynamo.NewStudentRepo(dynamoClient, cfg.DynamoTables.Students))
	ledgerSvc := ledger.NewService(dynamo.NewInvoiceRepo(dynamoClient, cfg.DynamoTables.Invoices))
	receiptSvc := receipt.NewService(receipt.ServiceDeps{
		Renderer:    pdf.NewRenderer(cfg),
		Mailer:      smtp.NewMailer(cfg),
		Archive:     s3Store,
		ReceiptRepo: dynamo.NewReceiptRepo(dynamoClient, cfg.DynamoTables.Receipts),
		AcademyName: cfg.AcademyName,
	})
	reconcileSvc := reconcile.NewService(reconcile.ServiceDeps{
		Mail:    mailSource,
		Matcher: directorySvc,
		Ledger:  ledgerSvc,
		Issuer:  receiptSvc,
		Alerter: alerter,
	})

	if err := transportmcp.Serve(ctx, transportmcp.Deps{
		Mail:       mailSource,
		Directory:  directorySvc,
		Ledger:     ledgerSvc,
		Receipts:   receiptSvc,
		Reconciler: reconcileSvc,
	}); err != nil {
		log.Fatalf("failed to serve MCP: %v", err)
	}
}
