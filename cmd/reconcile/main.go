package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/sjpiano/paytrack/internal/application/directory"
	"github.com/sjpiano/paytrack/internal/application/ledger"
	"github.com/sjpiano/paytrack/internal/application/receipt"
	"github.com/sjpiano/paytrack/internal/application/reconcile"
	"github.com/sjpiano/paytrack/internal/config"
	"github.com/sjpiano/paytrack/internal/domain"
	"github.com/sjpiano/paytrack/internal/infrastructure/dynamo"
	"github.com/sjpiano/paytrack/internal/infrastructure/gmail"
	"github.com/sjpiano/paytrack/internal/infrastructure/pdf"
	s3infra "github.com/sjpiano/paytrack/internal/infrastructure/s3"
	"github.com/sjpiano/paytrack/internal/infrastructure/smtp"
	"github.com/sjpiano/paytrack/internal/infrastructure/sns"
)

// main runs one reconciliation and prints the report. Intended for cron.
func main() {
	jsonOut := flag.Bool("json", false, "print the report as JSON")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	ctx := context.Background()

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
	svc := reconcile.NewService(reconcile.ServiceDeps{
		Mail:    mailSource,
		Matcher: directorySvc,
		Ledger:  ledgerSvc,
		Issuer:  receiptSvc,
		Alerter: alerter,
	})

	report, err := svc.Run(ctx)
	if err != nil {
		log.Fatalf("reconciliation failed: %v", err)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Fatalf("encode report: %v", err)
		}
	} else {
		printReport(report)
	}

	if report.Errors() > 0 {
		os.Exit(1)
	}
}

func printReport(r *domain.Report) {
	fmt.Printf("run at %s, status %s, %d notification(s)\n", r.RunAt.Format("2006-01-02 15:04:05 MST"), r.Status, r.Found)
	for _, out := range r.Outcomes {
		payer := "(unknown payer)"
		if out.Notification.PayerName != nil {
			payer = *out.Notification.PayerName
		}
		line := fmt.Sprintf("  %-9s %s", out.Disposition, payer)
		if out.InvoiceNumber != "" {
			line += " invoice " + out.InvoiceNumber
		}
		if out.Reason != "" {
			line += " (" + out.Reason + ")"
		}
		fmt.Println(line)
	}
}
