package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

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
	transporthttp "github.com/sjpiano/paytrack/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	ctx := context.Background()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	// Mailbox source for deposit notifications.
	mailSource, err := gmail.NewSource(ctx, cfg)
	if err != nil {
		log.Fatalf("gmail source: %v", err)
	}

	// S3 archive for receipt PDFs.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// SNS operator alerter (optional — graceful fallback).
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

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		Reconciler: reconcileSvc,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // a reconciliation run is synchronous
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
