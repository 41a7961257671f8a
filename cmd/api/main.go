package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/loanlinker/api/internal/app"
	"github.com/loanlinker/api/internal/seeder"
	"github.com/loanlinker/api/internal/version"
	"github.com/loanlinker/api/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	err := run(logger)
	if err != nil {
		trace := string(debug.Stack())
		logger.Error(err.Error(), "trace", trace)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	showVersion := flag.Bool("version", false, "display version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("version: %s\n", version.Get())
		return nil
	}

	application, err := app.NewApplication(logger)
	if err != nil {
		return err
	}
	defer application.DB.Close()
	defer application.Cache.Close()

	// The platform must never boot without an operator account.
	seeder.New(application.DB, &application.Config).Run()

	workers := worker.New(&worker.Worker{
		KafkaStream: application.Kafka,
		DB:          application.DB,
		Ctx:         context.Background(),
		Helper:      application.Helper,
		Mailer:      application.Mailer,
	})

	go workers.OfferAlertWorker()
	go workers.UnlockReceiptWorker()

	return application.ServeHTTP()
}
