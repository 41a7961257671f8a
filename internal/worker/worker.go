package worker

import (
	"context"

	"github.com/loanlinker/api/internal/helper"
	"github.com/loanlinker/api/internal/repository"
	"github.com/loanlinker/api/internal/smtp"
	"github.com/loanlinker/api/internal/stream"
)

type Worker struct {
	KafkaStream *stream.KafkaStream
	DB          repository.Database
	Ctx         context.Context
	Helper      *helper.HelperRepository
	Mailer      smtp.MailerInterface
}

const (
	// offerAlertGroupID is used for workers that react whenever a bank files
	// an offer on an application.
	offerAlertGroupID = "offer-alert-group"

	// unlockReceiptGroupID is used for workers that react when a borrower
	// pays the unlock fee.
	unlockReceiptGroupID = "unlock-receipt-group"
)

// Our workers typically need access to the store, the mailer and the kafka
// event stream; worker-specific dependencies can be passed as arguments to
// the individual worker.
func New(wk *Worker) *Worker {
	return &Worker{
		KafkaStream: wk.KafkaStream,
		DB:          wk.DB,
		Ctx:         wk.Ctx,
		Helper:      wk.Helper,
		Mailer:      wk.Mailer,
	}
}
