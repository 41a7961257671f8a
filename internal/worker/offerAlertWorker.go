package worker

import (
	"encoding/json"
	"log"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/loanlinker/api/internal/config"
	"github.com/loanlinker/api/internal/handler"
	"github.com/loanlinker/api/internal/stream"
)

// OfferAlertWorker tells the borrower a bank has responded to their
// application. It never includes the offer terms: those stay behind the
// paywall until the application is unlocked. When the eligible-offer count
// reaches the unlock threshold it also sends the ready-to-compare nudge.
func (wk *Worker) OfferAlertWorker() {
	consumer, err := wk.KafkaStream.CreateConsumer(&stream.StreamConsumer{
		GroupId: offerAlertGroupID,
		Topic:   handler.OfferSubmittedTopic,
	})

	if err != nil {
		log.Fatalf("Error creating consumer: %v", err)
	}
	for {
		event := consumer.Poll(100) // Poll every 100ms
		switch e := event.(type) {
		case *kafka.Message:
			log.Printf("Offer message received on %s: %s\n", e.TopicPartition, string(e.Value))

			var offerEvent handler.OfferSubmittedEvent
			json.Unmarshal(e.Value, &offerEvent)

			wk.alertApplicant(&offerEvent)
		case kafka.Error:
			log.Printf("Error: %v\n", e)
		default:
			// Handle other events if needed
		}
	}
}

func (wk *Worker) alertApplicant(offerEvent *handler.OfferSubmittedEvent) {
	app, found, err := wk.DB.Application().GetOne(offerEvent.ApplicationID)
	if err != nil || !found {
		log.Printf("Error fetching application for offer alert: %v", err)
		return
	}

	applicant, found, err := wk.DB.User().GetOne(app.UserID)
	if err != nil || !found {
		log.Printf("Error fetching applicant for offer alert: %v", err)
		return
	}

	emailData := wk.Helper.NewEmailData()
	emailData["Name"] = applicant.Name
	emailData["LoanType"] = app.LoanType

	err = wk.Mailer.Send(applicant.Email, emailData, "new-offer-alert.tmpl")
	if err != nil {
		log.Printf("Error sending offer alert email: %v", err)
	}

	if !offerEvent.Eligible {
		return
	}

	offers, err := wk.DB.Offer().GetAllByApplication(app.ID)
	if err != nil {
		log.Printf("Error counting offers for ready alert: %v", err)
		return
	}

	eligible := 0
	for i := range offers {
		if offers[i].Eligible {
			eligible++
		}
	}

	// The nudge goes out exactly once, when this offer is the one that
	// crosses the threshold. Later offers only trigger the plain alert.
	if eligible != config.UnlockOfferThreshold || app.Unlocked {
		return
	}

	emailData = wk.Helper.NewEmailData()
	emailData["Name"] = applicant.Name
	emailData["LoanType"] = app.LoanType
	emailData["OfferCount"] = eligible

	err = wk.Mailer.Send(applicant.Email, emailData, "offers-ready.tmpl")
	if err != nil {
		log.Printf("Error sending offers ready email: %v", err)
	}
}
