package worker

import (
	"encoding/json"
	"log"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/loanlinker/api/internal/funcs"
	"github.com/loanlinker/api/internal/handler"
	"github.com/loanlinker/api/internal/stream"
)

// UnlockReceiptWorker sends the payment receipt after a borrower unlocks an
// application's offers. The unlock itself has already been committed by the
// time this event exists; a lost receipt is an annoyance, not data loss.
func (wk *Worker) UnlockReceiptWorker() {
	consumer, err := wk.KafkaStream.CreateConsumer(&stream.StreamConsumer{
		GroupId: unlockReceiptGroupID,
		Topic:   handler.OffersUnlockedTopic,
	})

	if err != nil {
		log.Fatalf("Error creating consumer: %v", err)
	}
	for {
		event := consumer.Poll(100) // Poll every 100ms
		switch e := event.(type) {
		case *kafka.Message:
			log.Printf("Unlock message received on %s: %s\n", e.TopicPartition, string(e.Value))

			var unlockEvent handler.OffersUnlockedEvent
			json.Unmarshal(e.Value, &unlockEvent)

			wk.sendUnlockReceipt(&unlockEvent)
		case kafka.Error:
			log.Printf("Error: %v\n", e)
		default:
			// Handle other events if needed
		}
	}
}

func (wk *Worker) sendUnlockReceipt(unlockEvent *handler.OffersUnlockedEvent) {
	user, found, err := wk.DB.User().GetOne(unlockEvent.UserID)
	if err != nil || !found {
		log.Printf("Error fetching user for unlock receipt: %v", err)
		return
	}

	app, found, err := wk.DB.Application().GetOne(unlockEvent.ApplicationID)
	if err != nil || !found {
		log.Printf("Error fetching application for unlock receipt: %v", err)
		return
	}

	emailData := wk.Helper.NewEmailData()
	emailData["Name"] = user.Name
	emailData["LoanType"] = app.LoanType
	emailData["Amount"] = funcs.FormatAmount(unlockEvent.Amount)
	emailData["ReferenceNumber"] = unlockEvent.ReferenceNumber

	err = wk.Mailer.Send(user.Email, emailData, "unlock-receipt.tmpl")
	if err != nil {
		log.Printf("Error sending unlock receipt email: %v", err)
	}
}
