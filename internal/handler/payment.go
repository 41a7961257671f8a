package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/loanlinker/api/internal/config"
	"github.com/loanlinker/api/internal/context"
	"github.com/loanlinker/api/internal/errHandler"
	"github.com/loanlinker/api/internal/funcs"
	"github.com/loanlinker/api/internal/helper"
	"github.com/loanlinker/api/internal/models"
	"github.com/loanlinker/api/internal/payment"
	"github.com/loanlinker/api/internal/repository"
	"github.com/loanlinker/api/internal/request"
	"github.com/loanlinker/api/internal/response"
	"github.com/loanlinker/api/internal/smtp"
	"github.com/loanlinker/api/internal/stream"
	"github.com/loanlinker/api/internal/validator"

	"github.com/google/uuid"
)

type PaymentHandler struct {
	UserRepo        repository.UserRepository
	ApplicationRepo repository.ApplicationRepository
	OfferRepo       repository.OfferRepository
	TransactionRepo repository.TransactionRepository
	ErrHandler      *errHandler.ErrorRepository
	Helper          *helper.HelperRepository
	Mailer          smtp.MailerInterface
	Kafka           *stream.KafkaStream
	Verifier        *payment.Verifier
}

func NewPaymentHandler(handler *PaymentHandler) *PaymentHandler {
	return &PaymentHandler{
		UserRepo:        handler.UserRepo,
		ApplicationRepo: handler.ApplicationRepo,
		OfferRepo:       handler.OfferRepo,
		TransactionRepo: handler.TransactionRepo,
		ErrHandler:      handler.ErrHandler,
		Helper:          handler.Helper,
		Mailer:          handler.Mailer,
		Kafka:           handler.Kafka,
		Verifier:        handler.Verifier,
	}
}

// HandleUnlockOffers takes a completed checkout and reveals the offer
// comparison for one application. The flow is deliberately ordered: verify
// the payment reference, flip the unlock flag, and only record a transaction
// when this request is the one that flipped it. Repeating the call on an
// already-unlocked application returns the offers again without charging.
func (h *PaymentHandler) HandleUnlockOffers(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	var input struct {
		ApplicationID    string              `json:"application_id"`
		PaymentReference string              `json:"payment_reference"`
		Validator        validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.ApplicationID), "Application id is required")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	app, found, err := h.ApplicationRepo.GetOne(input.ApplicationID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found || app.UserID != user.ID {
		h.ErrHandler.NotFound(w, r)
		return
	}

	offers, err := h.OfferRepo.GetAllByApplication(app.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	// Premium members already see everything; accepting a payment here
	// would be charging for nothing.
	if user.IsPremium {
		data := map[string]any{
			"application": newApplicationResponse(app, offers, true),
		}
		err = response.JSONOkResponse(w, data, "Offers available with your premium plan", nil)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
		}
		return
	}

	if !app.Unlocked {
		err = h.Verifier.VerifyAndConsume(input.PaymentReference)
		switch {
		case errors.Is(err, payment.ErrInvalidReference):
			h.ErrHandler.FailedValidation(w, r, []string{"A valid payment reference is required"})
			return
		case errors.Is(err, payment.ErrReferenceUsed):
			h.ErrHandler.Conflict(w, r, "This payment reference has already been used")
			return
		case err != nil:
			h.ErrHandler.ServerError(w, r, err)
			return
		}
	}

	flipped, err := h.ApplicationRepo.Unlock(app.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	// Only the request that actually flipped the flag records revenue; a
	// concurrent duplicate finds the flag already set and charges nothing.
	if flipped {
		transaction := &models.Transaction{
			UserID:           user.ID,
			Type:             repository.TransactionTypeUnlock,
			Amount:           config.UnlockPrice,
			ApplicationID:    sql.NullString{String: app.ID, Valid: true},
			PaymentReference: input.PaymentReference,
			ReferenceNumber:  uuid.New().String(),
		}

		_, err = h.TransactionRepo.Insert(transaction)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}

		event := &OffersUnlockedEvent{
			ApplicationID:   app.ID,
			UserID:          user.ID,
			Amount:          config.UnlockPrice,
			ReferenceNumber: transaction.ReferenceNumber,
		}

		jsonMessage, err := json.Marshal(event)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}

		go h.Kafka.ProduceMessage(OffersUnlockedTopic, string(jsonMessage))
	}

	unlocked, _, err := h.ApplicationRepo.GetOne(app.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]any{
		"application": newApplicationResponse(unlocked, offers, true),
	}

	message := "Offers unlocked successfully"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *PaymentHandler) HandleUpgradePremium(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	var input struct {
		Plan             string              `json:"plan"`
		PaymentReference string              `json:"payment_reference"`
		Validator        validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	price, known := config.PlanPrices[input.Plan]

	input.Validator.Check(validator.NotBlank(input.Plan), "Plan is required")
	input.Validator.Check(known, "Unknown premium plan")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	err = h.Verifier.VerifyAndConsume(input.PaymentReference)
	switch {
	case errors.Is(err, payment.ErrInvalidReference):
		h.ErrHandler.FailedValidation(w, r, []string{"A valid payment reference is required"})
		return
	case errors.Is(err, payment.ErrReferenceUsed):
		h.ErrHandler.Conflict(w, r, "This payment reference has already been used")
		return
	case err != nil:
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	err = h.UserRepo.UpgradePremium(user.ID, input.Plan)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	transaction := &models.Transaction{
		UserID:           user.ID,
		Type:             repository.TransactionTypePremium,
		Amount:           price,
		Plan:             sql.NullString{String: input.Plan, Valid: true},
		PaymentReference: input.PaymentReference,
		ReferenceNumber:  uuid.New().String(),
	}

	_, err = h.TransactionRepo.Insert(transaction)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	plan := input.Plan
	h.Helper.BackgroundTask(r, func() error {
		emailData := h.Helper.NewEmailData()
		emailData["Name"] = user.Name
		emailData["Plan"] = plan
		emailData["Amount"] = funcs.FormatAmount(price)
		emailData["ReferenceNumber"] = transaction.ReferenceNumber

		err := h.Mailer.Send(user.Email, emailData, "premium-receipt.tmpl")
		if err != nil {
			log.Printf("Error sending premium receipt email: %v", err)
			return err
		}

		return nil
	})

	upgraded, _, err := h.UserRepo.GetOne(user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]any{
		"user": newUserResponse(upgraded),
		"transaction": map[string]any{
			"reference_number": transaction.ReferenceNumber,
			"amount":           price,
			"plan":             plan,
		},
	}

	message := "Premium plan activated successfully"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
