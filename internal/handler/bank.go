package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/loanlinker/api/internal/config"
	"github.com/loanlinker/api/internal/context"
	"github.com/loanlinker/api/internal/errHandler"
	"github.com/loanlinker/api/internal/helper"
	"github.com/loanlinker/api/internal/models"
	"github.com/loanlinker/api/internal/repository"
	"github.com/loanlinker/api/internal/request"
	"github.com/loanlinker/api/internal/response"
	"github.com/loanlinker/api/internal/stream"
	"github.com/loanlinker/api/internal/validator"
)

type BankHandler struct {
	UserRepo        repository.UserRepository
	ApplicationRepo repository.ApplicationRepository
	OfferRepo       repository.OfferRepository
	ErrHandler      *errHandler.ErrorRepository
	Helper          *helper.HelperRepository
	Kafka           *stream.KafkaStream
	Config          *config.Config
}

func NewBankHandler(handler *BankHandler) *BankHandler {
	return &BankHandler{
		UserRepo:        handler.UserRepo,
		ApplicationRepo: handler.ApplicationRepo,
		OfferRepo:       handler.OfferRepo,
		ErrHandler:      handler.ErrHandler,
		Helper:          handler.Helper,
		Kafka:           handler.Kafka,
		Config:          handler.Config,
	}
}

// LeadResponseData is the bank-facing projection of an application. The
// applicant block is anonymized: income, employment, credit score and city
// are what a bank prices against, and nothing that identifies or reaches the
// borrower is ever included here. Unlock state changes what the borrower
// sees, never what the bank sees.
type LeadResponseData struct {
	ID             string              `json:"id"`
	LoanType       string              `json:"loan_type"`
	Amount         float64             `json:"amount"`
	TenureMonths   int                 `json:"tenure_months"`
	Purpose        string              `json:"purpose"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      *time.Time          `json:"updated_at,omitempty"`
	Applicant      AnonymizedApplicant `json:"applicant"`
	HasOfferedByMe bool                `json:"has_offered_by_me"`
}

type AnonymizedApplicant struct {
	Income         float64 `json:"income"`
	EmploymentType string  `json:"employment_type"`
	CreditScore    string  `json:"credit_score"`
	City           string  `json:"city"`
	Masked         bool    `json:"masked"`
}

// HandleLeads lists every application whose owner has completed KYC.
func (h *BankHandler) HandleLeads(w http.ResponseWriter, r *http.Request) {
	bank := context.ContextGetAuthenticatedUser(r)

	apps, err := h.ApplicationRepo.GetAll()
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	leads := make([]LeadResponseData, 0, len(apps))

	for i := range apps {
		applicant, found, err := h.UserRepo.GetOne(apps[i].UserID)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}

		if !found || applicant.KycStatus != repository.KycStatusVerified {
			continue
		}

		offered, err := h.OfferRepo.ExistsForBank(apps[i].ID, bank.ID)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}

		lead := LeadResponseData{
			ID:             apps[i].ID,
			LoanType:       apps[i].LoanType,
			Amount:         apps[i].Amount,
			TenureMonths:   apps[i].TenureMonths,
			Purpose:        apps[i].Purpose,
			CreatedAt:      apps[i].CreatedAt,
			HasOfferedByMe: offered,
			Applicant: AnonymizedApplicant{
				Income:         applicant.KycData.Income,
				EmploymentType: applicant.KycData.EmploymentType,
				CreditScore:    formatCreditScore(applicant.KycData.CreditScore),
				City:           applicant.KycData.City,
				Masked:         true,
			},
		}

		if apps[i].UpdatedAt.Valid {
			at := apps[i].UpdatedAt.Time
			lead.UpdatedAt = &at
		}

		leads = append(leads, lead)
	}

	message := "Data retrieved successfully"
	err = response.JSONOkResponse(w, map[string]any{"leads": leads}, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func formatCreditScore(score int) string {
	if score == 0 {
		return "N/A"
	}
	return strconv.Itoa(score)
}

func (h *BankHandler) HandleSubmitOffer(w http.ResponseWriter, r *http.Request) {
	bank := context.ContextGetAuthenticatedUser(r)

	var input struct {
		ApplicationID string              `json:"application_id"`
		Eligible      bool                `json:"eligible"`
		InterestRate  float64             `json:"interest_rate"`
		EMI           float64             `json:"emi"`
		MaxAmount     float64             `json:"max_amount"`
		Remarks       string              `json:"remarks"`
		Validator     validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.ApplicationID), "Application id is required")
	if input.Eligible {
		input.Validator.Check(input.InterestRate > 0, "Interest rate is required for an eligible offer")
		input.Validator.Check(input.EMI > 0, "EMI is required for an eligible offer")
		input.Validator.Check(input.MaxAmount > 0, "Maximum amount is required for an eligible offer")
	}

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	_, found, err := h.ApplicationRepo.GetOne(input.ApplicationID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found {
		h.ErrHandler.NotFound(w, r)
		return
	}

	if !h.Config.Offers.AllowResubmission {
		offered, err := h.OfferRepo.ExistsForBank(input.ApplicationID, bank.ID)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}

		if offered {
			h.ErrHandler.Conflict(w, r, "You have already submitted an offer for this application")
			return
		}
	}

	offer := &models.LoanOffer{
		ApplicationID: input.ApplicationID,
		BankID:        bank.ID,
		// Snapshot of the bank's display name; a later rename must not
		// rewrite history on offers the borrower has already seen.
		BankName:     bank.Name,
		Eligible:     input.Eligible,
		InterestRate: input.InterestRate,
		EMI:          input.EMI,
		MaxAmount:    input.MaxAmount,
		Remarks:      input.Remarks,
	}

	offerID, err := h.OfferRepo.Insert(offer)
	if err != nil {
		// Two submissions from the same bank can race past the existence
		// check above; the unique index catches the loser here.
		if errors.Is(err, repository.ErrDuplicateOffer) {
			h.ErrHandler.Conflict(w, r, "You have already submitted an offer for this application")
			return
		}
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	event := &OfferSubmittedEvent{
		ApplicationID: input.ApplicationID,
		OfferID:       offerID,
		BankName:      bank.Name,
		Eligible:      input.Eligible,
	}

	jsonMessage, err := json.Marshal(event)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	go h.Kafka.ProduceMessage(OfferSubmittedTopic, string(jsonMessage))

	offer.ID = offerID
	offer.CreatedAt = time.Now()

	data := map[string]any{
		"offer": newOfferResponse(offer),
	}

	message := "Offer submitted successfully"
	err = response.JSONCreatedResponse(w, data, message)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *BankHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	bank := context.ContextGetAuthenticatedUser(r)

	var input struct {
		Name    string `json:"name"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	err = h.UserRepo.UpdateBankProfile(bank.ID, input.Name, input.Phone, input.Address)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	updated, _, err := h.UserRepo.GetOne(bank.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]any{
		"user": newUserResponse(updated),
	}

	err = response.JSONOkResponse(w, data, "Profile updated successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
