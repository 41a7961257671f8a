package handler

import (
	"net/http"

	"github.com/loanlinker/api/internal/context"
	"github.com/loanlinker/api/internal/errHandler"
	"github.com/loanlinker/api/internal/helper"
	"github.com/loanlinker/api/internal/models"
	"github.com/loanlinker/api/internal/repository"
	"github.com/loanlinker/api/internal/request"
	"github.com/loanlinker/api/internal/response"
	"github.com/loanlinker/api/internal/validator"
)

// Loan categories offered on the platform.
var loanTypes = []string{"personal", "home", "car", "business", "education", "gold"}

type ApplicationHandler struct {
	UserRepo        repository.UserRepository
	ApplicationRepo repository.ApplicationRepository
	OfferRepo       repository.OfferRepository
	ErrHandler      *errHandler.ErrorRepository
	Helper          *helper.HelperRepository
}

func NewApplicationHandler(handler *ApplicationHandler) *ApplicationHandler {
	return &ApplicationHandler{
		UserRepo:        handler.UserRepo,
		ApplicationRepo: handler.ApplicationRepo,
		OfferRepo:       handler.OfferRepo,
		ErrHandler:      handler.ErrHandler,
		Helper:          handler.Helper,
	}
}

type applicationInput struct {
	LoanType         string                `json:"loan_type"`
	Amount           float64               `json:"amount"`
	TenureMonths     int                   `json:"tenure_months"`
	Purpose          string                `json:"purpose"`
	HasExistingLoans bool                  `json:"has_existing_loans"`
	ExistingLoans    []models.ExistingLoan `json:"existing_loans"`
	Validator        validator.Validator   `json:"-"`
}

func (input *applicationInput) validate() {
	input.Validator.Check(validator.NotBlank(input.LoanType), "Loan type is required")
	input.Validator.Check(validator.In(input.LoanType, loanTypes...), "Unknown loan type")
	input.Validator.Check(input.Amount > 0, "Amount must be greater than zero")
	input.Validator.Check(validator.Between(input.TenureMonths, 6, 360), "Tenure must be between 6 and 360 months")
	input.Validator.Check(validator.NotBlank(input.Purpose), "Purpose is required")

	if input.HasExistingLoans {
		input.Validator.Check(len(input.ExistingLoans) > 0, "Existing loans must be listed")
	}
}

// Only verified borrowers may request offers; banks price against the KYC
// declaration, so an unverified applicant has nothing to show them.
func (h *ApplicationHandler) HandleSubmitApplication(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	if user.KycStatus != repository.KycStatusVerified {
		h.ErrHandler.FailedValidation(w, r, []string{"KYC verification required"})
		return
	}

	var input applicationInput

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.validate()
	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	app := &models.LoanApplication{
		UserID:           user.ID,
		LoanType:         input.LoanType,
		Amount:           input.Amount,
		TenureMonths:     input.TenureMonths,
		Purpose:          input.Purpose,
		HasExistingLoans: input.HasExistingLoans,
		ExistingLoans:    input.ExistingLoans,
		Status:           repository.ApplicationStatusPending,
	}

	appID, err := h.ApplicationRepo.Insert(app)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	created, found, err := h.ApplicationRepo.GetOne(appID)
	if err != nil || !found {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]any{
		"applicationId": appID,
		"application":   newApplicationResponse(created, nil, false),
	}

	message := "Loan application submitted successfully"
	err = response.JSONCreatedResponse(w, data, message)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleMyApplications lists the caller's applications. Offer detail is
// withheld here until the application is unlocked or the caller holds a
// premium plan; a locked entry only reports how close it is to the unlock
// threshold. The gate lives on the server so a client cannot peel it off.
func (h *ApplicationHandler) HandleMyApplications(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	apps, err := h.ApplicationRepo.GetAllByUser(user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := make([]*ApplicationResponseData, len(apps))
	for i := range apps {
		offers, err := h.OfferRepo.GetAllByApplication(apps[i].ID)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}

		reveal := apps[i].Unlocked || user.IsPremium
		data[i] = newApplicationResponse(&apps[i], offers, reveal)
	}

	message := "Data retrieved successfully"
	err = response.JSONOkResponse(w, map[string]any{"applications": data}, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// An application is editable only while no bank has priced it. The first
// offer freezes the request so banks never bid against a moving target.
func (h *ApplicationHandler) HandleUpdateApplication(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	var input struct {
		ApplicationID string `json:"application_id"`
		applicationInput
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	app, found, err := h.ApplicationRepo.GetOne(input.ApplicationID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	// Not owned reads the same as missing; owners of other applications
	// learn nothing about this one.
	if !found || app.UserID != user.ID {
		h.ErrHandler.NotFound(w, r)
		return
	}

	offers, err := h.OfferRepo.GetAllByApplication(app.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if len(offers) > 0 {
		h.ErrHandler.Conflict(w, r, "Cannot edit an application that has already received offers")
		return
	}

	input.validate()
	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	app.LoanType = input.LoanType
	app.Amount = input.Amount
	app.TenureMonths = input.TenureMonths
	app.Purpose = input.Purpose
	app.HasExistingLoans = input.HasExistingLoans
	app.ExistingLoans = input.ExistingLoans

	err = h.ApplicationRepo.UpdateFields(app)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	updated, _, err := h.ApplicationRepo.GetOne(app.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]any{
		"application": newApplicationResponse(updated, nil, false),
	}

	err = response.JSONOkResponse(w, data, "Application updated successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
