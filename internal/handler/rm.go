package handler

import (
	"net/http"
	"time"

	"github.com/loanlinker/api/internal/context"
	"github.com/loanlinker/api/internal/errHandler"
	"github.com/loanlinker/api/internal/models"
	"github.com/loanlinker/api/internal/repository"
	"github.com/loanlinker/api/internal/request"
	"github.com/loanlinker/api/internal/response"
	"github.com/loanlinker/api/internal/validator"
)

type RMHandler struct {
	UserRepo        repository.UserRepository
	ApplicationRepo repository.ApplicationRepository
	OfferRepo       repository.OfferRepository
	ErrHandler      *errHandler.ErrorRepository
}

func NewRMHandler(handler *RMHandler) *RMHandler {
	return &RMHandler{
		UserRepo:        handler.UserRepo,
		ApplicationRepo: handler.ApplicationRepo,
		OfferRepo:       handler.OfferRepo,
		ErrHandler:      handler.ErrHandler,
	}
}

// RMLeadResponseData is the relationship manager's view of an assigned
// application. Unlike the bank projection, it carries the applicant's full
// contact detail and KYC declaration: RMs walk borrowers through document
// collection and bank meetings, which cannot be done anonymously.
type RMLeadResponseData struct {
	ID               string                `json:"id"`
	LoanType         string                `json:"loan_type"`
	Amount           float64               `json:"amount"`
	TenureMonths     int                   `json:"tenure_months"`
	Purpose          string                `json:"purpose"`
	Status           string                `json:"status"`
	HasExistingLoans bool                  `json:"has_existing_loans"`
	ExistingLoans    []models.ExistingLoan `json:"existing_loans"`
	Offers           []OfferResponseData   `json:"offers"`
	RMStatus         string                `json:"rm_status,omitempty"`
	RMNotes          string                `json:"rm_notes,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	Applicant        FullApplicant         `json:"applicant"`
}

type FullApplicant struct {
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Phone   string          `json:"phone"`
	KycData *models.KycData `json:"kyc_data"`
}

func (h *RMHandler) HandleLeads(w http.ResponseWriter, r *http.Request) {
	rm := context.ContextGetAuthenticatedUser(r)

	apps, err := h.ApplicationRepo.GetAllByAssignedRM(rm.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	leads := make([]RMLeadResponseData, 0, len(apps))

	for i := range apps {
		applicant, found, err := h.UserRepo.GetOne(apps[i].UserID)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}

		if !found {
			continue
		}

		offers, err := h.OfferRepo.GetAllByApplication(apps[i].ID)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}

		kyc := applicant.KycData
		lead := RMLeadResponseData{
			ID:               apps[i].ID,
			LoanType:         apps[i].LoanType,
			Amount:           apps[i].Amount,
			TenureMonths:     apps[i].TenureMonths,
			Purpose:          apps[i].Purpose,
			Status:           apps[i].Status,
			HasExistingLoans: apps[i].HasExistingLoans,
			ExistingLoans:    apps[i].ExistingLoans,
			Offers:           newOfferResponseList(offers),
			CreatedAt:        apps[i].CreatedAt,
			Applicant: FullApplicant{
				Name:    applicant.Name,
				Email:   applicant.Email,
				Phone:   applicant.Phone,
				KycData: &kyc,
			},
		}

		if apps[i].RMStatus.Valid {
			lead.RMStatus = apps[i].RMStatus.String
		}
		if apps[i].RMNotes.Valid {
			lead.RMNotes = apps[i].RMNotes.String
		}

		leads = append(leads, lead)
	}

	message := "Data retrieved successfully"
	err = response.JSONOkResponse(w, map[string]any{"leads": leads}, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// The status value is advisory: dashboards know the values in
// repository.RMStatus*, but an unrecognized string is stored as-is rather
// than rejected.
func (h *RMHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	rm := context.ContextGetAuthenticatedUser(r)

	var input struct {
		ApplicationID string              `json:"application_id"`
		Status        string              `json:"status"`
		Notes         string              `json:"notes"`
		Validator     validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.ApplicationID), "Application id is required")
	input.Validator.Check(validator.NotBlank(input.Status), "Status is required")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	app, found, err := h.ApplicationRepo.GetOne(input.ApplicationID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found || !app.AssignedRM.Valid || app.AssignedRM.String != rm.ID {
		h.ErrHandler.Forbidden(w, r)
		return
	}

	err = h.ApplicationRepo.UpdateRMStatus(app.ID, input.Status, input.Notes)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "Status updated successfully"
	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
