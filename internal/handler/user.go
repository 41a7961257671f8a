package handler

import (
	"net/http"

	"github.com/loanlinker/api/internal/context"
	"github.com/loanlinker/api/internal/errHandler"
	"github.com/loanlinker/api/internal/file"
	"github.com/loanlinker/api/internal/helper"
	"github.com/loanlinker/api/internal/models"
	"github.com/loanlinker/api/internal/repository"
	"github.com/loanlinker/api/internal/request"
	"github.com/loanlinker/api/internal/response"
	"github.com/loanlinker/api/internal/validator"
)

type UserHandler struct {
	UserRepo        repository.UserRepository
	ApplicationRepo repository.ApplicationRepository
	OfferRepo       repository.OfferRepository
	ErrHandler      *errHandler.ErrorRepository
	Helper          *helper.HelperRepository
	FileUploader    *file.FileUploader
}

func NewUserHandler(handler *UserHandler) *UserHandler {
	return &UserHandler{
		UserRepo:        handler.UserRepo,
		ApplicationRepo: handler.ApplicationRepo,
		OfferRepo:       handler.OfferRepo,
		ErrHandler:      handler.ErrHandler,
		Helper:          handler.Helper,
		FileUploader:    handler.FileUploader,
	}
}

// KYC submissions are taken at face value and mark the account verified
// immediately; identity checks against the underlying registries are handled
// by a downstream process, not this service.
func (h *UserHandler) HandleSubmitKyc(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	var input struct {
		Aadhaar        string              `json:"aadhaar"`
		Pan            string              `json:"pan"`
		Income         float64             `json:"income"`
		EmploymentType string              `json:"employment_type"`
		City           string              `json:"city"`
		CreditScore    int                 `json:"credit_score"`
		Address        string              `json:"address"`
		Company        string              `json:"company"`
		Validator      validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Aadhaar), "Aadhaar number is required")
	input.Validator.Check(validator.IsAadhaar(input.Aadhaar), "Must be a valid 12-digit Aadhaar number")
	input.Validator.Check(validator.NotBlank(input.Pan), "PAN is required")
	input.Validator.Check(validator.IsPan(input.Pan), "Must be a valid PAN")
	input.Validator.Check(input.Income > 0, "Income is required")
	input.Validator.Check(validator.NotBlank(input.EmploymentType), "Employment type is required")
	input.Validator.Check(validator.NotBlank(input.City), "City is required")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	kycData := models.KycData{
		Aadhaar:        input.Aadhaar,
		Pan:            input.Pan,
		Income:         input.Income,
		EmploymentType: input.EmploymentType,
		City:           input.City,
		CreditScore:    input.CreditScore,
		Address:        input.Address,
		Company:        input.Company,
	}

	err = h.UserRepo.SubmitKyc(user.ID, kycData)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "KYC submitted successfully"
	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	var input struct {
		Phone   string          `json:"phone"`
		KycData *models.KycData `json:"kyc_data"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	err = h.UserRepo.MergeKycData(user.ID, input.Phone, input.KycData)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	updated, _, err := h.UserRepo.GetOne(user.ID)
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

func (h *UserHandler) HandleProfilePicture(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	// 5MB cap; profile pictures have no business being larger.
	err := r.ParseMultipartForm(5 << 20)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	uploaded, _, err := r.FormFile("image")
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}
	defer uploaded.Close()

	url, err := h.FileUploader.UploadFile(uploaded, "profiles")
	if err != nil {
		h.ErrHandler.UpstreamFailure(w, r, err)
		return
	}

	err = h.UserRepo.ChangeProfilePicture(user.ID, url)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]any{
		"image": url,
	}

	err = response.JSONOkResponse(w, data, "Profile picture updated", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
