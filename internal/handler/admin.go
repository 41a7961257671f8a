package handler

import (
	"log"
	"net/http"

	"github.com/loanlinker/api/internal/errHandler"
	"github.com/loanlinker/api/internal/helper"
	"github.com/loanlinker/api/internal/models"
	"github.com/loanlinker/api/internal/repository"
	"github.com/loanlinker/api/internal/request"
	"github.com/loanlinker/api/internal/response"
	"github.com/loanlinker/api/internal/smtp"
	"github.com/loanlinker/api/internal/validator"

	"github.com/cradoe/gopass"
)

type AdminHandler struct {
	UserRepo        repository.UserRepository
	ApplicationRepo repository.ApplicationRepository
	OfferRepo       repository.OfferRepository
	TransactionRepo repository.TransactionRepository
	ErrHandler      *errHandler.ErrorRepository
	Helper          *helper.HelperRepository
	Mailer          smtp.MailerInterface
}

func NewAdminHandler(handler *AdminHandler) *AdminHandler {
	return &AdminHandler{
		UserRepo:        handler.UserRepo,
		ApplicationRepo: handler.ApplicationRepo,
		OfferRepo:       handler.OfferRepo,
		TransactionRepo: handler.TransactionRepo,
		ErrHandler:      handler.ErrHandler,
		Helper:          handler.Helper,
		Mailer:          handler.Mailer,
	}
}

func (h *AdminHandler) HandleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserRepo.GetAll()
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := make([]*UserResponseData, len(users))
	for i := range users {
		data[i] = newUserResponse(&users[i])
	}

	message := "Data retrieved successfully"
	err = response.JSONOkResponse(w, map[string]any{"users": data}, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *AdminHandler) HandleApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.ApplicationRepo.GetAll()
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

		// The admin console shows everything, paywall included.
		data[i] = newApplicationResponse(&apps[i], offers, true)
	}

	message := "Data retrieved successfully"
	err = response.JSONOkResponse(w, map[string]any{"applications": data}, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

type AnalyticsResponseData struct {
	TotalUsers         int                        `json:"total_users"`
	TotalBanks         int                        `json:"total_banks"`
	TotalRMs           int                        `json:"total_rms"`
	TotalApplications  int                        `json:"total_applications"`
	PremiumUsers       int                        `json:"premium_users"`
	TotalRevenue       float64                    `json:"total_revenue"`
	RecentApplications []*ApplicationResponseData `json:"recent_applications"`
}

// HandleAnalytics recomputes every figure from the store on each call.
// That is a full scan; acceptable at this platform's volumes, revisit if
// admin dashboards ever get hot.
func (h *AdminHandler) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics := &AnalyticsResponseData{}

	var err error

	analytics.TotalUsers, err = h.UserRepo.CountByRole(repository.RoleUser)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	analytics.TotalBanks, err = h.UserRepo.CountByRole(repository.RoleBank)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	analytics.TotalRMs, err = h.UserRepo.CountByRole(repository.RoleRM)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	analytics.TotalApplications, err = h.ApplicationRepo.Count()
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	analytics.PremiumUsers, err = h.UserRepo.CountPremium()
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	// Revenue counts every transaction type: unlock fees and subscriptions.
	analytics.TotalRevenue, err = h.TransactionRepo.SumAmounts()
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	recent, err := h.ApplicationRepo.GetRecent(10)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	analytics.RecentApplications = make([]*ApplicationResponseData, len(recent))
	for i := range recent {
		analytics.RecentApplications[i] = newApplicationResponse(&recent[i], nil, false)
	}

	message := "Data retrieved successfully"
	err = response.JSONOkResponse(w, map[string]any{"analytics": analytics}, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *AdminHandler) HandleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email     string              `json:"email"`
		Password  string              `json:"password"`
		Name      string              `json:"name"`
		Phone     string              `json:"phone"`
		Role      string              `json:"role"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	_, errs := gopass.Validate(input.Password)
	if errs != nil {
		h.ErrHandler.FailedValidation(w, r, errs)
		return
	}

	_, found, err := h.UserRepo.GetByEmail(input.Email)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Email), "Email is required")
	input.Validator.Check(validator.IsEmail(input.Email), "Must be a valid email address")
	input.Validator.Check(!found, "Email is already in use")
	input.Validator.Check(validator.NotBlank(input.Name), "Name is required")
	if input.Phone != "" {
		input.Validator.Check(validator.IsPhoneNumber(input.Phone), "Must be a valid Indian mobile number")
	}
	input.Validator.Check(validator.In(input.Role, repository.RoleBank, repository.RoleRM),
		"Only bank and rm accounts can be created")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	hashedPassword, err := gopass.Hash(input.Password)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	account := &models.User{
		Email:          input.Email,
		Name:           input.Name,
		Phone:          input.Phone,
		HashedPassword: hashedPassword,
		Role:           input.Role,
		// Partner accounts are trusted by construction; they never go
		// through borrower KYC.
		KycStatus: repository.KycStatusVerified,
	}

	accountID, err := h.UserRepo.Insert(account)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	roleLabel := "Bank"
	if input.Role == repository.RoleRM {
		roleLabel = "RM"
	}

	password := input.Password
	h.Helper.BackgroundTask(r, func() error {
		emailData := h.Helper.NewEmailData()
		emailData["Name"] = account.Name
		emailData["RoleLabel"] = roleLabel
		emailData["Email"] = account.Email
		emailData["Password"] = password

		err := h.Mailer.Send(account.Email, emailData, "account-credentials.tmpl")
		if err != nil {
			log.Printf("Error sending credentials email: %v", err)
			return err
		}

		return nil
	})

	data := map[string]any{
		"accountId": accountID,
		"credentials": map[string]any{
			"email":    input.Email,
			"password": input.Password,
		},
	}

	message := roleLabel + " account created successfully"
	err = response.JSONCreatedResponse(w, data, message)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *AdminHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserID      string              `json:"user_id"`
		NewPassword string              `json:"new_password"`
		Validator   validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	_, errs := gopass.Validate(input.NewPassword)
	if errs != nil {
		h.ErrHandler.FailedValidation(w, r, errs)
		return
	}

	input.Validator.Check(validator.NotBlank(input.UserID), "User id is required")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	_, found, err := h.UserRepo.GetOne(input.UserID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found {
		h.ErrHandler.NotFound(w, r)
		return
	}

	hashedPassword, err := gopass.Hash(input.NewPassword)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	err = h.UserRepo.UpdatePassword(input.UserID, hashedPassword)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "Password reset successfully"
	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *AdminHandler) HandleAssignRM(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ApplicationID string              `json:"application_id"`
		RMID          string              `json:"rm_id"`
		Validator     validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.ApplicationID), "Application id is required")
	input.Validator.Check(validator.NotBlank(input.RMID), "RM id is required")

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

	// The assignee must actually be an RM; assigning a lead to a bank or a
	// borrower would leak full applicant detail through the RM view.
	rm, found, err := h.UserRepo.GetOne(input.RMID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found || rm.Role != repository.RoleRM {
		h.ErrHandler.FailedValidation(w, r, []string{"Assignee is not a relationship manager"})
		return
	}

	err = h.ApplicationRepo.AssignRM(input.ApplicationID, input.RMID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "RM assigned successfully"
	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
