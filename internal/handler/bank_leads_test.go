package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/loanlinker/api/internal/config"
	"github.com/loanlinker/api/internal/context"
	"github.com/loanlinker/api/internal/models"
	"github.com/loanlinker/api/internal/repository"

	"github.com/stretchr/testify/require"
)

func TestHandleBankLeads_AnonymizesApplicant(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	mockAppRepo := new(MockApplicationRepo)
	mockOfferRepo := new(MockOfferRepo)

	bank := &models.User{ID: "bank-1", Name: "HDFC", Role: repository.RoleBank}

	applicant := &models.User{
		ID:        "user-1",
		Name:      "Rahul Sharma",
		Email:     "rahul@example.com",
		Phone:     "9876543210",
		Role:      repository.RoleUser,
		KycStatus: repository.KycStatusVerified,
		KycData: models.KycData{
			Income:         1200000,
			EmploymentType: "salaried",
			CreditScore:    760,
			City:           "Pune",
			Aadhaar:        "123412341234",
			Pan:            "ABCDE1234F",
		},
	}

	apps := []models.LoanApplication{
		{ID: "app-1", UserID: "user-1", LoanType: "personal", Amount: 500000, TenureMonths: 36},
	}

	mockAppRepo.On("GetAll").Return(apps, nil)
	mockUserRepo.On("GetOne", "user-1").Return(applicant, true, nil)
	mockOfferRepo.On("ExistsForBank", "app-1", "bank-1").Return(false, nil)

	bankHandler := &BankHandler{
		UserRepo:        mockUserRepo,
		ApplicationRepo: mockAppRepo,
		OfferRepo:       mockOfferRepo,
		ErrHandler:      newTestErrHandler(),
		Helper:          newTestHelper(),
		Config:          &config.Config{},
	}

	req, err := http.NewRequest("GET", "/bank/leads", nil)
	require.NoError(t, err)
	req = context.ContextSetAuthenticatedUser(req, bank)

	rr := httptest.NewRecorder()
	bankHandler.HandleLeads(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()

	// Nothing that identifies or reaches the borrower may appear.
	require.NotContains(t, body, "Rahul Sharma")
	require.NotContains(t, body, "rahul@example.com")
	require.NotContains(t, body, "9876543210")
	require.NotContains(t, body, "123412341234")
	require.NotContains(t, body, "ABCDE1234F")

	var response map[string]interface{}
	err = json.Unmarshal(rr.Body.Bytes(), &response)
	require.NoError(t, err)

	data := response["data"].(map[string]interface{})
	leads := data["leads"].([]interface{})
	require.Len(t, leads, 1)

	lead := leads[0].(map[string]interface{})
	anonymized := lead["applicant"].(map[string]interface{})

	require.Equal(t, float64(1200000), anonymized["income"])
	require.Equal(t, "salaried", anonymized["employment_type"])
	require.Equal(t, "760", anonymized["credit_score"])
	require.Equal(t, "Pune", anonymized["city"])
	require.Equal(t, true, anonymized["masked"])
	require.Equal(t, false, lead["has_offered_by_me"])
}

func TestHandleBankLeads_SkipsUnverifiedOwners(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	mockAppRepo := new(MockApplicationRepo)
	mockOfferRepo := new(MockOfferRepo)

	bank := &models.User{ID: "bank-1", Role: repository.RoleBank}

	unverified := &models.User{
		ID:        "user-2",
		Role:      repository.RoleUser,
		KycStatus: repository.KycStatusPending,
	}

	apps := []models.LoanApplication{
		{ID: "app-2", UserID: "user-2", LoanType: "home", Amount: 2500000},
	}

	mockAppRepo.On("GetAll").Return(apps, nil)
	mockUserRepo.On("GetOne", "user-2").Return(unverified, true, nil)

	bankHandler := &BankHandler{
		UserRepo:        mockUserRepo,
		ApplicationRepo: mockAppRepo,
		OfferRepo:       mockOfferRepo,
		ErrHandler:      newTestErrHandler(),
		Helper:          newTestHelper(),
		Config:          &config.Config{},
	}

	req, err := http.NewRequest("GET", "/bank/leads", nil)
	require.NoError(t, err)
	req = context.ContextSetAuthenticatedUser(req, bank)

	rr := httptest.NewRecorder()
	bankHandler.HandleLeads(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]interface{}
	err = json.Unmarshal(rr.Body.Bytes(), &response)
	require.NoError(t, err)

	data := response["data"].(map[string]interface{})
	leads := data["leads"].([]interface{})
	require.Empty(t, leads)

	mockOfferRepo.AssertNotCalled(t, "ExistsForBank")
}

func TestFormatCreditScore(t *testing.T) {
	require.Equal(t, "N/A", formatCreditScore(0))
	require.Equal(t, "760", formatCreditScore(760))
}
