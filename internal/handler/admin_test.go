package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/loanlinker/api/internal/context"
	"github.com/loanlinker/api/internal/models"
	"github.com/loanlinker/api/internal/repository"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func adminUser() *models.User {
	return &models.User{ID: "admin-1", Role: repository.RoleAdmin}
}

func TestHandleCreateAccount_RejectsNonPartnerRoles(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	mockMailer := new(MockMailer)

	mockUserRepo.On("GetByEmail", "sneaky@example.com").Return(nil, false, nil)

	adminHandler := &AdminHandler{
		UserRepo:   mockUserRepo,
		ErrHandler: newTestErrHandler(),
		Helper:     newTestHelper(),
		Mailer:     mockMailer,
	}

	requestBody, _ := json.Marshal(map[string]string{
		"email":    "sneaky@example.com",
		"password": "Str0ng&Secret1",
		"name":     "Sneaky Admin",
		"role":     "admin",
	})

	req, err := http.NewRequest("POST", "/admin/create-account", bytes.NewBuffer(requestBody))
	require.NoError(t, err)
	req = context.ContextSetAuthenticatedUser(req, adminUser())

	rr := httptest.NewRecorder()
	adminHandler.HandleCreateAccount(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	mockUserRepo.AssertNotCalled(t, "Insert")
}

func TestHandleCreateAccount_CreatesVerifiedBank(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	mockMailer := new(MockMailer)

	mockUserRepo.On("GetByEmail", "partner@hdfc.in").Return(nil, false, nil)
	mockUserRepo.On("Insert", mock.MatchedBy(func(user *models.User) bool {
		return user.Role == repository.RoleBank &&
			user.KycStatus == repository.KycStatusVerified &&
			user.Email == "partner@hdfc.in"
	})).Return("bank-1", nil)

	mockMailer.On("Send", "partner@hdfc.in", mock.Anything, mock.Anything).Return(nil)

	adminHandler := &AdminHandler{
		UserRepo:   mockUserRepo,
		ErrHandler: newTestErrHandler(),
		Helper:     newTestHelper(),
		Mailer:     mockMailer,
	}

	requestBody, _ := json.Marshal(map[string]string{
		"email":    "partner@hdfc.in",
		"password": "Str0ng&Secret1",
		"name":     "HDFC Bank",
		"role":     "bank",
	})

	req, err := http.NewRequest("POST", "/admin/create-account", bytes.NewBuffer(requestBody))
	require.NoError(t, err)
	req = context.ContextSetAuthenticatedUser(req, adminUser())

	rr := httptest.NewRecorder()
	adminHandler.HandleCreateAccount(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var response map[string]interface{}
	err = json.Unmarshal(rr.Body.Bytes(), &response)
	require.NoError(t, err)

	data := response["data"].(map[string]interface{})
	credentials := data["credentials"].(map[string]interface{})

	require.Equal(t, "partner@hdfc.in", credentials["email"])
	require.Equal(t, "Str0ng&Secret1", credentials["password"])

	mockUserRepo.AssertExpectations(t)
}

func TestHandleAssignRM_RejectsNonRMAssignee(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	mockAppRepo := new(MockApplicationRepo)

	app := &models.LoanApplication{ID: "app-1", UserID: "user-1"}
	notAnRM := &models.User{ID: "bank-1", Role: repository.RoleBank}

	mockAppRepo.On("GetOne", "app-1").Return(app, true, nil)
	mockUserRepo.On("GetOne", "bank-1").Return(notAnRM, true, nil)

	adminHandler := &AdminHandler{
		UserRepo:        mockUserRepo,
		ApplicationRepo: mockAppRepo,
		ErrHandler:      newTestErrHandler(),
		Helper:          newTestHelper(),
	}

	requestBody, _ := json.Marshal(map[string]string{
		"application_id": "app-1",
		"rm_id":          "bank-1",
	})

	req, err := http.NewRequest("POST", "/admin/assign-rm", bytes.NewBuffer(requestBody))
	require.NoError(t, err)
	req = context.ContextSetAuthenticatedUser(req, adminUser())

	rr := httptest.NewRecorder()
	adminHandler.HandleAssignRM(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	mockAppRepo.AssertNotCalled(t, "AssignRM")
}

func TestHandleAssignRM_AssignsValidRM(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	mockAppRepo := new(MockApplicationRepo)

	app := &models.LoanApplication{ID: "app-1", UserID: "user-1"}
	rm := &models.User{ID: "rm-1", Role: repository.RoleRM}

	mockAppRepo.On("GetOne", "app-1").Return(app, true, nil)
	mockUserRepo.On("GetOne", "rm-1").Return(rm, true, nil)
	mockAppRepo.On("AssignRM", "app-1", "rm-1").Return(nil)

	adminHandler := &AdminHandler{
		UserRepo:        mockUserRepo,
		ApplicationRepo: mockAppRepo,
		ErrHandler:      newTestErrHandler(),
		Helper:          newTestHelper(),
	}

	requestBody, _ := json.Marshal(map[string]string{
		"application_id": "app-1",
		"rm_id":          "rm-1",
	})

	req, err := http.NewRequest("POST", "/admin/assign-rm", bytes.NewBuffer(requestBody))
	require.NoError(t, err)
	req = context.ContextSetAuthenticatedUser(req, adminUser())

	rr := httptest.NewRecorder()
	adminHandler.HandleAssignRM(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	mockAppRepo.AssertExpectations(t)
}

func TestHandleAnalytics_AggregatesPlatformFigures(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	mockAppRepo := new(MockApplicationRepo)
	mockTransactionRepo := new(MockTransactionRepo)

	mockUserRepo.On("CountByRole", repository.RoleUser).Return(42, nil)
	mockUserRepo.On("CountByRole", repository.RoleBank).Return(5, nil)
	mockUserRepo.On("CountByRole", repository.RoleRM).Return(3, nil)
	mockUserRepo.On("CountPremium").Return(7, nil)
	mockAppRepo.On("Count").Return(19, nil)
	mockTransactionRepo.On("SumAmounts").Return(float64(4578), nil)
	mockAppRepo.On("GetRecent", 10).Return([]models.LoanApplication{
		{ID: "app-1", UserID: "user-1", LoanType: "personal"},
	}, nil)

	adminHandler := &AdminHandler{
		UserRepo:        mockUserRepo,
		ApplicationRepo: mockAppRepo,
		TransactionRepo: mockTransactionRepo,
		ErrHandler:      newTestErrHandler(),
		Helper:          newTestHelper(),
	}

	req, err := http.NewRequest("GET", "/admin/analytics", nil)
	require.NoError(t, err)
	req = context.ContextSetAuthenticatedUser(req, adminUser())

	rr := httptest.NewRecorder()
	adminHandler.HandleAnalytics(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]interface{}
	err = json.Unmarshal(rr.Body.Bytes(), &response)
	require.NoError(t, err)

	data := response["data"].(map[string]interface{})
	analytics := data["analytics"].(map[string]interface{})

	require.Equal(t, float64(42), analytics["total_users"])
	require.Equal(t, float64(5), analytics["total_banks"])
	require.Equal(t, float64(3), analytics["total_rms"])
	require.Equal(t, float64(19), analytics["total_applications"])
	require.Equal(t, float64(7), analytics["premium_users"])
	require.Equal(t, float64(4578), analytics["total_revenue"])

	recent := analytics["recent_applications"].([]interface{})
	require.Len(t, recent, 1)

	mockUserRepo.AssertExpectations(t)
	mockTransactionRepo.AssertExpectations(t)
}
