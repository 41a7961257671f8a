package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/loanlinker/api/internal/context"
	"github.com/loanlinker/api/internal/models"
	"github.com/loanlinker/api/internal/repository"

	"github.com/stretchr/testify/require"
)

func TestHandleRMLeads_IncludesFullApplicantDetail(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	mockAppRepo := new(MockApplicationRepo)
	mockOfferRepo := new(MockOfferRepo)

	rm := &models.User{ID: "rm-1", Role: repository.RoleRM}

	applicant := &models.User{
		ID:        "user-1",
		Name:      "Rahul Sharma",
		Email:     "rahul@example.com",
		Phone:     "9876543210",
		Role:      repository.RoleUser,
		KycStatus: repository.KycStatusVerified,
		KycData: models.KycData{
			Income: 1200000,
			City:   "Pune",
		},
	}

	apps := []models.LoanApplication{
		{
			ID:         "app-1",
			UserID:     "user-1",
			LoanType:   "personal",
			Amount:     500000,
			AssignedRM: sql.NullString{String: "rm-1", Valid: true},
		},
	}

	mockAppRepo.On("GetAllByAssignedRM", "rm-1").Return(apps, nil)
	mockUserRepo.On("GetOne", "user-1").Return(applicant, true, nil)
	mockOfferRepo.On("GetAllByApplication", "app-1").Return([]models.LoanOffer{}, nil)

	rmHandler := &RMHandler{
		UserRepo:        mockUserRepo,
		ApplicationRepo: mockAppRepo,
		OfferRepo:       mockOfferRepo,
		ErrHandler:      newTestErrHandler(),
	}

	req, err := http.NewRequest("GET", "/rm/leads", nil)
	require.NoError(t, err)
	req = context.ContextSetAuthenticatedUser(req, rm)

	rr := httptest.NewRecorder()
	rmHandler.HandleLeads(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]interface{}
	err = json.Unmarshal(rr.Body.Bytes(), &response)
	require.NoError(t, err)

	data := response["data"].(map[string]interface{})
	leads := data["leads"].([]interface{})
	require.Len(t, leads, 1)

	lead := leads[0].(map[string]interface{})
	fullApplicant := lead["applicant"].(map[string]interface{})

	require.Equal(t, "Rahul Sharma", fullApplicant["name"])
	require.Equal(t, "rahul@example.com", fullApplicant["email"])
	require.Equal(t, "9876543210", fullApplicant["phone"])
	require.NotNil(t, fullApplicant["kyc_data"])
}

func TestHandleRMUpdateStatus_ForbiddenWhenNotAssigned(t *testing.T) {
	mockAppRepo := new(MockApplicationRepo)

	rm := &models.User{ID: "rm-1", Role: repository.RoleRM}

	assignedElsewhere := &models.LoanApplication{
		ID:         "app-1",
		UserID:     "user-1",
		AssignedRM: sql.NullString{String: "rm-2", Valid: true},
	}

	mockAppRepo.On("GetOne", "app-1").Return(assignedElsewhere, true, nil)

	rmHandler := &RMHandler{
		ApplicationRepo: mockAppRepo,
		ErrHandler:      newTestErrHandler(),
	}

	requestBody, _ := json.Marshal(map[string]string{
		"application_id": "app-1",
		"status":         repository.RMStatusUnderReview,
	})

	req, err := http.NewRequest("POST", "/rm/update-status", bytes.NewBuffer(requestBody))
	require.NoError(t, err)
	req = context.ContextSetAuthenticatedUser(req, rm)

	rr := httptest.NewRecorder()
	rmHandler.HandleUpdateStatus(rr, req)

	require.Equal(t, http.StatusForbidden, rr.Code)
	mockAppRepo.AssertNotCalled(t, "UpdateRMStatus")
}

func TestHandleRMUpdateStatus_StoresAdvisoryStatus(t *testing.T) {
	mockAppRepo := new(MockApplicationRepo)

	rm := &models.User{ID: "rm-1", Role: repository.RoleRM}

	assigned := &models.LoanApplication{
		ID:         "app-1",
		UserID:     "user-1",
		AssignedRM: sql.NullString{String: "rm-1", Valid: true},
	}

	mockAppRepo.On("GetOne", "app-1").Return(assigned, true, nil)
	mockAppRepo.On("UpdateRMStatus", "app-1", "Waiting on payslips", "Called borrower today").Return(nil)

	rmHandler := &RMHandler{
		ApplicationRepo: mockAppRepo,
		ErrHandler:      newTestErrHandler(),
	}

	requestBody, _ := json.Marshal(map[string]string{
		"application_id": "app-1",
		"status":         "Waiting on payslips",
		"notes":          "Called borrower today",
	})

	req, err := http.NewRequest("POST", "/rm/update-status", bytes.NewBuffer(requestBody))
	require.NoError(t, err)
	req = context.ContextSetAuthenticatedUser(req, rm)

	rr := httptest.NewRecorder()
	rmHandler.HandleUpdateStatus(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	mockAppRepo.AssertExpectations(t)
}
