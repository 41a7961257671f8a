package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/loanlinker/api/internal/config"
	"github.com/loanlinker/api/internal/context"
	"github.com/loanlinker/api/internal/models"
	"github.com/loanlinker/api/internal/repository"
	"github.com/loanlinker/api/internal/stream"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// inMemoryOfferRepo is a thread-safe OfferRepository backed by a slice, so
// concurrency tests can observe exactly what survived a burst of submissions.
type inMemoryOfferRepo struct {
	mu     sync.Mutex
	offers []models.LoanOffer
}

func (r *inMemoryOfferRepo) Insert(offer *models.LoanOffer) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.offers {
		if r.offers[i].ApplicationID == offer.ApplicationID && r.offers[i].BankID == offer.BankID {
			return "", repository.ErrDuplicateOffer
		}
	}

	stored := *offer
	stored.ID = fmt.Sprintf("offer-%d", len(r.offers)+1)
	stored.Seq = int64(len(r.offers) + 1)
	r.offers = append(r.offers, stored)

	return stored.ID, nil
}

func (r *inMemoryOfferRepo) GetAllByApplication(applicationID string) ([]models.LoanOffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var offers []models.LoanOffer
	for i := range r.offers {
		if r.offers[i].ApplicationID == applicationID {
			offers = append(offers, r.offers[i])
		}
	}
	return offers, nil
}

func (r *inMemoryOfferRepo) ExistsForBank(applicationID, bankID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.offers {
		if r.offers[i].ApplicationID == applicationID && r.offers[i].BankID == bankID {
			return true, nil
		}
	}
	return false, nil
}

// A burst of independent banks submitting against the same application must
// leave one stored offer per bank, none lost.
func TestHandleSubmitOffer_ConcurrentBanksAllStored(t *testing.T) {
	const numBanks = 8

	mockAppRepo := new(MockApplicationRepo)
	offerRepo := &inMemoryOfferRepo{}

	app := &models.LoanApplication{ID: "app-1", UserID: "user-1", LoanType: "personal"}
	mockAppRepo.On("GetOne", "app-1").Return(app, true, nil)

	bankHandler := &BankHandler{
		ApplicationRepo: mockAppRepo,
		OfferRepo:       offerRepo,
		ErrHandler:      newTestErrHandler(),
		Helper:          newTestHelper(),
		Kafka:           stream.New("localhost:9092"),
		Config:          &config.Config{},
	}

	codes := make([]int, numBanks)

	var wg sync.WaitGroup
	for i := 0; i < numBanks; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			bank := &models.User{
				ID:   fmt.Sprintf("bank-%d", i),
				Name: fmt.Sprintf("Bank %d", i),
				Role: repository.RoleBank,
			}

			requestBody, _ := json.Marshal(map[string]any{
				"application_id": "app-1",
				"eligible":       true,
				"interest_rate":  9.0 + float64(i)/10,
				"emi":            15000,
				"max_amount":     500000,
			})

			req := httptest.NewRequest("POST", "/bank/submit-offer", bytes.NewBuffer(requestBody))
			req.Header.Set("Content-Type", "application/json")
			req = context.ContextSetAuthenticatedUser(req, bank)

			rr := httptest.NewRecorder()
			bankHandler.HandleSubmitOffer(rr, req)
			codes[i] = rr.Code
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		require.Equal(t, http.StatusCreated, code, "bank %d submission failed", i)
	}

	stored, err := offerRepo.GetAllByApplication("app-1")
	require.NoError(t, err)
	require.Len(t, stored, numBanks)

	seen := make(map[string]bool)
	for _, offer := range stored {
		require.False(t, seen[offer.BankID], "offer from %s stored twice", offer.BankID)
		seen[offer.BankID] = true
	}
}

// When two submissions from the same bank race past the existence check, the
// store rejects the second and the caller sees a conflict, not a 500.
func TestHandleSubmitOffer_RacedDuplicateMapsToConflict(t *testing.T) {
	mockAppRepo := new(MockApplicationRepo)
	mockOfferRepo := new(MockOfferRepo)

	bank := &models.User{ID: "bank-1", Name: "HDFC", Role: repository.RoleBank}
	app := &models.LoanApplication{ID: "app-1", UserID: "user-1"}

	mockAppRepo.On("GetOne", "app-1").Return(app, true, nil)
	// The existence check saw nothing, but the insert still collides.
	mockOfferRepo.On("ExistsForBank", "app-1", "bank-1").Return(false, nil)
	mockOfferRepo.On("Insert", mock.Anything).Return("", repository.ErrDuplicateOffer)

	bankHandler := &BankHandler{
		ApplicationRepo: mockAppRepo,
		OfferRepo:       mockOfferRepo,
		ErrHandler:      newTestErrHandler(),
		Helper:          newTestHelper(),
		Config:          &config.Config{},
	}

	req := newOfferRequest(t, bank, map[string]any{
		"application_id": "app-1",
		"eligible":       true,
		"interest_rate":  9.2,
		"emi":            15000,
		"max_amount":     500000,
	})

	rr := httptest.NewRecorder()
	bankHandler.HandleSubmitOffer(rr, req)

	require.Equal(t, http.StatusConflict, rr.Code)
}
