package handler

import (
	"time"

	"github.com/loanlinker/api/internal/models"
	"github.com/loanlinker/api/internal/repository"
)

type UserResponseData struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	Name         string          `json:"name"`
	Phone        string          `json:"phone"`
	Role         string          `json:"role"`
	KycStatus    string          `json:"kyc_status"`
	KycData      *models.KycData `json:"kyc_data,omitempty"`
	Address      string          `json:"address,omitempty"`
	Image        string          `json:"image,omitempty"`
	IsPremium    bool            `json:"is_premium"`
	PremiumPlan  string          `json:"premium_plan,omitempty"`
	PremiumSince *time.Time      `json:"premium_since,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

func newUserResponse(user *models.User) *UserResponseData {
	data := &UserResponseData{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Phone:     user.Phone,
		Role:      user.Role,
		KycStatus: user.KycStatus,
		IsPremium: user.IsPremium,
		CreatedAt: user.CreatedAt,
	}

	if user.Role == repository.RoleUser && user.KycStatus == repository.KycStatusVerified {
		kyc := user.KycData
		data.KycData = &kyc
	}
	if user.Address.Valid {
		data.Address = user.Address.String
	}
	if user.Image.Valid {
		data.Image = user.Image.String
	}
	if user.PremiumPlan.Valid {
		data.PremiumPlan = user.PremiumPlan.String
	}
	if user.PremiumSince.Valid {
		since := user.PremiumSince.Time
		data.PremiumSince = &since
	}

	return data
}

type OfferResponseData struct {
	ID           string    `json:"id"`
	BankID       string    `json:"bank_id"`
	BankName     string    `json:"bank_name"`
	Eligible     bool      `json:"eligible"`
	InterestRate float64   `json:"interest_rate"`
	EMI          float64   `json:"emi"`
	MaxAmount    float64   `json:"max_amount"`
	Remarks      string    `json:"remarks"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

func newOfferResponse(offer *models.LoanOffer) *OfferResponseData {
	return &OfferResponseData{
		ID:           offer.ID,
		BankID:       offer.BankID,
		BankName:     offer.BankName,
		Eligible:     offer.Eligible,
		InterestRate: offer.InterestRate,
		EMI:          offer.EMI,
		MaxAmount:    offer.MaxAmount,
		Remarks:      offer.Remarks,
		SubmittedAt:  offer.CreatedAt,
	}
}

func newOfferResponseList(offers []models.LoanOffer) []OfferResponseData {
	data := make([]OfferResponseData, len(offers))
	for i := range offers {
		data[i] = *newOfferResponse(&offers[i])
	}
	return data
}

// ApplicationResponseData is the borrower-facing view of an application.
// Offer detail is present only when the paywall allows it; a locked view
// carries the eligible-offer count and the waiting/ready signal instead.
type ApplicationResponseData struct {
	ID               string                `json:"id"`
	LoanType         string                `json:"loan_type"`
	Amount           float64               `json:"amount"`
	TenureMonths     int                   `json:"tenure_months"`
	Purpose          string                `json:"purpose"`
	HasExistingLoans bool                  `json:"has_existing_loans"`
	ExistingLoans    []models.ExistingLoan `json:"existing_loans"`
	Status           string                `json:"status"`
	Unlocked         bool                  `json:"unlocked"`
	UnlockedAt       *time.Time            `json:"unlocked_at,omitempty"`
	RMStatus         string                `json:"rm_status,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        *time.Time            `json:"updated_at,omitempty"`

	OfferCount    int  `json:"offer_count"`
	EligibleCount int  `json:"eligible_offer_count"`
	OffersReady   bool `json:"offers_ready"`
	OffersNeeded  int  `json:"offers_needed"`

	// RankedOffers and OtherOffers are only populated for an unlocked view.
	RankedOffers []OfferResponseData `json:"ranked_offers,omitempty"`
	OtherOffers  []OfferResponseData `json:"other_offers,omitempty"`
}

// newApplicationResponse projects an application for its owner. revealOffers
// is the paywall decision: the application is unlocked, or the owner holds a
// premium plan.
func newApplicationResponse(app *models.LoanApplication, offers []models.LoanOffer, revealOffers bool) *ApplicationResponseData {
	eligibleCount := countEligibleOffers(offers)

	data := &ApplicationResponseData{
		ID:               app.ID,
		LoanType:         app.LoanType,
		Amount:           app.Amount,
		TenureMonths:     app.TenureMonths,
		Purpose:          app.Purpose,
		HasExistingLoans: app.HasExistingLoans,
		ExistingLoans:    app.ExistingLoans,
		Status:           app.Status,
		Unlocked:         app.Unlocked,
		CreatedAt:        app.CreatedAt,
		OfferCount:       len(offers),
		EligibleCount:    eligibleCount,
		OffersNeeded:     offersNeeded(eligibleCount),
	}
	data.OffersReady = data.OffersNeeded == 0

	if app.UnlockedAt.Valid {
		at := app.UnlockedAt.Time
		data.UnlockedAt = &at
	}
	if app.RMStatus.Valid {
		data.RMStatus = app.RMStatus.String
	}
	if app.UpdatedAt.Valid {
		at := app.UpdatedAt.Time
		data.UpdatedAt = &at
	}

	if revealOffers {
		ranked := RankOffers(offers)
		data.RankedOffers = newOfferResponseList(ranked)

		others := make([]models.LoanOffer, 0)
		for _, offer := range offers {
			if !offer.Eligible {
				others = append(others, offer)
			}
		}
		data.OtherOffers = newOfferResponseList(others)
	}

	return data
}
