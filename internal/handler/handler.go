package handler

import (
	"sort"

	"github.com/loanlinker/api/internal/config"
	"github.com/loanlinker/api/internal/models"
)

const PlatformName = "LoanLinker"

// Kafka topics produced by the handlers. The workers in internal/worker
// consume them.
const (
	// OfferSubmittedTopic fires whenever a bank files an offer, so the
	// borrower can be alerted out of band.
	OfferSubmittedTopic = "offer.submitted"

	// OffersUnlockedTopic fires when a borrower pays the unlock fee, so the
	// receipt email can be sent out of band.
	OffersUnlockedTopic = "offers.unlocked"
)

// OfferSubmittedEvent is the payload on OfferSubmittedTopic.
type OfferSubmittedEvent struct {
	ApplicationID string `json:"application_id"`
	OfferID       string `json:"offer_id"`
	BankName      string `json:"bank_name"`
	Eligible      bool   `json:"eligible"`
}

// OffersUnlockedEvent is the payload on OffersUnlockedTopic.
type OffersUnlockedEvent struct {
	ApplicationID   string  `json:"application_id"`
	UserID          string  `json:"user_id"`
	Amount          float64 `json:"amount"`
	ReferenceNumber string  `json:"reference_number"`
}

// RankOffers produces the comparison ordering: eligible offers ascending by
// interest rate, ties left in submission order. Ineligible offers are
// excluded from the ranking but still exist on the application.
func RankOffers(offers []models.LoanOffer) []models.LoanOffer {
	ranked := make([]models.LoanOffer, 0, len(offers))
	for _, offer := range offers {
		if offer.Eligible {
			ranked = append(ranked, offer)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].InterestRate < ranked[j].InterestRate
	})

	return ranked
}

func countEligibleOffers(offers []models.LoanOffer) int {
	count := 0
	for _, offer := range offers {
		if offer.Eligible {
			count++
		}
	}
	return count
}

// offersNeeded reports how many more eligible offers an application must
// collect before it is presented as ready to unlock.
func offersNeeded(eligibleCount int) int {
	if eligibleCount >= config.UnlockOfferThreshold {
		return 0
	}
	return config.UnlockOfferThreshold - eligibleCount
}
