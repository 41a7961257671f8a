// Package payment wraps the checkout provider. The client completes a
// Razorpay checkout in the browser and posts the resulting payment id to us;
// this package decides whether that reference is acceptable proof before any
// unlock or subscription state is committed.
package payment

import (
	"errors"
	"regexp"
	"time"

	"github.com/loanlinker/api/internal/cache"
)

var (
	ErrInvalidReference = errors.New("payment reference is missing or malformed")
	ErrReferenceUsed    = errors.New("payment reference has already been used")
)

// Razorpay payment ids look like "pay_" followed by a 14-character
// alphanumeric tail.
var rgxPaymentReference = regexp.MustCompile(`^pay_[A-Za-z0-9]{14}$`)

// referenceTTL is how long a consumed reference is remembered. Razorpay
// ids are unique forever; the guard only needs to outlive any realistic
// client retry window.
const referenceTTL = 24 * time.Hour

type Verifier struct {
	cache *cache.Cache
}

func New(cache *cache.Cache) *Verifier {
	return &Verifier{cache: cache}
}

// VerifyAndConsume checks the reference shape and claims it so the same
// checkout cannot pay for two things. Settlement reconciliation against the
// provider's books happens offline and is not this service's concern.
func (v *Verifier) VerifyAndConsume(reference string) error {
	if !rgxPaymentReference.MatchString(reference) {
		return ErrInvalidReference
	}

	claimed, err := v.cache.SetIfNotExists("payment:"+reference, "consumed", referenceTTL)
	if err != nil {
		return err
	}

	if !claimed {
		return ErrReferenceUsed
	}

	return nil
}
