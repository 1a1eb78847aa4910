package models

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSignatureFormat = errors.New("invalid signature format")
	ErrInvalidAccount         = errors.New("invalid wallet or account index")

	ErrOnboardingRejected = errors.New("onboarding rejected")
	ErrOnboardingFailed   = errors.New("onboarding failed")

	ErrAccountsFetchFailed  = errors.New("accounts fetch failed")
	ErrAccountNotFound      = errors.New("account not found")
	ErrApiKeyIssuanceFailed = errors.New("api key issuance failed")
	ErrApiKeyMissing        = errors.New("api key missing in response")

	ErrUnknownMarket   = errors.New("unknown market")
	ErrVaultUnresolved = errors.New("vault unresolved")
	ErrOrderTooSmall   = errors.New("order size below market minimum")
	ErrInvalidOrder    = errors.New("invalid order")

	ErrCredentialNotFound = errors.New("credential not found")
	ErrStarkKeysMissing   = errors.New("stark keys missing")
	ErrAPIKeyNotFound     = errors.New("api key not found for user")

	ErrSessionNonceInvalid = errors.New("session nonce invalid or expired")
)

// UpstreamError: ответ биржи с исходным статусом и телом, отдаётся вызывающему как есть.
type UpstreamError struct {
	Op     string
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream http %d: %s", e.Op, e.Status, e.Body)
}

// AsUpstream достаёт UpstreamError из цепочки, если он там есть.
func AsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
