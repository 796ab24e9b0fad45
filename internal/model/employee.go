package model

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// ActivationTokenTTL is how long an emailed activation link stays valid.
const ActivationTokenTTL = 48 * time.Hour

// ActivationTokenLength is the number of characters in an activation token.
const ActivationTokenLength = 64

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Employee is an HR record that may be linked to a platform user.
type Employee struct {
	ID                     int64      `json:"id"`
	UserID                 *int64     `json:"user_id,omitempty"`
	FirstName              string     `json:"first_name"`
	LastName               string     `json:"last_name"`
	Email                  string     `json:"email"`
	Phone                  string     `json:"phone,omitempty"`
	Position               string     `json:"position"`
	Department             string     `json:"department"`
	HireDate               *time.Time `json:"hire_date,omitempty"`
	IsActive               bool       `json:"is_active"`
	ActivationToken        string     `json:"-"`
	ActivationTokenCreated *time.Time `json:"-"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// TokenState is the position of an employee in the activation lifecycle.
type TokenState string

// Activation lifecycle states.
const (
	TokenNone      TokenState = "none"
	TokenIssued    TokenState = "issued"
	TokenExpired   TokenState = "expired"
	TokenActivated TokenState = "activated"
)

// FullName returns "First Last".
func (e *Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// HasAccount reports whether a platform user is linked.
func (e *Employee) HasAccount() bool {
	return e.UserID != nil
}

// TokenState reports the activation state at now.
func (e *Employee) TokenState(now time.Time) TokenState {
	switch {
	case e.UserID != nil:
		return TokenActivated
	case e.ActivationToken == "" || e.ActivationTokenCreated == nil:
		return TokenNone
	case now.Before(e.ActivationTokenCreated.Add(ActivationTokenTTL)) && !now.Before(*e.ActivationTokenCreated):
		return TokenIssued
	default:
		return TokenExpired
	}
}

// TokenValid reports whether token can be redeemed at now. The validity
// window is [issued, issued+ActivationTokenTTL).
func (e *Employee) TokenValid(token string, now time.Time) bool {
	if token == "" || e.ActivationToken == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(e.ActivationToken)) != 1 {
		return false
	}
	return e.TokenState(now) == TokenIssued
}

// NewActivationToken returns a random token of ActivationTokenLength
// alphanumeric characters.
func NewActivationToken() (string, error) {
	limit := big.NewInt(int64(len(tokenAlphabet)))
	buf := make([]byte, ActivationTokenLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generating activation token: %w", err)
		}
		buf[i] = tokenAlphabet[n.Int64()]
	}
	return string(buf), nil
}
