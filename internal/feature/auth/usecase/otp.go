package usecase

import (
	"sync/atomic"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

// OTPGenerator issues the one-time code emailed for a signup.
type OTPGenerator func(email string) (string, error)

// NewHOTPGenerator returns an OTPGenerator producing 6-digit HOTP codes over a fresh secret per signup.
func NewHOTPGenerator(issuer string) OTPGenerator {
	if issuer == "" {
		issuer = "stock-watchlist"
	}
	var counter atomic.Uint64
	return func(email string) (string, error) {
		key, err := hotp.Generate(hotp.GenerateOpts{Issuer: issuer, AccountName: email})
		if err != nil {
			return "", err
		}
		return hotp.GenerateCodeCustom(key.Secret(), counter.Add(1), hotp.ValidateOpts{
			Digits:    otp.DigitsSix,
			Algorithm: otp.AlgorithmSHA1,
		})
	}
}
