package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiration reports a token without an exp claim.
var ErrNoExpiration = errors.New("token carries no expiration claim")

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// Bakong developer tokens are opaque bearer credentials to this service, only
// their lifetime is inspected.
func TokenExpiry(tokenString string) (time.Time, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse token: %w", err)
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read expiration claim: %w", err)
	}
	if exp == nil {
		return time.Time{}, ErrNoExpiration
	}

	return exp.Time, nil
}
