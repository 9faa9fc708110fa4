package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ParseTokenExpiry extracts the "exp" claim from a JWT issued by the
// upstream identity endpoint without verifying its signature. The gateway
// is not the token's audience — it only needs the expiry to size the
// access-token cookie's max-age; verification remains the upstream's job.
//
// Returns a zero time (and no error) when the token carries no expiry.
func ParseTokenExpiry(tokenString string) (time.Time, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, err
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, nil
	}

	return exp.Time, nil
}
