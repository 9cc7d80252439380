package token

import (
	"time"

	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/database/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type UserClaims struct {
	Username string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// newUserClaims builds claims for the initial login token: subject is the
// user ID, name is the username.
func newUserClaims(user *model.User, issuer, audience string, now time.Time, duration time.Duration) *UserClaims {
	return &UserClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	}
}

// newUsernameClaims builds claims for the legacy username-only path, which
// carries a unique token ID instead of a subject.
func newUsernameClaims(username, issuer, audience string, now time.Time, duration time.Duration) *UserClaims {
	return &UserClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	}
}
