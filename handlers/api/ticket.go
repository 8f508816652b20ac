package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const streamAudience = "zenbox-stream"

// IssueStreamTicket signs a short-lived token binding a WebSocket
// connection to a browser session. The socket handshake cannot rely on the
// session cookie being readable through the upgrade, so the page embeds
// this ticket instead.
func IssueStreamTicket(sessionID string, secret []byte, ttl time.Duration, now time.Time) (string, error) {
	if sessionID == "" {
		return "", errors.New("session id required")
	}
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		Audience:  jwt.ClaimStrings{streamAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseStreamTicket validates a ticket and returns the session id it was
// issued for
func ParseStreamTicket(ticket string, secret []byte) (string, error) {
	if ticket == "" {
		return "", errors.New("missing stream ticket")
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(ticket, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(streamAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("invalid stream ticket: %w", err)
	}
	if claims.Subject == "" {
		return "", errors.New("invalid stream ticket: no subject")
	}
	return claims.Subject, nil
}
