package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ChatTicketClaims authorizes one websocket join to a document chat room.
type ChatTicketClaims struct {
	jwt.RegisteredClaims
	PrincipalID   int    `json:"pid"`
	PrincipalKind string `json:"pkd"`
	DisplayName   string `json:"name"`
	DocumentID    int    `json:"doc"`
}

// GenerateChatTicket signs a short-lived ticket for the given principal and document.
func GenerateChatTicket(secret string, principalID int, kind, name string, documentID int, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("ticket secret is empty")
	}
	now := time.Now()
	claims := ChatTicketClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%s:%d", kind, principalID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		PrincipalID:   principalID,
		PrincipalKind: kind,
		DisplayName:   name,
		DocumentID:    documentID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ValidateChatTicket verifies signature and expiry and returns the claims.
func ValidateChatTicket(secret, ticket string) (*ChatTicketClaims, error) {
	token, err := jwt.ParseWithClaims(ticket, &ChatTicketClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*ChatTicketClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid ticket claims")
	}
	return claims, nil
}
