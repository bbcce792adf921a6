package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dstepanenko/tasktrack/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// TokenKind distinguishes short-lived API credentials from the longer-lived
// credentials used only to mint new access tokens. It is a closed
// enumeration: unknown values are rejected when claims are decoded.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// UnmarshalJSON validates the kind at the deserialization boundary so a
// forged or mistyped kind never reaches comparison logic as a free-form
// string.
func (k *TokenKind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch TokenKind(s) {
	case TokenKindAccess, TokenKindRefresh:
		*k = TokenKind(s)
		return nil
	default:
		return fmt.Errorf("unknown token kind %q", s)
	}
}

// Claims binds a subject id and a token kind to the registered JWT claims
// (issued-at, expiry).
type Claims struct {
	jwt.RegisteredClaims
	Kind TokenKind `json:"kind"`
}

// IssueToken signs a token of the given kind for userID, valid for ttl from
// the current clock. The caller cannot adjust expiry after issuance.
func IssueToken(userID string, kind TokenKind, secretKey []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Kind: kind,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// VerifyToken parses and validates tokenString, requiring the HS256 signing
// method and the expected kind. Failures map to distinct sentinel errors
// (common.ErrTokenExpired, common.ErrWrongTokenKind, common.ErrInvalidToken)
// so internal callers can tell them apart; the transport layer collapses all
// of them to a generic unauthenticated response.
func VerifyToken(tokenString string, expectedKind TokenKind, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	if claims.Kind != expectedKind {
		return nil, common.ErrWrongTokenKind
	}
	if claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
