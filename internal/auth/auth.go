// Package auth verifies the HS256 bearer tokens issued to customers. The
// "sub" claim carries the user id.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

type Verifier struct {
	secret []byte
	admins map[string]bool
}

// NewVerifier treats every subject in admins as an administrator.
func NewVerifier(secret string, admins []string) *Verifier {
	set := make(map[string]bool, len(admins))
	for _, a := range admins {
		set[a] = true
	}

	return &Verifier{secret: []byte(secret), admins: set}
}

// Issue signs a token for subject that expires after ttl.
func Issue(secret, subject string, ttl time.Duration, now time.Time) (string, error) {
	const op = "auth.Issue"

	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// FromHeader extracts the token of an Authorization header. Both the
// "Bearer" and "JWT" schemes are accepted.
func FromHeader(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return "", ErrMissingToken
	}

	switch strings.ToLower(scheme) {
	case "bearer", "jwt":
	default:
		return "", ErrMissingToken
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}

	return token, nil
}

// Subject validates raw and returns its "sub" claim.
func (v *Verifier) Subject(raw string) (string, error) {
	const op = "auth.Verifier.Subject"

	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("%s: %w: no subject", op, ErrInvalidToken)
	}

	return sub, nil
}

func (v *Verifier) IsAdmin(subject string) bool {
	return v.admins[subject]
}
