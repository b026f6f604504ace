package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the fields an access token carries.
type Claims struct {
	UserID string
	Email  string
}

func IssueToken(userID, email, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID,
		"email":  email,
		"exp":    time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseBearer validates an Authorization header value.
func ParseBearer(header, secret string) (Claims, error) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return Claims{}, errors.New("missing token")
	}

	parts := strings.Split(raw, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return Claims{}, errors.New("invalid token format")
	}
	return ParseToken(parts[1], secret)
}

func ParseToken(raw, secret string) (Claims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return Claims{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errors.New("invalid token claims")
	}

	userID, ok := claims["userId"].(string)
	if !ok || strings.TrimSpace(userID) == "" {
		return Claims{}, errors.New("userId claim missing")
	}
	email, _ := claims["email"].(string)

	return Claims{UserID: userID, Email: email}, nil
}
