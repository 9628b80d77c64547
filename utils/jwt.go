package utils

import (
	"errors"
	"time"

	"maidbook/config"

	"github.com/golang-jwt/jwt"
)

const devSecret = "maidbook-dev-secret"

// ErrNoJWTSecret is returned in production when JWT_SECRET is unset.
var ErrNoJWTSecret = errors.New("JWT_SECRET is not configured")

// secretKey returns the signing key. Outside production an unset secret
// falls back to a development key.
func secretKey() ([]byte, error) {
	if s := config.AppConfig.JWTSecret; s != "" {
		return []byte(s), nil
	}
	if config.IsProduction() {
		return nil, ErrNoJWTSecret
	}
	return []byte(devSecret), nil
}

// GenerateToken creates a signed JWT with the user id as subject.
func GenerateToken(subject, email string, duration time.Duration) (string, error) {
	key, err := secretKey()
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   subject,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	key, err := secretKey()
	if err != nil {
		return nil, err
	}
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return key, nil
	})
}

// ExtractIDFromToken returns the subject of a valid token.
func ExtractIDFromToken(tokenString string) (string, error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("token does not contain a valid 'sub' claim")
	}

	return sub, nil
}
