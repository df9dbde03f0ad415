package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/bahriwassim/zishop1-sub000/pkg/config"
	"github.com/golang-jwt/jwt/v5"
)

var (
	secretKey       = []byte("defaultsecretkey")
	expirationHours = 24
)

// Subject kinds carried in the token
const (
	KindClient = "client"
	KindStaff  = "staff"
)

// Claims represents the JWT claims issued after a successful login
type Claims struct {
	Kind       string `json:"kind"`
	AccountID  uint   `json:"account_id"`
	Login      string `json:"login"`
	Role       string `json:"role,omitempty"`
	HotelID    *uint  `json:"hotel_id,omitempty"`
	MerchantID *uint  `json:"merchant_id,omitempty"`
	jwt.RegisteredClaims
}

// Initialize sets up the JWT utility with configuration
func Initialize(cfg *config.JWTConfig) {
	if cfg.SigningKey != "" {
		secretKey = []byte(cfg.SigningKey)
	}
	if cfg.ExpirationHours > 0 {
		expirationHours = cfg.ExpirationHours
	}
}

// GenerateToken creates a signed token for the given claims
func GenerateToken(claims Claims) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%s:%d", claims.Kind, claims.AccountID),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expirationHours) * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey)
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
