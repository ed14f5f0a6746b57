package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const RoleOperator = "operator"

const DefaultTokenTTL = 12 * time.Hour

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Operator is the single back-office account allowed to edit gateway
// configuration.
type Operator struct {
	Email        string
	PasswordHash string
}

type Service interface {
	Login(ctx context.Context, email, password string) (string, error)
	ParseToken(tokenStr string) (*Claims, error)
}

type service struct {
	secret   []byte
	ttl      time.Duration
	operator Operator
	now      func() time.Time
}

func NewService(secret string, ttl time.Duration, operator Operator) (Service, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &service{
		secret:   []byte(secret),
		ttl:      ttl,
		operator: operator,
		now:      time.Now,
	}, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	if s.operator.Email == "" || s.operator.PasswordHash == "" {
		return "", ErrInvalidCredentials
	}

	emailOK := subtle.ConstantTimeCompare(
		[]byte(strings.ToLower(strings.TrimSpace(email))),
		[]byte(strings.ToLower(s.operator.Email)),
	) == 1
	// bcrypt runs even when the email is wrong.
	passwordOK := CheckPasswordHash(password, s.operator.PasswordHash)
	if !emailOK || !passwordOK {
		return "", ErrInvalidCredentials
	}

	return s.generateJWT(s.operator.Email)
}

func (s *service) generateJWT(email string) (string, error) {
	now := s.now()
	claims := Claims{
		Email: email,
		Role:  RoleOperator,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *service) ParseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return s.secret, nil
		},
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Role != RoleOperator {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
