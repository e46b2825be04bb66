package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

var ErrInvalidToken = errors.New("invalid token")

const userLookupTimeout = 2 * time.Second

// sessionClaims carries the username next to the registered claims so clients
// can greet the user without a round trip.
type sessionClaims struct {
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// Session is a signed bearer token and the instant it stops being accepted.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

type TokenService struct {
	secretKey     []byte
	issuer        string
	tokenDuration time.Duration
	userRepo      domain.UserRepository
	now           func() time.Time
}

func NewTokenService(secretKey string, issuer string, tokenDuration time.Duration, userRepo domain.UserRepository) *TokenService {
	return &TokenService{
		secretKey:     []byte(secretKey),
		issuer:        issuer,
		tokenDuration: tokenDuration,
		userRepo:      userRepo,
		now:           time.Now,
	}
}

// IssueSession signs an HS256 token whose subject is the user id.
func (s *TokenService) IssueSession(user *domain.User) (Session, error) {
	if user == nil || user.ID == "" {
		return Session{}, fmt.Errorf("token service: %w", domain.ErrInvalidUserID)
	}

	now := s.now()
	expiresAt := now.Add(s.tokenDuration)
	claims := sessionClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return Session{}, fmt.Errorf("token service: failed to sign token: %w", err)
	}

	return Session{Token: signed, ExpiresAt: expiresAt.UTC()}, nil
}

// ValidateToken returns the user id carried by a signed, unexpired token of
// this issuer whose user still exists.
func (s *TokenService) ValidateToken(ctx context.Context, tokenString string) (string, error) {
	claims := &sessionClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, userLookupTimeout)
	defer cancel()

	if _, err := s.userRepo.GetByID(lookupCtx, claims.Subject); err != nil {
		return "", fmt.Errorf("%w: user no longer exists or db error: %w", ErrInvalidToken, err)
	}

	return claims.Subject, nil
}
