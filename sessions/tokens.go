package sessions

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenLifetime is how long an issued session token stays valid.
const TokenLifetime = 48 * time.Hour

// TokenService issues and verifies signed session tokens that carry a user id.
type TokenService struct {
	secret   []byte
	lifetime time.Duration
	issuer   string
	now      func() time.Time
}

type TokenOption func(*TokenService)

// Overrides the clock used for issuing and verifying tokens.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// Sets the iss claim placed on issued tokens.
func WithIssuer(issuer string) TokenOption {
	return func(s *TokenService) {
		s.issuer = issuer
	}
}

// Returns a new TokenService that signs with the given secret. The secret is copied and
// never changes for the lifetime of the service.
func NewTokenService(secret []byte, opts ...TokenOption) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	s := &TokenService{
		secret:   append([]byte(nil), secret...),
		lifetime: TokenLifetime,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *TokenService) Lifetime() time.Duration {
	return s.lifetime
}

// Issue returns a signed token for userId along with its expiry time.
func (s *TokenService) Issue(userId string) (string, time.Time, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.lifetime)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userId,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify returns the user id carried by a valid token. Every failure, whether forged,
// malformed or expired, is reported as ErrInvalidToken.
func (s *TokenService) Verify(token string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
