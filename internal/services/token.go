package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/therapease/therapease-backend/internal/models"
	"github.com/therapease/therapease-backend/internal/store"
)

// Authentication failure taxonomy. Handlers and middleware map these to
// HTTP status codes.
var (
	ErrMissingToken    = errors.New("valid token is missing")
	ErrInvalidToken    = errors.New("invalid token")
	ErrUnknownUser     = errors.New("invalid user")
	ErrRevokedToken    = errors.New("token revoked")
	ErrInactiveSession = errors.New("token authentication is not active for this user")
)

// Claims is the JWT payload: the account email plus standard expiry fields.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// RevocationCache is a fast-path lookup for revoked tokens. The blocklist
// store remains the authority; the cache only short-circuits the common case.
type RevocationCache interface {
	MarkRevoked(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// TokenService issues, validates and revokes session tokens.
type TokenService struct {
	secret    []byte
	expiry    time.Duration
	users     store.UserStore
	blocklist store.BlocklistStore
	cache     RevocationCache // optional; nil disables the fast path
}

func NewTokenService(secret string, expiry time.Duration, users store.UserStore, blocklist store.BlocklistStore, cache RevocationCache) *TokenService {
	return &TokenService{
		secret:    []byte(secret),
		expiry:    expiry,
		users:     users,
		blocklist: blocklist,
		cache:     cache,
	}
}

// Issue signs a token for the user and flips their jwt-active flag on.
func (s *TokenService) Issue(ctx context.Context, user *models.User) (string, error) {
	claims := Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", err
	}

	if err := s.users.SetJWTActive(ctx, user.ID, true); err != nil {
		return "", err
	}
	return token, nil
}

// Authenticate resolves the caller from an Authorization header value.
// The raw header is split on whitespace and the second field is the token.
func (s *TokenService) Authenticate(ctx context.Context, rawHeader string) (*models.User, error) {
	token := ExtractBearerToken(rawHeader)
	if token == "" {
		return nil, ErrMissingToken
	}

	claims, err := s.parse(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}

	revoked, err := s.isRevoked(ctx, token)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrRevokedToken
	}

	if !user.JWTAuthActive {
		return nil, ErrInactiveSession
	}

	return user, nil
}

// Revoke blocklists the token and flips the user's jwt-active flag off.
// The same token must fail Authenticate afterwards even before it expires.
func (s *TokenService) Revoke(ctx context.Context, user *models.User, rawHeader string) error {
	token := ExtractBearerToken(rawHeader)
	if token == "" {
		return ErrMissingToken
	}

	if err := s.blocklist.Add(ctx, token, time.Now()); err != nil {
		return err
	}

	if s.cache != nil {
		// Cache entry only needs to outlive the token itself
		ttl := s.expiry
		if claims, err := s.parse(token); err == nil && claims.ExpiresAt != nil {
			if remaining := time.Until(claims.ExpiresAt.Time); remaining > 0 {
				ttl = remaining
			}
		}
		if err := s.cache.MarkRevoked(ctx, token, ttl); err != nil {
			return err
		}
	}

	return s.users.SetJWTActive(ctx, user.ID, false)
}

func (s *TokenService) parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

func (s *TokenService) isRevoked(ctx context.Context, token string) (bool, error) {
	if s.cache != nil {
		if revoked, err := s.cache.IsRevoked(ctx, token); err == nil && revoked {
			return true, nil
		}
		// Cache miss or cache error falls through to the store
	}
	return s.blocklist.Contains(ctx, token)
}

// ExtractBearerToken pulls the token out of an Authorization header value.
// Splits on whitespace and takes the second field ("Bearer <token>").
func ExtractBearerToken(rawHeader string) string {
	fields := strings.Fields(rawHeader)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}
