package session

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/nurtura/leadline/internal/config"
	"github.com/nurtura/leadline/internal/infrastructure/redis"
)

// SessionClaims binds a browser cookie to a stored conversation.
type SessionClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

type Service struct {
	store Store
}

// NewService builds a session service backed by Redis when available, the
// in-memory store otherwise.
func NewService(redisService *redis.Service) *Service {
	var store Store
	if redisService != nil && redisService.Ping(context.Background()) == nil {
		store = &RedisStore{redisService: redisService}
	} else {
		log.Info().Msg("Using in-memory session store")
		store = newMemoryStore()
	}
	return &Service{store: store}
}

// Create starts a new conversation: generates an ID, persists the initial
// snapshot and sets the signed session cookie.
func (s *Service) Create(ctx context.Context, w http.ResponseWriter) (*Snapshot, error) {
	snap := NewSnapshot(uuid.New().String())
	if err := s.store.Set(ctx, snap); err != nil {
		return nil, err
	}

	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionLifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        snap.ID,
		},
		SessionID: snap.ID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(config.GetJWTSecret())
	if err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     config.GetSessionCookieName(),
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		Expires:  time.Now().Add(sessionLifetime),
	})

	return snap, nil
}

// Load resolves the session cookie to its stored snapshot. Returns
// ErrNotFound when there is no cookie, the token is invalid, or the
// snapshot has expired.
func (s *Service) Load(ctx context.Context, r *http.Request) (*Snapshot, error) {
	cookie, err := r.Cookie(config.GetSessionCookieName())
	if err != nil {
		return nil, ErrNotFound
	}

	token, err := jwt.ParseWithClaims(cookie.Value, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return config.GetJWTSecret(), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrNotFound
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || claims.SessionID == "" {
		return nil, ErrNotFound
	}

	return s.store.Get(ctx, claims.SessionID)
}

// Save persists the snapshot, refreshing its TTL.
func (s *Service) Save(ctx context.Context, snap *Snapshot) error {
	return s.store.Set(ctx, snap)
}

// Clear removes the stored snapshot and expires the cookie.
func (s *Service) Clear(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(config.GetSessionCookieName()); err == nil {
		if token, err := jwt.ParseWithClaims(cookie.Value, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
			return config.GetJWTSecret(), nil
		}); err == nil {
			if claims, ok := token.Claims.(*SessionClaims); ok {
				_ = s.store.Delete(ctx, claims.SessionID)
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     config.GetSessionCookieName(),
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}
