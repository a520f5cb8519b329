package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"chem-purchase-assistant/models"
)

const (
	defaultCookieName = "chem_session"
	defaultMaxAge     = 24 * time.Hour
)

// ErrInvalidConfig indicates the manager was created with missing or invalid options
var ErrInvalidConfig = errors.New("session: invalid config")

// Data is the payload stored in the signed session cookie
type Data struct {
	ID       string    `json:"id"`
	UserID   int64     `json:"uid"`
	Username string    `json:"username"`
	IssuedAt time.Time `json:"iat"`
}

// Config controls cookie encoding and lifetime
type Config struct {
	CookieName string
	HashKey    []byte
	BlockKey   []byte
	MaxAge     time.Duration
	Secure     bool
	Now        func() time.Time
}

// Manager issues and reads stateless signed session cookies
type Manager struct {
	cfg    Config
	codec  *securecookie.SecureCookie
	logger *zap.Logger
}

// NewManager creates a Manager. The hash key is required.
func NewManager(cfg Config, logger *zap.Logger) (*Manager, error) {
	if len(cfg.HashKey) == 0 {
		return nil, fmt.Errorf("%w: hash key is required", ErrInvalidConfig)
	}
	if cfg.CookieName == "" {
		cfg.CookieName = defaultCookieName
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = defaultMaxAge
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	codec := securecookie.New(cfg.HashKey, cfg.BlockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(cfg.MaxAge.Seconds()))

	return &Manager{cfg: cfg, codec: codec, logger: logger}, nil
}

// Issue starts a session for user and writes its cookie
func (m *Manager) Issue(w http.ResponseWriter, user *models.User) (Data, error) {
	data := Data{
		ID:       ulid.Make().String(),
		UserID:   user.ID,
		Username: user.Username,
		IssuedAt: m.cfg.Now().UTC(),
	}

	encoded, err := m.codec.Encode(m.cfg.CookieName, data)
	if err != nil {
		return Data{}, fmt.Errorf("encode session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    encoded,
		Path:     "/",
		Secure:   m.cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.cfg.MaxAge.Seconds()),
		Expires:  data.IssuedAt.Add(m.cfg.MaxAge),
	})
	return data, nil
}

// Read decodes the session cookie. Missing, tampered and expired cookies all report false.
func (m *Manager) Read(r *http.Request) (Data, bool) {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil {
		return Data{}, false
	}

	var data Data
	if err := m.codec.Decode(m.cfg.CookieName, cookie.Value, &data); err != nil {
		m.logger.Debug("rejected session cookie", zap.Error(err))
		return Data{}, false
	}
	if data.UserID == 0 || data.Username == "" {
		return Data{}, false
	}
	if m.cfg.Now().After(data.IssuedAt.Add(m.cfg.MaxAge)) {
		return Data{}, false
	}
	return data, true
}

// Clear expires the session cookie
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     "/",
		Secure:   m.cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

type contextKey struct{}

// WithData stores the session on ctx
func WithData(ctx context.Context, data Data) context.Context {
	return context.WithValue(ctx, contextKey{}, data)
}

// FromContext returns the session loaded by Load
func FromContext(ctx context.Context) (Data, bool) {
	data, ok := ctx.Value(contextKey{}).(Data)
	return data, ok
}

// Load puts a valid session, when present, on the request context
func (m *Manager) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if data, ok := m.Read(r); ok {
			r = r.WithContext(WithData(r.Context(), data))
		}
		next.ServeHTTP(w, r)
	})
}

// Require rejects requests without a session with 401
func Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(models.ErrorResponse{Error: "Authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
