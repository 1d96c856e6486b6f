package session

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cwrk-planet/meeting-service/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const CookieName = "meeting_session"

var (
	ErrNoSession    = errors.New("no session")
	ErrInvalidToken = errors.New("invalid session token")
)

// Claims identify the signed-in GitHub user. The access token never leaves the server;
// it is kept in the manager keyed by the token id.
type Claims struct {
	jwt.RegisteredClaims
	Login        string `json:"login"`
	Name         string `json:"name,omitempty"`
	Organization string `json:"org,omitempty"`
}

type Config struct {
	Secret    []byte
	Issuer    string
	TTL       time.Duration
	ClockSkew time.Duration
	Secure    bool
}

// Manager issues and reads HS256 signed session cookies.
type Manager struct {
	cfg Config
	now func() time.Time

	mu     sync.Mutex
	tokens map[string]tokenEntry
}

type tokenEntry struct {
	token   string
	expires time.Time
}

func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < 32 {
		return nil, fmt.Errorf("session secret must be at least 32 bytes, got %d", len(cfg.Secret))
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "meeting-service"
	}
	return &Manager{cfg: cfg, now: time.Now, tokens: make(map[string]tokenEntry)}, nil
}

func (m *Manager) Sign(p domain.Participant) (string, error) {
	now := m.now()
	jti := uuid.NewString()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.FormatInt(p.GHID, 10),
			Issuer:    m.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-m.cfg.ClockSkew)),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.TTL)),
		},
		Login:        p.Username,
		Name:         p.Name,
		Organization: p.Organization,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.cfg.Secret)
	if err != nil {
		return "", err
	}

	if p.AccessToken != "" {
		m.mu.Lock()
		m.gcLocked(now)
		m.tokens[jti] = tokenEntry{token: p.AccessToken, expires: now.Add(m.cfg.TTL)}
		m.mu.Unlock()
	}
	return signed, nil
}

func (m *Manager) Parse(tokenStr string) (domain.Participant, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return m.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.cfg.Issuer),
		jwt.WithLeeway(m.cfg.ClockSkew),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	ghid, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || ghid <= 0 {
		return domain.Participant{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	p := domain.Participant{
		GHID:         ghid,
		Username:     claims.Login,
		Name:         claims.Name,
		Organization: claims.Organization,
	}
	m.mu.Lock()
	if e, ok := m.tokens[claims.ID]; ok {
		p.AccessToken = e.token
	}
	m.mu.Unlock()
	return p, nil
}

// Issue signs a session for p and sets it as a cookie.
func (m *Manager) Issue(w http.ResponseWriter, p domain.Participant) error {
	signed, err := m.Sign(p)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(m.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// FromRequest reads the session cookie.
func (m *Manager) FromRequest(r *http.Request) (domain.Participant, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return domain.Participant{}, ErrNoSession
	}
	return m.Parse(c.Value)
}

// Clear drops the cookie and forgets the access token behind it.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(CookieName); err == nil {
		claims := &Claims{}
		if _, _, err := jwt.NewParser().ParseUnverified(c.Value, claims); err == nil {
			m.mu.Lock()
			delete(m.tokens, claims.ID)
			m.mu.Unlock()
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) gcLocked(now time.Time) {
	for id, e := range m.tokens {
		if now.After(e.expires) {
			delete(m.tokens, id)
		}
	}
}
