package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cwrk-planet/meeting-service/internal/domain"

	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(Config{Secret: []byte(strings.Repeat("k", 32)), TTL: time.Hour})
	require.NoError(t, err)
	return m
}

func TestNewManager_ShortSecret(t *testing.T) {
	_, err := NewManager(Config{Secret: []byte("short")})
	require.Error(t, err)
}

func TestSignParse_RoundTrip(t *testing.T) {
	req := require.New(t)
	m := newTestManager(t)
	p := domain.Participant{GHID: 42, Username: "alice", Name: "Alice", AccessToken: "gho_x"}

	tok, err := m.Sign(p)
	req.NoError(err)
	req.NotContains(tok, "gho_x")

	got, err := m.Parse(tok)
	req.NoError(err)
	req.Equal(p, got)
}

func TestParse_Rejects(t *testing.T) {
	m := newTestManager(t)
	tok, err := m.Sign(domain.Participant{GHID: 1, Username: "a"})
	require.NoError(t, err)

	other, err := NewManager(Config{Secret: []byte(strings.Repeat("z", 32))})
	require.NoError(t, err)
	_, err = other.Parse(tok)
	require.ErrorIs(t, err, ErrInvalidToken)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.Parse(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestCookieLifecycle(t *testing.T) {
	req := require.New(t)
	m := newTestManager(t)
	p := domain.Participant{GHID: 7, Username: "bob", AccessToken: "tok"}

	rec := httptest.NewRecorder()
	req.NoError(m.Issue(rec, p))
	cookies := rec.Result().Cookies()
	req.Len(cookies, 1)
	req.True(cookies[0].HttpOnly)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookies[0])
	got, err := m.FromRequest(r)
	req.NoError(err)
	req.Equal(p, got)

	m.Clear(httptest.NewRecorder(), r)
	got, err = m.FromRequest(r)
	req.NoError(err)
	req.Empty(got.AccessToken)

	_, err = m.FromRequest(httptest.NewRequest(http.MethodGet, "/", nil))
	req.ErrorIs(err, ErrNoSession)
}
