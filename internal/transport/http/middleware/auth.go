package httpmw

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cwrk-planet/meeting-service/internal/domain"
)

type ctxKey int

const ctxKeyParticipant ctxKey = iota

// SessionReader resolves the signed-in participant from a request.
type SessionReader interface {
	FromRequest(r *http.Request) (domain.Participant, error)
}

// Authenticate attaches the session participant to the context when there is a valid session.
// It never rejects a request.
func Authenticate(sessions SessionReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p, err := sessions.FromRequest(r); err == nil {
				r = r.WithContext(WithParticipant(r.Context(), p))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser answers 401 JSON for API calls without a session.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ParticipantFromCtx(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Not signed in."})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePage sends anonymous browsers to the login flow.
func RequirePage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ParticipantFromCtx(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithParticipant(ctx context.Context, p domain.Participant) context.Context {
	return context.WithValue(ctx, ctxKeyParticipant, p)
}

func ParticipantFromCtx(ctx context.Context) (domain.Participant, bool) {
	p, ok := ctx.Value(ctxKeyParticipant).(domain.Participant)
	return p, ok && p.GHID != 0
}
