package tracking

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/ignite/analytics-tagger/internal/analytics/flashstore"
	"github.com/ignite/analytics-tagger/internal/analytics/provider"
	"github.com/ignite/analytics-tagger/internal/analytics/trackingbag"
	"github.com/ignite/analytics-tagger/internal/config"
	"github.com/ignite/analytics-tagger/internal/pkg/httputil"
	"github.com/ignite/analytics-tagger/internal/pkg/logger"
)

type ctxKey struct{}

// ProviderFactory builds the request's provider around its tracking bag.
type ProviderFactory func(bag *trackingbag.Bag) (provider.Provider, error)

// Session is the per-request tracking state of one visitor.
type Session struct {
	ID       string
	Bag      *trackingbag.Bag
	Provider provider.Provider
}

// Persist flushes pending commands to the store. Handlers that redirect call
// it before writing the response; the middleware calls it again afterwards,
// which is a no-op when nothing changed.
func (s *Session) Persist(ctx context.Context) error {
	return s.Bag.Persist(ctx)
}

// FromContext returns the session attached by Sessions.Middleware, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

// Sessions identifies visitors by cookie and carries their tracking bag
// across requests.
type Sessions struct {
	store       flashstore.Store
	cfg         config.SessionConfig
	newProvider ProviderFactory
}

func NewSessions(store flashstore.Store, cfg config.SessionConfig, newProvider ProviderFactory) *Sessions {
	return &Sessions{store: store, cfg: cfg, newProvider: newProvider}
}

// Middleware restores the visitor's bag, builds a provider for the request
// and persists whatever is still pending once the handler returns.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := s.sessionID(w, r)

		bag, err := trackingbag.Restore(r.Context(), s.store, id)
		if err != nil {
			// Restore still returns a usable bag.
			logger.Warn("tracking bag restore failed", "session", id, "error", err)
		}

		p, err := s.newProvider(bag)
		if err != nil {
			httputil.InternalError(w, err)
			return
		}

		sess := &Session{ID: id, Bag: bag, Provider: p}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))

		if err := sess.Persist(r.Context()); err != nil {
			logger.Warn("tracking bag persist failed", "session", id, "error", err)
		}
	})
}

func (s *Sessions) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(s.cfg.CookieName); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   s.cfg.CookieMaxAge,
		HttpOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
