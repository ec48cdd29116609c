package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/tables-pro/pkg/errors"
)

const contextKey = "session"

// Manager loads the session before a handler runs and persists it afterwards.
type Manager struct {
	store      Store
	signer     *Signer
	cookieName string
	ttl        time.Duration
	secure     bool
	logger     *zap.Logger
}

// Options configures a Manager.
type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// NewManager constructs a session manager.
func NewManager(store Store, signer *Signer, opts Options, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.CookieName == "" {
		opts.CookieName = "tablespro_session"
	}
	return &Manager{
		store:      store,
		signer:     signer,
		cookieName: opts.CookieName,
		ttl:        opts.TTL,
		secure:     opts.Secure,
		logger:     logger,
	}
}

// Middleware attaches a session to every request. The cookie is issued before the
// handler writes its response; values are persisted after the handler returns.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := m.load(c)
		if sess.IsNew() {
			token, err := m.signer.Sign(sess.ID())
			if err != nil {
				m.logger.Error("sign session cookie failed", zap.Error(err))
			} else {
				c.SetSameSite(http.SameSiteLaxMode)
				c.SetCookie(m.cookieName, token, int(m.ttl.Seconds()), "/", "", m.secure, true)
			}
		}
		c.Set(contextKey, sess)

		c.Next()

		if !sess.Modified() {
			return
		}
		if err := m.store.Save(c.Request.Context(), sess.ID(), sess.Values(), m.ttl); err != nil {
			m.logger.Error("save session failed", zap.String("session_id", sess.ID()), zap.Error(err))
		}
	}
}

func (m *Manager) load(c *gin.Context) *Session {
	raw, err := c.Cookie(m.cookieName)
	if err != nil || raw == "" {
		return New(uuid.NewString())
	}
	id, err := m.signer.Parse(raw)
	if err != nil {
		m.logger.Debug("rejecting session cookie", zap.Error(err))
		return New(uuid.NewString())
	}
	values, err := m.store.Load(c.Request.Context(), id)
	if err != nil {
		if !errors.Is(err, appErrors.ErrSessionMiss) {
			m.logger.Warn("load session failed", zap.String("session_id", id), zap.Error(err))
		}
		return restore(id, nil)
	}
	return restore(id, values)
}

// FromContext returns the session attached by Middleware, or a throwaway session.
func FromContext(c *gin.Context) *Session {
	if v, ok := c.Get(contextKey); ok {
		if sess, ok := v.(*Session); ok {
			return sess
		}
	}
	sess := New(uuid.NewString())
	c.Set(contextKey, sess)
	return sess
}
