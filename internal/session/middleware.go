package session

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CookieName = "sessionid"
	contextKey = "session"
)

type handle struct {
	id    string
	state *State
	store Store
	codec *Codec
	ttl   time.Duration
}

// issueCookie signs a fresh cookie so its expiry follows the stored state.
func (h *handle) issueCookie(c *gin.Context) error {
	token, err := h.codec.Encode(h.id)
	if err != nil {
		return err
	}
	c.SetCookie(CookieName, token, int(h.ttl.Seconds()), "/", "", false, true)
	return nil
}

// Middleware loads the visitor's State before the handler runs and persists
// it afterwards when it changed. Missing, expired or forged cookies get a
// fresh session. Every save re-issues the cookie, so the session expires
// ttl after its last change.
func Middleware(store Store, codec *Codec, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var h *handle
		if raw, err := c.Cookie(CookieName); err == nil {
			if id, err := codec.Decode(raw); err == nil {
				state, err := store.Load(ctx, id)
				switch {
				case err == nil:
					h = &handle{id: id, state: state, store: store, codec: codec, ttl: ttl}
				case !errors.Is(err, ErrNotFound):
					log.Printf("Warning: failed to load session: %v", err)
				}
			}
		}

		if h == nil {
			h = &handle{id: uuid.NewString(), state: New(), store: store, codec: codec, ttl: ttl}
			if err := h.issueCookie(c); err != nil {
				log.Printf("Error creating session cookie: %v", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session"})
				return
			}
		}

		c.Set(contextKey, h)
		c.Next()

		Save(c)
	}
}

// FromContext returns the request's State. Outside Middleware it returns a
// detached empty State.
func FromContext(c *gin.Context) *State {
	if h := handleFrom(c); h != nil {
		return h.state
	}
	return New()
}

// Save writes the State to the store if it changed and refreshes the cookie.
// Handlers call it before writing their response so that the next request
// sees the update and the cookie header still goes out.
func Save(c *gin.Context) {
	h := handleFrom(c)
	if h == nil || !h.state.Modified() {
		return
	}
	if err := h.store.Save(c.Request.Context(), h.id, h.state); err != nil {
		log.Printf("Error saving session: %v", err)
		return
	}
	h.state.markSaved()
	if err := h.issueCookie(c); err != nil {
		log.Printf("Error refreshing session cookie: %v", err)
	}
}

// RequireLogin rejects requests whose session has no signed-in user.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !FromContext(c).IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "Login required",
				"redirect": "/api/auth/login",
			})
			return
		}
		c.Next()
	}
}

func handleFrom(c *gin.Context) *handle {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil
	}
	h, _ := v.(*handle)
	return h
}
