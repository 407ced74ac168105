package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const (
	// AgentCookieName carries the opaque id of the calling user agent.
	AgentCookieName = "ach_agent"
	agentContextKey = contextKey("agent_id")
	agentCookieTTL  = 365 * 24 * time.Hour
)

// AgentIDFromContext returns the agent id placed by AgentCookie.
func AgentIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(agentContextKey).(string)
	return id
}

// WithAgentID stores an agent id in ctx.
func WithAgentID(ctx context.Context, agentID string) context.Context {
	return context.WithValue(ctx, agentContextKey, agentID)
}

// AgentCookie identifies the user agent by cookie, issuing a fresh UUID when
// the cookie is missing or malformed. The id scopes which sessions the caller
// can see; it is not an authentication mechanism.
func AgentCookie(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			agentID := ""
			if c, err := r.Cookie(AgentCookieName); err == nil {
				if id, err := uuid.Parse(c.Value); err == nil {
					agentID = id.String()
				}
			}

			if agentID == "" {
				agentID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     AgentCookieName,
					Value:    agentID,
					Path:     "/",
					Expires:  time.Now().Add(agentCookieTTL),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(WithAgentID(r.Context(), agentID)))
		})
	}
}

// ClearAgentCookie expires the agent cookie on the response.
func ClearAgentCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:    AgentCookieName,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
		MaxAge:  -1,
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
