package auth

import (
	"log"
	"net/http"
	"strings"

	"github.com/fdg312/calorie-diary/internal/config"
	"github.com/fdg312/calorie-diary/internal/userctx"
)

// Middleware кладёт owner id из Bearer-токена в контекст запроса.
type Middleware struct {
	config  *config.Config
	service *Service
}

func NewMiddleware(cfg *config.Config, service *Service) *Middleware {
	return &Middleware{config: cfg, service: service}
}

// Wrap is a no-op for AUTH_MODE=none. With AUTH_REQUIRED every non-public
// request needs a token; otherwise requests without one use the default
// diary, and a bad token is still rejected.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	if m.config.AuthMode == "none" {
		return next
	}
	required := m.config.AuthRequired

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" && !required {
			next.ServeHTTP(w, r)
			return
		}

		ownerID, err := bearerSubject(m.service, header)
		if err != nil {
			msg := "Unauthorized"
			if header != "" {
				msg = "Invalid or expired token"
			}
			writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", msg)
			return
		}

		if !required {
			log.Printf("INFO auth: token accepted sub=%s %s %s", ownerID, r.Method, r.URL.Path)
		}
		next.ServeHTTP(w, r.WithContext(userctx.WithUserID(r.Context(), ownerID)))
	})
}

func bearerSubject(service *Service, header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrInvalidToken
	}
	return service.Verify(strings.TrimSpace(token))
}

// isPublicPath: health checks, token issuance and the legacy agent endpoint.
func isPublicPath(path string) bool {
	return path == "/healthz" || path == "/api/agent" || strings.HasPrefix(path, "/v1/auth/")
}
