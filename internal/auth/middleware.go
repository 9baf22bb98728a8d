package auth

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"preventa/internal/domain"
	"preventa/internal/dto"
	"preventa/internal/httpx"
)

// Middleware authenticates the request from the Authorization bearer token.
// Browsers cannot set headers on a websocket upgrade, so a token query
// parameter is accepted as well.
func Middleware(verifier *Verifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				token = r.URL.Query().Get("token")
			}
			if token == "" {
				writeAuthError(w, logger, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
				return
			}

			principal, err := verifier.Verify(token)
			if err != nil {
				logger.Debug("token rejected", zap.Error(err))
				writeAuthError(w, logger, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireRole rejects authenticated callers whose role is not listed.
func RequireRole(logger *zap.Logger, roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := FromContext(r.Context())
			if !ok {
				writeAuthError(w, logger, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}
			if !p.HasRole(roles...) {
				writeAuthError(w, logger, http.StatusForbidden, "FORBIDDEN", "role "+string(p.Role)+" may not perform this action")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, logger *zap.Logger, status int, code, message string) {
	httpx.WriteJSON(w, logger, status, dto.ErrorResponse{
		Status:    status,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}
