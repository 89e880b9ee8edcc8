package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dklimov/taskvault/internal/common"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// bearerToken extracts the token from the Authorization header. The second
// return value is false when the header is missing or not in bearer form.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(common.AuthorizationHeaderName)
	if !strings.HasPrefix(header, common.BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, common.BearerPrefix))
	if token == "" {
		return "", false
	}
	return token, true
}

// withAuth guards an endpoint behind a valid access token. The verified user
// ID is stored in the request context; a missing, malformed, or expired token
// gets the same 401 response.
func (s *HTTPServer) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		token, ok := bearerToken(r)
		if !ok {
			writeError(w, common.ErrInvalidToken)
			return
		}

		userID, err := s.users.VerifyToken(token)
		if err != nil {
			s.logger.Debug(r.Context(), "token rejected", "reason", err.Error())
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next(w, r.WithContext(ctx))
	}
}

// userIDFromContext returns the user ID stored by withAuth.
func userIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok
}
