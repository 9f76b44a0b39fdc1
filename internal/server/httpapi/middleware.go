package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/postscript/internal/common"
	"github.com/dmitrijs2005/postscript/internal/server/auth"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// userIDFromContext returns the authenticated user id set by withAuth.
func userIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// callerShare extracts the caller's secret share header. The share travels
// only in this header and is never logged or persisted.
func callerShare(r *http.Request) string {
	return r.Header.Get(common.ShareHeaderName)
}

// withAuth verifies the bearer session token and stores the user id in the
// request context.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthHeaderName)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, common.ErrorUnauthorized)
			return
		}

		claims, err := auth.VerifyToken(token, s.jwtSecret)
		if err != nil {
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next(w, r.WithContext(ctx))
	}
}
