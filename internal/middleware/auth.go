package middleware

import (
	"net/http"

	"epdq-gateway/internal/auth"
	"epdq-gateway/internal/logger"
	"epdq-gateway/internal/utils"

	"go.uber.org/zap"
)

// RequireOperator rejects requests without a valid operator token and puts
// the token claims on the request context.
func RequireOperator(tokens auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				utils.WriteJSONError(w, "missing access token", http.StatusUnauthorized)
				return
			}

			claims, err := tokens.ParseToken(tokenStr)
			if err != nil {
				logger.FromCtx(r.Context()).Info("rejected operator token", zap.Error(err))
				utils.WriteJSONError(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := auth.WithClaims(r.Context(), claims)
			ctx = logger.WithFields(ctx, zap.String("operator", claims.Email))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
