package auth

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/chainsafe/lockmint-relayer/pkg/app/errors"
	apphttp "github.com/chainsafe/lockmint-relayer/pkg/app/http"
)

// RequireOperator rejects requests without a valid operator bearer token
func RequireOperator(v *JWTValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(nil, "missing bearer token"))
				return
			}

			claims, err := v.ValidateToken(token)
			if err != nil {
				logger.Warn("Rejected operator token", zap.Error(err), zap.String("path", r.URL.Path))
				if errors.Is(err, ErrNotOperator) {
					apphttp.DefaultErrorHandler(w, apperrors.ForbiddenError(err, "operator role required"))
					return
				}
				apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(err, "invalid token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithOperator(r.Context(), claims.Subject)))
		})
	}
}
