package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/sakuapp/saku-backend/api/responses"
	"github.com/sakuapp/saku-backend/internal/apikeys"
	pkgerrors "github.com/sakuapp/saku-backend/pkg/errors"
	"github.com/sakuapp/saku-backend/pkg/logger"
)

const apiKeyHeader = "x-api-key"

type keyValidator interface {
	Validate(ctx context.Context, rawKey string) (*apikeys.Identity, error)
}

// APIKeyAuth gates the external API. The validated owner id becomes the only
// owner scope downstream handlers ever see.
func APIKeyAuth(validator keyValidator, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			rawKey := strings.TrimSpace(r.Header.Get(apiKeyHeader))
			if rawKey == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing API key"))
				return
			}

			identity, err := validator.Validate(ctx, rawKey)
			if err != nil {
				if pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid API key"))
					return
				}
				responses.WriteError(ctx, logg, w, err)
				return
			}

			ctx = WithOwner(ctx, identity.OwnerID, identity.KeyID)
			if logg != nil {
				ctx = logg.WithOwnerID(ctx, identity.OwnerID.String())
				ctx = logg.WithAPIKeyID(ctx, identity.KeyID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BootstrapAuth guards key management with the admin bootstrap token.
func BootstrapAuth(token string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if token == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "key management is disabled"))
				return
			}
			provided := strings.TrimSpace(r.Header.Get("x-bootstrap-token"))
			if provided == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing bootstrap token"))
				return
			}
			if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid bootstrap token"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
