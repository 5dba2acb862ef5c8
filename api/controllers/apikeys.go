package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sakuapp/saku-backend/api/responses"
	"github.com/sakuapp/saku-backend/api/validators"
	"github.com/sakuapp/saku-backend/internal/apikeys"
	"github.com/sakuapp/saku-backend/pkg/db/models"
	"github.com/sakuapp/saku-backend/pkg/logger"
)

type generateKeyRequest struct {
	Name    string `json:"name" validate:"required"`
	OwnerID string `json:"owner_id" validate:"required,uuid"`
}

type apiKeyResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Prefix     string `json:"prefix"`
	CreatedAt  string `json:"created_at"`
	LastUsedAt string `json:"last_used_at,omitempty"`
}

func toAPIKeyResponse(key models.APIKey) apiKeyResponse {
	out := apiKeyResponse{
		ID:        key.ID.String(),
		Name:      key.Name,
		Prefix:    key.Prefix,
		CreatedAt: key.CreatedAt.Format(time.RFC3339),
	}
	if key.LastUsedAt != nil {
		out.LastUsedAt = key.LastUsedAt.Format(time.RFC3339)
	}
	return out
}

// GenerateAPIKey mints a key for an owner. The raw key appears in this
// response and nowhere else.
func GenerateAPIKey(svc apikeys.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req generateKeyRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		generated, err := svc.Generate(ctx, uuid.MustParse(req.OwnerID), req.Name)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"key":     toAPIKeyResponse(generated.Key),
			"raw_key": generated.RawKey,
		})
	}
}

func ListAPIKeys(svc apikeys.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		ownerID, err := validators.ParseQueryUUID(r, "owner_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		keys, err := svc.List(ctx, ownerID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		out := make([]apiKeyResponse, 0, len(keys))
		for _, key := range keys {
			out = append(out, toAPIKeyResponse(key))
		}
		responses.WriteSuccess(w, out)
	}
}

func RevokeAPIKey(svc apikeys.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		keyID, err := validators.ParseUUIDParam(r, "keyId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		ownerID, err := validators.ParseQueryUUID(r, "owner_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Revoke(ctx, ownerID, keyID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "revoked"})
	}
}
