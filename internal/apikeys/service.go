package apikeys

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sakuapp/saku-backend/pkg/config"
	"github.com/sakuapp/saku-backend/pkg/db"
	"github.com/sakuapp/saku-backend/pkg/db/models"
	pkgerrors "github.com/sakuapp/saku-backend/pkg/errors"
	"github.com/sakuapp/saku-backend/pkg/logger"
	"github.com/sakuapp/saku-backend/pkg/security"
)

// ownerCache is the slice of the redis client the validator needs. A nil cache
// degrades to a database lookup per request.
type ownerCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	APIKeyOwnerKey(digest string) string
}

// Identity is the resolved caller behind a validated key. Handlers receive the
// owner id from here and never from request input.
type Identity struct {
	OwnerID uuid.UUID
	KeyID   uuid.UUID
}

// GeneratedKey pairs the stored row with the raw key string. The raw key is
// returned exactly once.
type GeneratedKey struct {
	Key    models.APIKey
	RawKey string
}

// Service issues and validates API keys.
type Service interface {
	Generate(ctx context.Context, ownerID uuid.UUID, name string) (*GeneratedKey, error)
	Validate(ctx context.Context, rawKey string) (*Identity, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]models.APIKey, error)
	Revoke(ctx context.Context, ownerID, keyID uuid.UUID) error
}

type service struct {
	repo  Repository
	cache ownerCache
	cfg   config.APIKeyConfig
	logg  *logger.Logger
}

// NewService builds the API key service. cache may be nil.
func NewService(repo Repository, cache ownerCache, cfg config.APIKeyConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("api key repository required")
	}
	return &service{repo: repo, cache: cache, cfg: cfg, logg: logg}, nil
}

func (s *service) Generate(ctx context.Context, ownerID uuid.UUID, name string) (*GeneratedKey, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "key name is required")
	}
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}

	generated, err := security.GenerateAPIKey()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating key material")
	}
	hash, err := security.HashSecret(generated.Secret, s.cfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing key secret")
	}

	row := &models.APIKey{
		OwnerID: ownerID,
		Name:    name,
		Prefix:  generated.Prefix,
		KeyHash: hash,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "key prefix collision")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing api key")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithAPIKeyID(ctx, row.ID.String()), "api key generated")
	}
	return &GeneratedKey{Key: *row, RawKey: generated.Raw}, nil
}

type cachedIdentity struct {
	OwnerID string `json:"owner_id"`
	KeyID   string `json:"key_id"`
}

// Validate resolves a raw key to its owner. Any parse, lookup, or verify
// failure collapses into the same UNAUTHORIZED answer so callers cannot probe
// which keys exist.
func (s *service) Validate(ctx context.Context, rawKey string) (*Identity, error) {
	rawKey = strings.TrimSpace(rawKey)
	if rawKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing API key")
	}

	digest := security.KeyDigest(rawKey)
	if identity := s.cachedIdentity(ctx, digest); identity != nil {
		return identity, nil
	}

	prefix, secret, err := security.SplitAPIKey(rawKey)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid API key")
	}

	row, err := s.repo.FindByPrefix(ctx, prefix)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid API key")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up api key")
	}

	ok, err := security.VerifySecret(secret, row.KeyHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid API key")
	}

	identity := &Identity{OwnerID: row.OwnerID, KeyID: row.ID}
	s.cacheIdentity(ctx, digest, identity)

	// Best effort; a failed bump never blocks the request.
	if err := s.repo.TouchLastUsed(ctx, row.ID, time.Now().UTC()); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "failed to bump api key last_used_at")
	}
	return identity, nil
}

func (s *service) List(ctx context.Context, ownerID uuid.UUID) ([]models.APIKey, error) {
	keys, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing api keys")
	}
	return keys, nil
}

// Revoke removes the key row. The owner cache entry is left to expire on its
// own TTL because the digest cannot be recomputed without the raw key.
func (s *service) Revoke(ctx context.Context, ownerID, keyID uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, ownerID, keyID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoking api key")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "api key not found")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithAPIKeyID(ctx, keyID.String()), "api key revoked")
	}
	return nil
}

func (s *service) cachedIdentity(ctx context.Context, digest string) *Identity {
	if s.cache == nil {
		return nil
	}
	value, err := s.cache.Get(ctx, s.cache.APIKeyOwnerKey(digest))
	if err != nil {
		return nil
	}
	var payload cachedIdentity
	if err := json.Unmarshal([]byte(value), &payload); err != nil {
		return nil
	}
	ownerID, err := uuid.Parse(payload.OwnerID)
	if err != nil {
		return nil
	}
	keyID, err := uuid.Parse(payload.KeyID)
	if err != nil {
		return nil
	}
	return &Identity{OwnerID: ownerID, KeyID: keyID}
}

func (s *service) cacheIdentity(ctx context.Context, digest string, identity *Identity) {
	if s.cache == nil || s.cfg.OwnerCacheTTL <= 0 {
		return
	}
	payload, err := json.Marshal(cachedIdentity{
		OwnerID: identity.OwnerID.String(),
		KeyID:   identity.KeyID.String(),
	})
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, s.cache.APIKeyOwnerKey(digest), string(payload), s.cfg.OwnerCacheTTL)
}
