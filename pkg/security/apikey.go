package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/sakuapp/saku-backend/pkg/config"
)

const (
	keyScheme       = "sk"
	prefixLen       = 8
	secretEntropy   = 32
	keyPartCount    = 3
	prefixCharset   = "abcdefghijklmnopqrstuvwxyz0123456789"
	keyDigestLength = 32
)

// ErrInvalidHash signals a malformed Argon2id hash string.
var ErrInvalidHash = fmt.Errorf("invalid argon2id hash")

// ErrMalformedKey signals a raw key that does not match sk_<prefix>_<secret>.
var ErrMalformedKey = fmt.Errorf("malformed api key")

// ArgonParams captures the Argon2id parameters embedded into each hash string.
type ArgonParams struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

// GeneratedKey is the one-time view of a freshly minted API key. Raw is shown
// to the caller exactly once; only Prefix and the hash of Secret are stored.
type GeneratedKey struct {
	Raw    string
	Prefix string
	Secret string
}

// GenerateAPIKey mints a new key of the form sk_<prefix>_<secret>. The prefix
// is the public lookup handle; the secret carries the entropy.
func GenerateAPIKey() (GeneratedKey, error) {
	prefix, err := randomString(prefixLen)
	if err != nil {
		return GeneratedKey{}, fmt.Errorf("generate prefix: %w", err)
	}

	secretBytes := make([]byte, secretEntropy)
	if _, err := rand.Read(secretBytes); err != nil {
		return GeneratedKey{}, fmt.Errorf("generate secret: %w", err)
	}
	secret := base64.RawURLEncoding.EncodeToString(secretBytes)

	return GeneratedKey{
		Raw:    fmt.Sprintf("%s_%s_%s", keyScheme, prefix, secret),
		Prefix: prefix,
		Secret: secret,
	}, nil
}

// SplitAPIKey breaks a raw key into its prefix and secret parts.
func SplitAPIKey(raw string) (prefix, secret string, err error) {
	parts := strings.SplitN(strings.TrimSpace(raw), "_", keyPartCount)
	if len(parts) != keyPartCount || parts[0] != keyScheme || parts[1] == "" || parts[2] == "" {
		return "", "", ErrMalformedKey
	}
	return parts[1], parts[2], nil
}

// KeyDigest returns a hex SHA-256 digest of the raw key, used only as a cache
// key so the raw material never appears in redis.
func KeyDigest(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:keyDigestLength])
}

// HashSecret returns a formatted Argon2id hash for the provided key secret.
func HashSecret(secret string, cfg config.APIKeyConfig) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("secret cannot be empty")
	}

	params := paramsFromConfig(cfg)
	salt := make([]byte, params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(secret), salt, params.Time, params.Memory, params.Parallelism, params.KeyLen)

	encSalt := base64.RawStdEncoding.EncodeToString(salt)
	encHash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s", params.Memory, params.Time, params.Parallelism, encSalt, encHash), nil
}

// VerifySecret returns true when the secret matches the encoded hash.
func VerifySecret(secret, encoded string) (bool, error) {
	params, salt, hash, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(secret), salt, params.Time, params.Memory, params.Parallelism, params.KeyLen)

	if subtle.ConstantTimeCompare(hash, computed) == 1 {
		return true, nil
	}
	return false, nil
}

func paramsFromConfig(cfg config.APIKeyConfig) ArgonParams {
	threads := clampInt(cfg.ArgonParallelism, 1, 255)
	return ArgonParams{
		Memory:      clampUint32(cfg.ArgonMemoryKB, 8, 512*1024),
		Time:        clampUint32(cfg.ArgonTime, 1, 10),
		Parallelism: uint8(threads),
		SaltLen:     clampUint32(cfg.ArgonSaltLen, 8, 64),
		KeyLen:      clampUint32(cfg.ArgonKeyLen, 16, 64),
	}
}

func decodeHash(encoded string) (ArgonParams, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}

	var params ArgonParams
	for _, piece := range strings.Split(parts[3], ",") {
		kv := strings.SplitN(piece, "=", 2)
		if len(kv) != 2 {
			return ArgonParams{}, nil, nil, ErrInvalidHash
		}
		value, err := strconv.ParseUint(kv[1], 10, 32)
		if err != nil {
			return ArgonParams{}, nil, nil, ErrInvalidHash
		}
		switch kv[0] {
		case "m":
			params.Memory = uint32(value)
		case "t":
			params.Time = uint32(value)
		case "p":
			params.Parallelism = uint8(value)
		}
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}

	params.SaltLen = uint32(len(salt))
	params.KeyLen = uint32(len(hash))
	return params, salt, hash, nil
}

func randomString(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]rune, length)
	charset := []rune(prefixCharset)
	for i, b := range buf {
		out[i] = charset[int(b)%len(charset)]
	}
	return string(out), nil
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func clampUint32(value, min, max int) uint32 {
	return uint32(clampInt(value, min, max))
}
