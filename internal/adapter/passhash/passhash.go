// Package passhash contains the default [domain.PasswordHasher]
// implementation, an Argon2id hasher producing self-describing PHC strings.
package passhash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/mergington/schooldb/domain"
)

// Hasher hashes plaintext passwords with Argon2id and a fresh salt per call.
// The encoded form embeds the algorithm parameters and salt, so verification
// needs only the stored string.
type Hasher struct {
	time    uint32
	memory  uint32
	threads uint8
	keyLen  uint32
	saltLen int
}

// Option configures hasher parameters through the functional options
// pattern.
type Option func(*Hasher)

// WithTime sets the number of Argon2 passes.
func WithTime(t uint32) Option {
	return func(h *Hasher) { h.time = t }
}

// WithMemory sets the Argon2 memory cost in KiB.
func WithMemory(m uint32) Option {
	return func(h *Hasher) { h.memory = m }
}

// WithThreads sets the Argon2 parallelism degree.
func WithThreads(p uint8) Option {
	return func(h *Hasher) { h.threads = p }
}

// NewHasher returns a hasher with the RFC 9106 low-memory parameters.
func NewHasher(options ...Option) *Hasher {
	h := &Hasher{
		time:    3,
		memory:  64 * 1024,
		threads: 4,
		keyLen:  32,
		saltLen: 16,
	}
	for _, option := range options {
		option(h)
	}
	return h
}

// Hash implements [domain.PasswordHasher].
func (h *Hasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, h.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	key := argon2.IDKey([]byte(plaintext), salt, h.time, h.memory, h.threads, h.keyLen)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.memory, h.time, h.threads,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// Verify implements [domain.PasswordHasher]. The parameters are taken from
// the encoded string, not from the receiver, so hashes survive parameter
// changes.
func (h *Hasher) Verify(plaintext string, encoded string) (bool, error) {
	params, salt, key, err := parse(encoded)
	if err != nil {
		return false, err
	}
	other := argon2.IDKey([]byte(plaintext), salt, params.time, params.memory, params.threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, other) == 1, nil
}

type params struct {
	time    uint32
	memory  uint32
	threads uint8
}

func parse(encoded string) (params, []byte, []byte, error) {
	var p params
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, nil, nil, domain.ErrHashFormat{Reason: "expected $argon2id$v=..$m=..,t=..,p=..$salt$hash"}
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, domain.ErrHashFormat{Reason: "unreadable version"}
	}
	if version != argon2.Version {
		return p, nil, nil, domain.ErrHashFormat{Reason: fmt.Sprintf("unsupported argon2 version %d", version)}
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, nil, nil, domain.ErrHashFormat{Reason: "unreadable parameters"}
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, domain.ErrHashFormat{Reason: "unreadable salt"}
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, domain.ErrHashFormat{Reason: "unreadable hash"}
	}
	return p, salt, key, nil
}
