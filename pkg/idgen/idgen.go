// Package idgen issues collision-free unique id tokens for one generation run.
//
// A Generator owns its own registry of issued tokens; uniqueness is scoped to
// the generator instance, never shared across runs and never persisted.
// Tokens are 128-bit random values hex-encoded to 32 characters, so the
// redraw loop on collision terminates with overwhelming probability.
package idgen

import (
	"encoding/hex"
	"sync"

	"github.com/google/uuid"

	"github.com/fixgen/fixgen/pkg/errors"
)

// maxDrawAttempts bounds the redraw loop per token. With 128 bits of entropy
// this limit is statistically unreachable; hitting it means the random
// source is broken and the run must die.
const maxDrawAttempts = 100

// Generator issues unique tokens against a run-scoped registry.
// It is safe for concurrent use: check-then-insert is a single critical
// section under the registry lock.
type Generator struct {
	mu     sync.Mutex
	issued map[string]struct{}
}

// NewGenerator creates a Generator with an empty registry.
func NewGenerator() *Generator {
	return &Generator{
		issued: make(map[string]struct{}),
	}
}

// ReserveOne returns one fresh token not issued before by this generator.
func (g *Generator) ReserveOne() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reserveLocked()
}

// Reserve returns exactly count fresh tokens. Draws colliding with
// previously issued tokens are silently retried; only the newly issued
// tokens are returned, never the full registry.
func (g *Generator) Reserve(count int) ([]string, error) {
	if count < 0 {
		return nil, errors.New(errors.ErrorTypeValidation, "reserve count must not be negative")
	}

	tokens := make([]string, 0, count)

	g.mu.Lock()
	defer g.mu.Unlock()
	for i := 0; i < count; i++ {
		token, err := g.reserveLocked()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}

	return tokens, nil
}

// Issued returns the number of tokens issued so far.
func (g *Generator) Issued() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.issued)
}

// reserveLocked draws tokens until one misses the registry, then records it.
// Callers must hold g.mu.
func (g *Generator) reserveLocked() (string, error) {
	for attempt := 0; attempt < maxDrawAttempts; attempt++ {
		token, err := draw()
		if err != nil {
			return "", err
		}
		if _, dup := g.issued[token]; dup {
			continue
		}
		g.issued[token] = struct{}{}
		return token, nil
	}

	return "", errors.New(errors.ErrorTypeIDExhausted, "could not draw a fresh token").
		WithDetail("attempts", maxDrawAttempts)
}

// draw produces one candidate token: a random UUID hex-encoded without dashes.
func draw() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeIDExhausted, "random source failed")
	}
	return hex.EncodeToString(id[:]), nil
}

// Token returns a single random token outside any registry. It backs
// auxiliary random strings (record names) that do not need uniqueness
// guarantees.
func Token() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}
