package testutil

import (
	"fmt"
	"sync"
)

// FixedTokenGenerator returns the same database token every time.
//
// Two databases built from the same script with the same generator have
// identical tokens, so their journals and golden snapshots compare
// byte for byte.
//
// Thread-safety: FixedTokenGenerator is stateless and safe for concurrent use.
type FixedTokenGenerator struct {
	token string
}

// NewFixedTokenGenerator creates a fixed token generator.
//
// If token is empty, Generate() returns "test-db-default".
func NewFixedTokenGenerator(token string) *FixedTokenGenerator {
	if token == "" {
		token = "test-db-default"
	}
	return &FixedTokenGenerator{token: token}
}

// Generate returns the fixed token.
//
// Implements model.TokenGenerator.
func (g *FixedTokenGenerator) Generate() string {
	return g.token
}

// SequenceTokenGenerator hands out prefix-0001, prefix-0002, ... for tests
// that create several databases and need each token distinct but stable.
//
// Unlike FixedTokenGenerator it keeps state; Reset starts the sequence over.
// All methods are safe for concurrent use.
type SequenceTokenGenerator struct {
	mu     sync.Mutex
	prefix string
	seq    int64
}

// NewSequenceTokenGenerator creates a generator whose first token is
// prefix-0001. An empty prefix means "test-db".
func NewSequenceTokenGenerator(prefix string) *SequenceTokenGenerator {
	if prefix == "" {
		prefix = "test-db"
	}
	return &SequenceTokenGenerator{prefix: prefix}
}

// Generate returns the next token in the sequence.
func (g *SequenceTokenGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%04d", g.prefix, g.seq)
}

// Issued returns how many tokens have been generated since the last reset.
func (g *SequenceTokenGenerator) Issued() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset restarts the sequence. The next Generate returns prefix-0001.
func (g *SequenceTokenGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
