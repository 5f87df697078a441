package bde

import (
	"log"

	"github.com/deploymenttheory/go-bde/pkg/cryptoprovider"
	"github.com/deploymenttheory/go-bde/pkg/types"
	"github.com/deploymenttheory/go-bde/pkg/volume"
)

// Logger is the injected logging collaborator (SPEC_FULL.md §3/§6):
// unknown entry types, unknown protection types, and diagnostic notices
// (the all-zero diffuser tweak key, Design Note 9) are routed through it
// rather than dropped silently or written straight to stderr. It is an
// alias of types.Logger so the packages below this facade (which cannot
// import bde without a cycle) can accept and log through the same
// interface callers configure here.
type Logger = types.Logger

// StdLogger adapts the standard library's *log.Logger to the Logger
// interface, for callers who want diagnostics on stderr without pulling in
// a structured-logging dependency this module itself doesn't carry (see
// DESIGN.md: the corpus carries no logging library for code at this
// layer).
type StdLogger struct {
	L *log.Logger
}

func (s StdLogger) Debugf(format string, args ...any) {
	s.L.Printf("DEBUG "+format, args...)
}

func (s StdLogger) Warnf(format string, args ...any) {
	s.L.Printf("WARN "+format, args...)
}

// config holds the resolved options a Volume is constructed with.
type config struct {
	cacheSize int
	provider  cryptoprovider.CryptoProvider
	logger    Logger
}

func defaultConfig() *config {
	return &config{
		cacheSize: volume.DefaultCacheSize,
		provider:  cryptoprovider.NewDefault(),
		logger:    types.NoopLogger{},
	}
}

// Option configures a Volume at Open time.
type Option func(*config)

// WithCacheSize overrides the sector cache's capacity (default 64,
// spec.md §4.G point 3). A size <= 0 disables caching entirely.
func WithCacheSize(size int) Option {
	return func(c *config) { c.cacheSize = size }
}

// WithCryptoProvider overrides the cipher-primitive implementation
// (spec.md §6's external crypto-provider boundary) — for callers backed by
// an HSM, platform CNG, or a test double.
func WithCryptoProvider(p cryptoprovider.CryptoProvider) Option {
	return func(c *config) { c.provider = p }
}

// WithLogger injects a Logger for unknown-type/protector and diagnostic
// notices (SPEC_FULL.md §6).
func WithLogger(l Logger) Option {
	return func(c *config) { c.logger = l }
}
