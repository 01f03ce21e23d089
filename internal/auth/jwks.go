package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/terraconstructs/taskapi/internal/telemetry"
)

const maxJWKSBodyBytes = 1 << 20

// KeyProviderConfig configures a KeyProvider.
type KeyProviderConfig struct {
	// JWKSURI is the identity provider's key set endpoint.
	JWKSURI string

	// RequestsPerMinute bounds upstream fetches. Misses beyond it fail fast.
	RequestsPerMinute int

	// Cache enables the signing key cache; CacheTTL is the lifetime of a
	// cached key and CacheSize the maximum number of kids kept (0 = unbounded).
	Cache     bool
	CacheTTL  time.Duration
	CacheSize int

	// HTTPClient defaults to a client with a 5 second timeout.
	HTTPClient *http.Client

	Logger zerolog.Logger
}

// KeyProvider resolves JWS key ids to public keys published at a JWKS
// endpoint. One instance is shared by the whole process; it is safe for
// concurrent use.
//
// When the endpoint cannot be reached the lookup fails. Keys whose cache
// entry has expired are not served stale.
type KeyProvider struct {
	uri     string
	client  *http.Client
	cache   *expirable.LRU[string, jose.JSONWebKey]
	window  *fetchWindow
	perMin  int
	logger  zerolog.Logger
}

// fetchWindow admits at most limit fetches in any rolling span of length
// window. It keeps the start time of each admitted fetch.
type fetchWindow struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	now    func() time.Time
	starts []time.Time
}

func newFetchWindow(limit int, window time.Duration) *fetchWindow {
	return &fetchWindow{
		limit:  limit,
		window: window,
		now:    time.Now,
		starts: make([]time.Time, 0, limit),
	}
}

// allow records a fetch and reports true, or reports false without recording
// when limit fetches already started within the window.
func (w *fetchWindow) allow() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	cutoff := now.Add(-w.window)
	kept := w.starts[:0]
	for _, t := range w.starts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	w.starts = kept

	if len(w.starts) >= w.limit {
		return false
	}
	w.starts = append(w.starts, now)
	return true
}

// NewKeyProvider validates cfg and builds a provider.
func NewKeyProvider(cfg KeyProviderConfig) (*KeyProvider, error) {
	if cfg.JWKSURI == "" {
		return nil, errors.New("jwks uri is required")
	}
	if cfg.RequestsPerMinute <= 0 {
		return nil, fmt.Errorf("jwks requests per minute must be positive, got %d", cfg.RequestsPerMinute)
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}

	p := &KeyProvider{
		uri:     cfg.JWKSURI,
		client:  client,
		window:  newFetchWindow(cfg.RequestsPerMinute, time.Minute),
		perMin:  cfg.RequestsPerMinute,
		logger:  cfg.Logger,
	}

	if cfg.Cache {
		if cfg.CacheTTL <= 0 {
			return nil, errors.New("jwks cache ttl must be positive")
		}
		p.cache = expirable.NewLRU[string, jose.JSONWebKey](cfg.CacheSize, nil, cfg.CacheTTL)
	}

	return p, nil
}

// Resolve returns the public key for kid. Errors wrap ErrKeyResolution.
func (p *KeyProvider) Resolve(ctx context.Context, kid string) (any, error) {
	if kid == "" {
		return nil, fmt.Errorf("%w: empty key id", ErrKeyResolution)
	}

	if p.cache != nil {
		if key, ok := p.cache.Get(kid); ok {
			return key.Key, nil
		}
	}

	if !p.window.allow() {
		return nil, fmt.Errorf("%w: jwks fetch quota of %d per minute exhausted", ErrKeyResolution, p.perMin)
	}

	set, err := p.fetch(ctx, kid)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyResolution, err)
	}

	var found *jose.JSONWebKey
	for i := range set.Keys {
		key := set.Keys[i]
		if key.KeyID == "" || !key.IsPublic() || (key.Use != "" && key.Use != "sig") {
			continue
		}
		if p.cache != nil {
			p.cache.Add(key.KeyID, key)
		}
		if key.KeyID == kid {
			found = &key
		}
	}

	if found == nil {
		return nil, fmt.Errorf("%w: no signing key with kid %q", ErrKeyResolution, kid)
	}
	return found.Key, nil
}

func (p *KeyProvider) fetch(ctx context.Context, kid string) (*jose.JSONWebKeySet, error) {
	ctx, span := telemetry.StartSpan(ctx, "taskapi/auth", "jwks.Fetch",
		attribute.String(telemetry.AttrJWKSURI, p.uri),
		attribute.String(telemetry.AttrJWKSKid, kid),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.uri, nil)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("build jwks request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("fetch jwks: unexpected status %d", resp.StatusCode)
		telemetry.RecordError(span, err)
		return nil, err
	}

	var set jose.JSONWebKeySet
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJWKSBodyBytes)).Decode(&set); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("decode jwks: %w", err)
	}

	span.SetAttributes(attribute.Int("jwks.key_count", len(set.Keys)))
	p.logger.Debug().Str("uri", p.uri).Int("keys", len(set.Keys)).Msg("fetched signing keys")

	return &set, nil
}
