package iam

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/terraconstructs/taskapi/internal/auth"
	"github.com/terraconstructs/taskapi/internal/config"
)

// NewTokenVerifier picks the bearer verifier for this process.
//
//   - test mode: auth.TrustingVerifier, whatever else is configured
//   - issuer and JWKS URI set: auth.JWTVerifier backed by one shared KeyProvider
//   - otherwise nil, and every bearer token is denied
func NewTokenVerifier(cfg config.AuthConfig, logger zerolog.Logger) (auth.TokenVerifier, error) {
	if cfg.TestMode {
		logger.Warn().Msg("auth test mode: bearer tokens are trusted without verification")
		return auth.TrustingVerifier{}, nil
	}

	if !cfg.BearerEnabled() {
		logger.Info().Msg("bearer authentication disabled (auth.issuer and auth.jwks_uri not set)")
		return nil, nil
	}

	keys, err := auth.NewKeyProvider(auth.KeyProviderConfig{
		JWKSURI:           cfg.JWKSURI,
		RequestsPerMinute: cfg.JWKSRequestsPerMinute,
		Cache:             cfg.Cache,
		CacheTTL:          cfg.CacheTTL,
		CacheSize:         cfg.CacheSize,
		HTTPClient:        &http.Client{Timeout: cfg.JWKSTimeout},
		Logger:            logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create jwks key provider: %w", err)
	}

	verifier, err := auth.NewJWTVerifier(keys, auth.VerifierConfig{
		Issuer:     cfg.Issuer,
		Algorithms: cfg.Algorithms,
		Leeway:     cfg.Leeway,
	})
	if err != nil {
		return nil, fmt.Errorf("create token verifier: %w", err)
	}

	logger.Info().
		Str("issuer", cfg.Issuer).
		Strs("algorithms", cfg.Algorithms).
		Str("jwks_uri", cfg.JWKSURI).
		Msg("bearer authentication enabled")
	return verifier, nil
}
