package auth

import (
	"encoding/base64"
	"strings"
	"unicode"
)

// Credentials is what an Authorization header carried. It is one of
// BasicCredentials, BearerToken or NoCredentials.
type Credentials interface {
	// Scheme is "basic", "bearer" or "none".
	Scheme() string
	credentials()
}

// BasicCredentials is a decoded "Basic base64(username:password)" header.
type BasicCredentials struct {
	Username string
	Password string
}

// BearerToken is the raw, unverified value of a "Bearer <token>" header.
type BearerToken struct {
	Token string
}

// NoCredentials means the header was absent, used another scheme, or was malformed.
type NoCredentials struct{}

func (BasicCredentials) Scheme() string { return "basic" }
func (BearerToken) Scheme() string      { return "bearer" }
func (NoCredentials) Scheme() string    { return "none" }

func (BasicCredentials) credentials() {}
func (BearerToken) credentials()      {}
func (NoCredentials) credentials()    {}

// ExtractCredentials parses a raw Authorization header value. The scheme
// keyword is case-insensitive. It never fails: anything it cannot parse is
// NoCredentials.
func ExtractCredentials(header string) Credentials {
	header = strings.TrimSpace(header)

	sep := strings.IndexFunc(header, unicode.IsSpace)
	if sep <= 0 {
		return NoCredentials{}
	}

	scheme := header[:sep]
	value := strings.TrimSpace(header[sep:])
	if value == "" || strings.IndexFunc(value, unicode.IsSpace) >= 0 {
		return NoCredentials{}
	}

	switch {
	case strings.EqualFold(scheme, "Basic"):
		return parseBasic(value)
	case strings.EqualFold(scheme, "Bearer"):
		return BearerToken{Token: value}
	default:
		return NoCredentials{}
	}
}

func parseBasic(payload string) Credentials {
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return NoCredentials{}
	}

	// Only the first colon separates; the password may contain more.
	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok || username == "" {
		return NoCredentials{}
	}

	return BasicCredentials{Username: username, Password: password}
}
