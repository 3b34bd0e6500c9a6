package transport

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

// TokenVerifier checks a bearer token.
type TokenVerifier interface {
	Verify(token string) error
}

// StaticTokens accepts a fixed set of tokens. Only their digests are kept.
type StaticTokens struct {
	digests [][sha256.Size]byte
}

// NewStaticTokens builds a verifier from configured tokens. Blank entries are
// ignored.
func NewStaticTokens(tokens []string) *StaticTokens {
	st := &StaticTokens{}
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		st.digests = append(st.digests, sha256.Sum256([]byte(tok)))
	}
	return st
}

// Verify compares the token digest against every configured digest in
// constant time.
func (s *StaticTokens) Verify(token string) error {
	if token == "" {
		return ErrUnauthorized
	}
	sum := sha256.Sum256([]byte(token))
	ok := 0
	for _, d := range s.digests {
		ok |= subtle.ConstantTimeCompare(sum[:], d[:])
	}
	if ok != 1 {
		return ErrUnauthorized
	}
	return nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// AuthMiddleware enforces bearer token authentication.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r.Header.Get("Authorization"))
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			if err := verifier.Verify(token); err != nil {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
