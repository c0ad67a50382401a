// Package credentials owns the locally persisted token pair.
//
// The pair lives in ONE encrypted document under the sofreh data directory;
// every read and write of stored tokens goes through this package. Lifecycle:
// written on login, overwritten on refresh (the server may rotate the refresh
// token too), removed on logout or when a refresh terminally fails.
package credentials

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shashiranjanraj/sofreh/app/models"
	"github.com/shashiranjanraj/sofreh/pkg/crypt"
	"github.com/shashiranjanraj/sofreh/pkg/logger"
	"github.com/shashiranjanraj/sofreh/pkg/storage"
)

// Document is the dedicated "local" disk path of the encrypted token file.
const Document = "credentials.enc"

var (
	mu     sync.RWMutex
	cached *models.TokenPair // nil = not loaded yet
)

// load reads the encrypted document once and caches the result in memory.
// A missing or unreadable document is an empty pair, never an error: the
// session is simply anonymous.
func load() models.TokenPair {
	mu.RLock()
	if cached != nil {
		p := *cached
		mu.RUnlock()
		return p
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if cached != nil {
		return *cached
	}

	var pair models.TokenPair
	if storage.Exists(Document) {
		raw, err := storage.Get(Document)
		if err == nil {
			if derr := crypt.DecryptJSON(string(raw), &pair); derr != nil {
				logger.Warn("credentials: document unreadable, treating session as anonymous", "error", derr)
				pair = models.TokenPair{}
			}
		}
	}
	cached = &pair
	return pair
}

// Access returns the stored access token, or "" when anonymous.
func Access() string { return load().Access }

// Refresh returns the stored refresh token, or "".
func Refresh() string { return load().Refresh }

// Pair returns the whole stored token pair.
func Pair() models.TokenPair { return load() }

// Set persists a new token pair, replacing whatever was stored.
func Set(access, refresh string) error {
	pair := models.TokenPair{Access: access, Refresh: refresh}

	enc, err := crypt.EncryptJSON(pair)
	if err != nil {
		return fmt.Errorf("credentials: encrypt: %w", err)
	}
	if err := storage.Put(Document, []byte(enc)); err != nil {
		return fmt.Errorf("credentials: persist: %w", err)
	}

	mu.Lock()
	cached = &pair
	mu.Unlock()
	return nil
}

// Clear removes the stored pair. Missing document is not an error.
func Clear() error {
	mu.Lock()
	cached = &models.TokenPair{}
	mu.Unlock()

	if err := storage.Delete(Document); err != nil {
		return fmt.Errorf("credentials: clear: %w", err)
	}
	return nil
}

// Forget drops the in-memory cache so the next read hits the document again.
// Tests use this after swapping the storage root.
func Forget() {
	mu.Lock()
	cached = nil
	mu.Unlock()
}

// ─── Token inspection ─────────────────────────────────────────────────────────

// AccessExpiresAt reads the exp claim of the stored access token WITHOUT
// verifying the signature — the server is the authority, this is display and
// debug information only.
func AccessExpiresAt() (time.Time, bool) {
	token := Access()
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// AccessLooksExpired reports whether the stored access token carries an exp
// claim in the past. Used for logging only; the gateway always lets the
// server decide.
func AccessLooksExpired() bool {
	at, ok := AccessExpiresAt()
	return ok && time.Now().After(at)
}
