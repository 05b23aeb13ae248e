// Package session manages the authenticated session with the alarm cloud
// service: the short-lived hash token, the stored credentials, the persisted
// session file, and the per-user device identifiers.
package session

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrNotAuthenticated is returned when no valid session token is held.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrAuthenticationRejected is returned when the backend explicitly
	// rejects the supplied credentials.
	ErrAuthenticationRejected = errors.New("authentication rejected")
)

// DefaultTTL is the conservative hash-token lifetime. The backend invalidates
// tokens server-side well before any documented expiry, so callers should not
// raise this without evidence.
const DefaultTTL = 360 * time.Second

// Data is the header-construction context handed to the transport alongside
// the hash token.
type Data struct {
	User      string
	Lang      string
	Country   string
	LoginTime time.Time
}

// Store holds the process-wide session state. All mutation goes through
// UpdateCredentials and Clear; readers take a consistent snapshot.
type Store struct {
	mu           sync.RWMutex
	username     string
	password     string
	hashToken    string
	refreshToken string
	issuedAt     time.Time

	ttl     time.Duration
	lang    string
	country string
	file    *FileStore

	now func() time.Time
}

// NewStore creates a credential store with the given hash-token TTL.
// A non-positive TTL falls back to DefaultTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		ttl:     ttl,
		lang:    "es",
		country: "ES",
		now:     time.Now,
	}
}

// SetLocale overrides the language and country carried in session headers.
func (s *Store) SetLocale(lang, country string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lang != "" {
		s.lang = lang
	}
	if country != "" {
		s.country = country
	}
}

// Locale returns the language and country carried in session headers.
func (s *Store) Locale() (lang, country string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lang, s.country
}

// AttachFile wires a FileStore for persistence and seeds the store from an
// existing session file if one is present. An expired persisted token is
// loaded anyway; Current will reject it until the next login.
func (s *Store) AttachFile(fs *FileStore) error {
	state, err := fs.Load()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.file = fs
	if state != nil {
		s.username = state.Username
		s.password = state.Password
		s.hashToken = state.HashToken
		s.refreshToken = state.RefreshToken
		if state.SessionTimestamp > 0 {
			s.issuedAt = time.Unix(state.SessionTimestamp, 0)
		}
	}
	return nil
}

// Current returns the hash token and header context for the active session.
// It fails with ErrNotAuthenticated when no token is held or the token has
// outlived the configured TTL; callers must not send such a request.
func (s *Store) Current() (string, Data, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.hashToken == "" {
		return "", Data{}, ErrNotAuthenticated
	}
	if s.now().Sub(s.issuedAt) >= s.ttl {
		return "", Data{}, ErrNotAuthenticated
	}

	return s.hashToken, Data{
		User:      s.username,
		Lang:      s.lang,
		Country:   s.country,
		LoginTime: s.issuedAt,
	}, nil
}

// Valid reports whether Current would succeed.
func (s *Store) Valid() bool {
	_, _, err := s.Current()
	return err == nil
}

// Credentials returns the stored username and password, for re-login flows.
func (s *Store) Credentials() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username, s.password
}

// UpdateCredentials replaces all credential fields and resets the token issue
// time. This is the only mutation path besides Clear; it is atomic with
// respect to concurrent Current calls.
func (s *Store) UpdateCredentials(username, password, hashToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.username = username
	s.password = password
	s.hashToken = hashToken
	s.refreshToken = refreshToken
	s.issuedAt = s.now()

	if s.file != nil {
		// Persistence is best effort; the in-memory session stays valid
		// even if the save fails.
		_ = s.file.Save(&State{
			Username:         username,
			Password:         password,
			HashToken:        hashToken,
			RefreshToken:     refreshToken,
			SessionTimestamp: s.issuedAt.Unix(),
		})
	}
}

// Clear wipes all credential fields and removes the session file, signalling
// ErrNotAuthenticated to any subsequent Current call.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.username = ""
	s.password = ""
	s.hashToken = ""
	s.refreshToken = ""
	s.issuedAt = time.Time{}

	if s.file != nil {
		_ = s.file.Remove()
	}
}
