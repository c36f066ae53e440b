package easydata

import (
	"fmt"
	"sync"
)

// Session holds the API key shared by every call made through a Client.
// It is initialised once, by SetKey or a successful VerifyKey, and
// read-only afterwards; the lock keeps concurrent readers safe.
type Session struct {
	mu       sync.RWMutex
	key      string
	verified bool
}

// NewSession creates an empty session with no key configured
func NewSession() *Session {
	return &Session{}
}

// SetKey stores key as the current key. It does not contact the network;
// use Client.VerifyKey to have the service vouch for a key first.
func (s *Session) SetKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = key
	s.verified = false
}

// HasKey reports whether a key is currently stored
func (s *Session) HasKey() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key != ""
}

// Key returns the stored key. It fails with an ErrorTypeNoKey error when
// no key was ever set.
func (s *Session) Key() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.key == "" {
		return "", NewNoKeyError()
	}
	return s.key, nil
}

// Verified reports whether the stored key was accepted by the service
func (s *Session) Verified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.verified
}

// storeVerified records a key the service accepted
func (s *Session) storeVerified(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = key
	s.verified = true
}

// keyLength is the length of keys issued by the EasyData portal
const keyLength = 40

// ValidateKeyFormat checks key against the shape of keys the EasyData
// portal issues: 40 characters, the first one a letter. It is advisory
// only. VerifyKey never calls it; real validation is delegated to the
// service, which treats keys as opaque tokens.
func ValidateKeyFormat(key string) error {
	if len(key) != keyLength {
		return fmt.Errorf("API key must be %d characters, got %d", keyLength, len(key))
	}
	c := key[0]
	if !(c >= 'a' && c <= 'z') && !(c >= 'A' && c <= 'Z') {
		return fmt.Errorf("API key must start with a letter")
	}
	return nil
}
