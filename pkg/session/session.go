// Package session keeps per-browser key/value state between requests.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Values is the persisted form of a session.
type Values map[string]json.RawMessage

// Store persists session values. Load returns errors.ErrSessionMiss for unknown ids.
type Store interface {
	Load(ctx context.Context, id string) (Values, error)
	Save(ctx context.Context, id string, values Values, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// Session is the state of one browser session for the duration of a request.
// Concurrent requests from the same browser are last-write-wins.
type Session struct {
	id       string
	values   Values
	modified bool
	isNew    bool
}

// New returns an empty session with the given id.
func New(id string) *Session {
	return &Session{id: id, values: Values{}, isNew: true}
}

func restore(id string, values Values) *Session {
	if values == nil {
		values = Values{}
	}
	return &Session{id: id, values: values}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// IsNew reports whether the session was created by this request.
func (s *Session) IsNew() bool { return s.isNew }

// Modified reports whether any value changed since the session was loaded.
func (s *Session) Modified() bool { return s.modified }

// Has reports whether key is present.
func (s *Session) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Get decodes the value stored under key into dest. It returns false when key is absent.
func (s *Session) Get(key string, dest any) (bool, error) {
	raw, ok := s.values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return true, fmt.Errorf("decode session key %s: %w", key, err)
	}
	return true, nil
}

// Set stores value under key.
func (s *Session) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode session key %s: %w", key, err)
	}
	s.values[key] = raw
	s.modified = true
	return nil
}

// Delete removes key.
func (s *Session) Delete(key string) {
	if _, ok := s.values[key]; ok {
		delete(s.values, key)
		s.modified = true
	}
}

// Values returns the raw values for persistence.
func (s *Session) Values() Values { return s.values }
