// Package callstore holds SMS details between the inbound webhook and the
// voice callback Twilio makes once the outbound call connects. Entries live
// in process memory only; a restart loses them, and the voice handler
// degrades to an apology prompt when a lookup misses.
package callstore

import (
	"sync"

	"github.com/google/uuid"
)

// CallData is what the voice callback needs to read a message back.
type CallData struct {
	MessageSID string
	From       string
	To         string
	Body       string
	SpokenText string
}

type Store struct {
	mu    sync.RWMutex
	calls map[string]CallData
}

func New() *Store {
	return &Store{calls: make(map[string]CallData)}
}

// Put stores data under a fresh call ID and returns the ID. The ID is
// embedded in the voice callback URL, so it is the only correlation between
// the two webhooks.
func (s *Store) Put(data CallData) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.calls[id] = data
	s.mu.Unlock()
	return id
}

func (s *Store) Get(id string) (CallData, bool) {
	s.mu.RLock()
	data, ok := s.calls[id]
	s.mu.RUnlock()
	return data, ok
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.calls, id)
	s.mu.Unlock()
}
