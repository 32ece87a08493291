package usecases

import (
	"sync"
	"time"
)

// FormSessions holds one Form per browser session and forgets idle ones.
type FormSessions struct {
	mu      sync.Mutex
	forms   map[string]*sessionEntry
	ttl     time.Duration
	newForm func() *Form
	now     func() time.Time
}

type sessionEntry struct {
	form     *Form
	lastSeen time.Time
}

func NewFormSessions(ttl time.Duration, newForm func() *Form) *FormSessions {
	return &FormSessions{
		forms:   map[string]*sessionEntry{},
		ttl:     ttl,
		newForm: newForm,
		now:     time.Now,
	}
}

// Get returns the form for id, creating it on first use. The bool is true when
// the form was just created.
func (s *FormSessions) Get(id string) (*Form, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if e, ok := s.forms[id]; ok && now.Sub(e.lastSeen) < s.ttl {
		e.lastSeen = now
		return e.form, false
	}
	e := &sessionEntry{form: s.newForm(), lastSeen: now}
	s.forms[id] = e
	return e.form, true
}

// Sweep drops sessions idle for longer than the TTL and returns how many went.
func (s *FormSessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, e := range s.forms {
		if now.Sub(e.lastSeen) >= s.ttl {
			delete(s.forms, id)
			n++
		}
	}
	return n
}

func (s *FormSessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.forms)
}
