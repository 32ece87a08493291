package web

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

const sessionName = "slotbook_session"

// SessionManager keeps the form-session id in a signed, encrypted cookie.
type SessionManager struct {
	sc  *securecookie.SecureCookie
	ttl time.Duration
}

func NewSessionManager(hashKey, blockKey []byte, ttl time.Duration) *SessionManager {
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int(ttl.Seconds()))
	return &SessionManager{sc: sc, ttl: ttl}
}

// ID returns the caller's form-session id, issuing a fresh one when the
// cookie is missing or fails to decode.
func (s *SessionManager) ID(w http.ResponseWriter, r *http.Request) (string, error) {
	if id, ok := s.GetID(r); ok {
		return id, nil
	}
	id := uuid.NewString()
	if err := s.SetID(w, r, id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *SessionManager) SetID(w http.ResponseWriter, r *http.Request, id string) error {
	value := map[string]string{"sid": id}
	encoded, err := s.sc.Encode(sessionName, value)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name: sessionName, Value: encoded, Path: "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true, SameSite: http.SameSiteLaxMode,
		Secure: r.TLS != nil,
	})
	return nil
}

func (s *SessionManager) GetID(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionName)
	if err != nil {
		return "", false
	}
	value := map[string]string{}
	if err := s.sc.Decode(sessionName, c.Value, &value); err != nil {
		return "", false
	}
	id := value["sid"]
	if id == "" {
		return "", false
	}
	return id, true
}

func (s *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name: sessionName, Value: "", Path: "/", MaxAge: -1,
		HttpOnly: true, SameSite: http.SameSiteLaxMode,
	})
}
