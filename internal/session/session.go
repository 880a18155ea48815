// ABOUTME: Admin session model and the pure transitions between its states
// ABOUTME: A Session is anonymous or authenticated; user and token move together

package session

import (
	"encoding/json"
	"errors"
	"fmt"
)

// AdminRole is the role a user must carry to use the dashboard.
const AdminRole = "admin"

// StorageKey is the fixed durable-storage key for the serialized session.
const StorageKey = "auth-storage"

// ErrCorruptSession is returned when a persisted session cannot be decoded
// or violates the user/token invariant.
var ErrCorruptSession = errors.New("corrupt persisted session")

// User is the identity the remote API returns on login.
type User struct {
	ID       string `json:"_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// UnmarshalJSON accepts both "_id" and "id" for the identifier.
func (u *User) UnmarshalJSON(data []byte) error {
	var raw struct {
		MongoID  string `json:"_id"`
		ID       string `json:"id"`
		Email    string `json:"email"`
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	u.ID = raw.MongoID
	if u.ID == "" {
		u.ID = raw.ID
	}
	u.Email = raw.Email
	u.Username = raw.Username
	u.Role = raw.Role
	return nil
}

// Session is the client-held record of the current admin.
type Session struct {
	User            *User
	Token           string
	IsAuthenticated bool
}

// Anonymous returns the logged-out session.
func Anonymous() Session {
	return Session{}
}

// Authenticated returns a session for user holding token.
func Authenticated(user User, token string) Session {
	u := user
	return Session{User: &u, Token: token, IsAuthenticated: true}
}

// Valid reports whether the user/token invariant holds.
func (s Session) Valid() bool {
	if s.IsAuthenticated {
		return s.User != nil && s.Token != ""
	}
	return s.User == nil && s.Token == ""
}

// IsAdmin reports whether the session is authenticated with the admin role.
func (s Session) IsAdmin() bool {
	return s.IsAuthenticated && s.Valid() && s.User.Role == AdminRole
}

// clone returns a copy that shares no memory with s.
func (s Session) clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// persistedState mirrors the {state, version} layout the browser dashboard
// wrote to local storage, so a token field is null rather than empty.
type persistedState struct {
	State struct {
		User            *User   `json:"user"`
		Token           *string `json:"token"`
		IsAuthenticated bool    `json:"isAuthenticated"`
	} `json:"state"`
	Version int `json:"version"`
}

// Encode serializes s for durable storage.
func Encode(s Session) ([]byte, error) {
	var p persistedState
	p.State.User = s.User
	if s.Token != "" {
		tok := s.Token
		p.State.Token = &tok
	}
	p.State.IsAuthenticated = s.IsAuthenticated
	return json.Marshal(p)
}

// Decode parses a persisted session. Anything that does not satisfy the
// user/token invariant is rejected with ErrCorruptSession.
func Decode(data []byte) (Session, error) {
	var p persistedState
	if err := json.Unmarshal(data, &p); err != nil {
		return Anonymous(), fmt.Errorf("%w: %v", ErrCorruptSession, err)
	}

	s := Session{User: p.State.User, IsAuthenticated: p.State.IsAuthenticated}
	if p.State.Token != nil {
		s.Token = *p.State.Token
	}
	if !s.Valid() {
		return Anonymous(), ErrCorruptSession
	}
	return s, nil
}
