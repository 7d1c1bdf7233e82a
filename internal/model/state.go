package model

import "time"

// State is the whole document: one versioned tree holding auth tables and
// the generic record collections. It is only ever mutated inside a store
// transaction.
type State struct {
	SchemaVersion int                 `json:"schema_version"`
	UpdatedDate   time.Time           `json:"updated_date"`
	Auth          AuthState           `json:"auth"`
	Records       map[string][]Record `json:"records"`
}

type AuthState struct {
	Users             []User                   `json:"users"`
	Sessions          []Session                `json:"sessions"`
	Throttles         map[string]LoginThrottle `json:"throttles"`
	ResetTokens       []PasswordResetToken     `json:"reset_tokens"`
	DeviceSessions    []DeviceSession          `json:"device_sessions"`
	Events            []AuthEvent              `json:"events"`
	PushSubscriptions []PushSubscription       `json:"push_subscriptions"`
}

func (s *State) UserByEmail(email string) *User {
	for i := range s.Auth.Users {
		if s.Auth.Users[i].Email == email {
			return &s.Auth.Users[i]
		}
	}
	return nil
}

func (s *State) UserByID(id string) *User {
	for i := range s.Auth.Users {
		if s.Auth.Users[i].ID == id {
			return &s.Auth.Users[i]
		}
	}
	return nil
}

func (s *State) SessionByTokenHash(hash string) *Session {
	for i := range s.Auth.Sessions {
		if s.Auth.Sessions[i].TokenHash == hash {
			return &s.Auth.Sessions[i]
		}
	}
	return nil
}

func (s *State) SessionByID(id string) *Session {
	for i := range s.Auth.Sessions {
		if s.Auth.Sessions[i].ID == id {
			return &s.Auth.Sessions[i]
		}
	}
	return nil
}

// AppendEvent appends to the audit ring, evicting the oldest entries once
// the ring is full.
func (s *State) AppendEvent(ev AuthEvent) {
	s.Auth.Events = append(s.Auth.Events, ev)
	if n := len(s.Auth.Events); n > MaxAuthEvents {
		s.Auth.Events = s.Auth.Events[n-MaxAuthEvents:]
	}
}

// RecordByID scans a collection for a record id.
func (s *State) RecordByID(collection, id string) *Record {
	for i := range s.Records[collection] {
		if s.Records[collection][i].ID == id {
			return &s.Records[collection][i]
		}
	}
	return nil
}
