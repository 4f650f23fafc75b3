// Package saga defines the wire-level types exchanged with the saga host.
//
// The host exposes a snapshot endpoint and a server-sent-event stream, both
// carrying StateRecord payloads. Field casing follows the host's JSON
// contract (CurrentState, LastError, Log, LogScope); saga-specific fields
// the observer does not interpret are carried through opaquely in Extra.
package saga

import (
	"encoding/json"
	"time"
)

// StateRecord is the authoritative saga snapshot. Each record replaces the
// previous one wholesale; there is no partial merge across updates.
type StateRecord struct {
	// CurrentState is the name of the state machine's active state.
	CurrentState string

	// LastError is the most recent fault message, empty when the saga is
	// healthy. The wire value may be null, which decodes to empty.
	LastError string

	// Log is the full scope history, oldest-first. Only present on the
	// snapshot payload; stream payloads carry LogScope instead.
	Log *LogSnapshot

	// LogScope is the scope produced by the message that caused this
	// update, if any.
	LogScope *Scope

	// Extra holds saga-specific fields passed through undecoded.
	Extra map[string]json.RawMessage
}

// LogSnapshot is the bulk scope history carried by the snapshot payload.
type LogSnapshot struct {
	Scopes []Scope `json:"Scopes"`
}

// Scope is the wire form of one processed message's log entries.
type Scope struct {
	MessageID   string    `json:"MessageId"`
	MessageType string    `json:"MessageType"`
	Started     time.Time `json:"Started"`
	Entries     []Entry   `json:"Entries"`
}

// Entry is a single wire log entry.
type Entry struct {
	Timestamp time.Time `json:"Timestamp"`
	LogLevel  int       `json:"LogLevel"`
	Message   string    `json:"Message"`
}

// UnmarshalJSON decodes the known fields and keeps everything else in
// Extra, so saga-specific payload fields survive the round through the
// observer untouched.
func (r *StateRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*r = StateRecord{}
	for key, raw := range fields {
		if string(raw) == "null" {
			continue
		}
		var err error
		switch key {
		case "CurrentState":
			err = json.Unmarshal(raw, &r.CurrentState)
		case "LastError":
			err = json.Unmarshal(raw, &r.LastError)
		case "Log":
			r.Log = &LogSnapshot{}
			err = json.Unmarshal(raw, r.Log)
		case "LogScope":
			r.LogScope = &Scope{}
			err = json.Unmarshal(raw, r.LogScope)
		default:
			if r.Extra == nil {
				r.Extra = make(map[string]json.RawMessage)
			}
			r.Extra[key] = raw
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Faulted reports whether the record carries a fault.
func (r *StateRecord) Faulted() bool {
	return r.LastError != ""
}

// Scope returns the record's incremental scope, or nil.
func (r *StateRecord) Scope() *Scope {
	if r == nil {
		return nil
	}
	return r.LogScope
}
