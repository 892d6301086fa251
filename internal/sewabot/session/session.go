// Package session owns the per-user conversation state.
//
// The store is the only shared mutable state in the engine. It serializes
// read-modify-write cycles per user so two messages from the same citizen
// can never interleave their updates, while turns from different users run
// fully independently.
package session

import (
	"time"

	"github.com/smartgov-sikkim/sewabot/internal/sewabot/lang"
)

// State is the workflow position of a conversation.
type State string

const (
	// MainMenu is the initial and idle state: the user is browsing
	// services, no structured data collection is under way.
	MainMenu State = "MAIN_MENU"

	// CollectingInfo means a form workflow is active and CurrentQuestion
	// names the field being collected.
	CollectingInfo State = "COLLECTING_INFO"

	// Confirming means all fields are collected and the user is reviewing
	// the summary before submission.
	Confirming State = "CONFIRMING"

	// Submitted means the application was handed to persistence; the next
	// message returns the user to the main menu.
	Submitted State = "SUBMITTED"
)

// Session holds everything the engine knows about one user's conversation.
//
// Invariant: when State is CollectingInfo, Language is set and stays fixed
// for the lifetime of that workflow instance, no matter what language any
// individual message is detected as.
type Session struct {
	UserID string

	// Language is the language of record used to render prompts.
	// lang.Unset until first detection.
	Language lang.Language

	State State

	// Data maps collected field names to the citizen's answers.
	Data map[string]string

	// CurrentQuestion names the field being collected; empty outside
	// CollectingInfo.
	CurrentQuestion string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Reset ends the current workflow: state back to the main menu, collected
// data dropped, no question pending. The language of record survives; a
// citizen who cancels almost always continues in the same language.
func (s *Session) Reset() {
	s.State = MainMenu
	s.Data = make(map[string]string)
	s.CurrentQuestion = ""
}

// clone returns a deep copy so store internals never escape to callers.
func (s *Session) clone() *Session {
	cp := *s
	cp.Data = make(map[string]string, len(s.Data))
	for k, v := range s.Data {
		cp.Data[k] = v
	}
	return &cp
}
