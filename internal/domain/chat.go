package domain

import (
	"strings"
	"time"
)

type ChatRole string

const (
	RoleUserTurn      ChatRole = "user"
	RoleAssistantTurn ChatRole = "ai"
)

// UnavailableReply is the assistant turn recorded when the model fails.
const UnavailableReply = "Sorry, I am currently unavailable. Please try again later."

const DefaultSessionID = "default-session"

type ChatTurn struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Transcript is an append-only ordered sequence of chat turns.
type Transcript struct {
	SessionID string     `json:"session_id"`
	Turns     []ChatTurn `json:"turns"`
}

// Append returns a new transcript with turn added at the end.
func (t Transcript) Append(turn ChatTurn) Transcript {
	turns := make([]ChatTurn, len(t.Turns), len(t.Turns)+1)
	copy(turns, t.Turns)
	return Transcript{SessionID: t.SessionID, Turns: append(turns, turn)}
}

func (t Transcript) Last() (ChatTurn, bool) {
	if len(t.Turns) == 0 {
		return ChatTurn{}, false
	}
	return t.Turns[len(t.Turns)-1], true
}

// Tail returns at most n of the most recent turns.
func (t Transcript) Tail(n int) []ChatTurn {
	if n <= 0 || n >= len(t.Turns) {
		return append([]ChatTurn(nil), t.Turns...)
	}
	return append([]ChatTurn(nil), t.Turns[len(t.Turns)-n:]...)
}

// RevealPrefixes returns the successive word prefixes shown while a reply is
// revealed, splitting on single spaces so the last element equals text.
func RevealPrefixes(text string) []string {
	if text == "" {
		return nil
	}
	words := strings.Split(text, " ")
	out := make([]string, len(words))
	for i := range words {
		out[i] = strings.Join(words[:i+1], " ")
	}
	return out
}
