package overview

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Speaker labels stored in chat history.
const (
	SpeakerHuman = "You"
	SpeakerAI    = "AI"
)

// Turn is one entry of a chat transcript.
type Turn struct {
	User string `json:"user"`
	Text string `json:"text"`
}

// Document is a stored overview and the conversation about it.
type Document struct {
	ID          string
	Text        string
	Timestamp   time.Time
	ChatHistory []Turn
}

// NewID returns a random 128-bit identifier in UUID form.
func NewID() string {
	return uuid.NewString()
}

// ValidateTurns rejects transcripts containing turns without a speaker.
func ValidateTurns(turns []Turn) error {
	for i, t := range turns {
		if t.User == "" {
			return fmt.Errorf("chatHistory[%d]: user is required", i)
		}
	}
	return nil
}

// Append returns a new transcript with t added at the end. The input slice is
// never modified.
func Append(history []Turn, t Turn) []Turn {
	out := make([]Turn, 0, len(history)+1)
	out = append(out, history...)
	return append(out, t)
}

// ErrEmptyID is returned when an overview identifier is blank.
var ErrEmptyID = errors.New("overview id is required")
