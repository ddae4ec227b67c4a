// internal/game/types.go
//
// Core type definitions for the WordMaster game engine.
// Defines:
//   - LetterStatus: per-cell feedback for a scored guess.
//   - State: coarse lifecycle of a session (playing → won/lost).
//   - Snapshot / Result: values handed to view layers.

package game

import (
	"errors"
	"fmt"
)

const (
	// MaxNumberOfGuesses is the default number of rows on the board.
	MaxNumberOfGuesses = 6
	// NumberLetters is the number of cells per row.
	NumberLetters = 5
)

// Validation errors returned by Service methods.
var (
	ErrGameOver          = errors.New("game finished")
	ErrNotCurrentAttempt = errors.New("not the current guess attempt")
	ErrPosition          = errors.New("letter position out of range")
	ErrInvalidLetter     = errors.New("invalid letter")
	ErrIncompleteGuess   = errors.New("guess is incomplete")
	ErrInvalidGuess      = errors.New("invalid guess")
	ErrNotInWordList     = errors.New("not in word list")
	ErrNoDictionary      = errors.New("no dictionary")
)

// LetterStatus is the evaluation result for a single cell of the board.
type LetterStatus int

const (
	Unguessed       LetterStatus = iota // row not checked yet
	NotInWord                           // letter does not occur in the answer
	WrongPosition                       // letter occurs elsewhere in the answer
	CorrectPosition                     // letter is in the right place
)

var statusNames = [...]string{
	Unguessed:       "unguessed",
	NotInWord:       "not_in_word",
	WrongPosition:   "wrong_position",
	CorrectPosition: "correct_position",
}

func (s LetterStatus) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("LetterStatus(%d)", int(s))
	}
	return statusNames[s]
}

// MarshalText encodes the status by name so JSON payloads stay readable.
func (s LetterStatus) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(statusNames) {
		return nil, fmt.Errorf("game: unknown letter status %d", int(s))
	}
	return []byte(statusNames[s]), nil
}

// UnmarshalText is the inverse of MarshalText.
func (s *LetterStatus) UnmarshalText(b []byte) error {
	for i, n := range statusNames {
		if n == string(b) {
			*s = LetterStatus(i)
			return nil
		}
	}
	return fmt.Errorf("game: unknown letter status %q", b)
}

// State is the lifecycle of a session.
type State string

const (
	StatePlaying State = "playing"
	StateWon     State = "won"
	StateLost    State = "lost"
)

// Finished reports whether no more guesses are accepted.
func (s State) Finished() bool { return s == StateWon || s == StateLost }

// Dictionary is the word source the engine validates and draws answers from.
type Dictionary interface {
	IsAllowed(word string) bool
	RandomAnswer() (string, error)
}

// Snapshot is a deep copy of the board suitable for rendering.
type Snapshot struct {
	ID             string                  `json:"id"`
	Guesses        [][]string              `json:"guesses"`
	Statuses       [][]LetterStatus        `json:"statuses"`
	CurrentAttempt int                     `json:"currentAttempt"`
	MaxGuesses     int                     `json:"maxGuesses"`
	Letters        int                     `json:"letters"`
	State          State                   `json:"state"`
	RevealedAnswer string                  `json:"revealedAnswer,omitempty"`
	Keyboard       map[string]LetterStatus `json:"keyboard"`
}

// Result describes one scored row.
type Result struct {
	Attempt  int            `json:"attempt"`
	Guess    string         `json:"guess"`
	Statuses []LetterStatus `json:"statuses"`
	State    State          `json:"state"`
}
