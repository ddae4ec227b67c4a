// internal/game/engine.go
//
// Core game engine for a single WordMaster session.
// Responsibilities:
//   - Hold the board: one row of letters and one row of statuses per attempt.
//   - Accept letter input for the current attempt only.
//   - Validate a completed row against the dictionary and score it with the
//     two‑pass algorithm.
//   - Track state transitions: playing → won/lost, revealing the answer on loss.
//   - Publish snapshots to subscribers after every mutation (see observe.go).
//
// All exported methods are safe for concurrent use.
package game

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Option configures a Service at construction.
type Option func(*Service)

// WithAnswer fixes the answer instead of drawing from the dictionary.
// ResetGame keeps the same answer.
func WithAnswer(word string) Option {
	return func(s *Service) {
		w := strings.TrimSpace(word)
		s.pick = func() (string, error) { return w, nil }
	}
}

// WithMaxGuesses overrides the number of rows. Values below 1 are ignored.
func WithMaxGuesses(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.rows = n
		}
	}
}

// WithID sets the session identifier; the default is a random uuid.
func WithID(id string) Option {
	return func(s *Service) { s.id = id }
}

// WithClock replaces time.Now for activity tracking.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service is the shared game-state engine consumed by every front-end.
type Service struct {
	mu   sync.Mutex
	id   string
	dict Dictionary
	pick func() (string, error)
	now  func() time.Time
	rows int

	answer   string
	guesses  [][]string
	statuses [][]LetterStatus
	attempt  int
	state    State
	revealed string
	touched  time.Time

	subs   map[int]chan Snapshot
	nextID int
	closed bool
}

// New constructs a session and draws its first answer.
func New(dict Dictionary, opts ...Option) (*Service, error) {
	if dict == nil {
		return nil, ErrNoDictionary
	}
	s := &Service{
		id:   uuid.NewString(),
		dict: dict,
		pick: dict.RandomAnswer,
		now:  time.Now,
		rows: MaxNumberOfGuesses,
		subs: make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// reset draws a new answer and clears the board. Caller holds mu or owns s.
func (s *Service) reset() error {
	ans, err := s.pick()
	if err != nil {
		return fmt.Errorf("game: pick answer: %w", err)
	}
	if len(ans) != NumberLetters || !isAlpha(ans) {
		return fmt.Errorf("%w: answer %q", ErrInvalidGuess, ans)
	}
	ans = strings.ToUpper(ans)
	s.answer = ans
	s.guesses = make([][]string, s.rows)
	s.statuses = make([][]LetterStatus, s.rows)
	for i := range s.guesses {
		s.guesses[i] = make([]string, NumberLetters)
		s.statuses[i] = make([]LetterStatus, NumberLetters)
	}
	s.attempt = 0
	s.state = StatePlaying
	s.revealed = ""
	s.touched = s.now()
	return nil
}

// ResetGame starts a new game in this session.
func (s *Service) ResetGame() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reset(); err != nil {
		return err
	}
	s.publishLocked()
	return nil
}

// SetGuess writes one cell of the current attempt. An empty letter clears it.
func (s *Service) SetGuess(attempt, position int, letter string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Finished() {
		return ErrGameOver
	}
	if attempt != s.attempt {
		return ErrNotCurrentAttempt
	}
	if position < 0 || position >= NumberLetters {
		return ErrPosition
	}
	letter = strings.TrimSpace(letter)
	if len(letter) > 1 || !isAlpha(letter) {
		return ErrInvalidLetter
	}
	letter = strings.ToUpper(letter)
	s.guesses[attempt][position] = letter
	s.touched = s.now()
	s.publishLocked()
	return nil
}

// CheckGuess validates and scores the current row.
//
// Validation rules:
//   - Game must not be finished.
//   - Every cell of the row must be filled.
//   - The word must be allowed by the dictionary; otherwise the board is left as is.
//
// State transitions:
//   - All cells CorrectPosition → won.
//   - Else if the last row was used → lost, answer revealed.
func (s *Service) CheckGuess() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Finished() {
		return Result{State: s.state}, ErrGameOver
	}
	guess := strings.Join(s.guesses[s.attempt], "")
	if len(guess) != NumberLetters {
		return Result{State: s.state}, ErrIncompleteGuess
	}
	return s.scoreLocked(guess)
}

// Submit fills the current row from a whole word and checks it.
// Rejected words leave the board untouched.
func (s *Service) Submit(word string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Finished() {
		return Result{State: s.state}, ErrGameOver
	}
	word = strings.TrimSpace(word)
	if len(word) != NumberLetters || !isAlpha(word) {
		return Result{State: s.state}, ErrInvalidGuess
	}
	word = strings.ToUpper(word)
	if !s.dict.IsAllowed(word) {
		return Result{State: s.state}, ErrNotInWordList
	}
	for i := 0; i < NumberLetters; i++ {
		s.guesses[s.attempt][i] = word[i : i+1]
	}
	return s.scoreLocked(word)
}

// scoreLocked scores guess into the current row and advances the attempt.
func (s *Service) scoreLocked(guess string) (Result, error) {
	if !s.dict.IsAllowed(guess) {
		return Result{State: s.state}, ErrNotInWordList
	}
	marks := scoreGuess(s.answer, guess)
	row := s.attempt
	copy(s.statuses[row], marks)
	s.attempt++

	if allCorrect(marks) {
		s.state = StateWon
	} else if s.attempt >= s.rows {
		s.state = StateLost
		s.revealed = s.answer
	}
	s.touched = s.now()
	s.publishLocked()
	return Result{Attempt: row, Guess: guess, Statuses: marks, State: s.state}, nil
}

// ID returns the session identifier.
func (s *Service) ID() string { return s.id }

// CurrentGuessAttempt returns the index of the editable row.
// Once the game is finished it equals the number of scored rows.
func (s *Service) CurrentGuessAttempt() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempt
}

// State reports the session state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// RevealedAnswer is the answer after a loss and empty otherwise.
func (s *Service) RevealedAnswer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revealed
}

// LastActivity is the time of the last mutation.
func (s *Service) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// Snapshot returns a deep copy of the board.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Service) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:             s.id,
		Guesses:        make([][]string, len(s.guesses)),
		Statuses:       make([][]LetterStatus, len(s.statuses)),
		CurrentAttempt: s.attempt,
		MaxGuesses:     s.rows,
		Letters:        NumberLetters,
		State:          s.state,
		RevealedAnswer: s.revealed,
		Keyboard:       make(map[string]LetterStatus),
	}
	for i := range s.guesses {
		snap.Guesses[i] = append([]string(nil), s.guesses[i]...)
		snap.Statuses[i] = append([]LetterStatus(nil), s.statuses[i]...)
	}
	// Best status seen per letter; the enum is ordered by strength.
	for i := 0; i < s.attempt && i < len(s.guesses); i++ {
		for j, l := range s.guesses[i] {
			if st := s.statuses[i][j]; st > snap.Keyboard[l] {
				snap.Keyboard[l] = st
			}
		}
	}
	return snap
}

// scoreGuess implements the two‑pass scoring algorithm.
//
// Pass 1:
//   - Mark exact matches as CorrectPosition.
//   - Count remaining (unmatched) answer letters.
//
// Pass 2:
//   - For each unmatched guess letter: if a count remains for that letter,
//     mark WrongPosition and decrement; otherwise NotInWord.
//
// Repeated letters in either word are never over-reported.
func scoreGuess(answer, guess string) []LetterStatus {
	n := len(guess)
	res := make([]LetterStatus, n)
	var counts [26]int

	for i := 0; i < n; i++ {
		if guess[i] == answer[i] {
			res[i] = CorrectPosition
		} else {
			counts[idx(answer[i])]++
		}
	}

	for i := 0; i < n; i++ {
		if res[i] == CorrectPosition {
			continue
		}
		j := idx(guess[i])
		if counts[j] > 0 {
			res[i] = WrongPosition
			counts[j]--
		} else {
			res[i] = NotInWord
		}
	}
	return res
}

// idx maps an upper-case ASCII letter to 0..25.
// Inputs are validated to A–Z elsewhere.
func idx(c byte) int { return int(c - 'A') }

// isAlpha checks that a string consists only of ASCII letters. It runs
// before upper-casing, since strings.ToUpper maps some non-ASCII runes
// (ı, ſ) onto A–Z.
func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}

func allCorrect(m []LetterStatus) bool {
	for _, x := range m {
		if x != CorrectPosition {
			return false
		}
	}
	return true
}
