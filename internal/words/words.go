// internal/words/words.go
//
// Static word list for the game engine.
//
// Responsibilities:
//   - Load the answer list and the allowed guess list from files, or fall back
//     to the embedded list in package assets.
//   - Keep lookup sets for quick validation (answers only, answers ∪ guesses).
//   - Supply RandomAnswer, IsAllowed, IsAnswer and Stats.
//
// Selection (Load):
//   1. AnswersFile and AllowedFile both set: answers from the first, allowed
//      guesses from the second.
//   2. Only AllowedFile set: that file is used for both.
//   3. Neither set: the embedded list is used for both.
//
// Constraints:
//   • Words must be NumberLetters ASCII letters; anything else is dropped.
//   • Lists are normalized to upper case.
//   • Answers are always allowed as guesses.

package words

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"sync"

	"github.com/robalobadob/wordmaster/assets"
)

// NumberLetters is the length every word in a Dictionary has.
const NumberLetters = 5

// ErrEmpty is returned when no answer survives normalization.
var ErrEmpty = errors.New("words: answers list is empty")

// Config selects the word list files. Empty paths fall back to the embedded list.
type Config struct {
	AnswersFile string
	AllowedFile string
}

// Dictionary is an immutable answer list plus allowed-guess set.
type Dictionary struct {
	answers    []string
	answersSet map[string]struct{}
	allowedSet map[string]struct{} // answers ∪ guesses
}

// New builds a Dictionary from raw lists. allowed may be nil.
func New(answers, allowed []string) (*Dictionary, error) {
	ans := normalize(answers)
	if len(ans) == 0 {
		return nil, ErrEmpty
	}
	d := &Dictionary{
		answers:    ans,
		answersSet: toSet(ans),
		allowedSet: toSet(ans),
	}
	for _, w := range normalize(allowed) {
		d.allowedSet[w] = struct{}{}
	}
	return d, nil
}

// LoadFile loads a single file used for both answers and guesses.
func LoadFile(path string) (*Dictionary, error) {
	list, err := readWordFile(path)
	if err != nil {
		return nil, err
	}
	return New(list, nil)
}

// LoadFiles loads answers and allowed guesses from separate files.
func LoadFiles(answersPath, allowedPath string) (*Dictionary, error) {
	ans, err := readWordFile(answersPath)
	if err != nil {
		return nil, err
	}
	all, err := readWordFile(allowedPath)
	if err != nil {
		return nil, err
	}
	return New(ans, all)
}

var (
	embeddedOnce sync.Once
	embeddedDict *Dictionary
	embeddedErr  error
)

// Embedded returns the built-in Dictionary. It is parsed once.
func Embedded() (*Dictionary, error) {
	embeddedOnce.Do(func() {
		list, err := assets.WordList()
		if err != nil {
			embeddedErr = fmt.Errorf("words: read embedded list: %w", err)
			return
		}
		embeddedDict, embeddedErr = New(list, nil)
	})
	return embeddedDict, embeddedErr
}

// Load picks the word source described by cfg.
func Load(cfg Config) (*Dictionary, error) {
	switch {
	case cfg.AnswersFile != "" && cfg.AllowedFile != "":
		return LoadFiles(cfg.AnswersFile, cfg.AllowedFile)
	case cfg.AllowedFile != "":
		return LoadFile(cfg.AllowedFile)
	case cfg.AnswersFile != "":
		return LoadFile(cfg.AnswersFile)
	default:
		return Embedded()
	}
}

// readWordFile loads one word per line from a file.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("words: open %s: %w", path, err)
	}
	defer f.Close()
	list, err := assets.ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("words: read %s: %w", path, err)
	}
	return list, nil
}

// normalize upper-cases, trims and keeps valid unique words in input order.
func normalize(list []string) []string {
	out := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, w := range list {
		w = strings.TrimSpace(w)
		if len(w) != NumberLetters || !IsAlpha(w) {
			continue
		}
		w = strings.ToUpper(w)
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

// IsAlpha reports whether s is all ASCII letters, in either case.
func IsAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}

// RandomAnswer returns a cryptographically random answer.
func (d *Dictionary) RandomAnswer() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(d.answers))))
	if err != nil {
		return "", fmt.Errorf("words: pick answer: %w", err)
	}
	return d.answers[n.Int64()], nil
}

// IsAllowed reports whether w is a valid guess (answers ∪ guesses).
func (d *Dictionary) IsAllowed(w string) bool {
	if !IsAlpha(w) {
		return false
	}
	_, ok := d.allowedSet[strings.ToUpper(w)]
	return ok
}

// IsAnswer reports whether w is an answer word.
func (d *Dictionary) IsAnswer(w string) bool {
	if !IsAlpha(w) {
		return false
	}
	_, ok := d.answersSet[strings.ToUpper(w)]
	return ok
}

// Answers returns a copy of the answer list.
func (d *Dictionary) Answers() []string {
	return append([]string(nil), d.answers...)
}

// AnswerAt returns the answer at index i modulo the list length.
func (d *Dictionary) AnswerAt(i int) string {
	n := len(d.answers)
	return d.answers[((i%n)+n)%n]
}

// Stats returns counts of loaded words: (answers, allowed).
func (d *Dictionary) Stats() (answersCount int, allowedCount int) {
	return len(d.answers), len(d.allowedSet)
}
