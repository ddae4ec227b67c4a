// Package daily picks the deterministic answer of the day.
//
// The word index is HMAC-SHA256(salt, YYYY-MM-DD) reduced modulo the answer
// list length, so every process sharing a salt and list agrees on the word
// without coordination.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// Answers is the subset of words.Dictionary needed here.
type Answers interface {
	Stats() (answersCount int, allowedCount int)
	AnswerAt(i int) string
}

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WordIndex returns a deterministic index for a date using HMAC(salt, YYYY-MM-DD) % answersLen.
func WordIndex(date time.Time, salt string, answersLen int) int {
	if answersLen <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for the modulus
	n := binary.BigEndian.Uint64(sum[:8])
	return int(n % uint64(answersLen))
}

// Answer returns the date key and the answer for that day.
func Answer(list Answers, date time.Time, salt string) (key string, word string) {
	n, _ := list.Stats()
	return DateKey(date), list.AnswerAt(WordIndex(date, salt, n))
}
