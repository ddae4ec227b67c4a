package daily

import (
	"testing"
	"time"

	"github.com/robalobadob/wordmaster/internal/words"
)

func TestDateKey(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"utc", time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC), "2026-03-09"},
		{"ahead of utc", time.Date(2026, 3, 9, 5, 0, 0, 0, loc), "2026-03-08"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DateKey(tt.in); got != tt.want {
				t.Errorf("DateKey() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestWordIndex(t *testing.T) {
	day := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	a := WordIndex(day, "salt", 100)
	if a < 0 || a >= 100 {
		t.Fatalf("WordIndex() = %d, out of range", a)
	}
	if b := WordIndex(day.Add(10*time.Hour), "salt", 100); b != a {
		t.Errorf("same day gave %d and %d", a, b)
	}
	if got := WordIndex(day, "salt", 0); got != 0 {
		t.Errorf("WordIndex(n=0) = %d, want 0", got)
	}

	differ := false
	for i := 1; i <= 10; i++ {
		if WordIndex(day.AddDate(0, 0, i), "salt", 1000) != WordIndex(day, "salt", 1000) {
			differ = true
			break
		}
	}
	if !differ {
		t.Error("index never changes across ten days")
	}
}

func TestAnswer(t *testing.T) {
	d, err := words.New([]string{"crane", "slate", "audio"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	key, word := Answer(d, day, "s")
	if key != "2026-10-19" {
		t.Errorf("key = %s", key)
	}
	if !d.IsAnswer(word) {
		t.Errorf("word %q not in answers", word)
	}
	if _, again := Answer(d, day, "s"); again != word {
		t.Errorf("Answer() not deterministic: %s vs %s", word, again)
	}
}
