// Package play is a line-oriented terminal front-end for the game engine.
//
// Each input line is a five-letter guess or a command:
//
//	:new    start a new game
//	:board  print the board again
//	:quit   leave
//
// Cells are drawn as [A] for the right position, (A) for a letter that is
// elsewhere in the word, " a " for a letter that is not in the word and " _ "
// for an empty cell.
package play

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/robalobadob/wordmaster/internal/game"
)

// Session is the subset of *game.Service the terminal needs.
type Session interface {
	Submit(word string) (game.Result, error)
	ResetGame() error
	Snapshot() game.Snapshot
}

// Run reads guesses from in and writes the board to out until in is
// exhausted, :quit is entered or ctx is cancelled.
func Run(ctx context.Context, s Session, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	Render(out, s.Snapshot())
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case ":quit", ":q":
			return nil
		case ":board":
			Render(out, s.Snapshot())
			continue
		case ":new":
			if err := s.ResetGame(); err != nil {
				return fmt.Errorf("reset: %w", err)
			}
			Render(out, s.Snapshot())
			continue
		}

		res, err := s.Submit(line)
		if err != nil {
			fmt.Fprintln(out, describe(err))
			continue
		}
		snap := s.Snapshot()
		Render(out, snap)
		switch res.State {
		case game.StateWon:
			fmt.Fprintf(out, "Solved in %d. Type :new for another word.\n", res.Attempt+1)
		case game.StateLost:
			fmt.Fprintf(out, "Out of guesses. The word was %s. Type :new to play again.\n", snap.RevealedAnswer)
		}
	}
}

// describe turns engine errors into player-facing messages.
func describe(err error) string {
	switch {
	case errors.Is(err, game.ErrGameOver):
		return "This game is over. Type :new to play again."
	case errors.Is(err, game.ErrInvalidGuess):
		return fmt.Sprintf("Guesses are %d letters, A to Z.", game.NumberLetters)
	case errors.Is(err, game.ErrNotInWordList):
		return "Not in the word list."
	default:
		return err.Error()
	}
}

// Render draws the board and the letters tried so far.
func Render(out io.Writer, snap game.Snapshot) {
	var b strings.Builder
	for i, row := range snap.Guesses {
		for j, l := range row {
			b.WriteString(cell(l, snap.Statuses[i][j]))
		}
		b.WriteByte('\n')
	}

	letters := make([]string, 0, len(snap.Keyboard))
	for l := range snap.Keyboard {
		letters = append(letters, l)
	}
	sort.Strings(letters)
	if len(letters) > 0 {
		b.WriteString("letters:")
		for _, l := range letters {
			b.WriteString(cell(l, snap.Keyboard[l]))
		}
		b.WriteByte('\n')
	}
	fmt.Fprint(out, b.String())
}

func cell(letter string, st game.LetterStatus) string {
	switch {
	case letter == "":
		return " _ "
	case st == game.CorrectPosition:
		return "[" + letter + "]"
	case st == game.WrongPosition:
		return "(" + letter + ")"
	case st == game.NotInWord:
		return " " + strings.ToLower(letter) + " "
	default:
		return " " + letter + " "
	}
}
