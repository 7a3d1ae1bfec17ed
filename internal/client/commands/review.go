// FILE: internal/client/commands/review.go
package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"repertoire/internal/board"
	"repertoire/internal/client/api"
	"repertoire/internal/client/display"
	"repertoire/internal/client/session"
)

func (r *Registry) registerReviewCommands() {
	r.Register(&Command{
		Name:        "due",
		ShortName:   "u",
		Description: "Show entries due for review",
		Usage:       "due",
		Handler:     dueHandler,
	})

	r.Register(&Command{
		Name:        "train",
		ShortName:   "t",
		Description: "Run an interactive review session over due entries",
		Usage:       "train",
		Handler:     trainHandler,
	})
}

func dueHandler(s *session.Session, args []string) error {
	resp, err := s.Client.GetDueCards(s.Color)
	if err != nil {
		return err
	}

	if len(resp.Cards) == 0 {
		fmt.Printf("%sNothing due for %s%s\n", display.Green, resp.Color, display.Reset)
		return nil
	}

	now := time.Now()
	fmt.Printf("%s%d entries due (%s):%s\n", display.Cyan, len(resp.Cards), resp.Color, display.Reset)
	for _, e := range resp.Cards {
		fmt.Printf("  %s%-36s%s %-8s %-10s %s\n",
			display.White, e.EntryID, display.Reset,
			e.MoveSan,
			display.ColorForPhase(e.Phase),
			display.FormatDue(e.NextReviewDate, now))
	}
	return nil
}

func trainHandler(s *session.Session, args []string) error {
	resp, err := s.Client.GetDueCards(s.Color)
	if err != nil {
		return err
	}

	if len(resp.Cards) == 0 {
		fmt.Printf("%sNothing due for %s%s\n", display.Green, resp.Color, display.Reset)
		return nil
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Printf("%sReview session: %d cards (%s)%s\n", display.Cyan, len(resp.Cards), resp.Color, display.Reset)
	fmt.Printf("Grade each move: f=forgot p=partial e=effort z=easy, q=quit\n")

	for i, card := range resp.Cards {
		fmt.Printf("\n%sCard %d/%d%s\n", display.Cyan, i+1, len(resp.Cards), display.Reset)
		showPosition(card)

		fmt.Printf("Your move here is %s%s%s (%s)\n", display.Green, card.MoveSan, display.Reset, card.MoveUci)

		grade, ok := promptGrade(scanner)
		if !ok {
			fmt.Printf("%sSession ended early%s\n", display.Yellow, display.Reset)
			return nil
		}

		result, err := s.Client.SubmitReview(card.EntryID, grade)
		if err != nil {
			return err
		}

		fmt.Printf("%sNext review: %s (%.1f days)%s\n",
			display.Green,
			result.NextReviewDate.Format("2006-01-02 15:04"),
			result.IntervalDays,
			display.Reset)
		if result.Rationale != "" {
			fmt.Printf("  %s\n", result.Rationale)
		}
	}

	fmt.Printf("\n%sSession complete%s\n", display.Green, display.Reset)
	return nil
}

// showPosition renders the card's position, oriented for the reader
func showPosition(card api.Entry) {
	b, err := board.ParseFEN(card.FEN)
	if err != nil {
		// Fall back to the raw FEN when the server sent something unexpected
		fmt.Printf("Position: %s\n", card.FEN)
		return
	}
	display.RenderBoard(b.ToASCII())
}

func promptGrade(scanner *bufio.Scanner) (string, bool) {
	for {
		fmt.Print(display.Yellow + "Grade [f/p/e/z/q]: " + display.Reset)
		if !scanner.Scan() {
			return "", false
		}
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "f", "forgot":
			return "forgot", true
		case "p", "partial":
			return "partial", true
		case "e", "effort":
			return "effort", true
		case "z", "easy":
			return "easy", true
		case "q", "quit":
			return "", false
		}
		fmt.Printf("%sEnter f, p, e, z or q%s\n", display.Red, display.Reset)
	}
}
