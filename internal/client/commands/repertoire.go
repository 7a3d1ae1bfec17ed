// FILE: internal/client/commands/repertoire.go
package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"repertoire/internal/client/api"
	"repertoire/internal/client/display"
	"repertoire/internal/client/session"
)

func (r *Registry) registerRepertoireCommands() {
	r.Register(&Command{
		Name:        "save",
		ShortName:   "s",
		Description: "Save an opening line into the repertoire",
		Usage:       "save [opening name]",
		Handler:     saveLineHandler,
	})

	r.Register(&Command{
		Name:        "list",
		ShortName:   "ls",
		Description: "List repertoire entries for the current color",
		Usage:       "list",
		Handler:     listHandler,
	})

	r.Register(&Command{
		Name:        "color",
		ShortName:   "c",
		Description: "Show or set the training color",
		Usage:       "color [white|black]",
		Handler:     colorHandler,
	})

	r.Register(&Command{
		Name:        "delete",
		ShortName:   "d",
		Description: "Delete an entry and everything reachable below it",
		Usage:       "delete <entryId>",
		Handler:     deleteHandler,
	})
}

func saveLineHandler(s *session.Session, args []string) error {
	scanner := bufio.NewScanner(os.Stdin)

	opening := strings.Join(args, " ")
	if opening == "" {
		fmt.Print(display.Yellow + "Opening name (optional): " + display.Reset)
		scanner.Scan()
		opening = strings.TrimSpace(scanner.Text())
	}

	fmt.Print(display.Yellow + "SAN moves (space separated): " + display.Reset)
	scanner.Scan()
	san := strings.Fields(scanner.Text())

	fmt.Print(display.Yellow + "UCI moves (space separated): " + display.Reset)
	scanner.Scan()
	uci := strings.Fields(scanner.Text())

	if len(san) == 0 {
		return fmt.Errorf("no moves entered")
	}
	if len(san) != len(uci) {
		return fmt.Errorf("SAN and UCI move counts differ (%d vs %d)", len(san), len(uci))
	}

	resp, err := s.Client.SaveLine(&api.SaveLineRequest{
		Color:    s.Color,
		Opening:  opening,
		MovesSan: san,
		MovesUci: uci,
	})
	if err != nil {
		return err
	}

	fmt.Printf("%sLine saved: %d new entries%s\n", display.Green, resp.EntriesCreated, display.Reset)
	return nil
}

func listHandler(s *session.Session, args []string) error {
	resp, err := s.Client.GetRepertoire(s.Color)
	if err != nil {
		return err
	}

	if len(resp.Entries) == 0 {
		fmt.Printf("%sRepertoire for %s is empty%s\n", display.Yellow, resp.Color, display.Reset)
		return nil
	}

	fmt.Printf("%sRepertoire (%s, %d entries):%s\n", display.Cyan, resp.Color, len(resp.Entries), display.Reset)
	for _, e := range resp.Entries {
		fmt.Printf("  %s%-36s%s %-8s %-10s reps=%-3d ease=%.2f %s\n",
			display.White, e.EntryID, display.Reset,
			e.MoveSan,
			display.ColorForPhase(e.Phase),
			e.Repetitions,
			e.EaseFactor,
			e.NextReviewDate.Format("2006-01-02"))
	}
	return nil
}

func colorHandler(s *session.Session, args []string) error {
	if len(args) == 0 {
		fmt.Printf("Training color: %s\n", display.ColorForSide(s.Color))
		return nil
	}

	c := strings.ToLower(args[0])
	if c != "white" && c != "black" {
		return fmt.Errorf("color must be white or black")
	}

	s.Color = c
	fmt.Printf("%sTraining color set to %s%s\n", display.Cyan, c, display.Reset)
	return nil
}

func deleteHandler(s *session.Session, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: delete <entryId>")
	}

	resp, err := s.Client.DeleteEntry(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%sDeleted %d entries%s\n", display.Green, resp.DeletedCount, display.Reset)
	if s.Verbose {
		for _, id := range resp.DeletedIDs {
			fmt.Printf("  %s\n", id)
		}
	}
	return nil
}
