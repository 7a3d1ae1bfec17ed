// Package main implements an interactive client for the repertoire training API.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"repertoire/internal/client/commands"
	"repertoire/internal/client/display"
	"repertoire/internal/client/session"

	"github.com/chzyer/readline"
)

func main() {
	s := session.New("http://localhost:8080")

	// Initialize readline
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("repertoire"),
		HistoryFile:     ".repertoire_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("%sRepertoire Trainer%s\n", display.Cyan, display.Reset)
	fmt.Printf("%sAPI: %s%s\n", display.Cyan, s.APIBaseURL, display.Reset)
	fmt.Printf("Type 'help' for commands\n\n")

	registry := commands.NewRegistry(s)

	for {
		rl.SetPrompt(buildPrompt(s))

		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if line == "exit" || line == "quit" || line == "x" {
			break
		}

		// Check for verbose flag
		if strings.HasSuffix(line, " -v") {
			s.Verbose = true
			line = strings.TrimSuffix(line, " -v")
		} else {
			s.Verbose = false
		}

		registry.Execute(line)
	}
}

func buildPrompt(s *session.Session) string {
	promptStr := "repertoire"

	if s.Username != "" {
		promptStr += display.Yellow + " [" + display.Reset +
			display.Magenta + s.Username + display.Reset +
			display.Yellow + "]" + display.Reset
	}

	promptStr += " " + display.ColorForSide(s.Color)

	return display.Prompt(promptStr)
}
