// FILE: internal/client/display/board.go
package display

import (
	"fmt"
	"strings"
	"time"
)

// RenderBoard renders an ASCII board with colored pieces
func RenderBoard(asciiBoard string) {
	lines := strings.Split(asciiBoard, "\n")

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		isRankLine := (i == 0) || (i == 9)

		// Process each character
		for _, char := range line {
			switch {
			case char >= 'a' && char <= 'h' && isRankLine:
				// File letters - Cyan
				fmt.Printf("%s%c%s", Cyan, char, Reset)
			case char >= 'A' && char <= 'Z':
				// White pieces - Blue
				fmt.Printf("%s%c%s", Blue, char, Reset)
			case char >= 'a' && char <= 'z' && !isRankLine:
				// Black pieces - Red
				fmt.Printf("%s%c%s", Red, char, Reset)
			case char == '.':
				// Empty squares
				fmt.Printf(".")
			case char >= '1' && char <= '8':
				// Rank numbers - Cyan
				fmt.Printf("%s%c%s", Cyan, char, Reset)
			case char == ' ':
				fmt.Printf(" ")
			default:
				fmt.Printf("%c", char)
			}
		}
		fmt.Println()
	}
}

// ColorForSide returns a colored side-to-move indicator
func ColorForSide(color string) string {
	if color == "white" || color == "w" {
		return Blue + "White" + Reset
	}
	return Red + "Black" + Reset
}

// ColorForPhase returns a colored scheduling phase label
func ColorForPhase(phase string) string {
	switch phase {
	case "learning":
		return Yellow + phase + Reset
	case "exponential":
		return Green + phase + Reset
	case "relearning":
		return Red + phase + Reset
	}
	return phase
}

// FormatDue renders a due date relative to now
func FormatDue(next time.Time, now time.Time) string {
	d := next.Sub(now)
	if d <= 0 {
		return Red + "due now" + Reset
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("due in %.1fh", d.Hours())
	}
	return fmt.Sprintf("due in %.1fd", d.Hours()/24)
}
