// FILE: internal/core/core.go
package core

type Color byte

const (
	ColorWhite Color = 'w'
	ColorBlack Color = 'b'
)

func OppositeColor(c Color) Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

// ParseColor converts the API representation ("white"/"black") to a Color.
func ParseColor(s string) (Color, bool) {
	switch s {
	case "white", "w":
		return ColorWhite, true
	case "black", "b":
		return ColorBlack, true
	}
	return 0, false
}

func (c Color) String() string {
	if c == ColorWhite {
		return "white"
	}
	return "black"
}
