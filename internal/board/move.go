// FILE: internal/board/move.go
package board

import "fmt"

// Move is a coordinate move: origin, destination, optional promotion piece
// (lowercase FEN letter, 0 when none).
type Move struct {
	FromRank, FromFile int
	ToRank, ToFile     int
	Promotion          byte
}

// UCI renders the move in coordinate notation, e.g. "e2e4" or "e7e8q".
func (m Move) UCI() string {
	s := squareName(m.FromRank, m.FromFile) + squareName(m.ToRank, m.ToFile)
	if m.Promotion != 0 {
		s += string(m.Promotion)
	}
	return s
}

// ParseUCI parses coordinate notation without checking legality.
func ParseUCI(uci string) (Move, error) {
	if len(uci) != 4 && len(uci) != 5 {
		return Move{}, fmt.Errorf("invalid move %q: expected 4 or 5 characters", uci)
	}

	fr, ff, ok := parseSquare(uci[0:2])
	if !ok {
		return Move{}, fmt.Errorf("invalid move %q: bad origin square", uci)
	}
	tr, tf, ok := parseSquare(uci[2:4])
	if !ok {
		return Move{}, fmt.Errorf("invalid move %q: bad destination square", uci)
	}

	m := Move{FromRank: fr, FromFile: ff, ToRank: tr, ToFile: tf}
	if len(uci) == 5 {
		switch uci[4] {
		case 'q', 'r', 'b', 'n':
			m.Promotion = uci[4]
		default:
			return Move{}, fmt.Errorf("invalid move %q: bad promotion piece", uci)
		}
	}
	return m, nil
}
