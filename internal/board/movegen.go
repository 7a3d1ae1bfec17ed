// FILE: internal/board/movegen.go
package board

import (
	"fmt"
	"strings"

	"repertoire/internal/core"
)

var (
	knightOffsets = [8][2]int{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
	kingOffsets   = [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	bishopDirs    = [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	rookDirs      = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
)

// LegalMoves enumerates every legal move for the side to move.
func (b *Board) LegalMoves() []Move {
	opp := core.OppositeColor(b.turn)
	var legal []Move
	for _, m := range b.pseudoMoves() {
		next := b.applyUnchecked(m)
		kr, kf := next.kingSquare(b.turn)
		if !next.attacked(kr, kf, opp) {
			legal = append(legal, m)
		}
	}
	legal = append(legal, b.castlingMoves()...)
	return legal
}

// Apply makes the move if it is legal and returns the successor position.
// The receiver is not mutated.
func (b *Board) Apply(m Move) (*Board, error) {
	for _, lm := range b.LegalMoves() {
		if lm == m {
			return b.applyUnchecked(m), nil
		}
	}
	return nil, fmt.Errorf("illegal move %s in position %s", m.UCI(), b.FEN())
}

// MakeUCIMove parses coordinate notation, checks legality and applies it.
func (b *Board) MakeUCIMove(uci string) (*Board, error) {
	m, err := ParseUCI(uci)
	if err != nil {
		return nil, err
	}
	return b.Apply(m)
}

// SuccessorFENs returns the FEN of every position reachable in one legal
// move by the side to move.
func (b *Board) SuccessorFENs() []string {
	moves := b.LegalMoves()
	fens := make([]string, 0, len(moves))
	for _, m := range moves {
		fens = append(fens, b.applyUnchecked(m).FEN())
	}
	return fens
}

// InCheck reports whether the side to move is in check.
func (b *Board) InCheck() bool {
	kr, kf := b.kingSquare(b.turn)
	return b.attacked(kr, kf, core.OppositeColor(b.turn))
}

func (b *Board) pseudoMoves() []Move {
	moves := make([]Move, 0, 48)
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			p := b.squares[r][f]
			if p == 0 || pieceColor(p) != b.turn {
				continue
			}
			switch p {
			case 'P', 'p':
				b.pawnMoves(r, f, &moves)
			case 'N', 'n':
				b.leaperMoves(r, f, knightOffsets, &moves)
			case 'K', 'k':
				b.leaperMoves(r, f, kingOffsets, &moves)
			case 'B', 'b':
				b.sliderMoves(r, f, bishopDirs, &moves)
			case 'R', 'r':
				b.sliderMoves(r, f, rookDirs, &moves)
			case 'Q', 'q':
				b.sliderMoves(r, f, bishopDirs, &moves)
				b.sliderMoves(r, f, rookDirs, &moves)
			}
		}
	}
	return moves
}

func (b *Board) pawnMoves(r, f int, moves *[]Move) {
	dir, startRank, promoRank := 1, 1, 7
	if b.turn == core.ColorWhite {
		dir, startRank, promoRank = -1, 6, 0
	}

	addPawn := func(tr, tf int) {
		if tr == promoRank {
			for _, promo := range []byte{'q', 'r', 'b', 'n'} {
				*moves = append(*moves, Move{r, f, tr, tf, promo})
			}
			return
		}
		*moves = append(*moves, Move{r, f, tr, tf, 0})
	}

	// Pushes
	one := r + dir
	if onBoard(one, f) && b.squares[one][f] == 0 {
		addPawn(one, f)
		if r == startRank && b.squares[r+2*dir][f] == 0 {
			addPawn(r+2*dir, f)
		}
	}

	// Captures, including en passant
	for _, df := range []int{-1, 1} {
		tf := f + df
		if !onBoard(one, tf) {
			continue
		}
		target := b.squares[one][tf]
		if target != 0 && pieceColor(target) != b.turn {
			addPawn(one, tf)
		} else if target == 0 && squareName(one, tf) == b.enPassant {
			addPawn(one, tf)
		}
	}
}

func (b *Board) leaperMoves(r, f int, offsets [8][2]int, moves *[]Move) {
	for _, o := range offsets {
		tr, tf := r+o[0], f+o[1]
		if !onBoard(tr, tf) {
			continue
		}
		target := b.squares[tr][tf]
		if target == 0 || pieceColor(target) != b.turn {
			*moves = append(*moves, Move{r, f, tr, tf, 0})
		}
	}
}

func (b *Board) sliderMoves(r, f int, dirs [4][2]int, moves *[]Move) {
	for _, d := range dirs {
		tr, tf := r+d[0], f+d[1]
		for onBoard(tr, tf) {
			target := b.squares[tr][tf]
			if target == 0 {
				*moves = append(*moves, Move{r, f, tr, tf, 0})
				tr, tf = tr+d[0], tf+d[1]
				continue
			}
			if pieceColor(target) != b.turn {
				*moves = append(*moves, Move{r, f, tr, tf, 0})
			}
			break
		}
	}
}

// castlingMoves generates castling with full safety checks, so the results
// need no king-safety filtering.
func (b *Board) castlingMoves() []Move {
	var moves []Move
	opp := core.OppositeColor(b.turn)

	if b.turn == core.ColorWhite {
		const r = 7
		if strings.Contains(b.castling, "K") &&
			b.squares[r][4] == 'K' && b.squares[r][7] == 'R' &&
			b.squares[r][5] == 0 && b.squares[r][6] == 0 &&
			!b.attacked(r, 4, opp) && !b.attacked(r, 5, opp) && !b.attacked(r, 6, opp) {
			moves = append(moves, Move{r, 4, r, 6, 0})
		}
		if strings.Contains(b.castling, "Q") &&
			b.squares[r][4] == 'K' && b.squares[r][0] == 'R' &&
			b.squares[r][1] == 0 && b.squares[r][2] == 0 && b.squares[r][3] == 0 &&
			!b.attacked(r, 4, opp) && !b.attacked(r, 3, opp) && !b.attacked(r, 2, opp) {
			moves = append(moves, Move{r, 4, r, 2, 0})
		}
		return moves
	}

	const r = 0
	if strings.Contains(b.castling, "k") &&
		b.squares[r][4] == 'k' && b.squares[r][7] == 'r' &&
		b.squares[r][5] == 0 && b.squares[r][6] == 0 &&
		!b.attacked(r, 4, opp) && !b.attacked(r, 5, opp) && !b.attacked(r, 6, opp) {
		moves = append(moves, Move{r, 4, r, 6, 0})
	}
	if strings.Contains(b.castling, "q") &&
		b.squares[r][4] == 'k' && b.squares[r][0] == 'r' &&
		b.squares[r][1] == 0 && b.squares[r][2] == 0 && b.squares[r][3] == 0 &&
		!b.attacked(r, 4, opp) && !b.attacked(r, 3, opp) && !b.attacked(r, 2, opp) {
		moves = append(moves, Move{r, 4, r, 2, 0})
	}
	return moves
}

// applyUnchecked applies a pseudo-legal move without king-safety validation.
func (b *Board) applyUnchecked(m Move) *Board {
	n := b.clone()
	p := n.squares[m.FromRank][m.FromFile]
	captured := n.squares[m.ToRank][m.ToFile]

	// En passant capture removes the pawn behind the target square
	if (p == 'P' || p == 'p') && captured == 0 && m.FromFile != m.ToFile &&
		squareName(m.ToRank, m.ToFile) == n.enPassant {
		n.squares[m.FromRank][m.ToFile] = 0
		captured = 'p'
	}

	n.squares[m.FromRank][m.FromFile] = 0
	placed := p
	if m.Promotion != 0 {
		placed = m.Promotion
		if b.turn == core.ColorWhite {
			placed = m.Promotion - ('a' - 'A')
		}
	}
	n.squares[m.ToRank][m.ToFile] = placed

	// Castling moves the rook as well
	if (p == 'K' || p == 'k') && abs(m.ToFile-m.FromFile) == 2 {
		r := m.FromRank
		if m.ToFile == 6 {
			n.squares[r][5] = n.squares[r][7]
			n.squares[r][7] = 0
		} else {
			n.squares[r][3] = n.squares[r][0]
			n.squares[r][0] = 0
		}
	}

	n.updateCastlingRights(p, m)

	// Double pawn push sets the en passant target
	n.enPassant = "-"
	if (p == 'P' || p == 'p') && abs(m.ToRank-m.FromRank) == 2 {
		n.enPassant = squareName((m.FromRank+m.ToRank)/2, m.FromFile)
	}

	if p == 'P' || p == 'p' || captured != 0 {
		n.halfmove = 0
	} else {
		n.halfmove++
	}
	if b.turn == core.ColorBlack {
		n.fullmove++
	}
	n.turn = core.OppositeColor(b.turn)

	return n
}

func (n *Board) updateCastlingRights(p byte, m Move) {
	if n.castling == "" || n.castling == "-" {
		n.castling = "-"
		return
	}

	var remove string
	switch p {
	case 'K':
		remove = "KQ"
	case 'k':
		remove = "kq"
	}
	remove += cornerRight(m.FromRank, m.FromFile) // rook left its corner
	remove += cornerRight(m.ToRank, m.ToFile)     // rook captured on its corner
	if remove == "" {
		return
	}

	var sb strings.Builder
	for _, c := range n.castling {
		if !strings.ContainsRune(remove, c) {
			sb.WriteRune(c)
		}
	}
	n.castling = sb.String()
	if n.castling == "" {
		n.castling = "-"
	}
}

func cornerRight(r, f int) string {
	switch {
	case r == 7 && f == 0:
		return "Q"
	case r == 7 && f == 7:
		return "K"
	case r == 0 && f == 0:
		return "q"
	case r == 0 && f == 7:
		return "k"
	}
	return ""
}

// attacked reports whether the square is attacked by any piece of the given color.
func (b *Board) attacked(r, f int, by core.Color) bool {
	// Pawns
	pawnRank := r - 1
	pawn := byte('p')
	if by == core.ColorWhite {
		pawnRank = r + 1
		pawn = 'P'
	}
	for _, df := range []int{-1, 1} {
		if onBoard(pawnRank, f+df) && b.squares[pawnRank][f+df] == pawn {
			return true
		}
	}

	// Knights and kings
	knight, king := byte('n'), byte('k')
	if by == core.ColorWhite {
		knight, king = 'N', 'K'
	}
	for _, o := range knightOffsets {
		if onBoard(r+o[0], f+o[1]) && b.squares[r+o[0]][f+o[1]] == knight {
			return true
		}
	}
	for _, o := range kingOffsets {
		if onBoard(r+o[0], f+o[1]) && b.squares[r+o[0]][f+o[1]] == king {
			return true
		}
	}

	// Sliders
	bishop, rook, queen := byte('b'), byte('r'), byte('q')
	if by == core.ColorWhite {
		bishop, rook, queen = 'B', 'R', 'Q'
	}
	scan := func(dirs [4][2]int, p1, p2 byte) bool {
		for _, d := range dirs {
			tr, tf := r+d[0], f+d[1]
			for onBoard(tr, tf) {
				target := b.squares[tr][tf]
				if target != 0 {
					if target == p1 || target == p2 {
						return true
					}
					break
				}
				tr, tf = tr+d[0], tf+d[1]
			}
		}
		return false
	}
	return scan(bishopDirs, bishop, queen) || scan(rookDirs, rook, queen)
}

func (b *Board) kingSquare(c core.Color) (int, int) {
	king := byte('k')
	if c == core.ColorWhite {
		king = 'K'
	}
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			if b.squares[r][f] == king {
				return r, f
			}
		}
	}
	return -1, -1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
