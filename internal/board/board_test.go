package board

import (
	"strings"
	"testing"
)

func mustParse(t *testing.T, fen string) *Board {
	t.Helper()
	b, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q) error: %v", fen, err)
	}
	return b
}

func playLine(t *testing.T, moves ...string) *Board {
	t.Helper()
	b := New()
	for _, m := range moves {
		next, err := b.MakeUCIMove(m)
		if err != nil {
			t.Fatalf("MakeUCIMove(%q) error: %v", m, err)
		}
		b = next
	}
	return b
}

func TestStartingPositionRoundTrip(t *testing.T) {
	b := New()
	if got := b.FEN(); got != StartingFEN {
		t.Errorf("New().FEN() = %q, want %q", got, StartingFEN)
	}

	parsed := mustParse(t, StartingFEN)
	if got := parsed.FEN(); got != StartingFEN {
		t.Errorf("round trip = %q, want %q", got, StartingFEN)
	}
}

func TestParseFENRejectsGarbage(t *testing.T) {
	bad := []string{
		"",
		"not a fen",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",  // 7 ranks
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", // bad digit
	}
	for _, fen := range bad {
		if _, err := ParseFEN(fen); err == nil {
			t.Errorf("ParseFEN(%q) succeeded, want error", fen)
		}
	}
}

func TestParseUCIRoundTrip(t *testing.T) {
	for _, uci := range []string{"e2e4", "g1f3", "a7a8q", "h2h1n"} {
		m, err := ParseUCI(uci)
		if err != nil {
			t.Fatalf("ParseUCI(%q) error: %v", uci, err)
		}
		if got := m.UCI(); got != uci {
			t.Errorf("round trip = %q, want %q", got, uci)
		}
	}

	for _, uci := range []string{"", "e2", "e2e9", "i2i4", "e7e8x", "e2e4qq"} {
		if _, err := ParseUCI(uci); err == nil {
			t.Errorf("ParseUCI(%q) succeeded, want error", uci)
		}
	}
}

func TestStartingPositionHasTwentyMoves(t *testing.T) {
	if got := len(New().LegalMoves()); got != 20 {
		t.Errorf("len(LegalMoves()) = %d, want 20", got)
	}

	b := playLine(t, "e2e4")
	if got := len(b.LegalMoves()); got != 20 {
		t.Errorf("after e2e4: len(LegalMoves()) = %d, want 20", got)
	}
}

func TestMakeUCIMovePawnPush(t *testing.T) {
	b := playLine(t, "e2e4")
	want := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	if got := b.FEN(); got != want {
		t.Errorf("FEN = %q, want %q", got, want)
	}
}

func TestMakeUCIMoveRejectsIllegal(t *testing.T) {
	b := New()
	for _, uci := range []string{"e2e5", "e7e5", "d1d3", "e1e2"} {
		if _, err := b.MakeUCIMove(uci); err == nil {
			t.Errorf("MakeUCIMove(%q) succeeded, want error", uci)
		}
	}
}

func TestMakeUCIMoveDoesNotMutateReceiver(t *testing.T) {
	b := New()
	before := b.FEN()
	if _, err := b.MakeUCIMove("e2e4"); err != nil {
		t.Fatalf("MakeUCIMove error: %v", err)
	}
	if got := b.FEN(); got != before {
		t.Errorf("receiver mutated: %q != %q", got, before)
	}
}

func TestEnPassantCapture(t *testing.T) {
	b := playLine(t, "e2e4", "a7a6", "e4e5", "d7d5")

	// The double push sets the en-passant target.
	if !strings.Contains(b.FEN(), " d6 ") {
		t.Fatalf("FEN = %q, want en-passant target d6", b.FEN())
	}

	after, err := b.MakeUCIMove("e5d6")
	if err != nil {
		t.Fatalf("en-passant capture failed: %v", err)
	}
	if p := after.GetPieceAt("d6"); p != 'P' {
		t.Errorf("piece at d6 = %q, want 'P'", p)
	}
	if p := after.GetPieceAt("d5"); p != 0 {
		t.Errorf("piece at d5 = %q, want empty (captured pawn removed)", p)
	}
}

func TestKingsideCastling(t *testing.T) {
	b := playLine(t, "e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "f8c5")

	after, err := b.MakeUCIMove("e1g1")
	if err != nil {
		t.Fatalf("castling failed: %v", err)
	}
	if p := after.GetPieceAt("g1"); p != 'K' {
		t.Errorf("piece at g1 = %q, want 'K'", p)
	}
	if p := after.GetPieceAt("f1"); p != 'R' {
		t.Errorf("piece at f1 = %q, want 'R'", p)
	}
	if p := after.GetPieceAt("e1"); p != 0 {
		t.Errorf("piece at e1 = %q, want empty", p)
	}
	// White rights are spent, black's remain.
	if !strings.Contains(after.FEN(), " kq ") {
		t.Errorf("FEN = %q, want castling field kq", after.FEN())
	}
}

func TestCastlingBlockedByPieces(t *testing.T) {
	// Bishop still on f1.
	b := playLine(t, "e2e4", "e7e5", "g1f3", "b8c6")
	if _, err := b.MakeUCIMove("e1g1"); err == nil {
		t.Error("castling through an occupied square succeeded, want error")
	}
}

func TestPromotion(t *testing.T) {
	b := mustParse(t, "8/4P3/8/8/8/8/8/K6k w - - 0 1")

	after, err := b.MakeUCIMove("e7e8q")
	if err != nil {
		t.Fatalf("promotion failed: %v", err)
	}
	if p := after.GetPieceAt("e8"); p != 'Q' {
		t.Errorf("piece at e8 = %q, want 'Q'", p)
	}
	if p := after.GetPieceAt("e7"); p != 0 {
		t.Errorf("piece at e7 = %q, want empty", p)
	}

	under, err := b.MakeUCIMove("e7e8n")
	if err != nil {
		t.Fatalf("underpromotion failed: %v", err)
	}
	if p := under.GetPieceAt("e8"); p != 'N' {
		t.Errorf("piece at e8 = %q, want 'N'", p)
	}
}

func TestPinnedPieceCannotMove(t *testing.T) {
	// The e-file knight is pinned against the king by the rook.
	b := mustParse(t, "4r2k/8/8/8/8/4N3/8/4K3 w - - 0 1")
	if _, err := b.MakeUCIMove("e3c4"); err == nil {
		t.Error("moving a pinned knight succeeded, want error")
	}
}

func TestCheckmateHasNoLegalMoves(t *testing.T) {
	// Fool's mate.
	b := playLine(t, "f2f3", "e7e5", "g2g4", "d8h4")
	if !b.InCheck() {
		t.Error("InCheck() = false, want true")
	}
	if got := len(b.LegalMoves()); got != 0 {
		t.Errorf("len(LegalMoves()) = %d, want 0", got)
	}
}

func TestStalemateHasNoLegalMovesButNoCheck(t *testing.T) {
	b := mustParse(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if b.InCheck() {
		t.Error("InCheck() = true, want false")
	}
	if got := len(b.LegalMoves()); got != 0 {
		t.Errorf("len(LegalMoves()) = %d, want 0", got)
	}
}

func TestSuccessorFENs(t *testing.T) {
	succs := New().SuccessorFENs()
	if len(succs) != 20 {
		t.Fatalf("len(SuccessorFENs()) = %d, want 20", len(succs))
	}

	want := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	found := false
	for _, fen := range succs {
		if _, err := ParseFEN(fen); err != nil {
			t.Errorf("successor %q does not parse: %v", fen, err)
		}
		if fen == want {
			found = true
		}
	}
	if !found {
		t.Errorf("successors missing the e2e4 position %q", want)
	}
}
