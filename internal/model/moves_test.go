package model

import (
	"errors"
	"sort"
	"testing"
)

const emptyRow = "........"

func mustPosition(t *testing.T, rows [8]string) Position {
	t.Helper()
	pos, err := ParsePosition(rows)
	if err != nil {
		t.Fatalf("parse position: %v", err)
	}
	return pos
}

func emptyWith(sq Square, letter byte) [8]string {
	var rows [8]string
	for i := range rows {
		rows[i] = emptyRow
	}
	row := []byte(rows[sq.Row])
	row[sq.Col] = letter
	rows[sq.Row] = string(row)
	return rows
}

func sorted(ss Squares) Squares {
	out := append(Squares(nil), ss...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

func sameSet(a, b Squares) bool {
	if len(a) != len(b) {
		return false
	}
	a, b = sorted(a), sorted(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func movesAt(t *testing.T, pos Position, sq Square) Squares {
	t.Helper()
	moves, err := ValidMoves(&pos, sq, pos.At(sq))
	if err != nil {
		t.Fatalf("valid moves at %v: %v", sq, err)
	}
	return moves
}

func TestLoneStepperMoveCounts(t *testing.T) {
	tests := []struct {
		name   string
		letter byte
		sq     Square
		want   int
	}{
		{"knight center", 'N', Square{4, 4}, 8},
		{"knight corner", 'N', Square{0, 0}, 2},
		{"knight edge", 'n', Square{0, 4}, 4},
		{"king center", 'K', Square{4, 4}, 8},
		{"king corner", 'k', Square{7, 7}, 3},
		{"king edge", 'K', Square{7, 4}, 5},
		{"rook center", 'R', Square{4, 4}, 14},
		{"bishop corner", 'b', Square{0, 0}, 7},
		{"queen center", 'Q', Square{4, 4}, 27},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := mustPosition(t, emptyWith(tt.sq, tt.letter))
			moves := movesAt(t, pos, tt.sq)
			if len(moves) != tt.want {
				t.Fatalf("got %d moves %v, want %d", len(moves), moves, tt.want)
			}
		})
	}
}

func TestKnightCornerDestinations(t *testing.T) {
	pos := mustPosition(t, emptyWith(Square{0, 0}, 'N'))
	got := movesAt(t, pos, Square{0, 0})
	want := Squares{{1, 2}, {2, 1}}
	if !sameSet(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestKnightJumpsOverPieces(t *testing.T) {
	pos := NewPosition()
	got := movesAt(t, pos, Square{7, 1})
	want := Squares{{5, 0}, {5, 2}}
	if !sameSet(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSlidingRayStopsAtFirstPiece(t *testing.T) {
	pos := mustPosition(t, [8]string{
		"........",
		"...p....",
		"........",
		"........",
		".P.R..n.",
		"........",
		"........",
		"........",
	})
	got := movesAt(t, pos, Square{4, 3})
	want := Squares{
		// up: empty, empty, capture at (1,3), nothing beyond
		{3, 3}, {2, 3}, {1, 3},
		// down to the edge
		{5, 3}, {6, 3}, {7, 3},
		// left: (4,2) then own pawn at (4,1) blocks
		{4, 2},
		// right: (4,4), (4,5), capture at (4,6)
		{4, 4}, {4, 5}, {4, 6},
	}
	if !sameSet(got, want) {
		t.Fatalf("got %v, want %v", sorted(got), sorted(want))
	}
	if got.Contains(Square{0, 3}) || got.Contains(Square{4, 7}) {
		t.Fatal("ray continued past a captured piece")
	}
	if got.Contains(Square{4, 1}) || got.Contains(Square{4, 0}) {
		t.Fatal("ray included or passed an own piece")
	}
}

func TestBishopRaysAreIndependent(t *testing.T) {
	pos := mustPosition(t, [8]string{
		"........",
		"........",
		"........",
		"....P...",
		"...b....",
		"........",
		"........",
		"........",
	})
	got := movesAt(t, pos, Square{4, 3})
	// up-right captures at once; other three rays run to the edge.
	want := Squares{
		{3, 4},
		{3, 2}, {2, 1}, {1, 0},
		{5, 2}, {6, 1}, {7, 0},
		{5, 4}, {6, 5}, {7, 6},
	}
	if !sameSet(got, want) {
		t.Fatalf("got %v, want %v", sorted(got), sorted(want))
	}
}

func TestQueenIsRookPlusBishop(t *testing.T) {
	rows := [8]string{
		"..r.....",
		"........",
		"....p...",
		"..Q..P..",
		"........",
		"N.......",
		"........",
		"..K.....",
	}
	queen := movesAt(t, mustPosition(t, rows), Square{3, 2})

	row := []byte(rows[3])
	row[2] = 'R'
	rows[3] = string(row)
	rook := movesAt(t, mustPosition(t, rows), Square{3, 2})
	row[2] = 'B'
	rows[3] = string(row)
	bishop := movesAt(t, mustPosition(t, rows), Square{3, 2})

	if !sameSet(queen, append(append(Squares{}, rook...), bishop...)) {
		t.Fatalf("queen %v != rook %v + bishop %v", queen, rook, bishop)
	}
}

func TestPawnMoves(t *testing.T) {
	tests := []struct {
		name string
		rows [8]string
		sq   Square
		want Squares
	}{
		{
			name: "white double step from start",
			rows: [8]string{emptyRow, emptyRow, emptyRow, emptyRow, emptyRow, emptyRow, "....P...", emptyRow},
			sq:   Square{6, 4},
			want: Squares{{5, 4}, {4, 4}},
		},
		{
			name: "black double step from start",
			rows: [8]string{emptyRow, "..p.....", emptyRow, emptyRow, emptyRow, emptyRow, emptyRow, emptyRow},
			sq:   Square{1, 2},
			want: Squares{{2, 2}, {3, 2}},
		},
		{
			name: "no double step off start rank",
			rows: [8]string{emptyRow, emptyRow, emptyRow, emptyRow, emptyRow, "....P...", emptyRow, emptyRow},
			sq:   Square{5, 4},
			want: Squares{{4, 4}},
		},
		{
			name: "double step blocked at destination",
			rows: [8]string{emptyRow, emptyRow, emptyRow, emptyRow, "....n...", emptyRow, "....P...", emptyRow},
			sq:   Square{6, 4},
			want: Squares{{5, 4}},
		},
		{
			name: "intermediate blocked removes both steps but not captures",
			rows: [8]string{emptyRow, emptyRow, emptyRow, emptyRow, emptyRow, "...nnr..", "....P...", emptyRow},
			sq:   Square{6, 4},
			want: Squares{{5, 3}, {5, 5}},
		},
		{
			name: "no capture of own piece",
			rows: [8]string{emptyRow, emptyRow, emptyRow, emptyRow, emptyRow, "...N.B..", "....P...", emptyRow},
			sq:   Square{6, 4},
			want: Squares{{5, 4}, {4, 4}},
		},
		{
			name: "edge file capture stays in bounds",
			rows: [8]string{emptyRow, "p.......", ".P......", emptyRow, emptyRow, emptyRow, emptyRow, emptyRow},
			sq:   Square{1, 0},
			want: Squares{{2, 0}, {3, 0}, {2, 1}},
		},
		{
			name: "pawn on last rank has no moves",
			rows: [8]string{"P.......", emptyRow, emptyRow, emptyRow, emptyRow, emptyRow, emptyRow, emptyRow},
			sq:   Square{0, 0},
			want: Squares{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := movesAt(t, mustPosition(t, tt.rows), tt.sq)
			if !sameSet(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStartingRookIsBlocked(t *testing.T) {
	pos := NewPosition()
	for _, sq := range []Square{{7, 0}, {7, 7}, {0, 0}, {0, 7}} {
		if got := movesAt(t, pos, sq); len(got) != 0 {
			t.Errorf("rook at %v: got %v, want none", sq, got)
		}
	}
}

func TestNoMoveLandsOnOwnPieceOrOffBoard(t *testing.T) {
	positions := []Position{
		NewPosition(),
		mustPosition(t, [8]string{
			"r...k..r",
			"ppp..ppp",
			"..n.bq..",
			"...pP...",
			"..B.n.b.",
			"..N..N..",
			"PPP..PPP",
			"R..QK..R",
		}),
	}
	for _, pos := range positions {
		for r := 0; r < 8; r++ {
			for c := 0; c < 8; c++ {
				sq := Square{r, c}
				piece := pos.At(sq)
				if piece.IsEmpty() {
					continue
				}
				for _, dst := range movesAt(t, pos, sq) {
					if !dst.InBounds() {
						t.Fatalf("%s at %v: out of bounds destination %v", piece, sq, dst)
					}
					if pos.At(dst).SameColor(piece) {
						t.Fatalf("%s at %v: destination %v holds own piece", piece, sq, dst)
					}
				}
			}
		}
	}
}

func TestValidMovesPreconditions(t *testing.T) {
	pos := NewPosition()
	tests := []struct {
		name   string
		origin Square
		piece  Piece
		want   error
	}{
		{"empty origin", Square{4, 4}, Piece{Kind: Pawn, Color: White}, ErrPrecondition},
		{"mismatched piece", Square{6, 4}, Piece{Kind: Queen, Color: White}, ErrPrecondition},
		{"empty piece", Square{4, 4}, Piece{}, ErrPrecondition},
		{"off board", Square{8, 0}, Piece{Kind: Pawn, Color: White}, ErrOutOfBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidMoves(&pos, tt.origin, tt.piece)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParsePositionRoundTrip(t *testing.T) {
	pos := NewPosition()
	if got := pos.Rows(); got != startingRows {
		t.Fatalf("rows = %v", got)
	}
	if pos.At(Square{0, 4}) != (Piece{Kind: King, Color: Black}) {
		t.Fatalf("expected black king at (0,4), got %s", pos.At(Square{0, 4}))
	}
	if pos.At(Square{7, 3}) != (Piece{Kind: Queen, Color: White}) {
		t.Fatalf("expected white queen at (7,3), got %s", pos.At(Square{7, 3}))
	}
	if _, err := ParsePosition([8]string{"rnbqkbnx"}); err == nil {
		t.Fatal("expected error for malformed rows")
	}
}

func TestPieceLettersAndSymbols(t *testing.T) {
	tests := []struct {
		piece  Piece
		letter byte
		symbol string
	}{
		{Piece{Kind: King, Color: White}, 'K', "♔"},
		{Piece{Kind: Knight, Color: Black}, 'n', "♞"},
		{Piece{Kind: Pawn, Color: Black}, 'p', "♟"},
		{Piece{}, '.', ""},
	}
	for _, tt := range tests {
		if got := tt.piece.Letter(); got != tt.letter {
			t.Errorf("%s letter = %q, want %q", tt.piece, got, tt.letter)
		}
		if got := tt.piece.Symbol(); got != tt.symbol {
			t.Errorf("%s symbol = %q, want %q", tt.piece, got, tt.symbol)
		}
	}
}
