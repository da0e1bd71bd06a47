package model

import (
	"encoding/json"
	"fmt"
)

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Opponent returns the other side.
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

type Kind string

const (
	NoKind Kind = ""
	Pawn   Kind = "pawn"
	Knight Kind = "knight"
	Bishop Kind = "bishop"
	Rook   Kind = "rook"
	Queen  Kind = "queen"
	King   Kind = "king"
)

var kindLetters = map[Kind]byte{
	Pawn:   'p',
	Knight: 'n',
	Bishop: 'b',
	Rook:   'r',
	Queen:  'q',
	King:   'k',
}

var pieceSymbols = map[Piece]string{
	{Kind: Rook, Color: Black}: "♜", {Kind: Knight, Color: Black}: "♞", {Kind: Bishop, Color: Black}: "♝",
	{Kind: Queen, Color: Black}: "♛", {Kind: King, Color: Black}: "♚", {Kind: Pawn, Color: Black}: "♟",
	{Kind: Rook, Color: White}: "♖", {Kind: Knight, Color: White}: "♘", {Kind: Bishop, Color: White}: "♗",
	{Kind: Queen, Color: White}: "♕", {Kind: King, Color: White}: "♔", {Kind: Pawn, Color: White}: "♙",
}

// Piece is a (kind, color) pair. The zero Piece is an empty cell.
type Piece struct {
	Kind  Kind  `json:"kind"`
	Color Color `json:"color"`
}

func (p Piece) IsEmpty() bool {
	return p.Kind == NoKind
}

// SameColor reports whether both cells hold pieces of the same side.
func (p Piece) SameColor(other Piece) bool {
	return !p.IsEmpty() && !other.IsEmpty() && p.Color == other.Color
}

// Letter returns the piece letter, uppercase for white, or '.' for an empty cell.
func (p Piece) Letter() byte {
	l, ok := kindLetters[p.Kind]
	if !ok {
		return '.'
	}
	if p.Color == White {
		return l - 'a' + 'A'
	}
	return l
}

func (p Piece) Symbol() string {
	return pieceSymbols[p]
}

func (p Piece) String() string {
	if p.IsEmpty() {
		return "empty"
	}
	return fmt.Sprintf("%s %s", p.Color, p.Kind)
}

func pieceFromLetter(l byte) (Piece, bool) {
	if l == '.' {
		return Piece{}, true
	}
	color := Black
	if l >= 'A' && l <= 'Z' {
		color = White
		l = l - 'A' + 'a'
	}
	for kind, letter := range kindLetters {
		if letter == l {
			return Piece{Kind: kind, Color: color}, true
		}
	}
	return Piece{}, false
}

// Square is a board coordinate. Row 0 is black's back rank.
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (s Square) InBounds() bool {
	return s.Row >= 0 && s.Row < 8 && s.Col >= 0 && s.Col < 8
}

func (s Square) offset(dr, dc int) Square {
	return Square{Row: s.Row + dr, Col: s.Col + dc}
}

// Squares is a destination set in generation order.
type Squares []Square

func (ss Squares) Contains(sq Square) bool {
	for _, s := range ss {
		if s == sq {
			return true
		}
	}
	return false
}

// Position is the 8x8 grid, row-major.
type Position [8][8]Piece

var startingRows = [8]string{
	"rnbqkbnr",
	"pppppppp",
	"........",
	"........",
	"........",
	"........",
	"PPPPPPPP",
	"RNBQKBNR",
}

// NewPosition returns the standard starting layout.
func NewPosition() Position {
	pos, err := ParsePosition(startingRows)
	if err != nil {
		panic(err)
	}
	return pos
}

// ParsePosition reads 8 rows of piece letters ('.' for empty), row 0 first.
func ParsePosition(rows [8]string) (Position, error) {
	var pos Position
	for r, row := range rows {
		if len(row) != 8 {
			return Position{}, fmt.Errorf("row %d: expected 8 cells, got %d", r, len(row))
		}
		for c := 0; c < 8; c++ {
			piece, ok := pieceFromLetter(row[c])
			if !ok {
				return Position{}, fmt.Errorf("row %d col %d: unknown piece %q", r, c, row[c])
			}
			pos[r][c] = piece
		}
	}
	return pos, nil
}

// At returns the cell at sq. sq must be in bounds.
func (p *Position) At(sq Square) Piece {
	return p[sq.Row][sq.Col]
}

func (p *Position) Set(sq Square, piece Piece) {
	p[sq.Row][sq.Col] = piece
}

// Rows renders the position back into the ParsePosition format.
func (p *Position) Rows() [8]string {
	var rows [8]string
	for r := 0; r < 8; r++ {
		buf := make([]byte, 8)
		for c := 0; c < 8; c++ {
			buf[c] = p[r][c].Letter()
		}
		rows[r] = string(buf)
	}
	return rows
}

// MarshalJSON encodes the grid as rows of pieces with null for empty cells.
func (p Position) MarshalJSON() ([]byte, error) {
	grid := make([][]*Piece, 8)
	for r := 0; r < 8; r++ {
		grid[r] = make([]*Piece, 8)
		for c := 0; c < 8; c++ {
			if !p[r][c].IsEmpty() {
				piece := p[r][c]
				grid[r][c] = &piece
			}
		}
	}
	return json.Marshal(grid)
}
