// Package notation translates board coordinates and layouts into standard
// chess notation.
package notation

import (
	"fmt"

	"github.com/notnil/chess"
)

var letterPieces = map[byte]chess.Piece{
	'K': chess.WhiteKing, 'Q': chess.WhiteQueen, 'R': chess.WhiteRook,
	'B': chess.WhiteBishop, 'N': chess.WhiteKnight, 'P': chess.WhitePawn,
	'k': chess.BlackKing, 'q': chess.BlackQueen, 'r': chess.BlackRook,
	'b': chess.BlackBishop, 'n': chess.BlackKnight, 'p': chess.BlackPawn,
}

// square maps a grid coordinate (row 0 = rank 8) to a chess.Square.
func square(row, col int) chess.Square {
	return chess.NewSquare(chess.File(col), chess.Rank(7-row))
}

// SquareName returns the algebraic name of a grid coordinate, e.g. (6,4) -> "e2".
// Off-board coordinates are rendered as "-".
func SquareName(row, col int) string {
	if row < 0 || row > 7 || col < 0 || col > 7 {
		return "-"
	}
	return square(row, col).String()
}

// Placement returns the piece-placement field of a FEN string for rows of
// piece letters ('.' for empty), row 0 being rank 8.
func Placement(rows [8]string) (string, error) {
	m := make(map[chess.Square]chess.Piece)
	for r, row := range rows {
		if len(row) != 8 {
			return "", fmt.Errorf("rank %d: expected 8 files, got %d", 8-r, len(row))
		}
		for c := 0; c < 8; c++ {
			if row[c] == '.' {
				continue
			}
			p, ok := letterPieces[row[c]]
			if !ok {
				return "", fmt.Errorf("%s: unknown piece %q", SquareName(r, c), row[c])
			}
			m[square(r, c)] = p
		}
	}
	return chess.NewBoard(m).String(), nil
}
