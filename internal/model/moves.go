package model

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds  = errors.New("square out of bounds")
	ErrPrecondition = errors.New("piece is not on origin square")
)

type direction struct {
	dr, dc int
}

var (
	rookDirs   = []direction{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	bishopDirs = []direction{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	queenDirs  = append(append([]direction{}, rookDirs...), bishopDirs...)
	kingDirs   = queenDirs
	knightDirs = []direction{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
)

// ValidMoves returns the pseudo-legal destinations of piece standing on origin.
// Leaving one's own king in check is not considered.
func ValidMoves(pos *Position, origin Square, piece Piece) (Squares, error) {
	if !origin.InBounds() {
		return nil, fmt.Errorf("origin %v: %w", origin, ErrOutOfBounds)
	}
	if piece.IsEmpty() || pos.At(origin) != piece {
		return nil, fmt.Errorf("%s at %v, found %s: %w", piece, origin, pos.At(origin), ErrPrecondition)
	}

	switch piece.Kind {
	case Pawn:
		return pawnMoves(pos, origin, piece), nil
	case Knight:
		return stepMoves(pos, origin, piece, knightDirs), nil
	case King:
		return stepMoves(pos, origin, piece, kingDirs), nil
	case Rook:
		return slidingMoves(pos, origin, piece, rookDirs), nil
	case Bishop:
		return slidingMoves(pos, origin, piece, bishopDirs), nil
	case Queen:
		return slidingMoves(pos, origin, piece, queenDirs), nil
	default:
		return nil, fmt.Errorf("unknown piece kind %q: %w", piece.Kind, ErrPrecondition)
	}
}

func pawnMoves(pos *Position, origin Square, piece Piece) Squares {
	moves := Squares{}
	forward, startRow := -1, 6
	if piece.Color == Black {
		forward, startRow = 1, 1
	}

	one := origin.offset(forward, 0)
	if one.InBounds() && pos.At(one).IsEmpty() {
		moves = append(moves, one)
		two := origin.offset(2*forward, 0)
		if origin.Row == startRow && two.InBounds() && pos.At(two).IsEmpty() {
			moves = append(moves, two)
		}
	}

	for _, side := range []int{-1, 1} {
		target := origin.offset(forward, side)
		if !target.InBounds() {
			continue
		}
		occupant := pos.At(target)
		if !occupant.IsEmpty() && !occupant.SameColor(piece) {
			moves = append(moves, target)
		}
	}
	return moves
}

// stepMoves handles the fixed-offset pieces (knight, king). No blocking.
func stepMoves(pos *Position, origin Square, piece Piece, dirs []direction) Squares {
	moves := Squares{}
	for _, d := range dirs {
		target := origin.offset(d.dr, d.dc)
		if target.InBounds() && !pos.At(target).SameColor(piece) {
			moves = append(moves, target)
		}
	}
	return moves
}

// slidingMoves walks each ray until the edge or the first occupied square.
// An opposing piece is included as a capture, an own piece is not.
func slidingMoves(pos *Position, origin Square, piece Piece, dirs []direction) Squares {
	moves := Squares{}
	for _, d := range dirs {
		target := origin.offset(d.dr, d.dc)
		for target.InBounds() {
			occupant := pos.At(target)
			if !occupant.IsEmpty() {
				if !occupant.SameColor(piece) {
					moves = append(moves, target)
				}
				break
			}
			moves = append(moves, target)
			target = target.offset(d.dr, d.dc)
		}
	}
	return moves
}
