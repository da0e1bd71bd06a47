package model

import "fmt"

// Outcome describes what an activation did to the controller.
type Outcome int

const (
	Ignored Outcome = iota // animation in flight, event dropped
	Unchanged
	Selected
	Reselected
	Cleared
	Committed
)

func (o Outcome) String() string {
	switch o {
	case Ignored:
		return "ignored"
	case Unchanged:
		return "unchanged"
	case Selected:
		return "selected"
	case Reselected:
		return "reselected"
	case Cleared:
		return "cleared"
	case Committed:
		return "committed"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Selection is a selected piece together with its cached destinations.
type Selection struct {
	Square Square
	Piece  Piece
	Moves  Squares
}

// View is everything the presentation layer needs to redraw the board.
type View struct {
	Position   Position `json:"board"`
	Turn       Color    `json:"turn"`
	Selected   *Square  `json:"selectedSquare"`
	ValidMoves Squares  `json:"validMoves"`
	Animating  bool     `json:"animating"`
	MoveCount  int      `json:"moveCount"`
}

// Animation asks the presentation layer to move a piece on screen.
type Animation struct {
	ID    uint64 `json:"id"`
	Piece Piece  `json:"piece"`
	From  Square `json:"from"`
	To    Square `json:"to"`
}

type Renderer interface {
	Render(View)
}

type Animator interface {
	Animate(Animation)
}

// Controller is the turn and selection state machine. It is the only
// mutator of its position and is not safe for concurrent use.
type Controller struct {
	position  Position
	turn      Color
	selection *Selection
	moveCount int

	animating   bool
	animationID uint64

	renderer Renderer
	animator Animator
}

type ControllerOption func(*Controller)

func WithRenderer(r Renderer) ControllerOption {
	return func(c *Controller) { c.renderer = r }
}

// WithAnimator enables the animation gate. Without one, commits never raise it.
func WithAnimator(a Animator) ControllerOption {
	return func(c *Controller) { c.animator = a }
}

// WithPosition starts from a custom position instead of the standard layout.
func WithPosition(pos Position, turn Color) ControllerOption {
	return func(c *Controller) {
		c.position = pos
		c.turn = turn
	}
}

func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		position: NewPosition(),
		turn:     White,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Turn() Color {
	return c.turn
}

func (c *Controller) Position() Position {
	return c.position
}

func (c *Controller) Animating() bool {
	return c.animating
}

// Selection returns a copy of the current selection, or nil when idle.
func (c *Controller) Selection() *Selection {
	if c.selection == nil {
		return nil
	}
	sel := *c.selection
	sel.Moves = append(Squares(nil), c.selection.Moves...)
	return &sel
}

func (c *Controller) View() View {
	v := View{
		Position:   c.position,
		Turn:       c.turn,
		ValidMoves: Squares{},
		Animating:  c.animating,
		MoveCount:  c.moveCount,
	}
	if c.selection != nil {
		sq := c.selection.Square
		v.Selected = &sq
		v.ValidMoves = append(v.ValidMoves, c.selection.Moves...)
	}
	return v
}

// Activate feeds one square activation into the state machine.
func (c *Controller) Activate(sq Square) (Outcome, error) {
	if c.animating {
		return Ignored, nil
	}
	if !sq.InBounds() {
		return Unchanged, fmt.Errorf("activate %v: %w", sq, ErrOutOfBounds)
	}

	if c.selection == nil {
		if !c.ownsPiece(sq) {
			return Unchanged, nil
		}
		if err := c.selectSquare(sq); err != nil {
			return Unchanged, err
		}
		c.render()
		return Selected, nil
	}

	if c.selection.Moves.Contains(sq) {
		c.commit(c.selection.Square, sq)
		return Committed, nil
	}

	c.selection = nil
	if c.ownsPiece(sq) {
		if err := c.selectSquare(sq); err != nil {
			c.render()
			return Cleared, err
		}
		c.render()
		return Reselected, nil
	}
	c.render()
	return Cleared, nil
}

// FinishAnimation lowers the animation gate if id is the animation in flight.
func (c *Controller) FinishAnimation(id uint64) bool {
	if !c.animating || id != c.animationID {
		return false
	}
	c.animating = false
	c.render()
	return true
}

// Reset restores the starting layout with white to move.
func (c *Controller) Reset() {
	c.position = NewPosition()
	c.turn = White
	c.selection = nil
	c.moveCount = 0
	c.animating = false
	c.render()
}

func (c *Controller) ownsPiece(sq Square) bool {
	piece := c.position.At(sq)
	return !piece.IsEmpty() && piece.Color == c.turn
}

func (c *Controller) selectSquare(sq Square) error {
	piece := c.position.At(sq)
	moves, err := ValidMoves(&c.position, sq, piece)
	if err != nil {
		return err
	}
	c.selection = &Selection{Square: sq, Piece: piece, Moves: moves}
	return nil
}

// commit applies the move synchronously. A captured piece is overwritten.
func (c *Controller) commit(from, to Square) {
	piece := c.position.At(from)
	c.position.Set(to, piece)
	c.position.Set(from, Piece{})
	c.turn = c.turn.Opponent()
	c.selection = nil
	c.moveCount++

	if c.animator != nil {
		c.animationID++
		c.animating = true
	}
	c.render()
	if c.animator != nil {
		c.animator.Animate(Animation{ID: c.animationID, Piece: piece, From: from, To: to})
	}
}

func (c *Controller) render() {
	if c.renderer != nil {
		c.renderer.Render(c.View())
	}
}
