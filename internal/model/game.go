package model

import (
	"errors"
	"sync"
	"time"

	"github.com/benbeisheim/hotseat-chess/internal/notation"
	"github.com/benbeisheim/hotseat-chess/internal/ws"
	"github.com/rs/zerolog"
)

var (
	ErrGameFull            = errors.New("game is full")
	ErrNotSeated           = errors.New("player is not seated in this game")
	ErrNotAuthorized       = errors.New("not authorized to join this game")
	ErrDuplicateConnection = errors.New("connection already exists")
	ErrNotYourTurn         = errors.New("not your turn")
)

const DefaultAnimationTimeout = 2 * time.Second

// Subscriber receives outbound messages. *websocket.Conn satisfies it.
type Subscriber interface {
	WriteJSON(v interface{}) error
}

// The connections for a specific game
type GameConnections struct {
	connections map[string]Subscriber // playerID -> connection
	mu          sync.Mutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Subscriber),
	}
}

// GameState is the rendered view as sent to clients.
type GameState struct {
	View
	FEN     string `json:"fen"`
	Players Seats  `json:"players"`
}

// Game is one hot-seat session: a controller plus the clients watching it.
// All controller access is serialized by mu.
type Game struct {
	ID          string
	mu          sync.Mutex
	controller  *Controller
	seats       Seats
	seatColors  bool
	connections *GameConnections

	animationTimeout time.Duration
	watchdog         *time.Timer

	outbox []ws.Message
	log    zerolog.Logger
}

type GameOption func(*Game)

func WithAnimationTimeout(d time.Duration) GameOption {
	return func(g *Game) { g.animationTimeout = d }
}

func WithLogger(log zerolog.Logger) GameOption {
	return func(g *Game) { g.log = log }
}

// WithSeatColors binds each seated player to their color. Without it any seated
// player may move either side, as on a single shared screen.
func WithSeatColors() GameOption {
	return func(g *Game) { g.seatColors = true }
}

// WithControllerOptions passes extra options (e.g. a custom start position) to the controller.
func WithControllerOptions(opts ...ControllerOption) GameOption {
	return func(g *Game) {
		p := presenter{g}
		g.controller = NewController(append([]ControllerOption{WithRenderer(p), WithAnimator(p)}, opts...)...)
	}
}

func NewGame(id string, opts ...GameOption) *Game {
	g := &Game{
		ID:               id,
		connections:      NewGameConnections(),
		animationTimeout: DefaultAnimationTimeout,
		log:              zerolog.Nop(),
	}
	p := presenter{g}
	g.controller = NewController(WithRenderer(p), WithAnimator(p))
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.With().Str("game", id).Logger()
	return g
}

// AddPlayer seats the player, white first. Rejoining returns the existing seat.
func (g *Game) AddPlayer(playerID string) (Color, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if playerID == "" {
		return "", ErrNotSeated
	}
	if g.seats.White.ID == playerID {
		return White, nil
	}
	if g.seats.Black.ID == playerID {
		return Black, nil
	}

	if g.seats.White.ID == "" {
		g.seats.White = ClientPlayer{ID: playerID, Color: White}
		g.log.Info().Str("player", playerID).Str("color", string(White)).Msg("player seated")
		return White, nil
	}
	if g.seats.Black.ID == "" {
		g.seats.Black = ClientPlayer{ID: playerID, Color: Black}
		g.log.Info().Str("player", playerID).Str("color", string(Black)).Msg("player seated")
		return Black, nil
	}
	return "", ErrGameFull
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.stateLocked(g.controller.View())
}

// CanSpectate reports whether a seat is still free for an unseated connection.
func (g *Game) CanSpectate() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return !g.seats.full()
}

// Activate forwards a square activation from a seated player to the controller.
func (g *Game) Activate(playerID string, sq Square) (Outcome, error) {
	g.mu.Lock()
	color, seated := g.seats.colorOf(playerID)
	if !seated {
		g.mu.Unlock()
		return Unchanged, ErrNotSeated
	}
	if g.seatColors && color != g.controller.Turn() {
		g.mu.Unlock()
		return Unchanged, ErrNotYourTurn
	}

	outcome, err := g.controller.Activate(sq)
	var event *zerolog.Event
	if err != nil {
		event = g.log.Warn().Err(err)
	} else {
		event = g.log.Debug()
	}
	event.Str("player", playerID).
		Str("square", notation.SquareName(sq.Row, sq.Col)).
		Str("outcome", outcome.String()).
		Msg("activation")

	g.flushAndUnlock()
	return outcome, err
}

// AnimationDone is the client's completion signal for animation id.
func (g *Game) AnimationDone(id uint64) bool {
	g.mu.Lock()
	done := g.finishAnimationLocked(id)
	g.flushAndUnlock()
	return done
}

// Reset starts the session over from the initial position.
func (g *Game) Reset(playerID string) error {
	g.mu.Lock()
	if !g.seats.has(playerID) {
		g.mu.Unlock()
		return ErrNotSeated
	}
	g.stopWatchdogLocked()
	g.controller.Reset()
	g.log.Info().Str("player", playerID).Msg("game reset")
	g.flushAndUnlock()
	return nil
}

// presenter turns controller callbacks into queued messages. Its methods
// run with g.mu held.
type presenter struct {
	g *Game
}

func (p presenter) Render(v View) {
	p.g.queueState(v)
}

func (p presenter) Animate(a Animation) {
	p.g.queueAnimation(a)
}

func (g *Game) queueState(v View) {
	msg, err := ws.NewMessage(ws.MessageTypeGameState, g.stateLocked(v))
	if err != nil {
		g.log.Error().Err(err).Msg("failed to marshal state")
		return
	}
	g.outbox = append(g.outbox, msg)
}

// queueAnimation sends the cosmetic animation request. The move is already
// committed; the watchdog lowers the gate if the client never answers.
func (g *Game) queueAnimation(a Animation) {
	msg, err := ws.NewMessage(ws.MessageTypeAnimate, a)
	if err != nil {
		g.log.Error().Err(err).Msg("failed to marshal animation")
	} else {
		g.outbox = append(g.outbox, msg)
	}
	g.log.Debug().
		Uint64("animation", a.ID).
		Str("piece", a.Piece.String()).
		Str("from", notation.SquareName(a.From.Row, a.From.Col)).
		Str("to", notation.SquareName(a.To.Row, a.To.Col)).
		Msg("move committed")

	g.stopWatchdogLocked()
	id := a.ID
	g.watchdog = time.AfterFunc(g.animationTimeout, func() {
		g.mu.Lock()
		if g.finishAnimationLocked(id) {
			g.log.Warn().Uint64("animation", id).Dur("timeout", g.animationTimeout).Msg("animation completion lost, gate released")
		}
		g.flushAndUnlock()
	})
}

func (g *Game) finishAnimationLocked(id uint64) bool {
	if !g.controller.FinishAnimation(id) {
		return false
	}
	g.stopWatchdogLocked()
	return true
}

func (g *Game) stopWatchdogLocked() {
	if g.watchdog != nil {
		g.watchdog.Stop()
		g.watchdog = nil
	}
}

func (g *Game) stateLocked(v View) GameState {
	fen, err := notation.Placement(v.Position.Rows())
	if err != nil {
		g.log.Error().Err(err).Msg("failed to build placement")
	}
	return GameState{View: v, FEN: fen, Players: g.seats}
}

func (g *Game) RegisterConnection(playerID string, conn Subscriber) error {
	g.mu.Lock()
	if !g.seats.has(playerID) && g.seats.full() {
		g.mu.Unlock()
		return ErrNotAuthorized
	}

	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		g.connections.mu.Unlock()
		g.mu.Unlock()
		return ErrDuplicateConnection
	}
	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()
	g.log.Info().Str("player", playerID).Msg("connection registered")

	// Send initial state to everyone, including the new connection.
	g.queueState(g.controller.View())
	g.flushAndUnlock()
	return nil
}

// UnregisterConnection removes conn if it is still the player's current connection.
func (g *Game) UnregisterConnection(playerID string, conn Subscriber) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if current, exists := g.connections.connections[playerID]; exists && current == conn {
		delete(g.connections.connections, playerID)
		g.log.Info().Str("player", playerID).Msg("connection unregistered")
	}
}

// flushAndUnlock sends the pending outbox and releases g.mu. The connection
// lock is taken before g.mu is released so broadcasts keep state order.
func (g *Game) flushAndUnlock() {
	msgs := g.outbox
	g.outbox = nil
	g.connections.mu.Lock()
	g.mu.Unlock()
	defer g.connections.mu.Unlock()

	for _, msg := range msgs {
		for playerID, conn := range g.connections.connections {
			if err := conn.WriteJSON(msg); err != nil {
				g.log.Warn().Err(err).Str("player", playerID).Msg("failed to send message, dropping connection")
				delete(g.connections.connections, playerID)
			}
		}
	}
}

// ConnectionCount is the number of attached clients.
func (g *Game) ConnectionCount() int {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()
	return len(g.connections.connections)
}
