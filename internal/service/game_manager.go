package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/benbeisheim/hotseat-chess/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

const matchmakingInterval = time.Second

type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan string
	animationTimeout time.Duration
	log              zerolog.Logger
	mu               sync.RWMutex
}

func NewGameManager(log zerolog.Logger, animationTimeout time.Duration) *GameManager {
	return &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan string),
		animationTimeout: animationTimeout,
		log:              log,
	}
}

// Run pairs queued players every tick until ctx is cancelled.
func (gm *GameManager) Run(ctx context.Context) {
	ticker := time.NewTicker(matchmakingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for gm.matchNextPair() {
			}
		}
	}
}

// matchNextPair seats the two longest-waiting players in a new game and
// notifies both. It reports whether a pair was matched.
func (gm *GameManager) matchNextPair() bool {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	first, second, ok := gm.queue.NextPair()
	if !ok {
		return false
	}

	gameID := uuid.New().String()
	game := gm.newGame(gameID, model.WithSeatColors())
	gm.games[gameID] = game

	for _, p := range []model.Player{first, second} {
		color, err := game.AddPlayer(p.ID)
		if err != nil {
			gm.log.Error().Err(err).Str("player", p.ID).Str("game", gameID).Msg("failed to seat matched player")
			continue
		}
		gm.notifyLocked(p.ID, model.MatchFoundEvent{GameID: gameID, Color: color})
	}
	gm.log.Info().Str("game", gameID).Str("white", first.ID).Str("black", second.ID).Msg("match found")
	return true
}

// notifyLocked delivers the event on the player's channel and closes it.
func (gm *GameManager) notifyLocked(playerID string, event model.MatchFoundEvent) {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		gm.log.Warn().Str("player", playerID).Msg("no matchmaking channel for matched player")
		return
	}
	delete(gm.matchingChannels, playerID)

	payload, err := json.Marshal(event)
	if err != nil {
		gm.log.Error().Err(err).Msg("failed to marshal match event")
		close(ch)
		return
	}
	select {
	case ch <- string(payload):
	default:
		gm.log.Warn().Str("player", playerID).Msg("matchmaking channel not ready, event dropped")
	}
	close(ch)
}

// RegisterMatchmakingChannel replaces, and closes, any previous channel for the player.
// ch should be buffered so delivery never blocks the matchmaker.
func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existing, ok := gm.matchingChannels[playerID]; ok {
		delete(gm.matchingChannels, playerID)
		close(existing)
	}
	gm.matchingChannels[playerID] = ch
}

// UnregisterMatchmakingChannel forgets the channel and takes the player out of the queue.
// The channel is not closed here; the matchmaker closes channels it delivered on.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if current, ok := gm.matchingChannels[playerID]; ok && current == ch {
		delete(gm.matchingChannels, playerID)
		gm.queue.Remove(playerID)
	}
}

func (gm *GameManager) newGame(gameID string, opts ...model.GameOption) *model.Game {
	return model.NewGame(gameID, append([]model.GameOption{
		model.WithLogger(gm.log),
		model.WithAnimationTimeout(gm.animationTimeout),
	}, opts...)...)
}

func (gm *GameManager) CreateGame(gameID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return ErrGameExists
	}

	gm.games[gameID] = gm.newGame(gameID)
	gm.log.Info().Str("game", gameID).Msg("game created")
	return nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}

	return game, nil
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	if err := gm.queue.AddPlayer(model.Player{ID: playerID}); err != nil {
		return err
	}
	gm.log.Info().Str("player", playerID).Int("queued", gm.queue.Size()).Msg("joined matchmaking")
	return nil
}

func (gm *GameManager) GameCount() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.games)
}
