package game

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/errgroup"

	"rrrgame/internal/httperr"
	"rrrgame/internal/users"
)

type createResponse struct {
	GameID              string           `json:"game_id"`
	UserCoord           UserCoord        `json:"user_coord"`
	TopLeftVisibleCoord UserCoord        `json:"top_left_visible_coord"`
	VisibleGamestate    VisibleGamestate `json:"visible_gamestate"`
}

// CreateGame spawns a fresh game: the player at the centre of chunk (0,0)
// plus the 8 neighbour chunks, so the first visible window is complete
// without on-demand generation. The game is recorded on the user entry,
// which is what makes a second create conflict.
func (s *Service) CreateGame(ctx context.Context, username string) (string, error) {
	info, err := s.users.CurrentGameInfo(ctx, username, GameName)
	if err != nil {
		return "", err
	}
	if info != nil {
		return "", httperr.Conflict("User is already in a game")
	}

	gameID := newGameID()
	centreCoord := ChunkCoord{X: 0, Y: 0}

	// One collision check, no retry loop. A clash on a fresh 7-character id
	// is rare enough that surfacing it beats looping on a broken generator.
	if _, ok, err := s.store.Get(ctx, chunkKey(gameID, centreCoord)); err != nil {
		return "", httperr.Internal("Chunk lookup failed")
	} else if ok {
		return "", httperr.Unavailable("Clash when creating new game ID")
	}

	userCoord := UserCoord{X: 0, Y: 0}
	centre := NewChunk(centreCoord, username, &userCoord)
	chunks := []Chunk{centre}
	for _, neighbour := range centre.Neighbours() {
		chunks = append(chunks, NewChunk(neighbour, username, nil))
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, chunk := range chunks {
		chunk := chunk
		g.Go(func() error { return s.saveChunk(gctx, gameID, chunk) })
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	err = s.users.SetCurrentGame(ctx, username, GameName, users.GameInfo{
		GameID:  gameID,
		ChunkID: centreCoord.ID(),
	})
	if err != nil {
		return "", err
	}

	// Read the window back through the normal path so the response is
	// exactly what a follow-up get would return.
	visible, err := s.visibleGamestate(ctx, userCoord, username, gameID)
	if err != nil {
		return "", err
	}

	raw, err := json.Marshal(createResponse{
		GameID:              gameID,
		UserCoord:           userCoord,
		TopLeftVisibleCoord: TopLeftVisibleCoord(centreCoord, ChunkLength),
		VisibleGamestate:    visible,
	})
	if err != nil {
		return "", httperr.Internal("Encoding create response failed")
	}
	return string(raw), nil
}
