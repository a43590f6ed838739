package game

import (
	"context"
	"encoding/json"

	"rrrgame/internal/httperr"
)

// VisibleGamestate is the 3x3 chunk neighbourhood merged into one read-only
// view: a 3*ChunkLength square terrain matrix and the union of all players
// in the 9 chunks. It is recomputed on every read and never stored.
type VisibleGamestate struct {
	Terrain [][]string           `json:"terrain"`
	Users   map[string]UserCoord `json:"users"`
}

// Gamestate returns the visible window around the chunk derived from the
// client-supplied coordinate. The coordinate only selects which chunk to
// read; the requesting user must actually be recorded in that chunk.
func (s *Service) Gamestate(ctx context.Context, username string, coord UserCoord, gameID string) (string, error) {
	visible, err := s.visibleGamestate(ctx, coord, username, gameID)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(visible)
	if err != nil {
		return "", httperr.Internal("Encoding gamestate failed")
	}
	return string(raw), nil
}

func (s *Service) visibleGamestate(ctx context.Context, coord UserCoord, username, gameID string) (VisibleGamestate, error) {
	centreCoord := CoordToChunk(coord, ChunkLength)
	centre, err := s.loadChunk(ctx, gameID, centreCoord)
	if err != nil {
		return VisibleGamestate{}, err
	}
	if _, ok := centre.Users[username]; !ok {
		return VisibleGamestate{}, httperr.Internal("Can't find user in the gamestate chunk")
	}

	chunks := map[ChunkCoord]Chunk{centreCoord: centre}
	for _, neighbour := range centre.Neighbours() {
		chunk, err := s.loadChunk(ctx, gameID, neighbour)
		if err != nil {
			return VisibleGamestate{}, err
		}
		chunks[neighbour] = chunk
	}

	return assembleWindow(centreCoord, chunks), nil
}

// assembleWindow concatenates the 3x3 neighbourhood in row-major chunk
// order: within each chunk-row the left, middle and right terrain rows are
// joined, and chunk-rows stack top to bottom. All 9 chunks must be present.
func assembleWindow(centre ChunkCoord, chunks map[ChunkCoord]Chunk) VisibleGamestate {
	users := make(map[string]UserCoord)
	for _, chunk := range chunks {
		for name, at := range chunk.Users {
			users[name] = at
		}
	}

	var terrain [][]string
	for dy := -1; dy <= 1; dy++ {
		left := chunks[ChunkCoord{X: centre.X - 1, Y: centre.Y + dy}].Terrain
		middle := chunks[ChunkCoord{X: centre.X, Y: centre.Y + dy}].Terrain
		right := chunks[ChunkCoord{X: centre.X + 1, Y: centre.Y + dy}].Terrain
		for i := range left {
			row := make([]string, 0, len(left[i])+len(middle[i])+len(right[i]))
			row = append(row, left[i]...)
			row = append(row, middle[i]...)
			row = append(row, right[i]...)
			terrain = append(terrain, row)
		}
	}

	return VisibleGamestate{Terrain: terrain, Users: users}
}
