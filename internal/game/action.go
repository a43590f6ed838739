package game

import (
	"context"
	"encoding/json"

	"rrrgame/internal/httperr"
)

// Direction of a single movement step.
type Direction string

const (
	North Direction = "North"
	East  Direction = "East"
	South Direction = "South"
	West  Direction = "West"
)

type actionRequest struct {
	Move Direction `json:"move"`
}

type actionResponse struct {
	UserCoord           UserCoord `json:"user_coord"`
	TopLeftVisibleCoord UserCoord `json:"top_left_visible_coord"`
}

// DoAction applies one movement step. The client coordinate only selects
// which chunk to load; the authoritative position is whatever that chunk has
// on file for the user. A blocked step (rock, water, or leaving the loaded
// chunk) is a silent no-op: the response is still a success carrying the
// unchanged coordinate.
func (s *Service) DoAction(ctx context.Context, username, body string, coord UserCoord, gameID string) (string, error) {
	var req actionRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return "", httperr.BadRequest("Request body has invalid format.")
	}

	var step UserCoord
	switch req.Move {
	case North:
		step = UserCoord{X: 0, Y: -1}
	case East:
		step = UserCoord{X: 1, Y: 0}
	case South:
		step = UserCoord{X: 0, Y: 1}
	case West:
		step = UserCoord{X: -1, Y: 0}
	default:
		return "", httperr.BadRequest("Request body has invalid format.")
	}

	chunkCoord := CoordToChunk(coord, ChunkLength)
	topLeft := TopLeftVisibleCoord(chunkCoord, ChunkLength)

	chunk, err := s.loadChunk(ctx, gameID, chunkCoord)
	if err != nil {
		return "", err
	}

	// Trust the store over the client-supplied coordinate.
	current, ok := chunk.Users[username]
	if !ok {
		return "", httperr.Internal("Can't find user in the gamestate chunk")
	}

	next := UserCoord{X: current.X + step.X, Y: current.Y + step.Y}

	// Target cell's index within the loaded chunk: the window's top-left
	// plus one chunk length is the chunk's own top-left cell.
	relX := next.X - (topLeft.X + ChunkLength)
	relY := next.Y - (topLeft.Y + ChunkLength)

	// A step off the edge of the loaded chunk counts as blocked; chunk
	// membership never migrates between keys.
	inChunk := relX >= 0 && relX < ChunkLength && relY >= 0 && relY < ChunkLength

	result := current
	if inChunk && chunk.Terrain[relY][relX] == TileGrass {
		chunk.Users[username] = next
		if err := s.saveChunk(ctx, gameID, chunk); err != nil {
			return "", err
		}
		result = next
	}

	raw, err := json.Marshal(actionResponse{UserCoord: result, TopLeftVisibleCoord: topLeft})
	if err != nil {
		return "", httperr.Internal("Encoding action response failed")
	}
	return string(raw), nil
}
