package game

import (
	"context"
	"encoding/json"

	"rrrgame/internal/httperr"
	"rrrgame/internal/storage"
	"rrrgame/internal/users"
)

// Service is the chunk spatial engine: it owns the rrr-game keyspace in the
// store and every read or write of chunk state goes through it.
type Service struct {
	store storage.Store
	users *users.Service
}

// NewService wires the engine to the store and the user service.
func NewService(store storage.Store, users *users.Service) *Service {
	return &Service{store: store, users: users}
}

// loadChunk fetches and decodes one chunk. The engine only ever asks for
// chunks that must exist, so absence means the keyspace is corrupt and the
// request fails as internal.
func (s *Service) loadChunk(ctx context.Context, gameID string, coord ChunkCoord) (Chunk, error) {
	raw, ok, err := s.store.Get(ctx, chunkKey(gameID, coord))
	if err != nil {
		return Chunk{}, httperr.Internal("Chunk lookup failed")
	}
	if !ok {
		return Chunk{}, httperr.Internal("Gamestate chunk missing from store")
	}
	var chunk Chunk
	if err := json.Unmarshal([]byte(raw), &chunk); err != nil {
		return Chunk{}, httperr.Internal("Gamestate chunk is corrupt")
	}
	return chunk, nil
}

func (s *Service) saveChunk(ctx context.Context, gameID string, chunk Chunk) error {
	raw, err := json.Marshal(chunk)
	if err != nil {
		return httperr.Internal("Encoding chunk failed")
	}
	if err := s.store.Set(ctx, chunkKey(gameID, chunk.Coord), string(raw)); err != nil {
		return httperr.Internal("Writing chunk failed")
	}
	return nil
}
