package game

import "math/rand"

// GameName scopes every store key owned by the engine.
const GameName = "rrr-game"

// ChunkLength is the side length of a chunk. Must stay odd; see UserCoord.
const ChunkLength = 9

// Tile symbols making up chunk terrain. Only grass is passable.
const (
	TileGrass = "G"
	TileRock  = "R"
	TileWater = "W"
)

// Chunk is the atomic unit of world storage: a square terrain grid plus the
// players currently inside it. A chunk's user map is the sole source of
// truth for which players it holds and where they stand.
type Chunk struct {
	Coord   ChunkCoord           `json:"coord"`
	Terrain [][]string           `json:"terrain"`
	Users   map[string]UserCoord `json:"users"`
}

// NewChunk generates terrain with an independent draw per tile: roughly 10%
// water, 10% rock, the rest grass. userCoord may be nil for an empty chunk.
func NewChunk(coord ChunkCoord, username string, userCoord *UserCoord) Chunk {
	terrain := make([][]string, ChunkLength)
	for y := range terrain {
		row := make([]string, ChunkLength)
		for x := range row {
			switch v := rand.Float64(); {
			case v < 0.1:
				row[x] = TileWater
			case v > 0.9:
				row[x] = TileRock
			default:
				row[x] = TileGrass
			}
		}
		terrain[y] = row
	}

	users := make(map[string]UserCoord)
	if userCoord != nil {
		users[username] = *userCoord
	}
	return Chunk{Coord: coord, Terrain: terrain, Users: users}
}

// ID returns the chunk's identity within its game.
func (c Chunk) ID() string { return c.Coord.ID() }

// Neighbours enumerates the 8 chunks surrounding this one.
func (c Chunk) Neighbours() []ChunkCoord {
	neighbours := make([]ChunkCoord, 0, 8)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			neighbours = append(neighbours, ChunkCoord{X: c.Coord.X + dx, Y: c.Coord.Y + dy})
		}
	}
	return neighbours
}

func chunkKey(gameID string, coord ChunkCoord) string {
	return GameName + ":" + gameID + ":" + coord.ID()
}
