package game

import "strconv"

// UserCoord is a player's fine-grained position in the world. Position (0,0)
// is the exact centre of chunk (0,0), which is why the chunk side length
// must be odd.
type UserCoord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ChunkCoord identifies a chunk.
type ChunkCoord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ID serialises the coordinate for use in store keys, e.g. "-1-2" for
// chunk (-1, 2).
func (c ChunkCoord) ID() string {
	return strconv.Itoa(c.X) + "-" + strconv.Itoa(c.Y)
}

// CoordToChunk maps a position onto the chunk containing it. The half-chunk
// offset shifts the truncating division so chunk boundaries fall symmetric
// about the origin for negative and positive positions alike.
func CoordToChunk(c UserCoord, chunkLength int) ChunkCoord {
	offset := (chunkLength - 1) / 2

	var x, y int
	if c.X > 0 {
		x = (c.X + offset) / chunkLength
	} else {
		x = (c.X - offset) / chunkLength
	}
	if c.Y > 0 {
		y = (c.Y + offset) / chunkLength
	} else {
		y = (c.Y - offset) / chunkLength
	}
	return ChunkCoord{X: x, Y: y}
}

// TopLeftVisibleCoord returns the world position of the top-left cell of the
// 3x3 chunk window centred on chunk. Clients use it as the rendering offset
// for the visible window.
func TopLeftVisibleCoord(chunk ChunkCoord, chunkLength int) UserCoord {
	edge := chunkLength / 2
	return UserCoord{
		X: (chunk.X-1)*chunkLength - edge,
		Y: (chunk.Y-1)*chunkLength - edge,
	}
}
