package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoordToChunk(t *testing.T) {
	cases := []struct {
		user  UserCoord
		chunk ChunkCoord
	}{
		{UserCoord{0, 0}, ChunkCoord{0, 0}},
		{UserCoord{-7, -8}, ChunkCoord{-1, -1}},
		{UserCoord{0, -5}, ChunkCoord{0, -1}},
		{UserCoord{5, -13}, ChunkCoord{1, -1}},
		{UserCoord{-5, 0}, ChunkCoord{-1, 0}},
		{UserCoord{4, -4}, ChunkCoord{0, 0}},
		{UserCoord{13, -3}, ChunkCoord{1, 0}},
		{UserCoord{-13, 6}, ChunkCoord{-1, 1}},
		{UserCoord{1, 10}, ChunkCoord{0, 1}},
		{UserCoord{5, 9}, ChunkCoord{1, 1}},
		{UserCoord{-14, -14}, ChunkCoord{-2, -2}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.chunk, CoordToChunk(tc.user, 9), "user coord %+v", tc.user)
	}
}

func TestCoordToChunkOriginForAnyOddLength(t *testing.T) {
	for _, length := range []int{1, 3, 5, 7, 9, 11, 101} {
		assert.Equal(t, ChunkCoord{0, 0}, CoordToChunk(UserCoord{0, 0}, length), "chunk length %d", length)
	}
}

func TestTopLeftVisibleCoord(t *testing.T) {
	cases := []struct {
		chunk   ChunkCoord
		topLeft UserCoord
	}{
		{ChunkCoord{0, 0}, UserCoord{-13, -13}},
		{ChunkCoord{1, 1}, UserCoord{-4, -4}},
		{ChunkCoord{1, 0}, UserCoord{-4, -13}},
		{ChunkCoord{-1, -1}, UserCoord{-22, -22}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.topLeft, TopLeftVisibleCoord(tc.chunk, 9), "chunk %+v", tc.chunk)
	}
}

func TestChunkCoordID(t *testing.T) {
	assert.Equal(t, "0-0", ChunkCoord{0, 0}.ID())
	assert.Equal(t, "-1-2", ChunkCoord{-1, 2}.ID())
	assert.Equal(t, "3--4", ChunkCoord{3, -4}.ID())
}
