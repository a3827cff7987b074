package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffIDs(t *testing.T) {
	added, removed := diffIDs([]uint{1, 2, 3}, []uint{3, 4, 4, 2})
	assert.Equal(t, []uint{4}, added)
	assert.Equal(t, []uint{1}, removed)

	added, removed = diffIDs(nil, []uint{2, 1})
	assert.Equal(t, []uint{1, 2}, added)
	assert.Empty(t, removed)

	added, removed = diffIDs([]uint{5}, []uint{5})
	assert.Empty(t, added)
	assert.Empty(t, removed)
}
