package syncservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDMapFirstWriteWins(t *testing.T) {
	m := NewIDMap()
	m.Put("Page", 3)
	m.Put("Page", 7)
	m.Put("Other", 3)

	id, ok := m.ID("Page")
	assert.True(t, ok)
	assert.Equal(t, 3, id, "同名映射应保留首次写入的 id")

	id, ok = m.ID("Other")
	assert.True(t, ok)
	assert.Equal(t, 3, id)
	assert.Equal(t, 2, m.Len())

	_, ok = m.ID("Missing")
	assert.False(t, ok)
}
