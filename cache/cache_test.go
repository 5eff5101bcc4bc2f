package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCache_RequiresClient(t *testing.T) {
	c, err := NewCache(nil)
	assert.Nil(t, c)
	assert.ErrorIs(t, err, errNoClient)
}
