package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLaterOfEarlierOf(t *testing.T) {
	a := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	b := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)

	assert.Equal(t, b, laterOf(a, b))
	assert.Equal(t, b, laterOf(b, a))
	assert.Equal(t, a, earlierOf(a, b))
	assert.Equal(t, a, earlierOf(b, a))

	// Equal instants resolve to the same time either way.
	assert.Equal(t, a, laterOf(a, a))
	assert.Equal(t, a, earlierOf(a, a))
}
