package liberr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByKind(t *testing.T) {
	err := NotFound("user %d not found", 7)

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, "user 7 not found", err.Error())
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("borrow: %w", New(KindItemNotAvailable, "item 3 is BORROWED"))

	assert.Equal(t, KindItemNotAvailable, KindOf(err))
	assert.True(t, errors.Is(err, ErrItemNotAvailable))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}
