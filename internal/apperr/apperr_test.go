package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("user not found")))
	assert.Equal(t, KindConflict, KindOf(Conflict("username already taken")))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("no rows")
	err := Wrap(KindNotFound, "message not found", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "message not found: no rows", err.Error())
}

func TestKindOf_SurvivesFurtherWrapping(t *testing.T) {
	err := fmt.Errorf("handling request: %w", InvalidInput("body is required"))
	assert.Equal(t, KindInvalidInput, KindOf(err))
	assert.True(t, IsKind(err, KindInvalidInput))
}
