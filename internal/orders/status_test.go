package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusCreated, StatusConfirmed, true},
		{StatusCreated, StatusCanceled, true},
		{StatusConfirmed, StatusCanceled, true},
		{StatusConfirmed, StatusCreated, false},
		{StatusCanceled, StatusCreated, false},
		{StatusCanceled, StatusConfirmed, false},
		{StatusCreated, StatusCreated, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusCreated.Valid())
	assert.True(t, StatusConfirmed.Valid())
	assert.True(t, StatusCanceled.Valid())
	assert.False(t, Status("SHIPPED").Valid())
	assert.False(t, Status("").Valid())
}
