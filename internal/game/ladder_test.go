package game

import (
	"run_the_numbers/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLadderSelect(t *testing.T) {
	l, err := NewLadder(testPaytables, "paytable-1")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4, 15, 50}, l.Steps())

	changed, err := l.Select("paytable-1")
	require.NoError(t, err)
	assert.False(t, changed, "already active")

	changed, err = l.Select("paytable-3")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []int{1, 10, 40, 200}, l.Steps())

	_, err = l.Select("paytable-9")
	assert.ErrorIs(t, err, ErrUnknownPaytable)
	assert.Equal(t, "paytable-3", l.Active().ID)
}

func TestLadderStepsAreCopies(t *testing.T) {
	l, err := NewLadder(testPaytables, "")
	require.NoError(t, err)

	steps := l.Steps()
	steps[0] = 999
	assert.Equal(t, 3, l.Steps()[0])
}

func TestNewLadderValidation(t *testing.T) {
	_, err := NewLadder(nil, "")
	assert.Error(t, err)

	_, err = NewLadder(testPaytables, "missing")
	assert.ErrorIs(t, err, ErrUnknownPaytable)

	_, err = NewLadder([]model.Paytable{{ID: "x", Steps: []int{0}}}, "x")
	assert.Error(t, err)

	_, err = NewLadder([]model.Paytable{{ID: "x", Steps: []int{1}}, {ID: "x", Steps: []int{2}}}, "x")
	assert.Error(t, err)
}
