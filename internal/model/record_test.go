package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordStatusConsumesEntry(t *testing.T) {
	assert.True(t, StatusMatched.ConsumesEntry())
	assert.True(t, StatusDivergent.ConsumesEntry())
	assert.False(t, StatusUnresolved.ConsumesEntry())
	assert.False(t, StatusIgnored.ConsumesEntry())
}

func TestRecordStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to RecordStatus
		want     bool
	}{
		{StatusUnresolved, StatusMatched, true},
		{StatusUnresolved, StatusIgnored, true},
		{StatusUnresolved, StatusDivergent, false},
		{StatusMatched, StatusUnresolved, true},
		{StatusMatched, StatusDivergent, true},
		{StatusMatched, StatusIgnored, false},
		{StatusIgnored, StatusUnresolved, true},
		{StatusIgnored, StatusMatched, false},
		{StatusDivergent, StatusUnresolved, true},
		{StatusDivergent, StatusMatched, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}
