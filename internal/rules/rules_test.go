package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	r := Default()
	require.NoError(t, r.Validate())
	assert.Equal(t, 312, r.ShoeSize())
	assert.Equal(t, 78, r.ReshuffleAt())
	assert.Equal(t, "6D S17 DAS LS 3:2", r.String())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Rules)
	}{
		{"no decks", func(r *Rules) { r.Decks = 0 }},
		{"too many decks", func(r *Rules) { r.Decks = 9 }},
		{"zero payout", func(r *Rules) { r.BlackjackPayout = 0 }},
		{"full penetration", func(r *Rules) { r.Penetration = 1 }},
		{"reserve too small", func(r *Rules) {
			r.Decks = 1
			r.Penetration = 0.9
		}},
		{"no hands", func(r *Rules) { r.MaxHands = 0 }},
		{"zero tolerance", func(r *Rules) { r.Tolerance = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Default()
			tt.mutate(&r)
			assert.Error(t, r.Validate())
		})
	}
}

func TestStringVariants(t *testing.T) {
	r := Default()
	r.Decks = 2
	r.HitSoft17 = true
	r.Surrender = false
	r.BlackjackPayout = 1.2
	assert.Equal(t, "2D H17 DAS 6:5", r.String())
}

func TestReserve(t *testing.T) {
	tests := []struct {
		decks       int
		penetration float64
		reserve     int
		valid       bool
	}{
		{decks: 1, penetration: 0.75, reserve: 13, valid: true},
		{decks: 1, penetration: 0.8, reserve: 10, valid: true},
		{decks: 1, penetration: 0.85, reserve: 7},
		{decks: 2, penetration: 0.9, reserve: 10, valid: true},
		{decks: 2, penetration: 0.95, reserve: 5},
		{decks: 6, penetration: 0.9, reserve: 31, valid: true},
	}

	for _, tt := range tests {
		r := Default()
		r.Decks = tt.decks
		r.Penetration = tt.penetration
		assert.Equal(t, tt.reserve, r.ReshuffleAt(), "%d decks at %v", tt.decks, tt.penetration)
		if tt.valid {
			assert.NoError(t, r.Validate())
		} else {
			assert.Error(t, r.Validate())
		}
	}
}
