package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"$1,200", 1200},
		{"TBD", 0},
		{"", 0},
		{"$1,200.50", 120050},
		{"00,00", 0},
		{"500 USD", 500},
		{"₹ 2 500", 2500},
		{"99999999999999999999999", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAmount(tt.in))
		})
	}
}

func TestComputeStats(t *testing.T) {
	apps := []*Application{
		{Status: StatusNotStarted, Amount: strPtr("$500")},
		{Status: StatusInProgress, Amount: strPtr("")},
		{Status: StatusAwaiting, Amount: strPtr("$1,000")},
		{Status: StatusAwaiting, Amount: strPtr("$250")},
	}

	stats := ComputeStats(apps)
	assert.Equal(t, &Stats{Total: 4, InProgress: 1, Awaiting: 2, PotentialAwards: 1750}, stats)
}

func TestComputeStatsEmptyAndMissingAmount(t *testing.T) {
	assert.Equal(t, &Stats{}, ComputeStats(nil))

	stats := ComputeStats([]*Application{{Status: "archived"}})
	assert.Equal(t, 1, stats.Total)
	assert.Zero(t, stats.InProgress)
	assert.Zero(t, stats.Awaiting)
	assert.Zero(t, stats.PotentialAwards)
}

func TestApplicationPatchEmpty(t *testing.T) {
	assert.True(t, ApplicationPatch{}.Empty())
	assert.False(t, ApplicationPatch{ClearReminder: true}.Empty())
	assert.False(t, ApplicationPatch{Name: strPtr("x")}.Empty())
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusAwaiting.Valid())
	assert.False(t, ApplicationStatus("submitted").Valid())
}
