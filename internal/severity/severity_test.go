package severity

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverity_Ordering(t *testing.T) {
	order := []Severity{Unavailable, Healthy, Donor, Replicating, DegradedMinor, DegradedMajor, Critical}
	for i := 1; i < len(order); i++ {
		assert.Equal(t, -1, Compare(order[i-1], order[i]), "%s should sort below %s", order[i-1], order[i])
		assert.Equal(t, 1, Compare(order[i], order[i-1]))
	}
	assert.Equal(t, 0, Compare(Critical, Critical))
}

func TestMax(t *testing.T) {
	tests := []struct {
		name     string
		values   []Severity
		expected Severity
	}{
		{name: "empty", values: nil, expected: Unavailable},
		{name: "single", values: []Severity{DegradedMinor}, expected: DegradedMinor},
		{name: "critical wins", values: []Severity{Healthy, Critical, DegradedMajor}, expected: Critical},
		{name: "donor below replicating", values: []Severity{Donor, Replicating}, expected: Replicating},
		{name: "donor above healthy", values: []Severity{Healthy, Donor}, expected: Donor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Max(tt.values...))
		})
	}
}

func TestCap(t *testing.T) {
	assert.Equal(t, DegradedMajor, Cap(Critical, DegradedMajor))
	assert.Equal(t, DegradedMinor, Cap(DegradedMinor, DegradedMajor))
	assert.Equal(t, Unavailable, Cap(Unavailable, DegradedMajor))
}

func TestFromFlag(t *testing.T) {
	tests := map[Flag]Severity{
		FlagGrey:     Unavailable,
		FlagGreen:    Healthy,
		FlagBlue:     Replicating,
		FlagYellow:   DegradedMinor,
		FlagOrange:   DegradedMajor,
		FlagRed:      Critical,
		FlagDarkGrey: Donor,
		"":           Unavailable,
		"Purple":     Unavailable,
	}

	for flag, expected := range tests {
		assert.Equal(t, expected, FromFlag(flag), "flag %q", flag)
	}
}

func TestColorRoundTrip(t *testing.T) {
	for _, info := range Scale() {
		assert.Equal(t, info.Level, FromFlag(info.Color), "level %s", info.Label)
	}
}

func TestFromLevel(t *testing.T) {
	s, ok := FromLevel(4)
	assert.True(t, ok)
	assert.Equal(t, DegradedMajor, s)

	_, ok = FromLevel(7)
	assert.False(t, ok)

	_, ok = FromLevel(-1)
	assert.False(t, ok)
}

func TestForSpaceUsage(t *testing.T) {
	tests := []struct {
		percent  float64
		expected Severity
	}{
		{percent: 0, expected: Healthy},
		{percent: 84, expected: Healthy},
		{percent: 84.99, expected: Healthy},
		{percent: 85, expected: DegradedMinor},
		{percent: 94, expected: DegradedMinor},
		{percent: 95, expected: Critical},
		{percent: 160, expected: Critical},
		{percent: math.NaN(), expected: Healthy},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ForSpaceUsage(tt.percent), "percent %v", tt.percent)
	}
}

func TestScale(t *testing.T) {
	scale := Scale()
	require.Len(t, scale, 7)

	assert.Equal(t, "unavailable", scale[0].Label)
	assert.Equal(t, "critical", scale[len(scale)-1].Label)

	data, err := json.Marshal(scale[2])
	require.NoError(t, err)
	assert.JSONEq(t, `{"label":"donor","level":6,"rank":2,"color":"DarkGrey"}`, string(data))
}

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "degraded-minor", DegradedMinor.String())
	assert.Equal(t, "severity(9)", Severity(9).String())
	assert.Equal(t, 0, Severity(9).Rank())
}
