package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlotTime(t *testing.T) {
	parsed, err := ParseSlotTime("08:00")
	require.NoError(t, err)
	assert.Equal(t, 8, parsed.Hour())
	assert.Equal(t, 0, parsed.Minute())

	_, err = ParseSlotTime("8am")
	assert.Error(t, err)

	_, err = ParseSlotTime("25:00")
	assert.Error(t, err)
}

func TestNormalizeSlotTime(t *testing.T) {
	// time.Parse accepts unpadded hours, so normalization must collapse
	// "8:00" and "08:00" to one canonical form.
	canon, err := NormalizeSlotTime("8:00")
	require.NoError(t, err)
	assert.Equal(t, "08:00", canon)

	canon, err = NormalizeSlotTime("08:00")
	require.NoError(t, err)
	assert.Equal(t, "08:00", canon)

	canon, err = NormalizeSlotTime("13:30")
	require.NoError(t, err)
	assert.Equal(t, "13:30", canon)

	_, err = NormalizeSlotTime("8am")
	assert.Error(t, err)
}

func TestDedupeNormalizedStartTimes(t *testing.T) {
	times := []string{"08:00", "8:00", "9:00"}
	normalized := make([]string, len(times))
	for i, raw := range times {
		canon, err := NormalizeSlotTime(raw)
		require.NoError(t, err)
		normalized[i] = canon
	}

	unique, skipped := DedupeStartTimes(normalized)
	assert.Equal(t, []string{"08:00", "09:00"}, unique)
	assert.Equal(t, 1, skipped)
}

func TestSlotEnd(t *testing.T) {
	end, err := SlotEnd("08:00")
	require.NoError(t, err)
	assert.Equal(t, "09:00", end)

	end, err = SlotEnd("13:30")
	require.NoError(t, err)
	assert.Equal(t, "14:30", end)

	// The last hour of the day wraps.
	end, err = SlotEnd("23:00")
	require.NoError(t, err)
	assert.Equal(t, "00:00", end)

	_, err = SlotEnd("not-a-time")
	assert.Error(t, err)
}

func TestDedupeStartTimes(t *testing.T) {
	unique, skipped := DedupeStartTimes([]string{"08:00", "08:00", "09:00"})
	assert.Equal(t, []string{"08:00", "09:00"}, unique)
	assert.Equal(t, 1, skipped)

	unique, skipped = DedupeStartTimes([]string{"10:00", "11:00"})
	assert.Equal(t, []string{"10:00", "11:00"}, unique)
	assert.Equal(t, 0, skipped)

	unique, skipped = DedupeStartTimes([]string{"08:00", "09:00", "08:00", "09:00", "08:00"})
	assert.Equal(t, []string{"08:00", "09:00"}, unique)
	assert.Equal(t, 3, skipped)

	unique, skipped = DedupeStartTimes(nil)
	assert.Empty(t, unique)
	assert.Equal(t, 0, skipped)
}
