package course

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDates(t *testing.T) {
	got, err := parseDates([]string{"2025-02-03", "2025-02-01", "2025-02-03"})
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day("2025-02-01"), day("2025-02-03")}, got)

	for _, bad := range []string{"", "2025-2-1", "2025-02-30", "02/01/2025"} {
		_, err := parseDates([]string{"2025-02-01", bad})
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}

func TestParsePlan_MergesRepeatedDates(t *testing.T) {
	got, err := parsePlan([]DayPlan{
		{Date: "2025-01-02", ContentIDs: []int64{1}},
		{Date: "2025-01-01", ContentIDs: []int64{2}},
		{Date: "2025-01-02", ContentIDs: []int64{3}},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, day("2025-01-02"), got[0].date)
	assert.Equal(t, []int64{1, 3}, got[0].contentIDs)
	assert.Equal(t, day("2025-01-01"), got[1].date)
	assert.Equal(t, []int64{1, 3, 2}, planContent(got))
}

func TestParsePlan_InvalidDate(t *testing.T) {
	_, err := parsePlan([]DayPlan{{Date: "2025-01-01"}, {Date: "tomorrow"}})
	assert.ErrorIs(t, err, ErrInvalidDate)
}
