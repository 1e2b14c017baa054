package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("18:05")
	require.NoError(t, err)
	assert.Equal(t, 18, tod.Hour)
	assert.Equal(t, 5, tod.Minute)
	assert.Equal(t, "18:05", tod.String())
}

func TestParseTimeOfDayRejectsBadInput(t *testing.T) {
	for _, raw := range []string{"", "25:00", "9:5:1", "18h30"} {
		_, err := ParseTimeOfDay(raw)
		assert.Error(t, err, raw)
	}
}

func TestTimeOfDayBefore(t *testing.T) {
	a := TimeOfDay{Hour: 9, Minute: 30}
	b := TimeOfDay{Hour: 9, Minute: 45}
	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.False(t, a.Before(a))
}
