package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvidersOrderedAndStable(t *testing.T) {
	first := Providers()
	require.NotEmpty(t, first)

	// Callers get copies; mutating one must not leak into the catalog.
	first[0] = "mutated"
	assert.NotEqual(t, first[0], Providers()[0])
}

func TestTimeSlots(t *testing.T) {
	slots := TimeSlots()

	assert.Equal(t, []string{"10:30AM", "11:00AM", "11:30AM", "12:00PM", "12:30PM"}, slots)
}

func TestValidProvider(t *testing.T) {
	for _, p := range Providers() {
		assert.True(t, ValidProvider(p))
	}
	assert.False(t, ValidProvider("Nobody"))
	assert.False(t, ValidProvider(""))
}

func TestValidTimeSlot(t *testing.T) {
	for _, s := range TimeSlots() {
		assert.True(t, ValidTimeSlot(s))
	}
	assert.False(t, ValidTimeSlot("10:30 AM")) // labels are exact
	assert.False(t, ValidTimeSlot("1:00PM"))
	assert.False(t, ValidTimeSlot(""))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, 2025, d.Year())
	assert.Equal(t, 6, int(d.Month()))
	assert.Equal(t, 1, d.Day())

	_, err = ParseDate("01-06-2025")
	assert.Error(t, err)

	_, err = ParseDate("2025-06-01T10:30:00Z")
	assert.Error(t, err)

	_, err = ParseDate("")
	assert.Error(t, err)
}
