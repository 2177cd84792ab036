package simplegallery_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tendant/simple-gallery/pkg/simplegallery"
)

func TestValidUsername(t *testing.T) {
	valid := []string{"ab", "alice", "UPPER", "user_1", "日本語ユーザー", "aaaaaaaaaaaaaaaaaaaa"}
	for _, name := range valid {
		assert.True(t, simplegallery.ValidUsername(name), "expected %q valid", name)
	}

	invalid := []string{"", "a", "user name", "tab\tname", "line\nname", "aaaaaaaaaaaaaaaaaaaaa"}
	for _, name := range invalid {
		assert.False(t, simplegallery.ValidUsername(name), "expected %q invalid", name)
	}
}

func TestValidHexColor(t *testing.T) {
	valid := []string{"6366f1", "FFFFFF", "000000", "AbCdEf"}
	for _, c := range valid {
		assert.True(t, simplegallery.ValidHexColor(c), "expected %q valid", c)
	}

	invalid := []string{"", "fff", "#6366f1", "6366f", "6366f12", "gggggg", "63 6f1"}
	for _, c := range invalid {
		assert.False(t, simplegallery.ValidHexColor(c), "expected %q invalid", c)
	}
}

func TestNormalizeColor(t *testing.T) {
	assert.Equal(t, "a1b2c3", simplegallery.NormalizeColor("#A1B2C3"))
	assert.Equal(t, "a1b2c3", simplegallery.NormalizeColor("a1b2c3"))
	assert.Equal(t, "ffffff", simplegallery.NormalizeColor("FFFFFF"))
}

func TestValidThemeAndViewMode(t *testing.T) {
	assert.True(t, simplegallery.ValidTheme("dark"))
	assert.True(t, simplegallery.ValidTheme("light"))
	assert.False(t, simplegallery.ValidTheme("solarized"))
	assert.False(t, simplegallery.ValidTheme(""))

	assert.True(t, simplegallery.ValidViewMode("grid"))
	assert.True(t, simplegallery.ValidViewMode("list"))
	assert.False(t, simplegallery.ValidViewMode("mosaic"))
	assert.False(t, simplegallery.ValidViewMode(""))
}

func TestTimestampOrdering(t *testing.T) {
	// The persisted layout is fixed width, so lexicographic order on the
	// rendered strings matches chronological order.
	clock := newTestClock()
	prev := simplegallery.FormatTime(clock.Now())
	for i := 0; i < 5; i++ {
		next := simplegallery.FormatTime(clock.Now())
		assert.Less(t, prev, next)
		prev = next
	}
}
