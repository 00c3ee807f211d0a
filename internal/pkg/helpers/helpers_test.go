package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateTime(t *testing.T) {
	want := time.Date(2030, 3, 4, 10, 30, 0, 0, time.UTC)

	for _, in := range []string{
		"2030-03-04T10:30:00Z",
		"2030-03-04T13:30:00+03:00",
		"2030-03-04T10:30:00",
		"2030-03-04T10:30",
		"2030-03-04 10:30",
		" 2030-03-04 10:30:00 ",
	} {
		t.Run(in, func(t *testing.T) {
			got, err := ParseDateTime(in)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %s", got)
		})
	}

	for _, in := range []string{"", "tomorrow", "2030-13-01T10:00"} {
		_, err := ParseDateTime(in)
		assert.Error(t, err, in)
	}
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 90*time.Second, ParseDuration("90s", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("soon", time.Minute))
}

func TestNilIfBlank(t *testing.T) {
	assert.Nil(t, NilIfBlank(""))
	assert.Nil(t, NilIfBlank("   "))
	require.NotNil(t, NilIfBlank(" F001 "))
	assert.Equal(t, "F001", *NilIfBlank(" F001 "))
	assert.Equal(t, "", Deref(nil))
	assert.Equal(t, "x", Deref(NilIfBlank("x")))
}
