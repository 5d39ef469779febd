package adapter

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpener_ConfiguredCommand(t *testing.T) {
	o := NewOpener("firefox", []string{"--new-tab"}, NullLogger())

	var gotName string
	var gotArgs []string
	o.start = func(name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	}

	require.NoError(t, o.Open("https://www.themoviedb.org/movie/603"))
	assert.Equal(t, "firefox", gotName)
	assert.Equal(t, []string{"--new-tab", "https://www.themoviedb.org/movie/603"}, gotArgs)

	// configured args are not mutated between calls
	require.NoError(t, o.Open("https://www.themoviedb.org/movie/604"))
	assert.Equal(t, []string{"--new-tab", "https://www.themoviedb.org/movie/604"}, gotArgs)
}

func TestOpener_SystemDefault(t *testing.T) {
	o := NewOpener("", nil, NullLogger())
	name, args := o.commandFor("https://example.com")

	switch runtime.GOOS {
	case "darwin":
		assert.Equal(t, "open", name)
	case "windows":
		assert.Equal(t, "cmd", name)
	default:
		assert.Equal(t, "xdg-open", name)
	}
	assert.Equal(t, "https://example.com", args[len(args)-1])
}

func TestOpener_Error(t *testing.T) {
	o := NewOpener("missing-browser", nil, NullLogger())
	o.start = func(string, ...string) error { return errors.New("not found") }

	err := o.Open("https://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open https://example.com")
}
