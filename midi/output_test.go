package midi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestOutputOpensOnce(t *testing.T) {
	var opened int
	var sent []gomidi.Message
	out := NewOutputWith("Synth", func(name string) (Sender, error) {
		opened++
		assert.Equal(t, "Synth", name)
		return func(msg gomidi.Message) error {
			sent = append(sent, msg)
			return nil
		}, nil
	})

	require.True(t, out.Enabled())
	require.NoError(t, out.Send(gomidi.NoteOn(0, 60, 100)))
	require.NoError(t, out.Send(gomidi.NoteOff(0, 60)))

	assert.Equal(t, 1, opened)
	assert.Len(t, sent, 2)
}

func TestOutputDisabled(t *testing.T) {
	out := NewOutputWith("", func(string) (Sender, error) {
		t.Fatal("disabled output must not open a port")
		return nil, nil
	})
	assert.False(t, out.Enabled())
	assert.NoError(t, out.Send(gomidi.NoteOn(0, 60, 100)))
}

func TestOutputOpenFailureRemembered(t *testing.T) {
	var opened int
	out := NewOutputWith("Missing", func(name string) (Sender, error) {
		opened++
		return nil, ErrPortNotFound
	})

	err := out.Send(gomidi.NoteOn(0, 60, 100))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPortNotFound))

	assert.NoError(t, out.Send(gomidi.NoteOn(0, 60, 100)))
	assert.Equal(t, 1, opened)

	out.Reset()
	assert.Error(t, out.Send(gomidi.NoteOn(0, 60, 100)))
	assert.Equal(t, 2, opened)
}

func TestOutputSendError(t *testing.T) {
	boom := errors.New("boom")
	out := NewOutputWith("Synth", func(string) (Sender, error) {
		return func(gomidi.Message) error { return boom }, nil
	})
	err := out.Send(gomidi.NoteOn(0, 60, 100))
	assert.ErrorIs(t, err, boom)
}

func TestMatchesFilter(t *testing.T) {
	assert.True(t, MatchesFilter("Any Port", nil))
	assert.True(t, MatchesFilter("Arturia KeyStep 37", []string{"keystep"}))
	assert.True(t, MatchesFilter("Arturia KeyStep 37", []string{"nope", "ARTURIA"}))
	assert.False(t, MatchesFilter("Midi Through Port-0", []string{"keystep"}))
	assert.False(t, MatchesFilter("Midi Through Port-0", []string{""}))
}

func TestIsNoise(t *testing.T) {
	assert.True(t, isNoise(gomidi.Message{0xF8}))
	assert.True(t, isNoise(gomidi.Message{0xFE}))
	assert.False(t, isNoise(gomidi.NoteOn(0, 60, 100)))
}
