package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession() (*session, *[]string) {
	var sent []string
	s := newSession("me", "meuser", "Real Name", "#room", func(line string) error {
		sent = append(sent, line)
		return nil
	})
	return s, &sent
}

func mustParse(t *testing.T, frame string) *Line {
	t.Helper()
	l, err := parseLine(frame)
	require.NoError(t, err)
	return l
}

func TestSession_RegistrationFlow(t *testing.T) {
	s, sent := newTestSession()
	assert.Equal(t, stateDisconnected, s.state)

	s.noteConnecting()
	assert.Equal(t, stateConnecting, s.state)
	assert.Empty(t, *sent)

	require.NoError(t, s.noteConnected())
	assert.Equal(t, stateRegistering, s.state)
	require.Equal(t, []string{"NICK me", "USER meuser 0 * :Real Name"}, *sent)

	s.observe(mustParse(t, ":irc.example.org 001 me :Welcome"))
	assert.Equal(t, stateRegistered, s.state)
	require.Equal(t, 3, len(*sent))
	assert.Equal(t, "JOIN #room", (*sent)[2])
}

func TestSession_EndOfMOTDAlsoCompletesRegistration(t *testing.T) {
	s, sent := newTestSession()
	require.NoError(t, s.noteConnected())

	s.observe(mustParse(t, ":irc.example.org 376 me :End of /MOTD command."))

	assert.Equal(t, stateRegistered, s.state)
	assert.Equal(t, "JOIN #room", (*sent)[len(*sent)-1])
}

func TestSession_SecondWelcomeIsNoOp(t *testing.T) {
	s, sent := newTestSession()
	require.NoError(t, s.noteConnected())

	s.observe(mustParse(t, ":srv 001 me :Welcome"))
	joins := len(*sent)

	s.observe(mustParse(t, ":srv 376 me :End of MOTD"))
	s.observe(mustParse(t, ":srv 001 me :Welcome again"))

	assert.Equal(t, joins, len(*sent), "initial join fires exactly once")
	assert.Equal(t, stateRegistered, s.state)
}

func TestSession_IdentityAnnouncedExactlyOnce(t *testing.T) {
	s, sent := newTestSession()
	require.NoError(t, s.noteConnected())
	require.NoError(t, s.noteConnected())

	var nicks int
	for _, line := range *sent {
		if line == "NICK me" {
			nicks++
		}
	}
	assert.Equal(t, 1, nicks)
}

func TestSession_ObserveIgnoredOutsideRegistering(t *testing.T) {
	s, sent := newTestSession()

	s.observe(mustParse(t, ":srv 001 me :Welcome"))

	assert.Empty(t, *sent)
	assert.Equal(t, stateDisconnected, s.state)
}

func TestSession_UnrelatedNumericsIgnored(t *testing.T) {
	s, sent := newTestSession()
	require.NoError(t, s.noteConnected())
	before := len(*sent)

	s.observe(mustParse(t, ":srv 372 me :- motd line"))
	s.observe(mustParse(t, ":n!u@h PRIVMSG #room :hi"))

	assert.Equal(t, stateRegistering, s.state)
	assert.Equal(t, before, len(*sent))
}

func TestSession_NoInitialChannelConfigured(t *testing.T) {
	var sent []string
	s := newSession("me", "me", "me", "", func(line string) error {
		sent = append(sent, line)
		return nil
	})
	require.NoError(t, s.noteConnected())
	before := len(sent)

	s.observe(mustParse(t, ":srv 001 me :Welcome"))

	assert.Equal(t, stateRegistered, s.state)
	assert.Equal(t, before, len(sent), "nothing to join")
}

func TestSession_DisconnectIsTerminal(t *testing.T) {
	s, _ := newTestSession()
	require.NoError(t, s.noteConnected())
	s.noteDisconnected()

	assert.Equal(t, stateDisconnected, s.state)

	// A stray welcome after teardown changes nothing.
	s.observe(mustParse(t, ":srv 001 me :Welcome"))
	assert.Equal(t, stateDisconnected, s.state)
}

func TestConnState_String(t *testing.T) {
	assert.Equal(t, "Disconnected", stateDisconnected.String())
	assert.Equal(t, "Connecting", stateConnecting.String())
	assert.Equal(t, "Connected", stateConnected.String())
	assert.Equal(t, "Registering", stateRegistering.String())
	assert.Equal(t, "Registered", stateRegistered.String())
}
