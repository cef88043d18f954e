package lobby

import (
	"testing"

	"github.com/jason-s-yu/lobbyd/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGameSeatsOwner(t *testing.T) {
	g := NewGame("adam's game", "adam", "", 4)
	assert.True(t, g.HasPlayer("adam"))
	assert.Equal(t, []string{"adam"}, g.Players())
	assert.False(t, g.PasswordRequired())
}

func TestGameAddPlayer(t *testing.T) {
	g := NewGame("my game", "adam", "pw", 3)

	added, err := g.AddPlayer("eve", "wrong")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Len(t, g.Players(), 1)

	added, err = g.AddPlayer("eve", "pw")
	require.NoError(t, err)
	assert.True(t, added)

	_, err = g.AddPlayer("eve", "pw")
	assert.ErrorIs(t, err, apperr.ErrRepeatedPlayer)

	require.NoError(t, g.AddInvite("cain"))
	added, err = g.AddPlayer("cain", "")
	require.NoError(t, err)
	assert.True(t, added)

	_, err = g.AddPlayer("abel", "pw")
	assert.ErrorIs(t, err, apperr.ErrGameFull)
	assert.Equal(t, []string{"adam", "eve", "cain"}, g.Players())
}

func TestGameWrongPasswordBeforeCapacity(t *testing.T) {
	g := NewGame("my game", "adam", "pw", 2)
	added, err := g.AddPlayer("eve", "pw")
	require.NoError(t, err)
	require.True(t, added)

	// a bad password on a full room is a plain rejection, not a capacity error
	added, err = g.AddPlayer("cain", "nope")
	require.NoError(t, err)
	assert.False(t, added)
}

func TestGameRemovePlayer(t *testing.T) {
	g := NewGame("my game", "adam", "", 3)
	_, err := g.AddPlayer("eve", "")
	require.NoError(t, err)

	assert.ErrorIs(t, g.RemovePlayer("adam"), apperr.ErrCannotRemoveOwner)
	assert.ErrorIs(t, g.RemovePlayer("cain"), apperr.ErrUnknownMember)

	require.NoError(t, g.RemovePlayer("eve"))
	assert.False(t, g.HasPlayer("eve"))
}

func TestGameInvites(t *testing.T) {
	g := NewGame("my game", "adam", "pw", 3)

	require.NoError(t, g.AddInvite("eve"))
	assert.ErrorIs(t, g.AddInvite("eve"), apperr.ErrAlreadyInvited)
	assert.True(t, g.IsInvited("eve"))

	added, err := g.AddPlayer("eve", "")
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, g.IsInvited("eve"), "invites survive a join")

	require.NoError(t, g.RemoveInvite("eve"))
	assert.ErrorIs(t, g.RemoveInvite("eve"), apperr.ErrNotInvited)
}

func TestGameSnapshotHidesPassword(t *testing.T) {
	g := NewGame("my game", "adam", "pw", 2)
	snap := g.Snapshot()

	assert.Equal(t, GameInfo{
		Name:             "my game",
		Owner:            "adam",
		MaxPlayers:       2,
		PasswordRequired: true,
		Players:          []string{"adam"},
	}, snap)

	snap.Players[0] = "mallory"
	assert.True(t, g.HasPlayer("adam"))
}
