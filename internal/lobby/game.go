package lobby

import (
	"slices"

	"github.com/jason-s-yu/lobbyd/internal/apperr"
)

// Game is one pending match room. The owner is always the first roster entry.
// A Game is not safe for concurrent use; the Directory's owner serializes access.
type Game struct {
	Name       string
	Owner      string
	MaxPlayers int

	password string
	players  []string // join order
	invited  []string
}

// GameInfo is the client-facing view of a Game. It never carries the password.
type GameInfo struct {
	Name             string   `json:"gamename"`
	Owner            string   `json:"owner"`
	MaxPlayers       int      `json:"maxplayers"`
	PasswordRequired bool     `json:"passwordrequired"`
	Players          []string `json:"players"`
}

// NewGame creates a room with owner already seated.
func NewGame(name, owner, password string, maxPlayers int) *Game {
	return &Game{
		Name:       name,
		Owner:      owner,
		MaxPlayers: maxPlayers,
		password:   password,
		players:    []string{owner},
	}
}

// PasswordRequired reports whether joining needs a password or an invite.
func (g *Game) PasswordRequired() bool {
	return g.password != ""
}

// AddPlayer seats name. It returns false without error when name is neither
// invited nor holding the right password.
func (g *Game) AddPlayer(name, password string) (bool, error) {
	if g.HasPlayer(name) {
		return false, apperr.Wrap(apperr.ErrRepeatedPlayer, name)
	}
	if !g.IsInvited(name) && password != g.password {
		return false, nil
	}
	if len(g.players) >= g.MaxPlayers {
		return false, apperr.Wrap(apperr.ErrGameFull, g.Name)
	}
	g.players = append(g.players, name)
	return true, nil
}

// RemovePlayer drops a non-owner member from the roster.
func (g *Game) RemovePlayer(name string) error {
	if name == g.Owner {
		return apperr.Wrap(apperr.ErrCannotRemoveOwner, name)
	}
	i := slices.Index(g.players, name)
	if i < 0 {
		return apperr.Wrap(apperr.ErrUnknownMember, name)
	}
	g.players = slices.Delete(g.players, i, i+1)
	return nil
}

// AddInvite lets name join without the password. Invites are never pruned on join.
func (g *Game) AddInvite(name string) error {
	if g.IsInvited(name) {
		return apperr.Wrap(apperr.ErrAlreadyInvited, name)
	}
	g.invited = append(g.invited, name)
	return nil
}

func (g *Game) RemoveInvite(name string) error {
	i := slices.Index(g.invited, name)
	if i < 0 {
		return apperr.Wrap(apperr.ErrNotInvited, name)
	}
	g.invited = slices.Delete(g.invited, i, i+1)
	return nil
}

func (g *Game) HasPlayer(name string) bool {
	return slices.Contains(g.players, name)
}

func (g *Game) IsInvited(name string) bool {
	return slices.Contains(g.invited, name)
}

// Players returns a copy of the roster in join order.
func (g *Game) Players() []string {
	return slices.Clone(g.players)
}

func (g *Game) Full() bool {
	return len(g.players) >= g.MaxPlayers
}

// Snapshot copies the public state of the room.
func (g *Game) Snapshot() GameInfo {
	return GameInfo{
		Name:             g.Name,
		Owner:            g.Owner,
		MaxPlayers:       g.MaxPlayers,
		PasswordRequired: g.PasswordRequired(),
		Players:          g.Players(),
	}
}
