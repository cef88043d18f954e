package lobby

import (
	"slices"
	"strings"

	"github.com/jason-s-yu/lobbyd/internal/apperr"
)

// Player is a logged-in lobby identity. Game holds the name of the room the
// player sits in, or "" when the player is not in a room.
type Player struct {
	Name string `json:"playername"`
	Game string `json:"gamename,omitempty"`
}

// Directory is the authoritative map of logged-in players and pending games.
// Every method keeps player.Game and the game rosters in agreement. It does no
// locking of its own.
type Directory struct {
	limits  Limits
	players map[string]*Player
	games   map[string]*Game
}

// NewDirectory creates an empty directory. Zero limits fall back to DefaultLimits.
func NewDirectory(limits Limits) *Directory {
	if limits == (Limits{}) {
		limits = DefaultLimits()
	}
	return &Directory{
		limits:  limits,
		players: make(map[string]*Player),
		games:   make(map[string]*Game),
	}
}

func (d *Directory) Limits() Limits { return d.limits }

// AddPlayer creates the lobby identity for name.
func (d *Directory) AddPlayer(name string) (Player, error) {
	if _, ok := d.players[name]; ok {
		return Player{}, apperr.Wrap(apperr.ErrNameInUse, name)
	}
	p := &Player{Name: name}
	d.players[name] = p
	return *p, nil
}

// RemovePlayer deletes the identity of name. A seated member is dropped from
// its roster first; an owner takes the room down with it.
func (d *Directory) RemovePlayer(name string) error {
	p, ok := d.players[name]
	if !ok {
		return apperr.Wrap(apperr.ErrUnknownPlayer, name)
	}
	if g, ok := d.games[p.Game]; ok {
		if g.Owner == name {
			d.dropGame(g)
		} else {
			_ = g.RemovePlayer(name)
		}
	}
	delete(d.players, name)
	return nil
}

// CreateGame validates and creates a room owned by owner, seating the owner.
// The name is stored trimmed.
func (d *Directory) CreateGame(gameName, owner string, maxPlayers int, password string) (GameInfo, error) {
	if !d.limits.ValidCapacity(maxPlayers) {
		return GameInfo{}, apperr.ErrInvalidCapacity
	}
	if !d.limits.ValidateName(gameName) {
		return GameInfo{}, apperr.Wrap(apperr.ErrInvalidName, gameName)
	}
	gameName = strings.TrimSpace(gameName)

	p, ok := d.players[owner]
	if !ok {
		return GameInfo{}, apperr.Wrap(apperr.ErrUnknownPlayer, owner)
	}
	if p.Game != "" {
		return GameInfo{}, apperr.Wrap(apperr.ErrAlreadyInGame, owner)
	}
	if _, exists := d.games[gameName]; exists {
		return GameInfo{}, apperr.Wrap(apperr.ErrNameInUse, gameName)
	}

	g := NewGame(gameName, owner, password, maxPlayers)
	d.games[gameName] = g
	p.Game = gameName
	return g.Snapshot(), nil
}

// RemoveGame disbands a room, clearing the game of every member.
func (d *Directory) RemoveGame(gameName string) error {
	g, ok := d.games[gameName]
	if !ok {
		return apperr.Wrap(apperr.ErrUnknownGame, gameName)
	}
	d.dropGame(g)
	return nil
}

func (d *Directory) dropGame(g *Game) {
	for _, name := range g.players {
		if p, ok := d.players[name]; ok && p.Game == g.Name {
			p.Game = ""
		}
	}
	delete(d.games, g.Name)
}

// StartGame hands a room off: it returns the roster (owner first, join order)
// and removes the room and every member from the directory.
func (d *Directory) StartGame(gameName string) ([]string, error) {
	g, ok := d.games[gameName]
	if !ok {
		return nil, apperr.Wrap(apperr.ErrUnknownGame, gameName)
	}
	members := g.Players()
	for _, name := range members {
		delete(d.players, name)
	}
	delete(d.games, gameName)
	return members, nil
}

// JoinGame seats player in gameName.
func (d *Directory) JoinGame(gameName, player, password string) error {
	g, ok := d.games[gameName]
	if !ok {
		return apperr.Wrap(apperr.ErrUnknownGame, gameName)
	}
	p, ok := d.players[player]
	if !ok {
		return apperr.Wrap(apperr.ErrUnknownPlayer, player)
	}
	if p.Game != "" {
		return apperr.Wrap(apperr.ErrAlreadyInGame, player)
	}
	added, err := g.AddPlayer(player, password)
	if err != nil {
		return err
	}
	if !added {
		return apperr.ErrPasswordMismatch
	}
	p.Game = gameName
	return nil
}

// Departure describes what LeaveGame did. Remaining lists the other members of
// a disbanded room in join order.
type Departure struct {
	Game      string
	Disbanded bool
	Remaining []string
}

// LeaveGame takes player out of its room. When the player owns the room the
// whole room is removed.
func (d *Directory) LeaveGame(player string) (Departure, error) {
	p, ok := d.players[player]
	if !ok {
		return Departure{}, apperr.Wrap(apperr.ErrUnknownPlayer, player)
	}
	g, ok := d.games[p.Game]
	if !ok {
		return Departure{}, apperr.ErrNotInGame
	}

	if g.Owner == player {
		rest := slices.DeleteFunc(g.Players(), func(n string) bool { return n == player })
		d.dropGame(g)
		return Departure{Game: g.Name, Disbanded: true, Remaining: rest}, nil
	}

	if err := g.RemovePlayer(player); err != nil {
		return Departure{}, err
	}
	p.Game = ""
	return Departure{Game: g.Name}, nil
}

// KickPlayer lets owner remove target from the owner's room and returns the room name.
func (d *Directory) KickPlayer(owner, target string) (string, error) {
	g, err := d.ownedGame(owner)
	if err != nil {
		return "", err
	}
	if target == owner {
		return "", apperr.Wrap(apperr.ErrCannotRemoveOwner, target)
	}
	if err := g.RemovePlayer(target); err != nil {
		return "", err
	}
	if p, ok := d.players[target]; ok {
		p.Game = ""
	}
	return g.Name, nil
}

// Invite adds target to the invite list of inviter's room and returns the room name.
func (d *Directory) Invite(inviter, target string) (string, error) {
	p, ok := d.players[inviter]
	if !ok {
		return "", apperr.Wrap(apperr.ErrUnknownPlayer, inviter)
	}
	g, ok := d.games[p.Game]
	if !ok {
		return "", apperr.ErrNotInGame
	}
	if _, ok := d.players[target]; !ok {
		return "", apperr.Wrap(apperr.ErrUnknownInvitee, target)
	}
	if err := g.AddInvite(target); err != nil {
		return "", err
	}
	return g.Name, nil
}

// OwnedGame returns the name of the room owned by player.
func (d *Directory) OwnedGame(player string) (string, error) {
	g, err := d.ownedGame(player)
	if err != nil {
		return "", err
	}
	return g.Name, nil
}

func (d *Directory) ownedGame(player string) (*Game, error) {
	p, ok := d.players[player]
	if !ok {
		return nil, apperr.Wrap(apperr.ErrUnknownPlayer, player)
	}
	g, ok := d.games[p.Game]
	if !ok {
		return nil, apperr.ErrNotInGame
	}
	if g.Owner != player {
		return nil, apperr.Wrap(apperr.ErrNotOwner, player)
	}
	return g, nil
}

func (d *Directory) HasPlayer(name string) bool {
	_, ok := d.players[name]
	return ok
}

func (d *Directory) HasGame(name string) bool {
	_, ok := d.games[name]
	return ok
}

// Player returns a copy of the named player.
func (d *Directory) Player(name string) (Player, bool) {
	p, ok := d.players[name]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// Game returns a snapshot of the named room.
func (d *Directory) Game(name string) (GameInfo, bool) {
	g, ok := d.games[name]
	if !ok {
		return GameInfo{}, false
	}
	return g.Snapshot(), true
}

// Players returns copies of every player sorted by name.
func (d *Directory) Players() []Player {
	out := make([]Player, 0, len(d.players))
	for _, p := range d.players {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b Player) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Games returns snapshots of every room sorted by name.
func (d *Directory) Games() []GameInfo {
	out := make([]GameInfo, 0, len(d.games))
	for _, g := range d.games {
		out = append(out, g.Snapshot())
	}
	slices.SortFunc(out, func(a, b GameInfo) int { return strings.Compare(a.Name, b.Name) })
	return out
}
