package server

import "github.com/jason-s-yu/lobbyd/internal/protocol"

func handleRequestPlayers(s *Session, _ string, _ protocol.Message) {
	s.reply(protocol.New(protocol.ActionPlayerList, protocol.FieldPlayers, s.lobby.directory.Players()))
}

func handleRequestGames(s *Session, _ string, _ protocol.Message) {
	s.reply(protocol.New(protocol.ActionGameList, protocol.FieldGames, s.lobby.directory.Games()))
}
