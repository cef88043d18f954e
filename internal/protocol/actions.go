package protocol

// Client commands.
const (
	ActionRegisterPlayer = "RegisterPlayer"
	ActionLogin          = "Login"
	ActionLoginSession   = "LoginSession"
	ActionLogout         = "Logout"
	ActionCreateGame     = "CreateGame"
	ActionJoinGame       = "JoinGame"
	ActionInvitePlayer   = "InvitePlayer"
	ActionLeaveGame      = "LeaveGame"
	ActionKickPlayer     = "KickPlayer"
	ActionStartGame      = "StartGame"
	ActionRequestPlayers = "RequestPlayers"
	ActionRequestGames   = "RequestGames"
)

// Replies to the caller.
const (
	ActionRegisterAccepted = "RegisterAccepted"
	ActionRegisterRejected = "RegisterRejected"
	ActionLoginAccepted    = "LoginAccepted"
	ActionLoginRejected    = "LoginRejected"
	ActionLogoutAccepted   = "LogoutAccepted"
	ActionCreateAccepted   = "CreateAccepted"
	ActionCreateRejected   = "CreateRejected"
	ActionJoinAccepted     = "JoinAccepted"
	ActionJoinRejected     = "JoinRejected"
	ActionInviteAccepted   = "InviteAccepted"
	ActionInviteRejected   = "InviteRejected"
	ActionLeaveAccepted    = "LeaveAccepted"
	ActionLeaveRejected    = "LeaveRejected"
	ActionKickAccepted     = "KickAccepted"
	ActionKickRejected     = "KickRejected"
	ActionStartRejected    = "StartRejected"
	ActionPlayerList       = "PlayerList"
	ActionGameList         = "GameList"
	ActionAuthError        = "AuthError"
	ActionActionRejected   = "ActionRejected"
)

// Broadcast and directed notifications. StartGame is also sent to each member.
const (
	ActionPlayerLogin    = "PlayerLogin"
	ActionLeaveLobby     = "LeaveLobby"
	ActionNewGame        = "NewGame"
	ActionRemoveGame     = "RemoveGame"
	ActionPlayerJoined   = "PlayerJoined"
	ActionPlayerLeave    = "PlayerLeave"
	ActionInvite         = "Invite"
	ActionKickedFromGame = "KickedFromGame"
)

// Field names.
const (
	FieldAction     = "action"
	FieldName       = "name"
	FieldPassword   = "password"
	FieldEmail      = "email"
	FieldToken      = "token"
	FieldPlayerName = "playername"
	FieldGameName   = "gamename"
	FieldMaxPlayers = "maxplayers"
	FieldGame       = "game"
	FieldPlayers    = "players"
	FieldGames      = "games"
	FieldReason     = "reason"
	FieldAddress    = "address"
	FieldIP         = "ip"
	FieldPort       = "port"
)
