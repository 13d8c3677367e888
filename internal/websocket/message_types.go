package websocket

// Типы исходящих событий
const (
	PICK_CREATED     = "pick:created"
	DECISION_GRADED  = "decision:graded"
	LEADERBOARD_MOVE = "leaderboard:update"
	SERVER_ERROR     = "server:error"
)

// Типы входящих событий от клиента
const (
	USER_HEARTBEAT = "user:heartbeat"
)
