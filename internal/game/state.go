package game

// SessionStatus represents the lifecycle of a play session
type SessionStatus string

const (
	StatusStarting SessionStatus = "STARTING"
	StatusRunning  SessionStatus = "RUNNING"
	StatusPaused   SessionStatus = "PAUSED"
	StatusStopped  SessionStatus = "STOPPED"
)
