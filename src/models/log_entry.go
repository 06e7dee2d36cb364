package models

// LogType classifies a console line.
type LogType string

const (
	LogInfo       LogType = "info"
	LogSuccess    LogType = "success"
	LogError      LogType = "error"
	LogSignalBuy  LogType = "signal-buy"
	LogSignalSell LogType = "signal-sell"
)

// MLogEntry is one line of the running console.
type MLogEntry struct {
	Timestamp string  `json:"timestamp"` // RFC 3339, UTC
	Type      LogType `json:"type"`
	Message   string  `json:"message"`
}
