package models

// -----------------------------------------------------------------------------
// Store Events
// -----------------------------------------------------------------------------

type EventType string

const (
	EventSessionChanged EventType = "session_changed"
	EventSessionExpired EventType = "session_expired"
	EventModelsLoaded   EventType = "models_loaded"
	EventModelSelected  EventType = "model_selected"
	EventLogAppended    EventType = "log_appended"
	EventChartUpdated   EventType = "chart_updated"
)

// MEvent is published by the store after a command has been applied.
type MEvent struct {
	Type          EventType     `json:"type"`
	Authenticated bool          `json:"authenticated"`
	Log           *MLogEntry    `json:"log,omitempty"`
	Chart         []MChartPoint `json:"chart,omitempty"`
	Models        []MModel      `json:"models,omitempty"`
	ActiveModel   *MModel       `json:"activeModel,omitempty"`
}

// -----------------------------------------------------------------------------
// Dashboard Snapshot (sent to presentation clients on connect)
// -----------------------------------------------------------------------------

type MDashboardState struct {
	Type          string        `json:"type"` // "INITIAL"
	Authenticated bool          `json:"authenticated"`
	Models        []MModel      `json:"models"`
	ActiveModel   *MModel       `json:"activeModel"`
	Chart         []MChartPoint `json:"chart"`
	Logs          []MLogEntry   `json:"logs"`
	StreamState   string        `json:"streamState"`
}
