package store

import (
	"fmt"
	"sync"

	"synapse-console/src/console"
	"synapse-console/src/interfaces"
	"synapse-console/src/logger"
	"synapse-console/src/models"
	"synapse-console/src/utils"
)

// Listener receives events after the command that produced them has been applied.
type Listener = func(models.MEvent)

// Store is the single owner of client state. All writes go through Dispatch,
// which applies commands one at a time.
type Store struct {
	mu          sync.Mutex
	session     models.MSession
	models      []models.MModel
	activeModel *models.MModel

	chart   *utils.ChartBuffer
	console *console.Console
	tokens  interfaces.ITokenStore
	logger  *logger.Logger

	listenersMu sync.RWMutex
	listeners   map[int]Listener
	nextID      int
}

// -----------------------------------------------------------------------------

// NewStore restores the session from the token slot.
func NewStore(tokens interfaces.ITokenStore, chart *utils.ChartBuffer, cons *console.Console, log *logger.Logger) *Store {
	s := &Store{
		chart:     chart,
		console:   cons,
		tokens:    tokens,
		logger:    log.Named("Store"),
		listeners: make(map[int]Listener),
	}

	token, err := tokens.GetToken()
	if err != nil {
		s.logger.Warning("Failed to restore token, starting logged out: %v", err)
	}
	s.session.Token = token
	return s
}

// -----------------------------------------------------------------------------

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

// -----------------------------------------------------------------------------

// Dispatch applies cmd and notifies listeners.
func (s *Store) Dispatch(cmd Command) error {
	s.mu.Lock()
	events, err := s.apply(cmd)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.publish(events)
	return nil
}

// -----------------------------------------------------------------------------

func (s *Store) apply(cmd Command) ([]models.MEvent, error) {
	switch c := cmd.(type) {
	case SetToken:
		if c.Token == "" {
			return nil, fmt.Errorf("refusing to store an empty token")
		}
		s.session.Token = c.Token
		if err := s.tokens.SetToken(c.Token); err != nil {
			s.logger.Warning("Token kept in memory only: %v", err)
		}
		return []models.MEvent{{Type: models.EventSessionChanged, Authenticated: true}}, nil

	case ClearToken:
		s.session.Token = ""
		if err := s.tokens.ClearToken(); err != nil {
			s.logger.Warning("Failed to clear persisted token: %v", err)
		}
		eventType := models.EventSessionChanged
		if c.Expired {
			eventType = models.EventSessionExpired
		}
		return []models.MEvent{{Type: eventType, Authenticated: false}}, nil

	case ReplaceModels:
		list := make([]models.MModel, len(c.Models))
		copy(list, c.Models)
		s.models = list
		return []models.MEvent{{Type: models.EventModelsLoaded, Authenticated: s.session.IsAuthenticated(), Models: s.modelsCopy()}}, nil

	case ResetModels:
		s.models = nil
		s.activeModel = nil
		return []models.MEvent{{Type: models.EventModelsLoaded, Authenticated: s.session.IsAuthenticated()}}, nil

	case SelectModel:
		for i := range s.models {
			if s.models[i].ID.String() == c.ID {
				selected := s.models[i]
				s.activeModel = &selected
				active := selected
				return []models.MEvent{{Type: models.EventModelSelected, Authenticated: s.session.IsAuthenticated(), ActiveModel: &active}}, nil
			}
		}
		return nil, fmt.Errorf("model %s not found", c.ID)

	case AppendLog:
		entry := s.console.Append(c.Type, c.Message)
		return []models.MEvent{{Type: models.EventLogAppended, Authenticated: s.session.IsAuthenticated(), Log: &entry}}, nil

	case AppendTick:
		points := s.chart.Append(c.Tick)
		return []models.MEvent{{Type: models.EventChartUpdated, Authenticated: s.session.IsAuthenticated(), Chart: points}}, nil

	default:
		return nil, fmt.Errorf("unknown command %T", cmd)
	}
}

// -----------------------------------------------------------------------------

func (s *Store) publish(events []models.MEvent) {
	s.listenersMu.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.listenersMu.RUnlock()

	for _, ev := range events {
		for _, l := range listeners {
			l(ev)
		}
	}
}

// -----------------------------------------------------------------------------

// Log is shorthand for dispatching an AppendLog command.
func (s *Store) Log(logType models.LogType, format string, args ...interface{}) {
	_ = s.Dispatch(AppendLog{Type: logType, Message: fmt.Sprintf(format, args...)})
}

// -----------------------------------------------------------------------------
// Read accessors
// -----------------------------------------------------------------------------

func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Token
}

func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.IsAuthenticated()
}

func (s *Store) Models() []models.MModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modelsCopy()
}

func (s *Store) ActiveModel() *models.MModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeModel == nil {
		return nil
	}
	active := *s.activeModel
	return &active
}

func (s *Store) Chart() []models.MChartPoint {
	return s.chart.Snapshot()
}

func (s *Store) Logs() []models.MLogEntry {
	return s.console.Entries()
}

// Snapshot gathers everything a freshly connected presentation client needs.
func (s *Store) Snapshot() models.MDashboardState {
	s.mu.Lock()
	state := models.MDashboardState{
		Type:          "INITIAL",
		Authenticated: s.session.IsAuthenticated(),
		Models:        s.modelsCopy(),
	}
	if s.activeModel != nil {
		active := *s.activeModel
		state.ActiveModel = &active
	}
	s.mu.Unlock()

	state.Chart = s.chart.Snapshot()
	state.Logs = s.console.Entries()
	return state
}

func (s *Store) modelsCopy() []models.MModel {
	out := make([]models.MModel, len(s.models))
	copy(out, s.models)
	return out
}
