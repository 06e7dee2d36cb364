package session

import (
	"context"
	"errors"

	"synapse-console/src/helpers"
	"synapse-console/src/interfaces"
	"synapse-console/src/logger"
	"synapse-console/src/models"
	"synapse-console/src/store"
)

// ErrLoginRequired is returned by HandleUnauthorized so callers can route to a login.
var ErrLoginRequired = errors.New("login required")

// Manager owns authentication and the model list on top of the store.
type Manager struct {
	store    *store.Store
	identity interfaces.IIdentityProvider
	source   interfaces.IModelSource
	logger   *logger.Logger
}

func NewManager(st *store.Store, identity interfaces.IIdentityProvider, source interfaces.IModelSource, log *logger.Logger) *Manager {
	return &Manager{
		store:    st,
		identity: identity,
		source:   source,
		logger:   log.Named("Session"),
	}
}

// Login exchanges credentials and, on success, loads the model list once.
// A failed exchange leaves the previous session untouched.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	m.store.Log(models.LogInfo, "Authenticating user: %s", username)

	token, err := m.identity.Login(ctx, username, password)
	if err != nil {
		m.logger.Warning("login for %s failed: %v", username, err)
		if !helpers.IsAuthentication(err) {
			// transport failures still reach the user as an authentication problem
			return &helpers.AuthenticationError{SynapseError: helpers.SynapseError{Message: "Authentication failed", Cause: err}}
		}
		return err
	}

	if err := m.store.Dispatch(store.SetToken{Token: token}); err != nil {
		return err
	}
	m.store.Log(models.LogSuccess, "User %s authenticated.", username)

	m.LoadModels(ctx)
	return nil
}

// Logout always succeeds.
func (m *Manager) Logout() {
	m.store.Dispatch(store.ClearToken{})
	m.store.Dispatch(store.ResetModels{})
	m.store.Log(models.LogInfo, "User logged out.")
}

// HandleUnauthorized clears the session after the backend rejected the token.
// The store publishes session_expired; the returned error tells the caller a new
// login is needed.
func (m *Manager) HandleUnauthorized() error {
	m.store.Dispatch(store.ClearToken{Expired: true})
	return ErrLoginRequired
}

// LoadModels refreshes the model list. It is a no-op while logged out.
func (m *Manager) LoadModels(ctx context.Context) {
	token := m.store.Token()
	if token == "" {
		return
	}

	m.store.Log(models.LogInfo, "Fetching models...")
	list, err := m.source.FetchModels(ctx, token)
	if err != nil {
		m.store.Log(models.LogError, "Failed to load models: %s", err.Error())
		if helpers.IsAuthorizationExpired(err) {
			m.HandleUnauthorized()
		}
		return
	}

	m.store.Dispatch(store.ReplaceModels{Models: list})
	m.store.Log(models.LogSuccess, "%d model(s) loaded.", len(list))
}

// SelectModel marks a model as the one being displayed.
func (m *Manager) SelectModel(id string) error {
	if err := m.store.Dispatch(store.SelectModel{ID: id}); err != nil {
		return err
	}
	if active := m.store.ActiveModel(); active != nil {
		m.store.Log(models.LogInfo, "Displaying model: %s", active.Name)
	}
	return nil
}

func (m *Manager) IsAuthenticated() bool {
	return m.store.IsAuthenticated()
}

func (m *Manager) Token() string {
	return m.store.Token()
}
