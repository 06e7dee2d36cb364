package controller

import (
	"context"

	"synapse-console/src/helpers"
	"synapse-console/src/logger"
	"synapse-console/src/models"
	"synapse-console/src/session"
	"synapse-console/src/store"
	"synapse-console/src/stream"
)

// Controller sequences the session and the event stream. Every operation the
// presentation layer can request goes through here.
type Controller struct {
	store        *store.Store
	session      *session.Manager
	stream       *stream.Channel
	logger       *logger.Logger
	errorHandler *helpers.ErrorHandler

	unsubscribe func()
}

// -----------------------------------------------------------------------------

func NewController(st *store.Store, sess *session.Manager, ch *stream.Channel, log *logger.Logger) *Controller {
	c := &Controller{
		store:        st,
		session:      sess,
		stream:       ch,
		logger:       log.Named("Controller"),
		errorHandler: helpers.NewErrorHandler(log),
	}

	// an expired session must not keep streaming
	c.unsubscribe = st.Subscribe(func(ev models.MEvent) {
		if ev.Type == models.EventSessionExpired {
			c.logger.Warning("Session expired, closing event stream")
			c.stream.Disconnect()
		}
	})
	return c
}

// -----------------------------------------------------------------------------

// Start announces the console and resumes a stored session.
func (c *Controller) Start(ctx context.Context) {
	c.store.Log(models.LogInfo, "Synapse console initialized.")

	if !c.session.IsAuthenticated() {
		c.logger.Info("No stored session, waiting for login")
		return
	}

	c.session.LoadModels(ctx)
	c.connect(ctx)
}

// -----------------------------------------------------------------------------

// Login authenticates, loads models and opens the stream.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	if err := c.session.Login(ctx, username, password); err != nil {
		c.errorHandler.Handle(err, "login")
		return err
	}
	c.connect(ctx)
	return nil
}

// -----------------------------------------------------------------------------

// Logout closes the stream before dropping the session.
func (c *Controller) Logout() {
	c.stream.Disconnect()
	c.session.Logout()
}

// -----------------------------------------------------------------------------

// Reconnect replaces the stream connection using the current token.
func (c *Controller) Reconnect(ctx context.Context) error {
	err := c.stream.Connect(ctx, c.store.Token())
	c.errorHandler.Handle(err, "reconnect")
	return err
}

// -----------------------------------------------------------------------------

// RefreshModels reloads the model list.
func (c *Controller) RefreshModels(ctx context.Context) {
	c.session.LoadModels(ctx)
}

func (c *Controller) SelectModel(id string) error {
	return c.session.SelectModel(id)
}

// -----------------------------------------------------------------------------

// Snapshot is the store snapshot plus the stream state.
func (c *Controller) Snapshot() models.MDashboardState {
	state := c.store.Snapshot()
	state.StreamState = string(c.stream.State())
	return state
}

func (c *Controller) StreamState() stream.State {
	return c.stream.State()
}

// -----------------------------------------------------------------------------

// Shutdown detaches from the store and closes the stream.
func (c *Controller) Shutdown() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	if err := c.stream.Disconnect(); err != nil {
		c.logger.Debug("closing event stream: %v", err)
	}
}

// -----------------------------------------------------------------------------

func (c *Controller) connect(ctx context.Context) {
	// a model load may have expired the session
	if !c.session.IsAuthenticated() {
		return
	}
	c.errorHandler.Handle(c.stream.Connect(ctx, c.store.Token()), "stream connect")
}
