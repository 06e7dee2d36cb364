package store

import "synapse-console/src/models"

// Command is a discrete, typed mutation applied by Store.Dispatch.
type Command interface {
	command()
}

// SetToken stores a freshly issued token; the session becomes authenticated.
type SetToken struct{ Token string }

// ClearToken drops the token. Expired marks a backend rejection rather than a logout.
type ClearToken struct{ Expired bool }

// ReplaceModels swaps the model list wholesale.
type ReplaceModels struct{ Models []models.MModel }

// ResetModels empties the list and the active model.
type ResetModels struct{}

// SelectModel makes the model with the given id active.
type SelectModel struct{ ID string }

// AppendLog adds a console line.
type AppendLog struct {
	Type    models.LogType
	Message string
}

// AppendTick pushes a price observation into the chart buffer.
type AppendTick struct{ Tick models.MPriceTick }

func (SetToken) command()      {}
func (ClearToken) command()    {}
func (ReplaceModels) command() {}
func (ResetModels) command()   {}
func (SelectModel) command()   {}
func (AppendLog) command()     {}
func (AppendTick) command()    {}
