package models

// MClientCommand is sent by presentation clients over the live push socket.
type MClientCommand struct {
	Command string `json:"command"` // "snapshot"
}

// MLoginRequest is the body of POST /api/login.
type MLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
