package models

// MSession is the client-held authentication state.
// Authentication is derived from the token so the two can never disagree.
type MSession struct {
	Token string `json:"-"`
}

func (s MSession) IsAuthenticated() bool {
	return s.Token != ""
}
