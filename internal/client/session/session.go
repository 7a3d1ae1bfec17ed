// FILE: internal/client/session/session.go
package session

import "repertoire/internal/client/api"

// Session holds the interactive client state shared across commands.
type Session struct {
	APIBaseURL string
	Client     *api.Client
	Verbose    bool

	AuthToken string
	UserID    string
	Username  string

	// Color selects which repertoire side commands operate on.
	Color string
}

func New(baseURL string) *Session {
	return &Session{
		APIBaseURL: baseURL,
		Client:     api.New(baseURL),
		Color:      "white",
	}
}

// SetAuth records credentials after register/login.
func (s *Session) SetAuth(token, userID, username string) {
	s.AuthToken = token
	s.UserID = userID
	s.Username = username
	s.Client.SetToken(token)
}

// ClearAuth drops credentials on logout.
func (s *Session) ClearAuth() {
	s.AuthToken = ""
	s.UserID = ""
	s.Username = ""
	s.Client.SetToken("")
}
