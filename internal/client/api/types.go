// FILE: internal/client/api/types.go
package api

import "time"

// Request payloads

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type SaveLineRequest struct {
	Color    string   `json:"color"`
	Opening  string   `json:"opening,omitempty"`
	MovesSan []string `json:"movesSan"`
	MovesUci []string `json:"movesUci"`
}

type ReviewRequest struct {
	EntryID  string `json:"entryId"`
	Response string `json:"response"`
}

// Response payloads

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Time    int64  `json:"time"`
	Storage string `json:"storage"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type UserResponse struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type SaveLineResponse struct {
	EntriesCreated int `json:"entriesCreated"`
}

type ReviewResponse struct {
	Success        bool      `json:"success"`
	NextReviewDate time.Time `json:"nextReviewDate"`
	IntervalDays   float64   `json:"intervalDays"`
	Rationale      string    `json:"rationale"`
}

type DeleteEntryResponse struct {
	Success      bool     `json:"success"`
	DeletedCount int      `json:"deletedCount"`
	DeletedIDs   []string `json:"deletedIds"`
}

type Entry struct {
	EntryID        string     `json:"entryId"`
	OpeningID      string     `json:"openingId"`
	FEN            string     `json:"fen"`
	MoveSan        string     `json:"moveSan"`
	MoveUci        string     `json:"moveUci"`
	Phase          string     `json:"phase"`
	IntervalDays   float64    `json:"intervalDays"`
	EaseFactor     float64    `json:"easeFactor"`
	Repetitions    int        `json:"repetitions"`
	NextReviewDate time.Time  `json:"nextReviewDate"`
	LastReviewDate *time.Time `json:"lastReviewDate,omitempty"`
}

type DueCardsResponse struct {
	Color string  `json:"color"`
	Cards []Entry `json:"cards"`
}

type RepertoireResponse struct {
	Color   string  `json:"color"`
	Entries []Entry `json:"entries"`
}
