// FILE: internal/core/api.go
package core

import "time"

// Request types

type SaveLineRequest struct {
	Color    string   `json:"color" validate:"required,oneof=white black"`
	Opening  string   `json:"opening,omitempty" validate:"omitempty,max=120"`
	MovesSan []string `json:"movesSan" validate:"required,min=1,max=300"`
	MovesUci []string `json:"movesUci" validate:"required,min=1,max=300"`
}

type ReviewRequest struct {
	EntryID  string `json:"entryId" validate:"required,uuid4"`
	Response string `json:"response" validate:"required,oneof=forgot partial effort easy"`
}

// Response types

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

// EntryResponse is the API view of one repertoire entry.
type EntryResponse struct {
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

type RepertoireResponse struct {
	Color   string          `json:"color"`
	Entries []EntryResponse `json:"entries"`
}

type DueCardsResponse struct {
	Color string          `json:"color"`
	Cards []EntryResponse `json:"cards"`
}
