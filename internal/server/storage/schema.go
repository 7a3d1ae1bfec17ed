package storage

import "time"

// UserRecord represents a user account in the database
type UserRecord struct {
	UserID       string     `db:"user_id"`
	Username     string     `db:"username"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	CreatedAt    time.Time  `db:"created_at"`
	LastLoginAt  *time.Time `db:"last_login_at"`
}

// RepertoireRecord represents one color-scoped repertoire owned by a user
type RepertoireRecord struct {
	RepertoireID string    `db:"repertoire_id"`
	UserID       string    `db:"user_id"`
	Color        string    `db:"color"` // "w" or "b"
	CreatedAt    time.Time `db:"created_at"`
}

// OpeningRecord groups entries of a repertoire under a named opening
type OpeningRecord struct {
	OpeningID    string `db:"opening_id"`
	RepertoireID string `db:"repertoire_id"`
	Name         string `db:"name"`
}

// PositionRecord is one content-addressed board state, shared across
// repertoires. Exactly one row exists per distinct FEN.
type PositionRecord struct {
	PositionID string `db:"position_id"`
	FEN        string `db:"fen"`
}

// EntryRecord is one scheduled flashcard: a position plus the move the user
// is expected to play from it, with its SRS fields.
type EntryRecord struct {
	EntryID      string     `db:"entry_id"`
	RepertoireID string     `db:"repertoire_id"`
	OpeningID    string     `db:"opening_id"`
	PositionID   string     `db:"position_id"`
	FEN          string     `db:"fen"` // joined from positions
	MoveSan      string     `db:"move_san"`
	MoveUci      string     `db:"move_uci"`
	Interval     float64    `db:"interval"`
	EaseFactor   float64    `db:"ease_factor"`
	Repetitions  int        `db:"repetitions"`
	Phase        string     `db:"phase"`
	LearningStep int        `db:"learning_step"`
	NextReview   time.Time  `db:"next_review"`
	LastReview   *time.Time `db:"last_review"`
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id TEXT PRIMARY KEY,
	username TEXT UNIQUE NOT NULL COLLATE NOCASE,
	email TEXT COLLATE NOCASE,
	password_hash TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_login_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_unique ON users(email) WHERE email IS NOT NULL AND email != '';

CREATE TABLE IF NOT EXISTS repertoires (
	repertoire_id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	color TEXT NOT NULL CHECK(color IN ('w', 'b')),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE,
	UNIQUE(user_id, color)
);

CREATE INDEX IF NOT EXISTS idx_repertoires_user_id ON repertoires(user_id);

CREATE TABLE IF NOT EXISTS openings (
	opening_id TEXT PRIMARY KEY,
	repertoire_id TEXT NOT NULL,
	name TEXT NOT NULL,
	FOREIGN KEY (repertoire_id) REFERENCES repertoires(repertoire_id) ON DELETE CASCADE,
	UNIQUE(repertoire_id, name)
);

CREATE TABLE IF NOT EXISTS positions (
	position_id TEXT PRIMARY KEY,
	fen TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS entries (
	entry_id TEXT PRIMARY KEY,
	repertoire_id TEXT NOT NULL,
	opening_id TEXT NOT NULL,
	position_id TEXT NOT NULL,
	move_san TEXT NOT NULL,
	move_uci TEXT NOT NULL,
	interval REAL NOT NULL DEFAULT 0,
	ease_factor REAL NOT NULL,
	repetitions INTEGER NOT NULL DEFAULT 0,
	phase TEXT NOT NULL CHECK(phase IN ('learning', 'exponential', 'relearning')),
	learning_step INTEGER NOT NULL DEFAULT 0,
	next_review DATETIME NOT NULL,
	last_review DATETIME,
	FOREIGN KEY (repertoire_id) REFERENCES repertoires(repertoire_id) ON DELETE CASCADE,
	FOREIGN KEY (opening_id) REFERENCES openings(opening_id) ON DELETE CASCADE,
	FOREIGN KEY (position_id) REFERENCES positions(position_id),
	UNIQUE(repertoire_id, position_id, move_uci)
);

CREATE INDEX IF NOT EXISTS idx_entries_repertoire_id ON entries(repertoire_id);
CREATE INDEX IF NOT EXISTS idx_entries_position_id ON entries(position_id);
CREATE INDEX IF NOT EXISTS idx_entries_next_review ON entries(repertoire_id, next_review);
`
