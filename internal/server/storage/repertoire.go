package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Querier is satisfied by both *sql.DB and *sql.Tx. The repertoire core
// always passes a transaction so that each operation is all-or-nothing.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

const entryColumns = `e.entry_id, e.repertoire_id, e.opening_id, e.position_id, p.fen,
	e.move_san, e.move_uci, e.interval, e.ease_factor, e.repetitions, e.phase,
	e.learning_step, e.next_review, e.last_review`

const entryJoin = `FROM entries e JOIN positions p ON p.position_id = e.position_id`

// GetOrCreateRepertoire returns the user's repertoire for a color, creating
// it on first use.
func GetOrCreateRepertoire(q Querier, userID, color string) (string, error) {
	_, err := q.Exec(`INSERT INTO repertoires (repertoire_id, user_id, color, created_at)
		VALUES (?, ?, ?, ?) ON CONFLICT(user_id, color) DO NOTHING`,
		uuid.New().String(), userID, color, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to create repertoire: %w", err)
	}

	var id string
	err = q.QueryRow(`SELECT repertoire_id FROM repertoires WHERE user_id = ? AND color = ?`,
		userID, color).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to read back repertoire: %w", err)
	}
	return id, nil
}

// GetRepertoire returns the repertoire id for a (user, color) pair.
func GetRepertoire(q Querier, userID, color string) (string, error) {
	var id string
	err := q.QueryRow(`SELECT repertoire_id FROM repertoires WHERE user_id = ? AND color = ?`,
		userID, color).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetOrCreateOpening returns the opening grouping with the given name,
// creating it on first use.
func GetOrCreateOpening(q Querier, repertoireID, name string) (string, error) {
	_, err := q.Exec(`INSERT INTO openings (opening_id, repertoire_id, name)
		VALUES (?, ?, ?) ON CONFLICT(repertoire_id, name) DO NOTHING`,
		uuid.New().String(), repertoireID, name)
	if err != nil {
		return "", fmt.Errorf("failed to create opening: %w", err)
	}

	var id string
	err = q.QueryRow(`SELECT opening_id FROM openings WHERE repertoire_id = ? AND name = ?`,
		repertoireID, name).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to read back opening: %w", err)
	}
	return id, nil
}

// UpsertPosition inserts the position if its FEN is new and returns the row
// id either way. The insert-or-ignore is a single atomic statement, so
// concurrent ingestion of overlapping lines cannot create duplicate rows.
func UpsertPosition(q Querier, fen string) (string, error) {
	_, err := q.Exec(`INSERT INTO positions (position_id, fen) VALUES (?, ?) ON CONFLICT(fen) DO NOTHING`,
		uuid.New().String(), fen)
	if err != nil {
		return "", fmt.Errorf("failed to upsert position: %w", err)
	}

	var id string
	if err := q.QueryRow(`SELECT position_id FROM positions WHERE fen = ?`, fen).Scan(&id); err != nil {
		return "", fmt.Errorf("failed to read back position: %w", err)
	}
	return id, nil
}

// InsertEntry writes one new repertoire entry.
func InsertEntry(q Querier, e EntryRecord) error {
	_, err := q.Exec(`INSERT INTO entries (
		entry_id, repertoire_id, opening_id, position_id, move_san, move_uci,
		interval, ease_factor, repetitions, phase, learning_step, next_review, last_review
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.EntryID, e.RepertoireID, e.OpeningID, e.PositionID, e.MoveSan, e.MoveUci,
		e.Interval, e.EaseFactor, e.Repetitions, e.Phase, e.LearningStep, e.NextReview, e.LastReview,
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

// OwnedEntry is an entry joined with its repertoire's owner, for
// authorization checks.
type OwnedEntry struct {
	EntryRecord
	OwnerUserID string
	Color       string
}

// GetOwnedEntry loads one entry together with the owning user and color.
// Returns sql.ErrNoRows when the entry does not exist.
func GetOwnedEntry(q Querier, entryID string) (*OwnedEntry, error) {
	row := q.QueryRow(`SELECT `+entryColumns+`, r.user_id, r.color
		`+entryJoin+`
		JOIN repertoires r ON r.repertoire_id = e.repertoire_id
		WHERE e.entry_id = ?`, entryID)

	var e OwnedEntry
	var lastReview sql.NullTime
	err := row.Scan(
		&e.EntryID, &e.RepertoireID, &e.OpeningID, &e.PositionID, &e.FEN,
		&e.MoveSan, &e.MoveUci, &e.Interval, &e.EaseFactor, &e.Repetitions, &e.Phase,
		&e.LearningStep, &e.NextReview, &lastReview,
		&e.OwnerUserID, &e.Color,
	)
	if err != nil {
		return nil, err
	}
	if lastReview.Valid {
		t := lastReview.Time
		e.LastReview = &t
	}
	return &e, nil
}

// EntriesByPositionIDs returns the repertoire's entries whose position is in
// the given set.
func EntriesByPositionIDs(q Querier, repertoireID string, positionIDs []string) ([]EntryRecord, error) {
	if len(positionIDs) == 0 {
		return nil, nil
	}
	args := []any{repertoireID}
	for _, id := range positionIDs {
		args = append(args, id)
	}
	query := `SELECT ` + entryColumns + ` ` + entryJoin + `
		WHERE e.repertoire_id = ? AND e.position_id IN (` + placeholders(len(positionIDs)) + `)`
	return queryEntries(q, query, args...)
}

// EntriesByFENs returns the repertoire's entries whose position matches one
// of the given FEN strings.
func EntriesByFENs(q Querier, repertoireID string, fens []string) ([]EntryRecord, error) {
	if len(fens) == 0 {
		return nil, nil
	}
	args := []any{repertoireID}
	for _, fen := range fens {
		args = append(args, fen)
	}
	query := `SELECT ` + entryColumns + ` ` + entryJoin + `
		WHERE e.repertoire_id = ? AND p.fen IN (` + placeholders(len(fens)) + `)`
	return queryEntries(q, query, args...)
}

// EntriesForRepertoire returns every entry of one repertoire ordered by due
// date.
func EntriesForRepertoire(q Querier, repertoireID string) ([]EntryRecord, error) {
	query := `SELECT ` + entryColumns + ` ` + entryJoin + `
		WHERE e.repertoire_id = ? ORDER BY e.next_review ASC, e.entry_id ASC`
	return queryEntries(q, query, repertoireID)
}

// DeleteEntriesByID removes every entry in the id set in one statement.
func DeleteEntriesByID(q Querier, entryIDs []string) (int64, error) {
	if len(entryIDs) == 0 {
		return 0, nil
	}
	args := make([]any, len(entryIDs))
	for i, id := range entryIDs {
		args[i] = id
	}
	result, err := q.Exec(`DELETE FROM entries WHERE entry_id IN (`+placeholders(len(entryIDs))+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete entries: %w", err)
	}
	return result.RowsAffected()
}

// DeleteOrphanPositions removes every position no entry references. The
// sweep is global: positions are shared by FEN across repertoires and users.
func DeleteOrphanPositions(q Querier) (int64, error) {
	result, err := q.Exec(`DELETE FROM positions
		WHERE position_id NOT IN (SELECT DISTINCT position_id FROM entries)`)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep orphan positions: %w", err)
	}
	return result.RowsAffected()
}

// UpdateEntrySRS persists the scheduling fields after a review.
func UpdateEntrySRS(q Querier, e EntryRecord) error {
	_, err := q.Exec(`UPDATE entries SET
		interval = ?, ease_factor = ?, repetitions = ?, phase = ?,
		learning_step = ?, next_review = ?, last_review = ?
		WHERE entry_id = ?`,
		e.Interval, e.EaseFactor, e.Repetitions, e.Phase,
		e.LearningStep, e.NextReview, e.LastReview, e.EntryID,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry %s: %w", e.EntryID, err)
	}
	return nil
}

// CountPositions returns the number of stored positions.
func CountPositions(q Querier) (int, error) {
	var n int
	err := q.QueryRow(`SELECT COUNT(*) FROM positions`).Scan(&n)
	return n, err
}

func queryEntries(q Querier, query string, args ...any) ([]EntryRecord, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []EntryRecord
	for rows.Next() {
		var e EntryRecord
		var lastReview sql.NullTime
		err := rows.Scan(
			&e.EntryID, &e.RepertoireID, &e.OpeningID, &e.PositionID, &e.FEN,
			&e.MoveSan, &e.MoveUci, &e.Interval, &e.EaseFactor, &e.Repetitions, &e.Phase,
			&e.LearningStep, &e.NextReview, &lastReview,
		)
		if err != nil {
			return nil, err
		}
		if lastReview.Valid {
			t := lastReview.Time
			e.LastReview = &t
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
