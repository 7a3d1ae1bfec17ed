// FILE: internal/server/service/ingest.go
package service

import (
	"database/sql"
	"fmt"
	"time"

	"repertoire/internal/board"
	"repertoire/internal/core"
	"repertoire/internal/scheduler"
	"repertoire/internal/server/storage"

	"github.com/google/uuid"
)

const defaultOpeningName = "Uncategorized"

// candidate is one prospective entry discovered during replay: the position
// before the studying color's move, and the move itself.
type candidate struct {
	fen     string
	moveSan string
	moveUci string
}

// SaveLine replays one opening line for the studying color, stores every new
// (position, expected move) pair as a schedulable entry, and returns the
// number of entries created. The whole persistence step is one transaction;
// partial lines are never committed.
func (s *Service) SaveLine(userID string, color core.Color, openingName string, sanMoves, uciMoves []string) (int, error) {
	if s.store == nil {
		return 0, ErrStorageDisabled
	}

	if len(sanMoves) == 0 || len(sanMoves) != len(uciMoves) {
		return 0, ErrEmptyOrMismatchedLine
	}

	// The last ply must belong to the studying color: an entry is "what
	// should I play here", and a line ending on the opponent's move has no
	// user decision left to schedule. White moves at even 0-based plies.
	lastPly := len(uciMoves) - 1
	whiteToMove := lastPly%2 == 0
	if (color == core.ColorWhite) != whiteToMove {
		return 0, ErrLineEndsOnOpponentMove
	}

	// Replay the full line before touching the database; an illegal move is
	// a validation failure, not a transaction abort.
	candidates, err := replayLine(color, sanMoves, uciMoves)
	if err != nil {
		return 0, err
	}

	created := 0
	err = s.store.WithTx(func(tx *sql.Tx) error {
		repertoireID, err := storage.GetOrCreateRepertoire(tx, userID, string(color))
		if err != nil {
			return err
		}

		name := openingName
		if name == "" {
			name = defaultOpeningName
		}
		openingID, err := storage.GetOrCreateOpening(tx, repertoireID, name)
		if err != nil {
			return err
		}

		// Upsert every distinct position and collect FEN -> id.
		positionIDs := make(map[string]string, len(candidates))
		for _, c := range candidates {
			if _, ok := positionIDs[c.fen]; ok {
				continue
			}
			id, err := storage.UpsertPosition(tx, c.fen)
			if err != nil {
				return err
			}
			positionIDs[c.fen] = id
		}

		// Pairs already tracked from earlier lines are skipped.
		ids := make([]string, 0, len(positionIDs))
		for _, id := range positionIDs {
			ids = append(ids, id)
		}
		existing, err := storage.EntriesByPositionIDs(tx, repertoireID, ids)
		if err != nil {
			return err
		}
		seen := make(map[string]bool, len(existing))
		for _, e := range existing {
			seen[e.PositionID+"|"+e.MoveUci] = true
		}

		now := time.Now().UTC()
		defaults := scheduler.NewCardState(s.cfg, now)

		for _, c := range candidates {
			key := positionIDs[c.fen] + "|" + c.moveUci
			if seen[key] {
				continue
			}
			seen[key] = true

			err := storage.InsertEntry(tx, storage.EntryRecord{
				EntryID:      uuid.New().String(),
				RepertoireID: repertoireID,
				OpeningID:    openingID,
				PositionID:   positionIDs[c.fen],
				MoveSan:      c.moveSan,
				MoveUci:      c.moveUci,
				Interval:     defaults.Interval,
				EaseFactor:   defaults.EaseFactor,
				Repetitions:  defaults.Repetitions,
				Phase:        defaults.Phase.String(),
				LearningStep: defaults.LearningStep,
				NextReview:   defaults.NextReviewDate,
			})
			if err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return created, nil
}

// replayLine walks the moves from the starting position and snapshots the
// pre-move position at every ply where the studying color is to move. Replay
// always runs to completion: turn order is what identifies the user's plies.
func replayLine(color core.Color, sanMoves, uciMoves []string) ([]candidate, error) {
	b := board.New()
	candidates := make([]candidate, 0, (len(uciMoves)+1)/2)

	for i, uci := range uciMoves {
		if b.Turn() == color {
			candidates = append(candidates, candidate{
				fen:     b.FEN(),
				moveSan: sanMoves[i],
				moveUci: uci,
			})
		}

		next, err := b.MakeUCIMove(uci)
		if err != nil {
			return nil, fmt.Errorf("%w: move %d (%s): %v", ErrInvalidMoveInLine, i+1, sanMoves[i], err)
		}
		b = next
	}

	return candidates, nil
}
