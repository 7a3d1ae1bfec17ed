// FILE: internal/server/service/delete.go
package service

import (
	"database/sql"
	"errors"
	"fmt"

	"repertoire/internal/board"
	"repertoire/internal/server/storage"
)

// DeleteEntryTree deletes one entry and every entry reachable from it in the
// implicit line tree, then sweeps positions left without any referencing
// entry. Returns the deleted entry ids. All-or-nothing: a failure anywhere
// rolls the whole cascade back.
//
// There is no stored parent/child edge. A descendant of entry A is any entry
// in the same repertoire whose position is reachable by applying A's expected
// move and then one legal opponent reply, recursively. Transpositions make
// this a DAG over positions, so discovery tracks a result set rather than a
// list: a shared descendant is visited once and deleted once.
func (s *Service) DeleteEntryTree(userID, entryID string) ([]string, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	var deleted []string
	err := s.store.WithTx(func(tx *sql.Tx) error {
		root, err := storage.GetOwnedEntry(tx, entryID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrEntryNotFound
			}
			return err
		}
		if root.OwnerUserID != userID {
			return ErrEntryForbidden
		}

		visited := map[string]bool{root.EntryID: true}
		order := []string{root.EntryID}
		frontier := []storage.EntryRecord{root.EntryRecord}

		for len(frontier) > 0 {
			var next []storage.EntryRecord
			for _, e := range frontier {
				children, err := childEntries(tx, e)
				if err != nil {
					return err
				}
				for _, c := range children {
					if visited[c.EntryID] {
						continue
					}
					visited[c.EntryID] = true
					order = append(order, c.EntryID)
					next = append(next, c)
				}
			}
			frontier = next
		}

		if _, err := storage.DeleteEntriesByID(tx, order); err != nil {
			return err
		}
		if _, err := storage.DeleteOrphanPositions(tx); err != nil {
			return err
		}

		deleted = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

// childEntries finds the entries one ply below e: play e's expected move,
// then match every legal opponent reply's position against the repertoire.
func childEntries(q storage.Querier, e storage.EntryRecord) ([]storage.EntryRecord, error) {
	b, err := board.ParseFEN(e.FEN)
	if err != nil {
		return nil, fmt.Errorf("entry %s has invalid position: %w", e.EntryID, err)
	}
	after, err := b.MakeUCIMove(e.MoveUci)
	if err != nil {
		return nil, fmt.Errorf("entry %s has illegal expected move: %w", e.EntryID, err)
	}

	return storage.EntriesByFENs(q, e.RepertoireID, after.SuccessorFENs())
}
