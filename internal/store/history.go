package store

import (
	"context"
	"fmt"

	"talentd/internal/hiring"
)

// History returns the ordered transition records for an application. The
// sequence replays the stage walk exactly: record i's to_stage equals record
// i+1's from_stage, and the last to_stage equals the current stage.
func (s *Store) History(ctx context.Context, applicationID int64) ([]*hiring.TransitionRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, application_id, from_stage, to_stage, changed_by, created_at
         FROM transition_records WHERE application_id = ? ORDER BY id`,
		applicationID,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []*hiring.TransitionRecord
	for rows.Next() {
		var (
			record     hiring.TransitionRecord
			fromStage  string
			toStage    string
			createdRaw string
		)
		if err := rows.Scan(&record.ID, &record.ApplicationID, &fromStage, &toStage, &record.ChangedBy, &createdRaw); err != nil {
			return nil, err
		}
		record.FromStage = hiring.Stage(fromStage)
		record.ToStage = hiring.Stage(toStage)
		if created, err := parseTimeString(createdRaw); err == nil {
			record.CreatedAt = created
		}
		records = append(records, &record)
	}
	return records, rows.Err()
}
