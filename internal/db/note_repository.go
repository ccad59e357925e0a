package db

import (
	"context"
	"database/sql"
)

// Note is a row of the notes table.
type Note struct {
	NoteIdx           int64   `json:"note_idx"`
	NoteTitle         string  `json:"note_title"`
	NoteText          string  `json:"note_text"`
	CreatedOn         float64 `json:"created_on"`
	UpdatedOn         float64 `json:"updated_on"`
	UserIdx           int64   `json:"user_idx"`
	TagIdx            *int64  `json:"tag_idx"`
	ReadableCreatedOn string  `json:"readable_created_on"`
	ReadableUpdatedOn string  `json:"readable_updated_on"`
}

type NoteRepository struct {
	db *DB
}

func NewNoteRepository(db *DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) Create(ctx context.Context, userIdx int64, title, text string, tagIdx *int64) (*Note, error) {
	query := `
		INSERT INTO notes (note_title, note_text, created_on, updated_on, user_idx, tag_idx)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING note_idx
	`

	now := NowEpoch()
	note := &Note{
		NoteTitle: title,
		NoteText:  text,
		CreatedOn: now,
		UpdatedOn: now,
		UserIdx:   userIdx,
		TagIdx:    tagIdx,
	}

	err := r.db.QueryRowContext(ctx, query,
		title, text, now, now, userIdx, tagIdxValue(tagIdx),
	).Scan(&note.NoteIdx)
	if err != nil {
		return nil, err
	}

	note.ReadableCreatedOn = FormatEpoch(note.CreatedOn)
	note.ReadableUpdatedOn = FormatEpoch(note.UpdatedOn)
	return note, nil
}

// ListByUser returns the user's notes, newest row last. A user with no
// notes gets an empty slice, not an error.
func (r *NoteRepository) ListByUser(ctx context.Context, userIdx int64) ([]*Note, error) {
	query := `
		SELECT note_idx, note_title, note_text, created_on, updated_on, user_idx, tag_idx
		FROM notes
		WHERE user_idx = $1
		ORDER BY note_idx
	`

	rows, err := r.db.QueryContext(ctx, query, userIdx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []*Note{}
	for rows.Next() {
		note := &Note{}
		var tag sql.NullInt64
		if err := rows.Scan(
			&note.NoteIdx, &note.NoteTitle, &note.NoteText,
			&note.CreatedOn, &note.UpdatedOn, &note.UserIdx, &tag,
		); err != nil {
			return nil, err
		}
		if tag.Valid {
			note.TagIdx = &tag.Int64
		}
		note.ReadableCreatedOn = FormatEpoch(note.CreatedOn)
		note.ReadableUpdatedOn = FormatEpoch(note.UpdatedOn)
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return notes, nil
}

// Count returns the total number of notes across all users.
func (r *NoteRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func tagIdxValue(tagIdx *int64) any {
	if tagIdx == nil {
		return nil
	}
	return *tagIdx
}
