package notes

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/noterbot/core/logger"
)

const component = "service.notes"

// Service owns all reads and writes of per-user note stores. No other
// component touches the notes tables directly.
type Service struct {
	db *sqlx.DB
}

// NewService wires the store service to an open database handle.
func NewService(db *sqlx.DB) *Service {
	return &Service{db: db}
}

// Init creates the per-user store if absent. Returns true when a new store
// was created, false when one already existed. Idempotent.
func (s *Service) Init(ctx context.Context, userID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO note_stores (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`,
		userID,
	)
	if err != nil {
		return false, s.fail(ctx, "store.init", userID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, s.fail(ctx, "store.init", userID, err)
	}
	created := affected > 0
	if created {
		logger.Info(ctx, component, "store.created", slog.Int64("user_id", userID))
	} else {
		logger.Debug(ctx, component, "store.exists", slog.Int64("user_id", userID))
	}
	return created, nil
}

// Add validates the text, assigns the next id under a row lock and stores the
// note with today's date stamp. The counter only ever moves forward, so ids
// are never reused even after deletes.
func (s *Service) Add(ctx context.Context, userID int64, text string) (Note, error) {
	trimmed, err := ValidateText(text)
	if err != nil {
		return Note{}, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return Note{}, s.fail(ctx, "notes.add", userID, err)
	}
	defer tx.Rollback() //nolint:errcheck

	var nextID int64
	err = tx.GetContext(ctx, &nextID,
		`SELECT next_note_id FROM note_stores WHERE user_id = $1 FOR UPDATE`,
		userID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, &NotInitializedError{UserID: userID}
	}
	if err != nil {
		return Note{}, s.fail(ctx, "notes.add", userID, err)
	}

	note := Note{
		UserID:      userID,
		ID:          nextID,
		Text:        trimmed,
		CreatedDate: Today(),
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO notes (user_id, id, text, created_date) VALUES ($1, $2, $3, $4)`,
		note.UserID, note.ID, note.Text, note.CreatedDate,
	); err != nil {
		return Note{}, s.fail(ctx, "notes.add", userID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE note_stores SET next_note_id = next_note_id + 1 WHERE user_id = $1`,
		userID,
	); err != nil {
		return Note{}, s.fail(ctx, "notes.add", userID, err)
	}
	if err := tx.Commit(); err != nil {
		return Note{}, s.fail(ctx, "notes.add", userID, err)
	}

	logger.Info(ctx, component, "note.added",
		slog.Int64("user_id", userID),
		slog.Int64("note_id", note.ID),
		slog.Int("text_len", len(note.Text)),
	)
	return note, nil
}

// List returns the user's notes ordered by id ascending. An empty store
// returns an empty slice, not an error.
func (s *Service) List(ctx context.Context, userID int64) ([]Note, error) {
	if err := s.requireStore(ctx, userID); err != nil {
		return nil, err
	}

	var out []Note
	err := s.db.SelectContext(ctx, &out,
		`SELECT user_id, id, text, created_date FROM notes WHERE user_id = $1 ORDER BY id ASC`,
		userID,
	)
	if err != nil {
		return nil, s.fail(ctx, "notes.list", userID, err)
	}
	logger.Debug(ctx, component, "notes.listed",
		slog.Int64("user_id", userID),
		slog.Int("notes_total", len(out)),
	)
	return out, nil
}

// Update replaces the text of an existing note; id and date stay unchanged.
func (s *Service) Update(ctx context.Context, userID, noteID int64, text string) (Note, error) {
	trimmed, err := ValidateText(text)
	if err != nil {
		return Note{}, err
	}
	if err := s.requireStore(ctx, userID); err != nil {
		return Note{}, err
	}

	var note Note
	err = s.db.GetContext(ctx, &note,
		`UPDATE notes SET text = $1 WHERE user_id = $2 AND id = $3
		 RETURNING user_id, id, text, created_date`,
		trimmed, userID, noteID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, &NotFoundError{NoteID: noteID}
	}
	if err != nil {
		return Note{}, s.fail(ctx, "notes.update", userID, err)
	}

	logger.Info(ctx, component, "note.updated",
		slog.Int64("user_id", userID),
		slog.Int64("note_id", noteID),
		slog.Int("text_len", len(trimmed)),
	)
	return note, nil
}

// Delete removes exactly one note. Remaining ids keep their numbers.
func (s *Service) Delete(ctx context.Context, userID, noteID int64) error {
	if err := s.requireStore(ctx, userID); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM notes WHERE user_id = $1 AND id = $2`,
		userID, noteID,
	)
	if err != nil {
		return s.fail(ctx, "notes.delete", userID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return s.fail(ctx, "notes.delete", userID, err)
	}
	if affected == 0 {
		return &NotFoundError{NoteID: noteID}
	}

	logger.Info(ctx, component, "note.deleted",
		slog.Int64("user_id", userID),
		slog.Int64("note_id", noteID),
	)
	return nil
}

// Reset removes all of the user's notes and restarts the id counter at 1.
func (s *Service) Reset(ctx context.Context, userID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return s.fail(ctx, "notes.reset", userID, err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		`UPDATE note_stores SET next_note_id = 1 WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return s.fail(ctx, "notes.reset", userID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return s.fail(ctx, "notes.reset", userID, err)
	}
	if affected == 0 {
		return &NotInitializedError{UserID: userID}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM notes WHERE user_id = $1`,
		userID,
	); err != nil {
		return s.fail(ctx, "notes.reset", userID, err)
	}
	if err := tx.Commit(); err != nil {
		return s.fail(ctx, "notes.reset", userID, err)
	}

	logger.Info(ctx, component, "store.reset", slog.Int64("user_id", userID))
	return nil
}

// Stats reports totals across all stores for the admin command.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.GetContext(ctx, &st,
		`SELECT (SELECT COUNT(*) FROM note_stores) AS users,
		        (SELECT COUNT(*) FROM notes)       AS notes`,
	)
	if err != nil {
		return Stats{}, s.fail(ctx, "notes.stats", 0, err)
	}
	return st, nil
}

func (s *Service) requireStore(ctx context.Context, userID int64) error {
	var one int
	err := s.db.GetContext(ctx, &one,
		`SELECT 1 FROM note_stores WHERE user_id = $1`,
		userID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return &NotInitializedError{UserID: userID}
	}
	if err != nil {
		return s.fail(ctx, "store.check", userID, err)
	}
	return nil
}

func (s *Service) fail(ctx context.Context, op string, userID int64, err error) error {
	attrs := []slog.Attr{
		slog.String("op", op),
		slog.String("err", err.Error()),
	}
	if userID != 0 {
		attrs = append(attrs, slog.Int64("user_id", userID))
	}
	logger.Error(ctx, component, op+".fail", attrs...)
	return &StorageError{Op: op, Err: err}
}
