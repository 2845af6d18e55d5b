package notes

import "time"

// MaxTextLen is the longest note text accepted, counted in runes after trimming.
const MaxTextLen = 350

// DateLayout is the creation stamp format stored alongside every note.
const DateLayout = "02/01/2006"

// Note is a single user note. IDs are assigned per user from a monotonic
// counter and are never reused, even after the note is deleted.
type Note struct {
	UserID      int64  `db:"user_id"`
	ID          int64  `db:"id"`
	Text        string `db:"text"`
	CreatedDate string `db:"created_date"`
}

// Stats aggregates store totals for the admin report.
type Stats struct {
	Users int64 `db:"users"`
	Notes int64 `db:"notes"`
}

// Today returns the creation stamp for notes added now.
func Today() string {
	return time.Now().Format(DateLayout)
}
