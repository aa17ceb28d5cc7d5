package repos

import "github.com/jmoiron/sqlx"

type SubmissionRepo struct{ db *sqlx.DB }

func NewSubmissionRepo(db *sqlx.DB) *SubmissionRepo { return &SubmissionRepo{db: db} }

type SubmissionRow struct {
	ID         string `db:"id"`
	Form       string `db:"form"`
	Collection string `db:"collection"`
	ItemID     string `db:"item_id"`
	SessionID  string `db:"session_id"`
	Status     string `db:"status"`
	Message    string `db:"message"`
	CreatedAt  string `db:"created_at"`
}

// Record inserts one submission outcome.
func (r *SubmissionRepo) Record(s SubmissionRow) error {
	_, err := r.db.Exec(`
	  INSERT INTO submissions(id, form, collection, item_id, session_id, status, message, created_at)
	  VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, s.ID, s.Form, s.Collection, s.ItemID, s.SessionID, s.Status, s.Message)
	return err
}

func (r *SubmissionRepo) ListLatest(limit int) ([]SubmissionRow, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []SubmissionRow
	err := r.db.Select(&out, `
		SELECT id, form, COALESCE(collection,'') AS collection, COALESCE(item_id,'') AS item_id,
		       COALESCE(session_id,'') AS session_id, status, COALESCE(message,'') AS message, created_at
		FROM submissions
		ORDER BY datetime(created_at) DESC, rowid DESC
		LIMIT ?
	`, limit)
	return out, err
}

// ListBySession returns the submissions made from one browser session.
func (r *SubmissionRepo) ListBySession(sessionID string) ([]SubmissionRow, error) {
	var out []SubmissionRow
	err := r.db.Select(&out, `
		SELECT id, form, COALESCE(collection,'') AS collection, COALESCE(item_id,'') AS item_id,
		       COALESCE(session_id,'') AS session_id, status, COALESCE(message,'') AS message, created_at
		FROM submissions
		WHERE session_id = ?
		ORDER BY datetime(created_at) DESC, rowid DESC
	`, sessionID)
	return out, err
}
