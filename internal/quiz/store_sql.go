package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/quizforge/quizforge/internal/difficulty"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutQuiz(ctx context.Context, q Quiz) error {
	qj, err := json.Marshal(q.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quizzes (id,user_id,subject,difficulty,questions_json,reasoning,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		q.ID, q.UserID, q.Subject, q.Difficulty, string(qj), q.Reasoning, q.CreatedAt)
	return err
}

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,user_id,subject,difficulty,questions_json,reasoning,created_at
		FROM quizzes WHERE id=$1`, id)
	var q Quiz
	var qjson string
	if err := row.Scan(&q.ID, &q.UserID, &q.Subject, &q.Difficulty, &qjson, &q.Reasoning, &q.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, ErrNotFound
		}
		return Quiz{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &q.Questions); err != nil {
		return Quiz{}, fmt.Errorf("decode questions: %w", err)
	}
	return q, nil
}

func (s *SQLStore) ListQuizzes(ctx context.Context, userID string, opts ListOpts) ([]Summary, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id,subject,difficulty,questions_json,created_at
		FROM quizzes WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var sm Summary
		var qjson string
		if err := rows.Scan(&sm.ID, &sm.Subject, &sm.Difficulty, &qjson, &sm.CreatedAt); err != nil {
			return nil, err
		}
		var questions []Question
		if err := json.Unmarshal([]byte(qjson), &questions); err != nil {
			return nil, fmt.Errorf("decode questions: %w", err)
		}
		sm.NumQuestions = len(questions)
		out = append(out, sm)
	}
	return out, rows.Err()
}

func (s *SQLStore) PutSubmission(ctx context.Context, sub Submission) error {
	aj, err := json.Marshal(sub.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	if sub.Suggestions == nil {
		sub.Suggestions = []string{}
	}
	sj, err := json.Marshal(sub.Suggestions)
	if err != nil {
		return fmt.Errorf("marshal suggestions: %w", err)
	}
	sent := 0
	if sub.EmailSent {
		sent = 1
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO submissions (id,quiz_id,user_id,subject,score,total,answers_json,suggestions_json,email_sent,submitted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		sub.ID, sub.QuizID, sub.UserID, sub.Subject, sub.Score, sub.Total, string(aj), string(sj), sent, sub.SubmittedAt)
	return err
}

func (s *SQLStore) GetSubmission(ctx context.Context, id string) (Submission, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,quiz_id,user_id,subject,score,total,answers_json,suggestions_json,email_sent,submitted_at
		FROM submissions WHERE id=$1`, id)
	sub, err := scanSubmission(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Submission{}, ErrNotFound
	}
	return sub, err
}

func (s *SQLStore) ListSubmissions(ctx context.Context, userID string, opts ListOpts) ([]Submission, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id,quiz_id,user_id,subject,score,total,answers_json,suggestions_json,email_sent,submitted_at
		FROM submissions WHERE user_id=$1 ORDER BY submitted_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *SQLStore) MarkEmailSent(ctx context.Context, submissionID string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE submissions SET email_sent=1 WHERE id=$1`, submissionID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) RecentResults(ctx context.Context, userID, subject string, limit int) ([]difficulty.Result, error) {
	if limit <= 0 {
		limit = difficulty.HistoryWindow
	}
	query := `SELECT score,total FROM submissions WHERE user_id=$1 ORDER BY submitted_at DESC LIMIT $2`
	args := []any{userID, limit}
	if subject != "" {
		query = `SELECT score,total FROM submissions WHERE user_id=$1 AND subject=$2 ORDER BY submitted_at DESC LIMIT $3`
		args = []any{userID, subject, limit}
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []difficulty.Result{}
	for rows.Next() {
		var r difficulty.Result
		if err := rows.Scan(&r.Score, &r.Total); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// scanSubmission decodes one submission row; the scan argument order matches
// the SELECT column lists above.
func scanSubmission(scan func(...any) error) (Submission, error) {
	var sub Submission
	var ajson, sjson string
	var sent int
	if err := scan(&sub.ID, &sub.QuizID, &sub.UserID, &sub.Subject, &sub.Score, &sub.Total, &ajson, &sjson, &sent, &sub.SubmittedAt); err != nil {
		return Submission{}, err
	}
	if err := json.Unmarshal([]byte(ajson), &sub.Answers); err != nil {
		return Submission{}, fmt.Errorf("decode answers: %w", err)
	}
	if err := json.Unmarshal([]byte(sjson), &sub.Suggestions); err != nil {
		return Submission{}, fmt.Errorf("decode suggestions: %w", err)
	}
	sub.EmailSent = sent != 0
	return sub, nil
}
