package quiz

import (
	"context"
	"errors"

	"github.com/quizforge/quizforge/internal/difficulty"
)

// ErrNotFound reports a quiz or submission ID that does not exist.
var ErrNotFound = errors.New("quiz: not found")

// ListOpts bounds list queries.
type ListOpts struct {
	Limit  int
	Offset int
}

// Store is the persistence boundary for quizzes and submissions. GetQuiz
// returns the answer key intact; callers redact before handing a quiz to
// its taker.
type Store interface {
	PutQuiz(ctx context.Context, q Quiz) error
	GetQuiz(ctx context.Context, id string) (Quiz, error)
	ListQuizzes(ctx context.Context, userID string, opts ListOpts) ([]Summary, error)

	PutSubmission(ctx context.Context, s Submission) error
	GetSubmission(ctx context.Context, id string) (Submission, error)
	ListSubmissions(ctx context.Context, userID string, opts ListOpts) ([]Submission, error)
	MarkEmailSent(ctx context.Context, submissionID string) error

	// RecentResults feeds the difficulty estimator: score/total pairs for
	// the user, most recent first, optionally filtered by subject.
	RecentResults(ctx context.Context, userID, subject string, limit int) ([]difficulty.Result, error)
}
