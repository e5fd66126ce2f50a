// Package leaderboard ranks quiz takers by cumulative score.
package leaderboard

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	defaultLimit = 10
	maxLimit     = 100
	cacheTTL     = time.Minute
)

type Entry struct {
	UserID         string  `json:"user_id"`
	Username       string  `json:"username"`
	Quizzes        int     `json:"quizzes"`
	TotalScore     int     `json:"total_score"`
	TotalQuestions int     `json:"total_questions"`
	AvgPercent     float64 `json:"avg_percent"`
}

const topAllSQL = `SELECT s.user_id, u.username, COUNT(*) AS quizzes,
		SUM(s.score) AS total_score,
		SUM(s.total) AS total_questions,
		AVG(CAST(s.score AS REAL) / s.total * 100) AS avg_percent
	FROM submissions s
	JOIN users u ON u.id = s.user_id
	WHERE s.total > 0
	GROUP BY s.user_id, u.username
	ORDER BY total_score DESC, avg_percent DESC, u.username ASC
	LIMIT $1`

const topSubjectSQL = `SELECT s.user_id, u.username, COUNT(*) AS quizzes,
		SUM(s.score) AS total_score,
		SUM(s.total) AS total_questions,
		AVG(CAST(s.score AS REAL) / s.total * 100) AS avg_percent
	FROM submissions s
	JOIN users u ON u.id = s.user_id
	WHERE s.total > 0 AND s.subject = $1
	GROUP BY s.user_id, u.username
	ORDER BY total_score DESC, avg_percent DESC, u.username ASC
	LIMIT $2`

type Repo struct{ db *sql.DB }

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

// Top ranks users by total score, with average percentage breaking ties,
// optionally within one subject.
func (r *Repo) Top(ctx context.Context, subject string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	query, args := topAllSQL, []any{limit}
	if subject != "" {
		query, args = topSubjectSQL, []any{subject, limit}
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.UserID, &e.Username, &e.Quizzes, &e.TotalScore, &e.TotalQuestions, &e.AvgPercent); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Service fronts the repo with an optional redis cache. The board tolerates
// being up to the cache TTL stale.
type Service struct {
	repo  *Repo
	cache *redis.Client // nil disables caching
	group singleflight.Group
}

func NewService(repo *Repo, cache *redis.Client) *Service {
	return &Service{repo: repo, cache: cache}
}

func (s *Service) Top(ctx context.Context, subject string, limit int) ([]Entry, error) {
	if s.cache == nil {
		return s.repo.Top(ctx, subject, limit)
	}

	key := fmt.Sprintf("leaderboard:%s:%d", subject, limit)
	if raw, err := s.cache.Get(ctx, key).Bytes(); err == nil {
		var entries []Entry
		if json.Unmarshal(raw, &entries) == nil {
			return entries, nil
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		entries, err := s.repo.Top(ctx, subject, limit)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(entries); err == nil {
			// Jitter keeps a burst of cold keys from expiring together.
			ttl := cacheTTL + time.Duration(rand.Intn(15))*time.Second
			if err := s.cache.Set(ctx, key, raw, ttl).Err(); err != nil {
				log.Printf("leaderboard: cache set: %v", err)
			}
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Entry), nil
}
