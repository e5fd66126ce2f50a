// Package difficulty derives a target easy/medium/hard question split from a
// user's recent submission history.
package difficulty

import (
	"context"
	"fmt"
	"math"
)

// HistoryWindow is how many recent submissions feed one estimate.
const HistoryWindow = 10

// trendThreshold is the half-to-half percentage-point move that counts as a
// real trend; smaller moves are noise.
const trendThreshold = 10.0

// Result is one graded submission: questions correct out of total asked.
type Result struct {
	Score int
	Total int
}

// Distribution is the estimator output for one quiz-creation request. The
// three counts always sum exactly to the requested total.
type Distribution struct {
	Easy      int    `json:"easy"`
	Medium    int    `json:"medium"`
	Hard      int    `json:"hard"`
	Reasoning string `json:"reasoning"`
}

// Trend labels the direction of recent performance.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// Store provides the submission history the estimator reads. Rows come back
// most recent first.
type Store interface {
	RecentResults(ctx context.Context, userID, subject string, limit int) ([]Result, error)
}

// Estimator answers "what difficulty mix should this user's next quiz have".
type Estimator struct {
	store Store
}

func NewEstimator(store Store) *Estimator { return &Estimator{store: store} }

// Compute loads the user's recent history for the subject (all subjects when
// empty) and derives the split for total questions.
func (e *Estimator) Compute(ctx context.Context, userID, subject string, total int) (Distribution, error) {
	recent, err := e.store.RecentResults(ctx, userID, subject, HistoryWindow)
	if err != nil {
		return Distribution{}, fmt.Errorf("load submission history: %w", err)
	}
	// Rows arrive most recent first; trend analysis wants lived order.
	chrono := make([]Result, len(recent))
	for i, r := range recent {
		chrono[len(recent)-1-i] = r
	}
	return Compute(chrono, total), nil
}

// Compute derives the split from a chronologically ordered history. It is a
// pure function so the whole heuristic is testable without a store.
func Compute(history []Result, total int) Distribution {
	if total < 1 {
		total = 1
	}
	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}

	pcts := percentages(history)
	if len(pcts) == 0 {
		d := counts(40, 40, 20, total)
		d.Reasoning = "no quiz history yet; starting with a balanced 40/40/20 easy/medium/hard mix"
		return d
	}

	avg := mean(pcts)
	trend := trendOf(pcts)

	e, m, h := baseBand(avg)

	// Extra confidence adjustment inside the extreme bands.
	switch {
	case avg >= 80 && trend == TrendDeclining:
		e, h = e+10, h-10
	case avg < 40 && trend == TrendImproving:
		e, h = e-10, h+10
	}

	// Independent trend nudge; applies on top of the band shift.
	switch trend {
	case TrendImproving:
		e, h = e-5, h+5
	case TrendDeclining:
		e, h = e+5, h-5
	}

	e = clamp(e, 10, 70)
	m = clamp(m, 20, 60)
	h = clamp(h, 5, 50)
	e, m, h = renormalize(e, m, h)

	d := counts(e, m, h, total)
	d.Reasoning = fmt.Sprintf(
		"recent average %.1f%% over %d submissions, trend %s; targeting %d%% easy / %d%% medium / %d%% hard",
		avg, len(pcts), trend, e, m, h)
	return d
}

// percentages converts results to per-submission percent scores, skipping
// rows with no questions.
func percentages(history []Result) []float64 {
	out := make([]float64, 0, len(history))
	for _, r := range history {
		if r.Total <= 0 {
			continue
		}
		out = append(out, float64(r.Score)/float64(r.Total)*100)
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// trendOf compares the first half of the sequence to the second. Fewer than
// 3 points cannot carry a direction.
func trendOf(pcts []float64) Trend {
	if len(pcts) < 3 {
		return TrendStable
	}
	half := len(pcts) / 2
	diff := mean(pcts[half:]) - mean(pcts[:half])
	switch {
	case diff > trendThreshold:
		return TrendImproving
	case diff < -trendThreshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// baseBand maps the aggregate recent percentage to a base (easy, medium,
// hard) percentage triple.
func baseBand(avg float64) (int, int, int) {
	switch {
	case avg >= 80:
		return 20, 40, 40
	case avg >= 60:
		return 30, 50, 20
	case avg >= 40:
		return 50, 35, 15
	default:
		return 60, 30, 10
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// renormalize rescales the clamped triple to sum to exactly 100, forcing
// medium to absorb the rounding remainder.
func renormalize(e, m, h int) (int, int, int) {
	sum := e + m + h
	if sum != 100 && sum > 0 {
		scale := 100 / float64(sum)
		e = int(math.Round(float64(e) * scale))
		h = int(math.Round(float64(h) * scale))
	}
	m = 100 - e - h
	if m < 0 {
		if e >= h {
			e += m
		} else {
			h += m
		}
		m = 0
	}
	return e, m, h
}

// counts converts the percentage triple to integer counts with medium
// absorbing the remainder, so the three always sum exactly to total. Easy
// and medium are floored at 1 where the total allows, hard at 0.
func counts(e, m, h, total int) Distribution {
	easy := int(math.Round(float64(e) / 100 * float64(total)))
	hard := int(math.Round(float64(h) / 100 * float64(total)))
	if easy < 1 {
		easy = 1
	}
	medium := total - easy - hard
	if medium < 1 {
		need := 1 - medium
		if need > hard {
			need = hard
		}
		hard -= need
		medium += need
	}
	if medium < 1 && easy > 1 {
		shift := 1 - medium
		if shift > easy-1 {
			shift = easy - 1
		}
		easy -= shift
		medium += shift
	}
	return Distribution{Easy: easy, Medium: medium, Hard: hard}
}
