// Package stats keeps running statistics over self-play results.
package stats

import (
	"fmt"
	"math"
)

const Epsilon = 1e-6

func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Statistic is a running mean and variance (Welford's algorithm), plus
// the extremes seen.
type Statistic struct {
	n        int
	mean     float64
	m2       float64
	min, max float64
}

func (s *Statistic) Push(val float64) {
	s.n++
	if s.n == 1 {
		s.mean, s.m2 = val, 0
		s.min, s.max = val, val
		return
	}
	delta := val - s.mean
	s.mean += delta / float64(s.n)
	s.m2 += delta * (val - s.mean)
	s.min = min(s.min, val)
	s.max = max(s.max, val)
}

func (s *Statistic) Mean() float64 {
	return s.mean
}

func (s *Statistic) Variance() float64 {
	if s.n <= 1 {
		return 0
	}
	return s.m2 / float64(s.n-1)
}

func (s *Statistic) Stdev() float64 {
	return math.Sqrt(s.Variance())
}

// StandardError is the standard error of the mean.
func (s *Statistic) StandardError() float64 {
	if s.n == 0 {
		return 0
	}
	return math.Sqrt(s.Variance() / float64(s.n))
}

func (s *Statistic) Iterations() int {
	return s.n
}

func (s *Statistic) Min() float64 {
	return s.min
}

func (s *Statistic) Max() float64 {
	return s.max
}

// Tally counts game results from one player's side. A draw counts as half
// a win.
type Tally struct {
	Wins, Draws, Losses int
}

// Add records a final margin.
func (t *Tally) Add(margin int) {
	switch {
	case margin > 0:
		t.Wins++
	case margin < 0:
		t.Losses++
	default:
		t.Draws++
	}
}

func (t Tally) Games() int {
	return t.Wins + t.Draws + t.Losses
}

// Score is the fraction of points won.
func (t Tally) Score() float64 {
	if t.Games() == 0 {
		return 0
	}
	return (float64(t.Wins) + 0.5*float64(t.Draws)) / float64(t.Games())
}

// ScoreInterval is the normal-approximation interval around Score at the
// given confidence, in percent.
func (t Tally) ScoreInterval(confidence float64) (lo, hi float64) {
	n := float64(t.Games())
	if n == 0 {
		return 0, 1
	}
	p := t.Score()
	// per-game variance of a 1, 0.5, 0 outcome
	v := (float64(t.Wins)*(1-p)*(1-p) + float64(t.Draws)*(0.5-p)*(0.5-p) +
		float64(t.Losses)*p*p) / n
	half := ZVal(confidence) * math.Sqrt(v/n)
	return max(0, p-half), min(1, p+half)
}

func (t Tally) String() string {
	lo, hi := t.ScoreInterval(95)
	return fmt.Sprintf("+%d =%d -%d (%.1f%%, 95%% CI %.1f%%-%.1f%%)",
		t.Wins, t.Draws, t.Losses, 100*t.Score(), 100*lo, 100*hi)
}
