package automatic

import (
	"strings"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/domino14/othello/stats"
)

const histogramBins = 13

// Summary accumulates match results from the first player's side.
type Summary struct {
	Names [2]string
	// Tally and Margin are from Names[0]'s side.
	Tally  stats.Tally
	Margin stats.Statistic
	// BlackTally is from the side of whoever had black.
	BlackTally stats.Tally
	Nodes      uint64
	Elapsed    time.Duration

	margins []float64
	ids     map[string]struct{}
}

func NewSummary(names [2]string) *Summary {
	return &Summary{Names: names, ids: map[string]struct{}{}}
}

func (s *Summary) Add(r *GameResult) {
	m := r.MarginFor(s.Names[0])
	s.Tally.Add(m)
	s.Margin.Push(float64(m))
	s.BlackTally.Add(r.Margin)
	s.Nodes += r.Nodes
	s.Elapsed += r.Elapsed
	s.margins = append(s.margins, float64(m))
	s.ids[r.ID] = struct{}{}
}

func (s *Summary) Games() int {
	return s.Tally.Games()
}

// Distinct is the number of different games played.
func (s *Summary) Distinct() int {
	return len(s.ids)
}

func (s *Summary) String() string {
	p := message.NewPrinter(language.English)
	var sb strings.Builder
	p.Fprintf(&sb, "Games played: %d (%d distinct)\n", s.Games(), s.Distinct())
	p.Fprintf(&sb, "%s vs %s: %v\n", s.Names[0], s.Names[1], s.Tally)
	p.Fprintf(&sb, "Black: %v\n", s.BlackTally)
	p.Fprintf(&sb, "%s mean margin: %.2f  stdev: %.2f  (min %.0f, max %.0f)\n",
		s.Names[0], s.Margin.Mean(), s.Margin.Stdev(), s.Margin.Min(), s.Margin.Max())
	p.Fprintf(&sb, "Nodes: %d", s.Nodes)
	if secs := s.Elapsed.Seconds(); secs > 0 {
		p.Fprintf(&sb, " (%d per second)", int64(float64(s.Nodes)/secs))
	}
	sb.WriteString("\n")
	if len(s.margins) > 1 {
		sb.WriteString("Margin histogram:\n")
		histogram.Fprint(&sb, histogram.Hist(histogramBins, s.margins), histogram.Linear(40))
	}
	return sb.String()
}
