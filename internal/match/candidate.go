package match

import (
	"fmt"
	"sort"
)

const (
	// MinScore is the similarity a candidate needs to be suggested.
	MinScore = 0.5
	// MinGap is the lead the best candidate needs over the runner-up.
	MinGap = 0.1
)

// Candidate is a known name and its similarity to the unknown one.
type Candidate struct {
	Name  string
	Score float64
}

// CandidateList is sorted by descending score, then by name.
type CandidateList []Candidate

// Rank scores every known name against name.
func Rank(name string, known []string) CandidateList {
	out := make(CandidateList, 0, len(known))
	for _, k := range known {
		out = append(out, Candidate{Name: k, Score: Score(name, k)})
	}

	sort.Sort(out)

	return out
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
func (c CandidateList) Less(i, j int) bool {
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}

	return c[i].Name < c[j].Name
}

// Best returns the best candidate, or nil if there is none.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// HighConfidence returns the best candidate when it scores at least minScore
// and leads the runner-up by at least minGap, nil otherwise.
func (c CandidateList) HighConfidence(minScore, minGap float64) *Candidate {
	best := c.Best()
	if best == nil || best.Score < minScore {
		return nil
	}

	if len(c) > 1 && c[0].Score-c[1].Score < minGap {
		return nil
	}

	return best
}

// Suggest returns the known name name was most likely meant to be.
func Suggest(name string, known []string) (string, bool) {
	best := Rank(name, known).HighConfidence(MinScore, MinGap)
	if best == nil {
		return "", false
	}

	return best.Name, true
}

// Hint formats the suggestion for name as a message suffix, or "" when
// there is none.
func Hint(name string, known []string) string {
	s, ok := Suggest(name, known)
	if !ok {
		return ""
	}

	return fmt.Sprintf(" (did you mean %q?)", s)
}
