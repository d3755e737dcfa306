package subtitle

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
)

// Candidate is one subtitle search hit.
type Candidate struct {
	ID       string      `json:"id"`
	Language string      `json:"language"`
	Title    string      `json:"title"`
	Release  string      `json:"release,omitempty"`
	FileID   json.Number `json:"file_id"`
}

// String renders "language - title (release)".
func (c Candidate) String() string {
	if c.Release == "" {
		return fmt.Sprintf("%s - %s", c.Language, c.Title)
	}
	return fmt.Sprintf("%s - %s (%s)", c.Language, c.Title, c.Release)
}

// Filter keeps candidates whose rendered line fuzzily matches text, best match first.
// An empty text returns the input unchanged.
func Filter(candidates []Candidate, text string) []Candidate {
	if text == "" {
		return candidates
	}

	lines := lo.Map(candidates, func(c Candidate, _ int) string { return c.String() })
	ranks := fuzzy.RankFindNormalizedFold(text, lines)
	sort.Stable(ranks)

	return lo.Map(ranks, func(r fuzzy.Rank, _ int) Candidate {
		return candidates[r.OriginalIndex]
	})
}
