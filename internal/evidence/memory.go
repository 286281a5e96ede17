package evidence

import (
	"context"
	"sort"
	"strings"
)

// MemorySearcher ranks in-memory chunks by keyword overlap. It backs the
// CLI path where a document is read straight from a file and no vector
// store is configured.
type MemorySearcher struct {
	chunks []string
}

// NewMemorySearcher creates a searcher over the given chunks.
func NewMemorySearcher(chunks []string) *MemorySearcher {
	kept := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c) != "" {
			kept = append(kept, c)
		}
	}
	return &MemorySearcher{chunks: kept}
}

// ChunkText splits free text into passage-sized chunks on blank lines,
// merging runs until each chunk approaches maxLen.
func ChunkText(text string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = 1200
	}
	paras := strings.Split(text, "\n\n")
	var chunks []string
	var cur strings.Builder
	for _, p := range paras {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if cur.Len() > 0 && cur.Len()+len(p) > maxLen {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteString("\n\n")
		}
		cur.WriteString(p)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

// Search scores each chunk by the fraction of query terms it contains.
func (s *MemorySearcher) Search(_ context.Context, query string, k int) ([]Passage, error) {
	if k <= 0 {
		k = 10
	}
	terms := queryTerms(query)

	scored := make([]Passage, 0, len(s.chunks))
	for _, chunk := range s.chunks {
		lower := strings.ToLower(chunk)
		var matched int
		for _, term := range terms {
			if strings.Contains(lower, term) {
				matched++
			}
		}
		score := 0.0
		if len(terms) > 0 {
			score = float64(matched) / float64(len(terms))
		}
		scored = append(scored, Passage{Content: chunk, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

func queryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?\"'()")
		// Stopword-length tokens add noise, not signal.
		if len(f) >= 4 {
			terms = append(terms, f)
		}
	}
	return terms
}
