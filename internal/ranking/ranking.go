// Package ranking orders an author's publications by relevance to a search
// query so downstream summarization only sees the most pertinent works.
// Scoring is lexical: query terms are matched against each publication's
// title and venue, with citation counts breaking ties.
package ranking

import (
	"sort"
	"strings"
	"unicode"

	"github.com/vnykmshr/papertrail/internal/domain"
)

// MaxPublications bounds how many publications are considered for ranking.
const MaxPublications = 50

// Ranker scores publications against a query.
type Ranker struct {
	topK int
}

// New creates a Ranker returning at most topK publications. Panics if topK
// is not positive.
func New(topK int) *Ranker {
	if topK <= 0 {
		panic("ranking: topK must be positive")
	}
	return &Ranker{topK: topK}
}

// TopK returns the maximum number of publications Rank produces.
func (r *Ranker) TopK() int {
	return r.topK
}

type scoredIndex struct {
	index int
	score float64
}

// Rank returns the publications most relevant to query, most relevant
// first, at most TopK of them.
func (r *Ranker) Rank(query string, pubs []domain.Publication) []domain.Publication {
	if len(pubs) > MaxPublications {
		pubs = pubs[:MaxPublications]
	}

	terms := tokenize(query)
	if len(terms) == 0 || len(pubs) == 0 {
		if len(pubs) > r.topK {
			return pubs[:r.topK]
		}
		return pubs
	}

	maxCitations := 0
	for _, p := range pubs {
		if p.NumCitations > maxCitations {
			maxCitations = p.NumCitations
		}
	}

	scored := make([]scoredIndex, len(pubs))
	for i, p := range pubs {
		score := overlapScore(terms, tokenize(p.Bib.Title+" "+p.Bib.Citation))
		// Citation count contributes a small boost so equally relevant
		// works order by impact.
		if maxCitations > 0 {
			score += 0.1 * float64(p.NumCitations) / float64(maxCitations)
		}
		scored[i] = scoredIndex{index: i, score: score}
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].score > scored[b].score
	})

	k := r.topK
	if k > len(scored) {
		k = len(scored)
	}

	ranked := make([]domain.Publication, 0, k)
	for _, s := range scored[:k] {
		ranked = append(ranked, pubs[s.index])
	}
	return ranked
}

// overlapScore is the fraction of query terms present in the candidate's
// token set.
func overlapScore(queryTerms, candidateTerms []string) float64 {
	if len(queryTerms) == 0 {
		return 0
	}

	candidates := make(map[string]struct{}, len(candidateTerms))
	for _, term := range candidateTerms {
		candidates[term] = struct{}{}
	}

	matched := 0
	for _, term := range queryTerms {
		if _, ok := candidates[term]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTerms))
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	terms := make([]string, 0, len(fields))
	for _, field := range fields {
		if len(field) > 2 {
			terms = append(terms, field)
		}
	}
	return terms
}
