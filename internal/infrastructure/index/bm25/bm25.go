// Package bm25 is the in-process lexical index: an Okapi BM25 corpus built
// once from catalog texts and read concurrently afterwards.
package bm25

import (
	"fmt"
	"math"
	"strings"
)

const (
	defaultK1 = 1.5
	defaultB  = 0.75
	// Floor applied to negative idf values, as a fraction of the average idf.
	idfEpsilon = 0.25
)

// Index scores the whole corpus against a tokenized query. Immutable after
// construction.
type Index struct {
	ids      []int
	termFreq []map[string]int
	docLen   []float64
	avgLen   float64
	idf      map[string]float64
	k1       float64
	b        float64
}

// New builds the corpus. Texts are lower-cased and whitespace-tokenized the
// same way queries are. ids and texts must be aligned by position.
func New(ids []int, texts []string) (*Index, error) {
	if len(ids) != len(texts) {
		return nil, fmt.Errorf("bm25: %d ids for %d texts", len(ids), len(texts))
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("bm25: empty corpus")
	}

	idx := &Index{
		ids:      append([]int(nil), ids...),
		termFreq: make([]map[string]int, len(texts)),
		docLen:   make([]float64, len(texts)),
		idf:      make(map[string]float64),
		k1:       defaultK1,
		b:        defaultB,
	}

	docFreq := make(map[string]int)
	totalLen := 0.0
	for i, text := range texts {
		tokens := Tokenize(text)
		freq := make(map[string]int, len(tokens))
		for _, token := range tokens {
			freq[token]++
		}
		idx.termFreq[i] = freq
		idx.docLen[i] = float64(len(tokens))
		totalLen += idx.docLen[i]
		for token := range freq {
			docFreq[token]++
		}
	}
	idx.avgLen = totalLen / float64(len(texts))

	n := float64(len(texts))
	idfSum := 0.0
	var negative []string
	for token, df := range docFreq {
		idf := math.Log(n-float64(df)+0.5) - math.Log(float64(df)+0.5)
		idx.idf[token] = idf
		idfSum += idf
		if idf < 0 {
			negative = append(negative, token)
		}
	}
	averageIDF := idfSum / float64(len(idx.idf))
	floor := idfEpsilon * averageIDF
	for _, token := range negative {
		idx.idf[token] = floor
	}

	return idx, nil
}

// Scores returns one raw relevance score per document, aligned by position to
// DocumentIDs.
func (idx *Index) Scores(tokens []string) []float64 {
	scores := make([]float64, len(idx.ids))
	for _, token := range tokens {
		idf, ok := idx.idf[token]
		if !ok {
			continue
		}
		for i, freq := range idx.termFreq {
			tf := float64(freq[token])
			if tf == 0 {
				continue
			}
			denom := tf + idx.k1*(1-idx.b+idx.b*idx.docLen[i]/idx.avgLen)
			scores[i] += idf * tf * (idx.k1 + 1) / denom
		}
	}
	return scores
}

// DocumentIDs returns the fixed document-id list the score array aligns to.
func (idx *Index) DocumentIDs() []int {
	return idx.ids
}

// Tokenize lower-cases and splits on whitespace.
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}
