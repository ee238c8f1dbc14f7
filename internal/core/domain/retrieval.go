package domain

// QueryConstraints is the structured form of a free-text query. Built once per
// request by the query analyzer and discarded with the request.
type QueryConstraints struct {
	PrimaryRole        string   `json:"primary_role"`
	RequiredSkills     []string `json:"required_skills"`
	IsTechnical        bool     `json:"is_technical"`
	IsBehavioral       bool     `json:"is_behavioral"`
	MinDuration        *int     `json:"min_duration,omitempty"`
	MaxDuration        *int     `json:"max_duration,omitempty"`
	PreferredTestTypes []string `json:"preferred_test_types"`
}

// RetrievalFilter carries the hard filters applied after score fusion.
type RetrievalFilter struct {
	MinDuration        *int
	MaxDuration        *int
	PreferredTestTypes []string
}

// Filter derives the retrieval hard filters from the constraints.
func (c QueryConstraints) Filter() RetrievalFilter {
	return RetrievalFilter{
		MinDuration:        c.MinDuration,
		MaxDuration:        c.MaxDuration,
		PreferredTestTypes: c.PreferredTestTypes,
	}
}

// ScoredCandidate pairs an assessment with a relevance score in [0,1].
// Ordering within a slice is significant: equal scores keep their upstream
// relative order.
type ScoredCandidate struct {
	Assessment *Assessment `json:"assessment"`
	Score      float64     `json:"score"`
}

// VectorHit is one nearest-neighbour result: the external assessment id and
// the raw distance reported by the vector index (lower is closer).
type VectorHit struct {
	ID       int
	Distance float64
}
