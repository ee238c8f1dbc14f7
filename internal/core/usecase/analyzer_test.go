package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/core/domain"
)

func TestRuleAnalyzerExtractsSkillsAndRole(t *testing.T) {
	analyzer := NewRuleAnalyzer()

	constraints := analyzer.Analyze(context.Background(), "Java developer who can collaborate with business teams, teamwork matters")

	if constraints.PrimaryRole != "Developer" {
		t.Fatalf("role = %q, want Developer", constraints.PrimaryRole)
	}
	if !constraints.IsTechnical {
		t.Fatal("expected technical intent")
	}
	if !constraints.IsBehavioral {
		t.Fatal("expected behavioral intent")
	}
	hasSkill := func(want string) bool {
		for _, s := range constraints.RequiredSkills {
			if s == want {
				return true
			}
		}
		return false
	}
	if !hasSkill("java") || !hasSkill("teamwork") {
		t.Fatalf("skills = %v, want java and teamwork present", constraints.RequiredSkills)
	}
}

func TestRuleAnalyzerDefaultsRoleToProfessional(t *testing.T) {
	analyzer := NewRuleAnalyzer()

	constraints := analyzer.Analyze(context.Background(), "short screening before the onsite")

	if constraints.PrimaryRole != "Professional" {
		t.Fatalf("role = %q, want Professional", constraints.PrimaryRole)
	}
	if constraints.IsTechnical || constraints.IsBehavioral {
		t.Fatalf("unexpected intent flags: %+v", constraints)
	}
}

func TestRuleAnalyzerDurationPatterns(t *testing.T) {
	cases := []struct {
		name    string
		query   string
		wantMin *int
		wantMax *int
	}{
		{"plain minutes", "assessment that can be completed in 45 minutes", nil, intPtr(45)},
		{"hour max", "1 hour max please", nil, intPtr(60)},
		{"minute range", "something in the 30-60 minute range", intPtr(30), intPtr(60)},
		{"plain hours", "a 2 hour assessment", nil, intPtr(120)},
		{"minute max", "40 minutes maximum", nil, intPtr(40)},
		{"no duration", "java developer assessment", nil, nil},
	}

	analyzer := NewRuleAnalyzer()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			constraints := analyzer.Analyze(context.Background(), tc.query)
			if !intPtrEqual(constraints.MinDuration, tc.wantMin) {
				t.Fatalf("min = %v, want %v", fmtIntPtr(constraints.MinDuration), fmtIntPtr(tc.wantMin))
			}
			if !intPtrEqual(constraints.MaxDuration, tc.wantMax) {
				t.Fatalf("max = %v, want %v", fmtIntPtr(constraints.MaxDuration), fmtIntPtr(tc.wantMax))
			}
		})
	}
}

func TestRuleAnalyzerIsDeterministic(t *testing.T) {
	analyzer := NewRuleAnalyzer()
	query := "python analyst with leadership and communication skills, 30-60 minutes"

	first := analyzer.Analyze(context.Background(), query)
	for i := 0; i < 5; i++ {
		again := analyzer.Analyze(context.Background(), query)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %+v vs %+v", i, first, again)
		}
	}
}

func TestLLMAnalyzerPrefersExtractorResult(t *testing.T) {
	extracted := domain.QueryConstraints{
		PrimaryRole:        "Sales Professional",
		RequiredSkills:     []string{"negotiation"},
		IsBehavioral:       true,
		PreferredTestTypes: []string{"Competencies"},
	}
	extractor := &fakeExtractor{constraints: extracted}
	analyzer := NewLLMAnalyzer(extractor, NewRuleAnalyzer(), 0)

	got := analyzer.Analyze(context.Background(), "sales hire")

	if extractor.calls != 1 {
		t.Fatalf("extractor calls = %d, want 1", extractor.calls)
	}
	if !reflect.DeepEqual(got, extracted) {
		t.Fatalf("constraints = %+v, want %+v", got, extracted)
	}
}

func TestLLMAnalyzerFallsBackOnExtractionError(t *testing.T) {
	extractor := &fakeExtractor{err: errors.New("upstream unavailable")}
	analyzer := NewLLMAnalyzer(extractor, NewRuleAnalyzer(), 0)
	query := "java developer, 45 minutes"

	got := analyzer.Analyze(context.Background(), query)
	want := NewRuleAnalyzer().Analyze(context.Background(), query)

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("fallback constraints = %+v, want rule-based %+v", got, want)
	}
}

func intPtr(n int) *int { return &n }

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func fmtIntPtr(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
