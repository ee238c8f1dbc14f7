package usecase

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/core/domain"
	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/core/ports"
)

// QueryAnalyzer converts a free-text query into structured constraints. Both
// strategies always succeed: the LLM-backed one degrades to the rule-based
// one on any failure instead of surfacing an error.
type QueryAnalyzer interface {
	Analyze(ctx context.Context, query string) domain.QueryConstraints
}

// Skill vocabularies for the rule-based strategy. Slices, not sets: match
// order must be deterministic so repeated calls produce identical output.
var (
	technicalSkillVocabulary = []string{
		"java", "python", "sql", "javascript", "html", "css", "selenium",
		"c++", "c#", "ruby", "php", "react", "angular", "vue", "node",
		"database", "aws", "azure", "docker", "kubernetes", "git",
	}
	behavioralSkillVocabulary = []string{
		"communication", "teamwork", "leadership", "collaboration", "personality",
		"cognitive", "behavioral", "soft skill", "interpersonal", "adaptability",
	}
)

// Ordered keyword-to-label role lookup; first match wins.
var roleKeywords = []struct {
	keyword string
	label   string
}{
	{"sales", "Sales Professional"},
	{"analyst", "Analyst"},
	{"developer", "Developer"},
	{"java", "Developer"},
	{"python", "Developer"},
	{"engineer", "Engineer"},
	{"manager", "Manager"},
	{"admin", "Administrator"},
	{"consultant", "Consultant"},
}

// Duration patterns, tried in order; the first match wins. More specific
// forms ("45 min max", ranges) come before the bare forms.
var durationPatterns = []struct {
	re   *regexp.Regexp
	kind string
}{
	{regexp.MustCompile(`(\d+)\s*(?:minute|min)s?\s*(?:max|maximum)`), "max"},
	{regexp.MustCompile(`(\d+)\s*(?:hour|hr)s?\s*(?:max|maximum)`), "max_hour"},
	{regexp.MustCompile(`(\d+)[-\s](\d+)\s*(?:minute|min)`), "range"},
	{regexp.MustCompile(`(\d+)\s*(?:hour|hr)s?`), "max_hour"},
	{regexp.MustCompile(`(\d+)\s*(?:minute|min)`), "max"},
}

// RuleAnalyzer is the keyword/regex strategy. It is both the fallback for the
// LLM strategy and the default when no LLM credential is configured.
type RuleAnalyzer struct{}

func NewRuleAnalyzer() *RuleAnalyzer {
	return &RuleAnalyzer{}
}

func (a *RuleAnalyzer) Analyze(_ context.Context, query string) domain.QueryConstraints {
	lowered := strings.ToLower(query)

	skills := make([]string, 0, 4)
	isTechnical := false
	isBehavioral := false
	for _, skill := range technicalSkillVocabulary {
		if strings.Contains(lowered, skill) {
			skills = append(skills, skill)
			isTechnical = true
		}
	}
	for _, skill := range behavioralSkillVocabulary {
		if strings.Contains(lowered, skill) {
			skills = append(skills, skill)
			isBehavioral = true
		}
	}

	minDuration, maxDuration := extractDuration(lowered)

	role := "Professional"
	for _, rk := range roleKeywords {
		if strings.Contains(lowered, rk.keyword) {
			role = rk.label
			break
		}
	}

	return domain.QueryConstraints{
		PrimaryRole:        role,
		RequiredSkills:     skills,
		IsTechnical:        isTechnical,
		IsBehavioral:       isBehavioral,
		MinDuration:        minDuration,
		MaxDuration:        maxDuration,
		PreferredTestTypes: []string{},
	}
}

func extractDuration(lowered string) (minDuration, maxDuration *int) {
	for _, p := range durationPatterns {
		match := p.re.FindStringSubmatch(lowered)
		if match == nil {
			continue
		}
		switch p.kind {
		case "max":
			if n, err := strconv.Atoi(match[1]); err == nil {
				maxDuration = &n
			}
		case "max_hour":
			if n, err := strconv.Atoi(match[1]); err == nil {
				minutes := n * 60
				maxDuration = &minutes
			}
		case "range":
			lo, errLo := strconv.Atoi(match[1])
			hi, errHi := strconv.Atoi(match[2])
			if errLo == nil && errHi == nil {
				minDuration = &lo
				maxDuration = &hi
			}
		}
		return minDuration, maxDuration
	}
	return nil, nil
}

// LLMAnalyzer prefers the external extraction service and falls back to the
// rule-based strategy on any failure within the same request.
type LLMAnalyzer struct {
	extractor ports.ConstraintExtractor
	fallback  *RuleAnalyzer
	timeout   time.Duration
	observer  PipelineObserver
}

func NewLLMAnalyzer(extractor ports.ConstraintExtractor, fallback *RuleAnalyzer, timeout time.Duration) *LLMAnalyzer {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &LLMAnalyzer{
		extractor: extractor,
		fallback:  fallback,
		timeout:   timeout,
	}
}

func (a *LLMAnalyzer) Analyze(ctx context.Context, query string) domain.QueryConstraints {
	extractCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	constraints, err := a.extractor.AnalyzeQuery(extractCtx, query)
	if err != nil {
		slog.Warn("llm_analysis_fallback", "error", err)
		if a.observer != nil {
			a.observer.ExtractionFallback()
		}
		return a.fallback.Analyze(ctx, query)
	}
	return constraints
}
