package groq

import (
	"fmt"
	"strings"

	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/core/domain"
)

const analysisSystemPrompt = "You are an expert HR analyst specializing in test assessment matching. " +
	"Extract structured information from job queries."

const scoringSystemPrompt = "You are an expert at matching assessments to job requirements."

func buildAnalysisPrompt(query string) string {
	return fmt.Sprintf(`Analyze this job description/query and extract structured information.

QUERY: %q

Extract the following information as a JSON object:
1. "primary_role": The main job title/role (e.g., "Java Developer", "Sales Manager")
2. "technical_skills": List of required technical skills/hard skills
3. "behavioral_skills": List of required behavioral/soft skills
4. "duration_constraints": Object with "min_duration_minutes" and "max_duration_minutes" (null if unspecified)
5. "preferred_test_types": List of assessment types mentioned (e.g., "cognitive", "personality", "technical", "behavioral")

Return ONLY the JSON object. No explanations.
Example format:
{
    "primary_role": "Java Developer",
    "technical_skills": ["java", "spring", "sql"],
    "behavioral_skills": ["communication", "teamwork"],
    "duration_constraints": {"min_duration_minutes": null, "max_duration_minutes": 45},
    "preferred_test_types": ["cognitive", "technical"]
}`, query)
}

func buildScoringPrompt(query string, assessment domain.Assessment) string {
	skills := "Not specified"
	if len(assessment.Skills) > 0 {
		skills = strings.Join(assessment.Skills, ", ")
	}

	return fmt.Sprintf(`Score how relevant this assessment is for the given job query.

JOB QUERY: %q

ASSESSMENT:
Description: %s
Skills: %s

Provide a JSON object with these scores (0.0 to 1.0):
1. "skill_relevance": How well the assessment matches required skills
2. "role_relevance": How appropriate for the job role
3. "overall_relevance": Overall suitability

Return ONLY the JSON object.
Example:
{"skill_relevance": 0.8, "role_relevance": 0.7, "overall_relevance": 0.75}`, query, assessment.Description, skills)
}
