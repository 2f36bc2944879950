package gemini

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/praxisapp/praxis-backend/internal/model"
)

const (
	// Applied when the provider omits or garbles confidence_score.
	defaultConfidenceScore = 0.7
	// Applied when a job suggestion omits its match score.
	defaultJobMatch = 70
)

// parseAnalysis decodes the provider reply into an analysis plus raw skill
// descriptors. The reply may be wrapped in a markdown code fence. Missing
// optional fields fall back to defaults; a reply that is not a JSON object
// fails with ErrMalformedUpstreamResponse.
func parseAnalysis(raw string, kind model.MediaType) (*model.Analysis, []model.SkillDescriptor, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, nil, fmt.Errorf("parse analysis reply: %v: %w", err, model.ErrMalformedUpstreamResponse)
	}

	confidence := coerceFloat(data["confidence_score"])
	if math.IsNaN(confidence) || confidence < 0 || confidence > 1 {
		confidence = defaultConfidenceScore
	}

	analysis := &model.Analysis{
		Summary:          coerceString(data["summary"]),
		ConfidenceScore:  confidence,
		LanguageDetected: coerceString(data["language_detected"]),
		RawTranscript:    coerceString(data["raw_transcript"]),
		MediaType:        kind,
	}

	descriptors := parseSkillDescriptors(data["skills"])
	if len(descriptors) == 0 {
		descriptors = parseSkillDescriptors(data["detected_skills"])
	}

	for _, d := range descriptors {
		analysis.DetectedSkills = append(analysis.DetectedSkills, d.Name)
	}

	return analysis, descriptors, nil
}

// parseSkillDescriptors accepts both shapes the model produces: a flat list
// of names, or structured {name, level, confidence} objects.
func parseSkillDescriptors(v any) []model.SkillDescriptor {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	descriptors := make([]model.SkillDescriptor, 0, len(items))
	for _, item := range items {
		switch s := item.(type) {
		case string:
			if name := strings.TrimSpace(s); name != "" {
				descriptors = append(descriptors, model.SkillDescriptor{Name: name})
			}
		case map[string]any:
			name := coerceString(s["name"])
			if name == "" {
				continue
			}
			d := model.SkillDescriptor{Name: name}
			if level := coerceFloat(s["level"]); !math.IsNaN(level) {
				l := int(level)
				d.Level = &l
			}
			if confidence := coerceFloat(s["confidence"]); !math.IsNaN(confidence) {
				d.Confidence = &confidence
			}
			descriptors = append(descriptors, d)
		}
	}

	return descriptors
}

// parseJobs decodes the provider's job suggestions. Accepts either a bare
// JSON array or an object with a "jobs" key. Match defaults to 70 when
// absent.
func parseJobs(raw string) ([]model.Job, error) {
	cleaned := extractJSON(raw)

	var items []any
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		var wrapper map[string]any
		if err := json.Unmarshal([]byte(cleaned), &wrapper); err != nil {
			return nil, fmt.Errorf("parse jobs reply: %v: %w", err, model.ErrMalformedUpstreamResponse)
		}
		items, _ = wrapper["jobs"].([]any)
		if items == nil {
			return nil, fmt.Errorf("jobs reply has no job list: %w", model.ErrMalformedUpstreamResponse)
		}
	}

	jobs := make([]model.Job, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}

		title := coerceString(obj["title"])
		if title == "" {
			continue
		}

		match := defaultJobMatch
		if v := coerceFloat(obj["match"]); !math.IsNaN(v) {
			match = int(v)
		}
		if match < 0 {
			match = 0
		}
		if match > 100 {
			match = 100
		}

		jobs = append(jobs, model.Job{
			Title:  title,
			Match:  match,
			Salary: coerceString(obj["salary"]),
			Reason: coerceString(obj["reason"]),
		})
	}

	return jobs, nil
}

// extractJSON strips an optional markdown code fence from the reply.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		return ""
	}
}
