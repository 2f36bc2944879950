// Package skills converts the loose skill descriptors returned by the AI
// provider into canonical records.
package skills

import (
	"strings"

	"github.com/praxisapp/praxis-backend/internal/model"
)

const (
	minLevel = 1
	maxLevel = 3

	// Defaults applied when the provider returns structured descriptors with
	// missing fields.
	defaultConfidence = 0.8

	// Defaults applied when the provider returned only bare skill names.
	bareNameLevel      = 2
	bareNameConfidence = 0.75
)

// Normalize maps provider skill descriptors into canonical skills. Levels
// outside [1,3] are saturated rather than rejected, missing confidence falls
// back to a default, and AI-sourced skills are always marked verified.
// Malformed descriptors degrade to defaults; Normalize never fails.
func Normalize(descriptors []model.SkillDescriptor) []model.Skill {
	result := make([]model.Skill, 0, len(descriptors))

	for _, d := range descriptors {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			continue
		}

		skill := model.Skill{
			Name:       name,
			Level:      bareNameLevel,
			Confidence: bareNameConfidence,
			Verified:   true,
		}

		if d.Level != nil || d.Confidence != nil {
			skill.Level = clampLevel(d.Level)
			skill.Confidence = defaultConfidence
			if d.Confidence != nil && *d.Confidence >= 0 && *d.Confidence <= 1 {
				skill.Confidence = *d.Confidence
			}
		}

		result = append(result, skill)
	}

	return result
}

func clampLevel(level *int) int {
	if level == nil {
		return bareNameLevel
	}
	if *level < minLevel {
		return minLevel
	}
	if *level > maxLevel {
		return maxLevel
	}
	return *level
}
