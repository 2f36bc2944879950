package model

import "time"

// MediaType identifies the kind of uploaded media.
type MediaType string

const (
	MediaTypeVideo MediaType = "video"
	MediaTypeImage MediaType = "image"
)

// Status is the lifecycle state of a processing record. A record moves from
// StatusProcessing to exactly one of the terminal states and never back.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status is done or failed.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// Skill is a single named competency extracted from an upload.
type Skill struct {
	Name       string  `json:"name"`
	Level      int     `json:"level"` // 1-3
	Verified   bool    `json:"verified"`
	Confidence float64 `json:"confidence,omitempty"` // 0-1
}

// Job is a suggested occupation match with a score and rationale.
type Job struct {
	Title  string `json:"title"`
	Match  int    `json:"match"` // 0-100
	Salary string `json:"salary,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Analysis is the provider's structured interpretation of one media upload.
type Analysis struct {
	Summary          string    `json:"summary"`
	DetectedSkills   []string  `json:"detected_skills"`
	ConfidenceScore  float64   `json:"confidence_score"` // 0-1
	LanguageDetected string    `json:"language_detected,omitempty"`
	RawTranscript    string    `json:"raw_transcript,omitempty"`
	MediaType        MediaType `json:"media_type"`
}

// SkillDescriptor is the loosely-typed skill shape coming back from the
// provider, before normalization. Level and Confidence are pointers so a
// missing field can be told apart from a zero value.
type SkillDescriptor struct {
	Name       string
	Level      *int
	Confidence *float64
}

// ProcessingRecord tracks one upload through the pipeline.
type ProcessingRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Status    Status    `json:"status"`
	MediaType MediaType `json:"media_type"`
	CreatedAt time.Time `json:"created_at"`
}
