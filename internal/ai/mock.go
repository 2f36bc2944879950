package ai

import (
	"context"

	"github.com/praxisapp/praxis-backend/internal/model"
)

// MockAnalyzer returns fixed Bengali construction-trade data. Used when no
// Gemini API key is configured so the service stays demoable end to end.
type MockAnalyzer struct{}

// NewMockAnalyzer returns a MockAnalyzer.
func NewMockAnalyzer() *MockAnalyzer {
	return &MockAnalyzer{}
}

// AnalyzeMedia returns the fixed mock analysis and skills without touching
// the uploaded bytes.
func (m *MockAnalyzer) AnalyzeMedia(_ context.Context, _ []byte, _ string, kind model.MediaType) (*model.Analysis, []model.SkillDescriptor, error) {
	analysis := &model.Analysis{
		Summary:          "ভিডিওতে নির্মাণ কাজের দক্ষতা প্রদর্শিত হয়েছে",
		DetectedSkills:   []string{"ইট বসানো", "সিমেন্ট মিশ্রণ", "নির্মাণ তত্ত্বাবধান"},
		ConfidenceScore:  0.85,
		LanguageDetected: "bn",
		MediaType:        kind,
	}

	descriptors := []model.SkillDescriptor{
		{Name: "ইট বসানো", Level: intPtr(3)},
		{Name: "সিমেন্ট মিশ্রণ", Level: intPtr(2)},
		{Name: "নির্মাণ তত্ত্বাবধান", Level: intPtr(2)},
	}

	return analysis, descriptors, nil
}

// MockMatcher returns fixed Bengali job matches.
type MockMatcher struct{}

// NewMockMatcher returns a MockMatcher.
func NewMockMatcher() *MockMatcher {
	return &MockMatcher{}
}

// MatchJobs returns the fixed mock job list regardless of input.
func (m *MockMatcher) MatchJobs(_ context.Context, _ []model.Skill, _ string) ([]model.Job, error) {
	return []model.Job{
		{
			Title:  "সাইট ফোরম্যান",
			Match:  85,
			Salary: "৳25,000–30,000",
			Reason: "ভিডিওতে সঠিক ইট বসানোর প্রমাণ পাওয়া গেছে",
		},
		{
			Title:  "নির্মাণ কর্মচারী",
			Match:  72,
			Salary: "৳18,000–22,000",
			Reason: "সিমেন্ট মিশ্রণ এবং নিরাপত্তা সচেতনতা দেখা গেছে",
		},
		{
			Title:  "প্রকল্প ব্যবস্থাপক",
			Match:  65,
			Salary: "৳35,000–45,000",
			Reason: "নির্মাণ অভিজ্ঞতা এবং তত্ত্বাবধান দক্ষতা প্রদর্শিত হয়েছে",
		},
	}, nil
}

func intPtr(v int) *int { return &v }
