package pipeline

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/praxisapp/praxis-backend/internal/model"
	"github.com/praxisapp/praxis-backend/internal/registry"
)

type stubAnalyzer struct {
	analysis    *model.Analysis
	descriptors []model.SkillDescriptor
	err         error
}

func (s *stubAnalyzer) AnalyzeMedia(_ context.Context, _ []byte, _ string, _ model.MediaType) (*model.Analysis, []model.SkillDescriptor, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.analysis, s.descriptors, nil
}

type stubMatcher struct {
	jobs []model.Job
	err  error
}

func (s *stubMatcher) MatchJobs(_ context.Context, _ []model.Skill, _ string) ([]model.Job, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.jobs, nil
}

func intPtr(v int) *int { return &v }

func TestProcessSuccess(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	id := reg.Create("user-1", model.MediaTypeVideo)

	analyzer := &stubAnalyzer{
		analysis: &model.Analysis{Summary: "good work", MediaType: model.MediaTypeVideo},
		descriptors: []model.SkillDescriptor{
			{Name: "bricklaying", Level: intPtr(5)},
		},
	}
	matcher := &stubMatcher{jobs: []model.Job{{Title: "Mason", Match: 80}}}

	p := New(analyzer, matcher, reg, zap.NewNop())
	if err := p.Process(context.Background(), id, []byte("x"), "video/webm", model.MediaTypeVideo); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record, err := reg.Record(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Status != model.StatusDone {
		t.Fatalf("expected status done, got %s", record.Status)
	}

	gotSkills, err := reg.Skills(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gotSkills) != 1 {
		t.Fatalf("expected one skill, got %d", len(gotSkills))
	}
	// Normalization runs inside the pipeline: out-of-range level saturates.
	if gotSkills[0].Level != 3 {
		t.Fatalf("expected level clamped to 3, got %d", gotSkills[0].Level)
	}

	gotJobs, err := reg.Jobs(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gotJobs) != 1 || gotJobs[0].Title != "Mason" {
		t.Fatalf("unexpected jobs: %+v", gotJobs)
	}
}

func TestProcessAnalyzerFailureMarksRecordFailed(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	id := reg.Create("user-1", model.MediaTypeVideo)

	wantErr := model.ErrUnprocessableMedia
	p := New(&stubAnalyzer{err: wantErr}, &stubMatcher{}, reg, zap.NewNop())

	err := p.Process(context.Background(), id, []byte("x"), "video/webm", model.MediaTypeVideo)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected analyzer error, got %v", err)
	}

	record, _ := reg.Record(id)
	if record.Status != model.StatusFailed {
		t.Fatalf("expected status failed, got %s", record.Status)
	}

	// No partial artifacts on failure.
	if _, err := reg.Skills(id); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected no skills stored, got %v", err)
	}
	if _, err := reg.Jobs(id); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected no jobs stored, got %v", err)
	}
}

func TestProcessMatcherFailureMarksRecordFailed(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	id := reg.Create("user-1", model.MediaTypeImage)

	wantErr := model.ErrMalformedUpstreamResponse
	analyzer := &stubAnalyzer{analysis: &model.Analysis{Summary: "s"}}
	p := New(analyzer, &stubMatcher{err: wantErr}, reg, zap.NewNop())

	err := p.Process(context.Background(), id, []byte("x"), "image/png", model.MediaTypeImage)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected matcher error, got %v", err)
	}

	record, _ := reg.Record(id)
	if record.Status != model.StatusFailed {
		t.Fatalf("expected status failed, got %s", record.Status)
	}
}
