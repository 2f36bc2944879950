package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"go.uber.org/zap"

	"github.com/praxisapp/praxis-backend/internal/ai"
	"github.com/praxisapp/praxis-backend/internal/model"
	"github.com/praxisapp/praxis-backend/internal/pipeline"
	"github.com/praxisapp/praxis-backend/internal/registry"
)

// newMockServer wires the server exactly as serve does when no API key is
// configured: mock analyzer and matcher, real registry and pipeline.
func newMockServer() *Server {
	reg := registry.New()
	pipe := pipeline.New(ai.NewMockAnalyzer(), ai.NewMockMatcher(), reg, zap.NewNop())

	return New(Config{
		Listen:           ":0",
		GeminiConfigured: false,
		GeminiModel:      "",
	}, reg, pipe, zap.NewNop())
}

type uploadPart struct {
	field    string
	filename string
	mime     string
	content  []byte
}

func multipartBody(t *testing.T, userID string, part *uploadPart) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if userID != "" {
		if err := writer.WriteField("user_id", userID); err != nil {
			t.Fatalf("writing user_id field: %v", err)
		}
	}

	if part != nil {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, part.field, part.filename))
		header.Set("Content-Type", part.mime)

		w, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("creating file part: %v", err)
		}
		if _, err := w.Write(part.content); err != nil {
			t.Fatalf("writing file part: %v", err)
		}
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	return &buf, writer.FormDataContentType()
}

func doUpload(t *testing.T, srv *Server, path, userID string, part *uploadPart) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartBody(t, userID, part)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func doGet(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return payload
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv := newMockServer()
	rec := doGet(t, srv, "/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	payload := decodeJSON(t, rec)
	if payload["status"] != "ok" {
		t.Fatalf("unexpected health status: %v", payload["status"])
	}
	if payload["gemini_configured"] != false {
		t.Fatalf("expected gemini_configured false, got %v", payload["gemini_configured"])
	}
}

func TestUploadVideoMissingUserID(t *testing.T) {
	t.Parallel()

	srv := newMockServer()
	rec := doUpload(t, srv, "/upload-video", "", &uploadPart{
		field: "video", filename: "clip.webm", mime: "video/webm", content: []byte("data"),
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUploadVideoMissingFile(t *testing.T) {
	t.Parallel()

	srv := newMockServer()
	rec := doUpload(t, srv, "/upload-video", "user-1", nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUploadVideoEmptyFile(t *testing.T) {
	t.Parallel()

	srv := newMockServer()
	rec := doUpload(t, srv, "/upload-video", "user-1", &uploadPart{
		field: "video", filename: "clip.webm", mime: "video/webm", content: nil,
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUploadImageRejectsUnknownMIME(t *testing.T) {
	t.Parallel()

	srv := newMockServer()
	rec := doUpload(t, srv, "/upload-image", "user-1", &uploadPart{
		field: "image", filename: "scan.tiff", mime: "image/tiff", content: []byte("data"),
	})

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec.Code)
	}
}

func TestReadEndpointsUnknownID(t *testing.T) {
	t.Parallel()

	srv := newMockServer()
	paths := []string{
		"/processing-status?id=does-not-exist",
		"/skills?id=does-not-exist",
		"/jobs?id=does-not-exist",
	}

	for _, path := range paths {
		rec := doGet(t, srv, path)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 for %s, got %d", path, rec.Code)
		}
	}
}

func TestMockModeUploadFlow(t *testing.T) {
	t.Parallel()

	srv := newMockServer()

	rec := doUpload(t, srv, "/upload-video", "user-1", &uploadPart{
		field: "video", filename: "clip.webm", mime: "video/webm", content: []byte("data"),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	payload := decodeJSON(t, rec)
	if payload["gemini_available"] != false {
		t.Fatalf("expected gemini_available false, got %v", payload["gemini_available"])
	}

	id, ok := payload["processing_id"].(string)
	if !ok || id == "" {
		t.Fatalf("expected processing_id, got %v", payload["processing_id"])
	}

	statusRec := doGet(t, srv, "/processing-status?id="+id)
	if statusRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", statusRec.Code)
	}
	statusPayload := decodeJSON(t, statusRec)
	if statusPayload["status"] != "done" {
		t.Fatalf("expected status done, got %v", statusPayload["status"])
	}
	if statusPayload["analysis"] == nil {
		t.Fatal("expected analysis in status response once done")
	}

	skillsRec := doGet(t, srv, "/skills?id="+id)
	if skillsRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", skillsRec.Code)
	}
	skillsPayload := decodeJSON(t, skillsRec)
	if skillsPayload["user"] != "user-1" {
		t.Fatalf("expected user-1, got %v", skillsPayload["user"])
	}

	skills, ok := skillsPayload["skills"].([]any)
	if !ok || len(skills) != 3 {
		t.Fatalf("expected exactly three mock skills, got %v", skillsPayload["skills"])
	}
	for _, raw := range skills {
		skill := raw.(map[string]any)
		if skill["verified"] != true {
			t.Fatalf("expected verified skill, got %v", skill)
		}
	}

	jobsRec := doGet(t, srv, "/jobs?id="+id)
	if jobsRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", jobsRec.Code)
	}
	jobsPayload := decodeJSON(t, jobsRec)
	jobs, ok := jobsPayload["jobs"].([]any)
	if !ok || len(jobs) != 3 {
		t.Fatalf("expected three mock jobs, got %v", jobsPayload["jobs"])
	}
}

func TestDoneRecordReadsAreStable(t *testing.T) {
	t.Parallel()

	srv := newMockServer()

	rec := doUpload(t, srv, "/upload-image", "user-1", &uploadPart{
		field: "image", filename: "work.png", mime: "image/png", content: []byte("data"),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	id := decodeJSON(t, rec)["processing_id"].(string)

	first := doGet(t, srv, "/skills?id="+id).Body.String()
	second := doGet(t, srv, "/skills?id="+id).Body.String()
	if first != second {
		t.Fatalf("skills reads differ:\n%s\n%s", first, second)
	}

	firstJobs := doGet(t, srv, "/jobs?id="+id).Body.String()
	secondJobs := doGet(t, srv, "/jobs?id="+id).Body.String()
	if firstJobs != secondJobs {
		t.Fatalf("jobs reads differ:\n%s\n%s", firstJobs, secondJobs)
	}
}

func TestStatusForMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err    error
		expect int
	}{
		{model.ErrBadRequest, http.StatusBadRequest},
		{model.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType},
		{model.ErrNotFound, http.StatusNotFound},
		{model.ErrServiceUnavailable, http.StatusServiceUnavailable},
		{model.ErrUnprocessableMedia, http.StatusUnprocessableEntity},
		{fmt.Errorf("wrapped: %w", model.ErrMalformedUpstreamResponse), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.expect {
			t.Fatalf("statusFor(%v) = %d, expected %d", tt.err, got, tt.expect)
		}
	}
}
