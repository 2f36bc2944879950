package server

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/praxisapp/praxis-backend/internal/ai/gemini"
	"github.com/praxisapp/praxis-backend/internal/model"
)

const fallbackUser = "Guest User"

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"message":           "Praxis API is running",
		"gemini_configured": s.cfg.GeminiConfigured,
		"gemini_model":      s.cfg.GeminiModel,
	})
}

func (s *Server) uploadVideo(c *gin.Context) {
	s.upload(c, "video", model.MediaTypeVideo)
}

func (s *Server) uploadImage(c *gin.Context) {
	s.upload(c, "image", model.MediaTypeImage)
}

// upload validates the multipart request, creates the registry record, and
// runs the pipeline synchronously. Validation failures happen before the
// record is created; pipeline failures leave the record failed for later
// status polls.
func (s *Server) upload(c *gin.Context, field string, kind model.MediaType) {
	userID := strings.TrimSpace(c.PostForm("user_id"))
	if userID == "" {
		s.respondError(c, model.ErrBadRequest, "user_id is required")
		return
	}

	header, err := c.FormFile(field)
	if err != nil {
		s.respondError(c, model.ErrBadRequest, field+" file is required")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if kind == model.MediaTypeImage && !gemini.AllowedImageMIME(mimeType) {
		s.respondError(c, model.ErrUnsupportedMediaType, "image type "+mimeType+" is not supported")
		return
	}

	data, err := readUpload(header)
	if err != nil {
		s.respondError(c, err, "failed to read uploaded file")
		return
	}
	if len(data) == 0 {
		s.respondError(c, model.ErrBadRequest, field+" file is empty")
		return
	}

	id := s.registry.Create(userID, kind)

	s.logger.Info("upload accepted",
		zap.String("processing_id", id),
		zap.String("media_type", string(kind)),
		zap.String("mime_type", mimeType),
		zap.Int("size_bytes", len(data)),
	)

	if err := s.pipeline.Process(c.Request.Context(), id, data, mimeType, kind); err != nil {
		s.respondError(c, err, "processing failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"processing_id":    id,
		"gemini_available": s.cfg.GeminiConfigured,
	})
}

func (s *Server) processingStatus(c *gin.Context) {
	id := c.Query("id")

	record, err := s.registry.Record(id)
	if err != nil {
		s.respondError(c, err, "processing ID not found")
		return
	}

	resp := gin.H{"status": record.Status}
	if analysis, err := s.registry.Analysis(id); err == nil && analysis != nil {
		resp["analysis"] = analysis
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) skills(c *gin.Context) {
	id := c.Query("id")

	skills, err := s.registry.Skills(id)
	if err != nil {
		s.respondError(c, err, "skills not found for this ID")
		return
	}

	user := fallbackUser
	if record, err := s.registry.Record(id); err == nil && record.UserID != "" {
		user = record.UserID
	}

	resp := gin.H{
		"user":   user,
		"skills": skills,
	}
	if analysis, err := s.registry.Analysis(id); err == nil && analysis != nil {
		resp["analysis"] = analysis
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) jobs(c *gin.Context) {
	id := c.Query("id")

	jobs, err := s.registry.Jobs(id)
	if err != nil {
		s.respondError(c, err, "jobs not found for this ID")
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (s *Server) respondError(c *gin.Context, err error, detail string) {
	status := statusFor(err)

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}

	c.JSON(status, gin.H{
		"error":       true,
		"status_code": status,
		"detail":      detail,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, model.ErrUnprocessableMedia):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}
