package stubserver

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/plantquery/plantquery/internal/api"
	"github.com/plantquery/plantquery/internal/graphml"
	"github.com/plantquery/plantquery/internal/id"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{
		Status:          "healthy",
		OpenAIAvailable: s.aiAvailable,
		ActiveSessions:  s.store.count(),
	})
}

func (s *Server) createSession(c *gin.Context) {
	file, err := c.FormFile(api.UploadField)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Detail: "file field is required"})
		return
	}
	if !strings.HasSuffix(file.Filename, ".xml") {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Detail: "Only XML files allowed"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Detail: "cannot read upload"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Detail: "cannot read upload"})
		return
	}

	doc, err := parseDiagram(data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Detail: "DEXPI processing failed: " + err.Error()})
		return
	}

	sid := id.NewSessionID().String()
	s.store.put(&serverSession{
		ID:           sid,
		Filename:     file.Filename,
		Doc:          doc,
		lastActivity: time.Now(),
	})

	stats := doc.Stats()
	s.logger.Info("session created",
		zap.String("session_id", sid),
		zap.String("filename", file.Filename),
		zap.Int("components", stats.Components),
		zap.Int("connections", stats.Connections))

	c.JSON(http.StatusOK, api.CreateSessionResponse{
		SessionID: sid,
		Status:    "success",
		Message:   fmt.Sprintf("DEXPI file processed: %d components, %d connections", stats.Components, stats.Connections),
	})
}

func (s *Server) chat(c *gin.Context) {
	var req api.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Detail: err.Error()})
		return
	}

	sess, ok := s.store.get(req.SessionID)
	if !ok {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Detail: "Session not found"})
		return
	}

	answer := analyst{doc: sess.Doc}.reply(req.Message)
	sess.touch(req.Message, answer)

	c.JSON(http.StatusOK, api.ChatResponse{
		Response:  answer,
		SessionID: req.SessionID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) deleteSession(c *gin.Context) {
	sid := c.Param("id")
	if _, ok := s.store.get(sid); !ok {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Detail: "Session not found"})
		return
	}
	s.store.delete(sid)
	s.logger.Info("session deleted", zap.String("session_id", sid))
	c.JSON(http.StatusOK, api.DeleteSessionResponse{Message: "Session deleted successfully"})
}

func (s *Server) exportGraphML(c *gin.Context) {
	sid := c.Param("id")
	sess, ok := s.store.get(sid)
	if !ok {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Detail: "Session not found"})
		return
	}

	payload, err := graphml.EncodeBytes(sess.Doc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Detail: "GraphML encoding failed"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sess.Filename+".graphml"))
	if strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") {
		c.Header("Content-Type", "application/xml")
		c.Header("Content-Encoding", "gzip")
		c.Status(http.StatusOK)
		gz := gzip.NewWriter(c.Writer)
		if _, err := gz.Write(payload); err != nil {
			s.logger.Warn("export write failed", zap.String("session_id", sid), zap.Error(err))
		}
		gz.Close()
		return
	}
	c.Data(http.StatusOK, "application/xml", payload)
}
