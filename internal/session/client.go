package session

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/plantquery/plantquery/internal/api"
	"github.com/plantquery/plantquery/internal/graphml"
	"github.com/plantquery/plantquery/internal/id"
	"github.com/plantquery/plantquery/internal/logging"
	"github.com/plantquery/plantquery/internal/monitoring"
	"github.com/plantquery/plantquery/internal/transport"
)

const (
	// RequestIDHeader carries the per-call correlation identifier.
	RequestIDHeader = "X-Request-ID"

	defaultIdleThreshold = time.Hour
	defaultProbeTimeout  = 5 * time.Second
)

// Options tunes a Client. The zero value is usable; unset fields fall
// back to defaults.
type Options struct {
	Logger  *logging.Logger
	Metrics *monitoring.Metrics

	// IdleThreshold is how long a session may go without a successful
	// exchange before ClearOldSessions removes it. Defaults to one
	// hour.
	IdleThreshold time.Duration

	// ProbeTimeout caps health probes so a hung backend cannot stall
	// status displays. Defaults to five seconds.
	ProbeTimeout time.Duration

	// ExportDir is where DownloadExport saves artifacts. Defaults to
	// the working directory.
	ExportDir string

	// ExportCompress gzips saved exports.
	ExportCompress bool
}

// Client drives the remote analysis backend and keeps a local mirror
// of every session it creates. The backend owns the graphs and the
// language model; the mirror owns the transcript and the activity
// timestamps used for idle expiry.
type Client struct {
	transport *transport.Client
	logger    *logging.Logger
	metrics   *monitoring.Metrics
	registry  *registry

	idleThreshold  time.Duration
	probeTimeout   time.Duration
	exportDir      string
	exportCompress bool
}

// New builds a Client on the given transport.
func New(tc *transport.Client, opts Options) *Client {
	if tc == nil {
		panic("session: transport is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = monitoring.NewMetrics()
	}
	idle := opts.IdleThreshold
	if idle <= 0 {
		idle = defaultIdleThreshold
	}
	probe := opts.ProbeTimeout
	if probe <= 0 {
		probe = defaultProbeTimeout
	}
	dir := opts.ExportDir
	if dir == "" {
		dir = "."
	}
	return &Client{
		transport:      tc,
		logger:         logger,
		metrics:        metrics,
		registry:       newRegistry(),
		idleThreshold:  idle,
		probeTimeout:   probe,
		exportDir:      dir,
		exportCompress: opts.ExportCompress,
	}
}

// IdleThreshold reports the configured expiry window.
func (c *Client) IdleThreshold() time.Duration { return c.idleThreshold }

// CreateSession uploads a diagram and registers the backend-issued
// session in the local mirror. The returned identifier is the handle
// for every later operation. On any failure the mirror is untouched.
func (c *Client) CreateSession(ctx context.Context, filename string, content io.Reader) (string, error) {
	timer := monitoring.NewTimer(c.metrics, "create_session")
	reqID := id.NewRequestID().String()
	log := c.logger.WithRequest(reqID)

	req, err := c.transport.Request(ctx)
	if err != nil {
		timer.Stop("error")
		return "", &SessionCreationError{Filename: filename, Reason: "backend unavailable", Err: err}
	}

	var created api.CreateSessionResponse
	req.SetHeader(RequestIDHeader, reqID).
		SetFileReader(api.UploadField, filename, content).
		SetResult(&created)

	resp, err := c.transport.Do(func() (*resty.Response, error) {
		return req.Post(api.PathCreateSession)
	})
	if err != nil {
		timer.Stop("error")
		log.Warn("session creation failed",
			zap.String("filename", filename),
			zap.Error(err))
		return "", &SessionCreationError{Filename: filename, Reason: "backend unreachable", Err: err}
	}
	if resp.IsError() {
		timer.Stop("error")
		reason := failureReason(resp)
		log.Warn("session creation rejected",
			zap.String("filename", filename),
			zap.Int("status", resp.StatusCode()),
			zap.String("reason", reason))
		return "", &SessionCreationError{Filename: filename, Reason: reason, Status: resp.StatusCode()}
	}
	if created.SessionID == "" {
		// A success status without an identifier is unusable; treat it
		// as a failure so no orphan mirror appears.
		timer.Stop("error")
		return "", &SessionCreationError{Filename: filename, Reason: "backend response carried no session id", Status: resp.StatusCode()}
	}

	now := time.Now()
	size := c.registry.put(&Session{
		ID:           created.SessionID,
		Filename:     filename,
		Messages:     []Message{},
		CreatedAt:    now,
		LastActivity: now,
	})
	c.metrics.SetSessionsMirrored(size)

	timer.Stop("success")
	log.Info("session created",
		zap.String("session_id", created.SessionID),
		zap.String("filename", filename),
		zap.String("summary", created.Message))
	return created.SessionID, nil
}

// CreateSessionFromFile uploads the diagram at path.
func (c *Client) CreateSessionFromFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &SessionCreationError{Filename: path, Reason: "cannot read diagram file", Err: err}
	}
	defer f.Close()
	return c.CreateSession(ctx, filepath.Base(path), f)
}

// ProcessMessage sends one question to the backend and returns the
// assistant's reply. On success both sides of the exchange are
// appended to the mirror, but only when the session is still tracked
// locally; replies for untracked identifiers are returned without
// bookkeeping. On failure nothing is appended.
func (c *Client) ProcessMessage(ctx context.Context, sessionID, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", &MessageProcessingError{SessionID: sessionID, Reason: "message text is blank"}
	}

	timer := monitoring.NewTimer(c.metrics, "process_message")
	reqID := id.NewRequestID().String()
	log := c.logger.WithRequest(reqID)
	asked := time.Now()

	req, err := c.transport.Request(ctx)
	if err != nil {
		timer.Stop("error")
		return "", &MessageProcessingError{SessionID: sessionID, Reason: "backend unavailable", Err: err}
	}

	var reply api.ChatResponse
	req.SetHeader(RequestIDHeader, reqID).
		SetBody(api.ChatRequest{SessionID: sessionID, Message: text}).
		SetResult(&reply)

	resp, err := c.transport.Do(func() (*resty.Response, error) {
		return req.Post(api.PathChat)
	})
	if err != nil {
		timer.Stop("error")
		log.Warn("message processing failed",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return "", &MessageProcessingError{SessionID: sessionID, Reason: "backend unreachable", Err: err}
	}
	if resp.IsError() {
		timer.Stop("error")
		reason := failureReason(resp)
		log.Warn("message rejected",
			zap.String("session_id", sessionID),
			zap.Int("status", resp.StatusCode()),
			zap.String("reason", reason))
		return "", &MessageProcessingError{SessionID: sessionID, Reason: reason, Status: resp.StatusCode()}
	}

	now := time.Now()
	tracked := c.registry.recordExchange(sessionID, now,
		Message{ID: uuid.NewString(), Role: RoleUser, Content: text, Timestamp: asked},
		Message{ID: uuid.NewString(), Role: RoleAssistant, Content: reply.Response, Timestamp: now},
	)
	if !tracked {
		log.Debug("reply for untracked session, transcript not mirrored",
			zap.String("session_id", sessionID))
	}

	timer.Stop("success")
	return reply.Response, nil
}

// NoteError appends a local error message to a tracked session. The
// note never reaches the backend and does not count as activity for
// expiry. Reports whether the session was tracked.
func (c *Client) NoteError(sessionID, text string) bool {
	return c.registry.recordNote(sessionID, Message{
		ID:        uuid.NewString(),
		Role:      RoleError,
		Content:   text,
		Timestamp: time.Now(),
	})
}

// GetSession returns a deep copy of the local mirror. It never
// consults the backend.
func (c *Client) GetSession(sessionID string) (Session, bool) {
	return c.registry.get(sessionID)
}

// Sessions lists every mirrored session, most recently active first.
func (c *Client) Sessions() []Session {
	return c.registry.list()
}

// SessionCount reports how many sessions the mirror tracks.
func (c *Client) SessionCount() int {
	return c.registry.size()
}

// DeleteSession releases a session. The backend delete is best
// effort: failures are logged and swallowed. The local mirror entry is
// always removed, so the caller never ends up with a mirror the
// backend has forgotten about being unremovable.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) {
	timer := monitoring.NewTimer(c.metrics, "delete_session")
	reqID := id.NewRequestID().String()
	log := c.logger.WithRequest(reqID)

	remoteOK := false
	req, err := c.transport.Request(ctx)
	if err != nil {
		log.Warn("remote session delete skipped",
			zap.String("session_id", sessionID),
			zap.Error(err))
	} else {
		req.SetHeader(RequestIDHeader, reqID)
		resp, err := c.transport.Do(func() (*resty.Response, error) {
			return req.Delete(api.SessionPath(sessionID))
		})
		switch {
		case err != nil:
			log.Warn("remote session delete failed",
				zap.String("session_id", sessionID),
				zap.Error(err))
		case resp.IsError():
			log.Warn("remote session delete rejected",
				zap.String("session_id", sessionID),
				zap.Int("status", resp.StatusCode()),
				zap.String("reason", failureReason(resp)))
		default:
			remoteOK = true
		}
	}

	tracked, size := c.registry.remove(sessionID)
	c.metrics.SetSessionsMirrored(size)
	if tracked {
		log.Info("session removed",
			zap.String("session_id", sessionID),
			zap.Bool("remote_deleted", remoteOK))
	}

	if remoteOK {
		timer.Stop("success")
	} else {
		timer.Stop("degraded")
	}
}

// ClearOldSessions removes every session idle past the threshold and
// returns how many were swept. Stale identifiers are captured in one
// snapshot and deleted afterwards, so an exchange that lands between
// snapshot and delete is lost with its session. That window is
// accepted; the alternative is holding the registry lock across
// network calls.
func (c *Client) ClearOldSessions(ctx context.Context) int {
	cutoff := time.Now().Add(-c.idleThreshold)
	stale := c.registry.staleIDs(cutoff)
	for _, sid := range stale {
		c.logger.Info("session idle past threshold",
			zap.String("session_id", sid),
			zap.Duration("threshold", c.idleThreshold))
		c.DeleteSession(ctx, sid)
		c.metrics.IncSessionsExpired()
	}
	return len(stale)
}

// APIStatus probes backend health. It never fails outward: any
// transport or status problem reads as the degraded sentinel.
func (c *Client) APIStatus(ctx context.Context) HealthStatus {
	timer := monitoring.NewTimer(c.metrics, "api_status")
	reqID := id.NewRequestID().String()
	log := c.logger.WithRequest(reqID)

	probeCtx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	req, err := c.transport.Request(probeCtx)
	if err != nil {
		timer.Stop("degraded")
		log.Warn("health probe unavailable", zap.Error(err))
		return Degraded()
	}

	var health api.HealthResponse
	req.SetHeader(RequestIDHeader, reqID).SetResult(&health)

	resp, err := c.transport.Do(func() (*resty.Response, error) {
		return req.Get(api.PathHealth)
	})
	if err != nil {
		timer.Stop("degraded")
		log.Warn("health probe failed", zap.Error(err))
		return Degraded()
	}
	if resp.IsError() {
		timer.Stop("degraded")
		log.Warn("health probe rejected", zap.Int("status", resp.StatusCode()))
		return Degraded()
	}

	timer.Stop("success")
	return HealthStatus{
		Available:      health.Status == "healthy",
		AIConfigured:   health.OpenAIAvailable,
		ActiveSessions: health.ActiveSessions,
		Reachable:      true,
	}
}

// DownloadExport fetches the session's graph as GraphML and saves it
// under the export directory, named by the session identifier. Returns
// the path written. The payload is saved byte for byte; a decode pass
// afterwards logs the graph summary but never fails the operation.
func (c *Client) DownloadExport(ctx context.Context, sessionID string) (string, error) {
	timer := monitoring.NewTimer(c.metrics, "download_export")
	reqID := id.NewRequestID().String()
	log := c.logger.WithRequest(reqID)

	req, err := c.transport.Request(ctx)
	if err != nil {
		timer.Stop("error")
		return "", &ExportUnavailableError{SessionID: sessionID, Reason: "backend unavailable", Err: err}
	}
	req.SetHeader(RequestIDHeader, reqID)

	resp, err := c.transport.Do(func() (*resty.Response, error) {
		return req.Get(api.ExportPath(sessionID))
	})
	if err != nil {
		timer.Stop("error")
		log.Warn("export failed",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return "", &ExportUnavailableError{SessionID: sessionID, Reason: "backend unreachable", Err: err}
	}
	if resp.IsError() {
		timer.Stop("error")
		reason := failureReason(resp)
		log.Warn("export rejected",
			zap.String("session_id", sessionID),
			zap.Int("status", resp.StatusCode()),
			zap.String("reason", reason))
		return "", &ExportUnavailableError{SessionID: sessionID, Reason: reason, Status: resp.StatusCode()}
	}

	body := resp.Body()
	path, err := c.writeExport(sessionID, body)
	if err != nil {
		timer.Stop("error")
		return "", &ExportUnavailableError{SessionID: sessionID, Reason: "cannot write export file", Err: err}
	}
	c.metrics.AddExportBytes(int64(len(body)))

	if doc, derr := graphml.DecodeBytes(body); derr == nil {
		stats := doc.Stats()
		log.Info("export saved",
			zap.String("session_id", sessionID),
			zap.String("path", path),
			zap.Int("components", stats.Components),
			zap.Int("connections", stats.Connections),
			zap.Int("subsystems", stats.Subsystems))
	} else {
		log.Debug("export saved without graph summary",
			zap.String("session_id", sessionID),
			zap.String("path", path),
			zap.Error(derr))
	}

	timer.Stop("success")
	return path, nil
}

func (c *Client) writeExport(sessionID string, data []byte) (string, error) {
	if err := os.MkdirAll(c.exportDir, 0o755); err != nil {
		return "", err
	}

	name := safeFilename(sessionID) + ".graphml"
	if !c.exportCompress {
		path := filepath.Join(c.exportDir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return "", err
		}
		return path, nil
	}

	path := filepath.Join(c.exportDir, name+".gz")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write(data); err != nil {
		gz.Close()
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := gz.Close(); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// safeFilename keeps backend-issued identifiers from escaping the
// export directory or producing unwritable names.
func safeFilename(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, id)
}
