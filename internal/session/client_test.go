package session

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantquery/plantquery/internal/transport"
)

const sampleExport = `<?xml version="1.0" encoding="utf-8"?>
<graphml xmlns="http://graphml.graphdrawing.org/xmlns">
  <key id="node_id" for="node" attr.name="node_id" attr.type="string"/>
  <key id="node_name" for="node" attr.name="node_name" attr.type="string"/>
  <key id="node_type" for="node" attr.name="node_type" attr.type="string"/>
  <key id="edge_type" for="edge" attr.name="edge_type" attr.type="string"/>
  <graph id="G" edgedefault="directed">
    <node id="P-100"><data key="node_name">Feed Pump</data><data key="node_type">pump</data></node>
    <node id="V-101"><data key="node_name">Inlet Valve</data><data key="node_type">valve</data></node>
    <edge source="P-100" target="V-101"><data key="edge_type">CONNECTED_TO</data></edge>
  </graph>
</graphml>
`

func newTestClient(t *testing.T, baseURL string, opts Options) *Client {
	t.Helper()
	tc := transport.New(transport.Options{BaseURL: baseURL, Timeout: 5 * time.Second})
	return New(tc, opts)
}

// backdate rewrites a session's activity timestamp directly in the
// registry so expiry paths can be exercised without waiting.
func backdate(c *Client, sessionID string, age time.Duration) {
	c.registry.mu.Lock()
	defer c.registry.mu.Unlock()
	if s, ok := c.registry.sessions[sessionID]; ok {
		s.LastActivity = time.Now().Add(-age)
	}
}

func TestCreateSession(t *testing.T) {
	var gotFilename, gotContent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/sessions/create", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		body, err := io.ReadAll(file)
		require.NoError(t, err)
		gotFilename = header.Filename
		gotContent = string(body)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"session_id":"sess_abc","status":"created","message":"DEXPI file processed: 2 components, 1 connections"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})

	sid, err := c.CreateSession(context.Background(), "diagram.xml", strings.NewReader("<xml/>"))
	require.NoError(t, err)
	assert.Equal(t, "sess_abc", sid)
	assert.Equal(t, "diagram.xml", gotFilename)
	assert.Equal(t, "<xml/>", gotContent)

	s, ok := c.GetSession(sid)
	require.True(t, ok)
	assert.Equal(t, "diagram.xml", s.Filename)
	assert.Empty(t, s.Messages)
	assert.WithinDuration(t, time.Now(), s.CreatedAt, 2*time.Second)
	assert.Equal(t, 1, c.SessionCount())
}

func TestCreateSessionRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"Only XML files allowed"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})

	sid, err := c.CreateSession(context.Background(), "diagram.pdf", strings.NewReader("%PDF"))
	require.Error(t, err)
	assert.Empty(t, sid)

	var createErr *SessionCreationError
	require.ErrorAs(t, err, &createErr)
	assert.Equal(t, "Only XML files allowed", createErr.Reason)
	assert.Equal(t, http.StatusBadRequest, createErr.Status)
	assert.Equal(t, 0, c.SessionCount(), "failed creation must not leave a mirror behind")
}

func TestCreateSessionBackendDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := newTestClient(t, srv.URL, Options{})

	_, err := c.CreateSession(context.Background(), "diagram.xml", strings.NewReader("<xml/>"))
	var createErr *SessionCreationError
	require.ErrorAs(t, err, &createErr)
	assert.NotNil(t, createErr.Err)
	assert.Zero(t, createErr.Status)
	assert.Equal(t, 0, c.SessionCount())
}

func TestCreateSessionMissingIdentifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"created"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})

	_, err := c.CreateSession(context.Background(), "diagram.xml", strings.NewReader("<xml/>"))
	var createErr *SessionCreationError
	require.ErrorAs(t, err, &createErr)
	assert.Equal(t, 0, c.SessionCount())
}

func TestCreateSessionFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plant.xml")
	require.NoError(t, os.WriteFile(path, []byte("<PlantModel/>"), 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "plant.xml", header.Filename, "upload carries the base name, not the path")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"session_id":"sess_file","status":"created"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})

	sid, err := c.CreateSessionFromFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "sess_file", sid)

	_, err = c.CreateSessionFromFile(context.Background(), filepath.Join(dir, "missing.xml"))
	var createErr *SessionCreationError
	require.ErrorAs(t, err, &createErr)
}

func TestProcessMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sessions/create":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"session_id":"sess_1","status":"created"}`))
		case "/chat":
			body, _ := io.ReadAll(r.Body)
			assert.Contains(t, string(body), `"session_id":"sess_1"`)
			assert.Contains(t, string(body), "How many valves")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"response":"There are 2 valves: V-101 and V-102.","session_id":"sess_1"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})

	sid, err := c.CreateSession(context.Background(), "diagram.xml", strings.NewReader("<xml/>"))
	require.NoError(t, err)

	reply, err := c.ProcessMessage(context.Background(), sid, "How many valves are there?")
	require.NoError(t, err)
	assert.Equal(t, "There are 2 valves: V-101 and V-102.", reply)

	s, ok := c.GetSession(sid)
	require.True(t, ok)
	require.Len(t, s.Messages, 2)
	assert.Equal(t, RoleUser, s.Messages[0].Role)
	assert.Equal(t, "How many valves are there?", s.Messages[0].Content)
	assert.Equal(t, RoleAssistant, s.Messages[1].Role)
	assert.Equal(t, reply, s.Messages[1].Content)
	assert.NotEmpty(t, s.Messages[0].ID)
	assert.NotEqual(t, s.Messages[0].ID, s.Messages[1].ID)
	assert.False(t, s.Messages[1].Timestamp.Before(s.Messages[0].Timestamp))
}

func TestProcessMessageSessionNotFound(t *testing.T) {
	var chatCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chatCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Session not found"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})

	// Unknown identifiers are still sent to the backend; the client
	// does not pre-filter against its mirror.
	_, err := c.ProcessMessage(context.Background(), "sess_ghost", "hello")
	require.Error(t, err)

	var procErr *MessageProcessingError
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, "sess_ghost", procErr.SessionID)
	assert.Equal(t, "Session not found", procErr.Reason)
	assert.Equal(t, http.StatusNotFound, procErr.Status)
	assert.Equal(t, int32(1), chatCalls.Load(), "one failed call, no retries")
}

func TestProcessMessageFailureLeavesMirrorUntouched(t *testing.T) {
	fail := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sessions/create":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"session_id":"sess_2","status":"created"}`))
		case "/chat":
			w.Header().Set("Content-Type", "application/json")
			if fail {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"detail":"Error processing message"}`))
				return
			}
			w.Write([]byte(`{"response":"ok"}`))
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})
	sid, err := c.CreateSession(context.Background(), "diagram.xml", strings.NewReader("<xml/>"))
	require.NoError(t, err)

	_, err = c.ProcessMessage(context.Background(), sid, "first")
	require.NoError(t, err)
	before, _ := c.GetSession(sid)

	fail = true
	_, err = c.ProcessMessage(context.Background(), sid, "second")
	require.Error(t, err)

	after, ok := c.GetSession(sid)
	require.True(t, ok)
	assert.Equal(t, len(before.Messages), len(after.Messages))
	assert.Equal(t, before.LastActivity, after.LastActivity)
}

func TestProcessMessageBlankText(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := c.ProcessMessage(context.Background(), "sess_1", text)
		var procErr *MessageProcessingError
		require.ErrorAs(t, err, &procErr)
	}
	assert.Equal(t, int32(0), calls.Load(), "blank messages are rejected before any network call")
}

func TestProcessMessageUntrackedSessionStillAnswers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"answer"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})

	reply, err := c.ProcessMessage(context.Background(), "sess_other_process", "question")
	require.NoError(t, err)
	assert.Equal(t, "answer", reply)

	_, ok := c.GetSession("sess_other_process")
	assert.False(t, ok, "untracked replies are not mirrored")
}

func TestNoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"session_id":"sess_3","status":"created"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})
	sid, err := c.CreateSession(context.Background(), "diagram.xml", strings.NewReader("<xml/>"))
	require.NoError(t, err)
	created, _ := c.GetSession(sid)

	require.True(t, c.NoteError(sid, "backend unreachable"))
	assert.False(t, c.NoteError("sess_ghost", "nope"))

	s, _ := c.GetSession(sid)
	require.Len(t, s.Messages, 1)
	assert.Equal(t, RoleError, s.Messages[0].Role)
	assert.Equal(t, created.LastActivity, s.LastActivity, "error notes do not count as activity")
}

func TestGetSessionReturnsCopy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sessions/create":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"session_id":"sess_copy","status":"created"}`))
		case "/chat":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"response":"fine"}`))
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})
	sid, _ := c.CreateSession(context.Background(), "diagram.xml", strings.NewReader("<xml/>"))
	_, err := c.ProcessMessage(context.Background(), sid, "q")
	require.NoError(t, err)

	s, _ := c.GetSession(sid)
	s.Messages[0].Content = "tampered"
	s.Messages = append(s.Messages, Message{Role: RoleError, Content: "extra"})

	fresh, _ := c.GetSession(sid)
	require.Len(t, fresh.Messages, 2)
	assert.Equal(t, "q", fresh.Messages[0].Content)
}

func TestGetSessionUnknown(t *testing.T) {
	c := newTestClient(t, "http://localhost:0", Options{})
	_, ok := c.GetSession("sess_nobody")
	assert.False(t, ok)
}

func TestDeleteSession(t *testing.T) {
	var deleted atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/sessions/create":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"session_id":"sess_del","status":"created"}`))
		case r.Method == http.MethodDelete && r.URL.Path == "/sessions/sess_del":
			deleted.Add(1)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"message":"Session deleted"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})
	sid, _ := c.CreateSession(context.Background(), "diagram.xml", strings.NewReader("<xml/>"))

	c.DeleteSession(context.Background(), sid)
	assert.Equal(t, int32(1), deleted.Load())
	_, ok := c.GetSession(sid)
	assert.False(t, ok)
	assert.Equal(t, 0, c.SessionCount())
}

func TestDeleteSessionRemoteFailureStillRemovesLocally(t *testing.T) {
	t.Run("backend error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"session_id":"sess_del2","status":"created"}`))
			case http.MethodDelete:
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"detail":"boom"}`))
			}
		}))
		defer srv.Close()

		c := newTestClient(t, srv.URL, Options{})
		sid, _ := c.CreateSession(context.Background(), "diagram.xml", strings.NewReader("<xml/>"))

		c.DeleteSession(context.Background(), sid)
		_, ok := c.GetSession(sid)
		assert.False(t, ok, "local removal happens regardless of remote outcome")
	})

	t.Run("backend unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"session_id":"sess_del3","status":"created"}`))
		}))
		c := newTestClient(t, srv.URL, Options{})
		sid, _ := c.CreateSession(context.Background(), "diagram.xml", strings.NewReader("<xml/>"))
		srv.Close()

		c.DeleteSession(context.Background(), sid)
		_, ok := c.GetSession(sid)
		assert.False(t, ok)
	})
}

func TestDeleteSessionUnknownIdentifier(t *testing.T) {
	var deletes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			deletes.Add(1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":"Session not found"}`))
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})

	// Deleting an untracked session is a quiet no-op locally but the
	// remote release is still attempted.
	c.DeleteSession(context.Background(), "sess_ghost")
	assert.Equal(t, int32(1), deletes.Load())
}

func TestClearOldSessions(t *testing.T) {
	var remoteDeletes atomic.Int32
	next := 0
	ids := []string{"sess_old", "sess_fresh"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"session_id":"` + ids[next] + `","status":"created"}`))
			next++
		case http.MethodDelete:
			remoteDeletes.Add(1)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"message":"Session deleted"}`))
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{IdleThreshold: time.Hour})
	old, err := c.CreateSession(context.Background(), "a.xml", strings.NewReader("<xml/>"))
	require.NoError(t, err)
	fresh, err := c.CreateSession(context.Background(), "b.xml", strings.NewReader("<xml/>"))
	require.NoError(t, err)

	backdate(c, old, 2*time.Hour)
	backdate(c, fresh, 5*time.Minute)

	removed := c.ClearOldSessions(context.Background())
	assert.Equal(t, 1, removed)
	assert.Equal(t, int32(1), remoteDeletes.Load(), "expiry releases the backend session too")

	_, ok := c.GetSession(old)
	assert.False(t, ok)
	_, ok = c.GetSession(fresh)
	assert.True(t, ok)
}

func TestClearOldSessionsEmpty(t *testing.T) {
	c := newTestClient(t, "http://localhost:0", Options{})
	assert.Equal(t, 0, c.ClearOldSessions(context.Background()))
}

func TestAPIStatus(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/health", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"healthy","openai_available":true,"active_sessions":3}`))
		}))
		defer srv.Close()

		c := newTestClient(t, srv.URL, Options{})
		status := c.APIStatus(context.Background())
		assert.True(t, status.Available)
		assert.True(t, status.AIConfigured)
		assert.Equal(t, 3, status.ActiveSessions)
		assert.True(t, status.Reachable)
	})

	t.Run("ai not configured", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"healthy","openai_available":false,"active_sessions":0}`))
		}))
		defer srv.Close()

		c := newTestClient(t, srv.URL, Options{})
		status := c.APIStatus(context.Background())
		assert.True(t, status.Available)
		assert.False(t, status.AIConfigured)
	})

	t.Run("backend down reads as degraded", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		c := newTestClient(t, srv.URL, Options{})
		assert.Equal(t, Degraded(), c.APIStatus(context.Background()))
	})

	t.Run("error status reads as degraded", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		c := newTestClient(t, srv.URL, Options{})
		assert.Equal(t, Degraded(), c.APIStatus(context.Background()))
	})

	t.Run("slow backend is cut off by the probe timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
		}))
		defer srv.Close()
		defer close(release)

		c := newTestClient(t, srv.URL, Options{ProbeTimeout: 50 * time.Millisecond})
		start := time.Now()
		status := c.APIStatus(context.Background())
		assert.Equal(t, Degraded(), status)
		assert.Less(t, time.Since(start), 2*time.Second)
	})
}

func TestDownloadExport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sessions/sess_exp/graphml", r.URL.Path)
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(sampleExport))
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := newTestClient(t, srv.URL, Options{ExportDir: dir})

	path, err := c.DownloadExport(context.Background(), "sess_exp")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sess_exp.graphml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleExport, string(data))
}

func TestDownloadExportCompressed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleExport))
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := newTestClient(t, srv.URL, Options{ExportDir: dir, ExportCompress: true})

	path, err := c.DownloadExport(context.Background(), "sess_gz")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sess_gz.graphml.gz"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Equal(t, sampleExport, string(data))
}

func TestDownloadExportUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Session not found"}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := newTestClient(t, srv.URL, Options{ExportDir: dir})

	_, err := c.DownloadExport(context.Background(), "sess_none")
	var expErr *ExportUnavailableError
	require.ErrorAs(t, err, &expErr)
	assert.Equal(t, "Session not found", expErr.Reason)
	assert.Equal(t, http.StatusNotFound, expErr.Status)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no artifact is written on failure")
}

func TestDownloadExportEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := newTestClient(t, srv.URL, Options{ExportDir: dir})

	// Payload contents are not inspected; an empty body still lands on
	// disk under the session's name.
	path, err := c.DownloadExport(context.Background(), "sess_empty")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestDownloadExportSanitizesName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleExport))
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := newTestClient(t, srv.URL, Options{ExportDir: dir})

	path, err := c.DownloadExport(context.Background(), "weird/../id")
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path), "artifacts never escape the export directory")
}

func TestConcurrentOperations(t *testing.T) {
	var counter atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/sessions/create":
			n := counter.Add(1)
			w.Write([]byte(`{"session_id":"sess_c` + string(rune('a'+n%26)) + `","status":"created"}`))
		case "/chat":
			w.Write([]byte(`{"response":"ok"}`))
		default:
			w.Write([]byte(`{"message":"Session deleted"}`))
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})
	sid, err := c.CreateSession(context.Background(), "shared.xml", strings.NewReader("<xml/>"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_, _ = c.ProcessMessage(context.Background(), sid, "q")
				_, _ = c.GetSession(sid)
				_ = c.Sessions()
				_ = c.ClearOldSessions(context.Background())
			}
		}()
	}
	wg.Wait()

	s, ok := c.GetSession(sid)
	require.True(t, ok)
	assert.Equal(t, 0, len(s.Messages)%2, "exchanges always land in pairs")
}

func TestSessionsOrdering(t *testing.T) {
	next := 0
	ids := []string{"sess_first", "sess_second"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"session_id":"` + ids[next] + `","status":"created"}`))
		next++
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})
	first, _ := c.CreateSession(context.Background(), "a.xml", strings.NewReader("<xml/>"))
	second, _ := c.CreateSession(context.Background(), "b.xml", strings.NewReader("<xml/>"))
	backdate(c, first, time.Minute)

	list := c.Sessions()
	require.Len(t, list, 2)
	assert.Equal(t, second, list[0].ID)
	assert.Equal(t, first, list[1].ID)
}

func TestNewDefaults(t *testing.T) {
	tc := transport.New(transport.Options{BaseURL: "http://localhost:8000"})
	c := New(tc, Options{})
	assert.Equal(t, time.Hour, c.IdleThreshold())
	assert.Equal(t, defaultProbeTimeout, c.probeTimeout)
	assert.Equal(t, ".", c.exportDir)

	assert.Panics(t, func() { New(nil, Options{}) })
}

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sess_01J8ZQ", "sess_01J8ZQ"},
		{"a/b\\c", "a_b_c"},
		{"..", ".."},
		{"id with spaces", "id_with_spaces"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, safeFilename(tt.in))
	}
}
