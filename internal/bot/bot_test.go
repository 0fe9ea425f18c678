package bot

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certhub/examdesk/internal/db"
	"github.com/certhub/examdesk/internal/events"
	"github.com/certhub/examdesk/internal/services"
)

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTelegram struct {
	mu   sync.Mutex
	path []string
	msgs []map[string]any
}

func (f *fakeTelegram) server(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.path = append(f.path, r.URL.Path)
		f.msgs = append(f.msgs, body)
		f.mu.Unlock()
		w.Write([]byte(`{"ok":true}`)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_SendMessage(t *testing.T) {
	var tg fakeTelegram
	srv := tg.server(t)
	c := NewClient("123:abc").WithBaseURL(srv.URL)

	require.NoError(t, c.SendMessage(context.Background(), 42, "xin chào"))
	require.Len(t, tg.msgs, 1)
	assert.Equal(t, "/bot123:abc/sendMessage", tg.path[0])
	assert.Equal(t, float64(42), tg.msgs[0]["chat_id"])
	assert.Equal(t, "HTML", tg.msgs[0]["parse_mode"])
}

func TestClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad", http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewClient("t").WithBaseURL(srv.URL).SendMessage(context.Background(), 1, "x")
	assert.ErrorContains(t, err, "403")
}

func TestNotifier_Async(t *testing.T) {
	var tg fakeTelegram
	srv := tg.server(t)

	n := NewNotifier(NewClient("t").WithBaseURL(srv.URL), 7, quietLog())
	done := make(chan error, 1)
	n.sent = func(err error) { done <- err }

	n.Notify(context.Background(), events.Notice{Kind: events.KindError, Workflow: "assign_room", Text: "<full>"})
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("notice not delivered")
	}
	tg.mu.Lock()
	defer tg.mu.Unlock()
	require.Len(t, tg.msgs, 1)
	assert.Contains(t, tg.msgs[0]["text"], "&lt;full&gt;")
}

func TestNotifier_DisabledWithoutToken(t *testing.T) {
	n := NewNotifier(NewClient(""), 7, quietLog())
	called := false
	n.sent = func(error) { called = true }
	n.Notify(context.Background(), events.Notice{Workflow: "x"})
	assert.False(t, called)
}

// TestDigest_Window checks that a session is announced only in the minute
// that sits exactly one offset ahead of it.
func TestDigest_Window(t *testing.T) {
	conn, err := db.Open(filepath.Join(t.TempDir(), "digest.db"), "", quietLog())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(conn) }) //nolint:errcheck
	svc := services.New(conn, quietLog())
	ctx := context.Background()

	cert, err := svc.CreateCertificate(ctx, services.CertificateInput{Code: "IELTS", Name: "IELTS Academic", Fee: 4_664_000})
	require.NoError(t, err)
	at := time.Date(2026, 11, 8, 1, 30, 0, 0, time.UTC)
	_, err = svc.CreateSession(ctx, services.SessionInput{CertificateID: cert.ID, ScheduledAt: at, Location: "Hà Nội", Seats: 20})
	require.NoError(t, err)

	var tg fakeTelegram
	srv := tg.server(t)
	loc := time.FixedZone("ICT", 7*3600)
	d := NewDigest(svc, NewClient("t").WithBaseURL(srv.URL), 99, []time.Duration{24 * time.Hour}, loc, quietLog())

	assert.Equal(t, 0, d.Tick(ctx, at.Add(-25*time.Hour)))
	assert.Equal(t, 1, d.Tick(ctx, at.Add(-24*time.Hour).Add(30*time.Second)))
	assert.Equal(t, 0, d.Tick(ctx, at.Add(-24*time.Hour).Add(time.Minute)))

	require.Len(t, tg.msgs, 1)
	text, _ := tg.msgs[0]["text"].(string)
	assert.Contains(t, text, "IELTS")
	assert.Contains(t, text, "08:30 08/11/2026")
	assert.Contains(t, text, "Thí sinh: 0")
}
