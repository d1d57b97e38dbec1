package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/marinerstack/mariner-guard/internal/models"
)

type hubRecorder struct {
	mu     sync.Mutex
	bodies []string
	status int
}

func (h *hubRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	h.mu.Lock()
	h.bodies = append(h.bodies, string(body))
	status := h.status
	h.mu.Unlock()
	if status == 0 {
		status = http.StatusNoContent
	}
	w.WriteHeader(status)
}

func (h *hubRecorder) last() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.bodies) == 0 {
		return ""
	}
	return h.bodies[len(h.bodies)-1]
}

func newTestHub(t *testing.T, rec *hubRecorder) *HubClient {
	t.Helper()
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)
	return NewHubClient(srv.URL, "/api/v1/notifications", 2*time.Second)
}

func TestHubPublish(t *testing.T) {
	rec := &hubRecorder{}
	client := newTestHub(t, rec)

	err := client.Publish(context.Background(), models.Notification{
		Key:         models.KeyAnchorDrag,
		Message:     "Anchor dragging",
		Severity:    models.SeverityEmergency,
		Method:      []string{models.MethodVisual, models.MethodSound},
		Silenceable: false,
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	var envelope struct {
		Key          string               `json:"key"`
		Notification *models.Notification `json:"notification"`
	}
	if err := json.Unmarshal([]byte(rec.last()), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if envelope.Key != models.KeyAnchorDrag {
		t.Fatalf("key = %q", envelope.Key)
	}
	if envelope.Notification == nil || envelope.Notification.Severity != models.SeverityEmergency {
		t.Fatalf("unexpected notification %+v", envelope.Notification)
	}
}

func TestHubClearSendsNull(t *testing.T) {
	rec := &hubRecorder{}
	client := newTestHub(t, rec)

	if err := client.Clear(context.Background(), models.KeyAnchorWatch); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	// The clear contract is a literal null body for the key, not an empty
	// object or a low-severity record.
	body := rec.last()
	if !strings.Contains(body, `"notification":null`) {
		t.Fatalf("expected explicit null notification, body = %s", body)
	}
	if !strings.Contains(body, models.KeyAnchorWatch) {
		t.Fatalf("expected key in body, body = %s", body)
	}
}

func TestHubRejectedStatus(t *testing.T) {
	rec := &hubRecorder{status: http.StatusBadGateway}
	client := newTestHub(t, rec)

	if err := client.Publish(context.Background(), models.Notification{Key: "k"}); err == nil {
		t.Fatal("expected error for 502 response")
	}
}

func TestHubUnconfigured(t *testing.T) {
	client := NewHubClient("", "/notifications", time.Second)

	if err := client.Publish(context.Background(), models.Notification{Key: "k"}); err == nil {
		t.Fatal("expected error without base URL")
	}
	if err := client.Clear(context.Background(), "k"); err == nil {
		t.Fatal("expected error without base URL")
	}
}
