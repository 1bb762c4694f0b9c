package api

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	models "BodyMetrics/internal/domain/models"
)

func dialLive(t *testing.T, cfg LiveConfig) *websocket.Conn {
	t.Helper()
	e := newTestEcho(t, NewLiveHandler(nil, newTestService(t), cfg))
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func exchange(t *testing.T, conn *websocket.Conn, frame string) LiveFrame {
	t.Helper()
	_ = conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var out LiveFrame
	if err := conn.ReadJSON(&out); err != nil {
		t.Fatalf("read: %v", err)
	}
	return out
}

func TestLiveComputesEachFrame(t *testing.T) {
	conn := dialLive(t, LiveConfig{Burst: 10, MaxRPS: 10})

	got := exchange(t, conn, `{"height":180,"mass":75,"waist":80,"hip":95,"age":30}`)
	if got.Type != FrameResults || len(got.Results) != 4 || got.Results[0].Metric != models.MetricBMI || got.Results[0].Label != "Healthy" {
		t.Fatalf("unexpected frame %+v", got)
	}

	got = exchange(t, conn, `{"height":160,"mass":45,"waist":70,"hip":90,"age":30,"mode":"basic"}`)
	if got.Type != FrameResults || got.Results[0].Label != "Underweight" || got.Results[0].Digits != 0 {
		t.Fatalf("unexpected frame %+v", got)
	}

	got = exchange(t, conn, `{"subject_id":"s9","height":180,"mass":75,"waist":80,"hip":95}`)
	if got.Type != FrameResults || got.Assessment == nil || got.Assessment.SubjectID != "s9" {
		t.Fatalf("expected recorded assessment, got %+v", got)
	}
}

func TestLiveReportsErrors(t *testing.T) {
	conn := dialLive(t, LiveConfig{Burst: 10, MaxRPS: 10})

	if got := exchange(t, conn, `not json`); got.Type != FrameError || got.Errors == nil {
		t.Fatalf("expected error frame, got %+v", got)
	}
	got := exchange(t, conn, `{"height":-1,"mass":75,"waist":80,"hip":95}`)
	if got.Type != FrameError {
		t.Fatalf("expected validation error frame, got %+v", got)
	}
	if !strings.Contains(toJSON(t, got.Errors), `"field":"height"`) {
		t.Fatalf("error should name the field: %s", toJSON(t, got.Errors))
	}
	// connection survives bad frames
	if got := exchange(t, conn, `{"height":180,"mass":75,"waist":80,"hip":95}`); got.Type != FrameResults {
		t.Fatalf("expected results after errors, got %+v", got)
	}
}

func TestLiveThrottlesExcessFrames(t *testing.T) {
	conn := dialLive(t, LiveConfig{Burst: 2, MaxRPS: 0.001})
	frame := `{"height":180,"mass":75,"waist":80,"hip":95}`

	for i := 0; i < 2; i++ {
		if got := exchange(t, conn, frame); got.Type != FrameResults {
			t.Fatalf("frame %d: expected results, got %+v", i, got)
		}
	}
	got := exchange(t, conn, frame)
	if got.Type != FrameThrottled || len(got.Results) != 0 {
		t.Fatalf("expected throttled frame, got %+v", got)
	}
}

func TestLiveRejectsForeignOrigin(t *testing.T) {
	h := NewLiveHandler(nil, newTestService(t), LiveConfig{AllowOrigins: []string{"https://app.example"}})
	req := httptest.NewRequest("GET", "/api/live", nil)
	req.Header.Set("Origin", "https://evil.example")
	if h.checkOrigin(req) {
		t.Fatalf("foreign origin accepted")
	}
	req.Header.Set("Origin", "https://app.example")
	if !h.checkOrigin(req) {
		t.Fatalf("allowed origin rejected")
	}
}

func toJSON(t *testing.T, v interface{}) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestLiveBudgetIsPerConnection(t *testing.T) {
	e := newTestEcho(t, NewLiveHandler(nil, newTestService(t), LiveConfig{Burst: 1, MaxRPS: 0.001}))
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/live"
	frame := `{"height":180,"mass":75,"waist":80,"hip":95}`

	for i := 0; i < 2; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("dial %d: %v", i, err)
		}
		if got := exchange(t, conn, frame); got.Type != FrameResults {
			t.Fatalf("conn %d: first frame should pass, got %+v", i, got)
		}
		if got := exchange(t, conn, frame); got.Type != FrameThrottled {
			t.Fatalf("conn %d: second frame should be throttled, got %+v", i, got)
		}
		_ = conn.Close()
	}
}

func TestLiveRejectsTinyHeight(t *testing.T) {
	conn := dialLive(t, LiveConfig{Burst: 10, MaxRPS: 10})
	got := exchange(t, conn, `{"height":1e-200,"mass":75}`)
	if got.Type != FrameError || !strings.Contains(toJSON(t, got.Errors), `"field":"height"`) {
		t.Fatalf("expected height error, got %+v", got)
	}
}
