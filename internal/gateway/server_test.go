package gateway

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"MarketPulse/internal/broadcast"
	"MarketPulse/internal/model"
)

type stubProvider struct{}

func (stubProvider) Collect(context.Context) (*model.MarketOverview, error) {
	return &model.MarketOverview{GenerationID: "gen-ws"}, nil
}

func startServer(t *testing.T) (*httptest.Server, *broadcast.Broadcaster) {
	t.Helper()
	b := broadcast.NewBroadcaster(stubProvider{}, broadcast.Options{}, zap.NewNop())
	srv := httptest.NewServer(NewServer(b, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv, b
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http"), nil)
	if err != nil {
		t.Fatalf("Failed to connect to websocket: %v", err)
	}
	return ws
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServer_ReceivesBroadcast(t *testing.T) {
	srv, b := startServer(t)
	ws := dial(t, srv.URL)
	defer ws.Close()

	waitFor(t, func() bool { return b.Count() == 1 })
	if err := b.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to receive broadcast: %v", err)
	}
	if !strings.Contains(string(msg), `"type":"market_update"`) || !strings.Contains(string(msg), "gen-ws") {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestServer_ClientCloseUnregisters(t *testing.T) {
	srv, b := startServer(t)
	ws := dial(t, srv.URL)

	waitFor(t, func() bool { return b.Count() == 1 })
	ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	ws.Close()
	waitFor(t, func() bool { return b.Count() == 0 })
}

func TestServer_StopClosesClients(t *testing.T) {
	srv, b := startServer(t)
	ws := dial(t, srv.URL)
	defer ws.Close()

	waitFor(t, func() bool { return b.Count() == 1 })
	if err := b.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := ws.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("expected normal close, got %v", err)
	}

	late := dial(t, srv.URL)
	defer late.Close()
	late.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := late.ReadMessage(); err == nil {
		t.Error("expected subscriber rejected after stop to be closed")
	}
}
