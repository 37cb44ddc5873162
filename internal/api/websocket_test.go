package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/isp-devices/internal/infrastructure/config"
	"github.com/nerrad567/isp-devices/internal/infrastructure/logging"
	"github.com/nerrad567/isp-devices/internal/invocation"
)

func testHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(config.WebSocketConfig{Enabled: true, MaxMessageSize: 8192, PingInterval: 30, PongTimeout: 10}, logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func fakeClient(hub *Hub, channels ...string) *WSClient {
	subs := make(map[string]struct{}, len(channels))
	for _, ch := range channels {
		subs[ch] = struct{}{}
	}
	return &WSClient{
		hub:           hub,
		send:          make(chan []byte, wsSendBufferSize),
		subscriptions: subs,
	}
}

func TestHub_BroadcastToSubscribed(t *testing.T) {
	hub := testHub(t)
	client := fakeClient(hub, invocation.EventDeviceInvoked)
	hub.Register(client)

	hub.Broadcast(invocation.EventDeviceInvoked, map[string]any{"variant": "tablet"})

	select {
	case data := <-client.send:
		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if msg.Type != WSTypeEvent || msg.EventType != invocation.EventDeviceInvoked {
			t.Errorf("message = %+v, want %s event", msg, invocation.EventDeviceInvoked)
		}
		if !strings.Contains(string(msg.Payload), `"tablet"`) {
			t.Errorf("payload = %s, want the broadcast body", msg.Payload)
		}
	case <-time.After(time.Second):
		t.Error("timed out waiting for broadcast message")
	}
}

func TestHub_NoMessageForUnsubscribed(t *testing.T) {
	hub := testHub(t)
	client := fakeClient(hub, "other.event")
	hub.Register(client)

	hub.Broadcast(invocation.EventDeviceInvoked, map[string]any{"variant": "tablet"})

	select {
	case <-client.send:
		t.Error("unsubscribed client should not receive message")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := testHub(t)
	client := fakeClient(hub)

	hub.Register(client)
	if hub.ClientCount() != 1 {
		t.Errorf("after register count = %d, want 1", hub.ClientCount())
	}

	hub.Unregister(client)
	hub.Unregister(client)
	if hub.ClientCount() != 0 {
		t.Errorf("after unregister count = %d, want 0", hub.ClientCount())
	}

	// Broadcasting to a removed client must not panic.
	client.trySend([]byte("x"))
}

// wsServer serves the router over a real listener for WebSocket tests.
func wsServer(t *testing.T, secret string) (*Server, string) {
	t.Helper()
	srv := testServer(t, func(d *Deps) { d.Security.JWT.Secret = secret })
	ts := httptest.NewServer(srv.buildRouter())
	t.Cleanup(ts.Close)
	return srv, "ws" + strings.TrimPrefix(ts.URL, "http") + "/isp/v1/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v (resp: %v)", err, resp)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func roundTrip(t *testing.T, ws *websocket.Conn, msg any) WSMessage {
	t.Helper()
	if err := ws.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
	return readMessage(t, ws)
}

func readMessage(t *testing.T, ws *websocket.Conn) WSMessage {
	t.Helper()
	//nolint:errcheck // Test deadline
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var resp WSMessage
	if err := ws.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	return resp
}

func subscribeMsg(id string, channels ...string) map[string]any {
	return map[string]any{
		"type":    WSTypeSubscribe,
		"id":      id,
		"payload": WSSubscribePayload{Channels: channels},
	}
}

func TestWebSocket_OpenWithoutSecret(t *testing.T) {
	srv, url := wsServer(t, "")
	ws := dial(t, url)

	resp := roundTrip(t, ws, map[string]any{"type": WSTypePing, "id": "ping-1"})
	if resp.Type != WSTypePong || resp.ID != "ping-1" {
		t.Errorf("response = %+v, want pong ping-1", resp)
	}
	if srv.hub.ClientCount() != 1 {
		t.Errorf("hub client count = %d, want 1", srv.hub.ClientCount())
	}
}

func TestWebSocket_Disabled(t *testing.T) {
	srv := testServer(t, func(d *Deps) { d.WS.Enabled = false })
	w := serve(t, srv, httptest.NewRequest(http.MethodGet, "/isp/v1/ws", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestWebSocket_TicketRequired(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "no ticket"},
		{name: "unknown ticket", query: "?ticket=invalid-ticket"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, url := wsServer(t, testSecret)
			_, resp, err := websocket.DefaultDialer.Dial(url+tt.query, nil)
			if err == nil {
				t.Fatal("expected dial error")
			}
			if resp == nil || resp.StatusCode != http.StatusUnauthorized {
				t.Errorf("resp = %v, want 401", resp)
			}
		})
	}
}

func TestWebSocket_TicketFlow(t *testing.T) {
	srv, url := wsServer(t, testSecret)

	ticket := srv.tickets.issue("instructor-1")
	ws := dial(t, url+"?ticket="+ticket)

	resp := roundTrip(t, ws, subscribeMsg("sub-1", invocation.EventDeviceInvoked))
	if resp.Type != WSTypeResponse || resp.ID != "sub-1" {
		t.Errorf("response = %+v, want response sub-1", resp)
	}

	// Tickets are single use.
	if _, r, err := websocket.DefaultDialer.Dial(url+"?ticket="+ticket, nil); err == nil {
		t.Error("second dial with the same ticket succeeded")
	} else if r == nil || r.StatusCode != http.StatusUnauthorized {
		t.Errorf("second dial resp = %v, want 401", r)
	}
}

func TestWebSocket_SubscribeUnsubscribe(t *testing.T) {
	_, url := wsServer(t, "")
	ws := dial(t, url)

	resp := roundTrip(t, ws, subscribeMsg("sub-1", "a", "b"))
	if resp.Type != WSTypeResponse {
		t.Errorf("subscribe response type = %s, want response", resp.Type)
	}

	resp = roundTrip(t, ws, map[string]any{
		"type":    WSTypeUnsubscribe,
		"id":      "unsub-1",
		"payload": WSSubscribePayload{Channels: []string{"b"}},
	})
	if resp.Type != WSTypeResponse || !strings.Contains(string(resp.Payload), "unsubscribed") {
		t.Errorf("unsubscribe response = %+v", resp)
	}
}

func TestWebSocket_BadMessages(t *testing.T) {
	_, url := wsServer(t, "")
	ws := dial(t, url)

	if err := ws.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if resp := readMessage(t, ws); resp.Type != WSTypeError {
		t.Errorf("invalid JSON: type = %s, want error", resp.Type)
	}

	if resp := roundTrip(t, ws, map[string]any{"type": "unknown_type", "id": "x"}); resp.Type != WSTypeError || resp.ID != "x" {
		t.Errorf("unknown type: response = %+v, want error x", resp)
	}

	if resp := roundTrip(t, ws, map[string]any{"type": WSTypeSubscribe, "id": "y"}); resp.Type != WSTypeError {
		t.Errorf("subscribe without payload: type = %s, want error", resp.Type)
	}
}

func TestWebSocket_DeviceInvokedEvents(t *testing.T) {
	srv := testServer(t, nil)
	srv.recorder = invocation.BroadcastSink(srv.hub)
	ts := httptest.NewServer(srv.buildRouter())
	t.Cleanup(ts.Close)

	ws := dial(t, "ws"+strings.TrimPrefix(ts.URL, "http")+"/isp/v1/ws")
	roundTrip(t, ws, subscribeMsg("sub-1", invocation.EventDeviceInvoked))

	resp, err := http.Get(ts.URL + "/isp/v1/tablet")
	if err != nil {
		t.Fatalf("GET /tablet: %v", err)
	}
	resp.Body.Close()

	for i, want := range []string{"power_on", "power_off", "show_info"} {
		msg := readMessage(t, ws)
		if msg.Type != WSTypeEvent || msg.EventType != invocation.EventDeviceInvoked {
			t.Fatalf("event %d = %+v, want %s", i, msg, invocation.EventDeviceInvoked)
		}
		var inv invocation.Invocation
		if err := json.Unmarshal(msg.Payload, &inv); err != nil {
			t.Fatalf("event %d payload: %v", i, err)
		}
		if string(inv.Operation) != want || inv.Variant != "tablet" {
			t.Errorf("event %d = %s/%s, want tablet/%s", i, inv.Variant, inv.Operation, want)
		}
	}
}
