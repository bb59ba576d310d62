package handler

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"printer-server/internal/model"
)

func readMessage(t *testing.T, conn *websocket.Conn) WebSocketMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg WebSocketMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func dataOf(t *testing.T, msg WebSocketMessage) map[string]interface{} {
	t.Helper()
	data, ok := msg.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected %s payload %v", msg.Type, msg.Data)
	}
	return data
}

func TestWebSocketHandler_EventStream(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	go bus.Start()
	defer bus.Stop()

	h := NewWebSocketHandler(newFakePrinters(), bus, zap.NewNop())
	defer h.Close()

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h.RegisterRoutes(engine.Group("/ws"))

	server := httptest.NewServer(engine)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	initial := readMessage(t, conn)
	if initial.Type != "initial_status" || dataOf(t, initial)["current_handler"] != "TEST" {
		t.Fatalf("unexpected initial message %+v", initial)
	}

	conn.WriteJSON(WebSocketMessage{Type: "ping", RequestID: "r1"})
	if pong := readMessage(t, conn); pong.Type != "pong" || pong.RequestID != "r1" {
		t.Fatalf("unexpected pong %+v", pong)
	}

	conn.WriteJSON(WebSocketMessage{Type: "subscribe", Data: map[string]interface{}{"topic": "REPORT_PRINTED"}})
	if confirmed := readMessage(t, conn); confirmed.Type != "subscription_confirmed" {
		t.Fatalf("unexpected confirmation %+v", confirmed)
	}

	bus.Publish(model.NewPrinterEvent(model.EventDocumentProcessed, model.HandlerTest, nil))
	bus.Publish(model.NewPrinterEvent(model.EventReportPrinted, model.HandlerTest, map[string]interface{}{"report": "Z"}))

	event := readMessage(t, conn)
	if event.Type != "printer_event" || dataOf(t, event)["event_type"] != "REPORT_PRINTED" {
		t.Fatalf("expected only the subscribed event, got %+v", event)
	}

	conn.WriteJSON(WebSocketMessage{Type: "status", RequestID: "r2"})
	status := readMessage(t, conn)
	if status.Type != "status_response" || status.RequestID != "r2" || dataOf(t, status)["success"] != true {
		t.Fatalf("unexpected status response %+v", status)
	}

	conn.WriteJSON(WebSocketMessage{Type: "reboot"})
	if reply := readMessage(t, conn); reply.Type != "error" {
		t.Fatalf("expected an error for an unknown type, got %+v", reply)
	}

	if stats := h.GetConnectionStats(); stats.TotalConnections != 1 || stats.ByType["events"] != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestConnectionManager_Unregister(t *testing.T) {
	cm := NewConnectionManager()
	client := &Client{ID: "c1", Type: "events", Send: make(chan []byte, 1)}

	cm.Register(client)
	if !cm.Deliver(client, []byte("one")) {
		t.Fatalf("expected delivery")
	}
	if cm.Deliver(client, []byte("two")) {
		t.Fatalf("expected a full buffer to drop the message")
	}

	cm.Unregister(client)
	cm.Unregister(client)
	if cm.Deliver(client, []byte("three")) {
		t.Fatalf("expected no delivery after unregister")
	}
	if dropped := cm.Broadcast("REPORT_PRINTED", []byte("four")); len(dropped) != 0 {
		t.Fatalf("unexpected dropped clients %v", dropped)
	}
	if cm.Count() != 0 {
		t.Fatalf("expected no clients")
	}
}
