package http

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/relaywire/chatroom/internal/config"
	"github.com/relaywire/chatroom/internal/core"
	"github.com/relaywire/chatroom/internal/proto"
)

// wireEvent is a catch-all decode target for server events.
type wireEvent struct {
	Type        string              `json:"type"`
	Message     string              `json:"message"`
	Username    string              `json:"username"`
	Timestamp   string              `json:"timestamp"`
	UserID      int64               `json:"userId"`
	Messages    []proto.ChatMessage `json:"messages"`
	OnlineUsers []string            `json:"onlineUsers"`
}

func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := zerolog.Nop()
	hub := core.NewHub(0, &logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	server := NewServer(hub, config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
		SendBuffer:        8,
	}, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func dial(t *testing.T, ctx context.Context, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func readEvent(t *testing.T, ctx context.Context, conn *websocket.Conn) wireEvent {
	t.Helper()

	var ev wireEvent
	if err := wsjson.Read(ctx, conn, &ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return ev
}

func sendUsername(t *testing.T, ctx context.Context, conn *websocket.Conn, name string) {
	t.Helper()

	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeUsername, Username: name}); err != nil {
		t.Fatalf("send username: %v", err)
	}
}

func sendMessage(t *testing.T, ctx context.Context, conn *websocket.Conn, text string) {
	t.Helper()

	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeMessage, Message: text}); err != nil {
		t.Fatalf("send message: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestChatSession(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	connA := dial(t, ctx, ts)

	welcome := readEvent(t, ctx, connA)
	if welcome.Type != "system" || welcome.UserID != 1 {
		t.Fatalf("unexpected welcome: %+v", welcome)
	}

	sendUsername(t, ctx, connA, "alice")
	conf := readEvent(t, ctx, connA)
	if conf.Type != "system" || conf.Message != "Your username has been set to alice" {
		t.Fatalf("unexpected confirmation: %+v", conf)
	}

	connB := dial(t, ctx, ts)
	welcomeB := readEvent(t, ctx, connB)
	if welcomeB.UserID != 2 {
		t.Fatalf("expected user id 2, got %d", welcomeB.UserID)
	}

	sendUsername(t, ctx, connB, "bob")

	// History is empty at this point, so bob's first event is the confirmation.
	confB := readEvent(t, ctx, connB)
	if confB.Type != "system" || confB.Message != "Your username has been set to bob" {
		t.Fatalf("unexpected confirmation for bob: %+v", confB)
	}

	// Alice sees the rename notice and the join notice with the full roster.
	notice := readEvent(t, ctx, connA)
	if notice.Type != "system" || notice.Message != "User2 changed their name to bob" {
		t.Fatalf("unexpected rename notice: %+v", notice)
	}
	joined := readEvent(t, ctx, connA)
	if joined.Type != "user-joined" || joined.Username != "bob" {
		t.Fatalf("unexpected join event: %+v", joined)
	}
	if len(joined.OnlineUsers) != 2 || joined.OnlineUsers[0] != "alice" || joined.OnlineUsers[1] != "bob" {
		t.Fatalf("unexpected roster: %v", joined.OnlineUsers)
	}

	// Chat messages reach everyone, the sender included.
	sendMessage(t, ctx, connA, "hi")
	for name, conn := range map[string]*websocket.Conn{"alice": connA, "bob": connB} {
		msg := readEvent(t, ctx, conn)
		if msg.Type != "message" || msg.Username != "alice" || msg.Message != "hi" {
			t.Fatalf("unexpected chat event for %s: %+v", name, msg)
		}
		if msg.Timestamp == "" {
			t.Fatalf("chat event missing timestamp: %+v", msg)
		}
	}

	// Bob disconnects; alice gets the leave notice with the shrunken roster.
	connB.Close(websocket.StatusNormalClosure, "bye")
	left := readEvent(t, ctx, connA)
	if left.Type != "user-left" || left.Username != "bob" {
		t.Fatalf("unexpected leave event: %+v", left)
	}
	if len(left.OnlineUsers) != 1 || left.OnlineUsers[0] != "alice" {
		t.Fatalf("roster should only contain alice: %v", left.OnlineUsers)
	}
}

func TestHistoryReplayOverWire(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	connA := dial(t, ctx, ts)
	readEvent(t, ctx, connA) // welcome
	sendUsername(t, ctx, connA, "alice")
	readEvent(t, ctx, connA) // confirmation
	sendMessage(t, ctx, connA, "hello")
	readEvent(t, ctx, connA) // own message echo

	connB := dial(t, ctx, ts)
	readEvent(t, ctx, connB) // welcome
	sendUsername(t, ctx, connB, "bob")

	history := readEvent(t, ctx, connB)
	if history.Type != "history" {
		t.Fatalf("expected history before confirmation, got %+v", history)
	}
	if len(history.Messages) != 1 || history.Messages[0].Username != "alice" || history.Messages[0].Message != "hello" {
		t.Fatalf("unexpected history payload: %+v", history.Messages)
	}

	conf := readEvent(t, ctx, connB)
	if conf.Message != "Your username has been set to bob" {
		t.Fatalf("expected confirmation after history, got %+v", conf)
	}
}

func TestMalformedPayloadKeepsConnectionOpen(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn := dial(t, ctx, ts)
	readEvent(t, ctx, conn) // welcome

	if err := conn.Write(ctx, websocket.MessageText, []byte("{not json")); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	if err := wsjson.Write(ctx, conn, map[string]string{"type": "bogus"}); err != nil {
		t.Fatalf("write unknown type: %v", err)
	}

	// Both frames are dropped; the connection still works and the anonymous
	// sender chats under its default name.
	sendMessage(t, ctx, conn, "still here")
	msg := readEvent(t, ctx, conn)
	if msg.Type != "message" || msg.Username != "User1" || msg.Message != "still here" {
		t.Fatalf("unexpected chat event: %+v", msg)
	}
}

func TestServerAcceptsAnyUsername(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn := dial(t, ctx, ts)
	readEvent(t, ctx, conn) // welcome

	// Validation lives only in well-behaved clients; the server takes the
	// string as-is, empty included.
	sendUsername(t, ctx, conn, "")
	conf := readEvent(t, ctx, conn)
	if conf.Type != "system" || conf.Message != "Your username has been set to " {
		t.Fatalf("unexpected confirmation: %+v", conf)
	}
}
