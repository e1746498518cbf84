package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/spf13/cobra"

	"github.com/relaywire/chatroom/internal/proto"
)

// reconnectDelay is the fixed retry interval after a dropped connection.
// Deliberately naive: constant delay, unbounded attempts, no session
// resumption. The server treats every reconnect as a brand-new session.
const reconnectDelay = 3 * time.Second

func main() {
	var (
		addr string
		name string
	)

	rootCmd := &cobra.Command{
		Use:   "chatroom-chat",
		Short: "Terminal client for the chatroom server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(addr, name)
		},
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVar(&addr, "addr", "ws://localhost:8080/ws", "WebSocket address")
	rootCmd.Flags().StringVar(&name, "name", "", "display name (prompted if empty)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(addr, name string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stdin := bufio.NewScanner(os.Stdin)

	username, err := resolveUsername(stdin, name)
	if err != nil {
		return err
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		for stdin.Scan() {
			lines <- stdin.Text()
		}
	}()

	for {
		err := session(ctx, addr, username, lines)
		if ctx.Err() != nil || errors.Is(err, errStdinClosed) {
			return nil
		}
		if err != nil {
			log.Printf("disconnected: %v", err)
		}

		fmt.Printf("Reconnecting in %s...\n", reconnectDelay)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectDelay):
		}
	}
}

// resolveUsername validates the flag value or prompts until an acceptable
// name is entered: non-empty after trimming and at least 2 characters.
func resolveUsername(stdin *bufio.Scanner, name string) (string, error) {
	name = strings.TrimSpace(name)
	for !validUsername(name) {
		if name != "" {
			fmt.Println("Username must be at least 2 characters long.")
		}
		fmt.Print("Enter a username: ")
		if !stdin.Scan() {
			return "", errStdinClosed
		}
		name = strings.TrimSpace(stdin.Text())
	}
	return name, nil
}

func validUsername(name string) bool {
	return len(name) >= 2
}

var errStdinClosed = errors.New("stdin closed")

func session(baseCtx context.Context, addr, username string, lines <-chan string) error {
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusInternalError, "closing")

	if err := wsjson.Write(ctx, conn, proto.Inbound{
		Type:     proto.InboundTypeUsername,
		Username: username,
	}); err != nil {
		return fmt.Errorf("send username: %w", err)
	}

	fmt.Printf("Connected to %s as %s\n", addr, username)
	fmt.Println("Type messages and press Enter to send. Ctrl+C to exit.")

	readErr := make(chan error, 1)
	go func() {
		readErr <- readLoop(ctx, conn)
	}()

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "bye")
			return nil
		case err := <-readErr:
			return err
		case line, ok := <-lines:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "bye")
				return errStdinClosed
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			if err := wsjson.Write(ctx, conn, proto.Inbound{
				Type:    proto.InboundTypeMessage,
				Message: text,
			}); err != nil {
				return fmt.Errorf("send message: %w", err)
			}
		}
	}
}

func readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			return err
		}
		printEvent(data)
	}
}

func printEvent(data []byte) {
	typ := peekType(data)

	switch typ {
	case proto.OutboundTypeSystem:
		var evt proto.SystemEvent
		if unmarshalEvent(data, typ, &evt) {
			fmt.Printf("* %s\n", evt.Message)
		}
	case proto.OutboundTypeHistory:
		var evt proto.HistoryEvent
		if unmarshalEvent(data, typ, &evt) && len(evt.Messages) > 0 {
			fmt.Println("--- Previous messages ---")
			for _, msg := range evt.Messages {
				fmt.Printf("[%s] %s: %s\n", msg.Timestamp, msg.Username, msg.Message)
			}
			fmt.Println("--- You are now up to date ---")
		}
	case proto.OutboundTypeMessage:
		var evt proto.MessageEvent
		if unmarshalEvent(data, typ, &evt) {
			fmt.Printf("[%s] %s: %s\n", evt.Timestamp, evt.Username, evt.Message)
		}
	case proto.OutboundTypeUserJoined, proto.OutboundTypeUserLeft:
		var evt proto.PresenceEvent
		if unmarshalEvent(data, typ, &evt) {
			fmt.Printf("* %s (online: %s)\n", evt.Message, strings.Join(evt.OnlineUsers, ", "))
		}
	default:
		log.Printf("unknown event type: %s", typ)
	}
}

func peekType(data []byte) string {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		log.Printf("parse event: %v", err)
		return ""
	}
	return envelope.Type
}

func unmarshalEvent(data []byte, typ string, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		log.Printf("unmarshal %s event: %v", typ, err)
		return false
	}
	return true
}
