package http

import (
	"encoding/json"

	"github.com/relaywire/chatroom/internal/core"
	"github.com/relaywire/chatroom/internal/proto"
)

// inboundToCommand parses a raw inbound frame. A parse failure returns an
// error; a frame with an unrecognized type returns a nil command and the
// type string for logging.
func inboundToCommand(data []byte) (*core.Command, string, error) {
	var inbound proto.Inbound
	if err := json.Unmarshal(data, &inbound); err != nil {
		return nil, "", err
	}

	switch inbound.Type {
	case proto.InboundTypeUsername:
		return &core.Command{
			Kind: core.CommandSetName,
			Name: inbound.Username,
		}, inbound.Type, nil
	case proto.InboundTypeMessage:
		return &core.Command{
			Kind: core.CommandSendMessage,
			Text: inbound.Message,
		}, inbound.Type, nil
	default:
		return nil, inbound.Type, nil
	}
}

func outboundFromEvent(event *core.Event) any {
	switch event.Kind {
	case core.EventSystem:
		return proto.SystemEvent{
			Type:    proto.OutboundTypeSystem,
			Message: event.Notice,
			UserID:  event.UserID,
		}
	case core.EventHistory:
		messages := make([]proto.ChatMessage, 0, len(event.Messages))
		for _, msg := range event.Messages {
			messages = append(messages, proto.ChatMessage{
				Username:  msg.From,
				Message:   msg.Text,
				Timestamp: msg.Timestamp,
			})
		}
		return proto.HistoryEvent{
			Type:     proto.OutboundTypeHistory,
			Messages: messages,
		}
	case core.EventChatMessage:
		return proto.MessageEvent{
			Type:      proto.OutboundTypeMessage,
			Username:  event.Message.From,
			Message:   event.Message.Text,
			Timestamp: event.Message.Timestamp,
		}
	case core.EventUserJoined:
		return proto.PresenceEvent{
			Type:        proto.OutboundTypeUserJoined,
			Username:    event.User,
			Message:     event.Notice,
			OnlineUsers: event.Roster,
		}
	case core.EventUserLeft:
		return proto.PresenceEvent{
			Type:        proto.OutboundTypeUserLeft,
			Username:    event.User,
			Message:     event.Notice,
			OnlineUsers: event.Roster,
		}
	default:
		return proto.SystemEvent{Type: proto.OutboundTypeSystem}
	}
}
