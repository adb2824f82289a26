package gateway

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Tavhidjon/RealEstate/internal/model"
)

const (
	// HeaderSize 帧头大小：4 字节消息体长度
	HeaderSize = 4

	// MaxFrameSize 单帧消息体上限
	MaxFrameSize = 64 * 1024

	// 客户端 -> 服务端
	EventSendMessage = "send-message"
	EventMarkRead    = "mark-read"

	// 服务端 -> 客户端
	EventMessage     = "message"
	EventReadUpdated = "read-updated"
	EventError       = "error"
)

var (
	ErrFrameTooLarge = errors.New("frame exceeds max size")

	// ErrInvalidFrame 消息体不是合法 JSON
	// 帧头定长，坏帧不会破坏流同步，调用方可以继续读下一帧
	ErrInvalidFrame = errors.New("invalid event frame")
)

// Event 网关事件帧的消息体，JSON 编码
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// SendMessagePayload send-message 事件载荷
type SendMessagePayload struct {
	ConversationID int64  `json:"conversation_id,string"`
	Content        string `json:"content"`
}

// MarkReadPayload mark-read 事件载荷
// ReaderRole 可选；提供时必须与服务端解析出的角色一致
type MarkReadPayload struct {
	ConversationID int64            `json:"conversation_id,string"`
	ReaderRole     model.SenderRole `json:"reader_role,omitempty"`
}

// MessagePayload message 事件载荷，推送给会话双方
type MessagePayload struct {
	Message *model.Message `json:"message"`
}

// ReadUpdatedPayload read-updated 事件载荷
// Count 为 0 也照常广播，作为"没有变化"的确认
type ReadUpdatedPayload struct {
	ConversationID int64            `json:"conversation_id,string"`
	UpdatedBy      int64            `json:"updated_by,string"`
	ReaderRole     model.SenderRole `json:"reader_role"`
	Count          int64            `json:"count"`
}

// ErrorPayload error 事件载荷，只发给出错请求的发送方
type ErrorPayload struct {
	Code    int    `json:"code"`
	Content string `json:"content"`
}

// ReadEvent 从流中读取一个事件帧
func ReadEvent(r io.Reader) (*Event, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint32(header)
	if length > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}

	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}
	return &event, nil
}

// EncodeEvent 编码事件为完整帧（帧头 + JSON 消息体）
func EncodeEvent(eventType string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(&Event{Type: eventType, Data: data})
	if err != nil {
		return nil, err
	}
	if len(body) > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}

	frame := make([]byte, HeaderSize+len(body))
	binary.BigEndian.PutUint32(frame[:HeaderSize], uint32(len(body)))
	copy(frame[HeaderSize:], body)
	return frame, nil
}
