package gateway

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"testing"
)

func TestEventRoundTrip(t *testing.T) {
	frame, err := EncodeEvent(EventSendMessage, &SendMessagePayload{
		ConversationID: 42,
		Content:        "hello",
	})
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	event, err := ReadEvent(bytes.NewReader(frame))
	if err != nil {
		t.Fatalf("ReadEvent failed: %v", err)
	}
	if event.Type != EventSendMessage {
		t.Errorf("expected type %s, got %s", EventSendMessage, event.Type)
	}

	var payload SendMessagePayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		t.Fatalf("payload unmarshal failed: %v", err)
	}
	if payload.ConversationID != 42 || payload.Content != "hello" {
		t.Errorf("unexpected payload %+v", payload)
	}
}

func TestReadEvent_MultipleFrames(t *testing.T) {
	var buf bytes.Buffer
	for _, content := range []string{"one", "two", "three"} {
		frame, err := EncodeEvent(EventSendMessage, &SendMessagePayload{ConversationID: 1, Content: content})
		if err != nil {
			t.Fatalf("EncodeEvent failed: %v", err)
		}
		buf.Write(frame)
	}

	for i := 0; i < 3; i++ {
		if _, err := ReadEvent(&buf); err != nil {
			t.Fatalf("frame %d: ReadEvent failed: %v", i, err)
		}
	}
	if _, err := ReadEvent(&buf); err != io.EOF {
		t.Errorf("expected io.EOF after last frame, got %v", err)
	}
}

func TestReadEvent_FrameTooLarge(t *testing.T) {
	header := make([]byte, HeaderSize)
	binary.BigEndian.PutUint32(header, MaxFrameSize+1)

	if _, err := ReadEvent(bytes.NewReader(header)); err != ErrFrameTooLarge {
		t.Errorf("expected ErrFrameTooLarge, got %v", err)
	}
}

func TestReadEvent_TruncatedBody(t *testing.T) {
	header := make([]byte, HeaderSize)
	binary.BigEndian.PutUint32(header, 100)
	data := append(header, []byte(`{"type":"x"}`)...)

	if _, err := ReadEvent(bytes.NewReader(data)); err == nil {
		t.Error("expected error on truncated body")
	}
}

func TestReadEvent_InvalidJSON(t *testing.T) {
	body := []byte("not json")
	frame := make([]byte, HeaderSize+len(body))
	binary.BigEndian.PutUint32(frame[:HeaderSize], uint32(len(body)))
	copy(frame[HeaderSize:], body)

	_, err := ReadEvent(bytes.NewReader(frame))
	if !errors.Is(err, ErrInvalidFrame) {
		t.Errorf("expected ErrInvalidFrame, got %v", err)
	}
}
