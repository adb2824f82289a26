package gateway

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	apperrors "github.com/Tavhidjon/RealEstate/internal/errors"
)

// recvErrorEvent 取出会话队列里的下一帧并断言它是 error 事件，返回其载荷
func recvErrorEvent(t *testing.T, s *Session) *ErrorPayload {
	t.Helper()
	select {
	case frame := <-s.writeChan:
		event, err := ReadEvent(bytes.NewReader(frame))
		if err != nil {
			t.Fatalf("ReadEvent failed: %v", err)
		}
		if event.Type != EventError {
			t.Fatalf("expected %s event, got %s", EventError, event.Type)
		}
		var payload ErrorPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			t.Fatalf("payload unmarshal failed: %v", err)
		}
		return &payload
	default:
		t.Fatal("expected an event on the sender's queue")
		return nil
	}
}

func assertNoEvent(t *testing.T, s *Session) {
	t.Helper()
	select {
	case frame := <-s.writeChan:
		t.Errorf("unexpected extra frame %q", frame)
	default:
	}
}

func TestHandler_Dispatch_UnknownEventType(t *testing.T) {
	h := NewHandler(NewRegistry(), nil, nil, "gateway-1", slog.Default())
	s := newTestSession(7, 4)

	h.dispatch(context.Background(), s, &Event{Type: "bogus"})

	payload := recvErrorEvent(t, s)
	if payload.Code != apperrors.GetCode(apperrors.ErrUnknownEventType) {
		t.Errorf("expected unknown-event code, got %d", payload.Code)
	}
	// 只回发给发送方一个 error 事件，连接不关闭
	assertNoEvent(t, s)
	if err := s.Send([]byte("still open")); err != nil {
		t.Errorf("session must stay open, Send failed: %v", err)
	}
}

func TestHandler_Dispatch_MalformedPayload(t *testing.T) {
	h := NewHandler(NewRegistry(), nil, nil, "gateway-1", slog.Default())
	s := newTestSession(7, 4)

	h.dispatch(context.Background(), s, &Event{Type: EventSendMessage, Data: json.RawMessage(`{`)})

	payload := recvErrorEvent(t, s)
	if payload.Code != apperrors.GetCode(apperrors.ErrInvalidParams) {
		t.Errorf("expected invalid-params code, got %d", payload.Code)
	}
	assertNoEvent(t, s)
}

func TestHandler_HandleStream_MalformedFrameRecovers(t *testing.T) {
	h := NewHandler(NewRegistry(), nil, nil, "gateway-1", slog.Default())
	s := newTestSession(7, 8)

	// 一个消息体不是 JSON 的坏帧，后面跟一个未知类型的合法帧
	bad := []byte("not json")
	var buf bytes.Buffer
	header := make([]byte, HeaderSize)
	binary.BigEndian.PutUint32(header, uint32(len(bad)))
	buf.Write(header)
	buf.Write(bad)

	good, err := EncodeEvent("bogus", nil)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	buf.Write(good)

	h.HandleStream(context.Background(), s, io.NopCloser(&buf))

	// 坏帧只回发 error，循环继续处理到了后面的帧
	first := recvErrorEvent(t, s)
	if first.Code != apperrors.GetCode(apperrors.ErrInvalidParams) {
		t.Errorf("expected invalid-params code for the bad frame, got %d", first.Code)
	}
	second := recvErrorEvent(t, s)
	if second.Code != apperrors.GetCode(apperrors.ErrUnknownEventType) {
		t.Errorf("expected unknown-event code for the second frame, got %d", second.Code)
	}
	assertNoEvent(t, s)
}

func TestHandler_HandleRemote(t *testing.T) {
	registry := NewRegistry()
	h := NewHandler(registry, nil, nil, "gateway-1", slog.Default())

	s := newTestSession(7, 4)
	registry.Add(s)
	registry.Join(UserGroup(7), s)

	frame := []byte("remote-frame")
	envelope := &BroadcastEnvelope{
		NodeID: "gateway-2",
		Groups: []GroupKey{UserGroup(7), CompanyGroup(42)},
		Frame:  frame,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	h.HandleRemote(data)

	select {
	case got := <-s.writeChan:
		if string(got) != "remote-frame" {
			t.Errorf("unexpected frame %q", got)
		}
	default:
		t.Error("session did not receive the remote frame")
	}
}

func TestHandler_HandleRemote_DropsOwnEcho(t *testing.T) {
	registry := NewRegistry()
	h := NewHandler(registry, nil, nil, "gateway-1", slog.Default())

	s := newTestSession(7, 4)
	registry.Add(s)
	registry.Join(UserGroup(7), s)

	envelope := &BroadcastEnvelope{
		NodeID: "gateway-1",
		Groups: []GroupKey{UserGroup(7)},
		Frame:  []byte("echo"),
	}
	data, _ := json.Marshal(envelope)
	h.HandleRemote(data)

	select {
	case <-s.writeChan:
		t.Error("own echo must be dropped")
	default:
	}
}

func TestBroadcastEnvelope_GroupKeyRoundTrip(t *testing.T) {
	in := &BroadcastEnvelope{
		NodeID: "gateway-3",
		Groups: []GroupKey{UserGroup(1), CompanyGroup(2)},
		Frame:  []byte{0x00, 0x01},
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var out BroadcastEnvelope
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(out.Groups) != 2 || out.Groups[0] != UserGroup(1) || out.Groups[1] != CompanyGroup(2) {
		t.Errorf("groups did not survive round trip: %+v", out.Groups)
	}
	if string(out.Frame) != string(in.Frame) {
		t.Error("frame did not survive round trip")
	}
}
