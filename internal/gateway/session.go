package gateway

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quic-go/webtransport-go"

	"github.com/Tavhidjon/RealEstate/internal/model"
)

var (
	ErrSessionClosed = errors.New("session closed")
	ErrSendQueueFull = errors.New("send queue full")
)

var sessionIDCounter int64

// Session 表示一个已认证的客户端连接
// 所有下行事件经 writeChan 由单独的写循环串行写入流
type Session struct {
	id         int64
	principal  model.Principal
	wt         *webtransport.Session
	logger     *slog.Logger
	writeChan  chan []byte
	closeChan  chan struct{}
	closeOnce  sync.Once
	createTime time.Time
}

// NewSession 创建会话，写循环在 BindTransport 后才启动
func NewSession(principal model.Principal, queueSize int, logger *slog.Logger) *Session {
	if queueSize <= 0 {
		queueSize = 256
	}
	id := atomic.AddInt64(&sessionIDCounter, 1)
	return &Session{
		id:         id,
		principal:  principal,
		logger:     logger,
		writeChan:  make(chan []byte, queueSize),
		closeChan:  make(chan struct{}),
		createTime: time.Now(),
	}
}

func (s *Session) ID() int64 {
	return s.id
}

func (s *Session) Principal() model.Principal {
	return s.principal
}

func (s *Session) UserID() int64 {
	return s.principal.UserID
}

func (s *Session) CreateTime() time.Time {
	return s.createTime
}

// BindTransport 绑定底层 WebTransport 会话和下行流，并启动写循环
func (s *Session) BindTransport(wt *webtransport.Session, stream *webtransport.Stream) {
	s.wt = wt
	go s.writeLoop(stream)
}

// Send 将事件帧排入发送队列
// 队列满时立即返回错误而不阻塞，慢客户端不能拖住对同组其他人的广播
func (s *Session) Send(frame []byte) error {
	select {
	case <-s.closeChan:
		return ErrSessionClosed
	default:
	}

	select {
	case s.writeChan <- frame:
		return nil
	case <-s.closeChan:
		return ErrSessionClosed
	default:
		return ErrSendQueueFull
	}
}

func (s *Session) writeLoop(stream *webtransport.Stream) {
	for {
		select {
		case frame := <-s.writeChan:
			if _, err := stream.Write(frame); err != nil {
				s.logger.Error("Failed to write to stream", "conn_id", s.id, "error", err)
				s.Close()
				return
			}
		case <-s.closeChan:
			return
		}
	}
}

// Close 关闭会话，多次调用只生效一次
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.closeChan)
		if s.wt != nil {
			s.wt.CloseWithError(0, "connection closed")
		}
	})
}
