package gateway

import (
	"log/slog"
	"testing"

	"github.com/Tavhidjon/RealEstate/internal/model"
)

func newTestSession(userID int64, queueSize int) *Session {
	principal := model.Principal{UserID: userID, Kind: model.PrincipalUser}
	return NewSession(principal, queueSize, slog.Default())
}

func TestGroupKey(t *testing.T) {
	if UserGroup(7) == CompanyGroup(7) {
		t.Error("user and company groups with the same id must differ")
	}
	if UserGroup(7) != UserGroup(7) {
		t.Error("identical group keys must be equal")
	}
	if got := UserGroup(7).String(); got != "user:7" {
		t.Errorf("unexpected String(): %s", got)
	}
	if got := CompanyGroup(8).String(); got != "company:8" {
		t.Errorf("unexpected String(): %s", got)
	}
}

func TestRegistry_JoinLeave(t *testing.T) {
	r := NewRegistry()
	s := newTestSession(1, 4)

	r.Add(s)
	r.Join(UserGroup(1), s)
	r.Join(CompanyGroup(10), s)

	if len(r.Members(UserGroup(1))) != 1 {
		t.Error("expected session in user group")
	}
	if len(r.Members(CompanyGroup(10))) != 1 {
		t.Error("expected session in company group")
	}

	r.Leave(CompanyGroup(10), s.ID())
	if len(r.Members(CompanyGroup(10))) != 0 {
		t.Error("expected empty company group after leave")
	}
	if len(r.Members(UserGroup(1))) != 1 {
		t.Error("leaving one group must not touch the other")
	}
}

func TestRegistry_JoinUnregistered(t *testing.T) {
	r := NewRegistry()
	s := newTestSession(1, 4)

	// 未注册的会话不能加入分组
	r.Join(UserGroup(1), s)
	if len(r.Members(UserGroup(1))) != 0 {
		t.Error("unregistered session must not join groups")
	}
}

func TestRegistry_RemoveLeavesAllGroups(t *testing.T) {
	r := NewRegistry()
	s := newTestSession(1, 4)

	r.Add(s)
	r.Join(UserGroup(1), s)
	r.Join(CompanyGroup(10), s)

	if r.Get(s.ID()) != s {
		t.Error("Get must return the registered session")
	}

	r.Remove(s.ID())
	if len(r.Members(UserGroup(1))) != 0 || len(r.Members(CompanyGroup(10))) != 0 {
		t.Error("Remove must leave all groups")
	}
	if r.Get(s.ID()) != nil {
		t.Error("Get must return nil after Remove")
	}
	if r.Count() != 0 {
		t.Errorf("expected 0 sessions, got %d", r.Count())
	}

	// 重复 Remove 是空操作
	r.Remove(s.ID())
	if r.Count() != 0 {
		t.Error("repeated Remove must be a no-op")
	}
}

func TestRegistry_Broadcast(t *testing.T) {
	r := NewRegistry()
	s1 := newTestSession(1, 4)
	s2 := newTestSession(2, 4)
	r.Add(s1)
	r.Add(s2)
	r.Join(CompanyGroup(10), s1)
	r.Join(CompanyGroup(10), s2)

	frame := []byte("hello")
	if n := r.Broadcast(CompanyGroup(10), frame); n != 2 {
		t.Errorf("expected 2 deliveries, got %d", n)
	}

	for _, s := range []*Session{s1, s2} {
		select {
		case got := <-s.writeChan:
			if string(got) != "hello" {
				t.Errorf("unexpected frame %q", got)
			}
		default:
			t.Errorf("session %d did not receive the frame", s.ID())
		}
	}
}

func TestRegistry_BroadcastEmptyGroup(t *testing.T) {
	r := NewRegistry()
	// 空分组广播是空操作，不报错也不投递
	if n := r.Broadcast(UserGroup(99), []byte("x")); n != 0 {
		t.Errorf("expected 0 deliveries to an empty group, got %d", n)
	}
}

func TestRegistry_BroadcastSlowReceiverIsolated(t *testing.T) {
	r := NewRegistry()
	slow := newTestSession(1, 1)
	fast := newTestSession(2, 4)
	r.Add(slow)
	r.Add(fast)
	r.Join(CompanyGroup(10), slow)
	r.Join(CompanyGroup(10), fast)

	// 塞满 slow 的发送队列
	if err := slow.Send([]byte("fill")); err != nil {
		t.Fatalf("priming send failed: %v", err)
	}

	// slow 队列满被丢弃，fast 仍然收到
	if n := r.Broadcast(CompanyGroup(10), []byte("x")); n != 1 {
		t.Errorf("expected 1 delivery, got %d", n)
	}
	select {
	case <-fast.writeChan:
	default:
		t.Error("fast session did not receive the frame")
	}
}

func TestSession_SendAfterClose(t *testing.T) {
	s := newTestSession(1, 4)
	s.Close()
	s.Close() // 幂等

	if err := s.Send([]byte("x")); err != ErrSessionClosed {
		t.Errorf("expected ErrSessionClosed, got %v", err)
	}
}

func TestSession_SendQueueFull(t *testing.T) {
	s := newTestSession(1, 1)
	if err := s.Send([]byte("a")); err != nil {
		t.Fatalf("first send failed: %v", err)
	}
	if err := s.Send([]byte("b")); err != ErrSendQueueFull {
		t.Errorf("expected ErrSendQueueFull, got %v", err)
	}
}
