package gateway

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
	"github.com/quic-go/webtransport-go"

	"github.com/Tavhidjon/RealEstate/internal/bus"
	"github.com/Tavhidjon/RealEstate/internal/config"
	"github.com/Tavhidjon/RealEstate/internal/model"
	"github.com/Tavhidjon/RealEstate/internal/service"
)

// closeCodeAuthFailed 认证失败时的会话关闭码
const closeCodeAuthFailed = 4001

// Server 实时聊天网关
// 客户端通过 /chat?token=xxx 建立 WebTransport 会话，
// 认证通过后在单个双向流上收发事件帧
type Server struct {
	cfg         *config.GatewayConfig
	authService *service.AuthService
	registry    *Registry
	handler     *Handler
	busClient   *bus.Client
	logger      *slog.Logger
	wtServer    *webtransport.Server
	wg          sync.WaitGroup
}

// New 创建网关服务器
func New(cfg *config.GatewayConfig, authService *service.AuthService, chatService *service.ChatService, busClient *bus.Client, nodeID string, logger *slog.Logger) *Server {
	registry := NewRegistry()
	handler := NewHandler(registry, chatService, busClient, nodeID, logger)

	return &Server{
		cfg:         cfg,
		authService: authService,
		registry:    registry,
		handler:     handler,
		busClient:   busClient,
		logger:      logger,
	}
}

// Registry 返回会话注册表
func (s *Server) Registry() *Registry {
	return s.registry
}

// Start 启动网关，阻塞直到服务器关闭
func (s *Server) Start(ctx context.Context) error {
	tlsConfig, err := s.loadTLSConfig()
	if err != nil {
		return err
	}

	quicConfig := &quic.Config{
		MaxIdleTimeout:  s.cfg.MaxIdleTimeout,
		KeepAlivePeriod: s.cfg.KeepAlivePeriod,
		EnableDatagrams: true, // WebTransport 需要启用数据报支持
	}

	s.wtServer = &webtransport.Server{
		H3: http3.Server{
			Addr:       s.cfg.Addr,
			TLSConfig:  tlsConfig,
			QUICConfig: quicConfig,
		},
		CheckOrigin: func(r *http.Request) bool {
			// TODO: 生产环境应该检查 Origin
			return true
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/chat", func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		session, err := s.wtServer.Upgrade(w, r)
		if err != nil {
			s.logger.Error("WebTransport upgrade failed", "error", err)
			return
		}
		s.wg.Add(1)
		go s.handleSession(ctx, session, token)
	})
	s.wtServer.H3.Handler = mux

	if err := s.subscribeRemote(); err != nil {
		return err
	}

	s.logger.Info("Chat gateway starting", "addr", s.cfg.Addr)
	return s.wtServer.ListenAndServe()
}

func (s *Server) handleSession(ctx context.Context, wt *webtransport.Session, token string) {
	defer s.wg.Done()

	principal, err := s.authenticate(ctx, token)
	if err != nil {
		s.logger.Warn("Auth failed, closing session", "error", err)
		if err := wt.CloseWithError(closeCodeAuthFailed, "auth failed"); err != nil {
			s.logger.Error("Failed to close session", "error", err)
		}
		return
	}

	// 客户端只使用一个双向流进行所有通信
	stream, err := wt.AcceptStream(ctx)
	if err != nil {
		// Session closed before opening a stream
		wt.CloseWithError(0, "no stream")
		return
	}

	sess := NewSession(principal, s.cfg.SendQueueSize, s.logger)
	sess.BindTransport(wt, stream)

	s.registry.Add(sess)
	s.joinGroups(sess)
	defer func() {
		// 退出全部分组恰好一次，之后关闭底层会话
		s.registry.Remove(sess.ID())
		sess.Close()
	}()

	s.logger.Info("Session established",
		"conn_id", sess.ID(), "user_id", principal.UserID, "kind", principal.Kind)

	// 同步处理事件流，流关闭后触发 defer 中的清理
	s.handler.HandleStream(ctx, sess, stream)

	s.logger.Info("Session closed",
		"conn_id", sess.ID(), "user_id", principal.UserID, "uptime", time.Since(sess.CreateTime()))
}

// authenticate 在限定时间内完成 token 校验
func (s *Server) authenticate(ctx context.Context, token string) (model.Principal, error) {
	authCtx := ctx
	if s.cfg.AuthTimeout > 0 {
		var cancel context.CancelFunc
		authCtx, cancel = context.WithTimeout(ctx, s.cfg.AuthTimeout)
		defer cancel()
	}
	return s.authService.Authenticate(authCtx, token)
}

// joinGroups 按主体身份加入分组
// 用户分组人人都有；公司分组只有代表加入；管理员不隐式加入任何公司分组
func (s *Server) joinGroups(sess *Session) {
	principal := sess.Principal()
	s.registry.Join(UserGroup(principal.UserID), sess)
	if principal.Kind == model.PrincipalRepresentative {
		s.registry.Join(CompanyGroup(principal.CompanyID), sess)
	}
}

func (s *Server) subscribeRemote() error {
	if s.busClient == nil {
		return nil
	}
	_, err := s.busClient.Subscribe(bus.SubjectChatBroadcast, s.handler.HandleRemote)
	return err
}

func (s *Server) loadTLSConfig() (*tls.Config, error) {
	if s.cfg.CertFile != "" && s.cfg.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(s.cfg.CertFile, s.cfg.KeyFile)
		if err != nil {
			return nil, err
		}
		s.logger.Info("Loaded TLS certificate",
			"cert_file", s.cfg.CertFile, "key_file", s.cfg.KeyFile)
		return &tls.Config{
			Certificates: []tls.Certificate{cert},
			NextProtos:   []string{"h3", "webtransport"},
			MinVersion:   tls.VersionTLS13,
		}, nil
	}

	// 开发环境：生成自签名证书
	s.logger.Warn("No TLS certificate configured, using self-signed certificate")
	return generateSelfSignedTLSConfig()
}

// Shutdown 关闭网关并等待所有会话处理完毕
func (s *Server) Shutdown() {
	if s.wtServer != nil {
		s.wtServer.Close()
	}
	s.wg.Wait()
}
