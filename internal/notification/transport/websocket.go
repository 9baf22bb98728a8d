package transport

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"go.uber.org/zap"

	"preventa/internal/auth"
	apperrors "preventa/internal/errors"
	"preventa/internal/httpx"
	"preventa/internal/notification"
)

// Registry is the part of the dispatcher a connection needs.
type Registry interface {
	Connect(ctx context.Context, t notification.Target, sink notification.Sink) error
	Disconnect(t notification.Target, sink notification.Sink)
}

type Handler struct {
	registry     Registry
	writeTimeout time.Duration
	logger       *zap.Logger
}

func NewHandler(registry Registry, writeTimeout time.Duration, logger *zap.Logger) *Handler {
	return &Handler{
		registry:     registry,
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

// ServeHTTP upgrades an authenticated request to a websocket and registers
// it as the caller's notification session. Client frames are read only to
// answer control frames and detect the close.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	traceID, logger := httpx.Trace(h.logger, r)

	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, logger, traceID, apperrors.NewForbiddenError("authentication required"))
		return
	}

	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	// the server's read deadline survives the hijack
	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		logger.Warn("clearing websocket read deadline", zap.Error(err))
		_ = conn.Close()
		return
	}

	target := notification.Target{Role: principal.Role, UserID: principal.UserID}
	sink := NewSink(conn, h.writeTimeout)

	// the request context ends when this handler returns
	ctx := context.Background()
	if err := h.registry.Connect(ctx, target, sink); err != nil {
		logger.Warn("notification session refused", zap.Error(err))
		return
	}

	go h.read(target, sink, logger)
}

func (h *Handler) read(target notification.Target, sink *Sink, logger *zap.Logger) {
	defer func() {
		h.registry.Disconnect(target, sink)
		_ = sink.Close()
	}()

	for {
		if _, _, err := wsutil.ReadClientData(sink.conn); err != nil {
			logger.Debug("notification session ended",
				zap.String("role", string(target.Role)),
				zap.Int64("userId", target.UserID),
				zap.Error(err),
			)
			return
		}
	}
}

// Sink writes dispatcher messages as JSON text frames.
type Sink struct {
	mu           sync.Mutex
	conn         net.Conn
	writeTimeout time.Duration
	closeOnce    sync.Once
	closeErr     error
}

func NewSink(conn net.Conn, writeTimeout time.Duration) *Sink {
	return &Sink{conn: conn, writeTimeout: writeTimeout}
}

func (s *Sink) Send(ctx context.Context, msg notification.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.setDeadline(ctx); err != nil {
		return err
	}
	return wsutil.WriteServerText(s.conn, data)
}

// Close sends a normal closure frame, best effort, and closes the connection.
func (s *Sink) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.setDeadline(context.Background()); err == nil {
			_ = wsutil.WriteServerMessage(s.conn, ws.OpClose, ws.NewCloseFrameBody(ws.StatusNormalClosure, ""))
		}
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

func (s *Sink) setDeadline(ctx context.Context) error {
	deadline := time.Now().Add(s.writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	return s.conn.SetWriteDeadline(deadline)
}
