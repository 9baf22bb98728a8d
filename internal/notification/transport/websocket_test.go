package transport

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"preventa/internal/auth"
	"preventa/internal/domain"
	"preventa/internal/notification"
)

type clientConn struct {
	io.Reader
	io.Writer
}

func newServer(t *testing.T, d *notification.Dispatcher, principal *auth.Principal) *httptest.Server {
	t.Helper()
	h := NewHandler(d, time.Second, zap.NewNop())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if principal != nil {
			r = r.WithContext(auth.WithPrincipal(r.Context(), *principal))
		}
		h.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) (net.Conn, io.ReadWriter) {
	t.Helper()
	conn, br, _, err := ws.Dial(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/notifications")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	var r io.Reader = conn
	if br != nil {
		r = io.MultiReader(br, conn)
	}
	return conn, clientConn{Reader: r, Writer: conn}
}

func readMessage(t *testing.T, conn net.Conn, rw io.ReadWriter) notification.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	data, err := wsutil.ReadServerText(rw)
	require.NoError(t, err)

	var msg notification.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHandler_DeliversQueuedAndLiveMessages(t *testing.T) {
	d := notification.NewDispatcher(notification.DefaultQueueSize, zap.NewNop())
	defer d.Close()
	vendor := notification.Target{Role: domain.RoleVendor, UserID: 21}
	d.Publish(context.Background(), domain.EventOrderApproved, map[string]string{"orderNumber": "PED-20260314-0001"}, vendor)

	srv := newServer(t, d, &auth.Principal{UserID: 21, Role: domain.RoleVendor})
	conn, rw := dial(t, srv)

	queued := readMessage(t, conn, rw)
	assert.Equal(t, domain.EventOrderApproved, queued.Type)
	assert.Equal(t, map[string]any{"orderNumber": "PED-20260314-0001"}, queued.Payload)

	d.Publish(context.Background(), domain.EventOrderRejected, "live", vendor)
	live := readMessage(t, conn, rw)
	assert.Equal(t, domain.EventOrderRejected, live.Type)
	assert.Equal(t, "live", live.Payload)
}

func TestHandler_ClientCloseDisconnects(t *testing.T) {
	d := notification.NewDispatcher(notification.DefaultQueueSize, zap.NewNop())
	defer d.Close()
	srv := newServer(t, d, &auth.Principal{UserID: 31, Role: domain.RoleEvaluator})
	conn, _ := dial(t, srv)

	assert.Eventually(t, func() bool { return d.Stats().Connections[domain.RoleEvaluator] == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return d.Stats().Connections[domain.RoleEvaluator] == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestHandler_ReconnectReplacesSession(t *testing.T) {
	d := notification.NewDispatcher(notification.DefaultQueueSize, zap.NewNop())
	defer d.Close()
	srv := newServer(t, d, &auth.Principal{UserID: 31, Role: domain.RoleEvaluator})

	first, firstRW := dial(t, srv)
	assert.Eventually(t, func() bool { return d.Stats().Connections[domain.RoleEvaluator] == 1 }, time.Second, 5*time.Millisecond)
	second, secondRW := dial(t, srv)

	// the first connection receives a close frame
	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err := wsutil.ReadServerText(firstRW)
	assert.Error(t, err)

	assert.Equal(t, 1, d.Stats().Connections[domain.RoleEvaluator])
	d.BroadcastToRole(context.Background(), domain.RoleEvaluator, domain.EventOrderCreated, "new order")
	msg := readMessage(t, second, secondRW)
	assert.Equal(t, domain.EventOrderCreated, msg.Type)
}

func TestHandler_RequiresPrincipal(t *testing.T) {
	d := notification.NewDispatcher(notification.DefaultQueueSize, zap.NewNop())
	defer d.Close()
	srv := newServer(t, d, nil)

	_, _, _, err := ws.Dial(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"))

	var status ws.StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, http.StatusForbidden, int(status))
}
