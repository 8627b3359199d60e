package http

import (
	"context"
	"net"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	fastws "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ViniZap4/nohtz-server/ws"
)

// listen serves app on a loopback port with a running hub and returns the
// websocket URL.
func listen(t *testing.T) (*fiber.App, string) {
	t.Helper()
	hub := ws.NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	app := newTestAppWithHub(t, hub)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go app.Listener(ln)
	t.Cleanup(func() { _ = app.ShutdownWithTimeout(time.Second) })

	return app, "ws://" + ln.Addr().String() + "/ws"
}

func dial(t *testing.T, url string, c *client) *fastws.Conn {
	t.Helper()
	header := nethttp.Header{}
	header.Set("Cookie", cookieName+"="+c.cookie.Value)
	conn, resp, err := fastws.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusSwitchingProtocols, resp.StatusCode)
	return conn
}

func TestWebSocket_ReceivesOwnEvents(t *testing.T) {
	app, url := listen(t)
	alice := register(t, app, "alice", "pw1")

	conn := dial(t, url, alice)
	defer conn.Close()

	events := make(chan ws.Message, 16)
	go func() {
		for {
			var m ws.Message
			if err := conn.ReadJSON(&m); err != nil {
				close(events)
				return
			}
			events <- m
		}
	}()

	// The hub registers the conn after the handshake completes, so keep
	// creating folders until one event arrives.
	require.Eventually(t, func() bool {
		req := httptest.NewRequest("POST", "/api/folders", strings.NewReader(`{"name":"Inbox"}`))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(alice.cookie)
		resp, err := app.Test(req, -1)
		if err != nil || resp.StatusCode != fiber.StatusOK {
			return false
		}
		select {
		case m := <-events:
			return m.Type == ws.FolderCreated && m.Folder != nil && m.Folder.Name == "Inbox"
		case <-time.After(20 * time.Millisecond):
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocket_RepeatedDisconnects(t *testing.T) {
	app, url := listen(t)
	alice := register(t, app, "alice", "pw1")

	for i := 0; i < 100; i++ {
		conn := dial(t, url, alice)
		if i%10 == 0 {
			resp, _ := alice.do("POST", "/api/notes", `{"title":"n"}`)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
		}
		require.NoError(t, conn.Close())
	}

	// The server keeps serving after every handler has returned.
	resp, _ := alice.do("GET", "/api/me", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	conn := dial(t, url, alice)
	require.NoError(t, conn.Close())
}
