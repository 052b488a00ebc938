// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoServer answers every text frame with "echo:" + frame through a Conn.
func echoServer(t *testing.T) (*httptest.Server, chan *Conn) {
	conns := make(chan *Conn, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := NewConn(ws, websocket.TextMessage, 8)
		conns <- conn
		_ = conn.Run(func(data []byte) {
			conn.WriteMessage(append([]byte("echo:"), data...))
		})
	}))
	t.Cleanup(server.Close)
	return server, conns
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func TestConnEchoesThroughWritePump(t *testing.T) {
	server, _ := echoServer(t)
	client := dial(t, server)

	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte("hello")))
	_ = client.SetReadDeadline(time.Now().Add(5 * time.Second))
	messageType, data, err := client.ReadMessage()

	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, messageType)
	assert.Equal(t, "echo:hello", string(data))
}

func TestCloseEndsTheConnection(t *testing.T) {
	g := NewGomegaWithT(t)
	server, conns := echoServer(t)
	client := dial(t, server)

	var conn *Conn
	g.Eventually(conns).Should(Receive(&conn))
	conn.Close()
	conn.Close()

	g.Eventually(conn.Done()).Should(BeClosed())
	assert.False(t, conn.WriteMessage([]byte("late")))
	_ = client.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := client.ReadMessage()
	assert.Error(t, err)
}

func TestWriteMessageDropsWhenBufferIsFull(t *testing.T) {
	server, _ := echoServer(t)
	ws := dial(t, server)

	// no write pump is running, so the buffer never drains
	conn := NewConn(ws, websocket.BinaryMessage, 1)

	assert.True(t, conn.WriteMessage([]byte{1}))
	assert.False(t, conn.WriteMessage([]byte{2}))
}
