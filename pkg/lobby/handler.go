// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package lobby

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-lobby-server/pkg/envelope"
	"github.com/AccelByte/extend-lobby-server/pkg/transport"
)

const sendBufferSize = 256

// Handler accepts game client connections on the lobby endpoint.
type Handler struct {
	env *Environment
}

func NewHandler(env *Environment) *Handler {
	return &Handler{env: env}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := transport.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("unable to upgrade lobby connection")
		return
	}

	conn := transport.NewConn(ws, websocket.TextMessage, sendBufferSize)
	client := NewClientConnection(h.env, conn, clientIP(r))

	scope := envelope.NewRootScope(context.Background(), "lobby.connection", "").
		WithFields(logrus.Fields{"remote": conn.RemoteAddr()})
	defer scope.Finish()
	scope.Log.Debug("game client connected")

	err = conn.Run(func(data []byte) {
		client.HandleMessage(scope, data)
	})
	scope.Log.WithError(err).Debug("lobby connection ended")
	client.HandleClose(scope)
}

// clientIP prefers the first address a proxy forwarded.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
