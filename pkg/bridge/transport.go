// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bridge

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-lobby-server/pkg/envelope"
	"github.com/AccelByte/extend-lobby-server/pkg/transport"
)

const sendBufferSize = 256

// Handler accepts game server connections on the bridge endpoint.
type Handler struct {
	env *Environment
}

func NewHandler(env *Environment) *Handler {
	return &Handler{env: env}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := transport.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("unable to upgrade bridge connection")
		return
	}

	conn := transport.NewConn(ws, websocket.BinaryMessage, sendBufferSize)
	server := NewServer(h.env, conn)

	scope := envelope.NewRootScope(context.Background(), "bridge.connection", "").
		WithFields(logrus.Fields{"processCode": server.ProcessCode(), "remote": conn.RemoteAddr()})
	defer scope.Finish()
	scope.SetAttributes(envelope.ProcessCodeTag, server.ProcessCode())
	scope.Log.Info("game server connected")

	err = conn.Run(func(data []byte) {
		server.HandleMessage(scope, data)
	})
	scope.Log.WithError(err).Debug("bridge connection ended")
	server.HandleClose(scope)
}
