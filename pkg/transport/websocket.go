// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package transport

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
)

var ErrClosed = errors.New("websocket connection closed")

// Upgrader accepts connections from any origin. Game servers and clients are not browsers.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Conn is a websocket with a buffered write pump. Writes never block the caller: a full buffer
// drops the message.
type Conn struct {
	ws          *websocket.Conn
	messageType int
	send        chan []byte
	done        chan struct{}
	closeOnce   sync.Once
}

// NewConn wraps ws. messageType is websocket.BinaryMessage or websocket.TextMessage.
func NewConn(ws *websocket.Conn, messageType int, sendBuffer int) *Conn {
	return &Conn{
		ws:          ws,
		messageType: messageType,
		send:        make(chan []byte, sendBuffer),
		done:        make(chan struct{}),
	}
}

// WriteMessage queues data for the write pump.
func (c *Conn) WriteMessage(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

// Close stops both pumps. It is safe to call more than once.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

func (c *Conn) Done() <-chan struct{} {
	return c.done
}

func (c *Conn) RemoteAddr() string {
	return c.ws.RemoteAddr().String()
}

// Run starts the write pump and reads messages until the connection fails or is closed.
// onMessage is called on the reading goroutine, one message at a time.
func (c *Conn) Run(onMessage func(data []byte)) error {
	go c.writePump()
	defer c.Close()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				return ErrClosed
			default:
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).WithField("remote", c.RemoteAddr()).Warn("websocket closed unexpectedly")
			}
			return err
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		onMessage(data)
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(c.messageType, data); err != nil {
				logrus.WithError(err).WithField("remote", c.RemoteAddr()).Debug("websocket write failed")
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}
