package websocket

import (
	"regexp"
	"sync/atomic"

	"hatesaway-server/stores/notify"

	"github.com/sirupsen/logrus"
	"github.com/zishang520/engine.io/v2/types"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

const ChangeEvent = "storage-changed"

var connectedClients atomic.Int64

// ConnectedClients returns the number of open change-feed connections.
func ConnectedClients() int64 {
	return connectedClients.Load()
}

// ChangePayload is what clients receive for every storage write.
func ChangePayload(change notify.Change) map[string]any {
	return map[string]any{
		"key":     change.Key,
		"removed": change.Removed,
	}
}

// SetupSocketIO returns a socket.io server that broadcasts every change
// published on hub. The returned func stops the relay.
func SetupSocketIO(hub *notify.Hub) (*socketio.Server, func()) {
	opts := socketio.DefaultServerOptions()
	opts.SetPath("/socket.io")
	opts.SetAllowEIO3(true)
	localhostOrigin := regexp.MustCompile(`^https?://(localhost|127\.0\.0\.1|\[::1\])(:\d+)?$`)
	opts.SetCors(&types.Cors{
		Origin: []any{
			localhostOrigin,
		},
		Credentials: true,
	})
	srv := socketio.NewServer(nil, opts)

	//nolint:errcheck // Socket.IO event handlers do not return useful errors
	srv.On("connection", func(clients ...any) {
		socket, ok := clients[0].(*socketio.Socket)
		if !ok {
			return
		}

		n := connectedClients.Add(1)
		logrus.WithFields(logrus.Fields{
			"socket_id": socket.Id(),
			"clients":   n,
		}).Debug("Change feed client connected")

		socket.On("disconnect", func(datas ...any) {
			connectedClients.Add(-1)
			socket.RemoveAllListeners("")
		})
	})

	cancel := hub.Subscribe(notify.NotifierFunc(func(change notify.Change) {
		if err := srv.Sockets().Emit(ChangeEvent, ChangePayload(change)); err != nil {
			logrus.WithError(err).WithField("key", change.Key).Warn("Failed to broadcast storage change")
		}
	}))

	return srv, cancel
}
