package realtime

import (
	"io"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/net/websocket"

	"github.com/hitoshi/postboard/internal/model"
)

// wsSubscriber は1本のWebSocket接続に対応する購読者。
// Sendは複数goroutineから呼ばれるため書き込みを直列化する。
type wsSubscriber struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// Send はイベントをJSONフレームとして送信する。
func (s *wsSubscriber) Send(event model.NotificationEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return websocket.JSON.Send(s.conn, event)
}

// WSHandler はWebSocket購読エンドポイントのhttp.Handlerを返す。
// 接続をハブに登録し、切断まで保持する。クライアントからの
// 受信データは読み捨てる（切断検知のためにのみ読み続ける）。
func WSHandler(hub *Hub) http.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		sub := &wsSubscriber{conn: conn}
		hub.Subscribe(sub)
		defer hub.Unsubscribe(sub)

		slog.Debug("websocket subscriber connected",
			slog.String("remote_addr", conn.Request().RemoteAddr),
		)

		// 切断までブロックする
		_, _ = io.Copy(io.Discard, conn)

		slog.Debug("websocket subscriber disconnected",
			slog.String("remote_addr", conn.Request().RemoteAddr),
		)
	})
}

// compile-time interface check
var _ Subscriber = (*wsSubscriber)(nil)
