// Package realtime は変更通知のファンアウトを提供する。
package realtime

import (
	"log/slog"
	"sync"

	"github.com/hitoshi/postboard/internal/model"
)

// Subscriber は通知イベントの購読者。
// Sendは単一イベントの配送を試み、切断済みの場合はエラーを返す。
type Subscriber interface {
	Send(event model.NotificationEvent) error
}

// Recorder はハブのメトリクスを記録する。
type Recorder interface {
	RecordWSConnect()
	RecordWSDisconnect()
	RecordEventPublished(kind string)
}

// Hub は接続中の購読者集合を管理し、イベントを全購読者にブロードキャストする。
// 配送はベストエフォートで、購読前のイベントの再送は行わない。
// 個別の購読者への配送失敗は他の購読者への配送に影響しない。
type Hub struct {
	mu          sync.Mutex
	subscribers map[Subscriber]struct{}
	recorder    Recorder // nilの場合メトリクスは記録しない
}

// NewHub はHubを生成する。
func NewHub(recorder Recorder) *Hub {
	return &Hub{
		subscribers: make(map[Subscriber]struct{}),
		recorder:    recorder,
	}
}

// Subscribe は購読者を登録する。登録以降のイベントのみが配送される。
func (h *Hub) Subscribe(sub Subscriber) {
	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	h.mu.Unlock()

	if h.recorder != nil {
		h.recorder.RecordWSConnect()
	}
}

// Unsubscribe は購読者を解除する。未登録の購読者に対しては何もしない。
func (h *Hub) Unsubscribe(sub Subscriber) {
	h.mu.Lock()
	_, ok := h.subscribers[sub]
	if ok {
		delete(h.subscribers, sub)
	}
	h.mu.Unlock()

	if ok && h.recorder != nil {
		h.recorder.RecordWSDisconnect()
	}
}

// Publish はイベントを現在の全購読者に配送する。
// ロック中に購読者集合のスナップショットを取り、配送はロック外で行う。
// 配送失敗はログに残して続行する。
func (h *Hub) Publish(event model.NotificationEvent) {
	h.mu.Lock()
	snapshot := make([]Subscriber, 0, len(h.subscribers))
	for sub := range h.subscribers {
		snapshot = append(snapshot, sub)
	}
	h.mu.Unlock()

	for _, sub := range snapshot {
		if err := sub.Send(event); err != nil {
			slog.Debug("failed to deliver event to subscriber",
				slog.String("event", event.Kind),
				slog.String("error", err.Error()),
			)
		}
	}

	if h.recorder != nil {
		h.recorder.RecordEventPublished(event.Kind)
	}
}

// Count は現在の購読者数を返す。
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
