package model

// NotificationEvent は変更通知イベントを表す。
// ミューテーションのコミット直後に構築され、1回ブロードキャストされた後破棄される。
// 永続化・再送・ACKは行わない。
type NotificationEvent struct {
	Kind    string `json:"event"`
	Payload any    `json:"payload"`
}

// EventNewComment はいいね・コメント作成時のイベント種別。
// 移行元システムとのワイヤ互換のため、いいね作成もこの種別を使用する。
const EventNewComment = "newComment"
