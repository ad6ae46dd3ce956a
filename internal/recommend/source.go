package recommend

import (
	"context"

	"moodmeal/internal/model"
)

// DataSource 推荐算法依赖的外部数据（用户目录、心情、偏好、社交关系）
// 算法本身不做任何 I/O，所有读取都经由该接口，返回的错误原样向上传递
type DataSource interface {
	// RecentMoods 返回用户最近 count 条心情记录，按时间倒序
	RecentMoods(ctx context.Context, userID uint, count int) ([]model.MoodEntry, error)

	// Preferences 返回用户偏好，未设置时返回 (nil, nil)
	Preferences(ctx context.Context, userID uint) (*model.Preferences, error)

	// FriendIDs 返回用户的全部好友ID
	FriendIDs(ctx context.Context, userID uint) ([]uint, error)

	// PendingOutgoing 返回用户发出且仍待处理的请求的接收者ID
	PendingOutgoing(ctx context.Context, userID uint) ([]uint, error)

	// PendingIncoming 返回发给用户且仍待处理的请求的发送者ID
	PendingIncoming(ctx context.Context, userID uint) ([]uint, error)

	// UsersWithData 返回至少有一条心情记录或一条偏好记录的全部用户ID
	UsersWithData(ctx context.Context) ([]uint, error)
}
