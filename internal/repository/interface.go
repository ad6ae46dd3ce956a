package repository

import (
	"context"

	"moodmeal/internal/model"
)

// IUserRepository 用户数据访问
type IUserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByUsernameOrEmail(ctx context.Context, identifier string) (*model.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	BatchGetByIDs(ctx context.Context, ids []uint) (map[uint]*model.User, error)
	Search(ctx context.Context, keyword string, excludeID uint, limit int) ([]model.User, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
	TouchLastSeen(ctx context.Context, id uint) error
}

// IFriendRepository 好友关系与好友请求数据访问
type IFriendRepository interface {
	AreFriends(ctx context.Context, a, b uint) (bool, error)
	FriendIDs(ctx context.Context, userID uint) ([]uint, error)
	ListFriendships(ctx context.Context, userID uint) ([]model.Friendship, error)
	DeleteFriendship(ctx context.Context, a, b uint) (bool, error)

	GetRequest(ctx context.Context, id uint) (*model.FriendRequest, error)
	GetRequestByPair(ctx context.Context, senderID, receiverID uint) (*model.FriendRequest, error)
	HasPendingBetween(ctx context.Context, a, b uint) (bool, error)
	SaveRequest(ctx context.Context, req *model.FriendRequest) error
	DeleteRequest(ctx context.Context, id uint) error
	ListPendingReceived(ctx context.Context, userID uint) ([]model.FriendRequest, error)
	ListSent(ctx context.Context, userID uint) ([]model.FriendRequest, error)
	PendingOutgoingIDs(ctx context.Context, userID uint) ([]uint, error)
	PendingIncomingIDs(ctx context.Context, userID uint) ([]uint, error)
	AcceptRequest(ctx context.Context, req *model.FriendRequest) (*model.Friendship, error)
	RejectRequest(ctx context.Context, req *model.FriendRequest) error
}

// IMoodRepository 心情记录数据访问
type IMoodRepository interface {
	Create(ctx context.Context, entry *model.MoodEntry) error
	GetByID(ctx context.Context, userID, id uint) (*model.MoodEntry, error)
	Update(ctx context.Context, entry *model.MoodEntry) error
	Delete(ctx context.Context, userID, id uint) (bool, error)
	ListByUser(ctx context.Context, userID uint, limit int) ([]model.MoodEntry, error)
	UserIDs(ctx context.Context) ([]uint, error)
}

// IPreferencesRepository 偏好数据访问
type IPreferencesRepository interface {
	Get(ctx context.Context, userID uint) (*model.Preferences, error)
	Upsert(ctx context.Context, prefs *model.Preferences) error
	Delete(ctx context.Context, userID uint) (bool, error)
	UserIDs(ctx context.Context) ([]uint, error)
}
