package model

import (
	"errors"
	"time"
)

// ErrSelfFriendship 不能与自己建立好友关系
var ErrSelfFriendship = errors.New("users cannot be friends with themselves")

// Friendship 好友关系（无向）
// 规范化存储：UserID1 始终小于 UserID2，唯一索引保证一对用户只有一行

type Friendship struct {
	ID        uint      `gorm:"primaryKey"`
	UserID1   uint      `gorm:"column:user_id1;not null;uniqueIndex:uidx_friend_pair;comment:较小的用户ID"`
	UserID2   uint      `gorm:"column:user_id2;not null;uniqueIndex:uidx_friend_pair;index;comment:较大的用户ID"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
}

func (Friendship) TableName() string { return "friendship" }

// NewFriendship 按规范顺序构建好友关系
func NewFriendship(a, b uint) (*Friendship, error) {
	if a == b {
		return nil, ErrSelfFriendship
	}
	lo, hi := CanonicalPair(a, b)
	return &Friendship{UserID1: lo, UserID2: hi}, nil
}

// CanonicalPair 返回 (较小ID, 较大ID)
func CanonicalPair(a, b uint) (uint, uint) {
	if a < b {
		return a, b
	}
	return b, a
}

// Other 返回关系中另一方的用户ID
func (f *Friendship) Other(userID uint) uint {
	if f.UserID1 == userID {
		return f.UserID2
	}
	return f.UserID1
}
