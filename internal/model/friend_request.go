package model

import (
	"errors"
	"time"
)

// FriendRequestStatus 好友请求状态
type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestRejected FriendRequestStatus = "rejected"
)

// ErrSelfRequest 不能给自己发送好友请求
var ErrSelfRequest = errors.New("users cannot send friend requests to themselves")

// Valid 是否为合法状态
func (s FriendRequestStatus) Valid() bool {
	switch s {
	case FriendRequestPending, FriendRequestAccepted, FriendRequestRejected:
		return true
	}
	return false
}

// FriendRequest 好友请求（有向）
// 每个 sender→receiver 有序对只有一行，反方向的请求是另一行

type FriendRequest struct {
	ID         uint                `gorm:"primaryKey"`
	SenderID   uint                `gorm:"not null;uniqueIndex:uidx_request_pair;comment:发送者ID"`
	ReceiverID uint                `gorm:"not null;uniqueIndex:uidx_request_pair;index;comment:接收者ID"`
	Status     FriendRequestStatus `gorm:"type:varchar(20);not null;default:'pending';index;comment:请求状态"`
	CreatedAt  time.Time           `gorm:"comment:创建时间"`
	UpdatedAt  time.Time           `gorm:"comment:更新时间"`
}

func (FriendRequest) TableName() string { return "friend_request" }

// NewFriendRequest 创建待处理的好友请求
func NewFriendRequest(senderID, receiverID uint) (*FriendRequest, error) {
	if senderID == receiverID {
		return nil, ErrSelfRequest
	}
	return &FriendRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     FriendRequestPending,
	}, nil
}
