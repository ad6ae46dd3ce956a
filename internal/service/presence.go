package service

import "context"

// PresenceStore 在线状态存储，由 pkg/redis.Presence 实现
type PresenceStore interface {
	SetOnline(ctx context.Context, userID uint, username string) error
	SetOffline(ctx context.Context, userID uint) error
	OnlineMap(ctx context.Context, userIDs []uint) (map[uint]bool, error)
}
