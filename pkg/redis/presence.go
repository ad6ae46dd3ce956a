package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// PresenceData 在线状态数据
type PresenceData struct {
	UserID   uint      `json:"user_id"`
	Username string    `json:"username"`
	Status   string    `json:"status"` // online/offline
	LastSeen time.Time `json:"last_seen"`
}

// 在线状态相关常量
const (
	PresenceKeyPrefix = "moodmeal:presence:user:" // 用户在线状态key前缀
	OnlineUsersKey    = "moodmeal:online:users"   // 在线用户集合key
	PresenceTTL       = 30 * time.Minute          // 在线状态TTL，登录或访问时刷新
)

// Presence 基于Redis的在线状态存储
// client 为 nil 时所有操作为空操作，查询结果均视为离线
type Presence struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPresence 创建在线状态存储
func NewPresence(client *redis.Client) *Presence {
	return &Presence{client: client, ttl: PresenceTTL}
}

// Enabled 是否连接了Redis
func (p *Presence) Enabled() bool {
	return p != nil && p.client != nil
}

func presenceKey(userID uint) string {
	return PresenceKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}

// SetOnline 标记用户在线
func (p *Presence) SetOnline(ctx context.Context, userID uint, username string) error {
	if !p.Enabled() {
		return nil
	}

	data, err := json.Marshal(PresenceData{
		UserID:   userID,
		Username: username,
		Status:   "online",
		LastSeen: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("序列化在线状态失败: %w", err)
	}

	pipe := p.client.TxPipeline()
	pipe.Set(ctx, presenceKey(userID), data, p.ttl)
	pipe.SAdd(ctx, OnlineUsersKey, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("设置用户在线状态失败: %w", err)
	}
	return nil
}

// SetOffline 移除用户在线状态
func (p *Presence) SetOffline(ctx context.Context, userID uint) error {
	if !p.Enabled() {
		return nil
	}

	pipe := p.client.TxPipeline()
	pipe.Del(ctx, presenceKey(userID))
	pipe.SRem(ctx, OnlineUsersKey, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("删除用户在线状态失败: %w", err)
	}
	return nil
}

// Get 获取用户在线状态，不在线时返回 (nil, nil)
func (p *Presence) Get(ctx context.Context, userID uint) (*PresenceData, error) {
	if !p.Enabled() {
		return nil, nil
	}

	data, err := p.client.Get(ctx, presenceKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("获取用户在线状态失败: %w", err)
	}

	var presence PresenceData
	if err := json.Unmarshal(data, &presence); err != nil {
		return nil, fmt.Errorf("反序列化在线状态失败: %w", err)
	}
	return &presence, nil
}

// OnlineMap 批量查询在线状态，结果只包含在线用户
func (p *Presence) OnlineMap(ctx context.Context, userIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(userIDs))
	if !p.Enabled() || len(userIDs) == 0 {
		return out, nil
	}

	pipe := p.client.Pipeline()
	cmds := make([]*redis.IntCmd, len(userIDs))
	for i, id := range userIDs {
		cmds[i] = pipe.Exists(ctx, presenceKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("检查用户在线状态失败: %w", err)
	}
	for i, cmd := range cmds {
		if cmd.Val() > 0 {
			out[userIDs[i]] = true
		}
	}
	return out, nil
}

// CleanExpired 清理集合中状态key已过期的用户，返回清理数量
func (p *Presence) CleanExpired(ctx context.Context) (int, error) {
	if !p.Enabled() {
		return 0, nil
	}

	members, err := p.client.SMembers(ctx, OnlineUsersKey).Result()
	if err != nil {
		return 0, fmt.Errorf("获取在线用户列表失败: %w", err)
	}

	removed := 0
	for _, member := range members {
		id, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			p.client.SRem(ctx, OnlineUsersKey, member)
			continue
		}
		n, err := p.client.Exists(ctx, presenceKey(uint(id))).Result()
		if err != nil {
			return removed, fmt.Errorf("检查用户在线状态失败: %w", err)
		}
		if n == 0 {
			p.client.SRem(ctx, OnlineUsersKey, member)
			removed++
		}
	}
	return removed, nil
}
