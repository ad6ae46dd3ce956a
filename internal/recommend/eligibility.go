package recommend

import (
	"context"
	"sort"
)

// Eligibility 资格过滤结果
type Eligibility struct {
	// Excluded 不参与推荐的用户：自己、好友、任一方向存在待处理请求的用户
	Excluded map[uint]struct{}
	// Pool 候选池，按用户ID升序
	Pool []uint
	// Truncated 候选池是否因 maxCandidates 被截断
	Truncated bool
}

// IsExcluded 判断用户是否被排除
func (e *Eligibility) IsExcluded(userID uint) bool {
	_, ok := e.Excluded[userID]
	return ok
}

// ResolveEligibility 计算排除集合与候选池
// maxCandidates <= 0 表示不限制候选池大小
func ResolveEligibility(ctx context.Context, src DataSource, userID uint, maxCandidates int) (*Eligibility, error) {
	excluded := map[uint]struct{}{userID: {}}

	friends, err := src.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	outgoing, err := src.PendingOutgoing(ctx, userID)
	if err != nil {
		return nil, err
	}
	incoming, err := src.PendingIncoming(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, group := range [][]uint{friends, outgoing, incoming} {
		for _, id := range group {
			excluded[id] = struct{}{}
		}
	}

	universe, err := src.UsersWithData(ctx)
	if err != nil {
		return nil, err
	}

	pool := make([]uint, 0, len(universe))
	seen := make(map[uint]struct{}, len(universe))
	for _, id := range universe {
		if _, skip := excluded[id]; skip {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		pool = append(pool, id)
	}
	// 固定枚举顺序，保证同分时结果可复现
	sort.Slice(pool, func(i, j int) bool { return pool[i] < pool[j] })

	el := &Eligibility{Excluded: excluded, Pool: pool}
	if maxCandidates > 0 && len(pool) > maxCandidates {
		el.Pool = pool[:maxCandidates]
		el.Truncated = true
	}
	return el, nil
}
