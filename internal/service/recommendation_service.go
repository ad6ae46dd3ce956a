package service

import (
	"context"
	"time"

	"moodmeal/internal/model"
	"moodmeal/internal/recommend"
	"moodmeal/internal/repository"
	"moodmeal/pkg/logger"
	"moodmeal/pkg/metrics"

	"go.uber.org/zap"
)

// RecommendationResult 推荐结果，Users 为候选人资料
type RecommendationResult struct {
	Candidates []recommend.Candidate
	Users      map[uint]*model.User
	ColdStart  bool
}

type RecommendationService struct {
	engine   *recommend.Engine
	users    repository.IUserRepository
	maxLimit int
}

// NewRecommendationService maxLimit<=0 表示不限制单次返回条数
func NewRecommendationService(engine *recommend.Engine, users repository.IUserRepository, maxLimit int) *RecommendationService {
	return &RecommendationService{engine: engine, users: users, maxLimit: maxLimit}
}

// Limit 规范化 limit：非正数取默认值，超过上限取上限
func (s *RecommendationService) Limit(limit int) int {
	limit = s.engine.NormalizeLimit(limit)
	if s.maxLimit > 0 && limit > s.maxLimit {
		limit = s.maxLimit
	}
	return limit
}

// Recommend 计算好友推荐并补全候选人资料
// 用户目录中已不存在的候选人会被剔除
func (s *RecommendationService) Recommend(ctx context.Context, userID uint, limit int) (*RecommendationResult, error) {
	start := time.Now()
	limit = s.Limit(limit)

	res, err := s.engine.Recommend(ctx, userID, limit)
	if err != nil {
		metrics.RecordRecommendation(metrics.PathError, 0, false, time.Since(start))
		logger.Ctx(ctx).Error("好友推荐失败", zap.Uint("user_id", userID), zap.Error(err))
		return nil, err
	}

	ids := make([]uint, 0, len(res.Candidates))
	for _, c := range res.Candidates {
		ids = append(ids, c.UserID)
	}
	users, err := s.users.BatchGetByIDs(ctx, ids)
	if err != nil {
		metrics.RecordRecommendation(metrics.PathError, res.PoolSize, res.Truncated, time.Since(start))
		return nil, err
	}

	out := &RecommendationResult{
		Candidates: make([]recommend.Candidate, 0, len(res.Candidates)),
		Users:      users,
		ColdStart:  res.ColdStart,
	}
	for _, c := range res.Candidates {
		if _, ok := users[c.UserID]; ok {
			out.Candidates = append(out.Candidates, c)
		}
	}

	path := metrics.PathScored
	if res.ColdStart {
		path = metrics.PathColdStart
	}
	elapsed := time.Since(start)
	metrics.RecordRecommendation(path, res.PoolSize, res.Truncated, elapsed)

	logger.Ctx(ctx).Info("好友推荐",
		zap.Uint("user_id", userID),
		zap.String("path", path),
		zap.Int("limit", limit),
		zap.Int("pool_size", res.PoolSize),
		zap.Int("scored", res.Scored),
		zap.Bool("truncated", res.Truncated),
		zap.Int("count", len(out.Candidates)),
		zap.Duration("latency", elapsed),
	)
	return out, nil
}
