package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"moodmeal/internal/model"
	"moodmeal/internal/repository"
	"moodmeal/pkg/logger"

	"go.uber.org/zap"
)

const (
	maxMoodList  = 500
	topTagsLimit = 5
)

// MoodInput 新增心情记录参数，Category/Timestamp 为空时自动推导
type MoodInput struct {
	Score     int
	Tags      []string
	Category  string
	Timestamp *time.Time
}

// MoodUpdate 修改心情记录参数，nil 字段保持不变
type MoodUpdate struct {
	Score     *int
	Tags      *[]string
	Category  *string
	Timestamp *time.Time
}

// TagCount 标签计数
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// MoodStats 心情统计
type MoodStats struct {
	TotalEntries       int            `json:"total_entries"`
	AverageScore       *float64       `json:"average_score"`
	MostCommonCategory string         `json:"most_common_category"`
	TopTags            []TagCount     `json:"top_tags"`
	CategoryCounts     map[string]int `json:"category_counts"`
}

type MoodService struct {
	moods repository.IMoodRepository
}

func NewMoodService(moods repository.IMoodRepository) *MoodService {
	return &MoodService{moods: moods}
}

// LogMood 记录心情
func (s *MoodService) LogMood(ctx context.Context, userID uint, in MoodInput) (*model.MoodEntry, error) {
	if !model.ValidMoodScore(in.Score) {
		return nil, fmt.Errorf("%w: mood_score must be between %d and %d", ErrInvalidParam, model.MinMoodScore, model.MaxMoodScore)
	}
	var ts time.Time
	if in.Timestamp != nil {
		ts = *in.Timestamp
	}
	entry := model.NewMoodEntry(userID, in.Score, in.Tags, strings.TrimSpace(in.Category), ts)
	if err := s.moods.Create(ctx, entry); err != nil {
		return nil, err
	}
	logger.Ctx(ctx).Debug("记录心情",
		zap.Uint("user_id", userID),
		zap.Int("score", entry.MoodScore),
		zap.String("category", entry.MoodCategory),
	)
	return entry, nil
}

// ListMoods 按时间倒序列出心情，limit<=0 或超过上限时取上限
func (s *MoodService) ListMoods(ctx context.Context, userID uint, limit int) ([]model.MoodEntry, error) {
	if limit <= 0 || limit > maxMoodList {
		limit = maxMoodList
	}
	return s.moods.ListByUser(ctx, userID, limit)
}

// GetMood 查询自己的心情记录
func (s *MoodService) GetMood(ctx context.Context, userID, id uint) (*model.MoodEntry, error) {
	m, err := s.moods.GetByID(ctx, userID, id)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, ErrMoodNotFound
	}
	return m, err
}

// UpdateMood 修改心情记录；修改分数时重新推导分类，除非同时指定了分类
func (s *MoodService) UpdateMood(ctx context.Context, userID, id uint, in MoodUpdate) (*model.MoodEntry, error) {
	m, err := s.GetMood(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Score != nil {
		if !model.ValidMoodScore(*in.Score) {
			return nil, fmt.Errorf("%w: mood_score must be between %d and %d", ErrInvalidParam, model.MinMoodScore, model.MaxMoodScore)
		}
		m.SetScore(*in.Score)
	}
	if in.Category != nil {
		if c := strings.TrimSpace(*in.Category); c != "" {
			m.MoodCategory = c
		} else {
			m.MoodCategory = model.MoodCategoryForScore(m.MoodScore)
		}
	}
	if in.Tags != nil {
		m.MoodTags = model.FilterMoodTags(*in.Tags)
	}
	if in.Timestamp != nil && !in.Timestamp.IsZero() {
		m.Timestamp = *in.Timestamp
	}

	if err := s.moods.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// DeleteMood 删除自己的心情记录
func (s *MoodService) DeleteMood(ctx context.Context, userID, id uint) error {
	ok, err := s.moods.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrMoodNotFound
	}
	return nil
}

// Stats 统计用户全部心情记录
func (s *MoodService) Stats(ctx context.Context, userID uint) (*MoodStats, error) {
	list, err := s.moods.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	return computeMoodStats(list), nil
}

func computeMoodStats(list []model.MoodEntry) *MoodStats {
	stats := &MoodStats{
		TotalEntries:   len(list),
		TopTags:        []TagCount{},
		CategoryCounts: map[string]int{},
	}
	if len(list) == 0 {
		return stats
	}

	sum := 0
	tagCounts := map[string]int{}
	for _, m := range list {
		sum += m.MoodScore
		stats.CategoryCounts[m.MoodCategory]++
		for _, t := range m.MoodTags {
			tagCounts[t]++
		}
	}
	avg := math.Round(float64(sum)/float64(len(list))*100) / 100
	stats.AverageScore = &avg

	// 次数相同按名称排序，保证结果稳定
	best := 0
	for cat, n := range stats.CategoryCounts {
		if n > best || (n == best && cat < stats.MostCommonCategory) {
			best = n
			stats.MostCommonCategory = cat
		}
	}

	for tag, n := range tagCounts {
		stats.TopTags = append(stats.TopTags, TagCount{Tag: tag, Count: n})
	}
	sort.Slice(stats.TopTags, func(i, j int) bool {
		if stats.TopTags[i].Count != stats.TopTags[j].Count {
			return stats.TopTags[i].Count > stats.TopTags[j].Count
		}
		return stats.TopTags[i].Tag < stats.TopTags[j].Tag
	})
	if len(stats.TopTags) > topTagsLimit {
		stats.TopTags = stats.TopTags[:topTagsLimit]
	}
	return stats
}
