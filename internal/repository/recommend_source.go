package repository

import (
	"context"
	"errors"

	"moodmeal/internal/model"
	"moodmeal/internal/recommend"
)

// RecommendSource 把各仓储组合为推荐引擎的数据源
type RecommendSource struct {
	moods   IMoodRepository
	prefs   IPreferencesRepository
	friends IFriendRepository
}

func NewRecommendSource(moods IMoodRepository, prefs IPreferencesRepository, friends IFriendRepository) *RecommendSource {
	return &RecommendSource{moods: moods, prefs: prefs, friends: friends}
}

var _ recommend.DataSource = (*RecommendSource)(nil)

func (s *RecommendSource) RecentMoods(ctx context.Context, userID uint, count int) ([]model.MoodEntry, error) {
	return s.moods.ListByUser(ctx, userID, count)
}

// Preferences 未设置偏好时返回 (nil, nil)
func (s *RecommendSource) Preferences(ctx context.Context, userID uint) (*model.Preferences, error) {
	p, err := s.prefs.Get(ctx, userID)
	if errors.Is(err, ErrRecordNotFound) {
		return nil, nil
	}
	return p, err
}

func (s *RecommendSource) FriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.friends.FriendIDs(ctx, userID)
}

func (s *RecommendSource) PendingOutgoing(ctx context.Context, userID uint) ([]uint, error) {
	return s.friends.PendingOutgoingIDs(ctx, userID)
}

func (s *RecommendSource) PendingIncoming(ctx context.Context, userID uint) ([]uint, error) {
	return s.friends.PendingIncomingIDs(ctx, userID)
}

// UsersWithData 有心情记录或偏好记录的用户（去重）
func (s *RecommendSource) UsersWithData(ctx context.Context) ([]uint, error) {
	moodIDs, err := s.moods.UserIDs(ctx)
	if err != nil {
		return nil, err
	}
	prefIDs, err := s.prefs.UserIDs(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]struct{}, len(moodIDs)+len(prefIDs))
	out := make([]uint, 0, len(moodIDs)+len(prefIDs))
	for _, group := range [][]uint{moodIDs, prefIDs} {
		for _, id := range group {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out, nil
}
