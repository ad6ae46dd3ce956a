package recommend

import (
	"context"
	"sort"
	"time"

	"moodmeal/internal/model"

	"gorm.io/datatypes"
)

// memSource 内存数据源，failOn 指定的方法返回 err
type memSource struct {
	moods    map[uint][]model.MoodEntry
	prefs    map[uint]*model.Preferences
	friends  map[uint][]uint
	outgoing map[uint][]uint
	incoming map[uint][]uint

	failOn string
	err    error
}

func newMemSource() *memSource {
	return &memSource{
		moods:    map[uint][]model.MoodEntry{},
		prefs:    map[uint]*model.Preferences{},
		friends:  map[uint][]uint{},
		outgoing: map[uint][]uint{},
		incoming: map[uint][]uint{},
	}
}

var _ DataSource = (*memSource)(nil)

func (s *memSource) fail(method string) error {
	if s.failOn == method {
		return s.err
	}
	return nil
}

func (s *memSource) RecentMoods(_ context.Context, userID uint, count int) ([]model.MoodEntry, error) {
	if err := s.fail("RecentMoods"); err != nil {
		return nil, err
	}
	list := s.moods[userID]
	if len(list) > count {
		list = list[:count]
	}
	return list, nil
}

func (s *memSource) Preferences(_ context.Context, userID uint) (*model.Preferences, error) {
	if err := s.fail("Preferences"); err != nil {
		return nil, err
	}
	return s.prefs[userID], nil
}

func (s *memSource) FriendIDs(_ context.Context, userID uint) ([]uint, error) {
	if err := s.fail("FriendIDs"); err != nil {
		return nil, err
	}
	return s.friends[userID], nil
}

func (s *memSource) PendingOutgoing(_ context.Context, userID uint) ([]uint, error) {
	if err := s.fail("PendingOutgoing"); err != nil {
		return nil, err
	}
	return s.outgoing[userID], nil
}

func (s *memSource) PendingIncoming(_ context.Context, userID uint) ([]uint, error) {
	if err := s.fail("PendingIncoming"); err != nil {
		return nil, err
	}
	return s.incoming[userID], nil
}

func (s *memSource) UsersWithData(_ context.Context) ([]uint, error) {
	if err := s.fail("UsersWithData"); err != nil {
		return nil, err
	}
	seen := map[uint]struct{}{}
	for id := range s.moods {
		seen[id] = struct{}{}
	}
	for id := range s.prefs {
		seen[id] = struct{}{}
	}
	ids := make([]uint, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	// 故意打乱顺序，验证引擎自身的排序
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	return ids, nil
}

// befriend 建立双向好友
func (s *memSource) befriend(a, b uint) {
	s.friends[a] = append(s.friends[a], b)
	s.friends[b] = append(s.friends[b], a)
}

// request 建立 sender→receiver 的待处理请求
func (s *memSource) request(sender, receiver uint) {
	s.outgoing[sender] = append(s.outgoing[sender], receiver)
	s.incoming[receiver] = append(s.incoming[receiver], sender)
}

// setMoods 按给定顺序（新到旧）写入心情记录
func (s *memSource) setMoods(userID uint, scores ...int) {
	now := time.Now()
	entries := make([]model.MoodEntry, 0, len(scores))
	for i, score := range scores {
		entries = append(entries, *model.NewMoodEntry(userID, score, nil, "", now.Add(-time.Duration(i)*time.Hour)))
	}
	s.moods[userID] = entries
}

type prefLists struct {
	music, activities, cuisines []string
}

func (s *memSource) setPrefs(userID uint, p prefLists) {
	s.prefs[userID] = &model.Preferences{
		UserID:     userID,
		Music:      datatypes.JSONSlice[string](p.music),
		Activities: datatypes.JSONSlice[string](p.activities),
		Cuisines:   datatypes.JSONSlice[string](p.cuisines),
	}
}
