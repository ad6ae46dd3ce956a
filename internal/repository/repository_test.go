package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"moodmeal/internal/model"
	"moodmeal/pkg/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB 每个测试独立的内存 SQLite 库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	orm, err := gorm.Open(sqlite.Open(dsn), db.GormConfig(false))
	require.NoError(t, err)
	sqlDB, err := orm.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, orm.AutoMigrate(
		&model.User{},
		&model.Friendship{},
		&model.FriendRequest{},
		&model.MoodEntry{},
		&model.Preferences{},
	))
	return orm
}

func createUsers(t *testing.T, repo *UserRepository, names ...string) []*model.User {
	t.Helper()
	out := make([]*model.User, 0, len(names))
	for _, n := range names {
		u := &model.User{Username: n, Email: n + "@example.com", PasswordHash: "x", Nickname: strings.ToUpper(n)}
		require.NoError(t, repo.Create(context.Background(), u))
		out = append(out, u)
	}
	return out
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))
	users := createUsers(t, repo, "alice", "bob", "carol")

	got, err := repo.GetByUsernameOrEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, users[1].ID, got.ID)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	err = repo.Create(ctx, &model.User{Username: "alice", Email: "other@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	exists, err := repo.ExistsByUsernameOrEmail(ctx, "zed", "carol@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.ExistsByUsernameOrEmail(ctx, "zed", "")
	require.NoError(t, err)
	assert.False(t, exists)

	byID, err := repo.BatchGetByIDs(ctx, []uint{users[0].ID, users[2].ID, 999})
	require.NoError(t, err)
	assert.Len(t, byID, 2)
	assert.Equal(t, "carol", byID[users[2].ID].Username)

	require.NoError(t, repo.TouchLastSeen(ctx, users[0].ID))
	got, err = repo.GetByID(ctx, users[0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.UserStatusOnline, got.Status)
	assert.WithinDuration(t, time.Now(), got.LastSeen, time.Minute)
}

func TestUserRepositorySearch(t *testing.T) {
	ctx := context.Background()
	orm := newTestDB(t)
	repo := NewUserRepository(orm)
	users := createUsers(t, repo, "annie", "joanna", "bob")
	require.NoError(t, orm.Model(users[2]).Update("school", "Hanover College").Error)

	found, err := repo.Search(ctx, "AN", users[0].ID, 20)
	require.NoError(t, err)
	// 匹配用户名 joanna 与学校 Hanover，排除自己
	require.Len(t, found, 2)
	assert.Equal(t, users[1].ID, found[0].ID)
	assert.Equal(t, users[2].ID, found[1].ID)

	found, err = repo.Search(ctx, "an", 0, 1)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestFriendRepositoryRequestsAndFriendships(t *testing.T) {
	ctx := context.Background()
	orm := newTestDB(t)
	users := createUsers(t, NewUserRepository(orm), "a", "b", "c")
	a, b, c := users[0].ID, users[1].ID, users[2].ID
	repo := NewFriendRepository(orm)

	req, err := model.NewFriendRequest(b, a)
	require.NoError(t, err)
	require.NoError(t, repo.SaveRequest(ctx, req))
	other, err := model.NewFriendRequest(a, c)
	require.NoError(t, err)
	require.NoError(t, repo.SaveRequest(ctx, other))

	// 同一有序对只能有一行
	dup, _ := model.NewFriendRequest(b, a)
	assert.ErrorIs(t, repo.SaveRequest(ctx, dup), ErrDuplicateKey)

	pending, err := repo.HasPendingBetween(ctx, a, b)
	require.NoError(t, err)
	assert.True(t, pending)

	out, err := repo.PendingOutgoingIDs(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []uint{c}, out)
	in, err := repo.PendingIncomingIDs(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []uint{b}, in)

	received, err := repo.ListPendingReceived(ctx, a)
	require.NoError(t, err)
	require.Len(t, received, 1)

	f, err := repo.AcceptRequest(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, model.FriendRequestAccepted, req.Status)
	lo, hi := model.CanonicalPair(a, b)
	assert.Equal(t, lo, f.UserID1)
	assert.Equal(t, hi, f.UserID2)

	// 已处理的请求不能再次接受
	_, err = repo.AcceptRequest(ctx, req)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	friends, err := repo.AreFriends(ctx, b, a)
	require.NoError(t, err)
	assert.True(t, friends)
	ids, err := repo.FriendIDs(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []uint{b}, ids)

	pending, err = repo.HasPendingBetween(ctx, a, b)
	require.NoError(t, err)
	assert.False(t, pending)

	require.NoError(t, repo.RejectRequest(ctx, other))
	out, err = repo.PendingOutgoingIDs(ctx, a)
	require.NoError(t, err)
	assert.Empty(t, out)

	sent, err := repo.ListSent(ctx, a)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, model.FriendRequestRejected, sent[0].Status)

	removed, err := repo.DeleteFriendship(ctx, a, b)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repo.DeleteFriendship(ctx, a, b)
	require.NoError(t, err)
	assert.False(t, removed)

	require.NoError(t, repo.DeleteRequest(ctx, other.ID))
	assert.ErrorIs(t, repo.DeleteRequest(ctx, other.ID), ErrRecordNotFound)
}

func TestMoodRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMoodRepository(newTestDB(t))

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, score := range []int{10, 50, 90} {
		require.NoError(t, repo.Create(ctx, model.NewMoodEntry(1, score, []string{"calm"}, "", base.Add(time.Duration(i)*time.Hour))))
	}
	require.NoError(t, repo.Create(ctx, model.NewMoodEntry(3, 70, nil, "", base)))

	list, err := repo.ListByUser(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 90, list[0].MoodScore)
	assert.Equal(t, 50, list[1].MoodScore)
	assert.Equal(t, []string{"calm"}, []string(list[0].MoodTags))

	all, err := repo.ListByUser(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = repo.GetByID(ctx, 3, list[0].ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	entry, err := repo.GetByID(ctx, 1, list[0].ID)
	require.NoError(t, err)
	entry.SetScore(20)
	require.NoError(t, repo.Update(ctx, entry))
	entry, err = repo.GetByID(ctx, 1, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MoodStressed, entry.MoodCategory)

	ids, err := repo.UserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 3}, ids)

	ok, err := repo.Delete(ctx, 3, entry.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = repo.Delete(ctx, 1, entry.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPreferencesRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPreferencesRepository(newTestDB(t))

	_, err := repo.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	p := model.EmptyPreferences(1)
	p.Music = model.CleanList([]string{"Jazz"})
	require.NoError(t, repo.Upsert(ctx, p))
	firstID := p.ID
	require.NotZero(t, firstID)

	p2 := model.EmptyPreferences(1)
	p2.Cuisines = model.CleanList([]string{"Thai"})
	require.NoError(t, repo.Upsert(ctx, p2))
	assert.Equal(t, firstID, p2.ID)

	got, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, got.Music)
	assert.Equal(t, []string{"Thai"}, []string(got.Cuisines))

	ids, err := repo.UserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, ids)

	ok, err := repo.Delete(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Delete(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecommendSource(t *testing.T) {
	ctx := context.Background()
	orm := newTestDB(t)
	moods := NewMoodRepository(orm)
	prefs := NewPreferencesRepository(orm)
	src := NewRecommendSource(moods, prefs, NewFriendRepository(orm))

	require.NoError(t, moods.Create(ctx, model.NewMoodEntry(2, 60, nil, "", time.Time{})))
	require.NoError(t, moods.Create(ctx, model.NewMoodEntry(5, 60, nil, "", time.Time{})))
	p := model.EmptyPreferences(5)
	p.Music = model.CleanList([]string{"pop"})
	require.NoError(t, prefs.Upsert(ctx, p))
	require.NoError(t, prefs.Upsert(ctx, model.EmptyPreferences(7)))

	ids, err := src.UsersWithData(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{2, 5, 7}, ids)

	missing, err := src.Preferences(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, missing)

	got, err := src.Preferences(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"pop"}, []string(got.Music))
}

func TestWrapDBError(t *testing.T) {
	assert.NoError(t, WrapDBError(nil))
	assert.ErrorIs(t, WrapDBError(gorm.ErrRecordNotFound), ErrRecordNotFound)
	assert.ErrorIs(t, WrapDBError(fmt.Errorf("wrapped: %w", gorm.ErrDuplicatedKey)), ErrDuplicateKey)

	err := WrapDBError(assert.AnError)
	assert.ErrorIs(t, err, ErrDatabase)
	assert.Contains(t, err.Error(), assert.AnError.Error())
}
