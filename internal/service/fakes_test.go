package service

import (
	"context"
	"strconv"
	"sync"

	"moodmeal/internal/model"
	"moodmeal/internal/repository"
	"moodmeal/pkg/logger"

	"go.uber.org/zap"
)

var serviceLoggerOnce sync.Once

func initServiceTestLogger() {
	serviceLoggerOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
	})
}

type fakeUserRepository struct {
	createFn                  func(context.Context, *model.User) error
	getByIDFn                 func(context.Context, uint) (*model.User, error)
	getByUsernameOrEmailFn    func(context.Context, string) (*model.User, error)
	existsByUsernameOrEmailFn func(context.Context, string, string) (bool, error)
	batchGetByIDsFn           func(context.Context, []uint) (map[uint]*model.User, error)
	searchFn                  func(context.Context, string, uint, int) ([]model.User, error)
	updateStatusFn            func(context.Context, uint, string) error
	touchLastSeenFn           func(context.Context, uint) error
}

var _ repository.IUserRepository = (*fakeUserRepository)(nil)

func (f *fakeUserRepository) Create(ctx context.Context, u *model.User) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, u)
}

func (f *fakeUserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	if f.getByIDFn == nil {
		return &model.User{ID: id}, nil
	}
	return f.getByIDFn(ctx, id)
}

func (f *fakeUserRepository) GetByUsernameOrEmail(ctx context.Context, identifier string) (*model.User, error) {
	if f.getByUsernameOrEmailFn == nil {
		return nil, repository.ErrRecordNotFound
	}
	return f.getByUsernameOrEmailFn(ctx, identifier)
}

func (f *fakeUserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	if f.existsByUsernameOrEmailFn == nil {
		return false, nil
	}
	return f.existsByUsernameOrEmailFn(ctx, username, email)
}

// BatchGetByIDs 默认为每个ID返回一个以 u<ID> 命名的用户
func (f *fakeUserRepository) BatchGetByIDs(ctx context.Context, ids []uint) (map[uint]*model.User, error) {
	if f.batchGetByIDsFn == nil {
		out := make(map[uint]*model.User, len(ids))
		for _, id := range ids {
			out[id] = &model.User{ID: id, Username: "u" + strconv.FormatUint(uint64(id), 10)}
		}
		return out, nil
	}
	return f.batchGetByIDsFn(ctx, ids)
}

func (f *fakeUserRepository) Search(ctx context.Context, keyword string, excludeID uint, limit int) ([]model.User, error) {
	if f.searchFn == nil {
		return nil, nil
	}
	return f.searchFn(ctx, keyword, excludeID, limit)
}

func (f *fakeUserRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	if f.updateStatusFn == nil {
		return nil
	}
	return f.updateStatusFn(ctx, id, status)
}

func (f *fakeUserRepository) TouchLastSeen(ctx context.Context, id uint) error {
	if f.touchLastSeenFn == nil {
		return nil
	}
	return f.touchLastSeenFn(ctx, id)
}

type fakeFriendRepository struct {
	areFriendsFn          func(context.Context, uint, uint) (bool, error)
	friendIDsFn           func(context.Context, uint) ([]uint, error)
	listFriendshipsFn     func(context.Context, uint) ([]model.Friendship, error)
	deleteFriendshipFn    func(context.Context, uint, uint) (bool, error)
	getRequestFn          func(context.Context, uint) (*model.FriendRequest, error)
	getRequestByPairFn    func(context.Context, uint, uint) (*model.FriendRequest, error)
	hasPendingBetweenFn   func(context.Context, uint, uint) (bool, error)
	saveRequestFn         func(context.Context, *model.FriendRequest) error
	deleteRequestFn       func(context.Context, uint) error
	listPendingReceivedFn func(context.Context, uint) ([]model.FriendRequest, error)
	listSentFn            func(context.Context, uint) ([]model.FriendRequest, error)
	pendingOutgoingIDsFn  func(context.Context, uint) ([]uint, error)
	pendingIncomingIDsFn  func(context.Context, uint) ([]uint, error)
	acceptRequestFn       func(context.Context, *model.FriendRequest) (*model.Friendship, error)
	rejectRequestFn       func(context.Context, *model.FriendRequest) error
}

var _ repository.IFriendRepository = (*fakeFriendRepository)(nil)

func (f *fakeFriendRepository) AreFriends(ctx context.Context, a, b uint) (bool, error) {
	if f.areFriendsFn == nil {
		return false, nil
	}
	return f.areFriendsFn(ctx, a, b)
}

func (f *fakeFriendRepository) FriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	if f.friendIDsFn == nil {
		return nil, nil
	}
	return f.friendIDsFn(ctx, userID)
}

func (f *fakeFriendRepository) ListFriendships(ctx context.Context, userID uint) ([]model.Friendship, error) {
	if f.listFriendshipsFn == nil {
		return nil, nil
	}
	return f.listFriendshipsFn(ctx, userID)
}

func (f *fakeFriendRepository) DeleteFriendship(ctx context.Context, a, b uint) (bool, error) {
	if f.deleteFriendshipFn == nil {
		return false, nil
	}
	return f.deleteFriendshipFn(ctx, a, b)
}

func (f *fakeFriendRepository) GetRequest(ctx context.Context, id uint) (*model.FriendRequest, error) {
	if f.getRequestFn == nil {
		return nil, repository.ErrRecordNotFound
	}
	return f.getRequestFn(ctx, id)
}

func (f *fakeFriendRepository) GetRequestByPair(ctx context.Context, senderID, receiverID uint) (*model.FriendRequest, error) {
	if f.getRequestByPairFn == nil {
		return nil, repository.ErrRecordNotFound
	}
	return f.getRequestByPairFn(ctx, senderID, receiverID)
}

func (f *fakeFriendRepository) HasPendingBetween(ctx context.Context, a, b uint) (bool, error) {
	if f.hasPendingBetweenFn == nil {
		return false, nil
	}
	return f.hasPendingBetweenFn(ctx, a, b)
}

func (f *fakeFriendRepository) SaveRequest(ctx context.Context, req *model.FriendRequest) error {
	if f.saveRequestFn == nil {
		return nil
	}
	return f.saveRequestFn(ctx, req)
}

func (f *fakeFriendRepository) DeleteRequest(ctx context.Context, id uint) error {
	if f.deleteRequestFn == nil {
		return nil
	}
	return f.deleteRequestFn(ctx, id)
}

func (f *fakeFriendRepository) ListPendingReceived(ctx context.Context, userID uint) ([]model.FriendRequest, error) {
	if f.listPendingReceivedFn == nil {
		return nil, nil
	}
	return f.listPendingReceivedFn(ctx, userID)
}

func (f *fakeFriendRepository) ListSent(ctx context.Context, userID uint) ([]model.FriendRequest, error) {
	if f.listSentFn == nil {
		return nil, nil
	}
	return f.listSentFn(ctx, userID)
}

func (f *fakeFriendRepository) PendingOutgoingIDs(ctx context.Context, userID uint) ([]uint, error) {
	if f.pendingOutgoingIDsFn == nil {
		return nil, nil
	}
	return f.pendingOutgoingIDsFn(ctx, userID)
}

func (f *fakeFriendRepository) PendingIncomingIDs(ctx context.Context, userID uint) ([]uint, error) {
	if f.pendingIncomingIDsFn == nil {
		return nil, nil
	}
	return f.pendingIncomingIDsFn(ctx, userID)
}

func (f *fakeFriendRepository) AcceptRequest(ctx context.Context, req *model.FriendRequest) (*model.Friendship, error) {
	if f.acceptRequestFn == nil {
		req.Status = model.FriendRequestAccepted
		return model.NewFriendship(req.SenderID, req.ReceiverID)
	}
	return f.acceptRequestFn(ctx, req)
}

func (f *fakeFriendRepository) RejectRequest(ctx context.Context, req *model.FriendRequest) error {
	if f.rejectRequestFn == nil {
		req.Status = model.FriendRequestRejected
		return nil
	}
	return f.rejectRequestFn(ctx, req)
}

type fakeMoodRepository struct {
	createFn     func(context.Context, *model.MoodEntry) error
	getByIDFn    func(context.Context, uint, uint) (*model.MoodEntry, error)
	updateFn     func(context.Context, *model.MoodEntry) error
	deleteFn     func(context.Context, uint, uint) (bool, error)
	listByUserFn func(context.Context, uint, int) ([]model.MoodEntry, error)
	userIDsFn    func(context.Context) ([]uint, error)
}

var _ repository.IMoodRepository = (*fakeMoodRepository)(nil)

func (f *fakeMoodRepository) Create(ctx context.Context, e *model.MoodEntry) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, e)
}

func (f *fakeMoodRepository) GetByID(ctx context.Context, userID, id uint) (*model.MoodEntry, error) {
	if f.getByIDFn == nil {
		return nil, repository.ErrRecordNotFound
	}
	return f.getByIDFn(ctx, userID, id)
}

func (f *fakeMoodRepository) Update(ctx context.Context, e *model.MoodEntry) error {
	if f.updateFn == nil {
		return nil
	}
	return f.updateFn(ctx, e)
}

func (f *fakeMoodRepository) Delete(ctx context.Context, userID, id uint) (bool, error) {
	if f.deleteFn == nil {
		return false, nil
	}
	return f.deleteFn(ctx, userID, id)
}

func (f *fakeMoodRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]model.MoodEntry, error) {
	if f.listByUserFn == nil {
		return nil, nil
	}
	return f.listByUserFn(ctx, userID, limit)
}

func (f *fakeMoodRepository) UserIDs(ctx context.Context) ([]uint, error) {
	if f.userIDsFn == nil {
		return nil, nil
	}
	return f.userIDsFn(ctx)
}

type fakePreferencesRepository struct {
	getFn     func(context.Context, uint) (*model.Preferences, error)
	upsertFn  func(context.Context, *model.Preferences) error
	deleteFn  func(context.Context, uint) (bool, error)
	userIDsFn func(context.Context) ([]uint, error)
}

var _ repository.IPreferencesRepository = (*fakePreferencesRepository)(nil)

func (f *fakePreferencesRepository) Get(ctx context.Context, userID uint) (*model.Preferences, error) {
	if f.getFn == nil {
		return nil, repository.ErrRecordNotFound
	}
	return f.getFn(ctx, userID)
}

func (f *fakePreferencesRepository) Upsert(ctx context.Context, p *model.Preferences) error {
	if f.upsertFn == nil {
		return nil
	}
	return f.upsertFn(ctx, p)
}

func (f *fakePreferencesRepository) Delete(ctx context.Context, userID uint) (bool, error) {
	if f.deleteFn == nil {
		return false, nil
	}
	return f.deleteFn(ctx, userID)
}

func (f *fakePreferencesRepository) UserIDs(ctx context.Context) ([]uint, error) {
	if f.userIDsFn == nil {
		return nil, nil
	}
	return f.userIDsFn(ctx)
}

type fakePresence struct {
	setOnlineFn  func(context.Context, uint, string) error
	setOfflineFn func(context.Context, uint) error
	onlineMapFn  func(context.Context, []uint) (map[uint]bool, error)
}

var _ PresenceStore = (*fakePresence)(nil)

func (f *fakePresence) SetOnline(ctx context.Context, userID uint, username string) error {
	if f.setOnlineFn == nil {
		return nil
	}
	return f.setOnlineFn(ctx, userID, username)
}

func (f *fakePresence) SetOffline(ctx context.Context, userID uint) error {
	if f.setOfflineFn == nil {
		return nil
	}
	return f.setOfflineFn(ctx, userID)
}

func (f *fakePresence) OnlineMap(ctx context.Context, ids []uint) (map[uint]bool, error) {
	if f.onlineMapFn == nil {
		return map[uint]bool{}, nil
	}
	return f.onlineMapFn(ctx, ids)
}
