package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"moodmeal/internal/model"
	"moodmeal/internal/repository"
	"moodmeal/pkg/logger"

	"go.uber.org/zap"
)

const (
	minSearchLength = 2
	maxSearchResult = 20
)

// FriendView 好友列表项
type FriendView struct {
	User   *model.User
	Online bool
	Since  time.Time
}

// RequestList 收到的待处理请求与发出的请求，Users 为涉及的用户
type RequestList struct {
	Received []model.FriendRequest
	Sent     []model.FriendRequest
	Users    map[uint]*model.User
}

// SearchHit 用户搜索结果
type SearchHit struct {
	User              model.User
	IsFriend          bool
	HasPendingRequest bool
}

type FriendService struct {
	users    repository.IUserRepository
	friends  repository.IFriendRepository
	presence PresenceStore
}

func NewFriendService(users repository.IUserRepository, friends repository.IFriendRepository, presence PresenceStore) *FriendService {
	return &FriendService{users: users, friends: friends, presence: presence}
}

// SendRequest 发送好友请求
// 同一有序对曾被拒绝或接受过的请求会被重置为待处理，而不是新增一行
func (s *FriendService) SendRequest(ctx context.Context, senderID, receiverID uint) (*model.FriendRequest, error) {
	if senderID == receiverID {
		return nil, ErrSelfRequest
	}
	if _, err := s.users.GetByID(ctx, receiverID); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	friends, err := s.friends.AreFriends(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, ErrAlreadyFriends
	}

	pending, err := s.friends.HasPendingBetween(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrRequestPending
	}

	req, err := s.friends.GetRequestByPair(ctx, senderID, receiverID)
	switch {
	case errors.Is(err, repository.ErrRecordNotFound):
		req, err = model.NewFriendRequest(senderID, receiverID)
		if err != nil {
			return nil, ErrSelfRequest
		}
	case err != nil:
		return nil, err
	default:
		req.Status = model.FriendRequestPending
	}

	if err := s.friends.SaveRequest(ctx, req); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrRequestPending
		}
		return nil, err
	}

	logger.Ctx(ctx).Info("发送好友请求",
		zap.Uint("request_id", req.ID),
		zap.Uint("sender_id", senderID),
		zap.Uint("receiver_id", receiverID),
	)
	return req, nil
}

// ListRequests 收到的待处理请求与自己发出的全部请求
func (s *FriendService) ListRequests(ctx context.Context, userID uint) (*RequestList, error) {
	received, err := s.friends.ListPendingReceived(ctx, userID)
	if err != nil {
		return nil, err
	}
	sent, err := s.friends.ListSent(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(received)+len(sent)+1)
	ids = append(ids, userID)
	for _, r := range received {
		ids = append(ids, r.SenderID)
	}
	for _, r := range sent {
		ids = append(ids, r.ReceiverID)
	}
	users, err := s.users.BatchGetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &RequestList{Received: received, Sent: sent, Users: users}, nil
}

// RespondRequest 接受或拒绝请求，只有接收者可以处理待处理的请求
func (s *FriendService) RespondRequest(ctx context.Context, userID, requestID uint, accept bool) (*model.FriendRequest, error) {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.ReceiverID != userID {
		return nil, ErrPermissionDenied
	}
	if req.Status != model.FriendRequestPending {
		return nil, ErrRequestProcessed
	}

	if accept {
		_, err = s.friends.AcceptRequest(ctx, req)
	} else {
		err = s.friends.RejectRequest(ctx, req)
	}
	if errors.Is(err, repository.ErrRecordNotFound) {
		// 并发处理时已被他人改变
		return nil, ErrRequestProcessed
	}
	if err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Info("处理好友请求",
		zap.Uint("request_id", req.ID),
		zap.String("status", string(req.Status)),
	)
	return req, nil
}

// CancelRequest 发送者撤回请求
func (s *FriendService) CancelRequest(ctx context.Context, userID, requestID uint) error {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req.SenderID != userID {
		return ErrPermissionDenied
	}
	err = s.friends.DeleteRequest(ctx, req.ID)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return ErrRequestNotFound
	}
	return err
}

func (s *FriendService) getRequest(ctx context.Context, requestID uint) (*model.FriendRequest, error) {
	req, err := s.friends.GetRequest(ctx, requestID)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, ErrRequestNotFound
	}
	return req, err
}

// ListFriends 好友列表，附带在线状态；在线状态查询失败时全部视为离线
func (s *FriendService) ListFriends(ctx context.Context, userID uint) ([]FriendView, error) {
	list, err := s.friends.ListFriendships(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(list))
	for i := range list {
		ids = append(ids, list[i].Other(userID))
	}
	users, err := s.users.BatchGetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	online, err := s.presence.OnlineMap(ctx, ids)
	if err != nil {
		logger.Ctx(ctx).Warn("查询好友在线状态失败", zap.Error(err))
		online = map[uint]bool{}
	}

	out := make([]FriendView, 0, len(list))
	for i := range list {
		id := list[i].Other(userID)
		u, ok := users[id]
		if !ok {
			continue
		}
		out = append(out, FriendView{User: u, Online: online[id], Since: list[i].CreatedAt})
	}
	return out, nil
}

// Unfriend 解除好友关系
func (s *FriendService) Unfriend(ctx context.Context, userID, friendID uint) error {
	if userID == friendID {
		return ErrNotFriends
	}
	removed, err := s.friends.DeleteFriendship(ctx, userID, friendID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFriends
	}
	logger.Ctx(ctx).Info("解除好友关系", zap.Uint("user_id", userID), zap.Uint("friend_id", friendID))
	return nil
}

// SearchUsers 按用户名、昵称、学校搜索用户，标记好友与待处理请求
func (s *FriendService) SearchUsers(ctx context.Context, userID uint, query string) ([]SearchHit, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minSearchLength {
		return nil, fmt.Errorf("%w: query must be at least %d characters", ErrInvalidParam, minSearchLength)
	}

	users, err := s.users.Search(ctx, query, userID, maxSearchResult)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return []SearchHit{}, nil
	}

	friendIDs, err := s.friends.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	outgoing, err := s.friends.PendingOutgoingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	incoming, err := s.friends.PendingIncomingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	isFriend := idSet(friendIDs)
	pending := idSet(outgoing, incoming)

	out := make([]SearchHit, 0, len(users))
	for _, u := range users {
		_, f := isFriend[u.ID]
		_, p := pending[u.ID]
		out = append(out, SearchHit{User: u, IsFriend: f, HasPendingRequest: p})
	}
	return out, nil
}

func idSet(groups ...[]uint) map[uint]struct{} {
	set := make(map[uint]struct{})
	for _, g := range groups {
		for _, id := range g {
			set[id] = struct{}{}
		}
	}
	return set
}
