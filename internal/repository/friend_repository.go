package repository

import (
	"context"

	"moodmeal/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FriendRepository 好友关系与好友请求
type FriendRepository struct {
	orm *gorm.DB
}

func NewFriendRepository(orm *gorm.DB) *FriendRepository {
	return &FriendRepository{orm: orm}
}

var _ IFriendRepository = (*FriendRepository)(nil)

// ==================== 好友关系 ====================

func (r *FriendRepository) AreFriends(ctx context.Context, a, b uint) (bool, error) {
	lo, hi := model.CanonicalPair(a, b)
	var n int64
	err := r.orm.WithContext(ctx).Model(&model.Friendship{}).
		Where("user_id1 = ? AND user_id2 = ?", lo, hi).
		Count(&n).Error
	if err != nil {
		return false, WrapDBError(err)
	}
	return n > 0, nil
}

// ListFriendships 用户参与的全部好友关系，按建立时间倒序
func (r *FriendRepository) ListFriendships(ctx context.Context, userID uint) ([]model.Friendship, error) {
	var list []model.Friendship
	err := r.orm.WithContext(ctx).
		Where("user_id1 = ? OR user_id2 = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return list, nil
}

func (r *FriendRepository) FriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	list, err := r.ListFriendships(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(list))
	for i := range list {
		ids = append(ids, list[i].Other(userID))
	}
	return ids, nil
}

// DeleteFriendship 删除好友关系，返回是否存在
func (r *FriendRepository) DeleteFriendship(ctx context.Context, a, b uint) (bool, error) {
	lo, hi := model.CanonicalPair(a, b)
	res := r.orm.WithContext(ctx).
		Where("user_id1 = ? AND user_id2 = ?", lo, hi).
		Delete(&model.Friendship{})
	if res.Error != nil {
		return false, WrapDBError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ==================== 好友请求 ====================

func (r *FriendRepository) GetRequest(ctx context.Context, id uint) (*model.FriendRequest, error) {
	var req model.FriendRequest
	if err := r.orm.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, WrapDBError(err)
	}
	return &req, nil
}

// GetRequestByPair 查询 sender→receiver 的请求（任意状态）
func (r *FriendRepository) GetRequestByPair(ctx context.Context, senderID, receiverID uint) (*model.FriendRequest, error) {
	var req model.FriendRequest
	err := r.orm.WithContext(ctx).
		Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).
		First(&req).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return &req, nil
}

// HasPendingBetween 两人之间任一方向是否存在待处理请求
func (r *FriendRepository) HasPendingBetween(ctx context.Context, a, b uint) (bool, error) {
	var n int64
	err := r.orm.WithContext(ctx).Model(&model.FriendRequest{}).
		Where("status = ?", model.FriendRequestPending).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Count(&n).Error
	if err != nil {
		return false, WrapDBError(err)
	}
	return n > 0, nil
}

// SaveRequest 新建或更新请求
func (r *FriendRepository) SaveRequest(ctx context.Context, req *model.FriendRequest) error {
	return WrapDBError(r.orm.WithContext(ctx).Save(req).Error)
}

func (r *FriendRepository) DeleteRequest(ctx context.Context, id uint) error {
	res := r.orm.WithContext(ctx).Delete(&model.FriendRequest{}, id)
	if res.Error != nil {
		return WrapDBError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// ListPendingReceived 收到的待处理请求，新的在前
func (r *FriendRepository) ListPendingReceived(ctx context.Context, userID uint) ([]model.FriendRequest, error) {
	var list []model.FriendRequest
	err := r.orm.WithContext(ctx).
		Where("receiver_id = ? AND status = ?", userID, model.FriendRequestPending).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return list, nil
}

// ListSent 发出的全部请求，新的在前
func (r *FriendRepository) ListSent(ctx context.Context, userID uint) ([]model.FriendRequest, error) {
	var list []model.FriendRequest
	err := r.orm.WithContext(ctx).
		Where("sender_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return list, nil
}

// PendingOutgoingIDs 用户发出且待处理的请求的接收者
func (r *FriendRepository) PendingOutgoingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.orm.WithContext(ctx).Model(&model.FriendRequest{}).
		Where("sender_id = ? AND status = ?", userID, model.FriendRequestPending).
		Pluck("receiver_id", &ids).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return ids, nil
}

// PendingIncomingIDs 发给用户且待处理的请求的发送者
func (r *FriendRepository) PendingIncomingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.orm.WithContext(ctx).Model(&model.FriendRequest{}).
		Where("receiver_id = ? AND status = ?", userID, model.FriendRequestPending).
		Pluck("sender_id", &ids).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return ids, nil
}

// AcceptRequest 在同一事务内把请求标记为已接受并建立好友关系
// 好友关系已存在时沿用已有记录
func (r *FriendRepository) AcceptRequest(ctx context.Context, req *model.FriendRequest) (*model.Friendship, error) {
	f, err := model.NewFriendship(req.SenderID, req.ReceiverID)
	if err != nil {
		return nil, err
	}

	err = r.orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.FriendRequest{}).
			Where("id = ? AND status = ?", req.ID, model.FriendRequestPending).
			Update("status", model.FriendRequestAccepted)
		if res.Error != nil {
			return res.Error
		}
		// 并发处理时请求可能已被改变
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(f).Error; err != nil {
			return err
		}
		if f.ID == 0 {
			return tx.Where("user_id1 = ? AND user_id2 = ?", f.UserID1, f.UserID2).First(f).Error
		}
		return nil
	})
	if err != nil {
		return nil, WrapDBError(err)
	}
	req.Status = model.FriendRequestAccepted
	return f, nil
}

// RejectRequest 把待处理请求标记为已拒绝
func (r *FriendRepository) RejectRequest(ctx context.Context, req *model.FriendRequest) error {
	res := r.orm.WithContext(ctx).Model(&model.FriendRequest{}).
		Where("id = ? AND status = ?", req.ID, model.FriendRequestPending).
		Update("status", model.FriendRequestRejected)
	if res.Error != nil {
		return WrapDBError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	req.Status = model.FriendRequestRejected
	return nil
}
