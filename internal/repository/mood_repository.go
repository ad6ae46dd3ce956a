package repository

import (
	"context"

	"moodmeal/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MoodRepository 心情记录
type MoodRepository struct {
	orm *gorm.DB
}

func NewMoodRepository(orm *gorm.DB) *MoodRepository {
	return &MoodRepository{orm: orm}
}

var _ IMoodRepository = (*MoodRepository)(nil)

func (r *MoodRepository) Create(ctx context.Context, entry *model.MoodEntry) error {
	return WrapDBError(r.orm.WithContext(ctx).Create(entry).Error)
}

// GetByID 查询用户自己的心情记录
func (r *MoodRepository) GetByID(ctx context.Context, userID, id uint) (*model.MoodEntry, error) {
	var m model.MoodEntry
	err := r.orm.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&m).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return &m, nil
}

func (r *MoodRepository) Update(ctx context.Context, entry *model.MoodEntry) error {
	return WrapDBError(r.orm.WithContext(ctx).Save(entry).Error)
}

// Delete 删除用户自己的心情记录，返回是否存在
func (r *MoodRepository) Delete(ctx context.Context, userID, id uint) (bool, error) {
	res := r.orm.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.MoodEntry{})
	if res.Error != nil {
		return false, WrapDBError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListByUser 按时间倒序列出心情记录，limit<=0 表示不限制
func (r *MoodRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]model.MoodEntry, error) {
	q := r.orm.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var list []model.MoodEntry
	if err := q.Find(&list).Error; err != nil {
		return nil, WrapDBError(err)
	}
	return list, nil
}

// UserIDs 至少有一条心情记录的用户
func (r *MoodRepository) UserIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.orm.WithContext(ctx).Model(&model.MoodEntry{}).
		Distinct("user_id").
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return ids, nil
}
