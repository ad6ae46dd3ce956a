package repository

import (
	"context"
	"errors"

	"moodmeal/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PreferencesRepository 用户偏好
type PreferencesRepository struct {
	orm *gorm.DB
}

func NewPreferencesRepository(orm *gorm.DB) *PreferencesRepository {
	return &PreferencesRepository{orm: orm}
}

var _ IPreferencesRepository = (*PreferencesRepository)(nil)

// Get 查询用户偏好，未设置时返回 ErrRecordNotFound
func (r *PreferencesRepository) Get(ctx context.Context, userID uint) (*model.Preferences, error) {
	var p model.Preferences
	if err := r.orm.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, WrapDBError(err)
	}
	return &p, nil
}

// Upsert 按 user_id 插入或整体覆盖五类偏好
func (r *PreferencesRepository) Upsert(ctx context.Context, prefs *model.Preferences) error {
	err := r.orm.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"dietary", "allergies", "cuisines", "music", "activities", "updated_at"}),
	}).Create(prefs).Error
	if err != nil {
		return WrapDBError(err)
	}
	// 冲突更新时部分驱动不会回填主键
	if prefs.ID == 0 {
		stored, err := r.Get(ctx, prefs.UserID)
		if err != nil && !errors.Is(err, ErrRecordNotFound) {
			return err
		}
		if stored != nil {
			prefs.ID = stored.ID
			prefs.CreatedAt = stored.CreatedAt
		}
	}
	return nil
}

// Delete 删除用户偏好，返回是否存在
func (r *PreferencesRepository) Delete(ctx context.Context, userID uint) (bool, error) {
	res := r.orm.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Preferences{})
	if res.Error != nil {
		return false, WrapDBError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// UserIDs 存有偏好记录的用户
func (r *PreferencesRepository) UserIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.orm.WithContext(ctx).Model(&model.Preferences{}).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return ids, nil
}
