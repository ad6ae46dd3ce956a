package repository

import (
	"context"
	"strings"
	"time"

	"moodmeal/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	orm *gorm.DB
}

func NewUserRepository(orm *gorm.DB) *UserRepository {
	return &UserRepository{orm: orm}
}

var _ IUserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return WrapDBError(r.orm.WithContext(ctx).Create(user).Error)
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := r.orm.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, WrapDBError(err)
	}
	return &u, nil
}

func (r *UserRepository) GetByUsernameOrEmail(ctx context.Context, identifier string) (*model.User, error) {
	var u model.User
	err := r.orm.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, identifier).
		First(&u).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return &u, nil
}

// ExistsByUsernameOrEmail 用户名或邮箱是否已被占用，email 为空时只检查用户名
func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	q := r.orm.WithContext(ctx).Model(&model.User{})
	if email != "" {
		q = q.Where("username = ? OR email = ?", username, email)
	} else {
		q = q.Where("username = ?", username)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, WrapDBError(err)
	}
	return n > 0, nil
}

// BatchGetByIDs 批量查询用户，不存在的ID不会出现在结果中
func (r *UserRepository) BatchGetByIDs(ctx context.Context, ids []uint) (map[uint]*model.User, error) {
	out := make(map[uint]*model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []model.User
	if err := r.orm.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, WrapDBError(err)
	}
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

// Search 按用户名、昵称、学校模糊搜索（不区分大小写），按ID升序
func (r *UserRepository) Search(ctx context.Context, keyword string, excludeID uint, limit int) ([]model.User, error) {
	pattern := "%" + strings.ToLower(keyword) + "%"
	var users []model.User
	err := r.orm.WithContext(ctx).
		Where("id <> ?", excludeID).
		Where("LOWER(username) LIKE ? OR LOWER(nickname) LIKE ? OR LOWER(school) LIKE ?", pattern, pattern, pattern).
		Order("id ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return users, nil
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	err := r.orm.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("status", status).Error
	return WrapDBError(err)
}

func (r *UserRepository) TouchLastSeen(ctx context.Context, id uint) error {
	err := r.orm.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"last_seen": time.Now(), "status": model.UserStatusOnline}).Error
	return WrapDBError(err)
}
