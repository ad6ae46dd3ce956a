package service

import (
	"context"
	"errors"

	"moodmeal/internal/model"
	"moodmeal/internal/repository"
)

// PreferencesInput 保存偏好参数，nil 字段保持原值
type PreferencesInput struct {
	Dietary    *[]string
	Allergies  *[]string
	Cuisines   *[]string
	Music      *[]string
	Activities *[]string
}

type PreferenceService struct {
	prefs repository.IPreferencesRepository
}

func NewPreferenceService(prefs repository.IPreferencesRepository) *PreferenceService {
	return &PreferenceService{prefs: prefs}
}

// Get 查询偏好，未设置时返回全空的默认值
func (s *PreferenceService) Get(ctx context.Context, userID uint) (*model.Preferences, error) {
	p, err := s.prefs.Get(ctx, userID)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return model.EmptyPreferences(userID), nil
	}
	return p, err
}

// Save 合并并保存偏好，只覆盖传入的列表
func (s *PreferenceService) Save(ctx context.Context, userID uint, in PreferencesInput) (*model.Preferences, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Dietary != nil {
		p.Dietary = model.CleanList(*in.Dietary)
	}
	if in.Allergies != nil {
		p.Allergies = model.CleanList(*in.Allergies)
	}
	if in.Cuisines != nil {
		p.Cuisines = model.CleanList(*in.Cuisines)
	}
	if in.Music != nil {
		p.Music = model.CleanList(*in.Music)
	}
	if in.Activities != nil {
		p.Activities = model.CleanList(*in.Activities)
	}

	if err := s.prefs.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete 删除偏好
func (s *PreferenceService) Delete(ctx context.Context, userID uint) error {
	ok, err := s.prefs.Delete(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPreferencesNotFound
	}
	return nil
}
