package recommend

import (
	"moodmeal/internal/model"
)

// profile 单个用户参与比较的数据快照
type profile struct {
	moods      []model.MoodEntry
	prefs      *model.Preferences
	avgScore   float64
	categories map[string]struct{}
	music      map[string]struct{}
	activities map[string]struct{}
	cuisines   map[string]struct{}
}

func newProfile(moods []model.MoodEntry, prefs *model.Preferences) *profile {
	p := &profile{moods: moods, prefs: prefs}

	if len(moods) > 0 {
		sum := 0
		cats := make([]string, 0, len(moods))
		for _, m := range moods {
			sum += m.MoodScore
			cats = append(cats, m.MoodCategory)
		}
		p.avgScore = float64(sum) / float64(len(moods))
		p.categories = toSet(cats)
	}

	if prefs != nil {
		p.music = toSet(prefs.Music)
		p.activities = toSet(prefs.Activities)
		p.cuisines = toSet(prefs.Cuisines)
	}
	return p
}

func (p *profile) hasMoods() bool { return len(p.moods) > 0 }

// hasData 没有心情记录且偏好全部为空时视为无数据
func (p *profile) hasData() bool {
	return p.hasMoods() || !p.prefs.IsEmpty()
}

// categoryOrder 按记录顺序（新到旧）返回心情分类，重复项由 sharedItems 去除
func (p *profile) categoryOrder() []string {
	out := make([]string, 0, len(p.moods))
	for _, m := range p.moods {
		out = append(out, m.MoodCategory)
	}
	return out
}

func (p *profile) musicList() []string {
	if p.prefs == nil {
		return nil
	}
	return p.prefs.Music
}

func (p *profile) activitiesList() []string {
	if p.prefs == nil {
		return nil
	}
	return p.prefs.Activities
}

func (p *profile) cuisinesList() []string {
	if p.prefs == nil {
		return nil
	}
	return p.prefs.Cuisines
}
