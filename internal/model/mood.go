package model

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// 心情分数取值范围
const (
	MinMoodScore = 0
	MaxMoodScore = 100
)

// 心情分类（按分数区间划分）
const (
	MoodStressed  = "Stressed/Anxious"
	MoodTired     = "Tired/Low Energy"
	MoodHappy     = "Happy/Neutral"
	MoodEnergetic = "Energetic/Excited"
	MoodUnknown   = "Unknown"
)

type moodBand struct {
	name     string
	min, max int
}

var moodBands = []moodBand{
	{MoodStressed, 0, 40},
	{MoodTired, 41, 60},
	{MoodHappy, 61, 80},
	{MoodEnergetic, 81, 100},
}

// ValidMoodTags 允许用户选择的心情标签
var ValidMoodTags = []string{
	"happy", "sad", "anxious", "calm", "energetic",
	"tired", "stressed", "relaxed", "focused", "creative",
	"social", "lonely", "grateful", "frustrated", "hopeful",
}

// MoodCategoryForScore 根据分数计算心情分类，区间外返回 Unknown
func MoodCategoryForScore(score int) string {
	for _, b := range moodBands {
		if score >= b.min && score <= b.max {
			return b.name
		}
	}
	return MoodUnknown
}

// ValidMoodScore 分数是否在 [0,100] 内
func ValidMoodScore(score int) bool {
	return score >= MinMoodScore && score <= MaxMoodScore
}

// FilterMoodTags 过滤非法标签：统一小写、去空白、去重
func FilterMoodTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		if _, dup := seen[t]; dup || !isValidMoodTag(t) {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func isValidMoodTag(tag string) bool {
	for _, v := range ValidMoodTags {
		if v == tag {
			return true
		}
	}
	return false
}

// MoodEntry 心情记录
// MoodCategory 默认由分数推导，显式指定时以指定值为准

type MoodEntry struct {
	ID           uint                        `gorm:"primaryKey"`
	UserID       uint                        `gorm:"not null;index:idx_mood_user_time,priority:1;comment:用户ID"`
	MoodScore    int                         `gorm:"not null;comment:心情分数(0-100)"`
	MoodTags     datatypes.JSONSlice[string] `gorm:"comment:心情标签"`
	MoodCategory string                      `gorm:"type:varchar(50);comment:心情分类"`
	Timestamp    time.Time                   `gorm:"not null;index:idx_mood_user_time,priority:2;comment:记录时间"`
	CreatedAt    time.Time                   `gorm:"comment:创建时间"`
	UpdatedAt    time.Time                   `gorm:"comment:更新时间"`
}

func (MoodEntry) TableName() string { return "mood_entry" }

// NewMoodEntry 创建心情记录，category 为空时按分数推导，timestamp 为零值时取当前时间
func NewMoodEntry(userID uint, score int, tags []string, category string, timestamp time.Time) *MoodEntry {
	if category == "" {
		category = MoodCategoryForScore(score)
	}
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	return &MoodEntry{
		UserID:       userID,
		MoodScore:    score,
		MoodTags:     datatypes.JSONSlice[string](FilterMoodTags(tags)),
		MoodCategory: category,
		Timestamp:    timestamp,
	}
}

// SetScore 修改分数并同步分类
func (m *MoodEntry) SetScore(score int) {
	m.MoodScore = score
	m.MoodCategory = MoodCategoryForScore(score)
}
