package response

import (
	"math"
	"time"

	"moodmeal/internal/model"
	"moodmeal/internal/recommend"
)

const timeLayout = "2006-01-02 15:04:05"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

// UserInfo 用户信息（隐藏敏感字段）
type UserInfo struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Nickname  string `json:"nickname"`
	School    string `json:"school"`
	Avatar    string `json:"avatar"`
	Status    string `json:"status"`
	LastSeen  string `json:"last_seen"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// FilterUserInfo 过滤用户信息，隐藏敏感字段
func FilterUserInfo(user *model.User) *UserInfo {
	if user == nil {
		return nil
	}

	return &UserInfo{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Nickname:  user.Nickname,
		School:    user.School,
		Avatar:    user.Avatar,
		Status:    user.Status,
		LastSeen:  formatTime(user.LastSeen),
		CreatedAt: formatTime(user.CreatedAt),
		UpdatedAt: formatTime(user.UpdatedAt),
	}
}

// UserBrief 对其他用户可见的公开信息
type UserBrief struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	School   string `json:"school"`
	Avatar   string `json:"avatar"`
}

// FilterUserBrief 提取公开信息
func FilterUserBrief(user *model.User) *UserBrief {
	if user == nil {
		return nil
	}
	return &UserBrief{
		ID:       user.ID,
		Username: user.Username,
		Nickname: user.Nickname,
		School:   user.School,
		Avatar:   user.Avatar,
	}
}

// LoginResponse 登录响应
type LoginResponse struct {
	User        *UserInfo `json:"user"`
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
}

// RegisterResponse 注册响应
type RegisterResponse struct {
	User        *UserInfo `json:"user"`
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
}

// FriendInfo 好友列表项
type FriendInfo struct {
	UserBrief
	Online       bool   `json:"online"`
	FriendsSince string `json:"friends_since"`
}

// FriendRequestInfo 好友请求
type FriendRequestInfo struct {
	ID        uint       `json:"id"`
	Sender    *UserBrief `json:"sender"`
	Receiver  *UserBrief `json:"receiver"`
	Status    string     `json:"status"`
	CreatedAt string     `json:"created_at"`
	UpdatedAt string     `json:"updated_at"`
}

// FilterFriendRequest 组装好友请求，sender/receiver 为 nil 时只返回ID
func FilterFriendRequest(req *model.FriendRequest, sender, receiver *model.User) *FriendRequestInfo {
	if req == nil {
		return nil
	}
	info := &FriendRequestInfo{
		ID:        req.ID,
		Sender:    FilterUserBrief(sender),
		Receiver:  FilterUserBrief(receiver),
		Status:    string(req.Status),
		CreatedAt: formatTime(req.CreatedAt),
		UpdatedAt: formatTime(req.UpdatedAt),
	}
	if info.Sender == nil {
		info.Sender = &UserBrief{ID: req.SenderID}
	}
	if info.Receiver == nil {
		info.Receiver = &UserBrief{ID: req.ReceiverID}
	}
	return info
}

// FriendRequestList 收到的待处理请求与发出的请求
type FriendRequestList struct {
	Received []*FriendRequestInfo `json:"received"`
	Sent     []*FriendRequestInfo `json:"sent"`
}

// SearchResult 用户搜索结果
type SearchResult struct {
	UserBrief
	IsFriend          bool `json:"is_friend"`
	HasPendingRequest bool `json:"has_pending_request"`
}

// MoodInfo 心情记录
type MoodInfo struct {
	ID           uint     `json:"id"`
	MoodScore    int      `json:"mood_score"`
	MoodTags     []string `json:"mood_tags"`
	MoodCategory string   `json:"mood_category"`
	Timestamp    string   `json:"timestamp"`
	CreatedAt    string   `json:"created_at"`
}

// FilterMoodInfo 转换心情记录
func FilterMoodInfo(m *model.MoodEntry) *MoodInfo {
	if m == nil {
		return nil
	}
	tags := []string(m.MoodTags)
	if tags == nil {
		tags = []string{}
	}
	return &MoodInfo{
		ID:           m.ID,
		MoodScore:    m.MoodScore,
		MoodTags:     tags,
		MoodCategory: m.MoodCategory,
		Timestamp:    m.Timestamp.Format(time.RFC3339),
		CreatedAt:    formatTime(m.CreatedAt),
	}
}

// FilterMoodList 批量转换心情记录
func FilterMoodList(list []model.MoodEntry) []*MoodInfo {
	out := make([]*MoodInfo, 0, len(list))
	for i := range list {
		out = append(out, FilterMoodInfo(&list[i]))
	}
	return out
}

// PreferencesInfo 用户偏好
type PreferencesInfo struct {
	Dietary    []string `json:"dietary"`
	Allergies  []string `json:"allergies"`
	Cuisines   []string `json:"cuisines"`
	Music      []string `json:"music"`
	Activities []string `json:"activities"`
	UpdatedAt  string   `json:"updated_at,omitempty"`
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

// FilterPreferences 转换偏好，列表为空时输出 []
func FilterPreferences(p *model.Preferences) *PreferencesInfo {
	if p == nil {
		p = model.EmptyPreferences(0)
	}
	return &PreferencesInfo{
		Dietary:    nonNil(p.Dietary),
		Allergies:  nonNil(p.Allergies),
		Cuisines:   nonNil(p.Cuisines),
		Music:      nonNil(p.Music),
		Activities: nonNil(p.Activities),
		UpdatedAt:  formatTime(p.UpdatedAt),
	}
}

// RecommendationInfo 推荐列表项
type RecommendationInfo struct {
	UserBrief
	SimilarityScore      float64                  `json:"similarity_score"` // 百分制，保留一位小数
	ScoreBreakdown       recommend.ScoreBreakdown `json:"score_breakdown"`
	SharedMoodCategories []string                 `json:"shared_mood_categories"`
	AvgMoodScore         *float64                 `json:"avg_mood_score"`
	SharedMusic          []string                 `json:"shared_music"`
	SharedActivities     []string                 `json:"shared_activities"`
	SharedCuisines       []string                 `json:"shared_cuisines"`
}

// RecommendationList 推荐结果
type RecommendationList struct {
	Recommendations []*RecommendationInfo `json:"recommendations"`
	Count           int                   `json:"count"`
	ColdStart       bool                  `json:"cold_start"`
}

// SimilarityPercent 把 [0,1] 的得分转换为百分制并保留一位小数
func SimilarityPercent(score float64) float64 {
	return math.Round(score*1000) / 10
}

// FilterRecommendation 组装推荐项，user 为 nil 时只保留用户ID
func FilterRecommendation(c recommend.Candidate, user *model.User) *RecommendationInfo {
	brief := FilterUserBrief(user)
	if brief == nil {
		brief = &UserBrief{ID: c.UserID}
	}
	return &RecommendationInfo{
		UserBrief:            *brief,
		SimilarityScore:      SimilarityPercent(c.Score),
		ScoreBreakdown:       c.Breakdown,
		SharedMoodCategories: nonNil(c.SharedMoodCategories),
		AvgMoodScore:         c.AvgMoodScore,
		SharedMusic:          nonNil(c.SharedMusic),
		SharedActivities:     nonNil(c.SharedActivities),
		SharedCuisines:       nonNil(c.SharedCuisines),
	}
}
