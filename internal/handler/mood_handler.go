package handler

import (
	"time"

	"moodmeal/internal/service"
	"moodmeal/pkg/response"

	"github.com/gin-gonic/gin"
)

type MoodHandler struct {
	service *service.MoodService
}

func NewMoodHandler(s *service.MoodService) *MoodHandler {
	return &MoodHandler{service: s}
}

// LogMood 记录心情
func (h *MoodHandler) LogMood(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var r struct {
		MoodScore    *int       `json:"mood_score" binding:"required"`
		MoodTags     []string   `json:"mood_tags"`
		MoodCategory string     `json:"mood_category"`
		Timestamp    *time.Time `json:"timestamp"`
	}
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	entry, err := h.service.LogMood(c.Request.Context(), userID, service.MoodInput{
		Score:     *r.MoodScore,
		Tags:      r.MoodTags,
		Category:  r.MoodCategory,
		Timestamp: r.Timestamp,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "心情已记录", response.FilterMoodInfo(entry))
}

// ListMoods 心情记录列表，新的在前
func (h *MoodHandler) ListMoods(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	list, err := h.service.ListMoods(c.Request.Context(), userID, queryInt(c, "limit", 0))
	if err != nil {
		writeError(c, err)
		return
	}
	moods := response.FilterMoodList(list)
	response.Success(c, gin.H{"moods": moods, "count": len(moods)})
}

// GetMood 单条心情记录
func (h *MoodHandler) GetMood(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "mood_id")
	if !ok {
		return
	}
	entry, err := h.service.GetMood(c.Request.Context(), userID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, response.FilterMoodInfo(entry))
}

// UpdateMood 修改心情记录
func (h *MoodHandler) UpdateMood(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "mood_id")
	if !ok {
		return
	}
	var r struct {
		MoodScore    *int       `json:"mood_score"`
		MoodTags     *[]string  `json:"mood_tags"`
		MoodCategory *string    `json:"mood_category"`
		Timestamp    *time.Time `json:"timestamp"`
	}
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	entry, err := h.service.UpdateMood(c.Request.Context(), userID, id, service.MoodUpdate{
		Score:     r.MoodScore,
		Tags:      r.MoodTags,
		Category:  r.MoodCategory,
		Timestamp: r.Timestamp,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, response.FilterMoodInfo(entry))
}

// DeleteMood 删除心情记录
func (h *MoodHandler) DeleteMood(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "mood_id")
	if !ok {
		return
	}
	if err := h.service.DeleteMood(c.Request.Context(), userID, id); err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "心情记录已删除", nil)
}

// Stats 心情统计
func (h *MoodHandler) Stats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	stats, err := h.service.Stats(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, stats)
}
