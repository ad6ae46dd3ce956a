package handler

import (
	"moodmeal/internal/service"
	"moodmeal/pkg/response"

	"github.com/gin-gonic/gin"
)

type PreferenceHandler struct {
	service *service.PreferenceService
}

func NewPreferenceHandler(s *service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{service: s}
}

// Get 查询偏好
func (h *PreferenceHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	p, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, response.FilterPreferences(p))
}

// Save 保存偏好，只覆盖请求中出现的字段
func (h *PreferenceHandler) Save(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var r struct {
		Dietary    *[]string `json:"dietary"`
		Allergies  *[]string `json:"allergies"`
		Cuisines   *[]string `json:"cuisines"`
		Music      *[]string `json:"music"`
		Activities *[]string `json:"activities"`
	}
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	p, err := h.service.Save(c.Request.Context(), userID, service.PreferencesInput{
		Dietary:    r.Dietary,
		Allergies:  r.Allergies,
		Cuisines:   r.Cuisines,
		Music:      r.Music,
		Activities: r.Activities,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "偏好已保存", response.FilterPreferences(p))
}

// Delete 删除偏好
func (h *PreferenceHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID); err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "偏好已删除", nil)
}
