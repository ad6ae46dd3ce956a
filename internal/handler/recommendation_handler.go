package handler

import (
	"moodmeal/internal/service"
	"moodmeal/pkg/response"

	"github.com/gin-gonic/gin"
)

type RecommendationHandler struct {
	service *service.RecommendationService
}

func NewRecommendationHandler(s *service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{service: s}
}

// Recommend 好友推荐，limit 缺失或非法时使用默认值
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	res, err := h.service.Recommend(c.Request.Context(), userID, queryInt(c, "limit", 0))
	if err != nil {
		writeError(c, err)
		return
	}

	out := &response.RecommendationList{
		Recommendations: make([]*response.RecommendationInfo, 0, len(res.Candidates)),
		ColdStart:       res.ColdStart,
	}
	for _, cand := range res.Candidates {
		out.Recommendations = append(out.Recommendations, response.FilterRecommendation(cand, res.Users[cand.UserID]))
	}
	out.Count = len(out.Recommendations)
	response.Success(c, out)
}
