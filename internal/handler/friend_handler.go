package handler

import (
	"moodmeal/internal/service"
	"moodmeal/pkg/response"

	"github.com/gin-gonic/gin"
)

// 处理好友请求的动作
const (
	actionAccept = "accept"
	actionReject = "reject"
)

type FriendHandler struct {
	service *service.FriendService
}

func NewFriendHandler(s *service.FriendService) *FriendHandler {
	return &FriendHandler{service: s}
}

// SendRequest 发送好友请求
func (h *FriendHandler) SendRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var r struct {
		ReceiverID uint `json:"receiver_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	req, err := h.service.SendRequest(c.Request.Context(), userID, r.ReceiverID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "好友请求已发送", response.FilterFriendRequest(req, nil, nil))
}

// ListRequests 收到的待处理请求与发出的请求
func (h *FriendHandler) ListRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	list, err := h.service.ListRequests(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	out := &response.FriendRequestList{
		Received: make([]*response.FriendRequestInfo, 0, len(list.Received)),
		Sent:     make([]*response.FriendRequestInfo, 0, len(list.Sent)),
	}
	for i := range list.Received {
		r := &list.Received[i]
		out.Received = append(out.Received, response.FilterFriendRequest(r, list.Users[r.SenderID], list.Users[r.ReceiverID]))
	}
	for i := range list.Sent {
		r := &list.Sent[i]
		out.Sent = append(out.Sent, response.FilterFriendRequest(r, list.Users[r.SenderID], list.Users[r.ReceiverID]))
	}
	response.Success(c, out)
}

// RespondRequest 接受或拒绝好友请求
func (h *FriendHandler) RespondRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "request_id")
	if !ok {
		return
	}
	var r struct {
		Action string `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if r.Action != actionAccept && r.Action != actionReject {
		response.BadRequest(c, "action must be accept or reject")
		return
	}

	req, err := h.service.RespondRequest(c.Request.Context(), userID, requestID, r.Action == actionAccept)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, response.FilterFriendRequest(req, nil, nil))
}

// CancelRequest 撤回自己发出的请求
func (h *FriendHandler) CancelRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "request_id")
	if !ok {
		return
	}
	if err := h.service.CancelRequest(c.Request.Context(), userID, requestID); err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "好友请求已撤回", nil)
}

// ListFriends 好友列表
func (h *FriendHandler) ListFriends(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	friends, err := h.service.ListFriends(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]*response.FriendInfo, 0, len(friends))
	for _, f := range friends {
		out = append(out, &response.FriendInfo{
			UserBrief:    *response.FilterUserBrief(f.User),
			Online:       f.Online,
			FriendsSince: f.Since.Format("2006-01-02 15:04:05"),
		})
	}
	response.Success(c, gin.H{"friends": out, "count": len(out)})
}

// Unfriend 解除好友关系
func (h *FriendHandler) Unfriend(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	friendID, ok := pathID(c, "friend_id")
	if !ok {
		return
	}
	if err := h.service.Unfriend(c.Request.Context(), userID, friendID); err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "已解除好友关系", nil)
}

// SearchUsers 搜索用户
func (h *FriendHandler) SearchUsers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	hits, err := h.service.SearchUsers(c.Request.Context(), userID, c.Query("q"))
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]*response.SearchResult, 0, len(hits))
	for i := range hits {
		out = append(out, &response.SearchResult{
			UserBrief:         *response.FilterUserBrief(&hits[i].User),
			IsFriend:          hits[i].IsFriend,
			HasPendingRequest: hits[i].HasPendingRequest,
		})
	}
	response.Success(c, gin.H{"users": out, "count": len(out)})
}
