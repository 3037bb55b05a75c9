package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/jae1jeong/meeting-resv-sub000/internal/dto"
	"github.com/jae1jeong/meeting-resv-sub000/internal/service"
	"github.com/jae1jeong/meeting-resv-sub000/pkg/response"
)

// GroupHandler 群组模块 HTTP 处理器
type GroupHandler struct {
	groupSvc service.GroupService
}

// NewGroupHandler 创建 GroupHandler
func NewGroupHandler(groupSvc service.GroupService) *GroupHandler {
	return &GroupHandler{groupSvc: groupSvc}
}

// CreateGroup 创建群组
// POST /api/v1/groups
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.groupSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		if errors.Is(err, service.ErrGroupNameExists) {
			response.Conflict(c, 13002, err.Error())
			return
		}
		response.InternalError(c)
		return
	}
	response.Created(c, result)
}

// ListGroups 群组列表
// GET /api/v1/groups
func (h *GroupHandler) ListGroups(c *gin.Context) {
	var req dto.GroupListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.groupSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// GetGroup 群组详情
// GET /api/v1/groups/:id
func (h *GroupHandler) GetGroup(c *gin.Context) {
	result, err := h.groupSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			response.NotFound(c, 13001, err.Error())
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// UpdateGroup 更新群组
// PUT /api/v1/groups/:id
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.groupSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGroupNotFound):
			response.NotFound(c, 13001, err.Error())
		case errors.Is(err, service.ErrGroupNameExists):
			response.Conflict(c, 13002, err.Error())
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, result)
}

// DeleteGroup 删除群组
// DELETE /api/v1/groups/:id
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.groupSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		switch {
		case errors.Is(err, service.ErrGroupNotFound):
			response.NotFound(c, 13001, err.Error())
		case errors.Is(err, service.ErrGroupHasRooms):
			response.Conflict(c, 13003, err.Error())
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, nil)
}

// AddMember 添加群组成员
// POST /api/v1/groups/:id/members
func (h *GroupHandler) AddMember(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.AddGroupMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.groupSvc.AddMember(c.Request.Context(), c.Param("id"), &req, callerID); err != nil {
		switch {
		case errors.Is(err, service.ErrGroupNotFound):
			response.NotFound(c, 13001, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, 12001, err.Error())
		case errors.Is(err, service.ErrAlreadyMember):
			response.Conflict(c, 13004, err.Error())
		default:
			response.InternalError(c)
		}
		return
	}
	response.Created(c, nil)
}

// RemoveMember 移除群组成员
// DELETE /api/v1/groups/:id/members/:user_id
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	if err := h.groupSvc.RemoveMember(c.Request.Context(), c.Param("id"), c.Param("user_id")); err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			response.NotFound(c, 13005, err.Error())
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// ListMembers 群组成员列表
// GET /api/v1/groups/:id/members
func (h *GroupHandler) ListMembers(c *gin.Context) {
	result, err := h.groupSvc.ListMembers(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			response.NotFound(c, 13001, err.Error())
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}
