package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/jae1jeong/meeting-resv-sub000/internal/dto"
	"github.com/jae1jeong/meeting-resv-sub000/internal/service"
	"github.com/jae1jeong/meeting-resv-sub000/pkg/response"
)

// RoomHandler 会议室模块 HTTP 处理器
type RoomHandler struct {
	roomSvc service.RoomService
}

// NewRoomHandler 创建 RoomHandler
func NewRoomHandler(roomSvc service.RoomService) *RoomHandler {
	return &RoomHandler{roomSvc: roomSvc}
}

// CreateRoom 创建会议室
// POST /api/v1/rooms
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	callerID, role, ok := mustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.roomSvc.Create(c.Request.Context(), &req, callerID, role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGroupNotFound):
			response.NotFound(c, 13001, err.Error())
		case errors.Is(err, service.ErrMemberNotFound):
			response.Forbidden(c, 10003, "仅群组成员可创建会议室")
		default:
			response.InternalError(c)
		}
		return
	}
	response.Created(c, result)
}

// ListRooms 会议室列表（可见范围内）
// GET /api/v1/rooms
func (h *RoomHandler) ListRooms(c *gin.Context) {
	callerID, role, ok := mustGetCaller(c)
	if !ok {
		return
	}

	var req dto.RoomListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.roomSvc.List(c.Request.Context(), &req, callerID, role)
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

// GetRoom 会议室详情
// GET /api/v1/rooms/:id
func (h *RoomHandler) GetRoom(c *gin.Context) {
	callerID, role, ok := mustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.roomSvc.GetByID(c.Request.Context(), c.Param("id"), callerID, role)
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			response.NotFound(c, 14001, err.Error())
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// UpdateRoom 更新会议室
// PUT /api/v1/rooms/:id
func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	callerID, role, ok := mustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.roomSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID, role)
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			response.NotFound(c, 14001, err.Error())
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// DeleteRoom 删除会议室
// DELETE /api/v1/rooms/:id
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	callerID, role, ok := mustGetCaller(c)
	if !ok {
		return
	}

	if err := h.roomSvc.Delete(c.Request.Context(), c.Param("id"), callerID, role); err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			response.NotFound(c, 14001, err.Error())
		case errors.Is(err, service.ErrRoomHasBookings):
			response.Conflict(c, 14002, err.Error())
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, nil)
}
