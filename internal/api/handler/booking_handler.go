package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/jae1jeong/meeting-resv-sub000/internal/civildate"
	"github.com/jae1jeong/meeting-resv-sub000/internal/dto"
	"github.com/jae1jeong/meeting-resv-sub000/internal/service"
	"github.com/jae1jeong/meeting-resv-sub000/internal/timeslot"
	pkgerrors "github.com/jae1jeong/meeting-resv-sub000/pkg/errors"
	"github.com/jae1jeong/meeting-resv-sub000/pkg/response"
)

// BookingHandler 预订模块 HTTP 处理器
//
// 失败原因按类别返回区分的 400 错误码：
// 日期格式 / 时刻格式 / 刻度 / 时长，前端可据此给出可操作提示；
// 冲突一律 409。无权限与不存在统一按 404 返回，不泄露预订是否存在。
type BookingHandler struct {
	bookingSvc service.BookingService
}

// NewBookingHandler 创建 BookingHandler
func NewBookingHandler(bookingSvc service.BookingService) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc}
}

// CreateBooking 创建预订
// POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	callerID, role, ok := mustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.bookingSvc.Create(c.Request.Context(), &req, callerID, role)
	if err != nil {
		h.writeBookingError(c, err)
		return
	}
	response.Created(c, result)
}

// ListBookings 区间查询预订
// GET /api/v1/bookings?start=YYYY-MM-DD&end=YYYY-MM-DD[&room_id=]
func (h *BookingHandler) ListBookings(c *gin.Context) {
	callerID, role, ok := mustGetCaller(c)
	if !ok {
		return
	}

	var req dto.BookingListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.bookingSvc.ListInRange(c.Request.Context(), &req, callerID, role)
	if err != nil {
		h.writeBookingError(c, err)
		return
	}
	response.OK(c, result)
}

// ListWeek 锚点日期所在周（周日～周六）的预订
// GET /api/v1/bookings/week?date=YYYY-MM-DD[&room_id=]
func (h *BookingHandler) ListWeek(c *gin.Context) {
	callerID, role, ok := mustGetCaller(c)
	if !ok {
		return
	}

	anchor := c.Query("date")
	if anchor == "" {
		anchor = civildate.Today().String()
	}

	result, err := h.bookingSvc.ListWeek(c.Request.Context(), anchor, c.Query("room_id"), callerID, role)
	if err != nil {
		h.writeBookingError(c, err)
		return
	}
	response.OK(c, result)
}

// GetBooking 预订详情
// GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	callerID, role, ok := mustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.bookingSvc.GetByID(c.Request.Context(), c.Param("id"), callerID, role)
	if err != nil {
		h.writeBookingError(c, err)
		return
	}
	response.OK(c, result)
}

// UpdateBooking 更新预订（仅创建者）
// PUT /api/v1/bookings/:id
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	callerID, role, ok := mustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.bookingSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID, role)
	if err != nil {
		h.writeBookingError(c, err)
		return
	}
	response.OK(c, result)
}

// UpdateBookingTime 拖拽改期的写入步骤：仅移动日期与起止时刻
// PUT /api/v1/bookings/:id/time
func (h *BookingHandler) UpdateBookingTime(c *gin.Context) {
	callerID, role, ok := mustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateBookingTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.bookingSvc.UpdateTime(c.Request.Context(), c.Param("id"), &req, callerID, role)
	if err != nil {
		h.writeBookingError(c, err)
		return
	}
	response.OK(c, result)
}

// CheckAvailability 拖拽改期的预检步骤：只读冲突检查
// GET /api/v1/bookings/availability
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	callerID, role, ok := mustGetCaller(c)
	if !ok {
		return
	}

	var req dto.AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.bookingSvc.CheckAvailability(c.Request.Context(), &req, callerID, role)
	if err != nil {
		h.writeBookingError(c, err)
		return
	}
	response.OK(c, result)
}

// DeleteBooking 删除预订（仅创建者）
// DELETE /api/v1/bookings/:id
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	callerID, role, ok := mustGetCaller(c)
	if !ok {
		return
	}

	if err := h.bookingSvc.Delete(c.Request.Context(), c.Param("id"), callerID, role); err != nil {
		h.writeBookingError(c, err)
		return
	}
	response.OK(c, nil)
}

// writeBookingError 预订模块错误 → HTTP 响应的统一映射
func (h *BookingHandler) writeBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, civildate.ErrInvalidDateFormat):
		response.BadRequest(c, 15001, err.Error())
	case errors.Is(err, timeslot.ErrBadTimeFormat):
		response.BadRequest(c, 15002, err.Error())
	case errors.Is(err, timeslot.ErrOffGrid):
		response.BadRequest(c, 15003, err.Error())
	case errors.Is(err, timeslot.ErrNonPositiveDuration):
		response.BadRequest(c, 15004, err.Error())
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 15005, err.Error())
	case errors.Is(err, service.ErrBookingConflict):
		response.Conflict(c, 15006, err.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		// 同一预订上的并发修改：可恢复，刷新后重试
		response.Conflict(c, 15008, err.Error())
	case errors.Is(err, service.ErrBookingNotFound):
		response.NotFound(c, 15007, err.Error())
	case errors.Is(err, service.ErrBookingForbidden):
		// 不泄露存在性：无权限与不存在统一按 404 返回
		response.NotFound(c, 15007, service.ErrBookingNotFound.Error())
	case errors.Is(err, service.ErrRoomNotFound):
		response.NotFound(c, 14001, err.Error())
	case errors.Is(err, service.ErrRoomInactive):
		response.Conflict(c, 14003, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, err.Error())
	default:
		response.InternalError(c)
	}
}
