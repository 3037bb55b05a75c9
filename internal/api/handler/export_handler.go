package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/jae1jeong/meeting-resv-sub000/internal/civildate"
	"github.com/jae1jeong/meeting-resv-sub000/internal/dto"
	"github.com/jae1jeong/meeting-resv-sub000/internal/service"
	"github.com/jae1jeong/meeting-resv-sub000/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportWeekExcel 导出锚点日期所在周的预订为 Excel
// GET /api/v1/export/week?date=YYYY-MM-DD
func (h *ExportHandler) ExportWeekExcel(c *gin.Context) {
	callerID, role, ok := mustGetCaller(c)
	if !ok {
		return
	}

	anchor := c.Query("date")
	if anchor == "" {
		anchor = civildate.Today().String()
	}

	buf, filename, err := h.exportSvc.ExportWeekExcel(c.Request.Context(), anchor, callerID, role)
	if err != nil {
		h.writeExportError(c, err)
		return
	}

	c.Header("Content-Disposition", contentDisposition(filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ExportICS 导出日期区间内的预订为 iCalendar
// GET /api/v1/export/ics?start=YYYY-MM-DD&end=YYYY-MM-DD[&room_id=]
func (h *ExportHandler) ExportICS(c *gin.Context) {
	callerID, role, ok := mustGetCaller(c)
	if !ok {
		return
	}

	var req dto.BookingListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportICS(c.Request.Context(), &req, callerID, role)
	if err != nil {
		h.writeExportError(c, err)
		return
	}

	c.Header("Content-Disposition", contentDisposition(filename))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

// writeExportError 导出模块错误 → HTTP 响应
func (h *ExportHandler) writeExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, civildate.ErrInvalidDateFormat):
		response.BadRequest(c, 15001, err.Error())
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 15005, err.Error())
	case errors.Is(err, service.ErrExportNoBookings):
		response.NotFound(c, 16001, err.Error())
	case errors.Is(err, service.ErrRoomNotFound):
		response.NotFound(c, 14001, err.Error())
	default:
		response.InternalError(c)
	}
}

// contentDisposition 附件下载头（文件名含中文时按 RFC 5987 编码）
func contentDisposition(filename string) string {
	return fmt.Sprintf(`attachment; filename*=UTF-8''%s`, url.PathEscape(filename))
}
