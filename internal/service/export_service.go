package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/jae1jeong/meeting-resv-sub000/internal/civildate"
	"github.com/jae1jeong/meeting-resv-sub000/internal/dto"
	"github.com/jae1jeong/meeting-resv-sub000/internal/model"
	"github.com/jae1jeong/meeting-resv-sub000/internal/repository"
	"github.com/jae1jeong/meeting-resv-sub000/internal/timeslot"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoBookings   = errors.New("该区间内无预订")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// Excel 周视图的展示窗口（行 = 30 分钟槽）
const (
	excelDayStartMin = 8 * 60  // 08:00
	excelDayEndMin   = 22 * 60 // 22:00
)

// ExportService 导出业务接口
//
// 设计说明：
//   - Excel 按周导出：每个可见会议室一个 Sheet，列为周日～周六，
//     行为 08:00–22:00 的 30 分钟槽，单元格为「标题 (创建人)」
//   - ICS 按日期区间导出：事件时刻固定以 KST 展开为 instant
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置响应头后写入
type ExportService interface {
	// ExportWeekExcel 导出锚点日期所在周的预订为 Excel
	ExportWeekExcel(ctx context.Context, anchor, callerID, callerRole string) (*bytes.Buffer, string, error)
	// ExportICS 导出日期区间内的预订为 iCalendar
	ExportICS(ctx context.Context, req *dto.BookingListRequest, callerID, callerRole string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportWeekExcel — 导出周视图为 Excel
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportWeekExcel(ctx context.Context, anchor, callerID, callerRole string) (*bytes.Buffer, string, error) {
	d, err := civildate.Parse(anchor)
	if err != nil {
		return nil, "", err
	}
	week := civildate.WeekDates(d)
	start, end := civildate.WeekRange(d)

	// 1. 可见会议室与区间内预订
	rooms, bookings, err := s.visibleBookings(ctx, start, end, callerID, callerRole)
	if err != nil {
		return nil, "", err
	}
	if len(bookings) == 0 {
		return nil, "", ErrExportNoBookings
	}

	// 2. 索引: roomID → "date:slotMin" → cellText
	cellIndex := make(map[string]map[string]string)
	for _, b := range bookings {
		bStart, err := timeslot.ParseMinutes(b.StartTime)
		if err != nil {
			continue
		}
		bEnd, err := timeslot.ParseMinutes(b.EndTime)
		if err != nil {
			continue
		}

		text := b.Title
		if b.Creator != nil {
			text += " (" + b.Creator.Name + ")"
		}
		date := civildate.FromTime(b.Date).String()

		if cellIndex[b.RoomID] == nil {
			cellIndex[b.RoomID] = make(map[string]string)
		}
		for m := bStart; m < bEnd; m += timeslot.SlotMinutes {
			cellIndex[b.RoomID][fmt.Sprintf("%s:%d", date, m)] = text
		}
	}

	// 3. 生成 Excel：每个会议室一个 Sheet
	f := excelize.NewFile()
	defer f.Close()

	dayNames := [7]string{"周日", "周一", "周二", "周三", "周四", "周五", "周六"}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for _, room := range rooms {
		sheetName := room.Name
		idx, err := f.NewSheet(sheetName)
		if err != nil {
			continue // 非法 Sheet 名（重名等）跳过
		}
		f.SetActiveSheet(idx)

		f.SetColWidth(sheetName, "A", "A", 14)
		for i := 0; i < 7; i++ {
			col := colName(1 + i)
			f.SetColWidth(sheetName, col, col, 22)
		}

		// 标题行
		f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — %s ~ %s", room.Name, start.String(), end.String()))
		f.MergeCell(sheetName, "A1", cell(colName(7), 1))
		f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

		// 表头：时间 | 周日(日期) … 周六(日期)
		f.SetCellValue(sheetName, cell("A", 2), "时间")
		for i, day := range week {
			f.SetCellValue(sheetName, cell(colName(1+i), 2), fmt.Sprintf("%s %s", dayNames[i], day.String()))
		}

		// 数据行：30 分钟槽
		row := 3
		for m := excelDayStartMin; m < excelDayEndMin; m += timeslot.SlotMinutes {
			f.SetCellValue(sheetName, cell("A", row),
				fmt.Sprintf("%s-%s", timeslot.Format(m), timeslot.Format(m+timeslot.SlotMinutes)))
			for i, day := range week {
				key := fmt.Sprintf("%s:%d", day.String(), m)
				if text, ok := cellIndex[room.RoomID][key]; ok {
					f.SetCellValue(sheetName, cell(colName(1+i), row), text)
				}
			}
			row++
		}
	}
	f.DeleteSheet("Sheet1")

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("预订周表_%s.xlsx", start.String())
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportICS — 导出区间预订为 iCalendar
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportICS(ctx context.Context, req *dto.BookingListRequest, callerID, callerRole string) (*bytes.Buffer, string, error) {
	start, err := civildate.Parse(req.Start)
	if err != nil {
		return nil, "", err
	}
	end, err := civildate.Parse(req.End)
	if err != nil {
		return nil, "", err
	}
	if end.Before(start) {
		return nil, "", ErrInvalidDateRange
	}

	var bookings []model.Booking
	if req.RoomID != "" {
		rs := &roomService{repo: s.repo, logger: s.logger}
		if _, err := rs.visibleRoom(ctx, req.RoomID, callerID, callerRole); err != nil {
			return nil, "", err
		}
		bookings, err = s.repo.Booking.ListInRange(ctx, []string{req.RoomID}, start.String(), end.String())
		if err != nil {
			s.logger.Error("查询预订列表失败", zap.Error(err))
			return nil, "", err
		}
	} else {
		_, bookings, err = s.visibleBookings(ctx, start, end, callerID, callerRole)
		if err != nil {
			return nil, "", err
		}
	}
	if len(bookings) == 0 {
		return nil, "", ErrExportNoBookings
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//meeting-resv//booking//ZH")

	now := time.Now().In(civildate.KST)
	for _, b := range bookings {
		date := civildate.FromTime(b.Date)
		startMin, err := timeslot.ParseMinutes(b.StartTime)
		if err != nil {
			continue
		}
		endMin, err := timeslot.ParseMinutes(b.EndTime)
		if err != nil {
			continue
		}

		// 民用日期 + 时刻按 KST 展开为 instant
		e := cal.AddEvent(b.BookingID)
		e.SetCreatedTime(b.CreatedAt)
		e.SetDtStampTime(now)
		e.SetStartAt(date.StartOfDay().Add(time.Duration(startMin) * time.Minute))
		e.SetEndAt(date.StartOfDay().Add(time.Duration(endMin) * time.Minute))
		e.SetSummary(b.Title)
		if b.Description != "" {
			e.SetDescription(b.Description)
		}
		if b.Room != nil {
			e.SetLocation(b.Room.Name)
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("预订_%s_%s.ics", start.String(), end.String())
	return buf, filename, nil
}

// visibleBookings 调用者可见范围内的会议室与区间预订
func (s *exportService) visibleBookings(ctx context.Context, start, end civildate.Date, callerID, callerRole string) ([]model.MeetingRoom, []model.Booking, error) {
	rs := &roomService{repo: s.repo, logger: s.logger}
	groupIDs, err := rs.visibleGroupIDs(ctx, callerID, callerRole)
	if err != nil {
		return nil, nil, err
	}
	rooms, err := s.repo.Room.ListByGroups(ctx, groupIDs)
	if err != nil {
		s.logger.Error("查询可见会议室失败", zap.Error(err))
		return nil, nil, err
	}

	roomIDs := make([]string, 0, len(rooms))
	for _, r := range rooms {
		roomIDs = append(roomIDs, r.RoomID)
	}

	bookings, err := s.repo.Booking.ListInRange(ctx, roomIDs, start.String(), end.String())
	if err != nil {
		s.logger.Error("查询预订列表失败", zap.Error(err))
		return nil, nil, err
	}
	return rooms, bookings, nil
}

// ── Excel 坐标辅助 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
