package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jae1jeong/meeting-resv-sub000/internal/civildate"
	"github.com/jae1jeong/meeting-resv-sub000/internal/dto"
	"github.com/jae1jeong/meeting-resv-sub000/internal/model"
	"github.com/jae1jeong/meeting-resv-sub000/internal/repository"
	"github.com/jae1jeong/meeting-resv-sub000/internal/timeslot"
	pkgerrors "github.com/jae1jeong/meeting-resv-sub000/pkg/errors"
	"github.com/jae1jeong/meeting-resv-sub000/pkg/mq"
)

// ── 预订模块业务错误 ──

var (
	ErrBookingNotFound  = errors.New("预订不存在")
	ErrBookingForbidden = errors.New("仅预订创建者可执行此操作")
	ErrBookingConflict  = errors.New("该时段已被其他预订占用")
	ErrInvalidDateRange = errors.New("日期区间无效，start 不能晚于 end")
)

// BookingService 预订业务接口
//
// 写入链路固定为：校验 → 规范化 → 可见性 → 冲突预检 → 事务写入 → 回读。
// 冲突预检给出完整冲突列表用于诊断；事务写入内部会在持锁状态下
// 再次检查重叠，数据库排他约束兜底并发竞态。无论竞态被哪一层
// 拦截，调用方收到的都是 ErrBookingConflict。
//
// 日期校验、时刻校验的失败原因按类别区分：
// civildate.ErrInvalidDateFormat、timeslot.ErrBadTimeFormat、
// timeslot.ErrOffGrid、timeslot.ErrNonPositiveDuration 原样向上传递。
type BookingService interface {
	Create(ctx context.Context, req *dto.CreateBookingRequest, callerID, callerRole string) (*dto.BookingResponse, error)
	GetByID(ctx context.Context, id string, callerID, callerRole string) (*dto.BookingResponse, error)
	// ListInRange 日期区间内的预订（room_id 为空时按调用者可见范围）
	ListInRange(ctx context.Context, req *dto.BookingListRequest, callerID, callerRole string) ([]dto.BookingResponse, error)
	// ListWeek 锚点日期所在周（周日～周六）的预订
	ListWeek(ctx context.Context, anchor, roomID, callerID, callerRole string) ([]dto.BookingResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateBookingRequest, callerID, callerRole string) (*dto.BookingResponse, error)
	// UpdateTime 拖拽改期的写入步骤：仅移动日期与起止时刻
	UpdateTime(ctx context.Context, id string, req *dto.UpdateBookingTimeRequest, callerID, callerRole string) (*dto.BookingResponse, error)
	// CheckAvailability 拖拽改期的预检步骤：只读冲突检查
	CheckAvailability(ctx context.Context, req *dto.AvailabilityRequest, callerID, callerRole string) (*dto.AvailabilityResponse, error)
	Delete(ctx context.Context, id string, callerID, callerRole string) error
}

type bookingService struct {
	repo   *repository.Repository
	rooms  *roomService
	pub    *mq.Publisher
	logger *zap.Logger
}

// NewBookingService 创建 BookingService 实例
func NewBookingService(repo *repository.Repository, pub *mq.Publisher, logger *zap.Logger) BookingService {
	return &bookingService{
		repo:   repo,
		rooms:  &roomService{repo: repo, logger: logger},
		pub:    pub,
		logger: logger,
	}
}

func (s *bookingService) Create(ctx context.Context, req *dto.CreateBookingRequest, callerID, callerRole string) (*dto.BookingResponse, error) {
	// 1. 校验并规范化日期与时刻
	date, err := civildate.Parse(req.Date)
	if err != nil {
		return nil, err
	}
	if err := timeslot.Validate(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	// 2. 可见性：会议室存在、调用者可见、未停用
	room, err := s.rooms.visibleRoom(ctx, req.RoomID, callerID, callerRole)
	if err != nil {
		return nil, err
	}
	if !room.IsActive {
		return nil, ErrRoomInactive
	}

	// 3. 参与人存在性校验
	if err := s.checkParticipants(ctx, req.ParticipantIDs); err != nil {
		return nil, err
	}

	// 4. 冲突预检（诊断用，事务内还会复查）
	conflicts, err := s.findConflicts(ctx, req.RoomID, date.String(), req.StartTime, req.EndTime, "")
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, ErrBookingConflict
	}

	// 5. 事务写入
	booking := &model.Booking{
		RoomID:      req.RoomID,
		CreatorID:   callerID,
		Title:       req.Title,
		Description: req.Description,
		Date:        date.StartOfDay(),
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Color:       req.Color,
	}
	booking.CreatedBy = &callerID
	booking.UpdatedBy = &callerID

	if err := s.repo.Booking.Reserve(ctx, booking); err != nil {
		if errors.Is(err, pkgerrors.ErrBookingOverlap) {
			return nil, ErrBookingConflict
		}
		s.logger.Error("创建预订失败", zap.Error(err))
		return nil, err
	}

	if len(req.ParticipantIDs) > 0 {
		if err := s.repo.Booking.SetParticipants(ctx, booking.BookingID, req.ParticipantIDs); err != nil {
			s.logger.Error("写入预订参与人失败", zap.Error(err))
			return nil, err
		}
	}

	// 6. 回读（响应一律来自已落库的数据）
	saved, err := s.repo.Booking.GetByID(ctx, booking.BookingID)
	if err != nil {
		s.logger.Error("回读预订失败", zap.Error(err))
		return nil, err
	}

	s.publish(ctx, mq.EventBookingCreated, saved)
	return toBookingResponse(saved), nil
}

func (s *bookingService) GetByID(ctx context.Context, id string, callerID, callerRole string) (*dto.BookingResponse, error) {
	booking, err := s.visibleBooking(ctx, id, callerID, callerRole)
	if err != nil {
		return nil, err
	}
	return toBookingResponse(booking), nil
}

func (s *bookingService) ListInRange(ctx context.Context, req *dto.BookingListRequest, callerID, callerRole string) ([]dto.BookingResponse, error) {
	start, err := civildate.Parse(req.Start)
	if err != nil {
		return nil, err
	}
	end, err := civildate.Parse(req.End)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}

	return s.listRange(ctx, req.RoomID, start, end, callerID, callerRole)
}

func (s *bookingService) ListWeek(ctx context.Context, anchor, roomID, callerID, callerRole string) ([]dto.BookingResponse, error) {
	d, err := civildate.Parse(anchor)
	if err != nil {
		return nil, err
	}
	start, end := civildate.WeekRange(d)
	return s.listRange(ctx, roomID, start, end, callerID, callerRole)
}

func (s *bookingService) Update(ctx context.Context, id string, req *dto.UpdateBookingRequest, callerID, callerRole string) (*dto.BookingResponse, error) {
	booking, err := s.ownBooking(ctx, id, callerID, callerRole)
	if err != nil {
		return nil, err
	}

	// 时间相关字段：缺省沿用现值，任一变化则整体重新校验
	date := civildate.FromTime(booking.Date)
	if req.Date != nil {
		date, err = civildate.Parse(*req.Date)
		if err != nil {
			return nil, err
		}
	}
	startTime := booking.StartTime
	if req.StartTime != nil {
		startTime = *req.StartTime
	}
	endTime := booking.EndTime
	if req.EndTime != nil {
		endTime = *req.EndTime
	}
	if err := timeslot.Validate(startTime, endTime); err != nil {
		return nil, err
	}

	if req.ParticipantIDs != nil {
		if err := s.checkParticipants(ctx, *req.ParticipantIDs); err != nil {
			return nil, err
		}
	}

	// 冲突预检（排除自身）
	conflicts, err := s.findConflicts(ctx, booking.RoomID, date.String(), startTime, endTime, booking.BookingID)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, ErrBookingConflict
	}

	if req.Title != nil {
		booking.Title = *req.Title
	}
	if req.Description != nil {
		booking.Description = *req.Description
	}
	if req.Color != nil {
		booking.Color = *req.Color
	}
	booking.Date = date.StartOfDay()
	booking.StartTime = startTime
	booking.EndTime = endTime
	booking.UpdatedBy = &callerID

	if err := s.repo.Booking.Reschedule(ctx, booking); err != nil {
		if errors.Is(err, pkgerrors.ErrBookingOverlap) {
			return nil, ErrBookingConflict
		}
		s.logger.Error("更新预订失败", zap.Error(err))
		return nil, err
	}

	if req.ParticipantIDs != nil {
		if err := s.repo.Booking.SetParticipants(ctx, booking.BookingID, *req.ParticipantIDs); err != nil {
			s.logger.Error("写入预订参与人失败", zap.Error(err))
			return nil, err
		}
	}

	saved, err := s.repo.Booking.GetByID(ctx, booking.BookingID)
	if err != nil {
		s.logger.Error("回读预订失败", zap.Error(err))
		return nil, err
	}

	s.publish(ctx, mq.EventBookingUpdated, saved)
	return toBookingResponse(saved), nil
}

func (s *bookingService) UpdateTime(ctx context.Context, id string, req *dto.UpdateBookingTimeRequest, callerID, callerRole string) (*dto.BookingResponse, error) {
	booking, err := s.ownBooking(ctx, id, callerID, callerRole)
	if err != nil {
		return nil, err
	}

	date, err := civildate.Parse(req.Date)
	if err != nil {
		return nil, err
	}
	if err := timeslot.Validate(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	// 原位不动：无需写库，直接返回现状
	if civildate.FromTime(booking.Date) == date &&
		booking.StartTime == req.StartTime && booking.EndTime == req.EndTime {
		return toBookingResponse(booking), nil
	}

	conflicts, err := s.findConflicts(ctx, booking.RoomID, date.String(), req.StartTime, req.EndTime, booking.BookingID)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, ErrBookingConflict
	}

	booking.Date = date.StartOfDay()
	booking.StartTime = req.StartTime
	booking.EndTime = req.EndTime
	booking.UpdatedBy = &callerID

	if err := s.repo.Booking.Reschedule(ctx, booking); err != nil {
		if errors.Is(err, pkgerrors.ErrBookingOverlap) {
			return nil, ErrBookingConflict
		}
		s.logger.Error("移动预订失败", zap.Error(err))
		return nil, err
	}

	saved, err := s.repo.Booking.GetByID(ctx, booking.BookingID)
	if err != nil {
		s.logger.Error("回读预订失败", zap.Error(err))
		return nil, err
	}

	s.publish(ctx, mq.EventBookingUpdated, saved)
	return toBookingResponse(saved), nil
}

func (s *bookingService) CheckAvailability(ctx context.Context, req *dto.AvailabilityRequest, callerID, callerRole string) (*dto.AvailabilityResponse, error) {
	date, err := civildate.Parse(req.Date)
	if err != nil {
		return nil, err
	}
	if err := timeslot.Validate(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	if _, err := s.rooms.visibleRoom(ctx, req.RoomID, callerID, callerRole); err != nil {
		return nil, err
	}

	conflicts, err := s.findConflicts(ctx, req.RoomID, date.String(), req.StartTime, req.EndTime, req.ExcludeBookingID)
	if err != nil {
		return nil, err
	}

	resp := &dto.AvailabilityResponse{Available: len(conflicts) == 0}
	for _, c := range conflicts {
		resp.Conflicts = append(resp.Conflicts, dto.BookingBrief{
			ID:        c.BookingID,
			Title:     c.Title,
			StartTime: c.StartTime,
			EndTime:   c.EndTime,
		})
	}
	return resp, nil
}

func (s *bookingService) Delete(ctx context.Context, id string, callerID, callerRole string) error {
	booking, err := s.ownBooking(ctx, id, callerID, callerRole)
	if err != nil {
		return err
	}

	if err := s.repo.Booking.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除预订失败", zap.Error(err))
		return err
	}

	s.publish(ctx, mq.EventBookingDeleted, booking)
	return nil
}

// ── 内部辅助 ──

// listRange 区间查询的公共实现
func (s *bookingService) listRange(ctx context.Context, roomID string, start, end civildate.Date, callerID, callerRole string) ([]dto.BookingResponse, error) {
	var roomIDs []string
	if roomID != "" {
		if _, err := s.rooms.visibleRoom(ctx, roomID, callerID, callerRole); err != nil {
			return nil, err
		}
		roomIDs = []string{roomID}
	} else {
		groupIDs, err := s.rooms.visibleGroupIDs(ctx, callerID, callerRole)
		if err != nil {
			return nil, err
		}
		rooms, err := s.repo.Room.ListByGroups(ctx, groupIDs)
		if err != nil {
			s.logger.Error("查询可见会议室失败", zap.Error(err))
			return nil, err
		}
		for _, r := range rooms {
			roomIDs = append(roomIDs, r.RoomID)
		}
	}

	bookings, err := s.repo.Booking.ListInRange(ctx, roomIDs, start.String(), end.String())
	if err != nil {
		s.logger.Error("查询预订列表失败", zap.Error(err))
		return nil, err
	}

	resp := make([]dto.BookingResponse, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, *toBookingResponse(&bookings[i]))
	}
	return resp, nil
}

// findConflicts 半开区间冲突检测，作用域为 (会议室, 民用日期)
// excludeID 非空时排除该预订自身（改期场景）
func (s *bookingService) findConflicts(ctx context.Context, roomID, date, start, end, excludeID string) ([]model.Booking, error) {
	startMin, err := timeslot.ParseMinutes(start)
	if err != nil {
		return nil, err
	}
	endMin, err := timeslot.ParseMinutes(end)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.Booking.ListByRoomAndDate(ctx, roomID, date, excludeID)
	if err != nil {
		s.logger.Error("查询当日预订失败", zap.Error(err))
		return nil, err
	}

	var conflicts []model.Booking
	for _, b := range existing {
		bStart, err := timeslot.ParseMinutes(b.StartTime)
		if err != nil {
			continue // 存量脏数据不阻塞检测
		}
		bEnd, err := timeslot.ParseMinutes(b.EndTime)
		if err != nil {
			continue
		}
		if timeslot.Overlaps(startMin, endMin, bStart, bEnd) {
			conflicts = append(conflicts, b)
		}
	}
	return conflicts, nil
}

// visibleBooking 查询预订并校验调用者对所在会议室的可见性
func (s *bookingService) visibleBooking(ctx context.Context, id, callerID, callerRole string) (*model.Booking, error) {
	booking, err := s.repo.Booking.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		s.logger.Error("查询预订失败", zap.Error(err))
		return nil, err
	}

	if err := s.rooms.requireGroupMember(ctx, roomGroupID(booking), callerID, callerRole); err != nil {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

// ownBooking 查询预订并校验调用者为创建者（或全局管理员）
func (s *bookingService) ownBooking(ctx context.Context, id, callerID, callerRole string) (*model.Booking, error) {
	booking, err := s.visibleBooking(ctx, id, callerID, callerRole)
	if err != nil {
		return nil, err
	}
	if booking.CreatorID != callerID && callerRole != "admin" {
		return nil, ErrBookingForbidden
	}
	return booking, nil
}

func roomGroupID(b *model.Booking) string {
	if b.Room != nil {
		return b.Room.GroupID
	}
	return ""
}

// publish 发布预订变更事件（尽力而为）
func (s *bookingService) publish(ctx context.Context, routingKey string, b *model.Booking) {
	s.pub.PublishBookingEvent(ctx, routingKey, &mq.BookingEvent{
		BookingID: b.BookingID,
		RoomID:    b.RoomID,
		CreatorID: b.CreatorID,
		Date:      civildate.FromTime(b.Date).String(),
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
	})
}

// toBookingResponse 构造预订响应
// Date 一律经 civildate 按日历字段序列化
func toBookingResponse(b *model.Booking) *dto.BookingResponse {
	resp := &dto.BookingResponse{
		ID:          b.BookingID,
		Title:       b.Title,
		Description: b.Description,
		RoomID:      b.RoomID,
		CreatorID:   b.CreatorID,
		Date:        civildate.FromTime(b.Date).String(),
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Color:       b.Color,
		CreatedAt:   b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   b.UpdatedAt.Format(time.RFC3339),
	}
	if b.Room != nil {
		resp.Room = &dto.RoomBrief{ID: b.Room.RoomID, Name: b.Room.Name}
	}
	if b.Creator != nil {
		resp.CreatorName = b.Creator.Name
	}
	for _, p := range b.Participants {
		pb := dto.ParticipantBrief{UserID: p.UserID}
		if p.User != nil {
			pb.Name = p.User.Name
		}
		resp.Participants = append(resp.Participants, pb)
	}
	return resp
}

// checkParticipants 校验参与人均为有效用户
func (s *bookingService) checkParticipants(ctx context.Context, userIDs []string) error {
	for _, uid := range userIDs {
		if _, err := s.repo.User.GetByID(ctx, uid); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			s.logger.Error("查询参与人失败", zap.Error(err))
			return err
		}
	}
	return nil
}
