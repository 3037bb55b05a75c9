package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/jae1jeong/meeting-resv-sub000/internal/dto"
	"github.com/jae1jeong/meeting-resv-sub000/internal/reschedule"
)

// NewBookingMover 将拖拽会话状态机绑定到预订服务。
//
// 预检走 CheckAvailability（排除被拖拽的预订自身），
// 落点写入走 UpdateTime；UpdateTime 返回的冲突按 Conflicted 回退。
// 会话以发起拖拽的调用者身份执行，权限与可见性由下层裁剪。
func NewBookingMover(svc BookingService, callerID, callerRole string, logger *zap.Logger) *reschedule.Mover {
	check := func(ctx context.Context, bookingID string, target reschedule.Slot) (bool, error) {
		booking, err := svc.GetByID(ctx, bookingID, callerID, callerRole)
		if err != nil {
			return false, err
		}
		resp, err := svc.CheckAvailability(ctx, &dto.AvailabilityRequest{
			RoomID:           booking.RoomID,
			Date:             target.Date.String(),
			StartTime:        target.StartTime,
			EndTime:          target.EndTime,
			ExcludeBookingID: bookingID,
		}, callerID, callerRole)
		if err != nil {
			return false, err
		}
		return resp.Available, nil
	}

	commit := func(ctx context.Context, bookingID string, target reschedule.Slot) error {
		_, err := svc.UpdateTime(ctx, bookingID, &dto.UpdateBookingTimeRequest{
			Date:      target.Date.String(),
			StartTime: target.StartTime,
			EndTime:   target.EndTime,
		}, callerID, callerRole)
		return err
	}

	isConflict := func(err error) bool {
		return errors.Is(err, ErrBookingConflict)
	}

	return reschedule.NewMover(check, commit, isConflict, logger)
}
