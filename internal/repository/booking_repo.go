package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jae1jeong/meeting-resv-sub000/internal/civildate"
	"github.com/jae1jeong/meeting-resv-sub000/internal/model"
	pkgerrors "github.com/jae1jeong/meeting-resv-sub000/pkg/errors"
)

// BookingRepository 预订数据访问接口
//
// Reserve / Reschedule 在单个事务内完成「冲突复查 + 写入」：
// 先对会议室行加 FOR UPDATE 锁，将同一会议室的并发写串行化，
// 复查通过后才落库。数据库层的排他约束（bookings_no_overlap）
// 是并发竞态的最终防线，违反时同样返回 ErrBookingOverlap。
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	// ListByRoomAndDate 某会议室某民用日期的全部预订（date 为 YYYY-MM-DD）
	// excludeID 非空时排除指定预订（用于原预订的改期校验）
	ListByRoomAndDate(ctx context.Context, roomID, date string, excludeID string) ([]model.Booking, error)
	// ListInRange 多会议室按民用日期区间 [start, end] 查询
	ListInRange(ctx context.Context, roomIDs []string, start, end string) ([]model.Booking, error)
	// Reserve 创建预订（事务内冲突复查）
	Reserve(ctx context.Context, booking *model.Booking) error
	// Reschedule 更新预订的日期/时刻及元数据（事务内冲突复查，排除自身）
	Reschedule(ctx context.Context, booking *model.Booking) error
	Delete(ctx context.Context, id string, deletedBy string) error
	SetParticipants(ctx context.Context, bookingID string, userIDs []string) error
}

type bookingRepo struct {
	db *gorm.DB
}

// NewBookingRepo 创建 BookingRepository 实例
func NewBookingRepo(db *gorm.DB) BookingRepository {
	return &bookingRepo{db: db}
}

func (r *bookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.WithContext(ctx).
		Preload("Room").
		Preload("Creator").
		Preload("Participants").Preload("Participants.User").
		Where("booking_id = ?", id).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepo) ListByRoomAndDate(ctx context.Context, roomID, date string, excludeID string) ([]model.Booking, error) {
	var bookings []model.Booking
	db := r.db.WithContext(ctx).
		Where("room_id = ? AND date = ?", roomID, date)
	if excludeID != "" {
		db = db.Where("booking_id != ?", excludeID)
	}
	err := db.Order("start_time ASC").Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepo) ListInRange(ctx context.Context, roomIDs []string, start, end string) ([]model.Booking, error) {
	if len(roomIDs) == 0 {
		return nil, nil
	}
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Preload("Room").
		Preload("Creator").
		Preload("Participants").Preload("Participants.User").
		Where("room_id IN ? AND date >= ? AND date <= ?", roomIDs, start, end).
		Order("date ASC, start_time ASC").
		Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepo) Reserve(ctx context.Context, booking *model.Booking) error {
	date := civildate.FromTime(booking.Date).String()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRoom(tx, booking.RoomID); err != nil {
			return err
		}
		overlapped, err := hasOverlapLocked(tx, booking.RoomID, date, booking.StartTime, booking.EndTime, "")
		if err != nil {
			return err
		}
		if overlapped {
			return pkgerrors.ErrBookingOverlap
		}
		if err := tx.Create(booking).Error; err != nil {
			return translateExclusionErr(err)
		}
		return nil
	})
}

func (r *bookingRepo) Reschedule(ctx context.Context, booking *model.Booking) error {
	date := civildate.FromTime(booking.Date).String()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRoom(tx, booking.RoomID); err != nil {
			return err
		}
		overlapped, err := hasOverlapLocked(tx, booking.RoomID, date, booking.StartTime, booking.EndTime, booking.BookingID)
		if err != nil {
			return err
		}
		if overlapped {
			return pkgerrors.ErrBookingOverlap
		}

		oldVersion := booking.Version
		result := tx.Model(booking).
			Where("booking_id = ? AND version = ?", booking.BookingID, oldVersion).
			Updates(map[string]interface{}{
				"title":       booking.Title,
				"description": booking.Description,
				"date":        booking.Date,
				"start_time":  booking.StartTime,
				"end_time":    booking.EndTime,
				"color":       booking.Color,
				"updated_by":  booking.UpdatedBy,
				"version":     oldVersion + 1,
			})
		if result.Error != nil {
			return translateExclusionErr(result.Error)
		}
		if result.RowsAffected == 0 {
			return pkgerrors.ErrOptimisticLock
		}
		booking.Version = oldVersion + 1
		return nil
	})
}

func (r *bookingRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Booking{}).
			Where("booking_id = ?", id).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Where("booking_id = ?", id).Delete(&model.Booking{}).Error
	})
}

func (r *bookingRepo) SetParticipants(ctx context.Context, bookingID string, userIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("booking_id = ?", bookingID).
			Delete(&model.BookingParticipant{}).Error; err != nil {
			return err
		}
		if len(userIDs) == 0 {
			return nil
		}
		participants := make([]model.BookingParticipant, 0, len(userIDs))
		for _, uid := range userIDs {
			participants = append(participants, model.BookingParticipant{
				BookingID: bookingID,
				UserID:    uid,
			})
		}
		return tx.Create(&participants).Error
	})
}

// ── 事务内辅助 ──

// lockRoom 对会议室行加 FOR UPDATE 锁，串行化同一会议室的并发写
func lockRoom(tx *gorm.DB, roomID string) error {
	var room model.MeetingRoom
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("room_id = ?", roomID).
		First(&room).Error
}

// hasOverlapLocked 半开区间重叠查询：[a,b) 与 [c,d) 重叠 ⟺ a < d 且 c < b
// HH:mm 定宽字符串的字典序与时刻序一致，可直接在 SQL 中比较
func hasOverlapLocked(tx *gorm.DB, roomID, date, start, end, excludeID string) (bool, error) {
	db := tx.Model(&model.Booking{}).
		Where("room_id = ? AND date = ? AND start_time < ? AND end_time > ?", roomID, date, end, start)
	if excludeID != "" {
		db = db.Where("booking_id != ?", excludeID)
	}
	var count int64
	if err := db.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// translateExclusionErr 将数据库排他约束冲突（SQLSTATE 23P01）
// 归一为 ErrBookingOverlap，调用方只需处理一种冲突错误
func translateExclusionErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23P01" {
		return pkgerrors.ErrBookingOverlap
	}
	return err
}
