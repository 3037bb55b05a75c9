package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jae1jeong/meeting-resv-sub000/internal/model"
	pkgerrors "github.com/jae1jeong/meeting-resv-sub000/pkg/errors"
)

// RoomRepository 会议室数据访问接口
type RoomRepository interface {
	Create(ctx context.Context, room *model.MeetingRoom) error
	GetByID(ctx context.Context, id string) (*model.MeetingRoom, error)
	ListByGroup(ctx context.Context, groupID string) ([]model.MeetingRoom, error)
	// ListByGroups 多群组可见范围内的会议室（groupIDs 为空返回空集）
	ListByGroups(ctx context.Context, groupIDs []string) ([]model.MeetingRoom, error)
	Update(ctx context.Context, room *model.MeetingRoom) error
	Delete(ctx context.Context, id string, deletedBy string) error
	CountBookings(ctx context.Context, roomID string) (int64, error)
}

type roomRepo struct {
	db *gorm.DB
}

// NewRoomRepo 创建 RoomRepository 实例
func NewRoomRepo(db *gorm.DB) RoomRepository {
	return &roomRepo{db: db}
}

func (r *roomRepo) Create(ctx context.Context, room *model.MeetingRoom) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *roomRepo) GetByID(ctx context.Context, id string) (*model.MeetingRoom, error) {
	var room model.MeetingRoom
	err := r.db.WithContext(ctx).
		Preload("Group").
		Where("room_id = ?", id).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepo) ListByGroup(ctx context.Context, groupID string) ([]model.MeetingRoom, error) {
	var rooms []model.MeetingRoom
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("name ASC").
		Find(&rooms).Error
	return rooms, err
}

func (r *roomRepo) ListByGroups(ctx context.Context, groupIDs []string) ([]model.MeetingRoom, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	var rooms []model.MeetingRoom
	err := r.db.WithContext(ctx).
		Where("group_id IN ?", groupIDs).
		Order("name ASC").
		Find(&rooms).Error
	return rooms, err
}

func (r *roomRepo) Update(ctx context.Context, room *model.MeetingRoom) error {
	oldVersion := room.Version
	result := r.db.WithContext(ctx).
		Model(room).
		Where("room_id = ? AND version = ?", room.RoomID, oldVersion).
		Updates(map[string]interface{}{
			"name":       room.Name,
			"capacity":   room.Capacity,
			"amenities":  room.Amenities,
			"is_active":  room.IsActive,
			"updated_by": room.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	room.Version = oldVersion + 1
	return nil
}

func (r *roomRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.MeetingRoom{}).
			Where("room_id = ?", id).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Where("room_id = ?", id).Delete(&model.MeetingRoom{}).Error
	})
}

func (r *roomRepo) CountBookings(ctx context.Context, roomID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("room_id = ?", roomID).
		Count(&count).Error
	return count, err
}
