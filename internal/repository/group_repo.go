package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jae1jeong/meeting-resv-sub000/internal/model"
	pkgerrors "github.com/jae1jeong/meeting-resv-sub000/pkg/errors"
)

// GroupRepository 群组及成员数据访问接口
type GroupRepository interface {
	Create(ctx context.Context, group *model.Group) error
	GetByID(ctx context.Context, id string) (*model.Group, error)
	GetByName(ctx context.Context, name string) (*model.Group, error)
	List(ctx context.Context, includeInactive bool) ([]model.Group, error)
	Update(ctx context.Context, group *model.Group) error
	Delete(ctx context.Context, id string, deletedBy string) error

	// ── 成员管理 ──
	AddMember(ctx context.Context, member *model.GroupMember) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	GetMember(ctx context.Context, groupID, userID string) (*model.GroupMember, error)
	ListMembers(ctx context.Context, groupID string) ([]model.GroupMember, error)
	CountMembers(ctx context.Context, groupID string) (int64, error)
	// ListGroupIDsByUser 用户所属的全部群组 ID（预订可见范围）
	ListGroupIDsByUser(ctx context.Context, userID string) ([]string, error)
}

type groupRepo struct {
	db *gorm.DB
}

// NewGroupRepo 创建 GroupRepository 实例
func NewGroupRepo(db *gorm.DB) GroupRepository {
	return &groupRepo{db: db}
}

func (r *groupRepo) Create(ctx context.Context, group *model.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepo) GetByID(ctx context.Context, id string) (*model.Group, error) {
	var group model.Group
	err := r.db.WithContext(ctx).
		Where("group_id = ?", id).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepo) GetByName(ctx context.Context, name string) (*model.Group, error) {
	var group model.Group
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepo) List(ctx context.Context, includeInactive bool) ([]model.Group, error) {
	var groups []model.Group
	db := r.db.WithContext(ctx)
	if !includeInactive {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("created_at ASC").Find(&groups).Error
	return groups, err
}

func (r *groupRepo) Update(ctx context.Context, group *model.Group) error {
	oldVersion := group.Version
	result := r.db.WithContext(ctx).
		Model(group).
		Where("group_id = ? AND version = ?", group.GroupID, oldVersion).
		Updates(map[string]interface{}{
			"name":        group.Name,
			"description": group.Description,
			"is_active":   group.IsActive,
			"updated_by":  group.UpdatedBy,
			"version":     oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	group.Version = oldVersion + 1
	return nil
}

func (r *groupRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Group{}).
			Where("group_id = ?", id).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Where("group_id = ?", id).Delete(&model.Group{}).Error
	})
}

// ── 成员管理 ──

func (r *groupRepo) AddMember(ctx context.Context, member *model.GroupMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *groupRepo) RemoveMember(ctx context.Context, groupID, userID string) error {
	return r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&model.GroupMember{}).Error
}

func (r *groupRepo) GetMember(ctx context.Context, groupID, userID string) (*model.GroupMember, error) {
	var member model.GroupMember
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *groupRepo) ListMembers(ctx context.Context, groupID string) ([]model.GroupMember, error) {
	var members []model.GroupMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("group_id = ?", groupID).
		Order("created_at ASC").
		Find(&members).Error
	return members, err
}

func (r *groupRepo) CountMembers(ctx context.Context, groupID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.GroupMember{}).
		Where("group_id = ?", groupID).
		Count(&count).Error
	return count, err
}

func (r *groupRepo) ListGroupIDsByUser(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.GroupMember{}).
		Where("user_id = ?", userID).
		Pluck("group_id", &ids).Error
	return ids, err
}
