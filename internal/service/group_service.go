package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jae1jeong/meeting-resv-sub000/internal/dto"
	"github.com/jae1jeong/meeting-resv-sub000/internal/model"
	"github.com/jae1jeong/meeting-resv-sub000/internal/repository"
)

// ── 群组模块业务错误 ──

var (
	ErrGroupNotFound   = errors.New("群组不存在")
	ErrGroupNameExists = errors.New("群组名称已存在")
	ErrGroupHasRooms   = errors.New("群组下仍有会议室，无法删除")
	ErrAlreadyMember   = errors.New("该用户已是群组成员")
	ErrMemberNotFound  = errors.New("该用户不是群组成员")
)

// GroupService 群组业务接口
type GroupService interface {
	Create(ctx context.Context, req *dto.CreateGroupRequest, callerID string) (*dto.GroupResponse, error)
	GetByID(ctx context.Context, id string) (*dto.GroupResponse, error)
	List(ctx context.Context, req *dto.GroupListRequest) ([]dto.GroupResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateGroupRequest, callerID string) (*dto.GroupResponse, error)
	Delete(ctx context.Context, id string, callerID string) error

	// ── 成员管理 ──
	AddMember(ctx context.Context, groupID string, req *dto.AddGroupMemberRequest, callerID string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	ListMembers(ctx context.Context, groupID string) ([]dto.GroupMemberResponse, error)
}

type groupService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewGroupService 创建 GroupService 实例
func NewGroupService(repo *repository.Repository, logger *zap.Logger) GroupService {
	return &groupService{repo: repo, logger: logger}
}

func (s *groupService) Create(ctx context.Context, req *dto.CreateGroupRequest, callerID string) (*dto.GroupResponse, error) {
	// 名称唯一性检查
	_, err := s.repo.Group.GetByName(ctx, req.Name)
	if err == nil {
		return nil, ErrGroupNameExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询群组失败", zap.Error(err))
		return nil, err
	}

	group := &model.Group{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	group.CreatedBy = &callerID
	group.UpdatedBy = &callerID

	if err := s.repo.Group.Create(ctx, group); err != nil {
		s.logger.Error("创建群组失败", zap.Error(err))
		return nil, err
	}

	// 创建者自动成为群组管理员
	member := &model.GroupMember{
		GroupID: group.GroupID,
		UserID:  callerID,
		Role:    "admin",
	}
	if err := s.repo.Group.AddMember(ctx, member); err != nil {
		s.logger.Error("添加群组创建者为成员失败", zap.Error(err))
		return nil, err
	}

	return s.toGroupResponse(ctx, group), nil
}

func (s *groupService) GetByID(ctx context.Context, id string) (*dto.GroupResponse, error) {
	group, err := s.repo.Group.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		s.logger.Error("查询群组失败", zap.Error(err))
		return nil, err
	}
	return s.toGroupResponse(ctx, group), nil
}

func (s *groupService) List(ctx context.Context, req *dto.GroupListRequest) ([]dto.GroupResponse, error) {
	groups, err := s.repo.Group.List(ctx, req.IncludeInactive)
	if err != nil {
		s.logger.Error("查询群组列表失败", zap.Error(err))
		return nil, err
	}

	resp := make([]dto.GroupResponse, 0, len(groups))
	for i := range groups {
		resp = append(resp, *s.toGroupResponse(ctx, &groups[i]))
	}
	return resp, nil
}

func (s *groupService) Update(ctx context.Context, id string, req *dto.UpdateGroupRequest, callerID string) (*dto.GroupResponse, error) {
	group, err := s.repo.Group.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		s.logger.Error("查询群组失败", zap.Error(err))
		return nil, err
	}

	if req.Name != nil && *req.Name != group.Name {
		_, err := s.repo.Group.GetByName(ctx, *req.Name)
		if err == nil {
			return nil, ErrGroupNameExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询群组失败", zap.Error(err))
			return nil, err
		}
		group.Name = *req.Name
	}
	if req.Description != nil {
		group.Description = *req.Description
	}
	if req.IsActive != nil {
		group.IsActive = *req.IsActive
	}
	group.UpdatedBy = &callerID

	if err := s.repo.Group.Update(ctx, group); err != nil {
		s.logger.Error("更新群组失败", zap.Error(err))
		return nil, err
	}
	return s.toGroupResponse(ctx, group), nil
}

func (s *groupService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Group.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		s.logger.Error("查询群组失败", zap.Error(err))
		return err
	}

	// 有会议室的群组不可删除
	rooms, err := s.repo.Room.ListByGroup(ctx, id)
	if err != nil {
		s.logger.Error("查询群组会议室失败", zap.Error(err))
		return err
	}
	if len(rooms) > 0 {
		return ErrGroupHasRooms
	}

	if err := s.repo.Group.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除群组失败", zap.Error(err))
		return err
	}
	return nil
}

// ── 成员管理 ──

func (s *groupService) AddMember(ctx context.Context, groupID string, req *dto.AddGroupMemberRequest, callerID string) error {
	if _, err := s.repo.Group.GetByID(ctx, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		s.logger.Error("查询群组失败", zap.Error(err))
		return err
	}

	if _, err := s.repo.User.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return err
	}

	// 重复添加检查
	_, err := s.repo.Group.GetMember(ctx, groupID, req.UserID)
	if err == nil {
		return ErrAlreadyMember
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询群组成员失败", zap.Error(err))
		return err
	}

	role := req.Role
	if role == "" {
		role = "member"
	}

	member := &model.GroupMember{
		GroupID: groupID,
		UserID:  req.UserID,
		Role:    role,
	}
	if err := s.repo.Group.AddMember(ctx, member); err != nil {
		s.logger.Error("添加群组成员失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *groupService) RemoveMember(ctx context.Context, groupID, userID string) error {
	if _, err := s.repo.Group.GetMember(ctx, groupID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		s.logger.Error("查询群组成员失败", zap.Error(err))
		return err
	}

	if err := s.repo.Group.RemoveMember(ctx, groupID, userID); err != nil {
		s.logger.Error("移除群组成员失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *groupService) ListMembers(ctx context.Context, groupID string) ([]dto.GroupMemberResponse, error) {
	if _, err := s.repo.Group.GetByID(ctx, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		s.logger.Error("查询群组失败", zap.Error(err))
		return nil, err
	}

	members, err := s.repo.Group.ListMembers(ctx, groupID)
	if err != nil {
		s.logger.Error("查询群组成员失败", zap.Error(err))
		return nil, err
	}

	resp := make([]dto.GroupMemberResponse, 0, len(members))
	for _, m := range members {
		item := dto.GroupMemberResponse{
			UserID:   m.UserID,
			Role:     m.Role,
			JoinedAt: m.CreatedAt.Format(time.RFC3339),
		}
		if m.User != nil {
			item.Name = m.User.Name
			item.Email = m.User.Email
		}
		resp = append(resp, item)
	}
	return resp, nil
}

// toGroupResponse 构造群组响应（含成员数）
func (s *groupService) toGroupResponse(ctx context.Context, group *model.Group) *dto.GroupResponse {
	count, err := s.repo.Group.CountMembers(ctx, group.GroupID)
	if err != nil {
		s.logger.Warn("统计群组成员数失败", zap.Error(err))
	}
	return &dto.GroupResponse{
		ID:          group.GroupID,
		Name:        group.Name,
		Description: group.Description,
		IsActive:    group.IsActive,
		MemberCount: count,
		CreatedAt:   group.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   group.UpdatedAt.Format(time.RFC3339),
	}
}
