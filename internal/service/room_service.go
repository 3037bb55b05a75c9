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

// ── 会议室模块业务错误 ──

var (
	// ErrRoomNotFound 会议室不存在，或调用者不在会议室所属群组
	// （对无权限者不泄露会议室存在与否）
	ErrRoomNotFound    = errors.New("会议室不存在")
	ErrRoomInactive    = errors.New("会议室已停用")
	ErrRoomHasBookings = errors.New("会议室下仍有预订，无法删除")
)

// RoomService 会议室业务接口
//
// 可见性规则：会议室仅对其所属群组的成员可见，
// 全局管理员（role == "admin"）不受限制
type RoomService interface {
	Create(ctx context.Context, req *dto.CreateRoomRequest, callerID, callerRole string) (*dto.RoomResponse, error)
	GetByID(ctx context.Context, id string, callerID, callerRole string) (*dto.RoomResponse, error)
	List(ctx context.Context, req *dto.RoomListRequest, callerID, callerRole string) ([]dto.RoomResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateRoomRequest, callerID, callerRole string) (*dto.RoomResponse, error)
	Delete(ctx context.Context, id string, callerID, callerRole string) error
}

type roomService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRoomService 创建 RoomService 实例
func NewRoomService(repo *repository.Repository, logger *zap.Logger) RoomService {
	return &roomService{repo: repo, logger: logger}
}

func (s *roomService) Create(ctx context.Context, req *dto.CreateRoomRequest, callerID, callerRole string) (*dto.RoomResponse, error) {
	if _, err := s.repo.Group.GetByID(ctx, req.GroupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		s.logger.Error("查询群组失败", zap.Error(err))
		return nil, err
	}

	// 仅群组成员（或全局管理员）可在群组下创建会议室
	if err := s.requireGroupMember(ctx, req.GroupID, callerID, callerRole); err != nil {
		return nil, err
	}

	capacity := req.Capacity
	if capacity <= 0 {
		capacity = 4
	}

	room := &model.MeetingRoom{
		GroupID:   req.GroupID,
		Name:      req.Name,
		Capacity:  capacity,
		Amenities: model.StringArray(req.Amenities),
		IsActive:  true,
	}
	room.CreatedBy = &callerID
	room.UpdatedBy = &callerID

	if err := s.repo.Room.Create(ctx, room); err != nil {
		s.logger.Error("创建会议室失败", zap.Error(err))
		return nil, err
	}
	return toRoomResponse(room), nil
}

func (s *roomService) GetByID(ctx context.Context, id string, callerID, callerRole string) (*dto.RoomResponse, error) {
	room, err := s.visibleRoom(ctx, id, callerID, callerRole)
	if err != nil {
		return nil, err
	}
	return toRoomResponse(room), nil
}

func (s *roomService) List(ctx context.Context, req *dto.RoomListRequest, callerID, callerRole string) ([]dto.RoomResponse, error) {
	var rooms []model.MeetingRoom
	var err error

	switch {
	case req.GroupID != "":
		if err := s.requireGroupMember(ctx, req.GroupID, callerID, callerRole); err != nil {
			// 非成员按"群组不存在"处理，避免泄露
			return nil, ErrGroupNotFound
		}
		rooms, err = s.repo.Room.ListByGroup(ctx, req.GroupID)
	default:
		var groupIDs []string
		groupIDs, err = s.visibleGroupIDs(ctx, callerID, callerRole)
		if err != nil {
			return nil, err
		}
		rooms, err = s.repo.Room.ListByGroups(ctx, groupIDs)
	}
	if err != nil {
		s.logger.Error("查询会议室列表失败", zap.Error(err))
		return nil, err
	}

	resp := make([]dto.RoomResponse, 0, len(rooms))
	for i := range rooms {
		resp = append(resp, *toRoomResponse(&rooms[i]))
	}
	return resp, nil
}

func (s *roomService) Update(ctx context.Context, id string, req *dto.UpdateRoomRequest, callerID, callerRole string) (*dto.RoomResponse, error) {
	room, err := s.visibleRoom(ctx, id, callerID, callerRole)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		room.Name = *req.Name
	}
	if req.Capacity != nil {
		room.Capacity = *req.Capacity
	}
	if req.Amenities != nil {
		room.Amenities = model.StringArray(*req.Amenities)
	}
	if req.IsActive != nil {
		room.IsActive = *req.IsActive
	}
	room.UpdatedBy = &callerID

	if err := s.repo.Room.Update(ctx, room); err != nil {
		s.logger.Error("更新会议室失败", zap.Error(err))
		return nil, err
	}
	return toRoomResponse(room), nil
}

func (s *roomService) Delete(ctx context.Context, id string, callerID, callerRole string) error {
	if _, err := s.visibleRoom(ctx, id, callerID, callerRole); err != nil {
		return err
	}

	count, err := s.repo.Room.CountBookings(ctx, id)
	if err != nil {
		s.logger.Error("统计会议室预订数失败", zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrRoomHasBookings
	}

	if err := s.repo.Room.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除会议室失败", zap.Error(err))
		return err
	}
	return nil
}

// ── 可见性辅助 ──

// visibleRoom 查询会议室并校验调用者可见性
// 不存在与无权限统一返回 ErrRoomNotFound
func (s *roomService) visibleRoom(ctx context.Context, roomID, callerID, callerRole string) (*model.MeetingRoom, error) {
	room, err := s.repo.Room.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		s.logger.Error("查询会议室失败", zap.Error(err))
		return nil, err
	}

	if err := s.requireGroupMember(ctx, room.GroupID, callerID, callerRole); err != nil {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// requireGroupMember 校验调用者是群组成员或全局管理员
func (s *roomService) requireGroupMember(ctx context.Context, groupID, callerID, callerRole string) error {
	if callerRole == "admin" {
		return nil
	}
	_, err := s.repo.Group.GetMember(ctx, groupID, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		s.logger.Error("查询群组成员失败", zap.Error(err))
		return err
	}
	return nil
}

// visibleGroupIDs 调用者的可见群组范围（管理员为全部群组）
func (s *roomService) visibleGroupIDs(ctx context.Context, callerID, callerRole string) ([]string, error) {
	if callerRole == "admin" {
		groups, err := s.repo.Group.List(ctx, true)
		if err != nil {
			s.logger.Error("查询群组列表失败", zap.Error(err))
			return nil, err
		}
		ids := make([]string, 0, len(groups))
		for _, g := range groups {
			ids = append(ids, g.GroupID)
		}
		return ids, nil
	}

	ids, err := s.repo.Group.ListGroupIDsByUser(ctx, callerID)
	if err != nil {
		s.logger.Error("查询用户群组失败", zap.Error(err))
		return nil, err
	}
	return ids, nil
}

// toRoomResponse 构造会议室响应
func toRoomResponse(room *model.MeetingRoom) *dto.RoomResponse {
	resp := &dto.RoomResponse{
		ID:        room.RoomID,
		GroupID:   room.GroupID,
		Name:      room.Name,
		Capacity:  room.Capacity,
		Amenities: room.Amenities,
		IsActive:  room.IsActive,
		CreatedAt: room.CreatedAt.Format(time.RFC3339),
		UpdatedAt: room.UpdatedAt.Format(time.RFC3339),
	}
	if room.Group != nil {
		resp.Group = &dto.GroupBrief{
			ID:   room.Group.GroupID,
			Name: room.Group.Name,
		}
	}
	return resp
}
