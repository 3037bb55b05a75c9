package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/jae1jeong/meeting-resv-sub000/internal/dto"
	"github.com/jae1jeong/meeting-resv-sub000/internal/model"
	"github.com/jae1jeong/meeting-resv-sub000/internal/repository"
)

// setupTestRoomService 夹具：grp-1（user-1 为成员）、grp-2（无成员）
// 各含一间会议室
func setupTestRoomService() (RoomService, *mockRoomRepo) {
	groupRepo := newMockGroupRepo()
	roomRepo := newMockRoomRepo()

	groupRepo.groups["grp-1"] = &model.Group{GroupID: "grp-1", Name: "研发组", IsActive: true}
	groupRepo.groups["grp-2"] = &model.Group{GroupID: "grp-2", Name: "市场组", IsActive: true}
	groupRepo.members[memberKey("grp-1", "user-1")] = &model.GroupMember{GroupID: "grp-1", UserID: "user-1", Role: "member"}
	roomRepo.rooms["room-1"] = &model.MeetingRoom{RoomID: "room-1", GroupID: "grp-1", Name: "会议室A", Capacity: 6, IsActive: true}
	roomRepo.rooms["room-2"] = &model.MeetingRoom{RoomID: "room-2", GroupID: "grp-2", Name: "会议室B", Capacity: 4, IsActive: true}

	repo := &repository.Repository{Group: groupRepo, Room: roomRepo}
	return NewRoomService(repo, zap.NewNop()), roomRepo
}

func TestGetRoom_Visibility(t *testing.T) {
	svc, _ := setupTestRoomService()
	ctx := context.Background()

	// 成员可见本群组会议室
	room, err := svc.GetByID(ctx, "room-1", "user-1", "member")
	if err != nil {
		t.Fatalf("成员查询本群组会议室应成功: %v", err)
	}
	if room.Name != "会议室A" {
		t.Errorf("期望 会议室A，实际=%s", room.Name)
	}

	// 非成员群组的会议室：按不存在处理，不泄露
	if _, err := svc.GetByID(ctx, "room-2", "user-1", "member"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("期望 ErrRoomNotFound，实际: %v", err)
	}

	// 全局管理员不受群组限制
	if _, err := svc.GetByID(ctx, "room-2", "admin-1", "admin"); err != nil {
		t.Errorf("管理员查询任意会议室应成功: %v", err)
	}

	// 真实不存在的会议室与无权限返回同一错误
	if _, err := svc.GetByID(ctx, "room-404", "user-1", "member"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("期望 ErrRoomNotFound，实际: %v", err)
	}
}

func TestListRooms_ScopedToMembership(t *testing.T) {
	svc, _ := setupTestRoomService()
	ctx := context.Background()

	// 成员只看到自己群组的会议室
	rooms, err := svc.List(ctx, &dto.RoomListRequest{}, "user-1", "member")
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if len(rooms) != 1 || rooms[0].ID != "room-1" {
		t.Errorf("期望仅 room-1，实际: %+v", rooms)
	}

	// 管理员看到全部
	rooms, err = svc.List(ctx, &dto.RoomListRequest{}, "admin-1", "admin")
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if len(rooms) != 2 {
		t.Errorf("期望 2 间会议室，实际 %d 间", len(rooms))
	}

	// 非成员按群组过滤：按群组不存在处理
	if _, err := svc.List(ctx, &dto.RoomListRequest{GroupID: "grp-2"}, "user-1", "member"); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("期望 ErrGroupNotFound，实际: %v", err)
	}
}

func TestDeleteRoom_BlockedByBookings(t *testing.T) {
	svc, roomRepo := setupTestRoomService()
	ctx := context.Background()

	roomRepo.bookingCount["room-1"] = 3
	if err := svc.Delete(ctx, "room-1", "user-1", "member"); !errors.Is(err, ErrRoomHasBookings) {
		t.Errorf("期望 ErrRoomHasBookings，实际: %v", err)
	}

	roomRepo.bookingCount["room-1"] = 0
	if err := svc.Delete(ctx, "room-1", "user-1", "member"); err != nil {
		t.Fatalf("无预订时删除应成功: %v", err)
	}
	if _, err := svc.GetByID(ctx, "room-1", "user-1", "member"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("删除后应为 ErrRoomNotFound，实际: %v", err)
	}
}

func TestCreateRoom_DefaultCapacity(t *testing.T) {
	svc, _ := setupTestRoomService()

	room, err := svc.Create(context.Background(), &dto.CreateRoomRequest{
		GroupID: "grp-1",
		Name:    "新会议室",
	}, "user-1", "member")
	if err != nil {
		t.Fatalf("创建会议室失败: %v", err)
	}
	if room.Capacity != 4 {
		t.Errorf("期望默认容量 4，实际=%d", room.Capacity)
	}

	// 非成员不可在群组下创建
	_, err = svc.Create(context.Background(), &dto.CreateRoomRequest{
		GroupID: "grp-2",
		Name:    "越权会议室",
	}, "user-1", "member")
	if !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("期望 ErrMemberNotFound，实际: %v", err)
	}
}
