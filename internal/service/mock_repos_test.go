package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jae1jeong/meeting-resv-sub000/internal/civildate"
	"github.com/jae1jeong/meeting-resv-sub000/internal/model"
	pkgerrors "github.com/jae1jeong/meeting-resv-sub000/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: user_id
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	user.Version = 1
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, keyword string, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.users {
		if keyword == "" || strings.Contains(u.Name, keyword) || strings.Contains(u.Email, keyword) {
			all = append(all, *u)
		}
	}
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	user.Version++
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.users, id)
	return nil
}

// ── Mock GroupRepository ──

type mockGroupRepo struct {
	groups  map[string]*model.Group
	members map[string]*model.GroupMember // key: group_id + ":" + user_id
	seq     int
}

func newMockGroupRepo() *mockGroupRepo {
	return &mockGroupRepo{
		groups:  make(map[string]*model.Group),
		members: make(map[string]*model.GroupMember),
	}
}

func memberKey(groupID, userID string) string { return groupID + ":" + userID }

func (m *mockGroupRepo) Create(_ context.Context, group *model.Group) error {
	if group.GroupID == "" {
		m.seq++
		group.GroupID = fmt.Sprintf("grp-%d", m.seq)
	}
	group.CreatedAt = time.Now()
	group.UpdatedAt = time.Now()
	m.groups[group.GroupID] = group
	return nil
}

func (m *mockGroupRepo) GetByID(_ context.Context, id string) (*model.Group, error) {
	if g, ok := m.groups[id]; ok {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGroupRepo) GetByName(_ context.Context, name string) (*model.Group, error) {
	for _, g := range m.groups {
		if g.Name == name {
			return g, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGroupRepo) List(_ context.Context, includeInactive bool) ([]model.Group, error) {
	var result []model.Group
	for _, g := range m.groups {
		if includeInactive || g.IsActive {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockGroupRepo) Update(_ context.Context, group *model.Group) error {
	if _, ok := m.groups[group.GroupID]; !ok {
		return gorm.ErrRecordNotFound
	}
	group.Version++
	m.groups[group.GroupID] = group
	return nil
}

func (m *mockGroupRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.groups, id)
	return nil
}

func (m *mockGroupRepo) AddMember(_ context.Context, member *model.GroupMember) error {
	member.CreatedAt = time.Now()
	m.members[memberKey(member.GroupID, member.UserID)] = member
	return nil
}

func (m *mockGroupRepo) RemoveMember(_ context.Context, groupID, userID string) error {
	delete(m.members, memberKey(groupID, userID))
	return nil
}

func (m *mockGroupRepo) GetMember(_ context.Context, groupID, userID string) (*model.GroupMember, error) {
	if mem, ok := m.members[memberKey(groupID, userID)]; ok {
		return mem, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGroupRepo) ListMembers(_ context.Context, groupID string) ([]model.GroupMember, error) {
	var result []model.GroupMember
	for _, mem := range m.members {
		if mem.GroupID == groupID {
			result = append(result, *mem)
		}
	}
	return result, nil
}

func (m *mockGroupRepo) CountMembers(_ context.Context, groupID string) (int64, error) {
	var count int64
	for _, mem := range m.members {
		if mem.GroupID == groupID {
			count++
		}
	}
	return count, nil
}

func (m *mockGroupRepo) ListGroupIDsByUser(_ context.Context, userID string) ([]string, error) {
	var ids []string
	for _, mem := range m.members {
		if mem.UserID == userID {
			ids = append(ids, mem.GroupID)
		}
	}
	return ids, nil
}

// ── Mock RoomRepository ──

type mockRoomRepo struct {
	rooms        map[string]*model.MeetingRoom
	bookingCount map[string]int64
	seq          int
}

func newMockRoomRepo() *mockRoomRepo {
	return &mockRoomRepo{
		rooms:        make(map[string]*model.MeetingRoom),
		bookingCount: make(map[string]int64),
	}
}

func (m *mockRoomRepo) Create(_ context.Context, room *model.MeetingRoom) error {
	if room.RoomID == "" {
		m.seq++
		room.RoomID = fmt.Sprintf("room-%d", m.seq)
	}
	room.CreatedAt = time.Now()
	room.UpdatedAt = time.Now()
	m.rooms[room.RoomID] = room
	return nil
}

func (m *mockRoomRepo) GetByID(_ context.Context, id string) (*model.MeetingRoom, error) {
	if r, ok := m.rooms[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRoomRepo) ListByGroup(_ context.Context, groupID string) ([]model.MeetingRoom, error) {
	var result []model.MeetingRoom
	for _, r := range m.rooms {
		if r.GroupID == groupID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockRoomRepo) ListByGroups(_ context.Context, groupIDs []string) ([]model.MeetingRoom, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	idSet := make(map[string]bool, len(groupIDs))
	for _, id := range groupIDs {
		idSet[id] = true
	}
	var result []model.MeetingRoom
	for _, r := range m.rooms {
		if idSet[r.GroupID] {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockRoomRepo) Update(_ context.Context, room *model.MeetingRoom) error {
	if _, ok := m.rooms[room.RoomID]; !ok {
		return gorm.ErrRecordNotFound
	}
	room.Version++
	m.rooms[room.RoomID] = room
	return nil
}

func (m *mockRoomRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.rooms, id)
	return nil
}

func (m *mockRoomRepo) CountBookings(_ context.Context, roomID string) (int64, error) {
	return m.bookingCount[roomID], nil
}

// ── Mock BookingRepository ──
//
// 与真实实现保持相同的冲突语义：Reserve / Reschedule 在写入前
// 做半开区间重叠检查，冲突时返回 ErrBookingOverlap

type mockBookingRepo struct {
	bookings     map[string]*model.Booking
	participants map[string][]model.BookingParticipant
	rooms        *mockRoomRepo
	users        *mockUserRepo
	seq          int
}

func newMockBookingRepo(rooms *mockRoomRepo, users *mockUserRepo) *mockBookingRepo {
	return &mockBookingRepo{
		bookings:     make(map[string]*model.Booking),
		participants: make(map[string][]model.BookingParticipant),
		rooms:        rooms,
		users:        users,
	}
}

// withAssociations 模拟 Preload：填充 Room / Creator / Participants
func (m *mockBookingRepo) withAssociations(b *model.Booking) *model.Booking {
	copied := *b
	if r, ok := m.rooms.rooms[b.RoomID]; ok {
		copied.Room = r
	}
	if u, ok := m.users.users[b.CreatorID]; ok {
		copied.Creator = u
	}
	for _, p := range m.participants[b.BookingID] {
		pc := p
		if u, ok := m.users.users[p.UserID]; ok {
			pc.User = u
		}
		copied.Participants = append(copied.Participants, pc)
	}
	return &copied
}

func (m *mockBookingRepo) GetByID(_ context.Context, id string) (*model.Booking, error) {
	if b, ok := m.bookings[id]; ok {
		return m.withAssociations(b), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBookingRepo) ListByRoomAndDate(_ context.Context, roomID, date string, excludeID string) ([]model.Booking, error) {
	var result []model.Booking
	for _, b := range m.bookings {
		if b.RoomID != roomID || civildate.FromTime(b.Date).String() != date {
			continue
		}
		if excludeID != "" && b.BookingID == excludeID {
			continue
		}
		result = append(result, *b)
	}
	return result, nil
}

func (m *mockBookingRepo) ListInRange(_ context.Context, roomIDs []string, start, end string) ([]model.Booking, error) {
	if len(roomIDs) == 0 {
		return nil, nil
	}
	idSet := make(map[string]bool, len(roomIDs))
	for _, id := range roomIDs {
		idSet[id] = true
	}
	var result []model.Booking
	for _, b := range m.bookings {
		date := civildate.FromTime(b.Date).String()
		if idSet[b.RoomID] && date >= start && date <= end {
			result = append(result, *m.withAssociations(b))
		}
	}
	return result, nil
}

// hasOverlap 半开区间重叠：定宽 HH:mm 字符串字典序即时刻序
func (m *mockBookingRepo) hasOverlap(roomID, date, start, end, excludeID string) bool {
	for _, b := range m.bookings {
		if b.RoomID != roomID || civildate.FromTime(b.Date).String() != date {
			continue
		}
		if excludeID != "" && b.BookingID == excludeID {
			continue
		}
		if b.StartTime < end && start < b.EndTime {
			return true
		}
	}
	return false
}

func (m *mockBookingRepo) Reserve(_ context.Context, booking *model.Booking) error {
	date := civildate.FromTime(booking.Date).String()
	if m.hasOverlap(booking.RoomID, date, booking.StartTime, booking.EndTime, "") {
		return pkgerrors.ErrBookingOverlap
	}
	if booking.BookingID == "" {
		m.seq++
		booking.BookingID = fmt.Sprintf("bk-%d", m.seq)
	}
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = time.Now()
	booking.Version = 1
	m.bookings[booking.BookingID] = booking
	return nil
}

func (m *mockBookingRepo) Reschedule(_ context.Context, booking *model.Booking) error {
	stored, ok := m.bookings[booking.BookingID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	date := civildate.FromTime(booking.Date).String()
	if m.hasOverlap(booking.RoomID, date, booking.StartTime, booking.EndTime, booking.BookingID) {
		return pkgerrors.ErrBookingOverlap
	}
	if stored.Version != booking.Version {
		return pkgerrors.ErrOptimisticLock
	}
	booking.Version++
	booking.UpdatedAt = time.Now()
	m.bookings[booking.BookingID] = booking
	return nil
}

func (m *mockBookingRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.bookings, id)
	delete(m.participants, id)
	return nil
}

func (m *mockBookingRepo) SetParticipants(_ context.Context, bookingID string, userIDs []string) error {
	var list []model.BookingParticipant
	for i, uid := range userIDs {
		list = append(list, model.BookingParticipant{
			BookingParticipantID: fmt.Sprintf("bp-%s-%d", bookingID, i),
			BookingID:            bookingID,
			UserID:               uid,
			CreatedAt:            time.Now(),
		})
	}
	m.participants[bookingID] = list
	return nil
}
