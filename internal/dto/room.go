package dto

// ── 会议室模块 DTO ──

// CreateRoomRequest 创建会议室请求
type CreateRoomRequest struct {
	GroupID   string   `json:"group_id"  binding:"required,uuid"`
	Name      string   `json:"name"      binding:"required,min=1,max=100"`
	Capacity  int      `json:"capacity"  binding:"omitempty,min=1,max=500"`
	Amenities []string `json:"amenities" binding:"omitempty,max=20,dive,max=50"`
}

// UpdateRoomRequest 更新会议室请求
type UpdateRoomRequest struct {
	Name      *string   `json:"name"      binding:"omitempty,min=1,max=100"`
	Capacity  *int      `json:"capacity"  binding:"omitempty,min=1,max=500"`
	Amenities *[]string `json:"amenities" binding:"omitempty,max=20,dive,max=50"`
	IsActive  *bool     `json:"is_active"`
}

// RoomListRequest 会议室列表查询参数
// group_id 为空时返回调用者可见的全部会议室
type RoomListRequest struct {
	GroupID string `form:"group_id" binding:"omitempty,uuid"`
}

// RoomResponse 会议室响应
type RoomResponse struct {
	ID        string      `json:"id"`
	GroupID   string      `json:"group_id"`
	Group     *GroupBrief `json:"group,omitempty"`
	Name      string      `json:"name"`
	Capacity  int         `json:"capacity"`
	Amenities []string    `json:"amenities,omitempty"`
	IsActive  bool        `json:"is_active"`
	CreatedAt string      `json:"created_at"`
	UpdatedAt string      `json:"updated_at"`
}

// RoomBrief 会议室简要信息
type RoomBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
