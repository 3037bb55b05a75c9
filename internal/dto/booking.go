package dto

// ── 预订模块 DTO ──
// 跨边界的日期一律为规范化 YYYY-MM-DD 字符串（KST 民用日期），
// 时刻一律为 HH:mm 字符串；服务端负责二次校验

// CreateBookingRequest 创建预订请求
type CreateBookingRequest struct {
	Title          string   `json:"title"           binding:"required,min=1,max=200"`
	Description    string   `json:"description"     binding:"omitempty,max=2000"`
	RoomID         string   `json:"room_id"         binding:"required,uuid"`
	Date           string   `json:"date"            binding:"required"`
	StartTime      string   `json:"start_time"      binding:"required"`
	EndTime        string   `json:"end_time"        binding:"required"`
	Color          string   `json:"color"           binding:"omitempty,max=20"`
	ParticipantIDs []string `json:"participant_ids" binding:"omitempty,max=50,dive,uuid"`
}

// UpdateBookingRequest 更新预订请求（仅创建者）
type UpdateBookingRequest struct {
	Title          *string   `json:"title"           binding:"omitempty,min=1,max=200"`
	Description    *string   `json:"description"     binding:"omitempty,max=2000"`
	Date           *string   `json:"date"`
	StartTime      *string   `json:"start_time"`
	EndTime        *string   `json:"end_time"`
	Color          *string   `json:"color"           binding:"omitempty,max=20"`
	ParticipantIDs *[]string `json:"participant_ids" binding:"omitempty,max=50,dive,uuid"`
}

// UpdateBookingTimeRequest 拖拽改期的写入步骤：只移动日期与时刻
type UpdateBookingTimeRequest struct {
	Date      string `json:"date"       binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time"   binding:"required"`
}

// BookingListRequest 区间查询参数
// room_id 为空时按调用者的群组可见范围查询
type BookingListRequest struct {
	RoomID string `form:"room_id" binding:"omitempty,uuid"`
	Start  string `form:"start"   binding:"required"`
	End    string `form:"end"     binding:"required"`
}

// AvailabilityRequest 空闲检查请求（拖拽改期的预检步骤）
type AvailabilityRequest struct {
	RoomID           string `form:"room_id"            binding:"required,uuid"`
	Date             string `form:"date"               binding:"required"`
	StartTime        string `form:"start_time"         binding:"required"`
	EndTime          string `form:"end_time"           binding:"required"`
	ExcludeBookingID string `form:"exclude_booking_id" binding:"omitempty,uuid"`
}

// AvailabilityResponse 空闲检查响应
// Conflicts 为完整冲突列表，用于诊断展示
type AvailabilityResponse struct {
	Available bool           `json:"available"`
	Conflicts []BookingBrief `json:"conflicts,omitempty"`
}

// BookingResponse 预订响应
type BookingResponse struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	Description  string             `json:"description,omitempty"`
	RoomID       string             `json:"room_id"`
	Room         *RoomBrief         `json:"room,omitempty"`
	CreatorID    string             `json:"creator_id"`
	CreatorName  string             `json:"creator_name,omitempty"`
	Date         string             `json:"date"` // YYYY-MM-DD
	StartTime    string             `json:"start_time"`
	EndTime      string             `json:"end_time"`
	Color        string             `json:"color,omitempty"`
	Participants []ParticipantBrief `json:"participants,omitempty"`
	CreatedAt    string             `json:"created_at"`
	UpdatedAt    string             `json:"updated_at"`
}

// BookingBrief 预订简要信息（冲突列表用）
type BookingBrief struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// ParticipantBrief 参与人简要信息
type ParticipantBrief struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}
