package dto

// ── 群组模块 DTO ──

// CreateGroupRequest 创建群组请求
type CreateGroupRequest struct {
	Name        string `json:"name"        binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

// UpdateGroupRequest 更新群组请求
type UpdateGroupRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=2,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	IsActive    *bool   `json:"is_active"`
}

// GroupListRequest 群组列表查询参数
type GroupListRequest struct {
	IncludeInactive bool `form:"include_inactive"`
}

// GroupResponse 群组详细信息响应
type GroupResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
	MemberCount int64  `json:"member_count"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// GroupBrief 群组简要信息
type GroupBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ── 群组成员 DTO ──

// AddGroupMemberRequest 添加群组成员请求
type AddGroupMemberRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Role   string `json:"role"    binding:"omitempty,oneof=admin member"`
}

// GroupMemberResponse 群组成员响应
type GroupMemberResponse struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	JoinedAt string `json:"joined_at"`
}
