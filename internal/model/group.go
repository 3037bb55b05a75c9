package model

import "time"

// Group 群组表 — 对应 groups
// 群组是会议室的归属单位，也是预订可见性的边界
type Group struct {
	GroupID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"group_id"`
	Name        string `gorm:"type:varchar(100);not null"                     json:"name"`
	Description string `gorm:"type:text"                                      json:"description,omitempty"`
	IsActive    bool   `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (Group) TableName() string { return "groups" }

// GroupMember 群组成员表 — 对应 group_members
type GroupMember struct {
	GroupMemberID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"group_member_id"`
	GroupID       string    `gorm:"type:uuid;not null"                             json:"group_id"`
	UserID        string    `gorm:"type:uuid;not null"                             json:"user_id"`
	Role          string    `gorm:"type:varchar(20);not null;default:'member'"     json:"role"` // admin | member
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Group *Group `gorm:"foreignKey:GroupID;references:GroupID" json:"group,omitempty"`
	User  *User  `gorm:"foreignKey:UserID;references:UserID"   json:"user,omitempty"`
}

// TableName 指定表名
func (GroupMember) TableName() string { return "group_members" }
