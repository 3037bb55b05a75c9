package model

// MeetingRoom 会议室表 — 对应 meeting_rooms
// 会议室属于且仅属于一个群组；冲突检测以 (room, date) 为作用域，
// 不同会议室的预订无论时间是否重叠都互不冲突
type MeetingRoom struct {
	RoomID    string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"room_id"`
	GroupID   string      `gorm:"type:uuid;not null"                             json:"group_id"`
	Name      string      `gorm:"type:varchar(100);not null"                     json:"name"`
	Capacity  int         `gorm:"type:smallint;not null;default:4"               json:"capacity"`
	Amenities StringArray `gorm:"type:text[]"                                    json:"amenities,omitempty"`
	IsActive  bool        `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel

	// 关联
	Group *Group `gorm:"foreignKey:GroupID;references:GroupID" json:"group,omitempty"`
}

// TableName 指定表名
func (MeetingRoom) TableName() string { return "meeting_rooms" }
