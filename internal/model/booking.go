package model

import "time"

// Booking 预订表 — 对应 bookings
//
// Date 列为 DATE 类型，写入时固定为 KST 当日零点；
// 对外序列化一律经 civildate 按日历字段生成 YYYY-MM-DD，
// 绝不对 Date 字段做通用的时间戳→字符串转换。
// StartTime/EndTime 为 HH:mm 字符串，边界由 timeslot 包校验。
type Booking struct {
	BookingID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"booking_id"`
	RoomID      string    `gorm:"type:uuid;not null"                             json:"room_id"`
	CreatorID   string    `gorm:"type:uuid;not null"                             json:"creator_id"`
	Title       string    `gorm:"type:varchar(200);not null"                     json:"title"`
	Description string    `gorm:"type:text"                                      json:"description,omitempty"`
	Date        time.Time `gorm:"type:date;not null"                             json:"-"`
	StartTime   string    `gorm:"type:varchar(5);not null"                       json:"start_time"`
	EndTime     string    `gorm:"type:varchar(5);not null"                       json:"end_time"`
	Color       string    `gorm:"type:varchar(20)"                               json:"color,omitempty"`
	VersionedModel

	// 关联
	Room         *MeetingRoom         `gorm:"foreignKey:RoomID;references:RoomID"    json:"room,omitempty"`
	Creator      *User                `gorm:"foreignKey:CreatorID;references:UserID" json:"creator,omitempty"`
	Participants []BookingParticipant `gorm:"foreignKey:BookingID"                   json:"participants,omitempty"`
}

// TableName 指定表名
func (Booking) TableName() string { return "bookings" }

// BookingParticipant 预订参与人表 — 对应 booking_participants
// 纯附加元数据，不参与冲突检测
type BookingParticipant struct {
	BookingParticipantID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"booking_participant_id"`
	BookingID            string    `gorm:"type:uuid;not null"                             json:"booking_id"`
	UserID               string    `gorm:"type:uuid;not null"                             json:"user_id"`
	CreatedAt            time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (BookingParticipant) TableName() string { return "booking_participants" }
