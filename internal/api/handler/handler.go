package handler

import "github.com/jae1jeong/meeting-resv-sub000/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth    *AuthHandler
	User    *UserHandler
	Group   *GroupHandler
	Room    *RoomHandler
	Booking *BookingHandler
	Export  *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(svc.Auth),
		User:    NewUserHandler(svc.User),
		Group:   NewGroupHandler(svc.Group),
		Room:    NewRoomHandler(svc.Room),
		Booking: NewBookingHandler(svc.Booking),
		Export:  NewExportHandler(svc.Export),
	}
}
