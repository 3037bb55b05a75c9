package service

import (
	"go.uber.org/zap"

	"github.com/jae1jeong/meeting-resv-sub000/config"
	"github.com/jae1jeong/meeting-resv-sub000/internal/repository"
	"github.com/jae1jeong/meeting-resv-sub000/pkg/jwt"
	"github.com/jae1jeong/meeting-resv-sub000/pkg/mq"
	"github.com/jae1jeong/meeting-resv-sub000/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth    AuthService
	User    UserService
	Group   GroupService
	Room    RoomService
	Booking BookingService
	Export  ExportService
}

// NewService 创建 Service 聚合
// rdb、pub 允许为 nil（对应依赖降级运行）
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	pub *mq.Publisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:    NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		User:    NewUserService(repo, logger),
		Group:   NewGroupService(repo, logger),
		Room:    NewRoomService(repo, logger),
		Booking: NewBookingService(repo, pub, logger),
		Export:  NewExportService(repo, logger),
	}
}
