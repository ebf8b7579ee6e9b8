package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"plaza/api/internal/apperr"
	"plaza/api/internal/cache"
	"plaza/api/internal/config"
	"plaza/api/internal/middleware"
	"plaza/api/internal/models"
	"plaza/api/internal/phone"
	"plaza/api/internal/repository"
	"plaza/api/internal/service"
	"plaza/api/internal/storage"
)

type HandlerSet struct {
	log        zerolog.Logger
	cfg        *config.AppConfig
	db         *pgxpool.Pool
	redis      *redis.Client
	users      *service.UserService
	statuses   *service.StatusService
	friends    *service.FriendService
	contacts   *service.ContactService
	invites    *service.InviteService
	groups     *service.GroupService
	statusRepo *repository.StatusRepository
}

func NewHandlerSet(
	log zerolog.Logger,
	db *pgxpool.Pool,
	redisClient *redis.Client,
	store *storage.ObjectStore,
	hasher *phone.Hasher,
	cfg *config.AppConfig,
) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	statusRepo := repository.NewStatusRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	contactRepo := repository.NewContactRepository(db)
	inviteRepo := repository.NewInviteRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	appContactRepo := repository.NewAppContactRepository(db)

	statusCache := cache.NewStatusCache(redisClient, log)

	return HandlerSet{
		log:        log,
		cfg:        cfg,
		db:         db,
		redis:      redisClient,
		users:      service.NewUserService(userRepo, store, hasher, log),
		statuses:   service.NewStatusService(statusRepo, friendRepo, statusCache, log),
		friends:    service.NewFriendService(friendRepo, statusRepo, userRepo, log),
		contacts:   service.NewContactService(contactRepo, userRepo, hasher, log),
		invites:    service.NewInviteService(inviteRepo),
		groups:     service.NewGroupService(groupRepo, appContactRepo, hasher),
		statusRepo: statusRepo,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	v1.Use(middleware.Auth(h.cfg, h.users))
	{
		status := v1.Group("/status")
		status.POST("", h.SetStatus)
		status.GET("/me", h.MyStatus)
		status.DELETE("/me", h.ClearStatus)
		status.GET("/friends", h.FriendStatuses)

		friends := v1.Group("/friends")
		friends.GET("", h.Friends)
		friends.GET("/pending", h.PendingFriends)
		friends.POST("/:id/mute", h.MuteFriend)
		friends.POST("/:id/unmute", h.UnmuteFriend)
		friends.POST("/:id/block", h.BlockFriend)
		friends.POST("/:id/unblock", h.UnblockFriend)
		friends.POST("/:id/accept", h.AcceptFriend)

		contacts := v1.Group("/contacts")
		contacts.GET("", h.Contacts)
		contacts.POST("/hash-phones", h.HashPhones)
		contacts.POST("/check", h.CheckContacts)
		contacts.POST("/match", h.MatchContacts)

		invites := v1.Group("/invites")
		invites.POST("/generate", h.GenerateInvite)
		invites.GET("/:code", h.GetInvite)
		invites.POST("/:code/use", h.UseInvite)

		users := v1.Group("/users")
		users.GET("/me", h.Me)
		users.PATCH("/me", h.UpdateMe)
		users.DELETE("/me", h.DeleteMe)
		users.PUT("/me/avatar", h.UploadAvatar)

		appContacts := v1.Group("/app-contacts")
		appContacts.PUT("", h.SaveAppContacts)
		appContacts.GET("", h.AppContacts)

		groups := v1.Group("/groups")
		groups.POST("", h.CreateGroup)
		groups.GET("", h.ListGroups)
		groups.PATCH("/:id", h.RenameGroup)
		groups.DELETE("/:id", h.DeleteGroup)
		groups.POST("/:id/members", h.AddGroupMember)
		groups.DELETE("/:id/members/:userId", h.RemoveGroupMember)

		admin := v1.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		admin.GET("/statuses", h.AdminListStatuses)
	}
}

func currentUser(c *gin.Context) (models.User, bool) {
	userVal, exists := c.Get("current_user")
	if !exists {
		return models.User{}, false
	}
	user, ok := userVal.(models.User)
	return user, ok
}

func mustUser(c *gin.Context) (models.User, bool) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(401, gin.H{"error": "unauthorized"})
	}
	return user, ok
}

func respondError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
}
