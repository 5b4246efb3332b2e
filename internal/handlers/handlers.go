package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"agrisense/api/internal/config"
	"agrisense/api/internal/middleware"
	"agrisense/api/internal/models"
	"agrisense/api/internal/repository"
	"agrisense/api/internal/security"
	"agrisense/api/internal/service"
	"agrisense/api/internal/storage"
)

type HandlerSet struct {
	log     zerolog.Logger
	cfg     *config.AppConfig
	codec   *security.TokenCodec
	auth    *service.AuthService
	npk     *service.NpkService
	market  *service.MarketService
	disease *service.DiseaseService
	store   *storage.ObjectStore
	db      *pgxpool.Pool
	cache   *redis.Client
}

func NewHandlerSet(
	log zerolog.Logger,
	cfg *config.AppConfig,
	codec *security.TokenCodec,
	db *pgxpool.Pool,
	cache *redis.Client,
	store *storage.ObjectStore,
) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	npkRepo := repository.NewNpkRepository(db)
	marketRepo := repository.NewMarketRepository(db)
	diseaseRepo := repository.NewDiseaseRepository(db)

	return HandlerSet{
		log:     log,
		cfg:     cfg,
		codec:   codec,
		auth:    service.NewAuthService(userRepo, sessionRepo, codec, log),
		npk:     service.NewNpkService(npkRepo, log),
		market:  service.NewMarketService(marketRepo, cache, log),
		disease: service.NewDiseaseService(diseaseRepo, cache, cfg.Disease, log),
		store:   store,
		db:      db,
		cache:   cache,
	}
}

func (h HandlerSet) Disease() *service.DiseaseService {
	return h.disease
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", h.RegisterUser)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", middleware.Auth(h.codec), h.Me)

		npk := v1.Group("/npk", middleware.Auth(h.codec))
		npk.POST("/readings", h.CreateReading)
		npk.GET("/readings", h.ListReadings)
		npk.POST("/predict", h.Predict)

		market := v1.Group("/market", middleware.Auth(h.codec))
		market.GET("/products", h.ListProducts)
		market.POST("/products",
			middleware.RequireRoles(string(models.UserRoleAdmin)),
			h.CreateProduct,
		)
		market.GET("/cart", h.GetCart)
		market.POST("/cart/items", h.UpsertCartItem)
		market.DELETE("/cart/items/:itemId", h.RemoveCartItem)

		disease := v1.Group("/disease", middleware.Auth(h.codec))
		disease.POST("/reports", h.CreateReport)
		disease.GET("/reports/:id", h.GetReport)

		storageGroup := v1.Group("/storage", middleware.Auth(h.codec))
		storageGroup.GET("/presign", h.Presign)
	}
}
