package api

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/katatrina/sheep-market-BE/internal/db"
	"github.com/katatrina/sheep-market-BE/internal/event"
	"github.com/katatrina/sheep-market-BE/internal/identity"
	"github.com/katatrina/sheep-market-BE/internal/storage"
	"github.com/katatrina/sheep-market-BE/internal/token"
	"github.com/katatrina/sheep-market-BE/internal/util"
	"github.com/katatrina/sheep-market-BE/internal/verification"
	"github.com/katatrina/sheep-market-BE/internal/worker"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Server struct {
	router          *gin.Engine
	store           db.Store
	identity        identity.Provider
	fileStore       storage.FileStore
	tokenMaker      token.Maker
	config          *util.Config
	taskDistributor worker.TaskDistributor
	codeLimiter     verification.Limiter
	eventSender     event.EventSender
	now             func() time.Time
}

// NewServer creates a new HTTP server and set up routing.
func NewServer(
	store db.Store,
	identityProvider identity.Provider,
	fileStore storage.FileStore,
	taskDistributor worker.TaskDistributor,
	codeLimiter verification.Limiter,
	eventSender event.EventSender,
	config *util.Config,
) (*Server, error) {
	// Create a new JWT token maker
	tokenMaker, err := token.NewJWTMaker(config.TokenSecretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create token maker: %w", err)
	}
	log.Info().Msg("Token maker created successfully ✅")

	server := &Server{
		store:           store,
		identity:        identityProvider,
		fileStore:       fileStore,
		tokenMaker:      tokenMaker,
		config:          config,
		taskDistributor: taskDistributor,
		codeLimiter:     codeLimiter,
		eventSender:     eventSender,
		now:             time.Now,
	}

	server.setupRouter()
	return server, nil
}

// setupRouter configures the HTTP server routes.
func (server *Server) setupRouter() *gin.Engine {
	if server.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.ForceConsoleColor()
	}

	router := gin.New()
	router.Use(requestLogger(log.Logger), gin.Recovery())
	router.MaxMultipartMemory = maxUploadSize
	router.Use(cors.New(cors.Config{
		AllowOrigins:     server.config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	v1 := router.Group("/v1")

	v1.POST("/tokens/verify", server.verifyAccessToken)

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", server.registerUser)
		authGroup.POST("/verify-email", server.verifyEmail)
		authGroup.POST("/resend-code", server.resendVerificationCode)
		authGroup.POST("/login", server.loginUser)
		authGroup.POST("/firebase-login", server.loginUserWithFirebase)
		authGroup.POST("/password/forgot", server.forgotPassword)
		authGroup.POST("/password/reset", server.resetPassword)
	}

	// Public catalogue
	v1.GET("/settings", server.getSettings)
	v1.GET("/ads", server.listLiveAds)

	sheepGroup := v1.Group("/sheep")
	{
		sheepGroup.GET("", server.listSheep)
		sheepGroup.GET(":sheepID", server.getSheep)
		sheepGroup.GET("/by-slug/:slug", server.getSheepBySlug)
	}

	authenticated := v1.Group("", authMiddleware(server.tokenMaker), requireRole(server.store))

	authenticated.POST("/uploads", server.uploadImage)

	userGroup := authenticated.Group("/users/me")
	{
		userGroup.GET("", server.getCurrentUser)
		userGroup.PATCH("", server.updateCurrentUser)

		userGroup.GET("/notifications", server.listNotifications)
		userGroup.PATCH("/notifications/:notificationID/read", server.markNotificationRead)
		userGroup.GET("/notifications/stream", server.streamNotifications)
	}

	orderGroup := authenticated.Group("/orders")
	{
		orderGroup.POST("", server.createOrder)
		orderGroup.GET("", server.listBuyerOrders)
		orderGroup.GET(":orderID", server.getOrder)
		orderGroup.PATCH(":orderID/cancel", server.cancelOrder)
		orderGroup.PATCH(":orderID/confirm", server.confirmOrder)
		orderGroup.PATCH(":orderID/reject", server.rejectOrder)
		orderGroup.PATCH(":orderID/deliver", server.deliverOrder)

		orderGroup.POST(":orderID/receipts", server.createReceipt)
		orderGroup.GET(":orderID/receipts", server.listOrderReceipts)
		orderGroup.GET(":orderID/installments", server.listOrderInstallments)
	}

	vipGroup := authenticated.Group("/vip/requests")
	{
		vipGroup.POST("", server.createVIPRequest)
		vipGroup.GET("", server.listOwnVIPRequests)
	}

	sellerGroup := authenticated.Group("/seller", requireRole(server.store, db.UserRoleSeller, db.UserRoleAdmin))
	{
		sellerGroup.POST("/sheep", server.createSheep)
		sellerGroup.GET("/sheep", server.listSellerSheep)
		sellerGroup.PUT("/sheep/:sheepID", server.updateSheep)
		sellerGroup.DELETE("/sheep/:sheepID", server.deleteSheep)

		sellerGroup.GET("/orders", server.listSellerOrders)

		sellerGroup.POST("/ad-requests", server.createAdRequest)
		sellerGroup.GET("/ad-requests", server.listSellerAdRequests)
		sellerGroup.DELETE("/ad-requests/:requestID", server.deleteAdRequest)
	}

	adminGroup := authenticated.Group("/admin", requireRole(server.store, db.UserRoleAdmin))
	{
		adminGroup.GET("/dashboard", server.getAdminDashboard)

		adminGroup.GET("/users", server.listUsers)
		adminGroup.PATCH("/users/:userID/role", server.updateUserRole)
		adminGroup.PATCH("/users/:userID/disable", server.setUserDisabled)

		adminGroup.GET("/sheep", server.listSheepForAdmin)
		adminGroup.PATCH("/sheep/:sheepID/approve", server.approveSheep)
		adminGroup.PATCH("/sheep/:sheepID/reject", server.rejectSheep)

		adminGroup.PUT("/settings", server.updateSettings)

		adminGroup.GET("/orders", server.listOrdersForAdmin)

		adminGroup.GET("/receipts", server.listReceipts)
		adminGroup.PATCH("/receipts/:receiptID/verify", server.verifyReceipt)
		adminGroup.PATCH("/receipts/:receiptID/reject", server.rejectReceipt)

		adminGroup.GET("/vip-requests", server.listVIPRequests)
		adminGroup.PATCH("/vip-requests/:paymentID/approve", server.approveVIPRequest)
		adminGroup.PATCH("/vip-requests/:paymentID/reject", server.rejectVIPRequest)

		adminGroup.GET("/ads", server.listAds)
		adminGroup.POST("/ads", server.createAd)
		adminGroup.PUT("/ads/:adID", server.updateAd)
		adminGroup.DELETE("/ads/:adID", server.deleteAd)

		adminGroup.GET("/ad-requests", server.listAdRequests)
		adminGroup.PATCH("/ad-requests/:requestID/approve", server.approveAdRequest)
		adminGroup.PATCH("/ad-requests/:requestID/reject", server.rejectAdRequest)
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	server.router = router
	return router
}

// Start runs the HTTP server on a specific address.
func (server *Server) Start(address string) error {
	return server.router.Run(address)
}
