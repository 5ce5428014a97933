package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"backend/internal/assets"
	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handlers"
	"backend/internal/invoice"
	"backend/internal/mailer"
	"backend/internal/middleware"
	"backend/internal/orders"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	client, err := database.Connect(context.Background(), cfg.MongoURI)
	if err != nil {
		logger.Fatal("mongodb connection failed", zap.Error(err))
	}
	defer func() {
		if err := database.Disconnect(client); err != nil {
			logger.Warn("mongodb disconnect failed", zap.Error(err))
		}
	}()

	db := client.Database(cfg.DBName)
	logger.Info("mongodb connected", zap.String("database", db.Name()))

	if err := database.EnsureUserIndexes(db); err != nil {
		logger.Warn("user index warning", zap.Error(err))
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		logger.Warn("order index warning", zap.Error(err))
	}

	gateway, err := assets.New(cfg.Cloudinary, logger)
	if err != nil {
		logger.Fatal("cloudinary init failed", zap.Error(err))
	}

	renderer := invoice.NewRenderer(invoice.DefaultCompany)
	dispatcher := mailer.New(cfg.SMTP, logger)

	pipeline := orders.NewPipeline(renderer, dispatcher, logger)
	pipeline.Start()
	defer pipeline.Stop()

	r := gin.Default()
	r.Use(middleware.RequestID())

	api := r.Group("/api")

	api.GET("/health", handlers.Health(db))

	auth := api.Group("/auth")
	{
		auth.POST("/register", handlers.Register(db, cfg.JWTSecret, cfg.JWTExpiry, logger))
		auth.POST("/login", handlers.Login(db, cfg.JWTSecret, cfg.JWTExpiry, logger))
		auth.POST("/create-admin", handlers.CreateAdmin(db, cfg.JWTSecret, cfg.JWTExpiry, logger))
		auth.GET("/me", middleware.RequireAuth(db, cfg.JWTSecret, logger), handlers.Me())
	}

	requireAuth := middleware.RequireAuth(db, cfg.JWTSecret, logger)
	optionalAuth := middleware.OptionalAuth(db, cfg.JWTSecret, logger)

	ordersGroup := api.Group("/orders")
	{
		ordersGroup.POST("", handlers.CreateOrder(db, pipeline, logger))
		ordersGroup.GET("/:id", handlers.GetOrder(db))
		ordersGroup.GET("", requireAuth, handlers.ListOrders(db))
		ordersGroup.PUT("/:id", requireAuth, handlers.UpdateOrder(db, logger))
		ordersGroup.DELETE("/:id", requireAuth, handlers.DeleteOrder(db))
	}

	services := api.Group("/services")
	{
		services.GET("", optionalAuth, handlers.ListServices(db))
		services.GET("/:id", optionalAuth, handlers.GetService(db))
		services.POST("", requireAuth, handlers.CreateService(db, gateway, logger))
		services.PUT("/:id", requireAuth, handlers.UpdateService(db, gateway, logger))
		services.DELETE("/:id", requireAuth, handlers.DeleteService(db))
	}

	projects := api.Group("/projects")
	{
		projects.GET("", optionalAuth, handlers.ListProjects(db))
		projects.GET("/:id", optionalAuth, handlers.GetProject(db))
		projects.POST("", requireAuth, handlers.CreateProject(db, gateway, logger))
		projects.PUT("/:id", requireAuth, handlers.UpdateProject(db, gateway, logger))
		projects.DELETE("/:id", requireAuth, handlers.DeleteProject(db))
	}

	products := api.Group("/products")
	{
		products.GET("", optionalAuth, handlers.ListProducts(db))
		products.GET("/:id", optionalAuth, handlers.GetProduct(db))
		products.POST("", requireAuth, handlers.CreateProduct(db, gateway, logger))
		products.PUT("/:id", requireAuth, handlers.UpdateProduct(db, gateway, logger))
		products.DELETE("/:id", requireAuth, handlers.DeleteProduct(db))
	}

	contact := api.Group("/contact")
	{
		contact.POST("", handlers.CreateContact(db, logger))
		contact.GET("", requireAuth, handlers.ListContacts(db))
		contact.PUT("/:id", requireAuth, handlers.UpdateContact(db))
		contact.DELETE("/:id", requireAuth, handlers.DeleteContact(db))
	}

	users := api.Group("/users")
	users.Use(requireAuth)
	{
		users.GET("", handlers.ListUsers(db))
		users.GET("/:id", handlers.GetUser(db))
		users.POST("", handlers.CreateUser(db, logger))
		users.PUT("/:id", handlers.UpdateUser(db, logger))
		users.DELETE("/:id", handlers.DeleteUser(db))
	}

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger() (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.EncoderConfig.TimeKey = "ts"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.OutputPaths = []string{"stdout"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}
	return zapCfg.Build()
}
