package main

import (
	"context"
	"log"

	firebase "firebase.google.com/go/v4"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sachalprvt-cloud/hibikiiii/config"
	"github.com/sachalprvt-cloud/hibikiiii/db/mysql"
	"github.com/sachalprvt-cloud/hibikiiii/logging"
	"github.com/sachalprvt-cloud/hibikiiii/routes"
	"github.com/sachalprvt-cloud/hibikiiii/services"
	"go.uber.org/zap"
)

func main() {
	// .env is optional outside local dev
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	database, err := mysql.GetDatabase(&mysql.Config{
		User:            cfg.DBUser,
		Password:        cfg.DBPass,
		Host:            cfg.DBHost,
		Name:            cfg.DBName,
		ReportThreshold: cfg.ReportThreshold,
	})
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer func() {
		_ = database.Close()
	}()

	ctx := context.Background()
	firebaseApp, err := firebase.NewApp(ctx, nil)
	if err != nil {
		logger.Fatal("init firebase", zap.Error(err))
	}
	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		logger.Fatal("init firebase auth", zap.Error(err))
	}

	classifier := services.NewClassifier()
	broadcaster := services.NewBroadcaster(logger)

	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())
	if len(cfg.FEOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.FEOrigins
		corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
		engine.Use(cors.New(corsCfg))
	}

	root := engine.Group("")
	routes.AddHealthRoutes(root)
	routes.AddPostRoutes(root, database, authClient, classifier, broadcaster, logger)
	routes.AddVoteRoutes(root, database, authClient, logger)
	routes.AddReportRoutes(root, database, authClient, logger)
	routes.AddCommentRoutes(root, database, authClient, classifier, logger)
	routes.AddFeedRoutes(root, database, authClient, logger)
	routes.AddUserRoutes(root, database, authClient, logger)
	routes.AddAdminRoutes(root, database, authClient, broadcaster, logger)
	routes.AddEventRoutes(root, broadcaster)

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := engine.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
