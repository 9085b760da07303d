package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	//.envは無くてもよい（本番は環境変数で渡す）
	if err := godotenv.Load(); err != nil {
		log.Info(".env not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load config")
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Sale{},
		&model.AuditLog{},
	); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg, userRepo)
	stockUC := usecase.NewStockUsecase(productRepo, auditRepo)
	productUC := usecase.NewProductUsecase(productRepo)
	purchaseUC := usecase.NewPurchaseUsecase(txManager)

	//Handler生成
	h := server.Handlers{
		Auth:     handler.NewAuthHandler(authUC),
		Stock:    handler.NewStockHandler(stockUC),
		Product:  handler.NewProductHandler(productUC),
		Purchase: handler.NewPurchaseHandler(purchaseUC),
	}

	e := server.New(cfg, h)

	//Server起動
	addr := ":" + cfg.Port
	go func() {
		log.WithFields(log.Fields{"addr": addr}).Info("Starting server")
		if err := e.Start(addr); err != nil {
			log.WithError(err).Info("Server stopped")
		}
	}()

	//SIGINT/SIGTERMでgraceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}

	log.Info("Server exited")
}
