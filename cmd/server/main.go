package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/sisclinica/identity-service/internal/auth"
	"github.com/sisclinica/identity-service/internal/config"
	"github.com/sisclinica/identity-service/internal/database"
	"github.com/sisclinica/identity-service/internal/handler"
	"github.com/sisclinica/identity-service/internal/queue"
	"github.com/sisclinica/identity-service/internal/repository"
	"github.com/sisclinica/identity-service/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)
	codec := auth.NewTokenCodec(cfg.JWTSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays)

	// The deny-list is shared through Redis when configured, otherwise it
	// is local to this process and each instance keeps its own.
	var blacklist auth.Blacklist = auth.NewMemoryBlacklist()
	if rdb := config.NewRedisClient(); rdb != nil {
		blacklist = auth.NewRedisBlacklist(rdb)
		log.Printf("revocation store: redis")
	} else {
		log.Printf("revocation store: in-memory (process-local)")
	}

	svc := auth.NewService(users, roles, codec, blacklist)
	authHandler := handler.NewAuthHandler(svc, users, roles)
	userHandler := handler.NewUserHandler(users, roles, cfg.BcryptCost)

	go queue.StartAuthConsumer()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler)
	router.RegisterUsers(e, authHandler, userHandler)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
