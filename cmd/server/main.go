package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/brightline/agency-server/internal/config"
	"github.com/brightline/agency-server/internal/handler"
	"github.com/brightline/agency-server/internal/mailer"
	appmw "github.com/brightline/agency-server/internal/middleware"
	"github.com/brightline/agency-server/internal/model"
	"github.com/brightline/agency-server/internal/queue"
	"github.com/brightline/agency-server/internal/router"
	"github.com/brightline/agency-server/internal/service"
	"github.com/brightline/agency-server/internal/store"
	"github.com/brightline/agency-server/internal/store/memory"
	"github.com/brightline/agency-server/internal/store/mysql"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env always wins

	cfg := config.Load()

	st, err := openStore(cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}

	mail := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)

	auditSvc := service.NewAuditService(st)
	authSvc := service.NewAuthService(st, mail, cfg)
	orderSvc := service.NewOrderService(st, auditSvc)

	if err := bootstrapAdmin(cfg, authSvc, st); err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	rdb := config.NewRedisClient()
	limiter := appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterPublic(e, handler.NewPublicHandler(st))
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, authSvc, st), cfg.JWTSecret, limiter)
	router.RegisterCustomer(e, handler.NewCustomerHandler(st, orderSvc), cfg.JWTSecret)
	router.RegisterStaff(e, handler.NewStaffHandler(st, orderSvc, auditSvc, authSvc, mail), cfg.JWTSecret)

	// The queue consumer writes domain events to the activity log.
	// It runs only when a broker is configured and reconnects on its
	// own; the API never waits on it.
	if os.Getenv("RABBITMQ_URL") != "" || os.Getenv("AMQP_URL") != "" {
		go func() {
			if err := queue.StartConsumer(); err != nil {
				log.Printf("queue consumer stopped: %v", err)
			}
		}()
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// openStore selects the storage backend once at startup: a configured
// DB_HOST means MySQL, otherwise everything lives in memory.
func openStore(cfg config.Config) (store.Store, error) {
	if !cfg.UseDatabase() {
		log.Println("no DB_HOST configured, using in-memory store")
		ms := memory.New()
		if err := ms.Seed(context.Background()); err != nil {
			return nil, err
		}
		return ms, nil
	}

	db, err := mysql.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := mysql.Migrate(ctx, db); err != nil {
		return nil, err
	}
	s := mysql.New(db)
	if err := s.Seed(ctx); err != nil {
		return nil, err
	}
	log.Printf("connected to mysql at %s:%s/%s", cfg.DBHost, cfg.DBPort, cfg.DBName)
	return s, nil
}

// bootstrapAdmin creates the initial admin account from ADMIN_EMAIL /
// ADMIN_PASSWORD when no account with that email exists yet. Without
// the variables the deployment starts with customers only.
func bootstrapAdmin(cfg config.Config, auth *service.AuthService, st store.Store) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	existing, err := st.UserByEmail(ctx, service.NormalizeEmail(cfg.AdminEmail))
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	if _, err := auth.Register(ctx, "Administrator", cfg.AdminEmail, cfg.AdminPassword, model.RoleAdmin); err != nil {
		return err
	}
	log.Printf("bootstrap admin %s created", cfg.AdminEmail)
	return nil
}
