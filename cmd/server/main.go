package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ekrsw/knowledge/internal/blacklist"
	"github.com/ekrsw/knowledge/internal/config"
	"github.com/ekrsw/knowledge/internal/es"
	"github.com/ekrsw/knowledge/internal/handlers"
	"github.com/ekrsw/knowledge/internal/logging"
	mwauth "github.com/ekrsw/knowledge/internal/middleware/auth"
	"github.com/ekrsw/knowledge/internal/mykafka"
	"github.com/ekrsw/knowledge/internal/refresh"
	"github.com/ekrsw/knowledge/internal/repo"
	"github.com/ekrsw/knowledge/internal/service"
	"github.com/ekrsw/knowledge/internal/tokens"
	httpserver "github.com/ekrsw/knowledge/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)
	slog.SetDefault(logger)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	var producer *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	}

	r := &repo.Repo{DB: db}
	issuer := &tokens.Issuer{Secret: []byte(configuration.JWT_SECRET), TTL: configuration.AccessTTL}
	refreshStore := &refresh.Store{DB: db, TTL: configuration.RefreshTTL}
	blacklistStore := &blacklist.Store{DB: db, Enabled: configuration.BlacklistEnabled}

	authService := &service.AuthService{
		Repo:      r,
		Issuer:    issuer,
		Refresh:   refreshStore,
		Blacklist: blacklistStore,
		Producer:  producer,
	}

	articleService := &service.ArticleService{Repo: r, Index: "articles"}
	if configuration.ES_URL != "" {
		client, err := es.NewClient(configuration)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		articleService.ES = client
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := logging.IntoContext(c.Request().Context(), logger)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})

	deps := httpserver.Deps{
		DB:               db,
		AuthMiddleware:   &mwauth.Middleware{Auth: authService},
		AuthHandler:      &handlers.AuthHandler{Auth: authService},
		UserHandler:      &handlers.UserHandler{Users: &service.UserService{Repo: r}},
		ArticleHandler:   &handlers.ArticleHandler{Articles: articleService},
		KnowledgeHandler: &handlers.KnowledgeHandler{Knowledge: &service.KnowledgeService{Repo: r, Producer: producer}},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}
