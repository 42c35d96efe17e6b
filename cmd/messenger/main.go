package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/capiorg/backend/internal/api"
	"github.com/capiorg/backend/internal/auth"
	"github.com/capiorg/backend/internal/config"
	"github.com/capiorg/backend/internal/database"
	"github.com/capiorg/backend/internal/events"
	"github.com/capiorg/backend/internal/logger"
	"github.com/capiorg/backend/internal/repository"
	"github.com/capiorg/backend/internal/service"
	"github.com/capiorg/backend/internal/ws"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	root := &cobra.Command{
		Use:          "messenger",
		Short:        "Messaging-service backend",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "path to config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP/WS server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cfgPath)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply the database schema",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate(cfgPath)
			},
		},
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func migrate(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	db, err := database.NewPostgres(cfg.Postgres)
	if err != nil {
		return err
	}
	return database.Migrate(db)
}

func serve(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	log, err := logger.New(logger.Config{Development: cfg.Env != "production"})
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Postgres)
	if err != nil {
		return err
	}
	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go database.WatchPool(ctx, db)

	users := repository.NewUserRepository(db)
	convs := repository.NewConversationRepository(db)
	att := repository.NewAttachmentRepository(db)
	msgs := repository.NewMessageRepository(db, att)

	pres := &service.Presenter{FilesDomain: cfg.Files.Domain}
	pub := events.NewRedisPublisher(rdb, log)
	stream := events.NewStreamProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer stream.Close() //nolint:errcheck

	chatSvc := service.NewChatService(convs, users, pres, log)
	msgSvc := service.NewMessageService(msgs, convs, users, att, pub, stream, pres, log)
	userSvc := service.NewUserService(users, pres, log)

	userCache := auth.NewUserCache(rdb, cfg.UserCacheTTL, users.GetByID)
	authn := auth.NewCachedAuthenticator(auth.NewJWTAuthenticator(cfg.JWT.Secret), userCache)

	hub := ws.NewHub()
	wsrv := ws.NewServer(hub, rdb, userSvc, log)
	go wsrv.Run(ctx)

	app := api.NewServer(api.Options{
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		RequestTimeout: cfg.AcquireTimeout,
	}, authn, chatSvc, msgSvc, userSvc, wsrv, log)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		log.Infow("listening", "addr", addr)
		errCh <- app.Listen(addr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		return app.Shutdown()
	case err := <-errCh:
		return err
	}
}
