package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/collab-hub/config"
	chat_handler "github.com/xenn00/collab-hub/internal/handlers/chat-handler"
	hub_handler "github.com/xenn00/collab-hub/internal/handlers/hub-handler"
	task_handler "github.com/xenn00/collab-hub/internal/handlers/task-handler"
	"github.com/xenn00/collab-hub/internal/queue"
	chat_repo "github.com/xenn00/collab-hub/internal/repo/chat"
	project_repo "github.com/xenn00/collab-hub/internal/repo/project"
	user_repo "github.com/xenn00/collab-hub/internal/repo/user"
	"github.com/xenn00/collab-hub/internal/routers"
	chat_service "github.com/xenn00/collab-hub/internal/use-case/chat-case"
	"github.com/xenn00/collab-hub/internal/websocket"
	"github.com/xenn00/collab-hub/internal/worker"
	worker_service "github.com/xenn00/collab-hub/internal/worker/worker-service"
	"github.com/xenn00/collab-hub/state"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	conf := config.Conf

	if level, err := zerolog.ParseLevel(conf.App.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	appState, err := state.InitAppState(ctx, stop)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application state")
	}
	defer appState.Close()

	userRepo := user_repo.NewUserRepo(appState, conf.HUB.IdentityCacheTTL)
	projectRepo := project_repo.NewProjectRepo(appState)
	chatService := chat_service.NewChatService(chat_repo.NewChatRepo(appState), userRepo, projectRepo)

	hubCfg := websocket.HubConfig{
		SendBuffer:       conf.HUB.SendBuffer,
		PruneInterval:    conf.HUB.PruneInterval,
		ChatWriteTimeout: conf.HUB.ChatWriteTimeout,
		Chat:             chatService,
	}
	roomAuthorizer := websocket.NewProjectRoomAuthorizer(projectRepo)
	if conf.HUB.AuthorizeJoins {
		hubCfg.Authorizer = roomAuthorizer
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	wsHub := websocket.NewHub(hubCfg)
	go wsHub.Run(hubCtx)
	log.Info().Msg("Websocket hub initialized")

	wsHandler := websocket.NewWebSocketHandler(hubCtx, wsHub,
		websocket.NewIdentityResolver(appState.JwtSecret.Public, userRepo),
		websocket.HandlerConfig{
			AllowedOrigins:   conf.HUB.AllowedOrigins,
			MaxConnections:   conf.HUB.MaxConnections,
			ConnectionsPerIP: conf.HUB.ConnectionsPerIP,
		})

	dlqStore := worker.NewMongoDLQStore(appState.Database())
	alerter := worker_service.NewDeadLetterAlerter(worker_service.MailConfig{
		Host:     conf.MAILTRAP.SMTPHost,
		Port:     conf.MAILTRAP.SMTPPort,
		Username: conf.MAILTRAP.Username,
		Password: conf.MAILTRAP.Password,
		From:     conf.MAILTRAP.From,
		To:       conf.MAILTRAP.TO,
	}, 0)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	workerPool := worker.NewWorkerPool(appState.Redis, conf.WORKER.Workers, worker.NewDispatcher(wsHub), dlqStore, alerter)
	if conf.WORKER.PollInterval > 0 {
		workerPool.PollInterval = conf.WORKER.PollInterval
	}
	workerPool.Start(workerCtx)
	workerPool.StartDLQWorker(workerCtx)

	r := routers.NewRouter(routers.Handlers{
		PublicKey: appState.JwtSecret.Public,
		WebSocket: wsHandler,
		Hub:       hub_handler.NewHubHandler(wsHub, dlqStore, roomAuthorizer, wsHandler),
		Chat:      chat_handler.NewChatHandler(chatService),
		Task:      task_handler.NewTaskHandler(queue.NewProducer(appState.Redis), chatService, conf.WORKER.MaxRetry),
	})

	server := &http.Server{
		Addr:              conf.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Msgf("Starting server on http://localhost%s", conf.App.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("ListenAndServe failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutdown initiated...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// hijacked websocket connections are not tracked by Shutdown; the hub
	// closes them when it stops
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	stopWorkers()
	workerPool.Wait()
	stopHub()
	<-wsHub.Done()
	log.Info().Msg("Server exited gracefully.")
}
