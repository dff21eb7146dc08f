package main

import (
    "context"
    "errors"
    "log"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/joho/godotenv"
    "go.uber.org/zap"

    appcfg "github.com/park285/chess-arena/internal/config"
    "github.com/park285/chess-arena/internal/arena"
    "github.com/park285/chess-arena/internal/archive"
    "github.com/park285/chess-arena/internal/httpapi"
    "github.com/park285/chess-arena/internal/leaderboard"
    "github.com/park285/chess-arena/internal/msgcat"
    "github.com/park285/chess-arena/internal/obslog"
    "github.com/park285/chess-arena/internal/ws"
)

func main() {
    _ = godotenv.Load()

    cfg, err := appcfg.Load()
    if err != nil {
        log.Fatalf("config error: %v", err)
    }
    if err := obslog.InitFromEnv(); err != nil {
        log.Fatalf("logger init error: %v", err)
    }
    defer obslog.Sync()

    msgs, err := msgcat.New(cfg.MessageOverrideDir)
    if err != nil {
        log.Fatalf("message catalog error: %v", err)
    }

    var recorders []arena.ResultRecorder

    var repo *archive.Repository
    if cfg.DatabaseURL != "" {
        repo, err = archive.NewRepository(cfg.DatabaseURL)
        if err != nil {
            log.Fatalf("archive init error: %v", err)
        }
        defer repo.Close()
        recorders = append(recorders, repo)
    } else {
        obslog.L().Info("archive_disabled_no_database_url")
    }

    var board *leaderboard.Store
    if cfg.RedisURL != "" {
        board, err = leaderboard.Open(cfg.RedisURL)
        if err != nil {
            log.Fatalf("leaderboard init error: %v", err)
        }
        defer board.Close()
        recorders = append(recorders, board)
    } else {
        obslog.L().Info("leaderboard_disabled_no_redis_url")
    }

    hub := ws.NewHub()
    coord := arena.NewCoordinator(arena.Options{
        Send:          hub,
        Messages:      msgs,
        ResetDelay:    cfg.ResetDelay,
        SweepInterval: cfg.SweepInterval,
        Recorders:     recorders,
    })

    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()
    go coord.Run(ctx)

    srv := &http.Server{
        Addr: cfg.ListenAddr,
        Handler: httpapi.SetupRoutes(httpapi.Deps{
            Hub:            hub,
            Coordinator:    coord,
            Messages:       msgs,
            Leaderboard:    board,
            AllowedOrigins: cfg.AllowedOrigins,
        }),
        ReadHeaderTimeout: 10 * time.Second,
    }

    go func() {
        obslog.L().Info("server_listening", zap.String("addr", cfg.ListenAddr))
        if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
            obslog.L().Error("server_failed", zap.Error(err))
            stop()
        }
    }()

    <-ctx.Done()
    obslog.L().Info("shutting_down")

    shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := srv.Shutdown(shutdownCtx); err != nil {
        obslog.L().Warn("shutdown_incomplete", zap.Error(err))
        os.Exit(1)
    }
}
