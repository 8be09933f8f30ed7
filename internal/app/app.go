package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"run_the_numbers/internal/config"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	ServiceProvider *ServiceProvider
}

func NewApp() *App {
	return &App{}
}

func (s *App) initServiceProvider(ctx context.Context) {
	s.ServiceProvider = newServiceProvider(ctx)
}

// Run блокируется до SIGINT/SIGTERM. При остановке новые запросы не принимаются,
// идущие раздачи доигрываются и сохраняются.
func (s *App) Run() error {
	// Загрузка .env, в контейнере переменные приходят из окружения
	err := config.Load(".env")
	if err != nil {
		log.Printf("Error loading .env file: %v", err)
	}

	// Контекст приложения отменяется по сигналу остановки
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s.initServiceProvider(ctx)
	sp := s.ServiceProvider
	logger := sp.Logger()
	defer func() { _ = logger.Sync() }()

	// HTTP сервер
	srv := &http.Server{
		Addr:              sp.HTTPCfg().Address(),
		Handler:           sp.Router(ctx),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Ждём сигнала или падения сервера
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-errCh:
		logger.Error("server failed", zap.Error(err))
	}

	s.shutdown(srv)
	return err
}

func (s *App) shutdown(srv *http.Server) {
	sp := s.ServiceProvider
	logger := sp.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Сначала перестаём принимать запросы
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	// Закрываем websocket соединения и ждём расчёта идущих раздач
	sp.WSHub(ctx).Close()
	sp.TableService(ctx).Close()

	// Внешние подключения закрываются последними

	if err := sp.HandPublisher().Close(); err != nil {
		logger.Warn("close publisher", zap.Error(err))
	}
	if rdb := sp.RedisClient(ctx); rdb != nil {
		_ = rdb.Close()
	}
	sp.DBClient(ctx).Close()
}
