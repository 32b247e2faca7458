package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sourcegraph/conc"

	server "github.com/kshimizu/taskboard/internal"
	"github.com/kshimizu/taskboard/internal/board"
	"github.com/kshimizu/taskboard/internal/config"
	"github.com/kshimizu/taskboard/internal/eventbus"
	"github.com/kshimizu/taskboard/internal/project"
	projectrepo "github.com/kshimizu/taskboard/internal/project/repositoryimpl"
	"github.com/kshimizu/taskboard/internal/pushnotification"
	pushsubrepo "github.com/kshimizu/taskboard/internal/pushsubscription/repositoryimpl"
	"github.com/kshimizu/taskboard/internal/stage"
	stagerepo "github.com/kshimizu/taskboard/internal/stage/repositoryimpl"
	"github.com/kshimizu/taskboard/internal/workitem"
	workitemrepo "github.com/kshimizu/taskboard/internal/workitem/repositoryimpl"
	"github.com/kshimizu/taskboard/pkg/clog"
	"github.com/kshimizu/taskboard/pkg/storage"
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}

	// Setup logger
	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewHTTPTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	// Setup storage
	var store storage.Storage
	var localStore *storage.LocalStorage
	switch env.StorageEnv.Type {
	case "s3":
		store, err = storage.NewS3Storage(context.Background(), env.StorageEnv.S3Bucket, env.StorageEnv.S3Prefix, env.StorageEnv.S3Region)
		if err != nil {
			slog.Error("failed to create S3 storage", "error", err)
			os.Exit(1)
		}
	default:
		localStore, err = storage.NewLocalStorage(env.StorageEnv.BaseDir)
		if err != nil {
			slog.Error("failed to create local storage", "error", err)
			os.Exit(1)
		}
		store = localStore
	}

	// Setup event bus
	bus := eventbus.New()

	// Setup repositories
	projectRepo := projectrepo.NewYAMLRepository(store)
	stageRepo := stagerepo.NewYAMLRepository(store)
	taskRepo := workitemrepo.NewYAMLRepository(store)
	pushSubRepo := pushsubrepo.NewYAMLRepository(store)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// Load the stage catalog and build the work-item index up front so the
	// first request sees a consistent board.
	catalog := stage.NewCatalog(stageRepo)
	if err := catalog.Load(ctx); err != nil {
		slog.Error("failed to load stage catalog", "error", err)
		os.Exit(1)
	}
	index := workitem.NewIndex()
	if err := index.Rebuild(ctx, taskRepo); err != nil {
		slog.Error("failed to build work-item index", "error", err)
		os.Exit(1)
	}

	// Setup board engine
	guard := board.NewDeletionGuard(index)
	coordinator := board.NewCoordinator(catalog, index, taskRepo, guard, bus)
	var mapper board.ProgressMapper

	// Setup servers
	projectServer := project.NewServer(projectRepo)
	stageServer := stage.NewServer(catalog, coordinator, bus)
	taskServer := workitem.NewServer(taskRepo, index, catalog, projectRepo, func(stageKey string) int {
		pct, _ := mapper.Lookup(stageKey)
		return pct
	}, bus)
	boardServer := board.NewServer(catalog, index, coordinator)

	// Setup push notification
	vapidEnv := config.VAPIDEnvFromEnv(env)
	pushSender := pushnotification.NewSender(vapidEnv, pushSubRepo)
	pushNotificationServer := pushnotification.NewServer(vapidEnv, pushSubRepo, pushSender)
	pushDispatcher := pushnotification.NewDispatcher(bus, taskRepo, catalog, pushSender)

	srv := server.NewServer(
		config.BaseEnvFromEnv(env),
		projectServer,
		stageServer,
		taskServer,
		boardServer,
		pushNotificationServer,
	)

	var wg conc.WaitGroup
	defer wg.Wait()

	wg.Go(func() { pushDispatcher.Start(ctx) })

	// Local records can be edited by hand; keep the index honest.
	if localStore != nil {
		watcher := workitem.NewWatcher(filepath.Join(localStore.BasePath(), workitemrepo.TasksPrefix), taskRepo, index)
		wg.Go(func() {
			if err := watcher.Start(ctx); err != nil {
				slog.Error("work-item watcher error", "error", err)
			}
		})
	}

	wg.Go(func() {
		if err := srv.ListenAndServe(ctx); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	})

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
