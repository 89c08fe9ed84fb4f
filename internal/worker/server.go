// Package worker 运行后台任务处理器 (asynq)。
package worker

import (
	"context"
	"errors"
	"net/http"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/ToucheSir/svblog/internal/repository"
	"github.com/ToucheSir/svblog/internal/service"
	"github.com/ToucheSir/svblog/internal/tasks"
)

// WorkerServer 封装 asynq Worker Server 的启动和关闭逻辑。
type WorkerServer struct {
	server     *asynq.Server
	log        *logrus.Entry
	uploadRepo repository.UploadRepository
	store      service.BlobStore
}

// NewWorkerServer 创建 WorkerServer 实例。
func NewWorkerServer(redisOpt asynq.RedisClientOpt, uploadRepo repository.UploadRepository, store service.BlobStore, logger *logrus.Logger) *WorkerServer {
	logEntry := logger.WithField("component", "worker_server")

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 2, // 清理任务量很小，无需更多并发
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retryCount, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logEntry.WithFields(logrus.Fields{
					"task_type": task.Type(),
					"retries":   retryCount,
					"max_retry": maxRetry,
				}).Errorf("Task failed: %v", err)
			}),
		},
	)

	return &WorkerServer{
		server:     server,
		log:        logEntry,
		uploadRepo: uploadRepo,
		store:      store,
	}
}

// Start 运行 Worker Server。应在单独的 goroutine 中调用。
func (ws *WorkerServer) Start() {
	mux := asynq.NewServeMux()

	reapHandler := NewUploadReapHandler(ws.uploadRepo, ws.store)
	mux.HandleFunc(tasks.TypeUploadReap, reapHandler.ProcessTask)

	ws.log.Info("Worker server starting...")
	if err := ws.server.Run(mux); err != nil {
		if !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, asynq.ErrServerClosed) {
			ws.log.Fatalf("Could not run worker server: %v", err)
		} else {
			ws.log.Info("Worker server stopped.")
		}
	}
}

// Shutdown 优雅地关闭 Worker Server。
func (ws *WorkerServer) Shutdown() {
	ws.log.Info("Shutting down worker server...")
	ws.server.Shutdown()
	ws.log.Info("Worker server shut down complete.")
}
