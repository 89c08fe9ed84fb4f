package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/ToucheSir/svblog/internal/repository"
	"github.com/ToucheSir/svblog/internal/service"
)

// UploadReapHandler 处理孤儿文件清理任务。
// 上传流程先落盘再写记录，进程在两步之间中断会留下没有记录的文件；
// 删除流程反之不会留孤儿 (先删文件且容忍缺失)。本任务回收前者。
type UploadReapHandler struct {
	uploadRepo repository.UploadRepository
	store      service.BlobStore
}

// NewUploadReapHandler 创建 Handler 实例。
func NewUploadReapHandler(uploadRepo repository.UploadRepository, store service.BlobStore) *UploadReapHandler {
	return &UploadReapHandler{uploadRepo: uploadRepo, store: store}
}

// ProcessTask 实现 asynq.Handler 接口。
func (h *UploadReapHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := logrus.WithField("task_type", t.Type())
	logCtx.Info("Scanning storage for orphaned upload files...")

	names, err := h.store.List()
	if err != nil {
		return fmt.Errorf("list stored files: %w", err)
	}

	reaped := 0
	for _, name := range names {
		exists, err := h.uploadRepo.ExistsByFilename(ctx, name)
		if err != nil {
			// 数据库暂时不可用时让 asynq 重试整个任务
			return fmt.Errorf("check upload record for '%s': %w", name, err)
		}
		if exists {
			continue
		}
		if err := h.store.Remove(name); err != nil {
			logCtx.WithError(err).WithField("filename", name).Warn("Failed to remove orphaned file")
			continue
		}
		reaped++
		logCtx.WithField("filename", name).Info("Removed orphaned file")
	}

	logCtx.WithFields(logrus.Fields{"scanned": len(names), "reaped": reaped}).Info("Orphan reap completed")
	return nil
}
