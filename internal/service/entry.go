package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/ToucheSir/svblog/internal/domain"
	"github.com/ToucheSir/svblog/internal/repository"
)

// EntryService 负责博客文章的发布、列表和删除。
type EntryService struct {
	entryRepo repository.EntryRepository
}

// NewEntryService 创建 EntryService 实例。
func NewEntryService(entryRepo repository.EntryRepository) *EntryService {
	if entryRepo == nil {
		panic("EntryRepository cannot be nil for EntryService")
	}
	return &EntryService{entryRepo: entryRepo}
}

// Post 发布一篇文章。正文在入库前经过 Urlify 处理。
func (s *EntryService) Post(ctx context.Context, owner, title, text string) (*domain.Entry, error) {
	logCtx := logrus.WithFields(logrus.Fields{"owner": owner, "title": title})

	entry := &domain.Entry{
		UserID: owner,
		Title:  title,
		Text:   Urlify(text),
	}
	if err := s.entryRepo.Insert(ctx, entry); err != nil {
		logCtx.WithError(err).Error("Failed to insert entry")
		return nil, ErrInternalServer
	}

	logCtx.WithField("entry_id", entry.ID).Info("Entry posted")
	return entry, nil
}

// List 返回全部文章，最新的排在最前。
// 存储层按插入顺序返回，这里反转为展示顺序。
func (s *EntryService) List(ctx context.Context) ([]domain.Entry, error) {
	entries, err := s.entryRepo.ListAll(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to list entries")
		return nil, ErrInternalServer
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// Delete 删除指定文章。
// 只有按 ID 和所属人同时匹配才算找到；他人的文章表现为不存在。
func (s *EntryService) Delete(ctx context.Context, owner string, id uint) error {
	logCtx := logrus.WithFields(logrus.Fields{"owner": owner, "entry_id": id})

	entry, err := s.entryRepo.FindOwned(ctx, id, owner)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			logCtx.Warn("Entry delete rejected: no matching entry for owner")
			return ErrEntryNotFound
		}
		logCtx.WithError(err).Error("Database error finding entry for delete")
		return ErrInternalServer
	}

	if err := s.entryRepo.Delete(ctx, entry.ID); err != nil {
		logCtx.WithError(err).Error("Failed to delete entry")
		return ErrInternalServer
	}

	logCtx.Info("Entry deleted")
	return nil
}
