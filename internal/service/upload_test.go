package service_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ToucheSir/svblog/internal/domain"
	"github.com/ToucheSir/svblog/internal/repository"
	"github.com/ToucheSir/svblog/internal/repository/mocks"
	"github.com/ToucheSir/svblog/internal/service"
)

// memStore 是 service.BlobStore 的内存实现，只用于测试。
type memStore struct {
	files map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{files: make(map[string][]byte)}
}

func (m *memStore) Path(name string) string {
	return filepath.Join("/mem", name)
}

func (m *memStore) Exists(name string) bool {
	_, ok := m.files[name]
	return ok
}

func (m *memStore) Save(name string, src io.Reader) error {
	data, err := io.ReadAll(src)
	if err != nil {
		return err
	}
	m.files[name] = data
	return nil
}

func (m *memStore) Remove(name string) error {
	if _, ok := m.files[name]; !ok {
		return os.ErrNotExist
	}
	delete(m.files, name)
	return nil
}

func (m *memStore) List() ([]string, error) {
	names := make([]string, 0, len(m.files))
	for name := range m.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// --- 测试 Store 方法 ---

func TestUploadService_Store_Success(t *testing.T) {
	// Arrange
	mockUploadRepo := new(mocks.UploadRepository)
	store := newMemStore()
	uploadService := service.NewUploadService(mockUploadRepo, store)
	ctx := context.Background()

	mockUploadRepo.On("Insert", ctx, mock.MatchedBy(func(upload *domain.Upload) bool {
		return upload.UserID == "alice" && upload.Filename == "photo.png" && upload.Filetype == "png"
	})).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Upload).ID = 1
		}).
		Return(nil).
		Once()

	// Act
	upload, err := uploadService.Store(ctx, "alice", "photo.png", strings.NewReader("png-bytes"))

	// Assert
	assert.NoError(t, err)
	require.NotNil(t, upload)
	assert.Equal(t, "photo.png", upload.Filename)
	assert.Equal(t, []byte("png-bytes"), store.files["photo.png"], "文件字节应已落盘")

	mockUploadRepo.AssertExpectations(t)
}

func TestUploadService_Store_CollisionGetsNumberedSuffix(t *testing.T) {
	// Arrange: 第一个 photo.png 已存在
	mockUploadRepo := new(mocks.UploadRepository)
	store := newMemStore()
	store.files["photo.png"] = []byte("original")
	uploadService := service.NewUploadService(mockUploadRepo, store)
	ctx := context.Background()

	mockUploadRepo.On("Insert", ctx, mock.AnythingOfType("*domain.Upload")).Return(nil).Once()

	// Act
	upload, err := uploadService.Store(ctx, "bob", "photo.png", strings.NewReader("second"))

	// Assert: 新文件得到 (1) 后缀，原文件未被覆盖
	assert.NoError(t, err)
	require.NotNil(t, upload)
	assert.Equal(t, "photo(1).png", upload.Filename)
	assert.Equal(t, []byte("original"), store.files["photo.png"])
	assert.Equal(t, []byte("second"), store.files["photo(1).png"])
}

func TestUploadService_Store_CollisionScanSkipsTakenSuffixes(t *testing.T) {
	// Arrange: photo.png 和 photo(1).png 都已占用
	mockUploadRepo := new(mocks.UploadRepository)
	store := newMemStore()
	store.files["photo.png"] = []byte("a")
	store.files["photo(1).png"] = []byte("b")
	uploadService := service.NewUploadService(mockUploadRepo, store)
	ctx := context.Background()

	mockUploadRepo.On("Insert", ctx, mock.AnythingOfType("*domain.Upload")).Return(nil).Once()

	// Act
	upload, err := uploadService.Store(ctx, "bob", "photo.png", strings.NewReader("c"))

	// Assert
	assert.NoError(t, err)
	require.NotNil(t, upload)
	assert.Equal(t, "photo(2).png", upload.Filename)
}

func TestUploadService_Store_RejectsDisallowedType(t *testing.T) {
	// Arrange
	mockUploadRepo := new(mocks.UploadRepository)
	store := newMemStore()
	uploadService := service.NewUploadService(mockUploadRepo, store)
	ctx := context.Background()

	for _, bad := range []string{"script.exe", "noextension", "archive.tar.xz", "shell.sh"} {
		// Act
		upload, err := uploadService.Store(ctx, "alice", bad, bytes.NewReader([]byte("x")))

		// Assert
		require.Error(t, err, "文件 %q 应被拒绝", bad)
		assert.True(t, errors.Is(err, service.ErrInvalidFile))
		assert.Nil(t, upload)
	}

	assert.Empty(t, store.files, "被拒绝的文件不应有任何落盘")
	mockUploadRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestUploadService_Store_ExtensionCaseInsensitive(t *testing.T) {
	// Arrange
	mockUploadRepo := new(mocks.UploadRepository)
	store := newMemStore()
	uploadService := service.NewUploadService(mockUploadRepo, store)
	ctx := context.Background()

	mockUploadRepo.On("Insert", ctx, mock.AnythingOfType("*domain.Upload")).Return(nil).Once()

	// Act
	upload, err := uploadService.Store(ctx, "alice", "Scan.PDF", strings.NewReader("pdf"))

	// Assert: 扩展名归一为小写
	assert.NoError(t, err)
	require.NotNil(t, upload)
	assert.Equal(t, "scan.pdf", upload.Filename)
	assert.Equal(t, "pdf", upload.Filetype)
}

func TestUploadService_Store_PathTraversalStripped(t *testing.T) {
	// Arrange
	mockUploadRepo := new(mocks.UploadRepository)
	store := newMemStore()
	uploadService := service.NewUploadService(mockUploadRepo, store)
	ctx := context.Background()

	mockUploadRepo.On("Insert", ctx, mock.AnythingOfType("*domain.Upload")).Return(nil).Once()

	// Act
	upload, err := uploadService.Store(ctx, "alice", "../../etc/passwd.png", strings.NewReader("x"))

	// Assert: 目录成分被剥掉，存储键不含路径分隔符
	assert.NoError(t, err)
	require.NotNil(t, upload)
	assert.NotContains(t, upload.Filename, "/")
	assert.NotContains(t, upload.Filename, "..")
	assert.True(t, strings.HasSuffix(upload.Filename, ".png"))
}

func TestUploadService_Store_UnsafeBaseNameSlugged(t *testing.T) {
	// Arrange
	mockUploadRepo := new(mocks.UploadRepository)
	store := newMemStore()
	uploadService := service.NewUploadService(mockUploadRepo, store)
	ctx := context.Background()

	mockUploadRepo.On("Insert", ctx, mock.AnythingOfType("*domain.Upload")).Return(nil).Once()

	// Act
	upload, err := uploadService.Store(ctx, "alice", "my summer photo!.jpg", strings.NewReader("x"))

	// Assert
	assert.NoError(t, err)
	require.NotNil(t, upload)
	assert.Equal(t, "my-summer-photo.jpg", upload.Filename)
}

func TestUploadService_Store_InsertFailureLeavesBytesForReaper(t *testing.T) {
	// Arrange: 字节已落盘后记录插入失败
	mockUploadRepo := new(mocks.UploadRepository)
	store := newMemStore()
	uploadService := service.NewUploadService(mockUploadRepo, store)
	ctx := context.Background()

	mockUploadRepo.On("Insert", ctx, mock.AnythingOfType("*domain.Upload")).
		Return(errors.New("database connection lost")).
		Once()

	// Act
	upload, err := uploadService.Store(ctx, "alice", "photo.png", strings.NewReader("x"))

	// Assert: 返回错误，孤儿字节留在存储中等待后台清理
	require.Error(t, err)
	assert.Nil(t, upload)
	assert.True(t, errors.Is(err, service.ErrInternalServer))
	assert.True(t, store.Exists("photo.png"))
}

// --- 测试 Delete 方法 ---

func TestUploadService_Delete_Success(t *testing.T) {
	// Arrange
	mockUploadRepo := new(mocks.UploadRepository)
	store := newMemStore()
	store.files["photo.png"] = []byte("x")
	uploadService := service.NewUploadService(mockUploadRepo, store)
	ctx := context.Background()

	owned := &domain.Upload{ID: 3, UserID: "alice", Filename: "photo.png", Filetype: "png"}
	mockUploadRepo.On("FindOwned", ctx, "photo.png", "alice").Return(owned, nil).Once()
	mockUploadRepo.On("Delete", ctx, uint(3)).Return(nil).Once()

	// Act
	err := uploadService.Delete(ctx, "alice", "photo.png")

	// Assert
	assert.NoError(t, err)
	assert.False(t, store.Exists("photo.png"), "磁盘文件应已删除")
	mockUploadRepo.AssertExpectations(t)
}

func TestUploadService_Delete_NotOwner(t *testing.T) {
	// Arrange: 他人的文件表现为不存在
	mockUploadRepo := new(mocks.UploadRepository)
	store := newMemStore()
	store.files["photo.png"] = []byte("x")
	uploadService := service.NewUploadService(mockUploadRepo, store)
	ctx := context.Background()

	mockUploadRepo.On("FindOwned", ctx, "photo.png", "mallory").
		Return(nil, repository.ErrUploadNotFound).
		Once()

	// Act
	err := uploadService.Delete(ctx, "mallory", "photo.png")

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrUploadNotFound))
	assert.True(t, store.Exists("photo.png"), "他人的文件必须原样保留")

	mockUploadRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// --- 测试 Path 方法 ---

func TestUploadService_Path_StripsDirectoryComponents(t *testing.T) {
	// Arrange
	mockUploadRepo := new(mocks.UploadRepository)
	uploadService := service.NewUploadService(mockUploadRepo, newMemStore())

	// Act & Assert: 下载路径永远落在存储目录内
	assert.Equal(t, filepath.Join("/mem", "photo.png"), uploadService.Path("photo.png"))
	assert.Equal(t, filepath.Join("/mem", "passwd"), uploadService.Path("../../etc/passwd"))
}
