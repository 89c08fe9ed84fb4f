// Package storage 提供上传文件字节的磁盘存储。
// 文件名在进入本层之前必须已经过清洗，本层只处理存储目录内的平面命名空间。
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DiskStore 将上传文件保存在单一目录下。
type DiskStore struct {
	dir string
}

// NewDiskStore 创建 DiskStore 实例，目录不存在时自动创建。
func NewDiskStore(dir string) (*DiskStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage directory must be set")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory '%s': %w", dir, err)
	}
	return &DiskStore{dir: dir}, nil
}

// Path 返回文件在磁盘上的完整路径。
func (s *DiskStore) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Exists 报告指定文件是否已存在。
func (s *DiskStore) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

// Save 将 src 的内容写入指定文件。
func (s *DiskStore) Save(name string, src io.Reader) error {
	dst, err := os.Create(s.Path(name))
	if err != nil {
		return fmt.Errorf("create file '%s': %w", name, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("write file '%s': %w", name, err)
	}
	return nil
}

// Remove 删除指定文件。文件不存在不视为错误：
// 数据库记录才是文件存在性的权威依据。
func (s *DiskStore) Remove(name string) error {
	err := os.Remove(s.Path(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file '%s': %w", name, err)
	}
	return nil
}

// List 返回存储目录下的全部文件名，供后台清理任务扫描。
func (s *DiskStore) List() ([]string, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read storage directory: %w", err)
	}
	names := make([]string, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		names = append(names, de.Name())
	}
	return names, nil
}
