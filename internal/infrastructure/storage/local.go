package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xiebiao/reviewclub/internal/domain/book"
)

// LocalImageStore 本地磁盘封面存储
// 设计说明:
// 1. 实现domain/book定义的ImageStore接口
// 2. 键即文件名("{id}{ext}"),全部存放在root目录下
// 3. 键做了路径清洗,拒绝目录穿越("../"等)
type LocalImageStore struct {
	root string
}

// NewLocalImageStore 创建本地封面存储,目录不存在时自动创建
func NewLocalImageStore(root string) (*LocalImageStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("创建封面目录失败: %w", err)
	}
	return &LocalImageStore{root: root}, nil
}

// Exists 判断键是否存在
func (s *LocalImageStore) Exists(key string) (bool, error) {
	path, err := s.resolve(key)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("检查封面文件失败: %w", err)
	}

	return true, nil
}

// Write 写入字节(覆盖同名键)
// 先写临时文件再rename,避免读到写到一半的文件
func (s *LocalImageStore) Write(key string, data []byte) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("写入封面文件失败: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("写入封面文件失败: %w", err)
	}

	return nil
}

// Delete 删除键(键不存在不是错误,契约约定)
func (s *LocalImageStore) Delete(key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("删除封面文件失败: %w", err)
	}

	return nil
}

// resolve 键 → 绝对路径,拒绝目录穿越
func (s *LocalImageStore) resolve(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key != filepath.Base(key) {
		return "", fmt.Errorf("非法的封面存储键: %q", key)
	}
	return filepath.Join(s.root, key), nil
}

// 编译期接口断言
var _ book.ImageStore = (*LocalImageStore)(nil)
