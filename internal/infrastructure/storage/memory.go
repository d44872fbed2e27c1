package storage

import (
	"sync"

	"github.com/xiebiao/reviewclub/internal/domain/book"
)

// MemoryImageStore 内存封面存储
// 测试与本地演示用,并发安全
type MemoryImageStore struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemoryImageStore 创建内存封面存储
func NewMemoryImageStore() *MemoryImageStore {
	return &MemoryImageStore{files: make(map[string][]byte)}
}

// Exists 判断键是否存在
func (s *MemoryImageStore) Exists(key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.files[key]
	return ok, nil
}

// Write 写入字节(覆盖同名键)
func (s *MemoryImageStore) Write(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.files[key] = cp
	return nil
}

// Delete 删除键(键不存在不是错误)
func (s *MemoryImageStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, key)
	return nil
}

// Keys 返回当前全部键(测试断言用)
func (s *MemoryImageStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.files))
	for k := range s.files {
		keys = append(keys, k)
	}
	return keys
}

var _ book.ImageStore = (*MemoryImageStore)(nil)
