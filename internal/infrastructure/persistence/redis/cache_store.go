package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/reviewclub/internal/domain/book"
	"github.com/xiebiao/reviewclub/pkg/metrics"
)

// BookCacheStore 图书读取模型的Redis缓存
//
// 设计说明：
// 1. Cache-Aside（旁路缓存）：先查缓存，未命中再查数据库
// 2. 一致性策略：写操作（增删改、上传封面、审核书评）后删除缓存，
//    不做缓存更新——删除简单可靠，下次读取时重新加载
// 3. 缓存的是富化后的读取模型（含派生值），不是原始实体
type BookCacheStore struct {
	client    *redis.Client
	listTTL   time.Duration
	detailTTL time.Duration
}

// NewBookCacheStore 创建缓存存储实例
func NewBookCacheStore(client *redis.Client, listTTL, detailTTL time.Duration) *BookCacheStore {
	return &BookCacheStore{
		client:    client,
		listTTL:   listTTL,
		detailTTL: detailTTL,
	}
}

// GetBookDetail 获取图书详情缓存
// 缓存未命中返回(nil, nil)，调用方需要回源数据库
func (c *BookCacheStore) GetBookDetail(ctx context.Context, bookID uint) (*book.WithReviews, error) {
	val, err := c.client.Get(ctx, bookDetailKey(bookID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.IncCounterVec(metrics.CacheMissesTotal, map[string]string{"cache": "detail"})
			return nil, nil
		}
		return nil, fmt.Errorf("获取缓存失败: %w", err)
	}

	var detail book.WithReviews
	if err := json.Unmarshal([]byte(val), &detail); err != nil {
		return nil, fmt.Errorf("反序列化失败: %w", err)
	}

	metrics.IncCounterVec(metrics.CacheHitsTotal, map[string]string{"cache": "detail"})
	return &detail, nil
}

// SetBookDetail 设置图书详情缓存
func (c *BookCacheStore) SetBookDetail(ctx context.Context, detail *book.WithReviews) error {
	val, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("序列化失败: %w", err)
	}

	if err := c.client.Set(ctx, bookDetailKey(detail.ID), val, c.detailTTL).Err(); err != nil {
		return fmt.Errorf("设置缓存失败: %w", err)
	}

	return nil
}

// DeleteBookDetail 删除图书详情缓存
// 触发时机：更新图书、删除图书、上传封面、该书的书评增删改
func (c *BookCacheStore) DeleteBookDetail(ctx context.Context, bookID uint) error {
	if err := c.client.Del(ctx, bookDetailKey(bookID)).Err(); err != nil {
		return fmt.Errorf("删除缓存失败: %w", err)
	}

	return nil
}

// GetBookList 获取图书列表缓存
// 列表无分页参数,整表一个key
func (c *BookCacheStore) GetBookList(ctx context.Context) ([]*book.WithReviews, error) {
	val, err := c.client.Get(ctx, bookListKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.IncCounterVec(metrics.CacheMissesTotal, map[string]string{"cache": "list"})
			return nil, nil
		}
		return nil, fmt.Errorf("获取缓存失败: %w", err)
	}

	var books []*book.WithReviews
	if err := json.Unmarshal([]byte(val), &books); err != nil {
		return nil, fmt.Errorf("反序列化失败: %w", err)
	}

	metrics.IncCounterVec(metrics.CacheHitsTotal, map[string]string{"cache": "list"})
	return books, nil
}

// SetBookList 设置图书列表缓存
func (c *BookCacheStore) SetBookList(ctx context.Context, books []*book.WithReviews) error {
	val, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("序列化失败: %w", err)
	}

	if err := c.client.Set(ctx, bookListKey, val, c.listTTL).Err(); err != nil {
		return fmt.Errorf("设置缓存失败: %w", err)
	}

	return nil
}

// InvalidateAll 删除全部图书缓存
//
// 教学要点：
// 1. 级联删除（删分类连带删书）影响面不可精确预知，整体失效最可靠
// 2. 使用SCAN命令遍历匹配的key，避免KEYS阻塞
// 3. 批量删除使用UNLINK（异步删除，不阻塞）
func (c *BookCacheStore) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "reviewclub:book:*", 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("扫描缓存key失败: %w", err)
	}

	if len(keys) > 0 {
		if err := c.client.Unlink(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("删除缓存失败: %w", err)
		}
	}

	return nil
}

// bookListKey 图书列表缓存key（列表无查询参数，单key）
const bookListKey = "reviewclub:book:list"

// bookDetailKey 图书详情缓存key
// 格式：reviewclub:book:detail:{book_id}
func bookDetailKey(bookID uint) string {
	return fmt.Sprintf("reviewclub:book:detail:%d", bookID)
}
