package book

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	apperrors "github.com/xiebiao/reviewclub/pkg/errors"
	"github.com/xiebiao/reviewclub/pkg/result"
	"github.com/xiebiao/reviewclub/pkg/validator"
)

// UnknownName 引用无法解析时的哨兵名称(分类名、评论人名共用)
const UnknownName = "Unknown"

// allowedImageExts 封面允许的文件扩展名
var allowedImageExts = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
}

// Service 图书领域服务接口
// 设计说明:
// 1. 封装图书CRUD、分类引用校验、书评数量聚合与封面生命周期
// 2. 写操作统一返回*result.Result,错误不会越过领域边界
// 3. 封面上传按图书ID加互斥锁,保证同一图书至多一个写入者
type Service interface {
	// ListBooks 查询全部图书,附带分类名、书评数量与书评摘要
	ListBooks(ctx context.Context) ([]*WithReviews, error)

	// FindBook 根据ID查询单本图书(同样的富化)
	FindBook(ctx context.Context, id uint) (*WithReviews, error)

	// AddBook 创建图书
	// 业务规则:
	// - 书名/作者必填且≤50字符
	// - categoryID必须解析到已存在的分类
	// - 提交的categoryName必须与该分类的存储名称一致(防御客户端过期状态)
	// - 封面初始为空
	AddBook(ctx context.Context, name, author string, categoryID int, categoryName string, isBookOfTheMonth bool) *result.Result

	// UpdateBook 全量替换图书可变字段
	// newImage非空时先执行封面上传,上传失败则整个更新中止(字段不落库)
	UpdateBook(ctx context.Context, id uint, name, author string, categoryID int, isBookOfTheMonth bool, newImage []byte, imageName string) *result.Result

	// DeleteBook 删除图书及其全部书评(事务内显式级联)
	DeleteBook(ctx context.Context, id uint) *result.Result

	// UploadBookImage 上传/替换封面
	// 顺序:写新键 → 更新指针(路径+标记) → 删旧键,避免出现无有效资产的窗口
	UploadBookImage(ctx context.Context, id uint, data []byte, fileName string) *result.Result
}

type service struct {
	repo   Repository
	tx     Transactor
	images ImageStore

	// uploadLocks 按图书ID的互斥锁,串行化同一图书的封面替换序列
	mu          sync.Mutex
	uploadLocks map[uint]*sync.Mutex
}

// NewService 创建图书领域服务
func NewService(repo Repository, tx Transactor, images ImageStore) Service {
	return &service{
		repo:        repo,
		tx:          tx,
		images:      images,
		uploadLocks: make(map[uint]*sync.Mutex),
	}
}

// ListBooks 查询全部图书及富化信息
func (s *service) ListBooks(ctx context.Context) ([]*WithReviews, error) {
	books, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	list := make([]*WithReviews, 0, len(books))
	for _, b := range books {
		enriched, err := s.enrich(ctx, b)
		if err != nil {
			return nil, err
		}
		list = append(list, enriched)
	}

	return list, nil
}

// FindBook 根据ID查询单本图书
func (s *service) FindBook(ctx context.Context, id uint) (*WithReviews, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, b)
}

// enrich 组装读取模型:解析分类名、统计并打平书评
// 分类/评论人引用无法解析时回退为哨兵名称"Unknown"
func (s *service) enrich(ctx context.Context, b *Book) (*WithReviews, error) {
	categoryName := UnknownName
	cat, err := s.repo.FindCategory(ctx, b.CategoryID)
	switch {
	case err == nil:
		categoryName = cat.Name
	case apperrors.IsNotFound(err):
		// 引用悬空(遗留数据):保留哨兵名称
	default:
		return nil, err
	}

	count, err := s.repo.CountReviews(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	summaries, err := s.repo.ListReviewSummaries(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	for i := range summaries {
		if summaries[i].ReviewerName == "" {
			summaries[i].ReviewerName = UnknownName
		}
	}

	return &WithReviews{
		ID:               b.ID,
		Name:             b.Name,
		Author:           b.Author,
		CategoryID:       b.CategoryID,
		CategoryName:     categoryName,
		PicturePath:      b.PicturePath,
		HasPicture:       b.HasPicture,
		IsBookOfTheMonth: b.IsBookOfTheMonth,
		ReviewCount:      count,
		Reviews:          summaries,
	}, nil
}

// AddBook 创建图书
func (s *service) AddBook(ctx context.Context, name, author string, categoryID int, categoryName string, isBookOfTheMonth bool) *result.Result {
	// 1. 字段校验(校验失败时不触碰存储)
	v := validator.New()
	v.Required("Book name", name)
	v.MaxLen("Book name", name, 50)
	v.Required("Book author", author)
	v.MaxLen("Book author", author, 50)
	v.PositiveID("Category id", categoryID)
	if !v.Valid() {
		return result.Error(v.Violations()...)
	}

	// 2. 引用校验:分类必须存在
	cat, err := s.repo.FindCategory(ctx, uint(categoryID))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return result.Error("Category not found")
		}
		return result.Error(apperrors.GetAppError(err).Message)
	}

	// 3. 引用校验:提交的分类名必须与存储名一致(防御客户端过期状态)
	if cat.Name != categoryName {
		return result.Error("Category name does not match")
	}

	// 4. 持久化(封面初始为空)
	b := NewBook(name, author, uint(categoryID), isBookOfTheMonth)
	if err := s.repo.Create(ctx, b); err != nil {
		return result.Error(apperrors.GetAppError(err).Message)
	}

	return result.Created(b.ID)
}

// UpdateBook 全量替换图书可变字段
func (s *service) UpdateBook(ctx context.Context, id uint, name, author string, categoryID int, isBookOfTheMonth bool, newImage []byte, imageName string) *result.Result {
	// 1. 查询目标
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return result.NotFound("Book not found")
		}
		return result.Error(apperrors.GetAppError(err).Message)
	}

	// 2. 字段校验
	v := validator.New()
	v.Required("Book name", name)
	v.MaxLen("Book name", name, 50)
	v.Required("Book author", author)
	v.MaxLen("Book author", author, 50)
	v.PositiveID("Category id", categoryID)
	if !v.Valid() {
		return result.Error(v.Violations()...)
	}

	// 3. 携带新封面时先执行上传,失败则中止整个更新(字段不落库)
	if len(newImage) > 0 {
		if res := s.UploadBookImage(ctx, id, newImage, imageName); !res.OK() {
			return res
		}
		// 上传更新了图书行(封面指针+版本号),重新读取避免乐观锁冲突
		b, err = s.repo.FindByID(ctx, id)
		if err != nil {
			return result.Error(apperrors.GetAppError(err).Message)
		}
	}

	// 4. 持久化字段变更
	b.UpdateInfo(name, author, uint(categoryID), isBookOfTheMonth)
	if err := s.repo.Update(ctx, b); err != nil {
		if errors.Is(err, ErrConflict) {
			return result.Error("An error occurred updating the book")
		}
		return result.Error(apperrors.GetAppError(err).Message)
	}

	return result.Updated()
}

// DeleteBook 删除图书及其书评
func (s *service) DeleteBook(ctx context.Context, id uint) *result.Result {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if apperrors.IsNotFound(err) {
			return result.NotFound("Book not found")
		}
		return result.Error(apperrors.GetAppError(err).Message)
	}

	// 事务内显式级联:先删书评,再删图书
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.DeleteReviewsByBook(ctx, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		return result.Error(apperrors.GetAppError(err).Message)
	}

	return result.Deleted()
}

// UploadBookImage 上传/替换封面
// 并发说明:同一图书的替换序列必须串行,否则两个写入者会在
// "写新/删旧"上交错,可能删掉对方刚写入的资产
func (s *service) UploadBookImage(ctx context.Context, id uint, data []byte, fileName string) *result.Result {
	unlock := s.lockBook(id)
	defer unlock()

	// 1. 查询目标
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return result.NotFound("Book not found")
		}
		return result.Error(apperrors.GetAppError(err).Message)
	}

	// 2. 载荷与扩展名校验
	if len(data) == 0 {
		return result.Error("Image file is empty")
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedImageExts[ext] {
		return result.Error("Image extension must be one of .jpeg, .jpg, .png, .gif")
	}

	// 3. 资产键由图书ID+扩展名确定
	newKey := fmt.Sprintf("%d%s", b.ID, ext)
	oldKey := b.PicturePath // 删除的是存储路径记录的键,不是简单推断旧扩展名

	// 4. 先写新键(此时旧资产仍然有效)
	if err := s.images.Write(newKey, data); err != nil {
		return result.Error("There was an error saving the image: " + err.Error())
	}

	// 5. 更新指针(路径+标记)
	b.SetPicture(newKey)
	if err := s.repo.Update(ctx, b); err != nil {
		// 指针未切换成功:清理刚写入的新键,旧资产保持有效
		if oldKey != newKey {
			_ = s.images.Delete(newKey)
		}
		if errors.Is(err, ErrConflict) {
			return result.Error("An error occurred updating the book")
		}
		return result.Error(apperrors.GetAppError(err).Message)
	}

	// 6. 最后删旧键(同键覆盖时跳过);删除失败只留下孤儿文件,不影响一致性
	if oldKey != "" && oldKey != newKey {
		_ = s.images.Delete(oldKey)
	}

	return result.Success()
}

// lockBook 获取指定图书的上传锁,返回解锁函数
func (s *service) lockBook(id uint) func() {
	s.mu.Lock()
	l, ok := s.uploadLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.uploadLocks[id] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}
