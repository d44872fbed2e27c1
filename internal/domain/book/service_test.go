package book

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/reviewclub/pkg/errors"
	"github.com/xiebiao/reviewclub/pkg/result"
)

// =========================================
// 测试用内存实现
// =========================================

type fakeRepo struct {
	mu         sync.Mutex
	books      map[uint]*Book
	categories map[uint]*CategoryRef
	reviews    map[uint][]ReviewSummary // bookID → 书评摘要
	nextID     uint

	deletedReviewsByBook []uint // DeleteReviewsByBook的调用记录
	failUpdate           error  // 注入Update失败
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		books:      make(map[uint]*Book),
		categories: make(map[uint]*CategoryRef),
		reviews:    make(map[uint][]ReviewSummary),
	}
}

func (f *fakeRepo) Create(ctx context.Context, b *Book) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	b.ID = f.nextID
	cp := *b
	f.books[b.ID] = &cp
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uint) (*Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.books[id]
	if !ok {
		return nil, ErrBookNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeRepo) Update(ctx context.Context, b *Book) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate != nil {
		return f.failUpdate
	}
	stored, ok := f.books[b.ID]
	if !ok {
		return ErrBookNotFound
	}
	if stored.Version != b.Version {
		return ErrConflict
	}
	b.Version++
	cp := *b
	f.books[b.ID] = &cp
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.books[id]; !ok {
		return ErrBookNotFound
	}
	delete(f.books, id)
	return nil
}

func (f *fakeRepo) List(ctx context.Context) ([]*Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := make([]*Book, 0, len(f.books))
	for i := uint(1); i <= f.nextID; i++ {
		if b, ok := f.books[i]; ok {
			cp := *b
			list = append(list, &cp)
		}
	}
	return list, nil
}

func (f *fakeRepo) FindCategory(ctx context.Context, id uint) (*CategoryRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[id]
	if !ok {
		return nil, ErrCategoryNotFound
	}
	return c, nil
}

func (f *fakeRepo) CountReviews(ctx context.Context, bookID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.reviews[bookID])), nil
}

func (f *fakeRepo) ListReviewSummaries(ctx context.Context, bookID uint) ([]ReviewSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ReviewSummary(nil), f.reviews[bookID]...), nil
}

func (f *fakeRepo) DeleteReviewsByBook(ctx context.Context, bookID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := int64(len(f.reviews[bookID]))
	delete(f.reviews, bookID)
	f.deletedReviewsByBook = append(f.deletedReviewsByBook, bookID)
	return n, nil
}

// fakeTx 直接执行fn(测试里不需要真实事务语义)
type fakeTx struct{}

func (fakeTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeImages 内存封面存储,记录写入与删除顺序
type fakeImages struct {
	mu    sync.Mutex
	files map[string][]byte
	ops   []string // "write:key" / "delete:key"

	failWrite error
}

func newFakeImages() *fakeImages {
	return &fakeImages{files: make(map[string][]byte)}
}

func (f *fakeImages) Exists(key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[key]
	return ok, nil
}

func (f *fakeImages) Write(key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrite != nil {
		return f.failWrite
	}
	f.files[key] = append([]byte(nil), data...)
	f.ops = append(f.ops, "write:"+key)
	return nil
}

func (f *fakeImages) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, key)
	f.ops = append(f.ops, "delete:"+key)
	return nil
}

// newTestService 组装待测服务
func newTestService() (Service, *fakeRepo, *fakeImages) {
	repo := newFakeRepo()
	images := newFakeImages()
	return NewService(repo, fakeTx{}, images), repo, images
}

// seedCategory 预置分类
func seedCategory(repo *fakeRepo, id uint, name string) {
	repo.categories[id] = &CategoryRef{ID: id, Name: name}
}

// =========================================
// AddBook
// =========================================

func TestAddBook(t *testing.T) {
	ctx := context.Background()

	t.Run("创建成功且封面初始为空", func(t *testing.T) {
		svc, repo, _ := newTestService()
		seedCategory(repo, 1, "Fiction")

		r := svc.AddBook(ctx, "Dune", "Frank Herbert", 1, "Fiction", false)

		require.Equal(t, result.StatusCreated, r.Status, "messages: %v", r.Messages)
		assert.NotZero(t, r.CreatedID)

		b, err := repo.FindByID(ctx, r.CreatedID)
		require.NoError(t, err)
		assert.Empty(t, b.PicturePath, "新书不应有封面")
		assert.False(t, b.HasPicture)
	})

	t.Run("校验失败时不触碰存储", func(t *testing.T) {
		svc, repo, _ := newTestService()
		seedCategory(repo, 1, "Fiction")

		r := svc.AddBook(ctx, "", "", 0, "Fiction", false)

		assert.Equal(t, result.StatusError, r.Status)
		assert.Contains(t, r.Messages, "Book name cannot be empty")
		assert.Contains(t, r.Messages, "Book author cannot be empty")
		assert.Contains(t, r.Messages, "Category id must be a positive id")
		assert.Empty(t, repo.books, "校验失败不应持久化")
	})

	t.Run("分类不存在", func(t *testing.T) {
		svc, _, _ := newTestService()

		r := svc.AddBook(ctx, "Dune", "Frank Herbert", 99, "Fiction", false)

		assert.Equal(t, result.StatusError, r.Status)
		assert.Contains(t, r.Messages, "Category not found")
	})

	t.Run("分类名不一致", func(t *testing.T) {
		svc, repo, _ := newTestService()
		seedCategory(repo, 1, "Fiction")

		r := svc.AddBook(ctx, "Dune", "Frank Herbert", 1, "History", false)

		assert.Equal(t, result.StatusError, r.Status)
		assert.Contains(t, r.Messages, "Category name does not match")
		assert.Empty(t, repo.books)
	})
}

// =========================================
// FindBook / ListBooks 富化
// =========================================

func TestFindBookEnrichment(t *testing.T) {
	ctx := context.Background()

	t.Run("分类名与书评摘要", func(t *testing.T) {
		svc, repo, _ := newTestService()
		seedCategory(repo, 1, "Fiction")
		r := svc.AddBook(ctx, "Dune", "Frank Herbert", 1, "Fiction", true)
		require.Equal(t, result.StatusCreated, r.Status)

		repo.reviews[r.CreatedID] = []ReviewSummary{
			{ID: 1, Text: "Great", ReviewerName: "Jane"},
			{ID: 2, Text: "Classic", ReviewerName: ""}, // 评论人已删除
		}

		b, err := svc.FindBook(ctx, r.CreatedID)
		require.NoError(t, err)

		assert.Equal(t, "Fiction", b.CategoryName)
		assert.Equal(t, int64(2), b.ReviewCount)
		require.Len(t, b.Reviews, 2)
		assert.Equal(t, "Jane", b.Reviews[0].ReviewerName)
		assert.Equal(t, UnknownName, b.Reviews[1].ReviewerName, "悬空引用应回退为哨兵名称")
		assert.True(t, b.IsBookOfTheMonth)
	})

	t.Run("分类引用悬空时回退为Unknown", func(t *testing.T) {
		svc, repo, _ := newTestService()
		seedCategory(repo, 1, "Fiction")
		r := svc.AddBook(ctx, "Dune", "Frank Herbert", 1, "Fiction", false)
		require.Equal(t, result.StatusCreated, r.Status)

		// 模拟遗留数据:分类被移除
		delete(repo.categories, 1)

		b, err := svc.FindBook(ctx, r.CreatedID)
		require.NoError(t, err)
		assert.Equal(t, UnknownName, b.CategoryName)
	})

	t.Run("图书不存在", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, err := svc.FindBook(ctx, 99)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

// =========================================
// UploadBookImage
// =========================================

func TestUploadBookImage(t *testing.T) {
	ctx := context.Background()
	data := []byte{0x89, 0x50, 0x4e, 0x47}

	setup := func(t *testing.T) (Service, *fakeRepo, *fakeImages, uint) {
		svc, repo, images := newTestService()
		seedCategory(repo, 1, "Fiction")
		r := svc.AddBook(ctx, "Dune", "Frank Herbert", 1, "Fiction", false)
		require.Equal(t, result.StatusCreated, r.Status)
		return svc, repo, images, r.CreatedID
	}

	t.Run("首次上传", func(t *testing.T) {
		svc, repo, images, id := setup(t)

		r := svc.UploadBookImage(ctx, id, data, "cover.png")
		require.Equal(t, result.StatusSuccess, r.Status, "messages: %v", r.Messages)

		b, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "1.png", b.PicturePath, "资产键 = 图书ID+扩展名")
		assert.True(t, b.HasPicture)

		exists, _ := images.Exists("1.png")
		assert.True(t, exists)
	})

	t.Run("替换封面时先写新键再删旧键", func(t *testing.T) {
		svc, repo, images, id := setup(t)

		require.Equal(t, result.StatusSuccess, svc.UploadBookImage(ctx, id, data, "cover.png").Status)
		require.Equal(t, result.StatusSuccess, svc.UploadBookImage(ctx, id, data, "cover.jpg").Status)

		b, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "1.jpg", b.PicturePath)

		// 顺序:write 1.png → write 1.jpg → delete 1.png
		require.Len(t, images.ops, 3)
		assert.Equal(t, "write:1.png", images.ops[0])
		assert.Equal(t, "write:1.jpg", images.ops[1])
		assert.Equal(t, "delete:1.png", images.ops[2])

		oldExists, _ := images.Exists("1.png")
		assert.False(t, oldExists, "旧资产应被删除")
	})

	t.Run("同扩展名覆盖时跳过删除", func(t *testing.T) {
		svc, _, images, id := setup(t)

		require.Equal(t, result.StatusSuccess, svc.UploadBookImage(ctx, id, data, "a.png").Status)
		require.Equal(t, result.StatusSuccess, svc.UploadBookImage(ctx, id, data, "b.png").Status)

		// 两次write,没有delete
		require.Len(t, images.ops, 2)
		assert.Equal(t, "write:1.png", images.ops[0])
		assert.Equal(t, "write:1.png", images.ops[1])
	})

	t.Run("空文件", func(t *testing.T) {
		svc, _, _, id := setup(t)
		r := svc.UploadBookImage(ctx, id, nil, "cover.png")
		assert.Equal(t, result.StatusError, r.Status)
		assert.Contains(t, r.Messages, "Image file is empty")
	})

	t.Run("非法扩展名", func(t *testing.T) {
		svc, _, images, id := setup(t)
		r := svc.UploadBookImage(ctx, id, data, "cover.bmp")
		assert.Equal(t, result.StatusError, r.Status)
		assert.Contains(t, r.Messages, "Image extension must be one of .jpeg, .jpg, .png, .gif")
		assert.Empty(t, images.ops, "校验失败不应触碰存储")
	})

	t.Run("扩展名大小写不敏感", func(t *testing.T) {
		svc, repo, _, id := setup(t)
		r := svc.UploadBookImage(ctx, id, data, "COVER.PNG")
		require.Equal(t, result.StatusSuccess, r.Status, "messages: %v", r.Messages)

		b, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "1.png", b.PicturePath, "扩展名应统一为小写")
	})

	t.Run("图书不存在", func(t *testing.T) {
		svc, _, _ := newTestService()
		r := svc.UploadBookImage(ctx, 99, data, "cover.png")
		assert.Equal(t, result.StatusNotFound, r.Status)
		assert.Contains(t, r.Messages, "Book not found")
	})

	t.Run("指针更新失败时清理新键", func(t *testing.T) {
		svc, repo, images, id := setup(t)
		require.Equal(t, result.StatusSuccess, svc.UploadBookImage(ctx, id, data, "cover.png").Status)

		repo.failUpdate = ErrConflict
		r := svc.UploadBookImage(ctx, id, data, "cover.jpg")
		assert.Equal(t, result.StatusError, r.Status)

		// 新键1.jpg被写入后又被清理,旧键1.png保持有效
		newExists, _ := images.Exists("1.jpg")
		assert.False(t, newExists, "失败后新键应被清理")
		oldExists, _ := images.Exists("1.png")
		assert.True(t, oldExists, "旧资产应保持有效")
	})
}

// =========================================
// UpdateBook
// =========================================

func TestUpdateBook(t *testing.T) {
	ctx := context.Background()
	data := []byte{0x89, 0x50}

	t.Run("不带封面的字段更新", func(t *testing.T) {
		svc, repo, _ := newTestService()
		seedCategory(repo, 1, "Fiction")
		seedCategory(repo, 2, "History")
		created := svc.AddBook(ctx, "Dune", "Frank Herbert", 1, "Fiction", false)
		require.Equal(t, result.StatusCreated, created.Status)

		r := svc.UpdateBook(ctx, created.CreatedID, "Dune Messiah", "Frank Herbert", 2, true, nil, "")
		require.Equal(t, result.StatusUpdated, r.Status, "messages: %v", r.Messages)

		b, err := repo.FindByID(ctx, created.CreatedID)
		require.NoError(t, err)
		assert.Equal(t, "Dune Messiah", b.Name)
		assert.Equal(t, uint(2), b.CategoryID)
		assert.True(t, b.IsBookOfTheMonth)
	})

	t.Run("携带封面时先上传再更新字段", func(t *testing.T) {
		svc, repo, images := newTestService()
		seedCategory(repo, 1, "Fiction")
		created := svc.AddBook(ctx, "Dune", "Frank Herbert", 1, "Fiction", false)
		require.Equal(t, result.StatusCreated, created.Status)

		r := svc.UpdateBook(ctx, created.CreatedID, "Dune", "F. Herbert", 1, false, data, "cover.gif")
		require.Equal(t, result.StatusUpdated, r.Status, "messages: %v", r.Messages)

		b, err := repo.FindByID(ctx, created.CreatedID)
		require.NoError(t, err)
		assert.Equal(t, "F. Herbert", b.Author)
		assert.Equal(t, "1.gif", b.PicturePath)

		exists, _ := images.Exists("1.gif")
		assert.True(t, exists)
	})

	t.Run("封面上传失败则字段不落库", func(t *testing.T) {
		svc, repo, _ := newTestService()
		seedCategory(repo, 1, "Fiction")
		created := svc.AddBook(ctx, "Dune", "Frank Herbert", 1, "Fiction", false)
		require.Equal(t, result.StatusCreated, created.Status)

		// 非法扩展名导致上传失败
		r := svc.UpdateBook(ctx, created.CreatedID, "Changed", "Changed", 1, false, data, "cover.bmp")
		assert.Equal(t, result.StatusError, r.Status)

		b, err := repo.FindByID(ctx, created.CreatedID)
		require.NoError(t, err)
		assert.Equal(t, "Dune", b.Name, "上传失败时字段不应变化")
	})

	t.Run("图书不存在", func(t *testing.T) {
		svc, _, _ := newTestService()
		r := svc.UpdateBook(ctx, 99, "X", "Y", 1, false, nil, "")
		assert.Equal(t, result.StatusNotFound, r.Status)
		assert.Contains(t, r.Messages, "Book not found")
	})
}

// =========================================
// DeleteBook
// =========================================

func TestDeleteBook(t *testing.T) {
	ctx := context.Background()

	t.Run("删除图书级联删除书评", func(t *testing.T) {
		svc, repo, _ := newTestService()
		seedCategory(repo, 1, "Fiction")
		created := svc.AddBook(ctx, "Dune", "Frank Herbert", 1, "Fiction", false)
		require.Equal(t, result.StatusCreated, created.Status)
		repo.reviews[created.CreatedID] = []ReviewSummary{{ID: 1, Text: "Great"}}

		r := svc.DeleteBook(ctx, created.CreatedID)
		require.Equal(t, result.StatusDeleted, r.Status, "messages: %v", r.Messages)

		_, err := repo.FindByID(ctx, created.CreatedID)
		assert.True(t, apperrors.IsNotFound(err))
		assert.Equal(t, []uint{created.CreatedID}, repo.deletedReviewsByBook, "书评应先于图书删除")
	})

	t.Run("图书不存在", func(t *testing.T) {
		svc, _, _ := newTestService()
		r := svc.DeleteBook(ctx, 99)
		assert.Equal(t, result.StatusNotFound, r.Status)
		assert.Contains(t, r.Messages, "Book not found")
	})
}
