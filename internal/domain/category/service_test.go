package category

import (
	"context"
	"strings"
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
	categories map[uint]*Category
	books      map[uint][]BookRef // categoryID → 成员图书
	reviews    map[uint]int64     // categoryID → 成员图书的书评数
	nextID     uint

	cascadeOps []string // 级联原语的调用顺序记录
	failDelete error    // 注入Delete失败(回滚断言用)
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		categories: make(map[uint]*Category),
		books:      make(map[uint][]BookRef),
		reviews:    make(map[uint]int64),
	}
}

func (f *fakeRepo) Create(ctx context.Context, c *Category) error {
	f.nextID++
	c.ID = f.nextID
	cp := *c
	f.categories[c.ID] = &cp
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uint) (*Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) Update(ctx context.Context, c *Category) error {
	stored, ok := f.categories[c.ID]
	if !ok {
		return ErrCategoryNotFound
	}
	if stored.Version != c.Version {
		return ErrConflict
	}
	c.Version++
	cp := *c
	f.categories[c.ID] = &cp
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uint) error {
	if f.failDelete != nil {
		return f.failDelete
	}
	if _, ok := f.categories[id]; !ok {
		return ErrCategoryNotFound
	}
	delete(f.categories, id)
	f.cascadeOps = append(f.cascadeOps, "delete_category")
	return nil
}

func (f *fakeRepo) List(ctx context.Context) ([]*Category, error) {
	list := make([]*Category, 0, len(f.categories))
	for i := uint(1); i <= f.nextID; i++ {
		if c, ok := f.categories[i]; ok {
			cp := *c
			list = append(list, &cp)
		}
	}
	return list, nil
}

func (f *fakeRepo) CountBooks(ctx context.Context, categoryID uint) (int64, error) {
	return int64(len(f.books[categoryID])), nil
}

func (f *fakeRepo) ListBooksByCategory(ctx context.Context, categoryID uint) ([]BookRef, error) {
	return append([]BookRef(nil), f.books[categoryID]...), nil
}

func (f *fakeRepo) DeleteReviewsByCategory(ctx context.Context, categoryID uint) (int64, error) {
	n := f.reviews[categoryID]
	delete(f.reviews, categoryID)
	f.cascadeOps = append(f.cascadeOps, "delete_reviews")
	return n, nil
}

func (f *fakeRepo) DeleteBooksByCategory(ctx context.Context, categoryID uint) (int64, error) {
	n := int64(len(f.books[categoryID]))
	delete(f.books, categoryID)
	f.cascadeOps = append(f.cascadeOps, "delete_books")
	return n, nil
}

// fakeTx 直接执行fn并记录回滚与否
type fakeTx struct {
	rolledBack bool
}

func (t *fakeTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		t.rolledBack = true
		return err
	}
	return nil
}

func newTestService() (Service, *fakeRepo, *fakeTx) {
	repo := newFakeRepo()
	tx := &fakeTx{}
	return NewService(repo, tx), repo, tx
}

// =========================================
// AddCategory / UpdateCategory
// =========================================

func TestAddCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("创建成功", func(t *testing.T) {
		svc, repo, _ := newTestService()

		r := svc.AddCategory(ctx, "Fiction")

		require.Equal(t, result.StatusCreated, r.Status, "messages: %v", r.Messages)
		assert.NotZero(t, r.CreatedID)
		assert.Equal(t, "Fiction", repo.categories[r.CreatedID].Name)
	})

	t.Run("名称为空", func(t *testing.T) {
		svc, repo, _ := newTestService()

		r := svc.AddCategory(ctx, "")

		assert.Equal(t, result.StatusError, r.Status)
		assert.Contains(t, r.Messages, "Category name cannot be empty")
		assert.Empty(t, repo.categories, "校验失败不应持久化")
	})

	t.Run("名称超长", func(t *testing.T) {
		svc, _, _ := newTestService()

		r := svc.AddCategory(ctx, strings.Repeat("a", 26))

		assert.Equal(t, result.StatusError, r.Status)
		assert.Contains(t, r.Messages, "Category name cannot exceed 25 characters")
	})
}

func TestUpdateCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("更新成功", func(t *testing.T) {
		svc, repo, _ := newTestService()
		created := svc.AddCategory(ctx, "Fiction")
		require.Equal(t, result.StatusCreated, created.Status)

		r := svc.UpdateCategory(ctx, created.CreatedID, "Science Fiction")

		require.Equal(t, result.StatusUpdated, r.Status, "messages: %v", r.Messages)
		assert.Equal(t, "Science Fiction", repo.categories[created.CreatedID].Name)
	})

	t.Run("分类不存在", func(t *testing.T) {
		svc, _, _ := newTestService()
		r := svc.UpdateCategory(ctx, 99, "History")
		assert.Equal(t, result.StatusNotFound, r.Status)
		assert.Contains(t, r.Messages, "Category not found")
	})

	t.Run("校验失败不查库", func(t *testing.T) {
		svc, _, _ := newTestService()
		// 目标不存在,但校验先行:返回的是校验错误而非NotFound
		r := svc.UpdateCategory(ctx, 99, "")
		assert.Equal(t, result.StatusError, r.Status)
		assert.Contains(t, r.Messages, "Category name cannot be empty")
	})
}

// =========================================
// DeleteCategory(级联)
// =========================================

func TestDeleteCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("级联顺序为书评→图书→分类", func(t *testing.T) {
		svc, repo, _ := newTestService()
		created := svc.AddCategory(ctx, "Fiction")
		require.Equal(t, result.StatusCreated, created.Status)
		id := created.CreatedID
		repo.books[id] = []BookRef{{ID: 1, Name: "Dune", Author: "Frank Herbert"}}
		repo.reviews[id] = 3

		r := svc.DeleteCategory(ctx, id)

		require.Equal(t, result.StatusDeleted, r.Status, "messages: %v", r.Messages)
		assert.Equal(t, []string{"delete_reviews", "delete_books", "delete_category"}, repo.cascadeOps)
		assert.Empty(t, repo.categories)
		assert.Empty(t, repo.books)
	})

	t.Run("空分类直接删除", func(t *testing.T) {
		svc, repo, _ := newTestService()
		created := svc.AddCategory(ctx, "Empty")
		require.Equal(t, result.StatusCreated, created.Status)

		r := svc.DeleteCategory(ctx, created.CreatedID)
		assert.Equal(t, result.StatusDeleted, r.Status)
		assert.Empty(t, repo.categories)
	})

	t.Run("分类不存在", func(t *testing.T) {
		svc, _, _ := newTestService()
		r := svc.DeleteCategory(ctx, 99)
		assert.Equal(t, result.StatusNotFound, r.Status)
		assert.Contains(t, r.Messages, "Category cannot be deleted because it does not exist.")
	})

	t.Run("级联失败时事务回滚", func(t *testing.T) {
		svc, repo, tx := newTestService()
		created := svc.AddCategory(ctx, "Fiction")
		require.Equal(t, result.StatusCreated, created.Status)
		repo.failDelete = apperrors.ErrDatabaseError

		r := svc.DeleteCategory(ctx, created.CreatedID)

		assert.Equal(t, result.StatusError, r.Status)
		require.NotEmpty(t, r.Messages)
		assert.Contains(t, r.Messages[0], "Error encountered while deleting the category: ")
		assert.True(t, tx.rolledBack, "级联中任一步失败应回滚")
	})
}

// =========================================
// 读取路径
// =========================================

func TestCategoryQueries(t *testing.T) {
	ctx := context.Background()

	t.Run("列表附带图书数量", func(t *testing.T) {
		svc, repo, _ := newTestService()
		c1 := svc.AddCategory(ctx, "Fiction")
		c2 := svc.AddCategory(ctx, "History")
		require.Equal(t, result.StatusCreated, c1.Status)
		require.Equal(t, result.StatusCreated, c2.Status)
		repo.books[c1.CreatedID] = []BookRef{{ID: 1, Name: "Dune"}, {ID: 2, Name: "Solaris"}}

		list, err := svc.ListCategoriesWithBookCount(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, int64(2), list[0].BookCount)
		assert.Equal(t, int64(0), list[1].BookCount)
	})

	t.Run("单个查询", func(t *testing.T) {
		svc, repo, _ := newTestService()
		created := svc.AddCategory(ctx, "Fiction")
		require.Equal(t, result.StatusCreated, created.Status)
		repo.books[created.CreatedID] = []BookRef{{ID: 1, Name: "Dune"}}

		c, err := svc.FindCategory(ctx, created.CreatedID)
		require.NoError(t, err)
		assert.Equal(t, "Fiction", c.Name)
		assert.Equal(t, int64(1), c.BookCount)
	})

	t.Run("不存在的分类", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, err := svc.FindCategory(ctx, 99)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("成员图书列表为空集合而非错误", func(t *testing.T) {
		svc, _, _ := newTestService()
		books, err := svc.GetBooksByCategory(ctx, 99)
		require.NoError(t, err)
		assert.Empty(t, books)
	})
}
