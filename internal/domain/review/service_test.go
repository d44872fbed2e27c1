package review

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
	reviews   map[uint]*Review
	details   map[uint]*Detail
	books     map[uint]bool
	reviewers map[uint]bool
	nextID    uint

	updateCalls int // Update的调用次数(幂等性断言用)
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		reviews:   make(map[uint]*Review),
		details:   make(map[uint]*Detail),
		books:     make(map[uint]bool),
		reviewers: make(map[uint]bool),
	}
}

func (f *fakeRepo) Create(ctx context.Context, r *Review) error {
	f.nextID++
	r.ID = f.nextID
	cp := *r
	f.reviews[r.ID] = &cp
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uint) (*Review, error) {
	r, ok := f.reviews[id]
	if !ok {
		return nil, ErrReviewNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRepo) Update(ctx context.Context, r *Review) error {
	f.updateCalls++
	stored, ok := f.reviews[r.ID]
	if !ok {
		return ErrReviewNotFound
	}
	if stored.Version != r.Version {
		return ErrConflict
	}
	r.Version++
	cp := *r
	f.reviews[r.ID] = &cp
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := f.reviews[id]; !ok {
		return ErrReviewNotFound
	}
	delete(f.reviews, id)
	return nil
}

func (f *fakeRepo) List(ctx context.Context) ([]*Detail, error) {
	list := make([]*Detail, 0, len(f.details))
	for i := uint(1); i <= f.nextID; i++ {
		if d, ok := f.details[i]; ok {
			cp := *d
			list = append(list, &cp)
		}
	}
	return list, nil
}

func (f *fakeRepo) ListByBook(ctx context.Context, bookID uint) ([]*Detail, error) {
	all, _ := f.List(ctx)
	list := make([]*Detail, 0, len(all))
	for _, d := range all {
		if d.BookID == bookID {
			list = append(list, d)
		}
	}
	return list, nil
}

func (f *fakeRepo) FindDetail(ctx context.Context, id uint) (*Detail, error) {
	d, ok := f.details[id]
	if !ok {
		return nil, ErrReviewNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeRepo) BookExists(ctx context.Context, id uint) (bool, error) {
	return f.books[id], nil
}

func (f *fakeRepo) ReviewerExists(ctx context.Context, id uint) (bool, error) {
	return f.reviewers[id], nil
}

// =========================================
// AddReview
// =========================================

func TestAddReview(t *testing.T) {
	ctx := context.Background()

	t.Run("创建成功且默认未审核", func(t *testing.T) {
		repo := newFakeRepo()
		repo.books[1] = true
		repo.reviewers[1] = true
		svc := NewService(repo)

		r := svc.AddReview(ctx, "A masterpiece of world-building", 1, 1)

		require.Equal(t, result.StatusCreated, r.Status, "messages: %v", r.Messages)
		stored := repo.reviews[r.CreatedID]
		require.NotNil(t, stored)
		assert.False(t, stored.IsApproved, "新书评默认未审核")
		assert.False(t, stored.Date.IsZero(), "创建时间戳应在插入时打点")
	})

	t.Run("校验失败时不触碰存储", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo)

		r := svc.AddReview(ctx, "", 0, -1)

		assert.Equal(t, result.StatusError, r.Status)
		assert.Contains(t, r.Messages, "Review text cannot be empty")
		assert.Contains(t, r.Messages, "Book id must be a positive id")
		assert.Contains(t, r.Messages, "Reviewer id must be a positive id")
		assert.Empty(t, repo.reviews)
	})

	t.Run("内容超长", func(t *testing.T) {
		repo := newFakeRepo()
		repo.books[1] = true
		repo.reviewers[1] = true
		svc := NewService(repo)

		r := svc.AddReview(ctx, strings.Repeat("a", 1001), 1, 1)

		assert.Equal(t, result.StatusError, r.Status)
		assert.Contains(t, r.Messages, "Review text cannot exceed 1000 characters")
	})

	t.Run("图书不存在", func(t *testing.T) {
		repo := newFakeRepo()
		repo.reviewers[1] = true
		svc := NewService(repo)

		r := svc.AddReview(ctx, "Good", 99, 1)

		assert.Equal(t, result.StatusError, r.Status)
		assert.Contains(t, r.Messages, "Book not found")
		assert.Empty(t, repo.reviews, "引用校验失败不应持久化")
	})

	t.Run("评论人不存在", func(t *testing.T) {
		repo := newFakeRepo()
		repo.books[1] = true
		svc := NewService(repo)

		r := svc.AddReview(ctx, "Good", 1, 99)

		assert.Equal(t, result.StatusError, r.Status)
		assert.Contains(t, r.Messages, "Reviewer not found")
		assert.Empty(t, repo.reviews)
	})

	t.Run("两个引用都缺失时先报图书", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo)

		r := svc.AddReview(ctx, "Good", 99, 99)

		assert.Equal(t, result.StatusError, r.Status)
		require.Len(t, r.Messages, 1, "引用检查短路,只报第一个缺失")
		assert.Equal(t, "Book not found", r.Messages[0])
	})
}

// =========================================
// UpdateReview / DeleteReview
// =========================================

func TestUpdateReview(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) (*fakeRepo, Service, uint) {
		repo := newFakeRepo()
		repo.books[1] = true
		repo.reviewers[1] = true
		svc := NewService(repo)
		r := svc.AddReview(ctx, "Original text", 1, 1)
		require.Equal(t, result.StatusCreated, r.Status)
		return repo, svc, r.CreatedID
	}

	t.Run("只替换内容", func(t *testing.T) {
		repo, svc, id := seed(t)
		before := *repo.reviews[id]

		r := svc.UpdateReview(ctx, id, "Revised text")
		require.Equal(t, result.StatusUpdated, r.Status, "messages: %v", r.Messages)

		after := repo.reviews[id]
		assert.Equal(t, "Revised text", after.Text)
		assert.Equal(t, before.BookID, after.BookID, "引用不可通过Update修改")
		assert.Equal(t, before.ReviewerID, after.ReviewerID)
		assert.Equal(t, before.Date, after.Date, "创建时间戳不可变")
		assert.Equal(t, before.IsApproved, after.IsApproved)
	})

	t.Run("校验失败", func(t *testing.T) {
		_, svc, id := seed(t)
		r := svc.UpdateReview(ctx, id, "")
		assert.Equal(t, result.StatusError, r.Status)
		assert.Contains(t, r.Messages, "Review text cannot be empty")
	})

	t.Run("书评不存在", func(t *testing.T) {
		svc := NewService(newFakeRepo())
		r := svc.UpdateReview(ctx, 99, "Text")
		assert.Equal(t, result.StatusNotFound, r.Status)
		assert.Contains(t, r.Messages, "Review not found")
	})
}

func TestDeleteReview(t *testing.T) {
	ctx := context.Background()

	t.Run("删除成功", func(t *testing.T) {
		repo := newFakeRepo()
		repo.books[1] = true
		repo.reviewers[1] = true
		svc := NewService(repo)
		created := svc.AddReview(ctx, "Text", 1, 1)
		require.Equal(t, result.StatusCreated, created.Status)

		r := svc.DeleteReview(ctx, created.CreatedID)
		assert.Equal(t, result.StatusDeleted, r.Status)
		assert.Empty(t, repo.reviews)
	})

	t.Run("书评不存在", func(t *testing.T) {
		svc := NewService(newFakeRepo())
		r := svc.DeleteReview(ctx, 99)
		assert.Equal(t, result.StatusNotFound, r.Status)
		assert.Contains(t, r.Messages, "Review not found")
	})
}

// =========================================
// ApproveReview
// =========================================

func TestApproveReview(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) (*fakeRepo, Service, uint) {
		repo := newFakeRepo()
		repo.books[1] = true
		repo.reviewers[1] = true
		svc := NewService(repo)
		r := svc.AddReview(ctx, "Text", 1, 1)
		require.Equal(t, result.StatusCreated, r.Status)
		return repo, svc, r.CreatedID
	}

	t.Run("审核通过", func(t *testing.T) {
		repo, svc, id := seed(t)

		r := svc.ApproveReview(ctx, id)
		require.Equal(t, result.StatusSuccess, r.Status, "messages: %v", r.Messages)
		assert.True(t, repo.reviews[id].IsApproved)
	})

	t.Run("重复审核幂等且不再写库", func(t *testing.T) {
		repo, svc, id := seed(t)
		require.Equal(t, result.StatusSuccess, svc.ApproveReview(ctx, id).Status)
		writesAfterFirst := repo.updateCalls

		r := svc.ApproveReview(ctx, id)
		assert.Equal(t, result.StatusSuccess, r.Status)
		assert.True(t, repo.reviews[id].IsApproved)
		assert.Equal(t, writesAfterFirst, repo.updateCalls, "已通过的书评不应再次写库")
	})

	t.Run("书评不存在", func(t *testing.T) {
		svc := NewService(newFakeRepo())
		r := svc.ApproveReview(ctx, 99)
		assert.Equal(t, result.StatusNotFound, r.Status)
		assert.Contains(t, r.Messages, "Review not found")
	})
}

// =========================================
// 读取路径的哨兵回退
// =========================================

func TestReviewSentinels(t *testing.T) {
	ctx := context.Background()

	repo := newFakeRepo()
	repo.nextID = 2
	repo.details[1] = &Detail{ID: 1, Text: "A", BookID: 1, BookName: "Dune", ReviewerName: "Jane"}
	repo.details[2] = &Detail{ID: 2, Text: "B", BookID: 1, BookName: "", ReviewerName: ""}
	svc := NewService(repo)

	t.Run("列表中的悬空引用回退为Unknown", func(t *testing.T) {
		list, err := svc.ListAllReviews(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Dune", list[0].BookName)
		assert.Equal(t, UnknownName, list[1].BookName)
		assert.Equal(t, UnknownName, list[1].ReviewerName)
	})

	t.Run("单条查询同样回退", func(t *testing.T) {
		d, err := svc.GetReviewByID(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, UnknownName, d.BookName)
		assert.Equal(t, UnknownName, d.ReviewerName)
	})

	t.Run("不存在的书评", func(t *testing.T) {
		_, err := svc.GetReviewByID(ctx, 99)
		assert.True(t, apperrors.IsNotFound(err))
	})
}
