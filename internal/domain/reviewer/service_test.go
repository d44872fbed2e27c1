package reviewer

import (
	"context"
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
	reviewers map[uint]*Reviewer
	reviews   map[uint][]ReviewItem // reviewerID → 书评条目
	nextID    uint

	cascadeOps []string // 级联原语的调用顺序记录
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		reviewers: make(map[uint]*Reviewer),
		reviews:   make(map[uint][]ReviewItem),
	}
}

func (f *fakeRepo) Create(ctx context.Context, r *Reviewer) error {
	f.nextID++
	r.ID = f.nextID
	cp := *r
	f.reviewers[r.ID] = &cp
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uint) (*Reviewer, error) {
	r, ok := f.reviewers[id]
	if !ok {
		return nil, ErrReviewerNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRepo) Update(ctx context.Context, r *Reviewer) error {
	stored, ok := f.reviewers[r.ID]
	if !ok {
		return ErrReviewerNotFound
	}
	if stored.Version != r.Version {
		return ErrConflict
	}
	r.Version++
	cp := *r
	f.reviewers[r.ID] = &cp
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := f.reviewers[id]; !ok {
		return ErrReviewerNotFound
	}
	delete(f.reviewers, id)
	f.cascadeOps = append(f.cascadeOps, "delete_reviewer")
	return nil
}

func (f *fakeRepo) List(ctx context.Context) ([]*Reviewer, error) {
	list := make([]*Reviewer, 0, len(f.reviewers))
	for i := uint(1); i <= f.nextID; i++ {
		if r, ok := f.reviewers[i]; ok {
			cp := *r
			list = append(list, &cp)
		}
	}
	return list, nil
}

func (f *fakeRepo) CountReviews(ctx context.Context, reviewerID uint) (int64, error) {
	return int64(len(f.reviews[reviewerID])), nil
}

func (f *fakeRepo) ListReviewItems(ctx context.Context, reviewerID uint) ([]ReviewItem, error) {
	return append([]ReviewItem(nil), f.reviews[reviewerID]...), nil
}

func (f *fakeRepo) DeleteReviewsByReviewer(ctx context.Context, reviewerID uint) (int64, error) {
	n := int64(len(f.reviews[reviewerID]))
	delete(f.reviews, reviewerID)
	f.cascadeOps = append(f.cascadeOps, "delete_reviews")
	return n, nil
}

type fakeTx struct{}

func (fakeTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService() (Service, *fakeRepo) {
	repo := newFakeRepo()
	return NewService(repo, fakeTx{}), repo
}

// =========================================
// AddReviewer / UpdateReviewer
// =========================================

func TestAddReviewer(t *testing.T) {
	ctx := context.Background()

	t.Run("创建成功", func(t *testing.T) {
		svc, repo := newTestService()

		r := svc.AddReviewer(ctx, "Jane Doe", "jane@example.com")

		require.Equal(t, result.StatusCreated, r.Status, "messages: %v", r.Messages)
		assert.Equal(t, "jane@example.com", repo.reviewers[r.CreatedID].Email)
	})

	t.Run("必填字段缺失", func(t *testing.T) {
		svc, repo := newTestService()

		r := svc.AddReviewer(ctx, "", "")

		assert.Equal(t, result.StatusError, r.Status)
		assert.Contains(t, r.Messages, "Reviewer name cannot be empty")
		assert.Contains(t, r.Messages, "Reviewer email cannot be empty")
		assert.Empty(t, repo.reviewers, "校验失败不应持久化")
	})

	t.Run("邮箱格式非法", func(t *testing.T) {
		svc, _ := newTestService()

		r := svc.AddReviewer(ctx, "Jane Doe", "not-an-email")

		assert.Equal(t, result.StatusError, r.Status)
		assert.Contains(t, r.Messages, "Reviewer email is not a valid email address")
	})
}

func TestUpdateReviewer(t *testing.T) {
	ctx := context.Background()

	t.Run("全量替换姓名与邮箱", func(t *testing.T) {
		svc, repo := newTestService()
		created := svc.AddReviewer(ctx, "Jane Doe", "jane@example.com")
		require.Equal(t, result.StatusCreated, created.Status)

		r := svc.UpdateReviewer(ctx, created.CreatedID, "Jane Smith", "smith@example.com")

		require.Equal(t, result.StatusUpdated, r.Status, "messages: %v", r.Messages)
		stored := repo.reviewers[created.CreatedID]
		assert.Equal(t, "Jane Smith", stored.Name)
		assert.Equal(t, "smith@example.com", stored.Email)
	})

	t.Run("评论人不存在", func(t *testing.T) {
		svc, _ := newTestService()
		r := svc.UpdateReviewer(ctx, 99, "Jane", "jane@example.com")
		assert.Equal(t, result.StatusNotFound, r.Status)
		assert.Contains(t, r.Messages, "Reviewer not found")
	})

	t.Run("校验先于存在性检查", func(t *testing.T) {
		svc, _ := newTestService()
		r := svc.UpdateReviewer(ctx, 99, "Jane", "bad-email")
		assert.Equal(t, result.StatusError, r.Status)
		assert.Contains(t, r.Messages, "Reviewer email is not a valid email address")
	})
}

// =========================================
// DeleteReviewer(级联)
// =========================================

func TestDeleteReviewer(t *testing.T) {
	ctx := context.Background()

	t.Run("级联顺序为书评→评论人", func(t *testing.T) {
		svc, repo := newTestService()
		created := svc.AddReviewer(ctx, "Jane Doe", "jane@example.com")
		require.Equal(t, result.StatusCreated, created.Status)
		repo.reviews[created.CreatedID] = []ReviewItem{
			{ID: 1, BookName: "Dune", Text: "Great"},
			{ID: 2, BookName: "Solaris", Text: "Strange"},
		}

		r := svc.DeleteReviewer(ctx, created.CreatedID)

		require.Equal(t, result.StatusDeleted, r.Status, "messages: %v", r.Messages)
		assert.Equal(t, []string{"delete_reviews", "delete_reviewer"}, repo.cascadeOps)
		assert.Empty(t, repo.reviewers)
		assert.Empty(t, repo.reviews)
	})

	t.Run("评论人不存在", func(t *testing.T) {
		svc, _ := newTestService()
		r := svc.DeleteReviewer(ctx, 99)
		assert.Equal(t, result.StatusNotFound, r.Status)
		assert.Contains(t, r.Messages, "Reviewer not found")
	})
}

// =========================================
// 读取路径
// =========================================

func TestReviewerQueries(t *testing.T) {
	ctx := context.Background()

	t.Run("列表附带书评数量", func(t *testing.T) {
		svc, repo := newTestService()
		r1 := svc.AddReviewer(ctx, "Jane", "jane@example.com")
		r2 := svc.AddReviewer(ctx, "John", "john@example.com")
		require.Equal(t, result.StatusCreated, r1.Status)
		require.Equal(t, result.StatusCreated, r2.Status)
		repo.reviews[r1.CreatedID] = []ReviewItem{{ID: 1, BookName: "Dune", Text: "Great"}}

		list, err := svc.GetAllReviewers(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, int64(1), list[0].ReviewedBookCount)
		assert.Equal(t, int64(0), list[1].ReviewedBookCount)
	})

	t.Run("详情嵌套书评且悬空引用回退为Unknown", func(t *testing.T) {
		svc, repo := newTestService()
		created := svc.AddReviewer(ctx, "Jane", "jane@example.com")
		require.Equal(t, result.StatusCreated, created.Status)
		repo.reviews[created.CreatedID] = []ReviewItem{
			{ID: 1, BookName: "Dune", Text: "Great"},
			{ID: 2, BookName: "", Text: "Orphaned"}, // 图书已删除的遗留数据
		}

		d, err := svc.GetReviewerByID(ctx, created.CreatedID)
		require.NoError(t, err)
		require.Len(t, d.Reviews, 2)
		assert.Equal(t, "Dune", d.Reviews[0].BookName)
		assert.Equal(t, UnknownName, d.Reviews[1].BookName)
	})

	t.Run("不存在的评论人", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.GetReviewerByID(ctx, 99)
		assert.True(t, apperrors.IsNotFound(err))
	})
}
