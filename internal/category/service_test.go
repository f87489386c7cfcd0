package category

import (
	"context"
	"testing"

	"bakery-be/internal/audit"
	"bakery-be/internal/uow"
	"bakery-be/internal/uow/uowtest"
	"bakery-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context) ([]*Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Category), args.Error(1)
}

func (m *MockRepository) Get(ctx context.Context, id string) (*Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, c *Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockRepository) Update(ctx context.Context, c *Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type stubAudit struct {
	logs []*audit.Log
}

func (s *stubAudit) Insert(_ context.Context, l *audit.Log) error {
	s.logs = append(s.logs, l)
	return nil
}

func (s *stubAudit) ListByTarget(context.Context, string) ([]*audit.Log, error) {
	return s.logs, nil
}

func setup() (*MockRepository, *stubAudit, *uowtest.UOW, Service) {
	repo := new(MockRepository)
	logs := &stubAudit{}
	u := uowtest.New(map[uow.RepositoryName]uow.Repository{
		RepoName:       Repository(repo),
		audit.RepoName: audit.Repository(logs),
	})
	return repo, logs, u, NewService(u)
}

func adminCtx() context.Context {
	return utils.SetUserContext(context.Background(), "admin-1", utils.RoleAdmin)
}

// --- Tests ---

func TestService_List(t *testing.T) {
	repo, _, _, svc := setup()
	repo.On("List", mock.Anything).Return([]*Category{{ID: "c-1", Name: "Bread"}}, nil)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestService_Create(t *testing.T) {
	t.Run("Trims and audits", func(t *testing.T) {
		repo, logs, u, svc := setup()
		repo.On("Create", mock.Anything, mock.MatchedBy(func(c *Category) bool {
			c.ID = "c-1"
			return c.Name == "Bread" && c.Position == 1
		})).Return(nil)

		c, err := svc.Create(adminCtx(), CreateInput{Name: " Bread ", Position: 1})
		require.NoError(t, err)
		assert.Equal(t, "c-1", c.ID)
		assert.Equal(t, 1, u.Committed)
		require.Len(t, logs.logs, 1)
		assert.Equal(t, audit.ActionCreateCategory, logs.logs[0].Action)
		assert.Equal(t, "admin-1", logs.logs[0].AdminID)
	})

	t.Run("Blank name", func(t *testing.T) {
		repo, _, _, svc := setup()
		_, err := svc.Create(adminCtx(), CreateInput{Name: "   "})
		assert.ErrorIs(t, err, ErrInvalidName)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Duplicate rolls back", func(t *testing.T) {
		repo, logs, u, svc := setup()
		repo.On("Create", mock.Anything, mock.Anything).Return(ErrDuplicateName)

		_, err := svc.Create(adminCtx(), CreateInput{Name: "Bread"})
		assert.ErrorIs(t, err, ErrDuplicateName)
		assert.Equal(t, 1, u.RolledBack)
		assert.Empty(t, logs.logs)
	})
}

func TestService_Update(t *testing.T) {
	t.Run("Partial update", func(t *testing.T) {
		repo, logs, _, svc := setup()
		existing := &Category{ID: "c-1", Name: "Bread", Position: 0}
		repo.On("Get", mock.Anything, "c-1").Return(existing, nil)
		repo.On("Update", mock.Anything, existing).Return(nil)

		pos := 4
		c, err := svc.Update(adminCtx(), UpdateInput{ID: "c-1", Position: &pos})
		require.NoError(t, err)
		assert.Equal(t, "Bread", c.Name)
		assert.Equal(t, 4, c.Position)
		assert.Len(t, logs.logs, 1)
	})

	t.Run("Blank rename", func(t *testing.T) {
		repo, _, _, svc := setup()
		repo.On("Get", mock.Anything, "c-1").Return(&Category{ID: "c-1", Name: "Bread"}, nil)

		_, err := svc.Update(adminCtx(), UpdateInput{ID: "c-1", Name: utils.StrPtr(" ")})
		assert.ErrorIs(t, err, ErrInvalidName)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestService_Delete(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo, logs, _, svc := setup()
		repo.On("Delete", mock.Anything, "c-1").Return(nil)

		require.NoError(t, svc.Delete(adminCtx(), "c-1"))
		require.Len(t, logs.logs, 1)
		assert.Equal(t, audit.ActionDeleteCategory, logs.logs[0].Action)
	})

	t.Run("Not found", func(t *testing.T) {
		repo, _, u, svc := setup()
		repo.On("Delete", mock.Anything, "c-x").Return(ErrCategoryNotFound)

		assert.ErrorIs(t, svc.Delete(adminCtx(), "c-x"), ErrCategoryNotFound)
		assert.Equal(t, 1, u.RolledBack)
	})
}
