package listingsvc

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	listingrepo "stayin/repository/listing"
	"stayin/model"
)

type mockRepo struct {
	createFn      func(ctx context.Context, l *model.Listing) error
	updateFn      func(ctx context.Context, l *model.Listing) error
	byIDFn        func(ctx context.Context, id int64) (*model.Listing, error)
	listPublicFn  func(ctx context.Context) ([]model.Listing, error)
	listByOwnerFn func(ctx context.Context, userID int64, archived bool) ([]model.Listing, error)
	setArchivedFn func(ctx context.Context, id int64, archived bool) error
}

var _ listingrepo.Repo = (*mockRepo)(nil)

func (m *mockRepo) Create(ctx context.Context, l *model.Listing) error { return m.createFn(ctx, l) }
func (m *mockRepo) Update(ctx context.Context, l *model.Listing) error { return m.updateFn(ctx, l) }
func (m *mockRepo) ByID(ctx context.Context, id int64) (*model.Listing, error) {
	return m.byIDFn(ctx, id)
}
func (m *mockRepo) ListPublic(ctx context.Context) ([]model.Listing, error) {
	return m.listPublicFn(ctx)
}
func (m *mockRepo) ListByOwner(ctx context.Context, userID int64, archived bool) ([]model.Listing, error) {
	return m.listByOwnerFn(ctx, userID, archived)
}
func (m *mockRepo) SetArchived(ctx context.Context, id int64, archived bool) error {
	if m.setArchivedFn == nil {
		return nil
	}
	return m.setArchivedFn(ctx, id, archived)
}

func owner(id int64) *int64 { return &id }

func ownedBy(userID int64, archived bool) func(ctx context.Context, id int64) (*model.Listing, error) {
	return func(ctx context.Context, id int64) (*model.Listing, error) {
		return &model.Listing{ID: id, UserID: owner(userID), Title: "Canal House", IsArchived: archived}, nil
	}
}

// --- tests ---

func TestCreate_SetsOwner(t *testing.T) {
	var created *model.Listing
	m := &mockRepo{
		createFn: func(ctx context.Context, l *model.Listing) error {
			l.ID = 7
			created = l
			return nil
		},
	}
	svc := New(m)

	l := &model.Listing{Title: "Canal House", Price: 1000}
	require.NoError(t, svc.Create(context.Background(), 3, l))
	require.NotNil(t, created.UserID)
	require.Equal(t, int64(3), *created.UserID)
}

func TestDetail_NotFound(t *testing.T) {
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.Listing, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc := New(m)

	_, err := svc.Detail(context.Background(), 404)
	require.Equal(t, ErrNotFound, Code(err))
}

func TestUpdate_OwnershipEnforced(t *testing.T) {
	m := &mockRepo{
		byIDFn: ownedBy(3, false),
		updateFn: func(ctx context.Context, l *model.Listing) error {
			require.Equal(t, int64(7), l.ID)
			return nil
		},
	}
	svc := New(m)

	require.NoError(t, svc.Update(context.Background(), 3, 7, &model.Listing{Title: "Renamed"}))

	err := svc.Update(context.Background(), 5, 7, &model.Listing{Title: "Renamed"})
	require.Equal(t, ErrNotOwner, Code(err))
}

func TestDelete_Archives(t *testing.T) {
	var archivedTo *bool
	m := &mockRepo{
		byIDFn: ownedBy(3, false),
		setArchivedFn: func(ctx context.Context, id int64, archived bool) error {
			archivedTo = &archived
			return nil
		},
	}
	svc := New(m)

	require.NoError(t, svc.Delete(context.Background(), 3, 7))
	require.NotNil(t, archivedTo)
	require.True(t, *archivedTo)
}

func TestArchive_Toggles(t *testing.T) {
	for _, cur := range []bool{false, true} {
		var got bool
		m := &mockRepo{
			byIDFn: ownedBy(3, cur),
			setArchivedFn: func(ctx context.Context, id int64, archived bool) error {
				got = archived
				return nil
			},
		}
		svc := New(m)

		next, err := svc.Archive(context.Background(), 3, 7)
		require.NoError(t, err)
		require.Equal(t, !cur, next)
		require.Equal(t, !cur, got)
	}
}

func TestUnarchive(t *testing.T) {
	m := &mockRepo{byIDFn: ownedBy(3, true)}
	svc := New(m)
	require.NoError(t, svc.Unarchive(context.Background(), 3, 7))

	m.byIDFn = ownedBy(3, false)
	err := svc.Unarchive(context.Background(), 3, 7)
	require.Equal(t, ErrNotArchived, Code(err))
}

func TestMineAndArchived(t *testing.T) {
	m := &mockRepo{
		listByOwnerFn: func(ctx context.Context, userID int64, archived bool) ([]model.Listing, error) {
			require.Equal(t, int64(3), userID)
			if archived {
				return []model.Listing{{ID: 2, IsArchived: true}}, nil
			}
			return []model.Listing{{ID: 1}}, nil
		},
	}
	svc := New(m)

	live, err := svc.Mine(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, live, 1)
	require.Equal(t, int64(1), live[0].ID)

	arch, err := svc.Archived(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, int64(2), arch[0].ID)
}
