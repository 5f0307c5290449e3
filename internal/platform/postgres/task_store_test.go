package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTaskStore_CRUD(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	users := NewUserStore(db, discardLogger())
	tasks := NewTaskStore(db, discardLogger())
	ctx := context.Background()

	owner := createTestUser(t, users, "owner@example.com")
	task := createTestTask(t, tasks, owner.ID, "write tests")

	got, err := tasks.GetByID(ctx, owner.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "write tests", got.Title)
	assert.Equal(t, owner.ID, got.UserID)

	require.NoError(t, got.Rename("write more tests"))
	require.NoError(t, tasks.Update(ctx, got))

	got, err = tasks.GetByID(ctx, owner.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "write more tests", got.Title)

	require.NoError(t, tasks.Delete(ctx, owner.ID, task.ID))
	_, err = tasks.GetByID(ctx, owner.ID, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	assert.ErrorIs(t, tasks.Delete(ctx, owner.ID, task.ID), store.ErrTaskNotFound)
}

func TestTaskStore_ScopedToOwner(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	users := NewUserStore(db, discardLogger())
	tasks := NewTaskStore(db, discardLogger())
	ctx := context.Background()

	owner := createTestUser(t, users, "owner@example.com")
	intruder := createTestUser(t, users, "intruder@example.com")
	task := createTestTask(t, tasks, owner.ID, "private")

	_, err := tasks.GetByID(ctx, intruder.ID, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	assert.ErrorIs(t, tasks.Delete(ctx, intruder.ID, task.ID), store.ErrTaskNotFound)

	stolen := *task
	stolen.UserID = intruder.ID
	stolen.Title = "mine now"
	assert.ErrorIs(t, tasks.Update(ctx, &stolen), store.ErrTaskNotFound)

	assert.ErrorIs(t, tasks.AddFavorite(ctx, intruder.ID, task.ID), store.ErrTaskNotFound)
}

func TestTaskStore_CreateUnknownOwner(t *testing.T) {
	t.Parallel()

	tasks := NewTaskStore(newTestDB(t), discardLogger())

	err := tasks.Create(context.Background(), createOrphanTask(t))
	assert.ErrorIs(t, err, store.ErrForeignKey)
}

func TestTaskStore_ListAndCount(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	users := NewUserStore(db, discardLogger())
	tasks := NewTaskStore(db, discardLogger())
	ctx := context.Background()

	owner := createTestUser(t, users, "owner@example.com")
	other := createTestUser(t, users, "other@example.com")

	base := time.Now().UTC().Add(-time.Hour)
	var ids []uuid.UUID
	for i, title := range []string{"oldest", "middle", "newest"} {
		task := createOrphanTask(t)
		task.UserID = owner.ID
		task.Title = title
		task.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, tasks.Create(ctx, task))
		ids = append(ids, task.ID)
	}
	createTestTask(t, tasks, other.ID, "not mine")

	list, err := tasks.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []uuid.UUID{ids[2], ids[1], ids[0]}, []uuid.UUID{list[0].ID, list[1].ID, list[2].ID})

	n, err := tasks.CountByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	removed, err := tasks.DeleteAllByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, removed)

	list, err = tasks.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	n, err = tasks.CountByUser(ctx, other.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestTaskStore_Favorites(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	users := NewUserStore(db, discardLogger())
	tasks := NewTaskStore(db, discardLogger())
	ctx := context.Background()

	owner := createTestUser(t, users, "owner@example.com")
	starred := createTestTask(t, tasks, owner.ID, "starred")
	createTestTask(t, tasks, owner.ID, "plain")

	require.NoError(t, tasks.AddFavorite(ctx, owner.ID, starred.ID))
	require.NoError(t, tasks.AddFavorite(ctx, owner.ID, starred.ID), "adding twice is a no-op")

	favorites, err := tasks.ListFavorites(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, starred.ID, favorites[0].ID)
	assert.Equal(t, "starred", favorites[0].Title)

	require.NoError(t, tasks.RemoveFavorite(ctx, owner.ID, starred.ID))
	require.NoError(t, tasks.RemoveFavorite(ctx, owner.ID, starred.ID), "removing twice is a no-op")

	favorites, err = tasks.ListFavorites(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, favorites)

	assert.ErrorIs(t, tasks.AddFavorite(ctx, owner.ID, uuid.New()), store.ErrTaskNotFound)
}

func TestTaskStore_DeleteTaskRemovesFavorite(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	users := NewUserStore(db, discardLogger())
	tasks := NewTaskStore(db, discardLogger())
	ctx := context.Background()

	owner := createTestUser(t, users, "owner@example.com")
	task := createTestTask(t, tasks, owner.ID, "temporary")
	require.NoError(t, tasks.AddFavorite(ctx, owner.ID, task.ID))

	require.NoError(t, tasks.Delete(ctx, owner.ID, task.ID))

	favorites, err := tasks.ListFavorites(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, favorites)
}

func TestTaskStore_WithTxRollback(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	users := NewUserStore(db, discardLogger())
	tasks := NewTaskStore(db, discardLogger())
	ctx := context.Background()
	owner := createTestUser(t, users, "owner@example.com")

	err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *gorm.DB) error {
		createTestTask(t, tasks.WithTx(tx).(*TaskStore), owner.ID, "rolled back")
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	n, err := tasks.CountByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}
