package usage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhukovvlad/designfee-go/cmd/internal/testutil"
	"github.com/zhukovvlad/designfee-go/cmd/pkg/logging"
)

func TestMemoryCounter(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCounter()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Increment(ctx)
		}()
	}
	wg.Wait()

	v, err := c.Value(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(50), v)
}

func TestPostgresCounter(t *testing.T) {
	if testing.Short() {
		t.Skip("интеграционный тест с PostgreSQL пропущен в режиме -short")
	}

	db := testutil.StartPostgres(t)

	ctx := context.Background()
	c := NewPostgresCounter(db, VisitsCounter, logging.NewDiscardLogger())

	t.Run("нет строки - ноль", func(t *testing.T) {
		v, err := c.Value(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), v)
	})

	t.Run("инкремент возвращает новое значение", func(t *testing.T) {
		v, err := c.Increment(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)

		v, err = c.Increment(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), v)
	})

	t.Run("счётчики с разными именами независимы", func(t *testing.T) {
		other := NewPostgresCounter(db, "exports", logging.NewDiscardLogger())
		v, err := other.Increment(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)

		v, err = c.Value(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), v)
	})

	t.Run("очистка таблиц", func(t *testing.T) {
		testutil.ResetCounters(t, db)
		v, err := c.Value(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), v)
	})
}
