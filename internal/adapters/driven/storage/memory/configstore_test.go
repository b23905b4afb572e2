package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("matching.amount_tolerance", "0.05"))

	val, ok := store.Get("matching.amount_tolerance")
	assert.True(t, ok)
	assert.Equal(t, "0.05", val)
	assert.Equal(t, "0.05", store.GetString("matching.amount_tolerance"))
}

func TestConfigStore_Get_NotFound(t *testing.T) {
	store := NewConfigStore()

	val, ok := store.Get("missing")

	assert.False(t, ok)
	assert.Nil(t, val)
	assert.Empty(t, store.GetString("missing"))
	assert.Zero(t, store.GetInt("missing"))
}

func TestConfigStore_GetInt(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int
	}{
		{"int", 8, 8},
		{"int64", int64(12), 12},
		{"float64", 3.0, 3},
		{"string", "8", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewConfigStore()
			require.NoError(t, store.Set("run.workers", tt.value))
			assert.Equal(t, tt.want, store.GetInt("run.workers"))
		})
	}
}

func TestConfigStore_GetString_WrongType(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("report.top_n", 50))

	assert.Empty(t, store.GetString("report.top_n"))
}

func TestConfigStore_Delete(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("report.top_n", 10))

	require.NoError(t, store.Delete("report.top_n"))

	_, ok := store.Get("report.top_n")
	assert.False(t, ok)
}

func TestConfigStore_SaveLoadPath(t *testing.T) {
	store := NewConfigStore()

	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key.%d", n%5)
			_ = store.Set(key, n)
			store.GetInt(key)
			_ = store.Delete(key)
		}(i)
	}
	wg.Wait()
}
