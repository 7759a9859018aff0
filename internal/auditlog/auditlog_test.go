package auditlog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/newsroom-api/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSink(t *testing.T) *Sink {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "logs", "app.log"), zerolog.Nop())
}

func TestAppend_RecordShape(t *testing.T) {
	s := newTestSink(t)
	s.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 8_000_000, time.UTC) }
	ctx := context.Background()

	actor := &models.Identity{UserID: "u1", Name: "Ada", Email: "ada@example.com", Role: models.RoleAdmin}
	require.NoError(t, s.Info(ctx, "News created: X", map[string]string{"newsId": "n1"}, actor))
	require.NoError(t, s.Warn(ctx, "anonymous", nil, nil))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 2)

	var first map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "INFO", first["level"])
	assert.Equal(t, "News created: X", first["message"])
	assert.Equal(t, `{"newsId":"n1"}`, first["meta"])
	assert.Equal(t, "2026-03-04T05:06:07.008Z", first["createdAt"])
	assert.NotEmpty(t, first["id"])
	assert.Equal(t, map[string]interface{}{"id": "u1", "name": "Ada", "email": "ada@example.com"}, first["user"])

	var second map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Nil(t, second["meta"])
	assert.Nil(t, second["user"])
	assert.Contains(t, lines[1], `"meta":null`)
	assert.Contains(t, lines[1], `"user":null`)
}

func TestRead_MissingFile(t *testing.T) {
	s := newTestSink(t)

	page, err := s.Read(context.Background(), 1, 20, "")
	require.NoError(t, err)
	assert.Empty(t, page.Logs)
	assert.Equal(t, models.LogPagination{Total: 0, Pages: 0, Page: 1, Limit: 20}, page.Pagination)
}

func TestRead_PaginationRemainder(t *testing.T) {
	tests := []struct {
		n, limit      int
		wantPages     int
		wantRemainder int
	}{
		{n: 7, limit: 3, wantPages: 3, wantRemainder: 1},
		{n: 6, limit: 3, wantPages: 2, wantRemainder: 3},
		{n: 1, limit: 20, wantPages: 1, wantRemainder: 1},
		{n: 45, limit: 20, wantPages: 3, wantRemainder: 5},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_by_%d", tt.n, tt.limit), func(t *testing.T) {
			s := newTestSink(t)
			ctx := context.Background()
			for i := 0; i < tt.n; i++ {
				require.NoError(t, s.Info(ctx, fmt.Sprintf("msg-%d", i), nil, nil))
			}

			page, err := s.Read(ctx, tt.wantPages, tt.limit, LevelAll)
			require.NoError(t, err)
			assert.Equal(t, tt.n, page.Pagination.Total)
			assert.Equal(t, tt.wantPages, page.Pagination.Pages)
			require.Len(t, page.Logs, tt.wantRemainder)
			// last page holds the oldest records, still latest first
			assert.Equal(t, "msg-0", page.Logs[len(page.Logs)-1].Message)

			first, err := s.Read(ctx, 1, tt.limit, "")
			require.NoError(t, err)
			assert.Equal(t, fmt.Sprintf("msg-%d", tt.n-1), first.Logs[0].Message)
		})
	}
}

func TestRead_PageBeyondEnd(t *testing.T) {
	s := newTestSink(t)
	ctx := context.Background()
	require.NoError(t, s.Info(ctx, "only", nil, nil))

	page, err := s.Read(ctx, 5, 20, "")
	require.NoError(t, err)
	assert.Empty(t, page.Logs)
	assert.Equal(t, 1, page.Pagination.Total)
}

func TestRead_HugePage(t *testing.T) {
	s := newTestSink(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Info(ctx, fmt.Sprintf("msg-%d", i), nil, nil))
	}

	page, err := s.Read(ctx, 1<<62, 20, "")
	require.NoError(t, err)
	assert.Empty(t, page.Logs)
	assert.Equal(t, 3, page.Pagination.Total)
	assert.Equal(t, 1, page.Pagination.Pages)
}

func TestRead_LevelFilter(t *testing.T) {
	s := newTestSink(t)
	ctx := context.Background()

	require.NoError(t, s.Info(ctx, "i1", nil, nil))
	require.NoError(t, s.Error(ctx, "e1", nil, nil))
	require.NoError(t, s.Warn(ctx, "w1", nil, nil))
	require.NoError(t, s.Error(ctx, "e2", nil, nil))

	page, err := s.Read(ctx, 1, 20, "ERROR")
	require.NoError(t, err)
	require.Len(t, page.Logs, 2)
	for _, l := range page.Logs {
		assert.Equal(t, models.LogError, l.Level)
	}
	assert.Equal(t, "e2", page.Logs[0].Message)
	assert.Equal(t, 2, page.Pagination.Total)

	page, err = s.Read(ctx, 1, 20, "error")
	require.NoError(t, err)
	assert.Empty(t, page.Logs, "level match is exact")
}

func TestRead_SkipsBadLines(t *testing.T) {
	s := newTestSink(t)
	ctx := context.Background()
	require.NoError(t, s.Info(ctx, "good-1", nil, nil))

	f, err := os.OpenFile(s.Path(), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("{not json\n\n   \nnull\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, s.Info(ctx, "good-2", nil, nil))

	page, err := s.Read(ctx, 1, 20, "")
	require.NoError(t, err)
	require.Len(t, page.Logs, 2)
	assert.Equal(t, "good-2", page.Logs[0].Message)
	assert.Equal(t, "good-1", page.Logs[1].Message)
}

func TestRead_Defaults(t *testing.T) {
	s := newTestSink(t)
	page, err := s.Read(context.Background(), 0, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 1, page.Pagination.Page)
	assert.Equal(t, DefaultLimit, page.Pagination.Limit)
}

func TestClear(t *testing.T) {
	s := newTestSink(t)
	ctx := context.Background()

	require.NoError(t, s.Clear(ctx), "clearing a missing log creates it")
	require.NoError(t, s.Info(ctx, "a", nil, nil))
	require.NoError(t, s.Clear(ctx))

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Zero(t, info.Size())

	page, err := s.Read(ctx, 1, 20, "")
	require.NoError(t, err)
	assert.Zero(t, page.Pagination.Total)
}

func TestAppend_UnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	s := New(filepath.Join(blocker, "app.log"), zerolog.Nop())
	assert.Error(t, s.Info(context.Background(), "lost", nil, nil))
}

func TestAppend_UnencodableMeta(t *testing.T) {
	s := newTestSink(t)
	err := s.Info(context.Background(), "bad meta", map[string]interface{}{"ch": make(chan int)}, nil)
	assert.Error(t, err)
}

func TestAppend_Concurrent(t *testing.T) {
	s := newTestSink(t)
	ctx := context.Background()

	const writers, perWriter = 8, 50
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_ = s.Info(ctx, fmt.Sprintf("w%d-%d", w, i), map[string]int{"i": i}, nil)
			}
		}(w)
	}
	wg.Wait()

	page, err := s.Read(ctx, 1, writers*perWriter, "")
	require.NoError(t, err)
	assert.Equal(t, writers*perWriter, page.Pagination.Total)
}
