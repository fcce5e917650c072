package store

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/reportkit/internal/config"
	"github.com/JonMunkholm/reportkit/internal/core"
)

func sampleReport(createdAt time.Time) core.ScheduledReport {
	return core.ScheduledReport{
		ID:              uuid.NewString(),
		Index:           "logs-*",
		VisualizationID: "vis-1",
		Title:           "Daily errors",
		Request:         `{"query":{"match_all":{}}}`,
		Duration:        1,
		DurationUnit:    core.UnitDay,
		Receiver:        "ops@example.com",
		TimeFilter:      7,
		TimeFilterUnit:  core.UnitDay,
		Columns:         `["host","status"]`,
		CreatedAt:       createdAt.UTC().Truncate(time.Millisecond),
	}
}

// testReportStore runs the behavior every ReportStore must share.
func testReportStore(t *testing.T, s core.ReportStore) {
	t.Helper()
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	later := sampleReport(base.Add(time.Hour))
	earlier := sampleReport(base)

	t.Run("create and get", func(t *testing.T) {
		for _, r := range []core.ScheduledReport{later, earlier} {
			if err := s.Create(ctx, r); err != nil {
				t.Fatalf("Create failed: %v", err)
			}
		}

		got, err := s.Get(ctx, later.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got != later {
			t.Errorf("Get() = %+v, want %+v", got, later)
		}
	})

	t.Run("duplicate id", func(t *testing.T) {
		// Rejected duplicates must leave the stored record and its position alone.
		dup := later
		dup.Title = "Replaced"
		dup.CreatedAt = base.Add(-2 * time.Hour)

		err := s.Create(ctx, dup)
		if err == nil || !strings.Contains(err.Error(), "duplicate key") {
			t.Errorf("duplicate Create error = %v, want duplicate key", err)
		}
		got, err := s.Get(ctx, later.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got != later {
			t.Errorf("Get() after duplicate = %+v, want %+v", got, later)
		}
	})

	t.Run("list ordered by creation", func(t *testing.T) {
		reports, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(reports) < 2 {
			t.Fatalf("len(reports) = %d, want at least 2", len(reports))
		}
		var iEarlier, iLater = -1, -1
		for i, r := range reports {
			switch r.ID {
			case earlier.ID:
				iEarlier = i
			case later.ID:
				iLater = i
			}
		}
		if iEarlier < 0 || iLater < 0 || iEarlier > iLater {
			t.Errorf("order: earlier at %d, later at %d", iEarlier, iLater)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := s.Delete(ctx, earlier.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := s.Get(ctx, earlier.ID); !errors.Is(err, core.ErrReportNotFound) {
			t.Errorf("Get after delete error = %v, want ErrReportNotFound", err)
		}
		if err := s.Delete(ctx, earlier.ID); !errors.Is(err, core.ErrReportNotFound) {
			t.Errorf("second Delete error = %v, want ErrReportNotFound", err)
		}
		if err := s.Delete(ctx, later.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		if _, err := s.Get(ctx, uuid.NewString()); !errors.Is(err, core.ErrReportNotFound) {
			t.Errorf("Get error = %v, want ErrReportNotFound", err)
		}
	})

	t.Run("ping", func(t *testing.T) {
		if err := s.Ping(ctx); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	testReportStore(t, NewMemoryStore())
}

func TestMemoryStore_EmptyList(t *testing.T) {
	reports, err := NewMemoryStore().List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if reports == nil || len(reports) != 0 {
		t.Errorf("List() = %v, want empty non-nil slice", reports)
	}
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewMemoryStore()
	if err := s.Create(ctx, sampleReport(time.Now())); !errors.Is(err, context.Canceled) {
		t.Errorf("Create error = %v, want context.Canceled", err)
	}
	if err := s.Ping(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Ping error = %v, want context.Canceled", err)
	}
}

func TestSortReports_TiesByID(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	reports := []core.ScheduledReport{
		{ID: "b", CreatedAt: at},
		{ID: "a", CreatedAt: at},
		{ID: "c", CreatedAt: at.Add(-time.Second)},
	}
	sortReports(reports)

	var ids []string
	for _, r := range reports {
		ids = append(ids, r.ID)
	}
	if got := strings.Join(ids, ","); got != "c,a,b" {
		t.Errorf("order = %s, want c,a,b", got)
	}
}

func TestToPgUUID(t *testing.T) {
	id := uuid.NewString()
	got, err := toPgUUID(id)
	if err != nil {
		t.Fatalf("toPgUUID failed: %v", err)
	}
	if !got.Valid || uuid.UUID(got.Bytes).String() != id {
		t.Errorf("toPgUUID(%q) = %v", id, got)
	}

	if _, err := toPgUUID("not-a-uuid"); !errors.Is(err, core.ErrReportNotFound) {
		t.Errorf("malformed id error = %v, want ErrReportNotFound", err)
	}
}

func TestRedisStore_Keys(t *testing.T) {
	s := NewRedisStore(nil, "test:")
	if got := s.reportKey("abc"); got != "test:report:abc" {
		t.Errorf("reportKey = %q", got)
	}
	if got := s.indexKey(); got != "test:reports" {
		t.Errorf("indexKey = %q", got)
	}
}

// Integration tests against real services run only when their URLs are set.

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("REPORTKIT_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("REPORTKIT_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	cfg := config.Defaults().Database
	cfg.URL = url
	pool, err := OpenPostgres(ctx, cfg)
	if err != nil {
		t.Fatalf("OpenPostgres failed: %v", err)
	}
	defer pool.Close()

	s := NewPostgresStore(pool)
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	testReportStore(t, s)
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("REPORTKIT_TEST_REDIS_URL")
	if url == "" {
		t.Skip("REPORTKIT_TEST_REDIS_URL not set")
	}
	ctx := context.Background()

	client, err := OpenRedis(ctx, url)
	if err != nil {
		t.Fatalf("OpenRedis failed: %v", err)
	}
	defer client.Close()

	prefix := "reportkit-test:" + uuid.NewString() + ":"
	testReportStore(t, NewRedisStore(client, prefix))
}
