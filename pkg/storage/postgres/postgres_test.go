package postgres

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/diarydepresiku/moodlog/pkg/api"
	"github.com/diarydepresiku/moodlog/pkg/storage"
	"github.com/diarydepresiku/moodlog/pkg/transport"
)

func init() {
	// Point testcontainers at a podman machine socket when Docker is not configured.
	if os.Getenv("DOCKER_HOST") == "" {
		out, err := exec.Command("podman", "machine", "inspect", "--format", "{{.ConnectionInfo.PodmanSocket.Path}}").Output()
		if err == nil {
			if sock := strings.TrimSpace(string(out)); sock != "" {
				os.Setenv("DOCKER_HOST", "unix://"+sock)
			}
		}
	}
	if os.Getenv("TESTCONTAINERS_RYUK_CONTAINER_PRIVILEGED") == "" {
		os.Setenv("TESTCONTAINERS_RYUK_CONTAINER_PRIVILEGED", "true")
	}
}

// setupTestDB starts a PostgreSQL container and returns a migrated Store.
// Tests are skipped when no container runtime is available.
func setupTestDB(t *testing.T) *Store {
	t.Helper()

	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("SKIP_INTEGRATION=true, skipping PostgreSQL integration tests")
	}

	ctx := context.Background()

	container, err := pgmodule.Run(ctx,
		"postgres:16-alpine",
		pgmodule.WithDatabase("moodlog_test"),
		pgmodule.WithUsername("test"),
		pgmodule.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("skipping: could not start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		container.Terminate(context.Background())
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("getting connection string: %v", err)
	}

	store, err := New(ctx, Config{
		DSN:            connStr,
		MaxConns:       5,
		MinConns:       1,
		MigrateOnStart: true,
	})
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func TestLoadMigrations(t *testing.T) {
	ms, err := loadMigrations()
	if err != nil {
		t.Fatalf("loadMigrations: %v", err)
	}
	if len(ms) < 2 {
		t.Fatalf("found %d migrations, want at least 2", len(ms))
	}
	for i := 1; i < len(ms); i++ {
		if ms[i].version <= ms[i-1].version {
			t.Errorf("migrations out of order: %v", ms)
		}
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if isUniqueViolation(errors.New("23505")) {
		t.Error("plain error must not match")
	}
}

func TestPostgres_SaveAndGet(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	saved, err := store.SaveEntry(ctx, &api.EntryCreate{
		Content:    "hari yang panjang",
		Mood:       api.MoodCemas,
		Timestamp:  1700000000,
		Activities: []string{"kerja", "lari"},
	})
	if err != nil {
		t.Fatalf("SaveEntry: %v", err)
	}
	if saved.ID == 0 {
		t.Fatal("expected generated ID")
	}

	got, err := store.GetEntry(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if got.Content != "hari yang panjang" || got.Mood != api.MoodCemas || got.Timestamp != 1700000000 {
		t.Errorf("got %+v", got)
	}
	if strings.Join(got.Activities, ",") != "kerja,lari" {
		t.Errorf("Activities = %v", got.Activities)
	}
}

func TestPostgres_NilActivities(t *testing.T) {
	store := setupTestDB(t)
	saved, err := store.SaveEntry(context.Background(), &api.EntryCreate{Content: "x", Mood: api.MoodSenang})
	if err != nil {
		t.Fatalf("SaveEntry: %v", err)
	}
	if saved.Activities == nil || len(saved.Activities) != 0 {
		t.Errorf("Activities = %#v, want empty non-nil", saved.Activities)
	}
}

func TestPostgres_GetNotFound(t *testing.T) {
	store := setupTestDB(t)
	_, err := store.GetEntry(context.Background(), 999999)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestPostgres_ListAndStats(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	moods := []string{api.MoodSenang, api.MoodSedih, api.MoodSenang, api.MoodMarah}
	for i, m := range moods {
		if _, err := store.SaveEntry(ctx, &api.EntryCreate{Content: "e", Mood: m, Timestamp: int64(i + 1)}); err != nil {
			t.Fatalf("SaveEntry: %v", err)
		}
	}

	list, err := store.ListEntries(ctx, transport.ListOptions{Skip: 1, Limit: 2})
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(list) != 2 || list[0].Timestamp != 3 || list[1].Timestamp != 2 {
		t.Errorf("list = %+v", list)
	}

	empty, err := store.ListEntries(ctx, transport.ListOptions{Skip: 100})
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("past-the-end list = %v, %v", empty, err)
	}

	stats, err := store.MoodStats(ctx)
	if err != nil {
		t.Fatalf("MoodStats: %v", err)
	}
	if stats[api.MoodSenang] != 2 || stats[api.MoodSedih] != 1 || stats[api.MoodMarah] != 1 || len(stats) != 3 {
		t.Errorf("stats = %v", stats)
	}
}

func TestPostgres_Users(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	u := &api.User{Email: "Budi@Example.com", Name: "Budi", PasswordHash: "hash"}
	if err := store.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == 0 || u.CreatedAt.IsZero() {
		t.Errorf("user not populated: %+v", u)
	}

	err := store.CreateUser(ctx, &api.User{Email: "budi@example.com", Name: "B2", PasswordHash: "h"})
	if !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate err = %v, want ErrConflict", err)
	}

	got, err := store.GetUserByEmail(ctx, "BUDI@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != u.ID || got.PasswordHash != "hash" {
		t.Errorf("got %+v", got)
	}

	if _, err := store.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("unknown user err = %v, want ErrNotFound", err)
	}
}

func TestPostgres_MigrateIdempotent(t *testing.T) {
	store := setupTestDB(t)
	if err := store.migrate(context.Background()); err != nil {
		t.Errorf("second migrate: %v", err)
	}
}

func TestPostgres_HealthCheck(t *testing.T) {
	store := setupTestDB(t)
	if err := store.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck: %v", err)
	}
}
