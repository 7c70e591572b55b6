package repos

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/careerlens/careerlens-backend/internal/logger"
	"github.com/careerlens/careerlens-backend/internal/types"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&types.User{}, &types.Feedback{}, &types.ModelMetrics{}, &types.RetrainRun{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func seedEntry(t *testing.T, repo FeedbackRepo, userID uuid.UUID, role string, createdAt time.Time) {
	t.Helper()
	_, err := repo.Create(context.Background(), nil, []*types.Feedback{{
		ID:                 uuid.New(),
		UserID:             userID,
		Rating:             3,
		ConfidenceAccuracy: types.ConfidenceAccuracyLow,
		PredictedRole:      role,
		CreatedAt:          createdAt,
	}})
	if err != nil {
		t.Fatalf("create feedback: %v", err)
	}
}

func TestFeedbackListByUserInsertionOrder(t *testing.T) {
	repo := NewFeedbackRepo(testDB(t), logger.NewNop())
	userA := uuid.New()
	userB := uuid.New()
	base := time.Now().Add(-time.Hour)

	seedEntry(t, repo, userA, "first", base)
	seedEntry(t, repo, userB, "noise", base.Add(time.Second))
	seedEntry(t, repo, userA, "second", base.Add(2*time.Second))
	seedEntry(t, repo, userA, "third", base.Add(3*time.Second))

	entries, err := repo.ListByUser(context.Background(), nil, userA)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries=%d, want 3", len(entries))
	}
	for i, want := range []string{"first", "second", "third"} {
		if entries[i].PredictedRole != want {
			t.Fatalf("entry %d=%q, want %q", i, entries[i].PredictedRole, want)
		}
	}
}

func TestFeedbackCountForUserSinceExclusiveBound(t *testing.T) {
	repo := NewFeedbackRepo(testDB(t), logger.NewNop())
	userID := uuid.New()
	cutoff := time.Now().Add(-7 * 24 * time.Hour)

	seedEntry(t, repo, userID, "at_cutoff", cutoff)
	seedEntry(t, repo, userID, "inside", cutoff.Add(time.Hour))
	seedEntry(t, repo, userID, "outside", cutoff.Add(-time.Hour))

	count, err := repo.CountForUserSince(context.Background(), nil, userID, cutoff)
	if err != nil {
		t.Fatalf("CountForUserSince: %v", err)
	}
	if count != 1 {
		t.Fatalf("count=%d, want 1 (entry exactly at the cutoff is excluded)", count)
	}
}

func TestFeedbackListAllWithUserPreloads(t *testing.T) {
	gdb := testDB(t)
	log := logger.NewNop()
	repo := NewFeedbackRepo(gdb, log)
	users := NewUserRepo(gdb, log)

	user := &types.User{ID: uuid.New(), Email: "asha@example.com", Name: "Asha"}
	if _, err := users.Create(context.Background(), nil, []*types.User{user}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	seedEntry(t, repo, user.ID, "Data Analyst", time.Now())

	entries, err := repo.ListAllWithUser(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListAllWithUser: %v", err)
	}
	if len(entries) != 1 || entries[0].User == nil || entries[0].User.Name != "Asha" {
		t.Fatalf("entries=%+v, want user preloaded", entries)
	}
}
