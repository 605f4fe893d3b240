package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/silverxhexhaj/nutricoach-sub001/internal/models"
	"github.com/silverxhexhaj/nutricoach-sub001/internal/repository"
)

var (
	testDBOnce sync.Once
	testDBPool *pgxpool.Pool
	testDBErr  error
)

func TestAssignKeepsSingleActiveAssignment(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationAssignmentService(pool)

	coachID := createTestUser(t, ctx, pool, models.RoleCoach, nil)
	clientID := createTestUser(t, ctx, pool, models.RoleClient, &coachID)
	programID := createTestProgram(t, ctx, pool, coachID)
	t.Cleanup(func() { cleanupTestData(t, ctx, pool, programID, clientID, coachID) })

	first, err := service.Assign(ctx, coachID, AssignProgramInput{
		ClientID:  clientID,
		ProgramID: programID,
		StartDate: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("first Assign: %v", err)
	}
	if !first.IsActive {
		t.Fatalf("expected active assignment, got %+v", first)
	}

	second, err := service.Assign(ctx, coachID, AssignProgramInput{
		ClientID:  clientID,
		ProgramID: programID,
		StartDate: time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("second Assign: %v", err)
	}

	var activeCount int
	err = pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM client_programs WHERE client_id = $1 AND program_id = $2 AND is_active",
		clientID, programID,
	).Scan(&activeCount)
	if err != nil {
		t.Fatalf("count active: %v", err)
	}
	if activeCount != 1 {
		t.Fatalf("expected exactly one active assignment, got %d", activeCount)
	}

	active, err := service.ActiveAssignment(ctx, coachID, models.RoleCoach, clientID, programID)
	if err != nil {
		t.Fatalf("ActiveAssignment: %v", err)
	}
	if active.ID != second.ID {
		t.Fatalf("expected latest assignment %d active, got %d", second.ID, active.ID)
	}

	reloaded, err := repository.NewAssignmentRepository(pool).GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("reload first assignment: %v", err)
	}
	if reloaded.IsActive {
		t.Fatalf("expected first assignment deactivated, got %+v", reloaded)
	}
}

func TestUnassignTwiceReportsNotFound(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationAssignmentService(pool)

	coachID := createTestUser(t, ctx, pool, models.RoleCoach, nil)
	clientID := createTestUser(t, ctx, pool, models.RoleClient, &coachID)
	programID := createTestProgram(t, ctx, pool, coachID)
	t.Cleanup(func() { cleanupTestData(t, ctx, pool, programID, clientID, coachID) })

	assignment, err := service.Assign(ctx, coachID, AssignProgramInput{
		ClientID:  clientID,
		ProgramID: programID,
		StartDate: time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}

	if _, err := service.Unassign(ctx, coachID, assignment.ID); err != nil {
		t.Fatalf("first Unassign: %v", err)
	}
	if _, err := service.Unassign(ctx, coachID, assignment.ID); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected pgx.ErrNoRows on repeated Unassign, got %v", err)
	}
}

func integrationTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	testDBOnce.Do(func() {
		_ = godotenv.Load(".env")
		_ = godotenv.Load(filepath.Join("..", "..", ".env"))

		dbURL := os.Getenv("DB_URL")
		if dbURL == "" {
			testDBErr = fmt.Errorf("DB_URL is not set")
			return
		}

		cfg, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			testDBErr = err
			return
		}

		testDBPool, testDBErr = pgxpool.NewWithConfig(context.Background(), cfg)
		if testDBErr != nil {
			return
		}
		testDBErr = testDBPool.Ping(context.Background())
	})

	if testDBErr != nil {
		t.Skipf("skipping integration test: %v", testDBErr)
	}
	return testDBPool
}

func newIntegrationAssignmentService(pool *pgxpool.Pool) *AssignmentService {
	return NewAssignmentService(
		pool,
		repository.NewAssignmentRepository(pool),
		repository.NewProgramRepository(pool),
		repository.NewUserRepository(pool),
		nil,
	)
}

func createTestUser(t *testing.T, ctx context.Context, pool *pgxpool.Pool, role string, coachID *int64) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(ctx,
		"INSERT INTO users (email, role, coach_id) VALUES ($1, $2, $3) RETURNING id",
		fmt.Sprintf("assignment-test-%s-%d@example.com", role, time.Now().UnixNano()), role, coachID,
	).Scan(&id)
	if err != nil {
		t.Fatalf("create %s: %v", role, err)
	}
	return id
}

func createTestProgram(t *testing.T, ctx context.Context, pool *pgxpool.Pool, coachID int64) int64 {
	t.Helper()

	programService := NewProgramService(pool, repository.NewProgramRepository(pool), repository.NewItemRepository(pool))
	detail, err := programService.CreateProgram(ctx, coachID, CreateProgramInput{
		Name:          "Assignment Test Program",
		Difficulty:    2,
		DurationWeeks: 1,
	})
	if err != nil {
		t.Fatalf("CreateProgram: %v", err)
	}
	return detail.ID
}

func cleanupTestData(t *testing.T, ctx context.Context, pool *pgxpool.Pool, programID int64, userIDs ...int64) {
	t.Helper()

	if _, err := pool.Exec(ctx, "DELETE FROM client_programs WHERE program_id = $1", programID); err != nil {
		t.Logf("cleanup client_programs: %v", err)
	}
	if _, err := pool.Exec(ctx, "DELETE FROM programs WHERE id = $1", programID); err != nil {
		t.Logf("cleanup programs: %v", err)
	}
	for _, id := range userIDs {
		if _, err := pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id); err != nil {
			t.Logf("cleanup users: %v", err)
		}
	}
}
