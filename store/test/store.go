package test

import (
	"context"
	"os"
	"testing"

	"github.com/hrygo/nutribot/internal/profile"
	"github.com/hrygo/nutribot/store"
	"github.com/hrygo/nutribot/store/db"
)

// NewTestingStore opens a migrated, demo-seeded store. SQLite in a temp dir by
// default; set DRIVER=postgres and POSTGRES_TEST_DSN to run against PostgreSQL.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()
	p := getTestingProfile(t)
	driver, err := db.NewDBDriver(p)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}
	s := store.New(driver, p)
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func getTestingProfile(t *testing.T) *profile.Profile {
	driver := getDriverFromEnv()
	p := &profile.Profile{
		Mode:   "demo",
		Data:   t.TempDir(),
		Driver: driver,
	}
	if driver == "postgres" {
		p.Mode = "dev"
		p.DSN = os.Getenv("POSTGRES_TEST_DSN")
		if p.DSN == "" {
			t.Skip("POSTGRES_TEST_DSN is not set")
		}
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("invalid testing profile: %v", err)
	}
	return p
}

func getDriverFromEnv() string {
	if driver := os.Getenv("DRIVER"); driver != "" {
		return driver
	}
	return "sqlite"
}

func createTestingUser(ctx context.Context, ts *store.Store, username string) (*store.User, error) {
	return ts.CreateUser(ctx, &store.User{
		Username:     username,
		Email:        username + "@nutribot.test",
		PasswordHash: "hash",
		Age:          25,
		Height:       175,
		Weight:       70,
		Gender:       "male",
		Goal:         "weight loss",
		CreatedTs:    1700000000,
		UpdatedTs:    1700000000,
	})
}
