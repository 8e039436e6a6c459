package cli

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"manomitra/internal/domain"
)

type fakeSeeder struct {
	titles  []string
	listErr error
	seeded  []domain.AgeGroup
	calls   int
}

func (f *fakeSeeder) ListAgeGroups(context.Context) ([]string, error) {
	return f.titles, f.listErr
}

func (f *fakeSeeder) Seed(_ context.Context, groups []domain.AgeGroup) error {
	f.calls++
	f.seeded = groups
	return nil
}

func TestEnsureCatalogSeededFillsEmptyTables(t *testing.T) {
	seeder := &fakeSeeder{}
	groups := []domain.AgeGroup{{Title: "0-6 Months"}, {Title: "6-12 Months"}}

	if err := ensureCatalogSeeded(context.Background(), seeder, groups, zap.NewNop()); err != nil {
		t.Fatalf("ensure seeded: %v", err)
	}
	if seeder.calls != 1 || len(seeder.seeded) != 2 {
		t.Fatalf("expected one seed of 2 groups, got %d calls with %d groups", seeder.calls, len(seeder.seeded))
	}
}

func TestEnsureCatalogSeededKeepsExistingRows(t *testing.T) {
	seeder := &fakeSeeder{titles: []string{"0-6 Months"}}

	if err := ensureCatalogSeeded(context.Background(), seeder, []domain.AgeGroup{{Title: "0-6 Months"}}, zap.NewNop()); err != nil {
		t.Fatalf("ensure seeded: %v", err)
	}
	if seeder.calls != 0 {
		t.Fatalf("expected no seeding over existing rows, got %d calls", seeder.calls)
	}
}

func TestEnsureCatalogSeededSurfacesListError(t *testing.T) {
	boom := errors.New("relation does not exist")
	seeder := &fakeSeeder{listErr: boom}

	err := ensureCatalogSeeded(context.Background(), seeder, nil, zap.NewNop())
	if !errors.Is(err, boom) || seeder.calls != 0 {
		t.Fatalf("expected list error without seeding, got %v (%d calls)", err, seeder.calls)
	}
}
