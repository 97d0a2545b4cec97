package metricsstore_test

import (
	"testing"

	metricsstore "github.com/dalemusser/filmhub/internal/app/store/metrics"
	"github.com/dalemusser/filmhub/internal/domain/models"
	"github.com/dalemusser/filmhub/internal/testutil"
)

func TestFetchDashboardCounts_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	counts := metricsstore.FetchDashboardCounts(ctx, db)

	if counts != (metricsstore.Counts{}) {
		t.Errorf("expected zero counts, got %+v", counts)
	}
}

func TestFetchDashboardCounts_WithData(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateProfile(ctx, "Admin", "admin@example.com", models.RoleAdmin)
	fixtures.CreateProfile(ctx, "Rina", "rina@example.com", models.RoleUser)
	fixtures.CreateProfile(ctx, "Budi", "budi@example.com", models.RoleUser)

	f1 := fixtures.CreateFilm(ctx, "Published One", true, 0)
	fixtures.CreateFilm(ctx, "Published Two", true, 0)
	fixtures.CreateFilm(ctx, "Draft", false, 0)

	fixtures.CreateComment(ctx, f1.ID, admin, "great")

	counts := metricsstore.FetchDashboardCounts(ctx, db)

	want := metricsstore.Counts{Films: 3, Published: 2, Users: 3, Admins: 1, Comments: 1}
	if counts != want {
		t.Errorf("counts: got %+v, want %+v", counts, want)
	}
	if counts.Drafts() != 1 {
		t.Errorf("Drafts: got %d, want 1", counts.Drafts())
	}
}
