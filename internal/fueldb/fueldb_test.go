package fueldb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rubiojr/fuelfinder/pkg/api"
	"github.com/shopspring/decimal"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(context.Background(), Options{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "test.db")}, nil)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func importDataset(t *testing.T, s *Storage, name string) *Dataset {
	t.Helper()
	ds, err := LoadDataset(name)
	if err != nil {
		t.Fatalf("LoadDataset(%q) failed: %v", name, err)
	}
	if err := s.ImportStations(context.Background(), ds); err != nil {
		t.Fatalf("ImportStations() failed: %v", err)
	}
	return ds
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "mysql", DSN: "x"}, nil)
	if !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("Expected ErrUnknownDriver, got %v", err)
	}
}

func TestImportAndSnapshot(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	if _, err := s.Snapshot(ctx); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("Expected ErrNoSnapshot before import, got %v", err)
	}
	if ok, _ := s.HasSnapshot(ctx); ok {
		t.Fatal("Expected no snapshot before import")
	}

	importDataset(t, s, "tashkent")

	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() failed: %v", err)
	}
	if snap.Name != "tashkent" || snap.Center.Lat != 41.2995 || snap.Center.Lng != 69.2401 {
		t.Errorf("Unexpected snapshot metadata %+v", snap)
	}
	if len(snap.Stations) != 5 {
		t.Fatalf("Expected 5 stations, got %d", len(snap.Stations))
	}
	for i, st := range snap.Stations {
		if want := []string{"1", "2", "3", "4", "5"}[i]; st.ID != want {
			t.Errorf("Station %d has id %s, expected %s", i, st.ID, want)
		}
	}

	st, err := s.Station(ctx, "4")
	if err != nil {
		t.Fatalf("Station() failed: %v", err)
	}
	if st.Name.Get("en") != "Sharaf Fuel" || st.Name.Get("ru") != "Шараф Топливо" {
		t.Errorf("Unexpected station name %v", st.Name)
	}
	if !st.Prices["AI-80"].Equal(decimal.NewFromInt(8600)) {
		t.Errorf("Expected AI-80 price 8600, got %s", st.Prices["AI-80"])
	}
	if st.RatingOrZero() != 4.8 {
		t.Errorf("Expected rating 4.8, got %v", st.RatingOrZero())
	}

	if _, err := s.Station(ctx, "42"); !errors.Is(err, ErrStationNotFound) {
		t.Errorf("Expected ErrStationNotFound, got %v", err)
	}

	// a new import replaces the snapshot and invalidates the cache
	importDataset(t, s, "khorezm")
	stations, err := s.Stations(ctx)
	if err != nil {
		t.Fatalf("Stations() failed: %v", err)
	}
	if len(stations) != 17 {
		t.Fatalf("Expected 17 stations after re-import, got %d", len(stations))
	}
	if stations[0].Name.Get("uz") != "Chinobod oil" || stations[0].OpenNow == nil || !*stations[0].OpenNow {
		t.Errorf("Unexpected first station %+v", stations[0])
	}
}

func TestImportRejectsInvalidSnapshot(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	importDataset(t, s, "tashkent")

	bad := &Dataset{
		Name: "bad",
		Stations: []api.Station{
			{ID: "1", FuelTypes: []string{"AI-92"}},
			{ID: "1", FuelTypes: []string{"AI-95"}},
		},
	}
	if err := s.ImportStations(ctx, bad); !errors.Is(err, ErrInvalidStation) {
		t.Fatalf("Expected ErrInvalidStation, got %v", err)
	}

	// the previous snapshot survives
	stations, err := s.Stations(ctx)
	if err != nil || len(stations) != 5 {
		t.Errorf("Expected previous snapshot to be kept, got %d stations, %v", len(stations), err)
	}
}

func TestReviews(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	importDataset(t, s, "khorezm")

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	summary, err := s.ReviewSummary(ctx, "7")
	if err != nil {
		t.Fatalf("ReviewSummary() failed: %v", err)
	}
	if summary.Count != 0 || summary.Average != nil {
		t.Errorf("Expected empty summary, got %+v", summary)
	}

	first, err := s.AddReview(ctx, "7", api.NewReview{UserName: "  Aziz ", Rating: 5, Comment: "Tez xizmat"})
	if err != nil {
		t.Fatalf("AddReview() failed: %v", err)
	}
	if first.UserName != "Aziz" || first.Comment == nil || *first.Comment != "Tez xizmat" {
		t.Errorf("Unexpected review %+v", first)
	}

	second, err := s.AddReview(ctx, "7", api.NewReview{UserName: "Dilnoza", Rating: 2, Comment: "   "})
	if err != nil {
		t.Fatalf("AddReview() failed: %v", err)
	}
	if second.Comment != nil {
		t.Errorf("Expected blank comment to be absent, got %q", *second.Comment)
	}

	if _, err := s.AddReview(ctx, "8", api.NewReview{UserName: "Other", Rating: 4}); err != nil {
		t.Fatalf("AddReview() failed: %v", err)
	}

	reviews, err := s.ListReviews(ctx, "7")
	if err != nil {
		t.Fatalf("ListReviews() failed: %v", err)
	}
	if len(reviews) != 2 {
		t.Fatalf("Expected 2 reviews, got %d", len(reviews))
	}
	if reviews[0].ID != second.ID || reviews[1].ID != first.ID {
		t.Errorf("Expected newest first, got ids %d, %d", reviews[0].ID, reviews[1].ID)
	}
	if !reviews[1].CreatedAt.Before(reviews[0].CreatedAt) {
		t.Errorf("Expected ordered timestamps, got %v, %v", reviews[1].CreatedAt, reviews[0].CreatedAt)
	}

	summary, err = s.ReviewSummary(ctx, "7")
	if err != nil {
		t.Fatalf("ReviewSummary() failed: %v", err)
	}
	if summary.Count != 2 || summary.Average == nil || *summary.Average != 3.5 {
		t.Errorf("Expected 2 reviews averaging 3.5, got %+v", summary)
	}
}

func TestAddReviewValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	importDataset(t, s, "khorezm")

	tests := []struct {
		name      string
		stationID string
		review    api.NewReview
		expected  error
	}{
		{"rating too low", "1", api.NewReview{UserName: "Aziz", Rating: 0}, ErrInvalidReview},
		{"rating too high", "1", api.NewReview{UserName: "Aziz", Rating: 6}, ErrInvalidReview},
		{"blank name", "1", api.NewReview{UserName: "   ", Rating: 3}, ErrInvalidReview},
		{"unknown station", "99", api.NewReview{UserName: "Aziz", Rating: 3}, ErrStationNotFound},
	}

	for _, test := range tests {
		if _, err := s.AddReview(ctx, test.stationID, test.review); !errors.Is(err, test.expected) {
			t.Errorf("%s: expected %v, got %v", test.name, test.expected, err)
		}
	}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	u, err := s.CreateUser(ctx, "Aziz", "Aziz@Example.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	if u.ID == 0 || u.Email != "aziz@example.com" {
		t.Errorf("Unexpected user %+v", u)
	}

	if _, err := s.CreateUser(ctx, "Other", "aziz@example.com ", "hash2"); !errors.Is(err, ErrEmailInUse) {
		t.Errorf("Expected ErrEmailInUse, got %v", err)
	}

	found, err := s.UserByEmail(ctx, "AZIZ@example.com")
	if err != nil {
		t.Fatalf("UserByEmail() failed: %v", err)
	}
	if found.ID != u.ID || found.PasswordHash != "hash" {
		t.Errorf("Unexpected user %+v", found)
	}

	if _, err := s.UserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestLocationLogsAndHeatmap(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	searches := [][3]float64{
		{41.5526, 60.6269, 5},
		{41.5531, 60.6271, 10}, // same rounded cell
		{41.5520, 60.6390, 5},  // under a kilometre away
		{41.3788, 60.3629, 5},  // Khiva
	}
	for _, q := range searches {
		if err := s.LogSearchLocation(ctx, q[0], q[1], q[2]); err != nil {
			t.Fatalf("LogSearchLocation() failed: %v", err)
		}
	}

	logs, err := s.GetLocationLogs(ctx, 0)
	if err != nil {
		t.Fatalf("GetLocationLogs() failed: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("Expected 3 location logs, got %d", len(logs))
	}
	if logs[0].SearchCount != 2 || logs[0].Distance != 10 {
		t.Errorf("Expected most searched cell first with count 2, got %+v", logs[0])
	}

	heatmap, err := s.GetPopularLocationHeatmap(ctx, 0)
	if err != nil {
		t.Fatalf("GetPopularLocationHeatmap() failed: %v", err)
	}
	if len(heatmap) != 2 {
		t.Fatalf("Expected 2 clusters, got %d", len(heatmap))
	}
	if heatmap[0].SearchCount != 3 || heatmap[1].SearchCount != 1 {
		t.Errorf("Unexpected cluster weights %+v", heatmap)
	}
	if heatmap[0].Radius != 10 {
		t.Errorf("Expected cluster radius 10, got %v", heatmap[0].Radius)
	}

	limited, err := s.GetPopularLocationHeatmap(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Errorf("Expected 1 cluster with limit, got %d, %v", len(limited), err)
	}
}

func TestPruneLocationLogs(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now.AddDate(0, 0, -30) }
	if err := s.LogSearchLocation(ctx, 41.30, 69.24, 5); err != nil {
		t.Fatal(err)
	}
	s.now = func() time.Time { return now }
	if err := s.LogSearchLocation(ctx, 41.55, 60.62, 5); err != nil {
		t.Fatal(err)
	}

	n, err := s.PruneLocationLogs(ctx, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("PruneLocationLogs() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 pruned log, got %d", n)
	}
}
