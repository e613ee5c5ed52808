package project_test

import (
	"context"
	"reflect"
	"testing"

	"framemill/internal/config"
	"framemill/internal/project"
	"framemill/internal/testsupport"
)

func newScanner(t *testing.T, tree *testsupport.Tree) *project.Scanner {
	t.Helper()
	root, err := config.LoadRoot(tree.Dir, config.RootOverrides{})
	if err != nil {
		t.Fatalf("LoadRoot returned error: %v", err)
	}
	return project.NewScanner(root.Project, root.ConfigName, root.NewResolver(), true, nil)
}

func identities(photos []project.Photo) []string {
	out := make([]string, len(photos))
	for i, p := range photos {
		out[i] = p.Identity()
	}
	return out
}

func TestScanOrdersDatesGroupsAndPhotos(t *testing.T) {
	tree := testsupport.NewTree(t)
	tree.AddPhotos("2024-01-06", "a", "img2.dng", "img1.dng")
	tree.AddPhotos("2024-01-05", "b", "img3.dng")
	tree.AddPhotos("2024-01-05", "aa", "img4.dng")
	tree.AddPhotos("2024-01-05", "a", "img5.dng")

	photos, err := newScanner(t, tree).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	want := []string{
		"2024-01-05/a/img5.dng",
		"2024-01-05/b/img3.dng",
		"2024-01-05/aa/img4.dng",
		"2024-01-06/a/img1.dng",
		"2024-01-06/a/img2.dng",
	}
	if got := identities(photos); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected scan order:\n got %v\nwant %v", got, want)
	}
}

func TestScanSkipsNonDateDirectoriesAndUnqualifiedGroups(t *testing.T) {
	tree := testsupport.NewTree(t)
	tree.AddPhotos("2024-01-05", "a", "img1.dng")
	tree.AddPhotos("2024-01-05", "a1", "img2.dng") // not all letters under abc
	tree.AddPhotos("notes", "a", "img3.dng")       // not a date
	tree.AddPhotos("2024-1-5", "a", "img4.dng")    // does not round-trip
	tree.AddDir(".thumbnails")

	photos, err := newScanner(t, tree).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	want := []string{"2024-01-05/a/img1.dng"}
	if got := identities(photos); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected photos: %v", got)
	}
}

func TestScanHonorsExclusions(t *testing.T) {
	tree := testsupport.NewTree(t)
	tree.WriteConfig(`
exclude_dates = ["2024-01-06"]
exclude_groups = ["2024-01-05/b"]
`, "framemill.toml")
	tree.WriteConfig(`
exclude_photos = ["skip.dng"]
`, "2024-01-05", "a", "framemill.toml")

	tree.AddPhotos("2024-01-05", "a", "keep.dng", "skip.dng")
	tree.AddPhotos("2024-01-05", "b", "gone.dng")
	tree.AddPhotos("2024-01-06", "a", "gone.dng")

	photos, err := newScanner(t, tree).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	want := []string{"2024-01-05/a/keep.dng"}
	if got := identities(photos); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected photos: %v", got)
	}
}

func TestScanSkipsCascadeFiles(t *testing.T) {
	tree := testsupport.NewTree(t)
	tree.AddPhotos("2024-01-05", "a", "img1.dng", "img1.tiff")
	tree.WriteConfig("median_filter = 1\n", "2024-01-05", "a", "framemill.toml")

	photos, err := newScanner(t, tree).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(photos) != 1 || photos[0].Name != "img1.dng" {
		t.Fatalf("cascade file or developed output leaked into scan: %v", identities(photos))
	}
}

func TestScanPerDateOrderingPolicy(t *testing.T) {
	tree := testsupport.NewTree(t)
	tree.WriteConfig(`group_ordering = "num"`+"\n", "2024-01-05", "framemill.toml")
	tree.AddPhotos("2024-01-05", "10", "img1.dng")
	tree.AddPhotos("2024-01-05", "2", "img2.dng")
	tree.AddPhotos("2024-01-05", "a", "img3.dng") // letters do not qualify under num

	photos, err := newScanner(t, tree).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	want := []string{"2024-01-05/2/img2.dng", "2024-01-05/10/img1.dng"}
	if got := identities(photos); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestScanSurfacesConfigErrors(t *testing.T) {
	tree := testsupport.NewTree(t)
	tree.AddPhotos("2024-01-05", "a", "img1.dng")
	tree.WriteConfig("workers = 3\n", "2024-01-05", "framemill.toml")

	_, err := newScanner(t, tree).Scan(context.Background())
	if err == nil {
		t.Fatal("expected root-only option in date config to abort the scan")
	}
}

func TestScanStopsOnCancelledContext(t *testing.T) {
	tree := testsupport.NewTree(t)
	tree.AddPhotos("2024-01-05", "a", "img1.dng")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newScanner(t, tree).Scan(ctx); err == nil {
		t.Fatal("expected cancelled context to abort the scan")
	}
}
