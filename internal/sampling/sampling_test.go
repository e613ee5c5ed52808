package sampling_test

import (
	"fmt"
	"reflect"
	"testing"

	"framemill/internal/config"
	"framemill/internal/project"
	"framemill/internal/sampling"
)

func buildPhotos(counts map[string]int, order []string) []project.Photo {
	var photos []project.Photo
	for _, group := range order {
		for i := 0; i < counts[group]; i++ {
			photos = append(photos, project.Photo{
				Date:  "2024-01-05",
				Group: group,
				Name:  fmt.Sprintf("img%03d.dng", i),
			})
		}
	}
	return photos
}

func TestSampleDisabledReturnsInput(t *testing.T) {
	photos := buildPhotos(map[string]int{"a": 3}, []string{"a"})
	got := sampling.Sample(photos, config.SampleSpec{})
	if !reflect.DeepEqual(got, photos) {
		t.Fatal("disabled sampling should return the input unchanged")
	}
}

func TestSampleOrderedTakesFirstN(t *testing.T) {
	photos := buildPhotos(map[string]int{"a": 5, "b": 5}, []string{"a", "b"})
	got := sampling.Sample(photos, config.SampleSpec{Enabled: true, Size: 7})
	if !reflect.DeepEqual(got, photos[:7]) {
		t.Fatalf("unexpected ordered sample: %v", got)
	}
}

func TestSampleSizeAtLeastTotalReturnsEverything(t *testing.T) {
	photos := buildPhotos(map[string]int{"a": 4}, []string{"a"})
	for _, spec := range []config.SampleSpec{
		{Enabled: true, Size: 4},
		{Enabled: true, Size: 100},
		{Enabled: true, Randomized: true, Size: 100},
	} {
		got := sampling.Sample(photos, spec)
		if len(got) != 4 {
			t.Fatalf("sample %+v returned %d photos, want all 4", spec, len(got))
		}
	}
}

func TestSampleRandomizedProportionalAllocation(t *testing.T) {
	counts := map[string]int{"a": 10, "b": 40, "c": 50}
	photos := buildPhotos(counts, []string{"a", "b", "c"})

	for trial := 0; trial < 20; trial++ {
		got := sampling.Sample(photos, config.SampleSpec{Enabled: true, Randomized: true, Size: 10})
		if len(got) != 10 {
			t.Fatalf("trial %d: got %d photos, want 10", trial, len(got))
		}

		perGroup := make(map[string]int)
		for _, p := range got {
			perGroup[p.Group]++
		}
		want := map[string]int{"a": 1, "b": 4, "c": 5}
		if !reflect.DeepEqual(perGroup, want) {
			t.Fatalf("trial %d: unexpected allocation %v, want %v", trial, perGroup, want)
		}

		seen := make(map[string]struct{})
		for _, p := range got {
			key := p.Identity()
			if _, dup := seen[key]; dup {
				t.Fatalf("trial %d: duplicate selection %s", trial, key)
			}
			seen[key] = struct{}{}
		}
	}
}

func TestSampleRandomizedPreservesScanOrder(t *testing.T) {
	photos := buildPhotos(map[string]int{"a": 20, "b": 20}, []string{"a", "b"})
	got := sampling.Sample(photos, config.SampleSpec{Enabled: true, Randomized: true, Size: 10})

	index := make(map[string]int, len(photos))
	for i, p := range photos {
		index[p.Identity()] = i
	}
	last := -1
	for _, p := range got {
		if index[p.Identity()] < last {
			t.Fatal("randomized sample should preserve relative scan order")
		}
		last = index[p.Identity()]
	}
}

func TestSampleRandomizedNeverOverdrawsSmallGroups(t *testing.T) {
	counts := map[string]int{"a": 1, "b": 1, "c": 98}
	photos := buildPhotos(counts, []string{"a", "b", "c"})

	for trial := 0; trial < 20; trial++ {
		got := sampling.Sample(photos, config.SampleSpec{Enabled: true, Randomized: true, Size: 50})
		if len(got) != 50 {
			t.Fatalf("trial %d: got %d photos, want 50", trial, len(got))
		}
		perGroup := make(map[string]int)
		for _, p := range got {
			perGroup[p.Group]++
		}
		if perGroup["a"] > 1 || perGroup["b"] > 1 {
			t.Fatalf("trial %d: group overdrawn: %v", trial, perGroup)
		}
	}
}
