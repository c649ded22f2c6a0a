package registry

import "testing"

func TestSortVersionsNewestFirst(t *testing.T) {
	versions := []VersionMeta{
		{Version: "1.9.0"},
		{Version: "2.0.0"},
		{Version: "1.10.0"},
		{Version: "not-a-version"},
		{Version: "1.2.0"},
	}
	sortVersionsNewestFirst(versions)

	want := []string{"2.0.0", "1.10.0", "1.9.0", "1.2.0", "not-a-version"}
	got := make([]string, len(versions))
	for i, vm := range versions {
		got[i] = vm.Version
	}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
