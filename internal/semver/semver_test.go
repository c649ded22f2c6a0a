package semver

import "testing"

func mustVersion(t *testing.T, s string) Version {
	t.Helper()
	v, err := ParseVersion(s)
	if err != nil {
		t.Fatalf("ParseVersion(%q): %v", s, err)
	}
	return v
}

func TestMatchAndLatest(t *testing.T) {
	req, err := ParseRequirement("1.0")
	if err != nil {
		t.Fatalf("ParseRequirement: %v", err)
	}
	versions := []Yanked{
		{Version: mustVersion(t, "1.2.0")},
		{Version: mustVersion(t, "1.1.0")},
		{Version: mustVersion(t, "1.0.0")},
	}
	latest, ok := Latest(req, versions, LatestOptions{})
	if !ok || latest.String() != "1.2.0" {
		t.Fatalf("expected latest 1.2.0, got %v ok=%v", latest, ok)
	}
}

func TestLatestExcludesYankedByDefault(t *testing.T) {
	req, _ := ParseRequirement("1.0")
	versions := []Yanked{
		{Version: mustVersion(t, "1.2.0"), IsYanked: true},
		{Version: mustVersion(t, "1.1.0")},
	}
	latest, ok := Latest(req, versions, LatestOptions{})
	if !ok || latest.String() != "1.1.0" {
		t.Fatalf("expected yanked 1.2.0 to be excluded, got %v ok=%v", latest, ok)
	}
}

func TestPrereleaseExcludedByDefault(t *testing.T) {
	req, _ := ParseRequirement("*")
	versions := []Yanked{{Version: mustVersion(t, "2.0.0-alpha.1")}, {Version: mustVersion(t, "1.0.0")}}
	latest, ok := Latest(req, versions, LatestOptions{})
	if !ok || latest.String() != "1.0.0" {
		t.Fatalf("expected prerelease excluded, got %v ok=%v", latest, ok)
	}
}

func TestBumpPreservesStyle(t *testing.T) {
	cases := []struct{ current, want string }{
		{"^1.0", "^1.2.0"},
		{"~1.0", "~1.2.0"},
		{"=1.0.0", "=1.2.0"},
		{"1.0", "1.2"},
	}
	nv := mustVersion(t, "1.2.0")
	for _, c := range cases {
		got := Bump(c.current, nv)
		if got != c.want {
			t.Errorf("Bump(%q, 1.2.0) = %q, want %q", c.current, got, c.want)
		}
	}
}

func TestBumpStillMatchesLatest(t *testing.T) {
	// Invariant (spec §8): bump(r, latest(r, V)) matches latest(r, V).
	req, _ := ParseRequirement("1.0")
	versions := []Yanked{{Version: mustVersion(t, "1.5.2")}, {Version: mustVersion(t, "1.0.0")}}
	latest, _ := Latest(req, versions, LatestOptions{})
	bumped := Bump(req.String(), latest)
	newReq, err := ParseRequirement(bumped)
	if err != nil {
		t.Fatalf("ParseRequirement(%q): %v", bumped, err)
	}
	if !newReq.Matches(latest, false) {
		t.Fatalf("bumped requirement %q does not match latest %v", bumped, latest)
	}
}
