package analyzer

import (
	"reflect"
	"testing"
)

func TestRankNamesExactPrefixBeatsContainsBeatsFuzzy(t *testing.T) {
	got := RankNames("serde", []string{"serde_json", "actix-serde", "serde", "unrelated"})
	want := []string{"serde", "serde_json", "actix-serde"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRankNamesDashUnderscoreEquivalence(t *testing.T) {
	got := RankNames("tokio_util", []string{"tokio-util", "tokio_util"})
	if len(got) != 2 {
		t.Fatalf("expected both spellings to match, got %v", got)
	}
}

func TestRankNamesEmptyQueryKeepsEverything(t *testing.T) {
	got := RankNames("", []string{"b", "a"})
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
