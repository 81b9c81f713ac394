package crawler

import (
	"reflect"
	"testing"
)

func TestURLSet(t *testing.T) {
	s := NewURLSet()

	if !s.Add("https://x.com/b") {
		t.Error("Expected first add to report new")
	}
	s.Add("https://x.com/a")
	if s.Add("https://x.com/b") {
		t.Error("Expected duplicate add to report existing")
	}
	s.Add("https://x.com/b/")

	if s.Len() != 3 {
		t.Errorf("Expected 3 members, got %d", s.Len())
	}
	if !s.Contains("https://x.com/a") || s.Contains("https://x.com/c") {
		t.Error("Unexpected membership")
	}

	want := []string{"https://x.com/b", "https://x.com/a", "https://x.com/b/"}
	got := s.URLs()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	got[0] = "mutated"
	if s.URLs()[0] != "https://x.com/b" {
		t.Error("Expected URLs to return a copy")
	}
}
