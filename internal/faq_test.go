package internal

import (
	"strings"
	"testing"
)

func TestBuildFAQHTMLIncludesSelectedGamesAndGeneral(t *testing.T) {
	html := BuildFAQHTML([]string{"Counter-Strike 2", "Valorant"})

	for _, want := range []string{"Counter-Strike 2", "Valorant", "Información general"} {
		if !strings.Contains(html, "<h3>"+want+"</h3>") {
			t.Errorf("missing section %q", want)
		}
	}
	if strings.Contains(html, "League of Legends") {
		t.Error("unselected game leaked into the fragment")
	}
}

func TestBuildFAQHTMLDeduplicates(t *testing.T) {
	html := BuildFAQHTML([]string{"Valorant", "Valorant"})
	if n := strings.Count(html, "<h3>Valorant</h3>"); n != 1 {
		t.Errorf("Valorant section appears %d times, want 1", n)
	}
}

func TestBuildFAQHTMLGeneralOnly(t *testing.T) {
	html := BuildFAQHTML(nil)
	if !strings.Contains(html, "<h3>Información general</h3>") {
		t.Error("general section missing for empty selection")
	}
	if n := strings.Count(html, "<h3>"); n != 1 {
		t.Errorf("expected only the general section, got %d headings", n)
	}
}

func TestBuildFAQHTMLUnknownGameSkipped(t *testing.T) {
	html := BuildFAQHTML([]string{"Ajedrez"})
	if strings.Contains(html, "Ajedrez") {
		t.Error("game without FAQ entries got a section")
	}
}
