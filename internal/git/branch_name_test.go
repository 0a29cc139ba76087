package git

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestGenerateBranchName(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		title      string
		want       string
	}{
		{
			name:       "basic",
			identifier: "FEAT-102",
			title:      "Add login form",
			want:       "stride/feat-102-add-login-form",
		},
		{
			name:       "special characters collapse",
			identifier: "TASK-7",
			title:      "Fix  (weird)   spacing!!",
			want:       "stride/task-7-fix-weird-spacing",
		},
		{
			name:       "empty title",
			identifier: "TASK-9",
			title:      "",
			want:       "stride/task-9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateBranchName(tt.identifier, tt.title)
			if got != tt.want {
				t.Errorf("GenerateBranchName(%q, %q) = %q, want %q", tt.identifier, tt.title, got, tt.want)
			}
		})
	}
}

func TestGenerateBranchNameDeterministic(t *testing.T) {
	a := GenerateBranchName("FEAT-1", "Some very stable title")
	b := GenerateBranchName("FEAT-1", "Some very stable title")
	if a != b {
		t.Errorf("branch names should be deterministic: %q != %q", a, b)
	}
}

func TestGenerateBranchNameTruncatesLongTitles(t *testing.T) {
	long := strings.Repeat("verylongword ", 20)
	got := GenerateBranchName("FEAT-1", long)
	slug := strings.TrimPrefix(got, "stride/feat-1-")
	if len(slug) > maxTitleSlug {
		t.Errorf("title slug too long: %d chars in %q", len(slug), got)
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("branch name should not end with a dash: %q", got)
	}
}

func TestGenerateBranchNameTruncatesOnRuneBoundary(t *testing.T) {
	got := GenerateBranchName("feat-1", strings.Repeat("日", 20))
	if !utf8.ValidString(got) {
		t.Fatalf("branch name is not valid UTF-8: %q", got)
	}
	slug := strings.TrimPrefix(got, "stride/feat-1-")
	if len(slug) > maxTitleSlug {
		t.Errorf("title slug too long: %d bytes in %q", len(slug), got)
	}
}

func TestPhaseBranchName(t *testing.T) {
	if got := PhaseBranchName(3); got != "stride/phase-3" {
		t.Errorf("PhaseBranchName(3) = %q", got)
	}
}
