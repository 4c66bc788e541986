package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCaseID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/data/ABC0455_4C.txt", "ABC0455_4C"},
		{"export.v2.xml", "export"},
		{filepath.Join("a", "b.x"), "b"},
		{"noext", "noext"},
	}
	for _, tt := range tests {
		if got := CaseID(tt.in); got != tt.want {
			t.Errorf("CaseID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBaseName(t *testing.T) {
	if got := BaseName("all_cases.csv"); got != "all_cases" {
		t.Fatalf("BaseName = %q", got)
	}
	if got := BaseName("cohort"); got != "cohort" {
		t.Fatalf("BaseName = %q", got)
	}
}

func TestSafeWriteFileAndEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}
	p := filepath.Join(dir, "manifest.json")
	b, err := PrettyJSON(map[string]int{"cases": 2})
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if err := SafeWriteFile(p, b); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "{\n  \"cases\": 2\n}" {
		t.Fatalf("unexpected content: %q", got)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}
