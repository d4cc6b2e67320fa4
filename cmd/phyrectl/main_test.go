package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/kailas-cloud/phyrestorm/internal/db/sqlite"
	phyrestorm "github.com/kailas-cloud/phyrestorm/pkg/sdk"
)

func seededDB(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "results.db")

	store, err := sqlite.NewStore(sqlite.Config{DSN: path})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	img := "/data/jobs/J1/1.png"
	if err := store.Seed(ctx,
		sqlite.Fixture{JobID: "J1", StructureID: 1, Name: "a", PrimaryScore: 0.9, AuxPath: &img},
		sqlite.Fixture{JobID: "J1", StructureID: 2, Name: "b", PrimaryScore: 0.9},
		sqlite.Fixture{JobID: "J1", StructureID: 3, Name: "c", PrimaryScore: 0.5},
	); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(append([]string{"phyrectl"}, args...))
	return out.String(), err
}

func TestCount(t *testing.T) {
	out, err := run(t, "--sqlite", seededDB(t), "count", "--job", "J1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if strings.TrimSpace(out) != "3" {
		t.Errorf("output = %q, want 3", out)
	}
}

func TestPage(t *testing.T) {
	db := seededDB(t)

	out, err := run(t, "--sqlite", db, "--substitute", "^/data/jobs/=/static/",
		"page", "--job", "J1", "--after", "1", "--limit", "1")
	if err != nil {
		t.Fatalf("page: %v", err)
	}

	var p pageJSON
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(p.Items) != 1 || p.Items[0].StructureID != 2 || p.TotalCount != 3 {
		t.Errorf("page = %+v", p)
	}
	if p.NextAfter == nil || *p.NextAfter != 2 {
		t.Errorf("next_after = %v, want 2", p.NextAfter)
	}

	out, err = run(t, "--sqlite", db, "--substitute", "^/data/jobs/=/static/", "page", "--job", "J1")
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Items[0].AuxPath == nil || *p.Items[0].AuxPath != "/static/J1/1.png" {
		t.Errorf("aux_path = %v, want rewritten", p.Items[0].AuxPath)
	}
}

func TestPage_UnknownCursor(t *testing.T) {
	_, err := run(t, "--sqlite", seededDB(t), "page", "--job", "J1", "--after", "42")
	if !errors.Is(err, phyrestorm.ErrCursorNotFound) {
		t.Fatalf("expected ErrCursorNotFound, got %v", err)
	}
	if errors.FlattenHints(err) == "" {
		t.Error("expected a hint")
	}
}

func TestWalk(t *testing.T) {
	out, err := run(t, "--sqlite", seededDB(t), "walk", "--job", "J1", "--page-size", "2")
	if err != nil {
		t.Fatalf("walk: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3: %q", len(lines), out)
	}
	var want int64 = 1
	for _, line := range lines {
		var h hitJSON
		if err := json.Unmarshal([]byte(line), &h); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		if h.StructureID != want {
			t.Errorf("structure_id = %d, want %d", h.StructureID, want)
		}
		want++
	}
}

func TestMigrate(t *testing.T) {
	db := filepath.Join(t.TempDir(), "fresh.db")
	if _, err := run(t, "--sqlite", db, "migrate"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	out, err := run(t, "--sqlite", db, "count", "--job", "J1")
	if err != nil {
		t.Fatalf("count after migrate: %v", err)
	}
	if strings.TrimSpace(out) != "0" {
		t.Errorf("output = %q, want 0", out)
	}
}

func TestNoDatabase(t *testing.T) {
	t.Setenv("PHYRESTORM_SQLITE", "")
	t.Setenv("PHYRESTORM_POSTGRES", "")
	_, err := run(t, "count", "--job", "J1")
	if err == nil {
		t.Fatal("expected error without a database")
	}
	if errors.FlattenHints(err) == "" {
		t.Error("expected a hint")
	}
}

func TestCutSubstitution(t *testing.T) {
	tests := []struct {
		in          string
		pattern     string
		replacement string
		ok          bool
	}{
		{"^/a/=/b/", "^/a/", "/b/", true},
		{"x=y=z", "x=y", "z", true},
		{"=z", "", "", false},
		{"nothing", "", "", false},
	}
	for _, tc := range tests {
		p, r, ok := cutSubstitution(tc.in)
		if p != tc.pattern || r != tc.replacement || ok != tc.ok {
			t.Errorf("cutSubstitution(%q) = (%q, %q, %v)", tc.in, p, r, ok)
		}
	}
}
