package archive

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

type entry struct {
	name    string
	content string
}

func makeArchive(t *testing.T, entries ...entry) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "styles.zip")
	f, err := os.Create(name)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for _, e := range entries {
		fw, err := w.Create(e.name)
		if err != nil {
			t.Fatalf("Failed to create file %s in zip: %v", e.name, err)
		}
		if _, err := fw.Write([]byte(e.content)); err != nil {
			t.Fatalf("Failed to write content for %s: %v", e.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return name
}

func TestWalk(t *testing.T) {
	arc := makeArchive(t,
		entry{"site/main.less", "a"},
		entry{"site/parts/", ""},
		entry{"site/parts/vars.less", "b"},
		entry{"lib/mixins.less", "c"},
	)

	tests := []struct {
		prefix string
		want   []string
	}{
		{prefix: "", want: []string{"site/main.less", "site/parts/vars.less", "lib/mixins.less"}},
		{prefix: "site/", want: []string{"site/main.less", "site/parts/vars.less"}},
		{prefix: "Site/", want: nil},
		{prefix: "none/", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			var visited []string
			err := Walk(arc, tt.prefix, func(archive string, f *zip.File) error {
				if archive != arc {
					t.Errorf("archive = %s, want %s", archive, arc)
				}
				visited = append(visited, f.Name)
				return nil
			})
			if err != nil {
				t.Fatalf("Walk() error = %v", err)
			}
			if !slices.Equal(visited, tt.want) {
				t.Errorf("visited = %v, want %v", visited, tt.want)
			}
		})
	}
}

func TestWalk_EarlyTermination(t *testing.T) {
	arc := makeArchive(t, entry{"a.less", ""}, entry{"b.less", ""})
	stop := errors.New("stop")

	count := 0
	err := Walk(arc, "", func(string, *zip.File) error {
		count++
		return stop
	})
	if !errors.Is(err, stop) || count != 1 {
		t.Errorf("Walk() = %v after %d files", err, count)
	}
}

func TestWalk_Unsafe(t *testing.T) {
	for _, name := range []string{"../evil.less", "a/../../evil.less", "/abs.less"} {
		t.Run(name, func(t *testing.T) {
			arc := makeArchive(t, entry{name, ""})
			if err := Walk(arc, "", func(string, *zip.File) error { return nil }); err == nil {
				t.Error("Walk() accepted unsafe entry")
			}
		})
	}
}

func TestWalk_InvalidArchive(t *testing.T) {
	name := filepath.Join(t.TempDir(), "bad.zip")
	if err := os.WriteFile(name, []byte("not a zip"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Walk(name, "", func(string, *zip.File) error { return nil }); err == nil {
		t.Error("Walk() accepted invalid archive")
	}
	if ok, err := IsArchive(name); ok || err != nil {
		t.Errorf("IsArchive() = %v, %v", ok, err)
	}
	if _, err := IsArchive(filepath.Join(t.TempDir(), "absent.zip")); err == nil {
		t.Error("IsArchive() must fail for missing file")
	}
}

func TestLoad(t *testing.T) {
	arc := makeArchive(t,
		entry{"site/main.less", "@import '../lib/mixins';\n.a {\n  .m();\n}\n"},
		entry{"site/readme.txt", "text"},
		entry{"lib/mixins.less", ".m() {\n  x: 1;\n}\n"},
	)
	if ok, err := IsArchive(arc); !ok || err != nil {
		t.Fatalf("IsArchive() = %v, %v", ok, err)
	}

	loader, names, err := Load(arc, "site/", ".less")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !slices.Equal(names, []string{"site/main.less"}) {
		t.Errorf("names = %v", names)
	}
	if len(loader) != 3 {
		t.Errorf("loader holds %d files, want 3", len(loader))
	}

	resolved, err := loader.Resolve("../lib/mixins", "site/main.less")
	if err != nil || resolved != "lib/mixins.less" {
		t.Errorf("Resolve() = %q, %v", resolved, err)
	}
}
