package config

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
)

func newReport(t *testing.T) *Report {
	t.Helper()
	rpt, err := (&ReporterConfig{Destination: filepath.Join(t.TempDir(), "report.zip")}).Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	return rpt
}

func archiveContent(t *testing.T, name string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(name)
	if err != nil {
		t.Fatalf("unable to open report: %v", err)
	}
	defer zr.Close()

	content := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("unable to open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("unable to read %s: %v", f.Name, err)
		}
		content[f.Name] = string(data)
	}
	return content
}

func TestReport_Archive(t *testing.T) {
	src := filepath.Join(t.TempDir(), "final.log")
	if err := os.WriteFile(src, []byte("started"), 0644); err != nil {
		t.Fatal(err)
	}

	rpt := newReport(t)
	rpt.StoreData("config/lessc.yaml", []byte("version: 1"))
	rpt.Store("final.log", src)
	// file entries are read when report is closed
	if err := os.WriteFile(src, []byte("finished"), 0644); err != nil {
		t.Fatal(err)
	}

	name := rpt.Name()
	if err := rpt.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	content := archiveContent(t, name)
	want := map[string]string{
		"config/lessc.yaml": "version: 1",
		"final.log":         "finished",
	}
	for k, v := range want {
		if content[k] != v {
			t.Errorf("%s = %q, want %q", k, content[k], v)
		}
	}
	if _, ok := content["MANIFEST"]; !ok {
		t.Error("MANIFEST is missing")
	}
}

func TestReport_StoreCompilation(t *testing.T) {
	rpt := newReport(t)
	rpt.StoreCompilation("files/000-main.less", &Compilation{
		Sources: map[string]string{
			"/site/main.less": "@import 'vars';\n.a {\n  color: @c;\n}\n",
			"lib/vars.less":   "@c: red;\n",
		},
		Mode:   ModeCompile,
		Output: ".a{color:red;}\n",
	})
	rpt.StoreCompilation("files/001-bad.less", &Compilation{
		Sources:  map[string]string{"bad.less": ".b {\n  c: @x;\n}\n"},
		Mode:     ModeExpand,
		Warnings: []error{errors.New("selector is not canonical")},
		Err:      errors.New("variable @x is undefined"),
	})
	// reporting the same file again keeps both copies
	rpt.StoreCompilation("files/001-bad.less", &Compilation{Sources: map[string]string{"bad.less": "changed"}})

	name := rpt.Name()
	if err := rpt.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	content := archiveContent(t, name)

	want := map[string]string{
		"files/000-main.less/sources/site/main.less": "@import 'vars';\n.a {\n  color: @c;\n}\n",
		"files/000-main.less/sources/lib/vars.less":  "@c: red;\n",
		"files/000-main.less/output-compile.txt":     ".a{color:red;}\n",
		"files/001-bad.less/sources/bad.less":        ".b {\n  c: @x;\n}\n",
		"files/001-bad.less/diagnostics.txt":         "warning: selector is not canonical\nerror: variable @x is undefined\n",
	}
	for k, v := range want {
		if content[k] != v {
			t.Errorf("%s = %q, want %q", k, content[k], v)
		}
	}
	if _, ok := content["files/000-main.less/diagnostics.txt"]; ok {
		t.Error("diagnostics stored for clean compilation")
	}
	if _, ok := content["files/001-bad.less/output-expand.txt"]; ok {
		t.Error("output stored for failed compilation")
	}

	versioned := 0
	for k, v := range content {
		if strings.HasPrefix(k, "files/001-bad.less/sources/bad.less-") && v == "changed" {
			versioned++
		}
	}
	if versioned != 1 {
		t.Errorf("repeated source stored %d times under versioned name, want 1", versioned)
	}
}

func TestSourceName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{in: "main.less", want: "main.less"},
		{in: "/abs/dir/main.less", want: "abs/dir/main.less"},
		{in: "../up/x.less", want: "up/x.less"},
		{in: "/", want: "_"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := sourceName(tt.in); got != tt.want {
				t.Errorf("sourceName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestReport_Concurrent(t *testing.T) {
	rpt := newReport(t)

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Go(func() {
			rpt.StoreData(fmt.Sprintf("file-%02d.css", i), []byte("x"))
		})
	}
	wg.Wait()

	name := rpt.Name()
	if err := rpt.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	names := make([]string, 0, 17)
	for k := range archiveContent(t, name) {
		names = append(names, k)
	}
	sort.Strings(names)
	if len(names) != 17 || names[0] != "MANIFEST" {
		t.Errorf("archive entries = %v", names)
	}
}

func TestReport_DuplicateData(t *testing.T) {
	rpt := newReport(t)
	defer rpt.Close()

	rpt.StoreData("a", []byte("1"))
	defer func() {
		if recover() == nil {
			t.Error("expected panic on overwrite")
		}
	}()
	rpt.StoreData("a", []byte("2"))
}

func TestReportClose_NilReport(t *testing.T) {
	var r *Report
	if err := r.Close(); err != nil {
		t.Errorf("Close() on nil report error = %v", err)
	}
	if r.Name() != "" {
		t.Errorf("Name() on nil report = %q", r.Name())
	}
	// must be no-ops
	r.Store("x", "y")
	r.StoreData("x", nil)
	r.StoreCompilation("x", &Compilation{Output: "y"})
}

func TestReportClose_NilFile(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.Close(); err != nil {
		t.Errorf("Close() without file error = %v", err)
	}
}
