package compiler

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"lessc/eval"
	"lessc/model"
	"lessc/render"
)

func newCompiler(t *testing.T, opts Options, loader Loader) *Compiler {
	t.Helper()
	log := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	c, err := New(opts, loader, nil, log)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func assertCSS(t *testing.T, got, want string) {
	t.Helper()
	if got == want {
		return
	}
	dmp := diffmatchpatch.New()
	t.Errorf("unexpected output:\n%s", dmp.DiffPrettyText(dmp.DiffMain(want, got, false)))
}

var compressed = Options{Render: render.Options{Compress: true}}

func TestCompile_Import(t *testing.T) {
	loader := MapLoader{
		"child.less": ".child {\n  font-size: 12px;\n}\n@size: 12px;\n",
	}
	c := newCompiler(t, compressed, loader)

	const src = "@color: #abc;\n@import 'child.less';\n.ruleset {\n  color: @color;\n  font-size: @size;\n}\n"
	res, err := c.Compile(src, "main.less")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	assertCSS(t, res.CSS, ".child{font-size:12px;}\n.ruleset{color:#abc;font-size:12px;}\n")
	if res.Stats.Imports != 1 || res.Stats.CacheHits != 0 {
		t.Errorf("Stats = %+v, want single uncached import", res.Stats)
	}
	if res.Warning() != nil {
		t.Errorf("Warning() = %v", res.Warning())
	}

	again, err := c.Compile(src, "main.less")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	assertCSS(t, again.CSS, res.CSS)
	if again.Stats.CacheHits != 1 {
		t.Errorf("CacheHits = %d, want 1", again.Stats.CacheHits)
	}
}

func TestCompile_Pretty(t *testing.T) {
	c := newCompiler(t, Options{}, MapLoader{})
	res, err := c.Compile("@w: 2px;\n.a {\n  .b {\n    width: @w * 2;\n  }\n  color: red;\n}\n", "main.less")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	assertCSS(t, res.CSS, ".a {\n  color: red;\n}\n.a .b {\n  width: 4px;\n}\n")
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{name: "syntax", src: ".a {\n  color: red;\n", want: model.ErrSyntax},
		{name: "undefined", src: ".a {\n  color: @x;\n}\n", want: eval.ErrUndefined},
		{name: "missing import", src: "@import 'nope';\n", want: eval.ErrImport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newCompiler(t, compressed, MapLoader{}).Compile(tt.src, "main.less")
			if err == nil {
				t.Fatalf("Compile() = %q, want error", res.CSS)
			}
			if res != nil {
				t.Error("no result expected on failure")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Compile() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCompile_MissingImportWrapsNotFound(t *testing.T) {
	_, err := newCompiler(t, compressed, MapLoader{}).Compile("@import 'nope';\n", "main.less")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Compile() error = %v, want %v", err, ErrNotFound)
	}
}

func TestCompile_Warnings(t *testing.T) {
	const src = "@bad: ~\"(\";\n.a@{bad} {\n  a: 1;\n}\n"

	res, err := newCompiler(t, compressed, MapLoader{}).Compile(src, "main.less")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if len(res.Warnings) != 1 || !errors.Is(res.Warning(), eval.ErrSelectorReparse) {
		t.Errorf("Warnings = %v", res.Warnings)
	}

	strict := compressed
	strict.Eval.Strict = true
	if _, err := newCompiler(t, strict, MapLoader{}).Compile(src, "main.less"); !errors.Is(err, eval.ErrSelectorReparse) {
		t.Errorf("strict Compile() error = %v", err)
	}
}

func TestCompile_Concurrent(t *testing.T) {
	loader := MapLoader{"lib/mixins.less": ".m(@a) {\n  w: @a;\n}\n"}
	c := newCompiler(t, compressed, loader)

	var wg sync.WaitGroup
	results := make([]string, 8)
	errs := make([]error, len(results))
	for i := range results {
		wg.Go(func() {
			res, err := c.Compile("@import 'lib/mixins';\n.x {\n  .m(1px);\n}\n", "main.less")
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = res.CSS
		})
	}
	wg.Wait()

	for i := range results {
		if errs[i] != nil {
			t.Fatalf("Compile() error = %v", errs[i])
		}
		assertCSS(t, results[i], ".x{w:1px;}\n")
	}
}

func TestCompileFile(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "lib")
	write := func(name, content string) {
		t.Helper()
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("main.less", "@import 'inc/vars';\n@import 'shared';\n.a {\n  color: @c;\n  .s();\n}\n")
	write("inc/vars.less", "@c: blue;\n")
	write("lib/shared.less", ".s() {\n  margin: 0;\n}\n")

	c := newCompiler(t, compressed, &FileLoader{ImportPaths: []string{lib}})
	res, err := c.CompileFile(filepath.Join(dir, "main.less"), nil)
	if err != nil {
		t.Fatalf("CompileFile() error = %v", err)
	}
	assertCSS(t, res.CSS, ".a{color:blue;margin:0;}\n")
	if res.Stats.Imports != 2 {
		t.Errorf("Imports = %d, want 2", res.Stats.Imports)
	}
	want := []string{filepath.Join(dir, "main.less"), filepath.Join(dir, "inc", "vars.less"), filepath.Join(lib, "shared.less")}
	if !slices.Equal(res.Stats.Files, want) {
		t.Errorf("Files = %q, want %q", res.Stats.Files, want)
	}

	if _, err := c.CompileFile(filepath.Join(dir, "absent.less"), nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("CompileFile() error = %v, want %v", err, ErrNotFound)
	}
}

func TestCompileFile_StatsOnFailure(t *testing.T) {
	loader := MapLoader{
		"main.less": "@import 'a';\n@import 'a';\n.x {\n  v: @missing;\n}\n",
		"a.less":    "@y: 1;\n",
	}
	c := newCompiler(t, compressed, loader)

	var stats Stats
	res, err := c.CompileFile("main", &stats)
	if !errors.Is(err, eval.ErrUndefined) || res != nil {
		t.Fatalf("CompileFile() = %v, %v, want %v", res, err, eval.ErrUndefined)
	}
	if want := []string{"main.less", "a.less"}; !slices.Equal(stats.Files, want) {
		t.Errorf("Files = %q, want %q", stats.Files, want)
	}
	if stats.Imports != 2 {
		t.Errorf("Imports = %d, want 2", stats.Imports)
	}
	for _, name := range stats.Files {
		text, err := c.Source(name)
		if err != nil || text != loader[name] {
			t.Errorf("Source(%q) = %q, %v", name, text, err)
		}
	}
}

func TestLoaders_Resolve(t *testing.T) {
	loader := MapLoader{"a/b.less": "", "c.less": ""}
	tests := []struct {
		name, from string
		want       string
		err        bool
	}{
		{name: "b", from: "a/main.less", want: "a/b.less"},
		{name: "c.less", from: "a/main.less", want: "c.less"},
		{name: "a/b", from: "main.less", want: "a/b.less"},
		{name: "d", from: "main.less", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := loader.Resolve(tt.name, tt.from)
			if (err != nil) != tt.err || got != tt.want {
				t.Errorf("Resolve() = %q, %v, want %q", got, err, tt.want)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	c := newCompiler(t, compressed, MapLoader{"a/main.less": ".a {\n  b: c;\n}\n"})

	var stats Stats
	sheet, err := c.ParseFile("a/main", &stats)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if got := model.Repr(sheet); got != model.Repr(mustParse(t, c, ".a {\n  b: c;\n}\n")) {
		t.Errorf("ParseFile() = %q", got)
	}
	if _, err := c.ParseFile("absent", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("ParseFile() error = %v, want %v", err, ErrNotFound)
	}
}

func mustParse(t *testing.T, c *Compiler, src string) *model.Stylesheet {
	t.Helper()
	sheet, err := c.Parse(src, "x.less")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return sheet
}
