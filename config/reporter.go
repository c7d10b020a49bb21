package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"lessc/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates initialized empty reporter.
func (conf *ReporterConfig) Prepare() (*Report, error) {

	r := &Report{entries: make(map[string]entry)}

	if f, err := os.Create(conf.Destination); err == nil {
		r.file = f
	} else if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err == nil {
		r.file = f
	} else {
		return nil, fmt.Errorf("unable to create report: %w", err)
	}
	return r, nil
}

// entry is either a file read when report is finalized (path is set) or
// data captured at the time of the call.
type entry struct {
	origin string
	path   string
	stamp  time.Time
	data   []byte
}

// Compilation holds debugging artifacts of a single stylesheet.
type Compilation struct {
	// Sources maps resolved names of the compiled file and everything it
	// imported to their text.
	Sources  map[string]string
	Mode     Mode
	Output   string
	Warnings []error
	Err      error
}

// Report accumulates information necessary to prepare full debug report.
// Safe for concurrent use, files compiled in parallel store their artifacts
// under distinct names.
type Report struct {
	mu      sync.Mutex
	entries map[string]entry
	file    *os.File
}

// Close finalizes debug report.
func (r *Report) Close() error {
	if r == nil {
		// Ignore uninitialized cases to avoid checking in many places. This means no report has been requested.
		return nil
	}
	if r.file == nil {
		return nil
	}
	defer r.file.Close()

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finalize()
}

// Name returns name of underlying file.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store saves path to file to be put in the final archive later, content is
// read when report is closed. Used for logs which are still being written.
func (r *Report) Store(name, file string) {
	if r == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, exists := r.entries[name]; exists && old.origin != file {
		// Somewhere I do not know what I am doing.
		panic(fmt.Sprintf("Attempt to overwrite file in the report for [%s]: was %s, now %s", name, old.origin, file))
	}

	e := entry{origin: file, path: file}
	if p, err := filepath.Abs(file); err == nil {
		e.path = p
	}
	r.entries[name] = e
}

// StoreData saves binary data to be put in the final archive later as a file under requested name.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		// Somewhere I do not know what I am doing.
		panic(fmt.Sprintf("Attempt to overwrite data in the report for [%s]", name))
	}
	r.entries[name] = entry{data: data, stamp: time.Now()}
}

// StoreCompilation puts artifacts of compilation under dir: every source as
// sources/<name>, output of the mode and diagnostics when there were
// warnings or compilation failed. Names already taken are versioned, so the
// same file may be reported several times.
func (r *Report) StoreCompilation(dir string, c *Compilation) {
	if r == nil || c == nil {
		return
	}
	stamp := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	for name, text := range c.Sources {
		r.add(path.Join(dir, "sources", sourceName(name)), entry{origin: name, data: []byte(text), stamp: stamp})
	}
	if len(c.Output) > 0 {
		r.add(path.Join(dir, "output-"+c.Mode.String()+".txt"), entry{data: []byte(c.Output), stamp: stamp})
	}
	if diag := diagnostics(c); len(diag) > 0 {
		r.add(path.Join(dir, "diagnostics.txt"), entry{data: diag, stamp: stamp})
	}
}

// add stores entry, must be called with lock held.
func (r *Report) add(name string, e entry) {
	if _, exists := r.entries[name]; exists {
		name = fmt.Sprintf("%s-%d", name, e.stamp.UnixNano())
	}
	r.entries[name] = e
}

// sourceName turns resolved source name into relative archive path.
func sourceName(name string) string {
	name = filepath.ToSlash(strings.TrimPrefix(name, filepath.VolumeName(name)))
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if len(name) == 0 {
		return "_"
	}
	return name
}

func diagnostics(c *Compilation) []byte {
	var buf bytes.Buffer
	for _, w := range c.Warnings {
		fmt.Fprintf(&buf, "warning: %v\n", w)
	}
	if c.Err != nil {
		fmt.Fprintf(&buf, "error: %v\n", c.Err)
	}
	return buf.Bytes()
}

// finalize creates the final archive (report) with all previously stored items.
func (r *Report) finalize() error {

	arc := zip.NewWriter(r.file)
	defer arc.Close()

	names, manifest := prepareManifest(r.entries)
	if err := saveFile(arc, "MANIFEST", time.Now(), manifest); err != nil {
		return err
	}

	// in the same order as in manifest
	for _, name := range names {
		e := r.entries[name]
		if len(e.path) == 0 {
			if err := saveFile(arc, name, e.stamp, bytes.NewReader(e.data)); err != nil {
				return err
			}
			continue
		}
		// ignoring absent files
		info, err := os.Stat(e.path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		f, err := os.Open(e.path)
		if err != nil {
			return err
		}
		err = saveFile(arc, name, info.ModTime(), f)
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func prepareManifest(entries map[string]entry) ([]string, *bytes.Buffer) {

	now := time.Now()

	buf := new(bytes.Buffer)
	if len(entries) == 0 {
		return nil, buf
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		e := entries[k]
		if e.stamp.IsZero() {
			e.stamp = now
		}
		buf.WriteString(fmt.Sprintf("%s\t%s\t%s : %s\n", e.stamp.UTC().Format(time.UnixDate), k, e.origin, e.path))
	}
	return keys, buf
}

func saveFile(dst *zip.Writer, name string, t time.Time, src io.Reader) error {
	w, err := dst.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: t})
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, src); err != nil {
		return err
	}
	return nil
}
