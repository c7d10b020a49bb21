package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"lessc/compiler"
)

// MaxEntrySize limits single archive entry read into memory.
const MaxEntrySize = 16 << 20

// IsArchive checks zip signature at the beginning of the file.
func IsArchive(name string) (bool, error) {
	f, err := os.Open(name)
	if err != nil {
		return false, err
	}
	defer f.Close()

	var sig [4]byte
	if _, err := io.ReadFull(f, sig[:]); err != nil {
		// too short to be an archive
		return false, nil
	}
	return string(sig[:]) == "PK\x03\x04", nil
}

// Load reads every file of the archive into memory so imports may refer to
// any of them. Names of files under prefix with extension ext are returned in
// archive order.
func Load(archive, prefix, ext string) (compiler.MapLoader, []string, error) {
	loader := make(compiler.MapLoader)

	var names []string
	err := Walk(archive, "", func(_ string, f *zip.File) error {
		if f.UncompressedSize64 > MaxEntrySize {
			return fmt.Errorf("zip entry %q is too large (%d bytes)", f.Name, f.UncompressedSize64)
		}
		r, err := f.Open()
		if err != nil {
			return fmt.Errorf("unable to open zip entry %q: %w", f.Name, err)
		}
		defer r.Close()

		data, err := io.ReadAll(io.LimitReader(r, MaxEntrySize))
		if err != nil {
			return fmt.Errorf("unable to read zip entry %q: %w", f.Name, err)
		}
		loader[f.Name] = string(data)

		if strings.HasPrefix(f.Name, prefix) && strings.EqualFold(filepath.Ext(f.Name), ext) {
			names = append(names, f.Name)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return loader, names, nil
}
