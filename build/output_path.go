package build

import (
	"path/filepath"
	"strings"

	"lessc/config"
	"lessc/state"
)

// buildOutputPath returns output file name for the source. Unless NoDirs is
// requested source directory structure relative to the command line
// argument is preserved under destination.
func buildOutputPath(rel, dst string, mode config.Mode, env *state.LocalEnv) string {
	return filepath.Join(determineOutputDir(rel, dst, env), buildDefaultFileName(rel, mode))
}

func determineOutputDir(rel, dst string, env *state.LocalEnv) string {
	if env.NoDirs {
		return dst
	}
	return filepath.Join(dst, filepath.Dir(rel))
}

func buildDefaultFileName(rel string, mode config.Mode) string {
	baseName := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	return config.CleanFileName(baseName) + getFileExtension(mode)
}

// getFileExtension keeps debug output away from sources and compiled CSS.
func getFileExtension(mode config.Mode) string {
	switch mode {
	case config.ModeCompile:
		return ".css"
	case config.ModeCanonical:
		return ".canonical" + SourceExt
	case config.ModeParse:
		return ".parse.txt"
	case config.ModeExpand:
		return ".expand.txt"
	default:
		// this should never happen
		panic("unsupported mode requested")
	}
}
