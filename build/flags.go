package build

import (
	"strings"

	cli "github.com/urfave/cli/v3"

	"lessc/config"
)

// Flags returns compile command flags. Flags explicitly set on command line
// take precedence over configuration.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write results into `DIRECTORY` instead of STDOUT"},
		&cli.BoolFlag{Name: "compress", Aliases: []string{"x"}, Usage: "produce compact CSS"},
		&cli.IntFlag{Name: "indent", Usage: "`SPACES` per nesting level in pretty output"},
		&cli.IntFlag{Name: "recursion-limit", Usage: "maximum mixin call `DEPTH`"},
		&cli.BoolFlag{Name: "strict", Usage: "treat recoverable problems as errors"},
		&cli.BoolFlag{Name: "import-once", Usage: "import every file at most once"},
		&cli.BoolFlag{Name: "hide-warnings", Usage: "do not report compilation warnings"},
		&cli.StringSliceFlag{Name: "include-path", Aliases: []string{"I"}, Usage: "additional `DIRECTORY` to search for imports"},
		&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Usage: "what to produce (" + strings.Join(config.ModeNames(), ", ") + ")"},
		&cli.BoolFlag{Name: "stats", Usage: "report parse, compile and disk wait times"},
		&cli.IntFlag{Name: "jobs", Aliases: []string{"j"}, Usage: "number of files compiled in parallel, 0 - number of CPUs"},
		&cli.BoolFlag{Name: "nodirs", Aliases: []string{"nd"}, Usage: "when producing output do not keep input directory structure"},
		&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "continue even if destination exits, overwrite files"},
	}
}
