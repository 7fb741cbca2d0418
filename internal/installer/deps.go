package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// depStep pairs a marker file with the command run when the marker exists.
type depStep struct {
	marker string
	argv   []string
}

// Dependency steps run in a fixed order; the first failure aborts the rest.
var depSteps = []depStep{
	{marker: "package.json", argv: []string{"npm", "install"}},
	{marker: "Gemfile", argv: []string{"bundle", "install"}},
	{marker: "Makefile", argv: []string{"make"}},
	{marker: "CMakeLists.txt", argv: []string{"cmake", "."}},
}

// installDeps runs each recognized dependency manager inside dir for every
// marker file present.
func (ins *Installer) installDeps(ctx context.Context, dir string) error {
	for _, step := range depSteps {
		if _, err := os.Stat(filepath.Join(dir, step.marker)); err != nil {
			continue
		}

		fmt.Fprintf(ins.out, "  Running %s in %s\n", strings.Join(step.argv, " "), filepath.Base(dir))
		ins.log.Infow("running dependency step", "command", step.argv[0], "directory", dir)

		res, err := ins.runner.Run(ctx, dir, step.argv...)
		if err != nil {
			return fmt.Errorf("%s: %w", step.argv[0], err)
		}
		if res.ExitCode != 0 {
			return fmt.Errorf("%s exited with status %d: %s",
				strings.Join(step.argv, " "), res.ExitCode, strings.TrimSpace(res.Stderr))
		}
	}
	return nil
}
