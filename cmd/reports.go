package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rguichard/jtriage/internal/history"
	"github.com/rguichard/jtriage/internal/logger"
)

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	return strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n"), nil
}

// writeReports renders both report formats into dir as
// <input>.report.txt and <input>.report.md.
func writeReports(dir, inputPath string, render func(format string) (string, error)) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	base := filepath.Base(inputPath) + ".report"

	for format, ext := range map[string]string{"txt": ".txt", "md": ".md"} {
		content, err := render(format)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, base+ext)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
		logger.L().WithField("path", path).Debug("wrote report")
	}
	return nil
}

// recordRun appends the invocation to the local history database. History
// is best effort; a broken database never fails the analysis.
func recordRun(tool, inputPath, summary, severity string, code int) {
	if cfg == nil || !cfg.History.Enabled {
		return
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		logger.L().WithError(err).Warn("could not open history database")
		return
	}
	defer store.Close()

	if _, err := store.Record(history.Run{
		Tool:      tool,
		InputPath: inputPath,
		Summary:   summary,
		Severity:  severity,
		ExitCode:  code,
	}); err != nil {
		logger.L().WithError(err).Warn("could not record run history")
	}
}
