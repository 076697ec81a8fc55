package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gridlens/cubelens/internal/plot"
)

const (
	renderCmdUse      = "render <tree.json|->"
	renderCmdShort    = "Resolve and write the cube visualization as HTML"
	renderArgCount    = 1
	renderOutputFlag  = "output"
	renderOutputShort = "o"
	renderOutputUsage = "output directory for the HTML page"
	renderTitleFlag   = "title"
	renderTitleUsage  = "page title (overrides config)"
	renderThemeFlag   = "theme"
	renderThemeUsage  = "chart theme (overrides config)"
	renderDirPerm     = 0o750
	renderFileName    = "cube.html"
)

// ErrNoOutputDir is returned when the --output flag is not set.
var ErrNoOutputDir = errors.New("output directory is required (use --output)")

// NewRenderCommand creates the render subcommand.
func NewRenderCommand() *cobra.Command {
	var flags updateFlags

	var outputDir, title, theme string

	cmd := &cobra.Command{
		Use:   renderCmdUse,
		Short: renderCmdShort,
		Args:  cobra.ExactArgs(renderArgCount),
		RunE: func(_ *cobra.Command, args []string) error {
			if outputDir == "" {
				return ErrNoOutputDir
			}

			return runRender(args[0], &flags, outputDir, title, theme)
		},
	}

	registerUpdateFlags(cmd, &flags)
	cmd.Flags().StringVarP(&outputDir, renderOutputFlag, renderOutputShort, "", renderOutputUsage)
	cmd.Flags().StringVar(&title, renderTitleFlag, "", renderTitleUsage)
	cmd.Flags().StringVar(&theme, renderThemeFlag, "", renderThemeUsage)

	return cmd
}

func runRender(inputPath string, flags *updateFlags, outputDir, title, theme string) error {
	result, err := runUpdateCycle(inputPath, flags)
	if err != nil {
		return err
	}

	if title == "" {
		title = result.Config.Render.Title
	}

	if theme == "" {
		theme = result.Config.Render.Theme
	}

	mkErr := os.MkdirAll(outputDir, renderDirPerm)
	if mkErr != nil {
		return fmt.Errorf("create output dir: %w", mkErr)
	}

	outputPath := filepath.Join(outputDir, renderFileName)

	file, createErr := os.Create(outputPath)
	if createErr != nil {
		return fmt.Errorf("create page: %w", createErr)
	}

	defer file.Close()

	renderErr := plot.WritePage(file, result.Dataset, title, theme)
	if renderErr != nil {
		return renderErr
	}

	if result.Dataset.Empty() {
		slog.Default().Warn("dataset resolved to zero cells, page has no charts")
	}

	slog.Default().Info("cube page written", "path", outputPath, "cells", len(result.Dataset.Cells))

	return nil
}
