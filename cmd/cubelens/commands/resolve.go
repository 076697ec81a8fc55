package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gridlens/cubelens/internal/cubefmt"
)

const (
	resolveCmdUse      = "resolve <tree.json|->"
	resolveCmdShort    = "Run one update cycle and emit the resolved cube dataset"
	resolveArgCount    = 1
	resolveFormatFlag  = "format"
	resolveFormatUsage = "output format: json, yaml, or table"
	resolveOutputFlag  = "output"
	resolveOutputShort = "o"
	resolveOutputUsage = "output file (default stdout)"
)

// Output format names.
const (
	formatJSON  = "json"
	formatYAML  = "yaml"
	formatTable = "table"
)

// jsonIndent is the indentation for JSON dataset output.
const jsonIndent = "  "

// ErrUnknownFormat is returned for an unrecognized --format value.
var ErrUnknownFormat = errors.New("unknown output format (use json, yaml, or table)")

// NewResolveCommand creates the resolve subcommand.
func NewResolveCommand() *cobra.Command {
	var flags updateFlags

	var format, outputPath string

	cmd := &cobra.Command{
		Use:   resolveCmdUse,
		Short: resolveCmdShort,
		Args:  cobra.ExactArgs(resolveArgCount),
		RunE: func(_ *cobra.Command, args []string) error {
			return runResolve(args[0], &flags, format, outputPath)
		},
	}

	registerUpdateFlags(cmd, &flags)
	cmd.Flags().StringVar(&format, resolveFormatFlag, formatJSON, resolveFormatUsage)
	cmd.Flags().StringVarP(&outputPath, resolveOutputFlag, resolveOutputShort, "", resolveOutputUsage)

	return cmd
}

func runResolve(inputPath string, flags *updateFlags, format, outputPath string) error {
	result, err := runUpdateCycle(inputPath, flags)
	if err != nil {
		return err
	}

	out, closeFn, openErr := openOutput(outputPath)
	if openErr != nil {
		return openErr
	}

	defer closeFn()

	return writeDataset(out, result, format)
}

func openOutput(outputPath string) (io.Writer, func(), error) {
	if outputPath == "" {
		return os.Stdout, func() {}, nil
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}

	return file, func() { file.Close() }, nil
}

func writeDataset(w io.Writer, result *updateResult, format string) error {
	switch format {
	case formatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", jsonIndent)

		err := encoder.Encode(result.Dataset)
		if err != nil {
			return fmt.Errorf("encode dataset: %w", err)
		}

		return nil

	case formatYAML:
		err := yaml.NewEncoder(w).Encode(result.Dataset)
		if err != nil {
			return fmt.Errorf("encode dataset: %w", err)
		}

		return nil

	case formatTable:
		fmt.Fprintln(w, cubefmt.Summary(result.Dataset, result.PrevDepths))

		if !result.Dataset.Empty() {
			fmt.Fprintln(w)
			fmt.Fprintln(w, cubefmt.CellsTable(result.Dataset))
		}

		return nil

	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}
