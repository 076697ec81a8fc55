package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gridlens/cubelens/internal/aggtree"
)

const (
	validateCmdUse   = "validate <tree.json|->"
	validateCmdShort = "Check a host input document against the input schema"
	validateArgCount = 1
	noColorFlag      = "no-color"
	noColorUsage     = "disable colored output"
)

// ErrInvalidInput is returned when the document fails schema validation.
var ErrInvalidInput = errors.New("invalid aggregation input")

// NewValidateCommand creates the validate subcommand.
func NewValidateCommand() *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   validateCmdUse,
		Short: validateCmdShort,
		Long: `Validate a host aggregation document against the embedded input schema.

The resolver itself tolerates shape irregularities and degrades instead of
failing; validate is a diagnostic for host integrations.`,
		Args: cobra.ExactArgs(validateArgCount),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(args[0], noColor)
		},
	}

	cmd.Flags().BoolVar(&noColor, noColorFlag, false, noColorUsage)

	return cmd
}

func runValidate(inputPath string, noColor bool) error {
	if noColor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}

	raw, err := readInput(inputPath)
	if err != nil {
		return err
	}

	issues, validateErr := aggtree.ValidateJSON(raw)
	if validateErr != nil {
		return validateErr
	}

	if len(issues) == 0 {
		color.New(color.FgGreen).Fprintf(os.Stdout, "input is valid (%s)\n", inputLabel(inputPath))

		return nil
	}

	color.New(color.FgRed).Fprintf(os.Stdout, "input validation failed (%s)\n", inputLabel(inputPath))
	fmt.Fprintf(os.Stdout, "\nErrors:\n")

	for _, issue := range issues {
		color.New(color.FgRed).Fprintf(os.Stdout, "  - %s: %s\n", issue.Field, issue.Description)
	}

	return fmt.Errorf("%w: %d violations", ErrInvalidInput, len(issues))
}

func inputLabel(inputPath string) string {
	if inputPath == stdinPath {
		return "stdin"
	}

	return inputPath
}
