// Package commands implements the cubelens CLI subcommands.
package commands

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gridlens/cubelens/internal/aggtree"
	"github.com/gridlens/cubelens/internal/config"
	"github.com/gridlens/cubelens/internal/cube"
	"github.com/gridlens/cubelens/internal/session"
)

// stdinPath is the pseudo-path selecting standard input.
const stdinPath = "-"

// defaultSessionName scopes state when no --session is given.
const defaultSessionName = "default"

// Flag name constants shared by resolve and render.
const (
	configFlag    = "config"
	sessionFlag   = "session"
	stateDirFlag  = "state-dir"
	noSessionFlag = "no-session"
	strictFlag    = "strict"
	topNFlag      = "top-n"
	sortFlag      = "sort"
	separatorFlag = "separator"
)

// ErrSchemaViolation is returned by --strict when the input document does
// not conform to the aggregation input schema.
var ErrSchemaViolation = errors.New("input does not conform to the aggregation schema")

// updateFlags holds the per-update settings shared by resolve and render.
type updateFlags struct {
	configPath  string
	sessionName string
	stateDir    string
	noSession   bool
	strict      bool
	topN        int
	sortMode    string
	separator   string
}

func registerUpdateFlags(cmd *cobra.Command, flags *updateFlags) {
	cmd.Flags().StringVar(&flags.configPath, configFlag, "", "path to config file")
	cmd.Flags().StringVar(&flags.sessionName, sessionFlag, defaultSessionName, "session name scoping drill state")
	cmd.Flags().StringVar(&flags.stateDir, stateDirFlag, "", "state directory (overrides config)")
	cmd.Flags().BoolVar(&flags.noSession, noSessionFlag, false, "do not load or persist drill state")
	cmd.Flags().BoolVar(&flags.strict, strictFlag, false, "reject input that fails schema validation")
	cmd.Flags().IntVar(&flags.topN, topNFlag, 0, "per-axis member limit (overrides config)")
	cmd.Flags().StringVar(&flags.sortMode, sortFlag, "", "member sort mode: totals or keyAsc (overrides config)")
	cmd.Flags().StringVar(&flags.separator, separatorFlag, "", "path segment separator (overrides config)")
}

// updateResult is the outcome of one full update cycle.
type updateResult struct {
	Dataset    *cube.Dataset
	PrevDepths *[cube.NumAxes]int
	Config     *config.Config
}

// runUpdateCycle executes one complete host update: load configuration and
// session state, resolve the tree, and persist the new state. The session
// state is only committed after a fully successful resolution.
func runUpdateCycle(inputPath string, flags *updateFlags) (*updateResult, error) {
	cfg, err := loadConfigWithOverrides(flags)
	if err != nil {
		return nil, err
	}

	raw, readErr := readInput(inputPath)
	if readErr != nil {
		return nil, readErr
	}

	if flags.strict {
		strictErr := checkSchema(raw)
		if strictErr != nil {
			return nil, strictErr
		}
	}

	input, decodeErr := aggtree.Decode(bytes.NewReader(raw))
	if decodeErr != nil {
		return nil, decodeErr
	}

	store, storeErr := openStore(cfg, flags)
	if storeErr != nil {
		return nil, storeErr
	}

	resolver := cube.NewResolver(cfg.ResolverOptions())

	var prevDepths *[cube.NumAxes]int

	if store != nil {
		state, loadErr := store.Load(flags.sessionName)
		if loadErr != nil {
			return nil, loadErr
		}

		if state != nil {
			resolver.RestoreDepths(state.Depths)
			depths := state.Depths
			prevDepths = &depths
		}
	}

	dataset := resolver.Resolve(input)

	saveErr := saveState(store, resolver, dataset, flags.sessionName)
	if saveErr != nil {
		return nil, saveErr
	}

	return &updateResult{Dataset: dataset, PrevDepths: prevDepths, Config: cfg}, nil
}

func loadConfigWithOverrides(flags *updateFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	if flags.topN > 0 {
		cfg.Cube.TopN = flags.topN
	}

	if flags.sortMode != "" {
		cfg.Cube.SortMode = flags.sortMode
	}

	if flags.separator != "" {
		cfg.Cube.Separator = flags.separator
	}

	cfg.Normalize()

	return cfg, nil
}

func readInput(inputPath string) ([]byte, error) {
	if inputPath == stdinPath {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}

		return raw, nil
	}

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	return raw, nil
}

func checkSchema(raw []byte) error {
	issues, err := aggtree.ValidateJSON(raw)
	if err != nil {
		return err
	}

	if len(issues) > 0 {
		for _, issue := range issues {
			slog.Default().Warn("schema violation", "field", issue.Field, "detail", issue.Description)
		}

		return fmt.Errorf("%w (%d violations)", ErrSchemaViolation, len(issues))
	}

	return nil
}

// openStore returns nil when session persistence is disabled.
func openStore(cfg *config.Config, flags *updateFlags) (*session.Store, error) {
	if flags.noSession {
		return nil, nil
	}

	codec, err := session.CodecByName(cfg.Session.Codec)
	if err != nil {
		return nil, err
	}

	dir := cfg.Session.Dir
	if flags.stateDir != "" {
		dir = flags.stateDir
	}

	return session.NewStore(dir, codec), nil
}

func saveState(store *session.Store, resolver *cube.Resolver, dataset *cube.Dataset, name string) error {
	if store == nil {
		return nil
	}

	depths, committed := resolver.Depths()
	if !committed {
		// Nothing resolved; keep whatever state the session had.
		return nil
	}

	return store.Save(name, &session.State{
		Depths:    depths,
		Previous:  dataset.Snapshot(),
		UpdatedAt: time.Now().UTC(),
	})
}
