package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gridlens/cubelens/internal/cube"
)

// stateDirPerm is the permission mode for created state directories.
const stateDirPerm = 0o750

// State is the surviving cross-update state of one visualization instance.
// Everything else is rebuilt fresh on every update.
type State struct {
	// Depths are the committed per-axis drill depths.
	Depths [cube.NumAxes]int `json:"depths"`
	// Previous is the last resolved dataset, retained for fallback and
	// diff display only.
	Previous *cube.Dataset `json:"previous,omitempty"`
	// UpdatedAt records when the state was last committed.
	UpdatedAt time.Time `json:"updated_at"`
}

// ErrUnknownCodec indicates an unrecognized codec name.
var ErrUnknownCodec = errors.New("session: unknown codec")

// CodecByName maps a configured codec name to its implementation.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "json":
		return NewJSONCodec(), nil
	case "gob":
		return NewGobCodec(), nil
	case "lz4":
		return NewLZ4Codec(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCodec, name)
	}
}

// Store reads and writes named session states under one directory.
type Store struct {
	dir   string
	codec Codec
}

// NewStore creates a store rooted at dir using the given codec.
func NewStore(dir string, codec Codec) *Store {
	return &Store{dir: dir, codec: codec}
}

// Load reads the state of the named session. A session that has never been
// saved yields (nil, nil): first resolution starts with no prior state.
func (s *Store) Load(name string) (*State, error) {
	file, err := os.Open(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("open session state: %w", err)
	}

	defer file.Close()

	var state State

	decodeErr := s.codec.Decode(file, &state)
	if decodeErr != nil {
		return nil, fmt.Errorf("decode session state: %w", decodeErr)
	}

	return &state, nil
}

// Save writes the state of the named session, creating the state directory
// on first use.
func (s *Store) Save(name string, state *State) error {
	mkErr := os.MkdirAll(s.dir, stateDirPerm)
	if mkErr != nil {
		return fmt.Errorf("create state dir: %w", mkErr)
	}

	file, err := os.Create(s.path(name))
	if err != nil {
		return fmt.Errorf("create session state: %w", err)
	}

	defer file.Close()

	encodeErr := s.codec.Encode(file, state)
	if encodeErr != nil {
		return fmt.Errorf("encode session state: %w", encodeErr)
	}

	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+s.codec.Extension())
}
