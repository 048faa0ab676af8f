package layout

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
)

// DefaultFile is the conventional name of the layout configuration file at
// a project root.
const DefaultFile = "layout.toml"

// Parse reads a declarative layout from TOML, validates it, and performs
// the stage-one estimate, so a parsed layout is immediately usable.
// Collections are arrays of tables ([[ram]], [[stack]], ...) so declaration
// order survives the round trip. Unknown keys are tolerated and logged.
func Parse(data []byte) (*Layout, error) {
	var l Layout
	md, err := toml.Decode(string(data), &l)
	if err != nil {
		return nil, fmt.Errorf("layout config parsing error: %w", err)
	}
	for _, key := range md.Undecoded() {
		Logger().Warn("unknown layout config key", zap.String("key", key.String()))
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("layout config validation error: %w", err)
	}
	if err := l.Estimate(); err != nil {
		return nil, fmt.Errorf("layout config calculation error: %w", err)
	}
	return &l, nil
}

// ReadFile reads and parses the layout configuration at path.
func ReadFile(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Marshal returns the canonical TOML serialization of the layout, computed
// fields included. Marshal is the inverse of Parse: sizes take the smallest
// exact suffix and addresses render as zero-padded hexadecimal.
func (l *Layout) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(l); err != nil {
		return nil, fmt.Errorf("layout config encoding error: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes the canonical serialization to path.
func (l *Layout) WriteFile(path string) error {
	data, err := l.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
