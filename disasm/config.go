package disasm

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds disassembly options.
type Config struct {
	// XLEN selects the base integer width (32 or 64). Zero means use the
	// width recorded in the program being disassembled, or 32 for raw bytes.
	XLEN int `json:"xlen"`

	// Workers bounds how many segments are disassembled in parallel.
	// Default: 4.
	Workers int `json:"workers"`

	// ShowAddress prefixes each line with its virtual address. Default: true.
	ShowAddress bool `json:"show_address"`

	// ShowRaw prints the encoded instruction next to its text. Default: true.
	ShowRaw bool `json:"show_raw"`

	// NoPseudo disables pseudo-instruction aliases such as nop and mv.
	NoPseudo bool `json:"no_pseudo"`

	// Aliases adds the j, jal, ret and fence aliases.
	Aliases bool `json:"aliases"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		XLEN:        0,
		Workers:     4,
		ShowAddress: true,
		ShowRaw:     true,
		NoPseudo:    false,
		Aliases:     false,
	}
}

// LoadConfig loads a Config from a JSON file. Fields missing from the file
// keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read disassembler config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse disassembler config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize disassembler config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write disassembler config file: %w", err)
	}

	return nil
}

// Validate checks that the option values are usable.
func (c *Config) Validate() error {
	if c.XLEN != 0 && c.XLEN != 32 && c.XLEN != 64 {
		return fmt.Errorf("xlen must be 0, 32 or 64, got %d", c.XLEN)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be > 0")
	}
	return nil
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
