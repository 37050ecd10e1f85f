package runtime

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/wippyai/wasm-jit-runtime/errors"
)

const (
	DefaultMemDefault = 4 << 20
	DefaultMemMax     = 16 << 20
)

// Config sizes a Runtime. Memory sizes are in bytes.
type Config struct {
	MemDefault int    `koanf:"mem_default"`
	MemMax     int    `koanf:"mem_max"`
	OptLevel   uint32 `koanf:"opt_level"` // passed through to the code generator
}

func DefaultConfig() Config {
	return Config{
		MemDefault: DefaultMemDefault,
		MemMax:     DefaultMemMax,
	}
}

// Validate checks mem_max >= mem_default > 0.
func (c Config) Validate() error {
	if c.MemDefault <= 0 {
		return errors.InvalidConfig(fmt.Sprintf("mem_default must be positive, got %d", c.MemDefault))
	}
	if c.MemMax < c.MemDefault {
		return errors.InvalidConfig(fmt.Sprintf("mem_max (%d) is smaller than mem_default (%d)", c.MemMax, c.MemDefault))
	}
	return nil
}

// LoadConfig reads a YAML file over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return Config{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidConfig, err, "load config file "+path)
	}
	return unmarshalConfig(k)
}

// LoadConfigBytes reads YAML bytes over DefaultConfig.
func LoadConfigBytes(data []byte) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return Config{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidConfig, err, "load config data")
	}
	return unmarshalConfig(k)
}

func unmarshalConfig(k *koanf.Koanf) (Config, error) {
	cfg := DefaultConfig()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidConfig, err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
