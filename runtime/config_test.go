package runtime

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/wippyai/wasm-jit-runtime/errors"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", DefaultConfig(), false},
		{"equal", Config{MemDefault: 8, MemMax: 8}, false},
		{"zero default", Config{MemMax: 8}, true},
		{"max below default", Config{MemDefault: 8, MemMax: 4}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !stderrors.Is(err, &errors.Error{Phase: errors.PhaseConfig, Kind: errors.KindInvalidConfig}) {
				t.Errorf("error = %v, want invalid config", err)
			}
		})
	}
}

func TestLoadConfigBytes(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    Config
		wantErr bool
	}{
		{
			name: "full",
			yaml: "mem_default: 65536\nmem_max: 1048576\nopt_level: 2\n",
			want: Config{MemDefault: 65536, MemMax: 1048576, OptLevel: 2},
		},
		{
			name: "partial keeps defaults",
			yaml: "opt_level: 1\n",
			want: Config{MemDefault: DefaultMemDefault, MemMax: DefaultMemMax, OptLevel: 1},
		},
		{
			name: "empty document",
			yaml: "",
			want: DefaultConfig(),
		},
		{
			name:    "invalid combination",
			yaml:    "mem_default: 1024\nmem_max: 512\n",
			wantErr: true,
		},
		{
			name:    "malformed",
			yaml:    "mem_default: [1, 2\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadConfigBytes([]byte(tt.yaml))
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadConfigBytes() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("LoadConfigBytes() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runtime.yaml")
	if err := os.WriteFile(path, []byte("mem_default: 4096\nmem_max: 8192\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MemDefault != 4096 || cfg.MemMax != 8192 || cfg.OptLevel != 0 {
		t.Errorf("cfg = %+v", cfg)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}
