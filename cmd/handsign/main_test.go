package main

import (
	"testing"

	"github.com/ayusman/handsign/internal/config"
)

func TestRootCmd_FlagsOverrideConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Addr = "0.0.0.0:9000" // as if set from the environment

	cmd := newRootCmd(&cfg)
	if err := cmd.ParseFlags([]string{"--camera", "2", "--max-hands", "1", "--db", ""}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	if cfg.CameraID != 2 {
		t.Errorf("CameraID = %d, want 2", cfg.CameraID)
	}
	if cfg.MaxHands != 1 {
		t.Errorf("MaxHands = %d, want 1", cfg.MaxHands)
	}
	if cfg.DBPath != "" {
		t.Errorf("DBPath = %q, want empty", cfg.DBPath)
	}
	if cfg.Addr != "0.0.0.0:9000" {
		t.Errorf("Addr = %q, want the environment value kept", cfg.Addr)
	}
}

func TestRootCmd_Defaults(t *testing.T) {
	cfg := config.Default()
	cmd := newRootCmd(&cfg)

	for flag, want := range map[string]string{
		"addr":           config.DefaultAddr,
		"camera":         "0",
		"model":          config.DefaultModelPath,
		"min-confidence": "0.3",
		"max-hands":      "2",
	} {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			t.Errorf("flag --%s not registered", flag)
			continue
		}
		if f.DefValue != want {
			t.Errorf("--%s default = %q, want %q", flag, f.DefValue, want)
		}
	}
}

func TestRootCmd_RejectsArgs(t *testing.T) {
	cfg := config.Default()
	cmd := newRootCmd(&cfg)
	cmd.SetArgs([]string{"extra"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("Execute() should reject positional arguments")
	}
}
