package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatal(err)
	}
	if s.Physics.T1 != 2.8 || s.Server.Port != 8080 {
		t.Errorf("defaults not applied: %+v", s)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	data := `{"physics": {"t1": 3.0, "t2": 0.1, "pathPoints": 300, "dosBins": 100, "dosMesh": 200}, "server": {"port": 9000, "updateIntervalMs": 250}, "gpu": {"adapterPreference": "nvidia"}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Physics.T1 != 3.0 {
		t.Errorf("t1 = %v, want 3.0", s.Physics.T1)
	}
	if s.Server.Port != 9000 {
		t.Errorf("port = %v, want 9000", s.Server.Port)
	}
	if s.GPU.AdapterPreference != "nvidia" {
		t.Errorf("adapter preference = %q", s.GPU.AdapterPreference)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed settings loaded without error")
	}
}
