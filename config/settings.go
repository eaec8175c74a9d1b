// Package config loads the settings consumed by the cmd binaries. The
// engine packages never read configuration themselves; parameters flow in
// as plain arguments.
package config

import (
	"encoding/json"
	"os"
)

type Settings struct {
	Physics PhysicsSettings `json:"physics"`
	Server  ServerSettings  `json:"server"`
	GPU     GPUSettings     `json:"gpu"`
}

type PhysicsSettings struct {
	T1       float64 `json:"t1"`
	T2       float64 `json:"t2"`
	LambdaSO float64 `json:"lambdaSO"`
	Onsite   float64 `json:"onsite"`
	PathN    int     `json:"pathPoints"`
	DOSBins  int     `json:"dosBins"`
	DOSMesh  int     `json:"dosMesh"`
}

type ServerSettings struct {
	Port             int `json:"port"`
	UpdateIntervalMs int `json:"updateIntervalMs"`
}

type GPUSettings struct {
	AdapterPreference string `json:"adapterPreference"`
	Disable           bool   `json:"disable"`
}

// Defaults are graphene-like parameters and a local dev server.
func Defaults() Settings {
	return Settings{
		Physics: PhysicsSettings{
			T1:      2.8,
			T2:      0.1,
			PathN:   300,
			DOSBins: 100,
			DOSMesh: 200,
		},
		Server: ServerSettings{
			Port:             8080,
			UpdateIntervalMs: 250,
		},
	}
}

// Load reads path when it exists, layering it over Defaults. A missing
// file is not an error; a malformed one is.
func Load(path string) (Settings, error) {
	s := Defaults()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return s, err
	}
	return s, nil
}
