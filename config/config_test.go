package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Ksonar262/RFID"
	"github.com/Ksonar262/RFID/coverage"
	"github.com/Ksonar262/RFID/swarm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rfid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	g, err := cfg.Grid()
	require.NoError(t, err)
	rows, cols := g.Dims()
	assert.Equal(t, 6, rows)
	assert.Equal(t, 10, cols)
	assert.Equal(t, 26, g.NumFree())

	s, err := cfg.Settings()
	require.NoError(t, err)
	want := swarm.DefaultSettings()
	assert.Equal(t, want, s)
	assert.Equal(t, coverage.DefaultSignalRange, cfg.Coverage.SignalRange)
	assert.Equal(t, 10, cfg.Output.Elite)
}

func TestLoadOverlay(t *testing.T) {
	path := writeFile(t, `
layout:
  - "#####"
  - "#...#"
  - "#####"
swarm:
  num_ants: 2
  rule: canonical
  cache: true
output:
  trace: trace.db
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	g, err := cfg.Grid()
	require.NoError(t, err)
	assert.Equal(t, 3, g.NumFree())

	s, err := cfg.Settings()
	require.NoError(t, err)
	assert.Equal(t, 2, s.NumAnts)
	assert.Equal(t, 80, s.NumParticles, "unset fields keep defaults")
	assert.Equal(t, swarm.Canonical, s.Rule)
	assert.True(t, s.Cache)
	assert.Equal(t, "trace.db", cfg.Output.Trace)
	assert.True(t, cfg.Output.PNG)
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]string{
		"no free cells": "layout: [\"###\", \"###\"]\n",
		"bad layout":    "layout: [\"#x#\"]\n",
		"zero ants":     "swarm: {num_ants: 0}\n",
		"bad rule":      "swarm: {rule: greedy}\n",
		"zero range":    "coverage: {signal_range: 0}\n",
		"neg weight":    "coverage: {critical_zone_weight: -1}\n",
		"neg elite":     "output: {elite: -3}\n",
		"not yaml":      "swarm: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, body))
			assert.ErrorIs(t, err, rfid.ErrConfig)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWriteYAML(t *testing.T) {
	cfg := Default()
	cfg.Swarm.Seed = 42
	path := filepath.Join(t.TempDir(), "effective.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}
