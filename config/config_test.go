// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gogpu/graphview/gpu"
	"github.com/gogpu/graphview/graph"
	"github.com/gogpu/graphview/options"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Load Tests
// =============================================================================

func TestDefault_MatchesOptionsDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	o, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, options.Default(), o)

	b, err := cfg.Backend()
	require.NoError(t, err)
	assert.Equal(t, gpu.BackendAuto, b)
}

func TestWrite_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Default()))
	text := buf.String()
	for _, section := range []string{"[render]", "[pipeline]", "[scheduler]", "[camera]"} {
		assert.Contains(t, text, section)
	}
	assert.Contains(t, text, `close_timeout = "2s"`)

	got, err := Decode(strings.NewReader(text))
	require.NoError(t, err)
	assert.Equal(t, Default(), got)
}

func TestDecode_PartialOverridesDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(`
[render]
backend = "vertex-array"
update_mode = "partial"
edge_scale = 2.5
selection_color_mode = "distinct"
edge_both_selection_color = "#ff000080"
background_color = "black"

[scheduler]
max_workers = 2
close_timeout = "500ms"
`))
	require.NoError(t, err)

	b, err := cfg.Backend()
	require.NoError(t, err)
	assert.Equal(t, gpu.BackendVertexArray, b)

	m, err := cfg.UpdateMode()
	require.NoError(t, err)
	assert.Equal(t, gpu.UpdatePartial, m)

	o, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, float32(2.5), o.EdgeScale)
	assert.True(t, o.DistinctSelectionColors())
	assert.Equal(t, graph.RGBA(255, 0, 0, 128), o.EdgeBothSelectionColor)
	assert.Equal(t, graph.RGBA(0, 0, 0, 255), o.BackgroundColor)
	assert.True(t, o.ShowNodes, "unset keys keep their defaults")

	assert.Equal(t, 2, cfg.Scheduler.MaxWorkers)
	assert.Equal(t, Duration(500*time.Millisecond), cfg.Scheduler.CloseTimeout)
	assert.Equal(t, 1280, cfg.Camera.Width)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"unknown key", "[render]\nshow_nodez = true\n"},
		{"bad backend", "[render]\nbackend = \"vulkan\"\n"},
		{"bad update mode", "[render]\nupdate_mode = \"stream\"\n"},
		{"bad color", "[render]\nbackground_color = \"#12\"\n"},
		{"bad factor", "[render]\nlighten_non_selected_factor = 2.0\n"},
		{"bad duration", "[scheduler]\nclose_timeout = \"soon\"\n"},
		{"too few slots", "[pipeline]\nslots = 2\n"},
		{"no workers", "[scheduler]\nmax_workers = 0\n"},
		{"bad camera", "[camera]\nwidth = 0\n"},
		{"syntax", "[render\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.text))
			assert.Error(t, err)
		})
	}
}

func TestColor_Text(t *testing.T) {
	tests := []struct {
		in   string
		want graph.Color
		out  string
	}{
		{"#102030", graph.RGBA(0x10, 0x20, 0x30, 0xff), "#102030"},
		{"#10203040", graph.RGBA(0x10, 0x20, 0x30, 0x40), "#10203040"},
		{"White", graph.RGBA(255, 255, 255, 255), "#ffffff"},
	}
	for _, tt := range tests {
		var c Color
		require.NoError(t, c.UnmarshalText([]byte(tt.in)))
		if graph.Color(c) != tt.want {
			t.Errorf("UnmarshalText(%q) = %#x, want %#x", tt.in, c, tt.want)
		}
		out, err := c.MarshalText()
		require.NoError(t, err)
		if string(out) != tt.out {
			t.Errorf("MarshalText() = %q, want %q", out, tt.out)
		}
	}
}

// =============================================================================
// Watcher Tests
// =============================================================================

func writeFile(t *testing.T, path, text string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
}

func TestWatcher_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphview.toml")
	writeFile(t, path, "[render]\nedge_scale = 3.0\n")

	store := options.NewStore(options.Default())
	w := NewWatcher(path, store)
	var applied *Config
	w.OnReload = func(c *Config) { applied = c }

	w.Reload()
	require.NotNil(t, applied)
	assert.Equal(t, float32(3), store.Load().EdgeScale)
	assert.Equal(t, uint64(1), store.Version())

	// A broken file keeps the previous options.
	writeFile(t, path, "[render]\nedge_scale = -1.0\n")
	var failed error
	w.OnError = func(err error) { failed = err }
	w.Reload()
	assert.Error(t, failed)
	assert.Equal(t, float32(3), store.Load().EdgeScale)
}

func TestWatcher_RunPicksUpWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graphview.toml")
	writeFile(t, path, "[render]\nshow_edges = true\n")

	store := options.NewStore(options.Default())
	w := NewWatcher(path, store)
	w.SetDebounce(10 * time.Millisecond)
	reloaded := make(chan struct{}, 4)
	w.OnReload = func(*Config) { reloaded <- struct{}{} }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Unrelated files in the directory are ignored.
	writeFile(t, filepath.Join(dir, "other.toml"), "x = 1\n")

	require.Eventually(t, func() bool {
		writeFile(t, path, "[render]\nshow_edges = false\n")
		select {
		case <-reloaded:
			return true
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
	assert.False(t, store.Load().ShowEdges)

	cancel()
	require.NoError(t, <-done)
}
