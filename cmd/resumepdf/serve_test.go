package main

// Notes:
// - runServe blocks until its context ends, so tests bound it with a short
//   timeout on an ephemeral loopback port. Routes are covered by the server
//   package tests.

import (
	"context"
	"testing"
	"time"
)

func TestRunServe_ShutsDownOnCancel(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t, &fakeConverter{})
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	code := runServe(ctx, []string{"-q", "--addr", "127.0.0.1:0", "--public-dir", t.TempDir()}, te.Environment)

	if code != ExitSuccess {
		t.Errorf("runServe() = %d, want %d (stderr %q)", code, ExitSuccess, te.stderr)
	}
	if te.received == nil || te.received.Server.Addr != "127.0.0.1:0" {
		t.Errorf("converter config = %+v, want addr from --addr", te.received)
	}
}

func TestRunServe_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{"bad listen address", []string{"-q", "--addr", "127.0.0.1:99999"}, ExitGeneral},
		{"invalid config value", []string{"--provider", "flatpak"}, ExitUsage},
		{"unknown flag", []string{"--bogus"}, ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			te := newTestEnv(t, &fakeConverter{})
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			if code := runServe(ctx, tt.args, te.Environment); code != tt.wantCode {
				t.Errorf("runServe() = %d, want %d (stderr %q)", code, tt.wantCode, te.stderr)
			}
		})
	}
}
