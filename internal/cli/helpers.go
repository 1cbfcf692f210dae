// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bot360/bot360-tui/internal/api"
	"github.com/bot360/bot360-tui/internal/config"
	"github.com/bot360/bot360-tui/internal/session"
)

// Setup loads config, applies environment and flag overrides, and builds
// the API client with the stored session. Fatal on unusable config.
func Setup(args Args) (*config.Config, *api.Client) {
	cfg := config.Global()
	if args.BaseURL != "" {
		cfg.Server.BaseURL = args.BaseURL
	}

	dir, err := config.Dir()
	if err != nil {
		Fatalf("Cannot resolve config directory: %v", err)
	}
	store, err := session.NewStore(dir)
	if err != nil {
		Fatalf("Cannot open session store: %v", err)
	}

	var opts []api.Option
	if args.Verbose {
		opts = append(opts, api.WithVerbose(true))
	}
	opts = append(opts, api.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}))

	return cfg, api.New(cfg.Server.BaseURL, store, opts...)
}

// SignalContext returns a context cancelled by SIGINT/SIGTERM, so polling
// commands exit cleanly on Ctrl-C.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Fatalf prints a styled error and exits non-zero.
func Fatalf(format string, a ...any) {
	fmt.Fprintln(os.Stderr, ErrorStyle.Render(fmt.Sprintf(format, a...)))
	os.Exit(1)
}

// secondArg returns the argument after the subcommand, or exits with the
// given usage line.
func secondArg(args Args, usage string) string {
	if len(args.Raw) < 2 {
		Fatalf("Usage: bot360 %s", usage)
	}
	return args.Raw[1]
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		Fatalf("Encoding output failed: %v", err)
	}
	fmt.Println(string(data))
}

// FailOnAuth translates auth sentinel errors into actionable guidance and
// exits; other errors return to the caller.
func FailOnAuth(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, api.ErrNotAuthenticated):
		Fatalf("Not signed in. Run `bot360 login` first.")
	case errors.Is(err, api.ErrSessionExpired):
		Fatalf("Session expired. Run `bot360 login` to sign in again.")
	}
	return err
}
