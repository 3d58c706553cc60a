// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/muxd/main.go
// Summary: Implements main capabilities for the muxd server harness.
// Usage: Executed by operators to start the multiplexer server that manages sessions.
// Notes: Focuses on wiring flags and lifecycle around the internal reactor.

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/texelation/muxd/internal/auth"
	"github.com/texelation/muxd/internal/config"
	"github.com/texelation/muxd/internal/layout"
	"github.com/texelation/muxd/internal/pane"
	"github.com/texelation/muxd/internal/ptyio"
	"github.com/texelation/muxd/internal/reactor"
	"github.com/texelation/muxd/internal/session"
	"github.com/texelation/muxd/internal/term"
)

func main() {
	listenAddr := flag.String("listen", "", "WebSocket listen address (overrides config)")
	adminSocket := flag.String("admin-socket", "/tmp/muxd.sock", "Unix socket path for the admin control socket")
	tokenFile := flag.String("token-file", "", "Path to write the minted auth tokens (overrides config)")
	shell := flag.String("shell", "", "Shell to spawn for new panes (overrides config)")
	cpuProfile := flag.String("pprof-cpu", "", "Write CPU profile to file")
	memProfile := flag.String("pprof-mem", "", "Write heap profile to file on exit")
	verbose := flag.Bool("verbose", false, "Enable verbose server logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: failed to load config: %v, using defaults", err)
		cfg = config.Default()
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *tokenFile != "" {
		cfg.TokenFile = *tokenFile
	}
	if *shell != "" {
		cfg.Shell = *shell
	}
	if *verbose {
		cfg.Verbose = true
	}
	reactor.SetVerboseLogging(cfg.Verbose)

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create CPU profile: %v\n", err)
			os.Exit(1)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "failed to start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	authStore, err := auth.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to mint auth tokens: %v\n", err)
		os.Exit(1)
	}
	if err := authStore.WriteFile(cfg.TokenFile); err != nil {
		log.Printf("Warning: failed to write token file %s: %v", cfg.TokenFile, err)
	} else {
		log.Printf("auth tokens written to %s", cfg.TokenFile)
	}

	layouts := layout.Default()
	panes := pane.NewRegistry()

	factory := func(cols, rows uint16) (term.Terminal, pane.Pty) {
		t := term.NewStub(int(cols), int(rows))
		p, err := ptyio.Start(cfg.Shell, nil, int(cols), int(rows), os.Environ())
		if err != nil {
			log.Printf("pane spawn: failed to start shell %q: %v", cfg.Shell, err)
			return t, nil
		}
		return t, p
	}

	sess := session.New(1, panes, factory)
	r := reactor.New(sess, layouts, authStore)

	firstWindow := sess.CreateWindow("single", mustTemplate(layouts, "single"))
	for _, id := range firstWindow.PaneIDs() {
		r.SpawnPaneReader(id)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", r.HandleWS)
	httpSrv := &http.Server{Addr: cfg.ListenAddr, Handler: mux}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	adminListener, err := net.Listen("unix", *adminSocket)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to listen on admin socket %s: %v\n", *adminSocket, err)
		os.Exit(1)
	}
	defer os.Remove(*adminSocket)

	go r.ServeAdmin(ctx, adminListener)
	go r.Run(ctx)

	go func() {
		log.Printf("muxd listening on %s (admin socket %s)", cfg.ListenAddr, *adminSocket)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "http server error: %v\n", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for {
		sig := <-sigCh
		if sig == syscall.SIGHUP {
			log.Println("Received SIGHUP, reloading configuration...")
			if reloaded, err := config.Load(); err != nil {
				log.Printf("Failed to reload configuration: %v", err)
			} else {
				cfg = reloaded
				log.Println("Configuration reloaded (takes effect for new panes/windows only)")
			}
			continue
		}
		break
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	r.Stop()
	cancel()
	_ = adminListener.Close()

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create heap profile: %v\n", err)
		} else {
			if err := pprof.WriteHeapProfile(f); err != nil {
				fmt.Fprintf(os.Stderr, "failed to write heap profile: %v\n", err)
			}
			_ = f.Close()
		}
	}

	fmt.Println("muxd stopped")
}

func mustTemplate(db *layout.Database, id string) *layout.Node {
	tmpl, err := db.Get(id)
	if err != nil {
		panic(err)
	}
	return tmpl
}
