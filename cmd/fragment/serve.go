// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mdhender/fragment"
	"github.com/mdhender/fragment/pipelines/stages"
	store "github.com/mdhender/fragment/stores/sqlite"
	"github.com/mdhender/fragment/web/handlers"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func cmdServe() *cobra.Command {
	var pf parserFlags
	addr := ":8787"
	var dataDir string
	var dbPath string
	var timeout time.Duration
	addFlags := func(cmd *cobra.Command) error {
		pf.add(cmd)
		cmd.Flags().StringVar(&addr, "addr", addr, "HTTP listen address")
		cmd.Flags().StringVar(&dataDir, "data", dataDir, "load the .html files in this directory at startup")
		cmd.Flags().StringVar(&dbPath, "db", dbPath, "database file (empty = in-memory)")
		cmd.Flags().DurationVar(&timeout, "timeout", timeout, "auto-shutdown after duration (e.g., 5s, 1m)")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "serve",
		Short:        "serve the parser and document store over HTTP",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pf.parser(cmd)
			if err != nil {
				return err
			}
			return run(cmd, p, dataDir, dbPath, addr, timeout)
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

func run(cmd *cobra.Command, p *fragment.Parser, dataDir, dbPath, addr string, timeout time.Duration) error {
	var sqliteStore *store.SQLiteStore
	var err error

	if dbPath != "" {
		log.Printf("store: using file-based SQLite: %s", dbPath)
		sqliteStore, err = store.NewSQLiteStoreWithConfig(store.StoreConfig{Path: dbPath})
	} else {
		log.Printf("store: using in-memory SQLite")
		sqliteStore, err = store.NewSQLiteStore()
	}
	if err != nil {
		return fmt.Errorf("failed to create SQLite store: %v", err)
	}
	defer sqliteStore.Close()

	ctx := context.Background()

	if dataDir != "" {
		if err := loadFromDir(ctx, afero.NewOsFs(), sqliteStore, p, cmd, dataDir); err != nil {
			return fmt.Errorf("failed to load data: %w", err)
		}
	}

	stats, err := sqliteStore.Stats(ctx)
	if err != nil {
		return err
	}
	log.Printf("store: %s documents, %s nodes, %s attributes",
		humanize.Comma(stats.Documents), humanize.Comma(stats.Nodes), humanize.Comma(stats.Attributes))

	h, err := handlers.New(sqliteStore, p)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	h.Routes(mux)

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	if timeout > 0 {
		go func() {
			log.Printf("server: will auto-shutdown in %v", timeout)
			time.Sleep(timeout)
			log.Printf("server: timeout reached, initiating shutdown")
			shutdown <- os.Interrupt
		}()
	}

	go func() {
		log.Printf("server: listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server: %v", err)
		}
	}()

	<-shutdown
	log.Printf("server: shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown error: %w", err)
	}

	log.Printf("server: stopped")
	return nil
}

// loadFromDir ingests every .html file in dir. Files already in the
// store are skipped by hash.
func loadFromDir(ctx context.Context, fs afero.Fs, s *store.SQLiteStore, p *fragment.Parser, cmd *cobra.Command, dir string) error {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return err
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".html") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	svc, err := stages.NewIngestService(s, p, newLogger(cmd))
	if err != nil {
		return err
	}
	svc.SetFS(fs)
	results, err := svc.IngestPaths(ctx, paths)
	if err != nil {
		return err
	}
	log.Printf("store: loaded %d files from %s", len(results), dir)
	return nil
}
