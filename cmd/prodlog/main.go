// Command prodlog wraps a shell inside a PTY, records every run/edit
// capture the shell reports via the in-band protocol, and serves a REST
// API over the resulting store.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nielsreijers/prodlog/internal/capture"
	"github.com/nielsreijers/prodlog/internal/config"
	"github.com/nielsreijers/prodlog/internal/dbimport"
	"github.com/nielsreijers/prodlog/internal/diag"
	"github.com/nielsreijers/prodlog/internal/httpapi"
	"github.com/nielsreijers/prodlog/internal/logger"
	"github.com/nielsreijers/prodlog/internal/protocol"
	"github.com/nielsreijers/prodlog/internal/ptysession"
	"github.com/nielsreijers/prodlog/internal/store"
)

// buildVersion is stamped at build time via -ldflags; it defaults to the
// schema version this source tree was written against.
var buildVersion = "2.6.0"

var (
	flagDir          string
	flagPort         uint16
	flagImport       string
	flagCmd          string
	flagUIBackground string
)

func main() {
	root := &cobra.Command{
		Use:   "prodlog",
		Short: "Record shell sessions and serve them over HTTP",
		RunE:  run,
	}

	root.Flags().StringVar(&flagDir, "dir", ".local/share/prodlog", "storage root (relative to $HOME unless absolute)")
	root.Flags().Uint16Var(&flagPort, "port", 5000, "HTTP port")
	root.Flags().StringVar(&flagImport, "import", "", "import a prior .sqlite database before starting")
	root.Flags().StringVar(&flagCmd, "cmd", "/bin/bash", "initial child command line")
	root.Flags().StringVar(&flagUIBackground, "ui-background", "#FFFFFF", "CSS background colour injected into the UI")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "prodlog:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	printer := diag.New(os.Stdout, os.Stdout.Fd())

	cmdLine := ptysession.SplitCmd(flagCmd)
	if len(cmdLine) == 0 {
		printer.Fatal("--cmd must not be empty")
	}

	config.Init(config.Config{
		Dir:          flagDir,
		Port:         flagPort,
		Import:       flagImport,
		Cmd:          flagCmd,
		UIBackground: flagUIBackground,
		BuildVersion: buildVersion,
	})
	cfg := config.Get()

	dir, err := config.ResolveDir(cfg.Dir)
	if err != nil {
		printer.Fatal(fmt.Sprintf("failed to resolve storage directory: %v", err))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		printer.Fatal(fmt.Sprintf("failed to create storage directory: %v", err))
	}

	if err := logger.Init("info", logger.DefaultLogFile(dir)); err != nil {
		printer.Fatal(fmt.Sprintf("failed to initialize logging: %v", err))
	}

	dbPath := filepath.Join(dir, "prodlog.sqlite")
	st, err := store.Open(dbPath)
	if err != nil {
		printer.Fatal(fmt.Sprintf("failed to open database: %v", err))
	}
	defer st.Close()

	if cfg.Import != "" {
		if _, statErr := os.Stat(cfg.Import); statErr != nil {
			printer.Fatal(fmt.Sprintf("--import file not found: %v", statErr))
		}
		captures, tasks, err := dbimport.Import(st, cfg.Import)
		if err != nil {
			printer.Fatal(fmt.Sprintf("import failed: %v", err))
		}
		printer.Info(fmt.Sprintf("imported %d captures and %d tasks from %s", captures, tasks, cfg.Import))
	}

	hostname, _ := os.Hostname()

	api := httpapi.New(st)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigCh
		cancel()
	}()

	httpErrCh := make(chan error, 1)
	go func() {
		httpErrCh <- api.ListenAndServe(ctx, fmt.Sprintf(":%d", cfg.Port))
	}()

	sess, err := ptysession.New(ptysession.Config{
		Cmd: cmdLine,
		NewSink: func(backchannel io.Writer, userOut *os.File, size func() (rows, cols uint16), restore func()) protocol.Sink {
			return capture.New(st, backchannel, userOut, printer, cfg.MajorMinor(), hostname, size, api.Publish, restore)
		},
	})
	if err != nil {
		printer.Fatal(fmt.Sprintf("failed to start session: %v", err))
	}

	printer.Info(fmt.Sprintf("recording to %s, serving http://localhost:%d", dbPath, cfg.Port))

	err = sess.Run(ctx)
	cancel()
	<-httpErrCh

	return err
}
