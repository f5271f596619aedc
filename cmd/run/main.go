package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/duk-runtime/engine"
	"github.com/wippyai/duk-runtime/runtime"
)

type options struct {
	file        string
	configFile  string
	logLevel    string
	interactive bool
}

func main() {
	var opts options
	flag.StringVar(&opts.file, "file", "", "Path to a script file")
	flag.StringVar(&opts.configFile, "config", "", "Path to a TOML config file")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.interactive, "i", false, "Interactive mode with TUI")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: run -file <script.js> [-config duk.toml] [-log-level debug]")
		fmt.Fprintln(os.Stderr, "       run -i [-file <script.js>]  (interactive mode, file is preloaded)")
		fmt.Fprintln(os.Stderr, "       run < script.js")
		flag.PrintDefaults()
	}
	flag.Parse()

	if !opts.interactive && opts.file == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		opts.interactive = true
	}

	if err := run(opts, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options, stdin io.Reader, stdout io.Writer) error {
	fc := &runtime.FileConfig{}
	if opts.configFile != "" {
		var err error
		if fc, err = runtime.LoadConfig(opts.configFile); err != nil {
			return err
		}
	}
	if opts.logLevel != "" {
		fc.LogLevel = opts.logLevel
	}

	level, err := fc.Level()
	if err != nil {
		return err
	}
	logger, err := newLogger(level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	engine.SetLogger(logger)

	cfg, err := fc.Config(&runtime.Config{Stdout: stdout})
	if err != nil {
		return err
	}
	cfg.Engine.Logger = logger

	if opts.interactive {
		return runInteractive(cfg, opts.file)
	}

	rt, err := runtime.New(cfg)
	if err != nil {
		return fmt.Errorf("create runtime: %w", err)
	}
	defer rt.Close()

	if opts.file != "" {
		return rt.RunFile(opts.file)
	}

	src, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	return rt.RunScript("stdin", src)
}

// newLogger builds a development logger for debug output and a production
// logger otherwise.
func newLogger(level zapcore.Level) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if level <= zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}
