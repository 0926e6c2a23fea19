package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/developit/templeton"
	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// Version information, set at build time.
var (
	Version   = "dev"
	BuildDate = "unknown"
)

// setBlockProfileRate is replaced in tests.
var setBlockProfileRate = runtime.SetBlockProfileRate

// options holds the parsed command line.
type options struct {
	templateFile   string
	templateString string
	dataFile       string
	configFile     string
	output         string
	interactive    bool
	iterations     int
	cpuprofile     string
	memprofile     string
	blockprofile   string
	outputDir      string
	version        bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("templeton", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.templateFile, "template", "", "template file to render")
	fs.StringVar(&opts.templateString, "template-string", "", "template string to render (alternative to template file)")
	fs.StringVar(&opts.dataFile, "data", "", "JSON or YAML file with data, - for stdin")
	fs.StringVar(&opts.configFile, "config", "", "YAML or JSON config file, created with defaults when missing")
	fs.StringVar(&opts.output, "output", "", "write the result to this file instead of stdout")
	fs.BoolVar(&opts.interactive, "interactive", false, "prompt for keys the data does not provide")
	fs.IntVar(&opts.iterations, "iterations", 1, "number of times to render, for timing")
	fs.StringVar(&opts.cpuprofile, "cpuprofile", "", "write cpu profile to file")
	fs.StringVar(&opts.memprofile, "memprofile", "", "write memory profile to file")
	fs.StringVar(&opts.blockprofile, "blockprofile", "", "write goroutine blocking profile to file")
	fs.StringVar(&opts.outputDir, "output-dir", "profile", "directory to store profile output")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.version {
		return opts, nil
	}
	if opts.templateFile == "" && opts.templateString == "" {
		return nil, errors.New("either -template or -template-string must be provided")
	}
	if opts.iterations < 1 {
		return nil, fmt.Errorf("-iterations must be at least 1, got %d", opts.iterations)
	}
	return opts, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, surveyPrompter{}); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "templeton: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, prompter Prompter) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if opts.version {
		fmt.Fprintf(stdout, "templeton %s (built %s)\n", Version, BuildDate)
		return nil
	}

	config := DefaultConfig()
	if opts.configFile != "" {
		if config, err = LoadConfig(opts.configFile); err != nil {
			return err
		}
	}
	level, err := config.Level()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	engineOpts, err := config.EngineOptions(logger)
	if err != nil {
		return err
	}
	engine, err := templeton.New(engineOpts...)
	if err != nil {
		return fmt.Errorf("failed to configure engine: %w", err)
	}

	templateContent := opts.templateString
	if opts.templateFile != "" {
		content, err := os.ReadFile(opts.templateFile)
		if err != nil {
			return fmt.Errorf("failed to read template file: %w", err)
		}
		templateContent = string(content)
	}

	data, err := loadData(opts.dataFile, stdin)
	if err != nil {
		return err
	}
	if opts.interactive {
		if err := promptMissing(ctx, prompter, templeton.Keys(templateContent), data); err != nil {
			return err
		}
	}

	if opts.cpuprofile != "" || opts.memprofile != "" || opts.blockprofile != "" {
		if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if opts.blockprofile != "" {
		// The block profile stays empty unless sampling is switched on.
		setBlockProfileRate(1)
		defer setBlockProfileRate(0)
	}
	if opts.cpuprofile != "" {
		cpuFile := filepath.Join(opts.outputDir, opts.cpuprofile)
		f, err := os.Create(cpuFile)
		if err != nil {
			return fmt.Errorf("failed to create CPU profile file: %w", err)
		}
		defer f.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("failed to start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		logger.Info("CPU profiling enabled", "file", cpuFile)
	}

	var result string
	start := time.Now()
	for i := 0; i < opts.iterations; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if result, err = engine.Render(templateContent, data); err != nil {
			return err
		}
	}
	if opts.iterations > 1 {
		duration := time.Since(start)
		logger.Info("rendered template",
			"iterations", opts.iterations,
			"total", duration,
			"average", duration/time.Duration(opts.iterations),
			"length", len(result))
	}

	if opts.memprofile != "" {
		if err := writeProfile(filepath.Join(opts.outputDir, opts.memprofile), "heap"); err != nil {
			return err
		}
	}
	if opts.blockprofile != "" {
		if err := writeProfile(filepath.Join(opts.outputDir, opts.blockprofile), "block"); err != nil {
			return err
		}
	}

	if opts.output != "" {
		if err := atomic.WriteFile(opts.output, strings.NewReader(result)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		logger.Debug("wrote output", "file", opts.output, "bytes", len(result))
		return nil
	}
	_, err = io.WriteString(stdout, result)
	return err
}

func writeProfile(path, name string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s profile file: %w", name, err)
	}
	defer f.Close()

	if err := pprof.Lookup(name).WriteTo(f, 0); err != nil {
		return fmt.Errorf("failed to write %s profile: %w", name, err)
	}
	return nil
}

// loadData reads the render data from path, or from stdin when path is "-".
// Files ending in .json are decoded as JSON, everything else as YAML.
func loadData(path string, stdin io.Reader) (map[string]any, error) {
	data := map[string]any{}
	if path == "" {
		return data, nil
	}

	var (
		content []byte
		err     error
	)
	if path == "-" {
		content, err = io.ReadAll(stdin)
	} else {
		content, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return data, nil
	}

	if isJSON(path) {
		err = json.Unmarshal(content, &data)
	} else {
		err = yaml.Unmarshal(content, &data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse data %s: %w", path, err)
	}
	return data, nil
}
