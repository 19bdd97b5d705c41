package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/kapu/steam-profile-md/internal/config"
)

// ErrUsage marks command-line problems (unknown flags, stray arguments).
var ErrUsage = errors.New("invalid usage")

// cliOptions holds the parsed command line.
type cliOptions struct {
	configFile  string
	showVersion bool
	overrides   config.Overrides
}

// parseFlags parses args (without the program name). Only flags the user
// actually passed end up in overrides, so env and file values survive.
func parseFlags(args []string, stderr io.Writer) (*cliOptions, error) {
	fs := flag.NewFlagSet("steam-md", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: steam-md [flags]\n\nExport a Steam profile and library as a Markdown document.\n\nFlags:\n")
		fs.PrintDefaults()
	}

	var (
		opts       cliOptions
		vanity     string
		steamID    string
		assetPath  string
		outputDir  string
		skipAssets bool
		html       bool
		rewriter   string
		logLevel   string
	)

	fs.StringVarP(&opts.configFile, "config", "c", "", "YAML config file (defaults to $CONFIG_FILE)")
	fs.StringVar(&vanity, "vanity", "", "vanity name of the profile (steamcommunity.com/id/<vanity>)")
	fs.StringVar(&steamID, "steam-id", "", "64-bit steam id of the profile")
	fs.StringVar(&assetPath, "asset-path", "", "directory that receives downloaded images")
	fs.StringVarP(&outputDir, "output-dir", "o", "", "directory that receives the generated document")
	fs.BoolVar(&skipAssets, "skip-assets", false, "reference remote images instead of downloading them")
	fs.BoolVar(&html, "html", false, "also write an HTML rendition next to the Markdown file")
	fs.StringVar(&rewriter, "rewriter", "", `description rewriter: "regex" or "tree"`)
	fs.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.BoolVarP(&opts.showVersion, "version", "v", false, "print the version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments %v", ErrUsage, fs.Args())
	}

	if fs.Changed("vanity") {
		opts.overrides.VanityURL = &vanity
	}
	if fs.Changed("steam-id") {
		opts.overrides.SteamID = &steamID
	}
	if fs.Changed("asset-path") {
		opts.overrides.AssetPath = &assetPath
	}
	if fs.Changed("output-dir") {
		opts.overrides.OutputDir = &outputDir
	}
	if fs.Changed("skip-assets") {
		opts.overrides.SkipAssets = &skipAssets
	}
	if fs.Changed("html") {
		opts.overrides.HTML = &html
	}
	if fs.Changed("rewriter") {
		opts.overrides.Rewriter = &rewriter
	}
	if fs.Changed("log-level") {
		opts.overrides.LogLevel = &logLevel
	}

	return &opts, nil
}
