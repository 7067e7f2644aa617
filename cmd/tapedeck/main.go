package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/linuxmatters/tapedeck/internal/audio"
	"github.com/linuxmatters/tapedeck/internal/cli"
	"github.com/linuxmatters/tapedeck/internal/config"
	"github.com/linuxmatters/tapedeck/internal/fileutil"
)

// version is set via ldflags at build time
// Local dev builds: "dev"
// Release builds: git tag (e.g. "v0.1.0")
var version = "dev"

// versionFlag prints the version and exits before command validation runs
type versionFlag bool

func (v versionFlag) BeforeApply(app *kong.Kong) error {
	cli.PrintVersion(version)
	app.Exit(0)
	return nil
}

// Globals are flags shared by every command
type Globals struct {
	SearchPath []string    `name:"search-path" short:"s" help:"Directory searched for relative paths, in order" default:"." placeholder:"dir"`
	Pack       []string    `name:"pack" short:"p" help:"Zip archive whose entries are opened when no loose file matches" placeholder:"zip"`
	Version    versionFlag `name:"version" help:"Show version information"`
}

// openFiles builds the file layer and mounts every pack
func (g *Globals) openFiles() (*fileutil.FileUtils, error) {
	fu := fileutil.New(g.SearchPath...)
	for _, p := range g.Pack {
		if err := fu.MountPack(p); err != nil {
			return nil, errors.Join(err, fu.UnmountAll())
		}
	}
	return fu, nil
}

// runtimeConfig collects the shared overrides
func (g *Globals) runtimeConfig() *config.RuntimeConfig {
	return &config.RuntimeConfig{
		SearchPaths: g.SearchPath,
		Packs:       g.Pack,
	}
}

var CLI struct {
	Globals

	Info    InfoCmd    `cmd:"" help:"Show stream properties"`
	Decode  DecodeCmd  `cmd:"" help:"Decode a stream to 16-bit PCM WAV"`
	Analyze AnalyzeCmd `cmd:"" help:"Measure levels and print the frequency spectrum"`
	Wave    WaveCmd    `cmd:"" help:"Render a waveform PNG"`
	Play    PlayCmd    `cmd:"" help:"Play a stream on the default sound device"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("tapedeck"),
		kong.Description(cli.Tagline),
		kong.Vars{"version": version},
		kong.UsageOnError(),
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	if err := ctx.Run(&CLI.Globals); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

// withDecoder opens path through the file layer, runs fn and releases everything
func withDecoder(g *Globals, path string, fn func(dec audio.Decoder) error) (err error) {
	fu, err := g.openFiles()
	if err != nil {
		return err
	}
	defer func() {
		if uerr := fu.UnmountAll(); uerr != nil && err == nil {
			err = uerr
		}
	}()

	dec, err := audio.OpenDecoder(fu, path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer dec.Close()

	return fn(dec)
}
