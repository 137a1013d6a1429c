package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	sketchcopy "github.com/kataras/sketch-copy"
	"github.com/kataras/sketch-copy/pkg/config"
	"github.com/kataras/sketch-copy/pkg/sketch"

	"github.com/fatih/color"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = sketch.Version

var (
	configFile string
	selection  []string
	writeBack  bool
	cut        bool
	watch      bool
	dumpTree   bool
)

func main() {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "sketch-copy",
		Short: "Copy Sketch layers for pasting into Kodika",
		Long:  "A tool to serialize selected layers of a Sketch document into a clipboard payload for the Kodika design editor",
		Run: func(cmd *cobra.Command, args []string) {
			run(cmd.Context(), v)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&configFile, "config", "c", "", "Config file (default: ./sketch-copy.{json,yaml,toml} if present)")
	flags.StringP("document", "d", "", "Sketch document JSON file (required)")
	flags.StringSliceVarP(&selection, "select", "s", nil, "Layers to copy, by ID, name or closest name (repeatable)")
	flags.StringP("output", "o", "", "Write the payload to this file instead of stdout")
	flags.StringP("report", "r", "", "Write a markdown copy report to this file")
	flags.Float64("scale", 3, "Rasterization scale of flattened layers")
	flags.String("mime-type", "io.kodika.kodika.plugins.sketch", "Pasteboard type of the payload")
	flags.Bool("sequential", false, "Collect fonts, constraints, masks and images one after another")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("log-format", "text", "Log format: text, json")
	flags.BoolVar(&cut, "cut", false, "Remove the selected layers after copying")
	flags.BoolVar(&writeBack, "write-back", false, "Save the document after copying (use with --cut, not with --watch)")
	flags.BoolVarP(&watch, "watch", "w", false, "Copy again whenever the document changes")
	flags.BoolVar(&dumpTree, "dump-tree", false, "Print the normalized layer tree")

	for key, flag := range map[string]string{
		"document":     "document",
		"output":       "output",
		"report":       "report",
		"export.scale": "scale",
		"mimeType":     "mime-type",
		"sequential":   "sequential",
		"log.level":    "log-level",
		"log.format":   "log-format",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sketch-copy version %s\n", version)
		},
	}

	rootCmd.AddCommand(versionCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(ctx context.Context, v *viper.Viper) {
	red := color.New(color.FgRed)
	cyan := color.New(color.FgCyan)

	cfg, err := config.Load(v, configFile)
	if err != nil {
		red.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Document == "" {
		red.Fprintln(os.Stderr, "Error: a document is required (--document or SKETCHCOPY_DOCUMENT)")
		os.Exit(1)
	}

	if watch && writeBack {
		red.Fprintln(os.Stderr, "Error: --watch cannot be combined with --write-back")
		os.Exit(1)
	}

	a := &app{
		cfg:       cfg,
		selection: selection,
		cut:       cut,
		writeBack: writeBack,
		dumpTree:  dumpTree,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		logger:    newLogger(cfg.Log, os.Stderr),
	}

	if cfg.Log.Format == config.LogFormatText {
		cyan.Fprintln(os.Stderr, "\n📋 Sketch Copy")
		cyan.Fprintln(os.Stderr, "===============")
		cyan.Fprintln(os.Stderr)
	}

	if !watch {
		if _, err := a.copyOnce(); err != nil {
			red.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := watchFile(ctx, cfg.Document, a.logger, func() {
		if _, err := a.copyOnce(); err != nil {
			a.logger.Errorf("%v", err)
		}
	}); err != nil {
		red.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// notifier prints host alerts and messages to the terminal.
type notifier struct {
	logger sketchcopy.Logger
}

func (n *notifier) Alert(message, action string) {
	if action != "" {
		message += " [" + action + "]"
	}
	n.logger.Errorf("%s", message)
}

func (n *notifier) Message(text string) {
	n.logger.Infof("%s", text)
}
