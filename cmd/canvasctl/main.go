// Command canvasctl exports, imports and checks playground sources from the shell.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/YashMarke130105/pen-perfect-playground/internal/exporter"
	"github.com/YashMarke130105/pen-perfect-playground/internal/models"
	"github.com/YashMarke130105/pen-perfect-playground/internal/preview"
	"github.com/YashMarke130105/pen-perfect-playground/pkg/logging"
)

// errDiagnostics makes check exit with status 1 without printing an error.
var errDiagnostics = errors.New("script reported diagnostics")

// Names of the files import writes.
const (
	markupFile = "index.html"
	styleFile  = "style.css"
	scriptFile = "script.js"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errDiagnostics) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "canvasctl",
		Short:         "Work with CodeCanvas sources outside the editor",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(logLevel, logging.FormatText)
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level")

	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(checkCmd())
	return rootCmd
}

// sourceFlags are the --html, --css and --js file flags.
type sourceFlags struct {
	markup, style, script string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.markup, "html", "", "markup file")
	cmd.Flags().StringVar(&f.style, "css", "", "style file")
	cmd.Flags().StringVar(&f.script, "js", "", "script file")
}

// load reads the given files; an absent flag means an empty source.
func (f *sourceFlags) load() (models.SourceDocument, error) {
	var doc models.SourceDocument
	for _, src := range []struct {
		path string
		dst  *string
	}{
		{f.markup, &doc.Markup},
		{f.style, &doc.Style},
		{f.script, &doc.Script},
	} {
		if src.path == "" {
			continue
		}
		data, err := os.ReadFile(src.path)
		if err != nil {
			return models.SourceDocument{}, err
		}
		*src.dst = string(data)
	}
	return doc, nil
}

func exportCmd() *cobra.Command {
	var (
		sources sourceFlags
		title   string
		outDir  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write sources as one standalone HTML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := sources.load()
			if err != nil {
				return err
			}

			file := exporter.Export(title, doc)
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			path := filepath.Join(outDir, file.Name)
			if err := os.WriteFile(path, file.Content, 0o644); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	sources.register(cmd)
	cmd.Flags().StringVar(&title, "title", models.DefaultTitle, "project title")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	return cmd
}

func importCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Split an exported HTML file back into its sources",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			title, doc, err := exporter.Import(f)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			for name, content := range map[string]string{
				markupFile: doc.Markup,
				styleFile:  doc.Style,
				scriptFile: doc.Script,
			} {
				if err := os.WriteFile(filepath.Join(outDir, name), []byte(content), 0o644); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %q into %s\n", title, outDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	return cmd
}

func checkCmd() *cobra.Command {
	var (
		sources sourceFlags
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run sources headlessly and report script errors",
		Long:  "Run sources headlessly and report script errors.\nExits with status 1 when any script failed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := sources.load()
			if err != nil {
				return err
			}

			cfg := preview.DefaultConfig()
			cfg.Timeout = timeout
			cfg.MaxConcurrent = 1
			renderer := preview.New(cfg)
			defer renderer.Close()

			view, err := renderer.Render(context.Background(), doc)
			if err != nil {
				return err
			}

			report(cmd.OutOrStdout(), view)
			if view.Failed() {
				return errDiagnostics
			}
			return nil
		},
	}

	sources.register(cmd)
	cmd.Flags().DurationVar(&timeout, "timeout", preview.DefaultConfig().Timeout, "script time budget")
	return cmd
}

func report(w io.Writer, view *preview.View) {
	for _, entry := range view.Console {
		fmt.Fprintf(w, "console.%s: %s\n", entry.Level, entry.Message)
	}
	for _, d := range view.Diagnostics {
		fmt.Fprintf(w, "%s (%s): %s\n", d.Kind, d.Origin, d.Message)
	}
	if !view.Failed() {
		fmt.Fprintf(w, "ok (%s)\n", view.Duration.Round(time.Millisecond))
	}
}
