// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/mdhender/fragment"
	"github.com/mdhender/fragment/pipelines/stages"
	"github.com/mdhender/fragment/render"
	store "github.com/mdhender/fragment/stores/sqlite"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func main() {
	addFlags := func(cmd *cobra.Command) error {
		cmd.PersistentFlags().Bool("debug", false, "log debugging information")
		cmd.PersistentFlags().Bool("log-with-default-flags", false, "log with default flags")
		cmd.PersistentFlags().Bool("log-with-shortfile", true, "log with short file name")
		cmd.PersistentFlags().Bool("log-with-timestamp", false, "log with timestamp")
		cmd.PersistentFlags().Bool("quiet", false, "log less information")
		cmd.PersistentFlags().Bool("show-version", false, "show version")
		cmd.PersistentFlags().Bool("verbose", false, "log more information")
		return nil
	}
	var cmdRoot = &cobra.Command{
		Use:   "fragment",
		Short: "Markup fragment parser",
		Long:  `Parse markup fragments into element trees, render them, and store them.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logWithDefaultFlags, _ := cmd.Flags().GetBool("log-with-default-flags")
			logWithShortFileName, _ := cmd.Flags().GetBool("log-with-shortfile")
			logWithTimestamp, _ := cmd.Flags().GetBool("log-with-timestamp")
			logFlags := 0
			if logWithShortFileName {
				logFlags |= log.Lshortfile
			}
			if logWithTimestamp {
				logFlags |= log.Ltime
			}
			if logWithDefaultFlags || logFlags == 0 {
				logFlags = log.LstdFlags
			}
			log.SetFlags(logFlags)

			if showVersion, _ := cmd.Flags().GetBool("show-version"); showVersion {
				fmt.Printf("fragment: version %q\n", fragment.Version().Core())
			}

			return nil
		},
	}
	cmdRoot.AddCommand(cmdParse())
	cmdRoot.AddCommand(cmdRender())
	cmdRoot.AddCommand(cmdDemo())
	cmdRoot.AddCommand(cmdInitDB())
	cmdRoot.AddCommand(cmdIngest())
	cmdRoot.AddCommand(cmdShow())
	cmdRoot.AddCommand(cmdServe())
	cmdRoot.AddCommand(cmdStats())
	cmdRoot.AddCommand(cmdVersion())
	if err := addFlags(cmdRoot); err != nil {
		log.Fatal(err)
	}

	if err := cmdRoot.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger returns a text logger on stderr. Debug output is only
// enabled by --debug.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// parserFlags are shared by the commands that parse input.
type parserFlags struct {
	maxDepth   int
	legacyText bool
	forest     bool
}

func (pf *parserFlags) add(cmd *cobra.Command) {
	cmd.Flags().IntVar(&pf.maxDepth, "max-depth", 256, "maximum element nesting depth (0 for no limit)")
	cmd.Flags().BoolVar(&pf.legacyText, "legacy-text", false, "assign text before a close tag to the first sibling")
	cmd.Flags().BoolVar(&pf.forest, "forest", false, "keep parsing after a top-level close tag")
}

func (pf *parserFlags) parser(cmd *cobra.Command) (*fragment.Parser, error) {
	return fragment.New(
		fragment.WithMaxDepth(pf.maxDepth),
		fragment.WithLegacyTextAssignment(pf.legacyText),
		fragment.WithForest(pf.forest),
		fragment.WithLogger(newLogger(cmd)),
	)
}

// readInput returns the --text value or the contents of the single file argument.
func readInput(fs afero.Fs, text string, args []string) (name string, input []byte, err error) {
	if text != "" && len(args) != 0 {
		return "", nil, fmt.Errorf("use either --text or a file, not both")
	} else if text != "" {
		return "<text>", []byte(text), nil
	} else if len(args) == 0 {
		return "", nil, fmt.Errorf("missing input: pass a file or --text")
	}
	input, err = afero.ReadFile(fs, args[0])
	return args[0], input, err
}

// parseInput parses input and prints a caret diagnostic for parse errors.
func parseInput(ctx context.Context, p *fragment.Parser, name string, input []byte) ([]*fragment.Node, error) {
	roots, err := p.Parse(ctx, string(input))
	if diag, ok := fragment.DiagnosticFromError(err); ok {
		fragment.PrintDiagnostic(os.Stderr, diag, name, []rune(string(input)))
	}
	return roots, err
}

func cmdParse() *cobra.Command {
	var pf parserFlags
	var configFile string
	var format string
	var outputFile string
	var text string
	addFlags := func(cmd *cobra.Command) error {
		pf.add(cmd)
		cmd.Flags().StringVarP(&configFile, "config-file", "c", configFile, "load configuration from file")
		cmd.Flags().StringVar(&format, "format", "auto", "output format: auto, tree, or json")
		cmd.Flags().StringVarP(&outputFile, "output", "o", outputFile, "save parse to file")
		cmd.Flags().StringVar(&text, "text", text, "parse this text instead of a file")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "parse [fragment-file]",
		Short:        "parse a markup fragment and print the tree",
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
				verbose = false
			}

			if configFile != "" {
				return fmt.Errorf("error: --config-file is not implemented")
			}
			switch format {
			case "auto":
				format = "json"
				if outputFile == "" && isatty.IsTerminal(os.Stdout.Fd()) {
					format = "tree"
				}
			case "tree", "json":
			default:
				return fmt.Errorf("format %q: want auto, tree, or json", format)
			}

			p, err := pf.parser(cmd)
			if err != nil {
				return err
			}
			name, input, err := readInput(afero.NewOsFs(), text, args)
			if err != nil {
				return err
			}
			started := time.Now()
			roots, err := parseInput(cmd.Context(), p, name, input)
			if err != nil {
				return err
			}
			if verbose {
				log.Printf("%s: parsed %s into %d nodes in %v\n", name, humanize.Bytes(uint64(len(input))), fragment.Count(roots), time.Since(started))
			}

			var w io.Writer = os.Stdout
			if outputFile != "" {
				fd, err := os.Create(outputFile)
				if err != nil {
					return err
				}
				defer fd.Close()
				w = fd
			}
			if format == "tree" {
				return fragment.Fprint(w, roots)
			}
			data, err := json.MarshalIndent(roots, "", "  ")
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
				return err
			}
			if outputFile != "" {
				log.Printf("%s: wrote %s\n", outputFile, humanize.Bytes(uint64(len(data)+1)))
			}
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

func cmdRender() *cobra.Command {
	var pf parserFlags
	var indent string
	var text string
	addFlags := func(cmd *cobra.Command) error {
		pf.add(cmd)
		cmd.Flags().StringVar(&indent, "indent", indent, "indent nested elements with this string")
		cmd.Flags().StringVar(&text, "text", text, "render this text instead of a file")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "render [fragment-file]",
		Short:        "parse a markup fragment and write it back out as markup",
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pf.parser(cmd)
			if err != nil {
				return err
			}
			name, input, err := readInput(afero.NewOsFs(), text, args)
			if err != nil {
				return err
			}
			roots, err := parseInput(cmd.Context(), p, name, input)
			if err != nil {
				return err
			}
			r, err := render.New(render.WithIndent(indent))
			if err != nil {
				return err
			}
			markup, err := r.String(cmd.Context(), roots)
			if err != nil {
				return err
			}
			fmt.Println(markup)
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

// demoFragments are the sample inputs shown by the demo command.
var demoFragments = []string{
	"Olá Marcos",
	"<h1>Olá Marcos</h1>",
	"<h1><b>Olá Marcos</b></h1>",
	"<h1>Olá <b>Marcos</b></h1>",
	"<form><input/></form>",
	`<input id="teste" />`,
	"<header><h1>Olá <b>Marcos</b></h1><h2>Sou Frontend</h2></header>",
}

func cmdDemo() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "demo",
		Short: "parse the sample fragments and print their trees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			const rule = "-----------------------------------------"
			fmt.Println(rule)
			for _, input := range demoFragments {
				fmt.Printf("%q\n", input)
				if err := fragment.Fprint(os.Stdout, fragment.Parse(input)); err != nil {
					return err
				}
				fmt.Println(rule)
			}
			return nil
		},
	}
	return cmd
}

func cmdInitDB() *cobra.Command {
	var cmd = &cobra.Command{
		Use:          "init-db <database-file>",
		Short:        "create a new database file",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store.InitDatabase(args[0]); err != nil {
				return err
			}
			log.Printf("%s: created\n", args[0])
			return nil
		},
	}
	return cmd
}

func cmdIngest() *cobra.Command {
	var pf parserFlags
	var dbPath string
	addFlags := func(cmd *cobra.Command) error {
		pf.add(cmd)
		cmd.Flags().StringVar(&dbPath, "db", dbPath, "database file (created with init-db)")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "ingest --db <database-file> <fragment-file>...",
		Short:        "parse fragment files and store the trees",
		SilenceUsage: true,
		Args:         cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			quiet, _ := cmd.Flags().GetBool("quiet")
			if dbPath == "" {
				return fmt.Errorf("missing --db")
			}
			sqlStore, err := store.NewSQLiteStoreWithConfig(store.StoreConfig{Path: dbPath})
			if err != nil {
				return err
			}
			defer sqlStore.Close()

			p, err := pf.parser(cmd)
			if err != nil {
				return err
			}
			svc, err := stages.NewIngestService(sqlStore, p, newLogger(cmd))
			if err != nil {
				return err
			}

			started := time.Now()
			results, err := svc.IngestPaths(cmd.Context(), args)
			for _, result := range results {
				if quiet {
					continue
				}
				status := "stored"
				if result.Duplicate {
					status = "duplicate"
				}
				log.Printf("%s: %-9s %s %s, %d nodes\n", result.Filename, status, result.DocumentID, humanize.Bytes(uint64(result.Size)), result.Nodes)
			}
			if err != nil {
				var pe *stages.ErrParse
				if errors.As(err, &pe) {
					if _, input, rerr := readInput(afero.NewOsFs(), "", []string{pe.Path}); rerr == nil {
						if diag, ok := fragment.DiagnosticFromError(pe.Err); ok {
							fragment.PrintDiagnostic(os.Stderr, diag, pe.Path, []rune(string(input)))
						}
					}
				}
				return fmt.Errorf("%s: %w", stages.ErrorCode(err), err)
			}
			log.Printf("ingested %d files in %v\n", len(results), time.Since(started))
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

func cmdShow() *cobra.Command {
	var dbPath string
	var asMarkup bool
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().StringVar(&dbPath, "db", dbPath, "database file")
		cmd.Flags().BoolVar(&asMarkup, "render", asMarkup, "print the document as markup")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "show --db <database-file> <document-id-or-sha256>",
		Short:        "print a stored document",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if dbPath == "" {
				return fmt.Errorf("missing --db")
			}
			sqlStore, err := store.NewSQLiteStoreWithConfig(store.StoreConfig{Path: dbPath})
			if err != nil {
				return err
			}
			defer sqlStore.Close()

			doc, err := sqlStore.GetDocument(ctx, args[0])
			if err == nil && doc == nil {
				doc, err = sqlStore.GetDocumentBySHA256(ctx, args[0])
			}
			if err != nil {
				return err
			} else if doc == nil {
				return fmt.Errorf("%s: document not found", args[0])
			}

			fmt.Printf("%s %s %s %s\n", doc.ID, doc.Name, humanize.Bytes(uint64(doc.Size)), humanize.Time(doc.CreatedAt))
			if !asMarkup {
				return fragment.Fprint(os.Stdout, doc.Roots)
			}
			r, err := render.New()
			if err != nil {
				return err
			}
			markup, err := r.String(ctx, doc.Roots)
			if err != nil {
				return err
			}
			fmt.Println(markup)
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

func cmdStats() *cobra.Command {
	var dbPath string
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().StringVar(&dbPath, "db", dbPath, "database file")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "stats --db <database-file>",
		Short:        "list stored documents and row counts",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if dbPath == "" {
				return fmt.Errorf("missing --db")
			}
			sqlStore, err := store.NewSQLiteStoreWithConfig(store.StoreConfig{Path: dbPath})
			if err != nil {
				return err
			}
			defer sqlStore.Close()

			docs, err := sqlStore.ListDocuments(ctx)
			if err != nil {
				return err
			}
			for _, doc := range docs {
				hash := doc.SHA256
				if len(hash) > 12 {
					hash = hash[:12]
				}
				fmt.Printf("%s %-30s %8s %s\n", doc.ID, doc.Name, humanize.Bytes(uint64(doc.Size)), hash)
			}
			stats, err := sqlStore.Stats(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("documents %s, nodes %s, attributes %s\n",
				humanize.Comma(stats.Documents), humanize.Comma(stats.Nodes), humanize.Comma(stats.Attributes))
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

func cmdVersion() *cobra.Command {
	showBuildInfo := false
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().BoolVar(&showBuildInfo, "build-info", showBuildInfo, "show build information")
		return nil
	}
	var cmd = &cobra.Command{
		Use:   "version",
		Short: "display the application's version number",
		RunE: func(cmd *cobra.Command, args []string) error {
			if showBuildInfo {
				fmt.Println(fragment.Version().String())
				return nil
			}
			fmt.Println(fragment.Version().Core())
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}
