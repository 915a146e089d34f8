package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coolbeans/strata/pkg/batch"
	"github.com/coolbeans/strata/pkg/clean"
	"github.com/coolbeans/strata/pkg/hierarchy"
	"github.com/coolbeans/strata/pkg/input"
	"github.com/coolbeans/strata/pkg/segment"
	"github.com/coolbeans/strata/pkg/serve"
	"github.com/coolbeans/strata/pkg/tag"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "strata",
		Short: "Hierarchical document segmenter",
		Long: `Strata segments flat, loosely-marked-up hierarchical documents
(constitutions, statutes) into nested trees and resolves positional
tag references against them.

It consumes raw text or Markdown plus an ordered list of header
patterns and produces:
  - A nested hierarchy tree serialized as JSON
  - A skeleton of captured headers for auditing segmentation
  - A flattened per-section CSV table
  - A tag report listing unresolved and ambiguous references`,
		Version: version,
	}

	rootCmd.AddCommand(segmentCmd())
	rootCmd.AddCommand(tagCmd())
	rootCmd.AddCommand(skeletonCmd())
	rootCmd.AddCommand(flattenCmd())
	rootCmd.AddCommand(specsCmd())
	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// addSpecFlags registers the shared flags for choosing a header-level spec.
func addSpecFlags(cmd *cobra.Command) {
	cmd.Flags().String("spec-file", "", "YAML spec file with header levels")
	cmd.Flags().String("spec", "", "name of a registered spec (see --spec-dir)")
	cmd.Flags().String("spec-dir", "specs", "directory of YAML spec files")
	cmd.Flags().StringArray("pattern", nil, "header patterns for one level, alternatives separated by ';' (repeatable, highest level first)")
}

// loadLevels resolves the spec flags into a compiled level spec. Exactly one
// of --spec-file, --spec, or --pattern must be used.
func loadLevels(cmd *cobra.Command) (*segment.LevelSpec, string, error) {
	specFile, _ := cmd.Flags().GetString("spec-file")
	specName, _ := cmd.Flags().GetString("spec")
	specDir, _ := cmd.Flags().GetString("spec-dir")
	patterns, _ := cmd.Flags().GetStringArray("pattern")

	switch {
	case specFile != "":
		sf, err := segment.LoadSpecFile(specFile)
		if err != nil {
			return nil, "", err
		}
		levels, err := sf.Spec()
		if err != nil {
			return nil, "", err
		}
		return levels, sf.Name, nil

	case specName != "":
		registry, err := segment.NewRegistryWithDirectory(specDir)
		if err != nil {
			return nil, "", err
		}
		sf, ok := registry.Get(specName)
		if !ok {
			return nil, "", fmt.Errorf("spec %q not found in %s", specName, specDir)
		}
		levels, err := sf.Spec()
		if err != nil {
			return nil, "", err
		}
		return levels, sf.Name, nil

	case len(patterns) > 0:
		raw := make([][]string, 0, len(patterns))
		for _, level := range patterns {
			raw = append(raw, strings.Split(level, ";"))
		}
		levels, err := segment.Compile(raw)
		if err != nil {
			return nil, "", err
		}
		return levels, "", nil

	default:
		return nil, "", fmt.Errorf("header levels are required: use --spec-file, --spec, or --pattern")
	}
}

// readDocument loads a document's lines, optionally running normalization.
func readDocument(path string, doClean bool) ([]string, error) {
	lines, err := input.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if doClean {
		lines = clean.Clean(lines)
	}
	return lines, nil
}

// openOutput opens the output target, with "-" meaning stdout.
func openOutput(path string) (*os.File, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func printDiagnostics(diags []segment.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "warning: %s\n", d)
	}
}

func segmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "segment [document]",
		Short: "Segment a document into a hierarchy tree",
		Long: `Segment a document into a nested hierarchy tree and write it as JSON.

Example:
  strata segment constitution.txt --spec-file specs/us-constitution.yaml
  strata segment statute.txt --pattern 'Article [0-9]+' --pattern 'Section [0-9]+\.' -o tree.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			levels, _, err := loadLevels(cmd)
			if err != nil {
				return err
			}
			doClean, _ := cmd.Flags().GetBool("clean")
			output, _ := cmd.Flags().GetString("output")

			lines, err := readDocument(args[0], doClean)
			if err != nil {
				return err
			}

			tree, diags := segment.Segment(lines, levels)
			printDiagnostics(diags)

			out, done, err := openOutput(output)
			if err != nil {
				return err
			}
			defer done()
			if err := tree.WriteJSON(out); err != nil {
				return fmt.Errorf("writing tree: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Segmented %s: %d sections, %d warnings\n",
				args[0], len(tree.Skeleton()), len(diags))
			return nil
		},
	}
	addSpecFlags(cmd)
	cmd.Flags().Bool("clean", false, "normalize pagination noise before segmenting")
	cmd.Flags().StringP("output", "o", "-", "output file for the tree JSON (- for stdout)")
	return cmd
}

func tagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag [document]",
		Short: "Segment a document and resolve a tag set against it",
		Long: `Segment a document, resolve positional tag references from a CSV
file (label,reference rows), and write the labeled tree as JSON.
Unresolved and ambiguous references are reported, never guessed.

Example:
  strata tag constitution.txt --spec-file specs/us-constitution.yaml --tags tags.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			levels, _, err := loadLevels(cmd)
			if err != nil {
				return err
			}
			tagsPath, _ := cmd.Flags().GetString("tags")
			doClean, _ := cmd.Flags().GetBool("clean")
			output, _ := cmd.Flags().GetString("output")
			if tagsPath == "" {
				return fmt.Errorf("--tags flag is required")
			}

			reqs, err := tag.LoadCSVFile(tagsPath)
			if err != nil {
				return err
			}
			lines, err := readDocument(args[0], doClean)
			if err != nil {
				return err
			}

			tree, diags := segment.Segment(lines, levels)
			printDiagnostics(diags)

			report := tag.Resolve(tree, reqs)
			for _, failure := range report.Failures {
				fmt.Fprintf(os.Stderr, "unresolved: %s\n", failure)
			}

			out, done, err := openOutput(output)
			if err != nil {
				return err
			}
			defer done()
			if err := tree.WriteJSON(out); err != nil {
				return fmt.Errorf("writing tree: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Resolved %d of %d tags\n", report.Resolved, len(reqs))
			return nil
		},
	}
	addSpecFlags(cmd)
	cmd.Flags().String("tags", "", "CSV file of label,reference rows")
	cmd.Flags().Bool("clean", false, "normalize pagination noise before segmenting")
	cmd.Flags().StringP("output", "o", "-", "output file for the labeled tree JSON (- for stdout)")
	return cmd
}

func skeletonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skeleton [document]",
		Short: "Print the captured header skeleton of a document",
		Long: `Segment a document and print its skeleton: every captured header
with its depth, in document order. Useful for auditing whether the
header patterns capture the structure you expect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			levels, _, err := loadLevels(cmd)
			if err != nil {
				return err
			}
			doClean, _ := cmd.Flags().GetBool("clean")

			lines, err := readDocument(args[0], doClean)
			if err != nil {
				return err
			}

			tree, diags := segment.Segment(lines, levels)
			printDiagnostics(diags)

			for _, entry := range tree.Skeleton() {
				header := entry.HeaderText
				if header == "" {
					header = "(synthetic)"
				}
				fmt.Printf("%s%s\n", strings.Repeat("  ", entry.Depth), header)
			}
			return nil
		},
	}
	addSpecFlags(cmd)
	cmd.Flags().Bool("clean", false, "normalize pagination noise before segmenting")
	return cmd
}

func flattenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flatten [document]",
		Short: "Write the flattened per-section CSV table",
		Long: `Segment a document and write one CSV row per section: position
path, depth, ancestor headers, labels, and body text.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			levels, _, err := loadLevels(cmd)
			if err != nil {
				return err
			}
			doClean, _ := cmd.Flags().GetBool("clean")
			output, _ := cmd.Flags().GetString("output")
			tagsPath, _ := cmd.Flags().GetString("tags")

			lines, err := readDocument(args[0], doClean)
			if err != nil {
				return err
			}

			tree, diags := segment.Segment(lines, levels)
			printDiagnostics(diags)

			if tagsPath != "" {
				reqs, err := tag.LoadCSVFile(tagsPath)
				if err != nil {
					return err
				}
				report := tag.Resolve(tree, reqs)
				for _, failure := range report.Failures {
					fmt.Fprintf(os.Stderr, "unresolved: %s\n", failure)
				}
			}

			out, done, err := openOutput(output)
			if err != nil {
				return err
			}
			defer done()
			return hierarchy.WriteFlatCSV(out, tree.Flatten())
		},
	}
	addSpecFlags(cmd)
	cmd.Flags().Bool("clean", false, "normalize pagination noise before segmenting")
	cmd.Flags().String("tags", "", "optional CSV tag set to resolve before flattening")
	cmd.Flags().StringP("output", "o", "-", "output CSV file (- for stdout)")
	return cmd
}

func specsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "specs",
		Short: "List registered header-level specs",
		RunE: func(cmd *cobra.Command, args []string) error {
			specDir, _ := cmd.Flags().GetString("spec-dir")
			registry, err := segment.NewRegistryWithDirectory(specDir)
			if err != nil {
				return err
			}
			specs := registry.List()
			if len(specs) == 0 {
				fmt.Printf("No specs found in %s\n", specDir)
				return nil
			}
			for _, sf := range specs {
				fmt.Printf("%s %s (%d levels)\n", sf.Name, sf.Version, len(sf.Levels))
				for i, lvl := range sf.Levels {
					name := lvl.Name
					if name == "" {
						name = fmt.Sprintf("level %d", i)
					}
					fmt.Printf("  %d. %s: %s\n", i, name, strings.Join(lvl.Patterns, " | "))
				}
			}
			return nil
		},
	}
	cmd.Flags().String("spec-dir", "specs", "directory of YAML spec files")
	return cmd
}

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [input-dir] [output-dir]",
		Short: "Segment every document in a directory",
		Long: `Segment every .txt and .md document in a directory, resolving
sidecar <name>.tags.csv files when present, and write per-document
artifacts plus a run manifest. A failing document is recorded in the
manifest and never stops the rest of the batch.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			levels, specName, err := loadLevels(cmd)
			if err != nil {
				return err
			}
			doClean, _ := cmd.Flags().GetBool("clean")
			writeCSV, _ := cmd.Flags().GetBool("csv")

			runner := batch.NewRunner(levels, batch.Options{
				SpecName: specName,
				Clean:    doClean,
				WriteCSV: writeCSV,
			})
			manifest, err := runner.Run(args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Printf("Run %s: %d segmented, %d failed\n",
				manifest.RunID, manifest.Succeeded(), manifest.Failed())
			for _, doc := range manifest.Documents {
				if doc.Status == batch.StatusFailed {
					fmt.Printf("  failed: %s: %s\n", doc.Source, doc.Error)
				}
			}
			return nil
		},
	}
	addSpecFlags(cmd)
	cmd.Flags().Bool("clean", false, "normalize pagination noise before segmenting")
	cmd.Flags().Bool("csv", false, "also write the flattened per-section CSV per document")
	return cmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the segmentation API over HTTP",
		Long: `Serve the segmentation and tag-resolution API over HTTP.

Endpoints:
  GET  /health       liveness probe
  GET  /api/specs    list registered header-level specs
  POST /api/segment  segment a document
  POST /api/resolve  segment a document and resolve tags against it`,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			specDir, _ := cmd.Flags().GetString("spec-dir")
			watch, _ := cmd.Flags().GetBool("watch")

			log := slog.New(slog.NewTextHandler(os.Stderr, nil))

			registry, err := segment.NewRegistryWithDirectory(specDir)
			if err != nil {
				return err
			}
			if watch {
				registry.SetOnChange(func(event string, sf *segment.SpecFile) {
					if sf != nil {
						log.Info("spec registry updated", "event", event, "spec", sf.Name)
					} else {
						log.Info("spec registry updated", "event", event)
					}
				})
				if err := registry.Watch(); err != nil {
					return err
				}
				defer registry.StopWatch()
			}

			server := serve.NewServer(registry, log)
			log.Info("listening", "addr", addr, "specs", registry.Count())
			return http.ListenAndServe(addr, server)
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().String("spec-dir", "specs", "directory of YAML spec files")
	cmd.Flags().Bool("watch", false, "reload specs when the spec directory changes")
	return cmd
}
