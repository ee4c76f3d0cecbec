package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nodeadmin/genedesc/annotations"
	"github.com/nodeadmin/genedesc/config"
	"github.com/nodeadmin/genedesc/generator"
	"github.com/nodeadmin/genedesc/ontology"
)

var verbose bool

func main() {
	root := &cobra.Command{
		Use:   "genedesc",
		Short: "Generate gene description sentences from ontology annotations",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.AddCommand(describeCmd(), convertCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func describeCmd() *cobra.Command {
	var (
		ontologyPath string
		gafPath      string
		configPath   string
		moduleName   string
		gene         string
		aspects      []string
		highPriority []string
		bestGroup    bool
		merge        bool
	)
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Generate a description for one gene",
		RunE: func(cmd *cobra.Command, args []string) error {
			mod := config.DefaultGOModule()
			if configPath != "" {
				cfg, err := config.Load(configPath)
				if err != nil {
					return err
				}
				if mod = cfg.Module(moduleName); mod == nil {
					return fmt.Errorf("module %q not found in %s", moduleName, configPath)
				}
			}

			graph, err := loadGraph(ontologyPath)
			if err != nil {
				return err
			}
			annots, err := annotations.ParseGAFFile(gafPath)
			if err != nil {
				return err
			}
			slog.Debug("annotations loaded", slog.Int("count", len(annots)))

			var slim map[string]struct{}
			if mod.SlimSubset != "" {
				slim = graph.Subset(mod.SlimSubset)
			}
			gen := generator.New(gene, graph, annots, mod, generator.Options{SlimSet: slim})

			var parts []string
			for _, aspect := range aspects {
				sentences, err := gen.ModuleSentences(aspect, "", generator.SentenceOptions{
					KeepOnlyBestGroup:         bestGroup,
					MergeGroupsWithSamePrefix: merge,
					HighPriorityTermIDs:       highPriority,
				})
				if err != nil {
					return err
				}
				if sentences.ContainsSentences() {
					parts = append(parts, sentences.Description())
				}
			}
			if len(parts) == 0 {
				return fmt.Errorf("no description could be generated for %s", gene)
			}
			fmt.Println(gene + " " + strings.Join(parts, "; "))
			return nil
		},
	}
	cmd.Flags().StringVar(&ontologyPath, "ontology", "", "ontology file (.obo, .owl)")
	cmd.Flags().StringVar(&gafPath, "gaf", "", "gene association file (GAF 2.x)")
	cmd.Flags().StringVar(&configPath, "config", "", "YAML configuration file (default: built-in GO module)")
	cmd.Flags().StringVar(&moduleName, "module", "go", "module section to use from the configuration")
	cmd.Flags().StringVar(&gene, "gene", "", "gene id as in the GAF (e.g. WB:WBGene00000912)")
	cmd.Flags().StringSliceVar(&aspects, "aspects", []string{"F", "P", "C"}, "annotation aspects to render, in order")
	cmd.Flags().StringSliceVar(&highPriority, "high-priority-terms", nil, "term ids that must survive trimming")
	cmd.Flags().BoolVar(&bestGroup, "best-group-only", false, "stop after the best evidence group per aspect")
	cmd.Flags().BoolVar(&merge, "merge-prefixes", true, "merge sentences sharing a prefix")
	cobra.CheckErr(cmd.MarkFlagRequired("ontology"))
	cobra.CheckErr(cmd.MarkFlagRequired("gaf"))
	cobra.CheckErr(cmd.MarkFlagRequired("gene"))
	return cmd
}

func convertCmd() *cobra.Command {
	var (
		output string
		format string
		pretty bool
	)
	cmd := &cobra.Command{
		Use:   "convert <ontology file>",
		Short: "Convert an OBO or OWL ontology to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			inputFmt := detectFormat(input, format)
			if inputFmt == "" {
				return fmt.Errorf("cannot detect format for %q, use --format obo or --format owl", input)
			}
			start := time.Now()
			ont, err := parseOntology(input, inputFmt)
			if err != nil {
				return err
			}
			slog.Info("ontology parsed",
				slog.Int("terms", len(ont.Terms)),
				slog.Duration("elapsed", time.Since(start)))

			if output == "" {
				if pretty {
					return ontology.WriteJSONPretty(ont, os.Stdout)
				}
				return ontology.WriteJSON(ont, os.Stdout)
			}
			if pretty {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				return ontology.WriteJSONPretty(ont, f)
			}
			return ontology.WriteJSONFile(ont, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output JSON file (default: stdout)")
	cmd.Flags().StringVar(&format, "format", "auto", "input format: auto, obo, owl")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "pretty-print the JSON output")
	return cmd
}

func loadGraph(path string) (*ontology.Graph, error) {
	inputFmt := detectFormat(path, "auto")
	if inputFmt == "" {
		return nil, fmt.Errorf("cannot detect ontology format for %q", path)
	}
	start := time.Now()
	ont, err := parseOntology(path, inputFmt)
	if err != nil {
		return nil, err
	}
	graph := ontology.NewGraph(ont, nil, slog.Default())
	slog.Debug("ontology graph built",
		slog.Int("terms", graph.TermCount()),
		slog.Duration("elapsed", time.Since(start)))
	return graph, nil
}

func parseOntology(path, format string) (*ontology.Ontology, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	switch format {
	case "obo":
		return ontology.ParseOBO(f)
	case "owl":
		return ontology.ParseOWL(f)
	}
	return nil, fmt.Errorf("unknown ontology format %q", format)
}

func detectFormat(path, explicit string) string {
	if explicit != "auto" {
		return explicit
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obo":
		return "obo"
	case ".owl", ".xml", ".rdf":
		return "owl"
	}
	return ""
}
