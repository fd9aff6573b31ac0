package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// evaluateOptions evaluate 命令的参数
type evaluateOptions struct {
	docPath     string
	qaPath      string
	outputDir   string
	configPath  string
	threshold   float64
	noLLM       bool
	metricsFile string
}

// buildEvaluateCmd 创建 evaluate 命令
func buildEvaluateCmd() *cobra.Command {
	opts := &evaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run a coverage evaluation and write the reports",
		Long: `Run the two-stage coverage evaluation.

The command will:
1. Load the document and the topic-grouped QA pairs
2. Split the document into paragraphs and match QA pairs by MinHash/LSH
3. Extract knowledge points (jieba rules, optionally an ollama model)
4. Map QA pairs to knowledge points by embedding similarity
5. Write JSON results, a text report and heatmap data to the output directory`,
		Example: `  # Evaluate with default settings
  qa-coverage evaluate --doc doc.md --qa qa.json --output ./report

  # Rule-based extraction only, stricter lexical threshold
  qa-coverage evaluate --doc doc.md --qa qa.json --output ./report --no-llm --threshold 0.4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("threshold") {
				opts.threshold = 0
			}
			return runEvaluate(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.docPath, "doc", "", "Path to the source document")
	cmd.Flags().StringVar(&opts.qaPath, "qa", "", "Path to the QA pairs JSON file")
	cmd.Flags().StringVar(&opts.outputDir, "output", "", "Directory for the evaluation reports")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0.3, "LSH Jaccard similarity threshold")
	cmd.Flags().BoolVar(&opts.noLLM, "no-llm", false, "Skip language-model knowledge extraction")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Write prometheus metrics to this file")
	_ = cmd.MarkFlagRequired("doc")
	_ = cmd.MarkFlagRequired("qa")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// buildVersionCmd 创建 version 命令
func buildVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "qa-coverage %s (commit %s, built %s)\n", version, commit, date)
			return err
		},
	}
}
