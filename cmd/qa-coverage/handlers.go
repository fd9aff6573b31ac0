package main

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gaamingzhang/qa_coverage/internal/config"
	"github.com/gaamingzhang/qa_coverage/internal/coverage"
	"github.com/gaamingzhang/qa_coverage/internal/dataset"
	"github.com/gaamingzhang/qa_coverage/internal/event"
	"github.com/gaamingzhang/qa_coverage/internal/logger"
	"github.com/gaamingzhang/qa_coverage/internal/report"
	"github.com/gaamingzhang/qa_coverage/internal/types"
)

// runEvaluate 执行 evaluate 命令
func runEvaluate(ctx context.Context, out io.Writer, opts *evaluateOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.threshold > 0 {
		cfg.LSH.Threshold = opts.threshold
	}
	if opts.noLLM {
		cfg.Extractor.UseLLM = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	document, err := dataset.LoadDocument(opts.docPath)
	if err != nil {
		return err
	}
	groups, err := dataset.LoadQAGroups(opts.qaPath)
	if err != nil {
		return err
	}

	c, err := buildContainer(cfg)
	if err != nil {
		return err
	}
	return c.Invoke(func(engine *coverage.Engine, bus *event.EventBus, log *logger.Logger, reg *prometheus.Registry) error {
		defer log.Sync()
		log.Info("loaded evaluation input",
			"document", opts.docPath,
			"topics", len(groups),
			"qa_pairs", types.CountQAPairs(groups),
		)

		bus.OnAll(func(_ context.Context, evt types.Event) error {
			log.Info("stage finished", "stage", evt.State.String(), "elapsed", evt.Elapsed, "meta", evt.Metadata)
			return nil
		})

		result, err := engine.Evaluate(ctx, document, groups)
		if err != nil {
			return err
		}

		paths, err := report.WriteAll(opts.outputDir, result, opts.docPath, opts.qaPath)
		if err != nil {
			return err
		}
		for _, p := range paths {
			log.Info("report written", "path", p)
		}

		if opts.metricsFile != "" {
			if err := prometheus.WriteToTextfile(opts.metricsFile, reg); err != nil {
				return fmt.Errorf("write metrics: %w", err)
			}
		}

		r := result.Report
		_, err = fmt.Fprintf(out,
			"评估完成，报告已保存到: %s\n段落覆盖率: %.2f  知识点覆盖率: %.2f  加权覆盖率: %.2f  高优先级缺口: %d\n",
			opts.outputDir, r.HashCoverageRate, r.SimpleKnowledgeCoverage, r.WeightedKnowledgeCoverage, r.HighPriorityGapCount)
		return err
	})
}
