// Package main 提供问答覆盖度评估的命令行入口
//
// 基本用法：
//
//	qa-coverage evaluate --doc document.md --qa qa_pairs.json --output ./report
//
// 环境变量：
//
//   - OLLAMA_HOST: ollama 服务地址
//   - OPENAI_API_KEY: 使用 openai 嵌入服务时的密钥
//   - MAX_DOCUMENT_SIZE_MB: 文档大小上限，默认 50
//   - QA_COVERAGE_LSH_THRESHOLD / QA_COVERAGE_SIMILARITY_THRESHOLD: 覆盖阈值
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// 构建信息，由 ldflags 注入
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "qa-coverage",
		Short: "Evaluate how well a QA dataset covers its source document",
		Long: `qa-coverage scores a generated question/answer dataset against the document it
was produced from. It reports lexical paragraph coverage (MinHash + LSH),
knowledge-point coverage (semantic similarity), and the uncovered knowledge
points that need more QA pairs.`,
		SilenceUsage: true,
	}
	root.AddCommand(buildEvaluateCmd(), buildVersionCmd())
	return root
}
