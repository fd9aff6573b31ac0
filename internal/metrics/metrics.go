// Package metrics 定义覆盖度评估的 prometheus 指标
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gaamingzhang/qa_coverage/internal/types"
)

const namespace = "qa_coverage"

// Metrics 评估运行指标
// 所有方法对 nil 接收者安全，未配置指标时直接调用即可
type Metrics struct {
	// EvaluationsTotal 评估次数，标签 status (success|failed)
	EvaluationsTotal *prometheus.CounterVec
	// StageDuration 各阶段耗时（秒），标签 stage
	StageDuration *prometheus.HistogramVec
	// CoverageRate 最近一次评估的覆盖率，标签 kind (hash|qa_match|simple|weighted)
	CoverageRate *prometheus.GaugeVec
	// GapCount 最近一次评估的缺口数，标签 priority
	GapCount *prometheus.GaugeVec
	// KnowledgePoints 最近一次评估的知识点数
	KnowledgePoints prometheus.Gauge
}

// NewMetrics 在给定的注册器上注册指标
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EvaluationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Number of coverage evaluations by status.",
		}, []string{"status"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each evaluation stage.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120, 600},
		}, []string{"stage"}),
		CoverageRate: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "coverage_rate",
			Help:      "Coverage rates of the last evaluation.",
		}, []string{"kind"}),
		GapCount: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "gap_count",
			Help:      "Uncovered knowledge points of the last evaluation.",
		}, []string{"priority"}),
		KnowledgePoints: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "knowledge_points",
			Help:      "Distinct knowledge points of the last evaluation.",
		}),
	}
}

// ObserveStage 记录阶段耗时
func (m *Metrics) ObserveStage(state types.EvalState, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(state.String()).Observe(d.Seconds())
}

// RecordEvaluation 记录一次评估的最终状态
func (m *Metrics) RecordEvaluation(status types.EvaluationStatue) {
	if m == nil {
		return
	}
	m.EvaluationsTotal.WithLabelValues(status.String()).Inc()
}

// RecordReport 记录报告中的覆盖率与缺口数
func (m *Metrics) RecordReport(report *types.CoverageReport) {
	if m == nil || report == nil {
		return
	}
	m.CoverageRate.WithLabelValues("hash").Set(report.HashCoverageRate)
	m.CoverageRate.WithLabelValues("qa_match").Set(report.QAMatchRate)
	m.CoverageRate.WithLabelValues("simple").Set(report.SimpleKnowledgeCoverage)
	m.CoverageRate.WithLabelValues("weighted").Set(report.WeightedKnowledgeCoverage)
	m.GapCount.WithLabelValues(string(types.PriorityHigh)).Set(float64(report.HighPriorityGapCount))
	m.GapCount.WithLabelValues(string(types.PriorityNormal)).Set(float64(report.GapCount - report.HighPriorityGapCount))
	m.KnowledgePoints.Set(float64(report.TotalKnowledgePoints))
}
