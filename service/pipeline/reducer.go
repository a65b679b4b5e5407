/*
 * @module service/pipeline/reducer
 * @description 批次归约器，驱动单次运行：规范化 -> 去重 -> 累加，维护质量计数
 * @architecture 状态机 - Idle -> Consuming -> Finalizing -> Done，引擎不可复用
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 按到达顺序消费批次 -> 并行规范化（可选）-> 单写者顺序归约 -> 终结快照
 * @rules 批次与批内记录必须按原始顺序归约：首次出现去重和并列裁决都依赖到达顺序；
 *        并行仅允许发生在纯函数的规范化阶段（parallel map, sequential reduce）；
 *        取消即丢弃全部部分状态，不支持断点续跑
 * @dependencies salescleanse-service/service/cleansing, salescleanse-service/service/aggregation
 * @refs service/pipeline/report.go, service/run_service.go
 */

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"salescleanse-service/service/aggregation"
	"salescleanse-service/service/cleansing"
)

// State 归约器状态
type State int

const (
	StateIdle State = iota
	StateConsuming
	StateFinalizing
	StateDone
)

// String 状态名
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConsuming:
		return "consuming"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Batch 一批原始记录，批内顺序即到达顺序
type Batch []cleansing.RawRecord

// BatchSource 批次来源。Next按到达顺序返回批次，流结束时返回io.EOF。
type BatchSource interface {
	Next(ctx context.Context) (Batch, error)
	Close() error
}

// BatchObserver 每批归约完成后的回调，用于指标上报
type BatchObserver func(batchIndex int, size int, duration time.Duration)

// ReducerOptions 归约器可选项
type ReducerOptions struct {
	// Workers 规范化阶段并行度，<=1时串行
	Workers int
	// Observer 可选的批次观察回调
	Observer BatchObserver
}

// Reducer 批次归约器，独占持有一次运行的全部累加状态
type Reducer struct {
	normalizer *cleansing.RecordNormalizer
	enrich     *cleansing.EnrichmentScript
	counters   *cleansing.QualityCounters
	ledger     *cleansing.DedupLedger
	monthly    *aggregation.MonthlyAccumulator
	byRevenue  *aggregation.ProductRanker
	byUnits    *aggregation.ProductRanker
	anomalies  *aggregation.AnomalyRanker

	workers  int
	observer BatchObserver

	state   State
	batches int
}

// NewReducer 创建归约器，配置了增强脚本时在此编译
func NewReducer(cfg cleansing.Config, opts ReducerOptions) (*Reducer, error) {
	cfg = cfg.Normalize()

	var enrich *cleansing.EnrichmentScript
	if cfg.EnrichScript != "" {
		compiled, err := cleansing.CompileEnrichmentScript(cfg.EnrichScript)
		if err != nil {
			return nil, fmt.Errorf("编译增强脚本失败: %w", err)
		}
		enrich = compiled
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	return &Reducer{
		normalizer: cleansing.NewRecordNormalizer(cfg),
		enrich:     enrich,
		counters:   cleansing.NewQualityCounters(),
		ledger:     cleansing.NewDedupLedger(),
		monthly:    aggregation.NewMonthlyAccumulator(),
		byRevenue:  aggregation.NewProductRanker(aggregation.RankByRevenue, cfg.TopKProducts),
		byUnits:    aggregation.NewProductRanker(aggregation.RankByUnits, cfg.TopKProducts),
		anomalies:  aggregation.NewAnomalyRanker(cfg.TopKAnomalies),
		workers:    workers,
		observer:   opts.Observer,
	}, nil
}

// State 当前状态。归约器约定在单个goroutine中驱动。
func (r *Reducer) State() State {
	return r.state
}

// Counters 质量计数器，Run返回后读取
func (r *Reducer) Counters() *cleansing.QualityCounters {
	return r.counters
}

// Batches 已消费的批次数
func (r *Reducer) Batches() int {
	return r.batches
}

// Run 消费来源的全部批次。引擎不可复用：非Idle状态调用返回错误。
// 上下文取消时丢弃全部部分状态并进入终态。
func (r *Reducer) Run(ctx context.Context, source BatchSource) error {
	if r.state != StateIdle {
		return fmt.Errorf("归约器不可复用，当前状态: %s", r.state)
	}
	r.state = StateConsuming

	for {
		select {
		case <-ctx.Done():
			r.state = StateDone
			return ctx.Err()
		default:
		}

		batch, err := source.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			r.state = StateDone
			return fmt.Errorf("读取批次失败: %w", err)
		}
		if len(batch) == 0 {
			continue
		}

		start := time.Now()
		if err := r.processBatch(ctx, batch); err != nil {
			r.state = StateDone
			return err
		}
		r.batches++

		elapsed := time.Since(start)
		if r.observer != nil {
			r.observer(r.batches, len(batch), elapsed)
		}
		slog.Info("批次处理完成",
			"batch", r.batches,
			"rows", len(batch),
			"rows_cleaned_total", r.counters.RowsCleaned(),
			"duration_ms", elapsed.Milliseconds())
	}

	r.state = StateFinalizing
	return nil
}

// processBatch 处理一个批次：规范化可并行，归约保持原始顺序单写
func (r *Reducer) processBatch(ctx context.Context, batch Batch) error {
	verdicts := make([]*cleansing.Verdict, len(batch))

	if r.workers > 1 && len(batch) > 1 {
		if err := r.normalizeParallel(ctx, batch, verdicts); err != nil {
			return err
		}
	} else {
		for i, raw := range batch {
			verdicts[i] = r.normalizeOne(raw)
		}
	}

	for _, v := range verdicts {
		r.counters.MarkProcessed()

		if !v.Accepted() {
			r.counters.MarkRejected(v.Rejection.Reason)
			continue
		}
		if !r.ledger.Admit(v.Record.OrderID) {
			r.counters.MarkRejected(cleansing.ReasonDuplicateOrders)
			continue
		}

		r.counters.MarkCleaned(v)
		r.monthly.Admit(v.Record)
		r.byRevenue.Admit(v.Record)
		r.byUnits.Admit(v.Record)
		r.anomalies.Admit(v.Record)
	}
	return nil
}

// normalizeOne 规范化单条记录并应用增强脚本；脚本失败不影响记录通过
func (r *Reducer) normalizeOne(raw cleansing.RawRecord) *cleansing.Verdict {
	v := r.normalizer.Normalize(raw)
	if v.Accepted() && r.enrich != nil {
		if err := r.enrich.Apply(v.Record); err != nil {
			slog.Debug("增强脚本执行失败，记录原样通过",
				"order_id", v.Record.OrderID, "error", err)
		}
	}
	return v
}

// normalizeParallel 并行规范化：按下标分发任务，结果写入各自槽位，保持批内顺序
func (r *Reducer) normalizeParallel(ctx context.Context, batch Batch, verdicts []*cleansing.Verdict) error {
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				verdicts[i] = r.normalizeOne(batch[i])
			}
		}()
	}

	var cancelled bool
dispatch:
	for i := range batch {
		select {
		case <-ctx.Done():
			cancelled = true
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if cancelled {
		return ctx.Err()
	}
	return nil
}

// Build 终结快照：渲染四个结果结构并进入终态。仅允许在Finalizing状态调用一次。
func (r *Reducer) Build() (*Report, error) {
	if r.state != StateFinalizing {
		return nil, fmt.Errorf("当前状态不允许生成报告: %s", r.state)
	}

	report := buildReport(r.monthly, r.byRevenue, r.byUnits, r.anomalies, r.counters)
	r.state = StateDone
	return report, nil
}
