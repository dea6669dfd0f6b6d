package gateway

import (
	"context"
	"errors"
	"time"

	"sparehub/internal/model"
)

// ErrUnknownTable 请求了未注册的表名
var ErrUnknownTable = errors.New("unknown table")

// Status 持久化最终状态
type Status string

const (
	StatusSuccess Status = "success" // 所有批次成功
	StatusPartial Status = "partial" // 部分批次成功
	StatusError   Status = "error"   // 操作未能开始
)

// FailedBatch 重试耗尽后仍失败的批次
type FailedBatch struct {
	Index int    `json:"index"` // 批次序号，从 0 开始
	Size  int    `json:"size"`
	Err   string `json:"err"`
}

// Outcome 持久化结果
type Outcome struct {
	Status         Status        `json:"status"`
	SucceededCount int           `json:"succeededCount"`
	FailedBatches  []FailedBatch `json:"failedBatches,omitempty"`
	Err            string        `json:"err,omitempty"` // 仅 StatusError 时填写
}

// Progress 批次进度，通过回调增量上报
type Progress struct {
	Current    int `json:"current"` // 已处理记录数
	Total      int `json:"total"`
	BatchIndex int `json:"batchIndex"` // 从 1 开始
	BatchCount int `json:"batchCount"`
}

// ProgressFunc 进度回调，副作用通道，不影响返回值
type ProgressFunc func(Progress)

// TableStore 远端存储的通用写入接口，按主键幂等 upsert，
// 同一批次重试不会产生重复插入
type TableStore interface {
	UpsertBatch(ctx context.Context, table, primaryKey string, records []map[string]any) error
}

// Options 批量持久化参数
type Options struct {
	BatchSize  int           // 每批记录数
	MaxRetries int           // 单批次最大尝试次数
	BatchDelay time.Duration // 相邻成功批次之间的间隔，避免压垮远端
	RetryDelay time.Duration // 线性退避单位：第 n 次重试前等待 n*RetryDelay
}

// DefaultOptions 默认批量参数
func DefaultOptions() Options {
	return Options{
		BatchSize:  100,
		MaxRetries: 3,
		BatchDelay: 200 * time.Millisecond,
		RetryDelay: time.Second,
	}
}

// Gateway 批量持久化网关
//
// 将变更集切分为固定大小的批次顺序提交；单批失败重试后隔离记录，
// 不中断后续批次。批次之间不并发，远端写入顺序保持稳定。
type Gateway struct {
	store TableStore
	opts  Options
	sleep func(time.Duration)
}

// New 创建网关，opts 中的零值字段回填默认值
func New(store TableStore, opts Options) *Gateway {
	defaults := DefaultOptions()
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaults.BatchSize
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaults.MaxRetries
	}
	if opts.BatchDelay < 0 {
		opts.BatchDelay = defaults.BatchDelay
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = defaults.RetryDelay
	}
	return &Gateway{store: store, opts: opts, sleep: time.Sleep}
}

// Persist 将变更集写入指定表，新增在前、更新在后。
// 未注册的表在任何写入发生前快速失败。
func (g *Gateway) Persist(ctx context.Context, table string, cs model.ChangeSet, onProgress ProgressFunc) Outcome {
	spec, ok := tableSpecs[table]
	if !ok {
		return Outcome{Status: StatusError, Err: ErrUnknownTable.Error() + ": " + table}
	}

	entities := cs.All()
	records := make([]map[string]any, 0, len(entities))
	for _, e := range entities {
		record, err := EncodeRecord(table, e)
		if err != nil {
			return Outcome{Status: StatusError, Err: err.Error()}
		}
		records = append(records, record)
	}

	total := len(records)
	outcome := Outcome{Status: StatusSuccess}
	if total == 0 {
		return outcome
	}

	batchCount := (total + g.opts.BatchSize - 1) / g.opts.BatchSize
	processed := 0

	for i := 0; i < batchCount; i++ {
		start := i * g.opts.BatchSize
		end := start + g.opts.BatchSize
		if end > total {
			end = total
		}
		batch := records[start:end]

		err := g.upsertWithRetry(ctx, table, spec.primaryKey, batch)
		processed += len(batch)

		if err != nil {
			outcome.FailedBatches = append(outcome.FailedBatches, FailedBatch{
				Index: i,
				Size:  len(batch),
				Err:   err.Error(),
			})
		} else {
			outcome.SucceededCount += len(batch)
			// 成功批次之间加入短暂间隔
			if i < batchCount-1 && g.opts.BatchDelay > 0 {
				g.sleep(g.opts.BatchDelay)
			}
		}

		if onProgress != nil {
			onProgress(Progress{
				Current:    processed,
				Total:      total,
				BatchIndex: i + 1,
				BatchCount: batchCount,
			})
		}
	}

	if len(outcome.FailedBatches) > 0 {
		outcome.Status = StatusPartial
	}
	return outcome
}

// upsertWithRetry 单批次提交，线性退避重试
func (g *Gateway) upsertWithRetry(ctx context.Context, table, primaryKey string, batch []map[string]any) error {
	var err error
	for attempt := 0; attempt < g.opts.MaxRetries; attempt++ {
		if attempt > 0 && g.opts.RetryDelay > 0 {
			g.sleep(time.Duration(attempt) * g.opts.RetryDelay)
		}
		err = g.store.UpsertBatch(ctx, table, primaryKey, batch)
		if err == nil {
			return nil
		}
	}
	return err
}
