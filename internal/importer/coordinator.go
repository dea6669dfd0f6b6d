package importer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"sparehub/internal/gateway"
	"sparehub/internal/model"
	"sparehub/internal/parser"
	"sparehub/internal/store"
)

// failedMatchDisplayLimit 汇总消息中未匹配引用的展示上限
const failedMatchDisplayLimit = 20

// Coordinator 导入协调器
type Coordinator struct {
	store      *store.Store
	gateway    *gateway.Gateway
	recognizer *parser.Recognizer
	normalizer *parser.Normalizer
}

// NewCoordinator 创建导入协调器
func NewCoordinator(st *store.Store, opts gateway.Options) *Coordinator {
	return &Coordinator{
		store:      st,
		gateway:    gateway.New(st, opts),
		recognizer: parser.NewRecognizer(),
		normalizer: parser.NewNormalizer(),
	}
}

// ImportOptions 导入选项
type ImportOptions struct {
	FilePath string
	FileSize int64
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`      // start/info/sheet_start/sheet_done/warning/error/done
	Message   string      `json:"message"`   // 事件消息
	Data      interface{} `json:"data"`      // 附加数据
	Timestamp time.Time   `json:"timestamp"` // 时间戳
}

// importContext 单次导入的上下文
type importContext struct {
	ctx          context.Context
	filePath     string
	file         *excelize.File
	startTime    time.Time
	report       *parser.ImportReport
	progressChan chan ProgressEvent
	failedSeen   map[string]bool
}

// Import 执行导入，返回进度通道
func (c *Coordinator) Import(ctx context.Context, opts ImportOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		c.doImport(ctx, opts, progressChan)
	}()

	return progressChan
}

// doImport 执行导入逻辑
func (c *Coordinator) doImport(ctx context.Context, opts ImportOptions, progressChan chan ProgressEvent) {
	startTime := time.Now()
	filename := filepath.Base(opts.FilePath)

	c.sendProgress(progressChan, ProgressEvent{
		Type:      "start",
		Message:   "开始导入表格文件",
		Data:      map[string]string{"filename": filename},
		Timestamp: time.Now(),
	})

	logID, err := c.store.CreateImportLog(filename, opts.FilePath, opts.FileSize)
	if err != nil {
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "warning",
			Message:   fmt.Sprintf("创建导入日志失败: %v", err),
			Timestamp: time.Now(),
		})
	}

	file, err := excelize.OpenFile(opts.FilePath)
	if err != nil {
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "error",
			Message:   fmt.Sprintf("打开文件失败: %v", err),
			Timestamp: time.Now(),
		})
		c.finishImportLog(logID, nil, "error", err.Error())
		return
	}
	defer file.Close()

	ictx := &importContext{
		ctx:          ctx,
		filePath:     opts.FilePath,
		file:         file,
		startTime:    startTime,
		progressChan: progressChan,
		failedSeen:   make(map[string]bool),
		report: &parser.ImportReport{
			Filename: filename,
			Sheets:   []parser.ParseResult{},
		},
	}

	sheetList := file.GetSheetList()
	ictx.report.TotalSheets = len(sheetList)

	c.sendProgress(progressChan, ProgressEvent{
		Type:      "info",
		Message:   fmt.Sprintf("发现 %d 个 Sheet", len(sheetList)),
		Data:      map[string]interface{}{"total_sheets": len(sheetList)},
		Timestamp: time.Now(),
	})

	for _, sheetName := range sheetList {
		c.processSheet(ictx, sheetName)
	}

	ictx.report.Duration = time.Since(startTime)

	if err := c.store.SetLastImport(filename); err != nil {
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "warning",
			Message:   fmt.Sprintf("记录导入文件失败: %v", err),
			Timestamp: time.Now(),
		})
	}
	c.finishImportLog(logID, ictx.report, "done", "")

	c.sendProgress(progressChan, ProgressEvent{
		Type:      "done",
		Message:   c.summaryMessage(ictx.report),
		Data:      ictx.report,
		Timestamp: time.Now(),
	})
}

// processSheet 处理单个 Sheet
func (c *Coordinator) processSheet(ictx *importContext, sheetName string) {
	sheetStartTime := time.Now()

	c.sendProgress(ictx.progressChan, ProgressEvent{
		Type:      "sheet_start",
		Message:   fmt.Sprintf("正在解析 Sheet: %s", sheetName),
		Data:      map[string]string{"sheet_name": sheetName},
		Timestamp: time.Now(),
	})

	rows, err := ictx.file.GetRows(sheetName)
	if err != nil {
		c.recordSheetResult(ictx, parser.ParseResult{
			SheetName: sheetName,
			Target:    parser.TargetUnknown,
			Status:    "error",
			Errors:    []string{fmt.Sprintf("读取 Sheet 失败: %v", err)},
			Duration:  time.Since(sheetStartTime),
		})
		return
	}

	headerIdx, err := parser.DetectHeaderRow(rows)
	if err != nil || headerIdx+1 >= len(rows) {
		// 核对开始前终止：没有可用数据行
		c.recordSheetResult(ictx, parser.ParseResult{
			SheetName: sheetName,
			Target:    parser.TargetUnknown,
			Status:    "error",
			Errors:    []string{parser.ErrEmptyInput.Error()},
			Duration:  time.Since(sheetStartTime),
		})
		c.sendProgress(ictx.progressChan, ProgressEvent{
			Type:      "warning",
			Message:   fmt.Sprintf("Sheet \"%s\" 没有数据行", sheetName),
			Timestamp: time.Now(),
		})
		return
	}

	headers := rows[headerIdx]
	recognition := c.recognizer.Recognize(sheetName, headers)

	c.sendProgress(ictx.progressChan, ProgressEvent{
		Type:    "info",
		Message: fmt.Sprintf("Sheet \"%s\" 识别为: %s (置信度: %.2f)", sheetName, recognition.Target, recognition.Confidence),
		Data: map[string]interface{}{
			"sheet_name": sheetName,
			"target":     string(recognition.Target),
			"confidence": recognition.Confidence,
		},
		Timestamp: time.Now(),
	})

	if recognition.Target == parser.TargetUnknown {
		c.recordSheetResult(ictx, parser.ParseResult{
			SheetName: sheetName,
			Target:    parser.TargetUnknown,
			Status:    "skipped",
			Errors:    []string{"无法识别导入目标"},
			Duration:  time.Since(sheetStartTime),
		})
		c.sendProgress(ictx.progressChan, ProgressEvent{
			Type:      "warning",
			Message:   fmt.Sprintf("无法识别 Sheet: %s (置信度过低)", sheetName),
			Timestamp: time.Now(),
		})
		return
	}

	mappings := c.normalizer.MapColumns(headers, recognition.Target)
	importRows := make([]parser.ImportRow, 0, len(rows)-headerIdx-1)
	for i := headerIdx + 1; i < len(rows); i++ {
		if row := c.normalizer.NormalizeRow(rows[i], mappings, recognition.Target); row != nil {
			importRows = append(importRows, row)
		}
	}

	if len(importRows) == 0 {
		c.recordSheetResult(ictx, parser.ParseResult{
			SheetName: sheetName,
			Target:    recognition.Target,
			Status:    "error",
			Errors:    []string{parser.ErrEmptyInput.Error()},
			Duration:  time.Since(sheetStartTime),
		})
		return
	}

	cs, summary, err := c.reconcileSheet(recognition.Target, importRows)
	if err != nil {
		c.recordSheetResult(ictx, parser.ParseResult{
			SheetName: sheetName,
			Target:    recognition.Target,
			Status:    "error",
			Errors:    []string{err.Error()},
			Duration:  time.Since(sheetStartTime),
		})
		return
	}

	outcome := c.gateway.Persist(ictx.ctx, string(recognition.Target), cs, func(p gateway.Progress) {
		c.sendProgress(ictx.progressChan, ProgressEvent{
			Type:      "info",
			Message:   fmt.Sprintf("批次 %d/%d: 已处理 %d/%d 行", p.BatchIndex, p.BatchCount, p.Current, p.Total),
			Data:      p,
			Timestamp: time.Now(),
		})
	})

	result := parser.ParseResult{
		SheetName:     sheetName,
		Target:        recognition.Target,
		Status:        "imported",
		AddedRows:     summary.Added,
		UpdatedRows:   summary.Updated,
		SkippedRows:   summary.Skipped,
		FailedMatches: summary.FailedMatches,
		Duration:      time.Since(sheetStartTime),
	}

	switch outcome.Status {
	case gateway.StatusError:
		result.Status = "error"
		result.AddedRows = 0
		result.UpdatedRows = 0
		result.Errors = []string{outcome.Err}
	case gateway.StatusPartial:
		result.Status = "partial"
		for _, fb := range outcome.FailedBatches {
			result.Errors = append(result.Errors,
				fmt.Sprintf("批次 %d (%d 行) 持久化失败: %s", fb.Index+1, fb.Size, fb.Err))
		}
	}

	c.recordSheetResult(ictx, result)

	c.sendProgress(ictx.progressChan, ProgressEvent{
		Type: "sheet_done",
		Message: fmt.Sprintf("Sheet \"%s\" 处理完成: 新增 %d 行, 更新 %d 行, 跳过 %d 行",
			sheetName, result.AddedRows, result.UpdatedRows, result.SkippedRows),
		Data: map[string]interface{}{
			"sheet_name":   sheetName,
			"added_rows":   result.AddedRows,
			"updated_rows": result.UpdatedRows,
			"skipped_rows": result.SkippedRows,
		},
		Timestamp: time.Now(),
	})
}

// reconcileSheet 按目标类型加载现有集合并核对。
// 主数据每个 Sheet 重新加载：前序 Sheet 新增的备件要能被后续引用命中。
func (c *Coordinator) reconcileSheet(target parser.Target, rows []parser.ImportRow) (model.ChangeSet, model.ReconcileSummary, error) {
	md, err := c.loadMasterData()
	if err != nil {
		return model.ChangeSet{}, model.ReconcileSummary{}, err
	}
	reconciler := parser.NewReconciler(parser.NewResolver(md))

	switch target {
	case parser.TargetStockItems:
		cs, summary := reconciler.ReconcileItems(rows, md.Items)
		return cs, summary, nil
	case parser.TargetMachines:
		cs, summary := reconciler.ReconcileMachines(rows, md.Machines)
		return cs, summary, nil
	case parser.TargetIssueRequests:
		existing, err := c.store.GetAllIssueRequests()
		if err != nil {
			return model.ChangeSet{}, model.ReconcileSummary{}, err
		}
		cs, summary := reconciler.ReconcileIssueRequests(rows, existing)
		return cs, summary, nil
	case parser.TargetBreakdowns:
		existing, err := c.store.GetAllBreakdowns()
		if err != nil {
			return model.ChangeSet{}, model.ReconcileSummary{}, err
		}
		cs, summary := reconciler.ReconcileBreakdowns(rows, existing)
		return cs, summary, nil
	case parser.TargetBOM:
		existing, err := c.store.GetAllBOM()
		if err != nil {
			return model.ChangeSet{}, model.ReconcileSummary{}, err
		}
		cs, summary := reconciler.ReconcileBOM(rows, existing)
		return cs, summary, nil
	}

	return model.ChangeSet{}, model.ReconcileSummary{}, errors.New("unsupported import target")
}

// loadMasterData 加载解析引用所需的主数据快照
func (c *Coordinator) loadMasterData() (parser.MasterData, error) {
	items, err := c.store.GetAllItems()
	if err != nil {
		return parser.MasterData{}, err
	}
	machines, err := c.store.GetAllMachines()
	if err != nil {
		return parser.MasterData{}, err
	}
	locations, err := c.store.GetAllLocations()
	if err != nil {
		return parser.MasterData{}, err
	}
	return parser.MasterData{Items: items, Machines: machines, Locations: locations}, nil
}

// recordSheetResult 记录 Sheet 处理结果
func (c *Coordinator) recordSheetResult(ictx *importContext, result parser.ParseResult) {
	ictx.report.Sheets = append(ictx.report.Sheets, result)

	switch result.Status {
	case "imported", "partial":
		ictx.report.ImportedSheets++
	case "skipped":
		ictx.report.SkippedSheets++
	}

	ictx.report.AddedRows += result.AddedRows
	ictx.report.UpdatedRows += result.UpdatedRows
	ictx.report.SkippedRows += result.SkippedRows

	for _, ref := range result.FailedMatches {
		if !ictx.failedSeen[ref] {
			ictx.failedSeen[ref] = true
			ictx.report.FailedMatches = append(ictx.report.FailedMatches, ref)
		}
	}
}

// summaryMessage 生成面向操作员的汇总消息，未匹配引用截断展示
func (c *Coordinator) summaryMessage(report *parser.ImportReport) string {
	msg := fmt.Sprintf("导入完成: 新增 %d 行, 更新 %d 行, 跳过 %d 行",
		report.AddedRows, report.UpdatedRows, report.SkippedRows)

	if n := len(report.FailedMatches); n > 0 {
		shown := report.FailedMatches
		if n > failedMatchDisplayLimit {
			shown = shown[:failedMatchDisplayLimit]
		}
		msg += fmt.Sprintf("; 未匹配引用 %d 个: %s", n, strings.Join(shown, ", "))
		if n > failedMatchDisplayLimit {
			msg += " ..."
		}
	}
	return msg
}

// finishImportLog 更新导入日志终态
func (c *Coordinator) finishImportLog(logID int64, report *parser.ImportReport, status, errMsg string) {
	if logID == 0 {
		return
	}
	var total, added, updated, skipped int
	if report != nil {
		total = report.TotalSheets
		added = report.AddedRows
		updated = report.UpdatedRows
		skipped = report.SkippedRows
	}
	_ = c.store.UpdateImportLog(logID, total, added, updated, skipped, status, errMsg)
}

// sendProgress 发送进度事件
func (c *Coordinator) sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	default:
		// 通道已满，丢弃事件
	}
}
