/*
 * @module service/ingestion/csv_source
 * @description 分块CSV批次来源，大文件按固定行数切成批次，空值令牌映射为缺失字段
 * @architecture 数据接入层 - 实现pipeline.BatchSource
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 打开校验 -> 按块读取 -> 流结束返回io.EOF
 * @rules 坏行只计数并跳过，不让单行错误中断整个文件；GBK文件经解码器透明转UTF-8
 * @dependencies encoding/csv, golang.org/x/text/encoding/simplifiedchinese
 * @refs service/pipeline/reducer.go, service/cleansing/record.go
 */

package ingestion

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
	"sync/atomic"

	"salescleanse-service/service/cleansing"
	"salescleanse-service/service/pipeline"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// DefaultChunkSize 默认每批行数
const DefaultChunkSize = 100000

// naTokens 视为缺失值的字面量
var naTokens = map[string]struct{}{
	"":     {},
	"NULL": {},
	"null": {},
	"NA":   {},
	"N/A":  {},
}

// CSVSourceOptions CSV来源可选项
type CSVSourceOptions struct {
	// ChunkSize 每批行数，<=0时取DefaultChunkSize
	ChunkSize int
	// Encoding 文件编码，支持utf-8(默认)与gbk/gb2312
	Encoding string
}

// FileInfo 文件概要信息
type FileInfo struct {
	FilePath      string   `json:"file_path"`
	FileSizeBytes int64    `json:"file_size_bytes"`
	FileSizeMB    float64  `json:"file_size_mb"`
	FileSizeGB    float64  `json:"file_size_gb"`
	Columns       []string `json:"columns"`
	NumColumns    int      `json:"num_columns"`
}

// CSVSource 分块CSV批次来源
type CSVSource struct {
	path      string
	opts      CSVSourceOptions
	file      *os.File
	reader    *csv.Reader
	header    []string
	exhausted bool
	rowsRead  int64
	badRows   int64
}

// NewCSVSource 打开并校验CSV文件。文件不存在、为空或只有表头时返回错误。
func NewCSVSource(path string, opts CSVSourceOptions) (*CSVSource, error) {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}

	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("CSV文件不存在: %s", path)
		}
		return nil, fmt.Errorf("读取CSV文件信息失败 %s: %w", path, err)
	}
	if stat.Size() == 0 {
		return nil, fmt.Errorf("CSV文件为空: %s", path)
	}

	// 至少需要一行数据，仅有表头视为无效文件
	probe := &CSVSource{path: path, opts: opts}
	if err := probe.open(); err != nil {
		return nil, err
	}
	_, err = probe.reader.Read()
	probe.file.Close()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("CSV文件没有数据行: %s", path)
		}
		return nil, fmt.Errorf("读取CSV数据行失败 %s: %w", path, err)
	}

	s := &CSVSource{path: path, opts: opts}
	if err := s.open(); err != nil {
		return nil, err
	}

	slog.Info("CSV文件校验通过", "path", path, "size_bytes", stat.Size(), "chunk_size", opts.ChunkSize)
	return s, nil
}

// open 打开文件并读出表头
func (s *CSVSource) open() error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("打开CSV文件失败 %s: %w", s.path, err)
	}

	var r io.Reader = f
	switch strings.ToLower(s.opts.Encoding) {
	case "", "utf-8", "utf8":
	case "gbk", "gb2312":
		r = transform.NewReader(f, simplifiedchinese.GBK.NewDecoder())
	default:
		f.Close()
		return fmt.Errorf("不支持的CSV编码: %s", s.opts.Encoding)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err != nil {
		f.Close()
		if err == io.EOF {
			return fmt.Errorf("CSV文件没有内容: %s", s.path)
		}
		return fmt.Errorf("读取CSV表头失败 %s: %w", s.path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	s.file = f
	s.reader = cr
	s.header = header
	return nil
}

// Header 返回表头列名
func (s *CSVSource) Header() []string {
	out := make([]string, len(s.header))
	copy(out, s.header)
	return out
}

// Next 读取下一批，文件读完返回io.EOF
func (s *CSVSource) Next(ctx context.Context) (pipeline.Batch, error) {
	if s.exhausted {
		return nil, io.EOF
	}

	batch := make(pipeline.Batch, 0, s.opts.ChunkSize)
	for len(batch) < s.opts.ChunkSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := s.reader.Read()
		if err == io.EOF {
			s.exhausted = true
			break
		}
		if err != nil {
			// 坏行跳过，保持文件级读取不中断
			atomic.AddInt64(&s.badRows, 1)
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				slog.Warn("跳过无法解析的CSV行", "path", s.path, "line", parseErr.Line, "error", parseErr.Err)
				continue
			}
			return nil, fmt.Errorf("读取CSV行失败 %s: %w", s.path, err)
		}

		batch = append(batch, s.rowToRecord(row))
		atomic.AddInt64(&s.rowsRead, 1)
	}

	if len(batch) == 0 {
		return nil, io.EOF
	}
	return batch, nil
}

// rowToRecord 行转记录，空值令牌不放入map，使下游按缺失处理
func (s *CSVSource) rowToRecord(row []string) cleansing.RawRecord {
	record := make(cleansing.RawRecord, len(s.header))
	n := len(row)
	if n > len(s.header) {
		n = len(s.header)
	}
	for i := 0; i < n; i++ {
		value := strings.TrimSpace(row[i])
		if _, isNA := naTokens[value]; isNA {
			continue
		}
		record[s.header[i]] = value
	}
	return record
}

// Close 关闭底层文件
func (s *CSVSource) Close() error {
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

// RowsRead 已读出的数据行数
func (s *CSVSource) RowsRead() int64 {
	return atomic.LoadInt64(&s.rowsRead)
}

// BadRows 跳过的坏行数
func (s *CSVSource) BadRows() int64 {
	return atomic.LoadInt64(&s.badRows)
}

// Info 返回文件概要
func (s *CSVSource) Info() (*FileInfo, error) {
	stat, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("读取CSV文件信息失败 %s: %w", s.path, err)
	}

	sizeMB := float64(stat.Size()) / (1024 * 1024)
	return &FileInfo{
		FilePath:      s.path,
		FileSizeBytes: stat.Size(),
		FileSizeMB:    round2(sizeMB),
		FileSizeGB:    round2(sizeMB / 1024),
		Columns:       s.Header(),
		NumColumns:    len(s.header),
	}, nil
}

// Sample 独立读取前n行样本，不影响主游标
func (s *CSVSource) Sample(n int) ([]cleansing.RawRecord, error) {
	clone := &CSVSource{path: s.path, opts: s.opts}
	if err := clone.open(); err != nil {
		return nil, err
	}
	defer clone.file.Close()

	out := make([]cleansing.RawRecord, 0, n)
	for len(out) < n {
		row, err := clone.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, fmt.Errorf("读取CSV样本失败 %s: %w", s.path, err)
		}
		out = append(out, clone.rowToRecord(row))
	}
	return out, nil
}

// EstimateTotalRows 扫描统计数据行数，大文件耗时与文件大小成正比
func (s *CSVSource) EstimateTotalRows() (int64, error) {
	clone := &CSVSource{path: s.path, opts: s.opts}
	if err := clone.open(); err != nil {
		return 0, err
	}
	defer clone.file.Close()

	var count int64
	for {
		_, err := clone.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return count, fmt.Errorf("统计CSV行数失败 %s: %w", s.path, err)
		}
		count++
	}
	return count, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
