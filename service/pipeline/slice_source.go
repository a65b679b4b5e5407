package pipeline

import (
	"context"
	"io"
)

// SliceSource 内存批次来源，用于小数据集与测试
type SliceSource struct {
	batches []Batch
	cursor  int
}

// NewSliceSource 以给定批次序列创建来源
func NewSliceSource(batches ...Batch) *SliceSource {
	return &SliceSource{batches: batches}
}

// Next 按序返回批次，取尽后返回io.EOF
func (s *SliceSource) Next(ctx context.Context) (Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.cursor >= len(s.batches) {
		return nil, io.EOF
	}
	batch := s.batches[s.cursor]
	s.cursor++
	return batch, nil
}

// Close 无资源需要释放
func (s *SliceSource) Close() error {
	return nil
}
