// Package segment 定义抠图（前景分割）的边界。分割算法本身由外部提供，
// 这里只有把它接入编辑器所需的适配器。
package segment

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrNoCutout 表示没有可用的抠图；编辑器按“无抠图”继续工作。
var ErrNoCutout = errors.New("没有可用的抠图")

// Segmenter 把照片字节转换为与之逐像素对齐的抠图（主体不透明、背景透明）。
// 实现必须遵守 ctx：被取消后应尽快返回 ctx.Err()。
type Segmenter interface {
	Segment(ctx context.Context, photo []byte) ([]byte, error)
}

// Func 把普通函数适配为 Segmenter。
type Func func(ctx context.Context, photo []byte) ([]byte, error)

func (f Func) Segment(ctx context.Context, photo []byte) ([]byte, error) { return f(ctx, photo) }

// None 总是返回 ErrNoCutout。
type None struct{}

func (None) Segment(context.Context, []byte) ([]byte, error) { return nil, ErrNoCutout }

// File 返回磁盘上预先计算好的抠图，忽略输入照片。
type File string

func (f File) Segment(ctx context.Context, _ []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(string(f))
	if err != nil {
		return nil, fmt.Errorf("读取抠图 %s 失败: %w", string(f), err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("抠图 %s: %w", string(f), ErrNoCutout)
	}
	return data, nil
}
