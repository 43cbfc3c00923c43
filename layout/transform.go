package layout

import (
	"math"

	"github.com/ByLCY/textbehind/layer"
)

// AnchorOffset 是 top=0 对应的纵向百分比位置。预览与导出共用同一个值，
// 保证同一图层在两种表面上落在同一相对位置（top=0 即垂直居中）。
const AnchorOffset = 50.0

// Projection 是图层在目标像素表面上的锚点与变换。
type Projection struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"` // 弧度，绕 (X,Y) 顺时针
	Scale    float64 `json:"scale"`    // 字号、描边等布局像素量乘以该系数
}

// Degrees 返回角度制的旋转量，供以角度为参数的绘图接口使用。
func (p Projection) Degrees() float64 { return p.Rotation * 180 / math.Pi }

// Project 把图层的布局坐标（以中心为原点的百分比）映射到 width×height 的像素表面。
//
// 纯函数：相同输入总是得到相同输出。超出 [-100,100] 的坐标照常映射，落在表面之外。
func Project(l layer.TextLayer, width, height float64, opts Options) Projection {
	scale := 1.0
	if opts.ReferenceWidth > 0 {
		scale = width / opts.ReferenceWidth
	}
	return Projection{
		X:        width * (l.Left + 50) / 100,
		Y:        height * (AnchorOffset - l.Top) / 100,
		Rotation: l.Rotation * math.Pi / 180,
		Scale:    scale,
	}
}

// ProjectAll 按顺序投影一组图层。
func ProjectAll(layers []layer.TextLayer, width, height float64, opts Options) []Projection {
	out := make([]Projection, len(layers))
	for i, l := range layers {
		out[i] = Project(l, width, height, opts)
	}
	return out
}
