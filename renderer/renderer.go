package renderer

import (
	"errors"
	"image"

	"github.com/ByLCY/textbehind/layer"
)

// ErrNoSurface 表示没有照片或目标尺寸为空，合成被中止且不产生任何输出。
var ErrNoSurface = errors.New("没有可绘制的表面")

// Composition 是一次合成所需的全部输入。Layers 是调用方持有的快照，渲染期间不会被修改。
type Composition struct {
	Photo  image.Image
	Cutout image.Image // 可为空：没有抠图时所有图层都画在照片之上
	Layers []layer.TextLayer

	// Width/Height 为输出表面尺寸；为 0 时使用照片的原始像素尺寸。
	Width, Height int
	// ReferenceWidth 是图层字号与描边所参照的宽度，通常为照片原始宽度；为 0 时等于表面宽度。
	ReferenceWidth float64
}

// Size 返回实际的表面尺寸。
func (c Composition) Size() (int, int) {
	w, h := c.Width, c.Height
	if c.Photo != nil && (w <= 0 || h <= 0) {
		b := c.Photo.Bounds()
		w, h = b.Dx(), b.Dy()
	}
	return w, h
}

// Renderer 把照片、图层与抠图合成为一张栅格图像。
// 预览与导出使用同一个实现，只是表面尺寸不同。
type Renderer interface {
	Render(comp Composition) (*image.RGBA, error)
}
