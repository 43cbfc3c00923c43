package canvasrenderer

import (
	"image"

	"github.com/tdewolff/canvas"
	xdraw "golang.org/x/image/draw"
)

// drawSurface 把整幅图像铺满 w×h 的表面。尺寸不一致时先用 Catmull-Rom 重采样，
// 保证照片与抠图在任意表面尺寸下仍然逐像素对齐。
func drawSurface(ctx *canvas.Context, img image.Image, w, h int) {
	ctx.DrawImage(0, 0, fitSurface(img, w, h), canvas.DPMM(1))
}

func fitSurface(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Min == (image.Point{}) && b.Dx() == w && b.Dy() == h {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if b.Dx() == w && b.Dy() == h {
		xdraw.Copy(dst, image.Point{}, img, b, xdraw.Src, nil)
		return dst
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
