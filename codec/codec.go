// Package codec 负责照片/抠图的解码与合成结果的无损编码。
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultFilename 是导出文件的默认名称。
const DefaultFilename = "easy-text-behind.png"

// ErrUnknownFormat 表示不支持的导出格式。
var ErrUnknownFormat = errors.New("未知的导出格式")

// Format 是导出所用的无损栅格格式。
type Format int

const (
	PNG Format = iota
	TIFF
	BMP
)

func (f Format) String() string {
	switch f {
	case PNG:
		return "png"
	case TIFF:
		return "tiff"
	case BMP:
		return "bmp"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Ext 返回带点的文件扩展名。
func (f Format) Ext() string { return "." + f.String() }

// ParseFormat 解析格式名或扩展名（"png"、".tif"、"TIFF" ...），空串视为 PNG。
func ParseFormat(v string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(v)), ".") {
	case "", "png":
		return PNG, nil
	case "tif", "tiff":
		return TIFF, nil
	case "bmp":
		return BMP, nil
	}
	return PNG, fmt.Errorf("%w: %s", ErrUnknownFormat, v)
}

// Filename 返回 DefaultFilename 换成 f 的扩展名后的文件名。
func Filename(f Format) string {
	return strings.TrimSuffix(DefaultFilename, PNG.Ext()) + f.Ext()
}

// Encode 以无损格式把 img 写入 w。
func Encode(w io.Writer, img image.Image, f Format) error {
	var err error
	switch f {
	case PNG:
		err = png.Encode(w, img)
	case TIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case BMP:
		err = bmp.Encode(w, img)
	default:
		return fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}
	if err != nil {
		return fmt.Errorf("编码 %s 失败: %w", f, err)
	}
	return nil
}

// EncodeBytes 是 Encode 的便捷形式。
func EncodeBytes(img image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode 解码照片或抠图，支持 JPEG、PNG、GIF、BMP、TIFF 与 WebP。
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("图片数据为空")
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解码图片失败: %w", err)
	}
	return img, nil
}
