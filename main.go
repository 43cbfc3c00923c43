package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ByLCY/textbehind/codec"
	"github.com/ByLCY/textbehind/editor"
	"github.com/ByLCY/textbehind/fonts"
	"github.com/ByLCY/textbehind/layer"
	"github.com/ByLCY/textbehind/layout"
	"github.com/ByLCY/textbehind/logging"
	canvasrenderer "github.com/ByLCY/textbehind/renderer/canvas"
	"github.com/ByLCY/textbehind/scene"
	"github.com/ByLCY/textbehind/segment"
)

type config struct {
	scenePath  string
	photoPath  string
	cutoutPath string
	segmentCmd string
	data       any
	layersIn   string
	layersOut  string
	fontDirs   []string
	format     codec.Format
	outputPath string
	previewW   int
	previewH   int
	debugPath  string
	rawUnits   bool
}

func main() {
	input := flag.String("in", "", "场景文件路径")
	photo := flag.String("photo", "", "照片路径（未使用 -in 时必填）")
	cutout := flag.String("cutout", "", "抠图 PNG 路径")
	segmentCmd := flag.String("segment", "", "抠图命令，{in}/{out} 替换为临时文件")
	dataJSON := flag.String("data", "", "绑定到场景文字的 JSON 数据")
	layersIn := flag.String("layers", "", "从图层 JSON 文件加载图层")
	layersOut := flag.String("save-layers", "", "把最终图层写入 JSON 文件")
	fontDirs := flag.String("fonts", "", "额外字体目录或文件，逗号分隔")
	format := flag.String("format", "png", "导出格式：png、tiff、bmp")
	output := flag.String("out", "", "输出路径，默认 "+codec.DefaultFilename)
	preview := flag.String("preview", "", "按 WxH 渲染预览而不是原尺寸导出")
	debug := flag.String("debug", "", "图层投影调试 JSON 输出路径")
	debugRawUnits := flag.Bool("debug-raw-units", false, "在调试 JSON 中附带 pt 换算后的字号")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := config{
		scenePath:  *input,
		photoPath:  *photo,
		cutoutPath: *cutout,
		segmentCmd: *segmentCmd,
		layersIn:   *layersIn,
		layersOut:  *layersOut,
		outputPath: *output,
		debugPath:  *debug,
		rawUnits:   *debugRawUnits,
	}
	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &cfg.data); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}
	if *fontDirs != "" {
		cfg.fontDirs = strings.Split(*fontDirs, ",")
	}
	f, err := codec.ParseFormat(*format)
	if err != nil {
		log.Fatalf("%v", err)
	}
	cfg.format = f
	if *preview != "" {
		if cfg.previewW, cfg.previewH, err = parseSize(*preview); err != nil {
			log.Fatalf("%v", err)
		}
	}

	path, err := run(context.Background(), cfg)
	if err != nil {
		log.Fatalf("生成图片失败: %v", err)
	}
	fmt.Printf("已生成图片：%s\n", path)
}

// run 串联场景构建、抠图、渲染与导出，返回输出文件路径。
func run(ctx context.Context, cfg config) (string, error) {
	if cfg.scenePath != "" {
		sc, err := scene.Load(cfg.scenePath, scene.Options{Data: cfg.data})
		if err != nil {
			return "", err
		}
		mergeSource(&cfg, sc.Source)
		if cfg.layersIn == "" {
			return render(ctx, cfg, sc.Layers)
		}
	}
	var layers []layer.TextLayer
	if cfg.layersIn != "" {
		raw, err := os.ReadFile(cfg.layersIn)
		if err != nil {
			return "", fmt.Errorf("读取图层文件失败: %w", err)
		}
		if layers, err = layer.UnmarshalDocument(raw); err != nil {
			return "", err
		}
	}
	return render(ctx, cfg, layers)
}

// 命令行参数优先于场景文件中的 source。
func mergeSource(cfg *config, src scene.Source) {
	if cfg.photoPath == "" {
		cfg.photoPath = src.Photo
	}
	if cfg.cutoutPath == "" && cfg.segmentCmd == "" {
		cfg.cutoutPath = src.Cutout
		cfg.segmentCmd = src.Segment
	}
	cfg.fontDirs = append(append([]string(nil), src.Fonts...), cfg.fontDirs...)
}

func render(ctx context.Context, cfg config, layers []layer.TextLayer) (string, error) {
	if cfg.photoPath == "" {
		return "", fmt.Errorf("缺少照片路径")
	}
	catalog, err := fonts.NewCatalog()
	if err != nil {
		return "", err
	}
	for _, p := range cfg.fontDirs {
		if err := registerFonts(catalog, strings.TrimSpace(p)); err != nil {
			return "", err
		}
	}
	r, err := canvasrenderer.NewRenderer(canvasrenderer.Options{Fonts: catalog})
	if err != nil {
		return "", err
	}
	seg, err := segmenter(cfg)
	if err != nil {
		return "", err
	}

	sess := editor.New(r, editor.WithSegmenter(seg))
	defer sess.Close()

	photo, err := os.ReadFile(cfg.photoPath)
	if err != nil {
		return "", fmt.Errorf("读取照片失败: %w", err)
	}
	if err := sess.LoadPhoto(ctx, photo); err != nil {
		return "", err
	}
	sess.Update(func(s *layer.Store) { s.Load(layers) })
	layers = sess.Layers()

	bounds := sess.Photo().Bounds()
	if cfg.debugPath != "" {
		if err := writeDebug(cfg.debugPath, layers, float64(bounds.Dx()), float64(bounds.Dy()), cfg.rawUnits); err != nil {
			return "", err
		}
	}
	if cfg.layersOut != "" {
		if err := writeLayers(cfg.layersOut, layers); err != nil {
			return "", err
		}
	}

	out := cfg.outputPath
	if out == "" {
		out = codec.Filename(cfg.format)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", fmt.Errorf("创建输出目录失败: %w", err)
	}

	var data []byte
	if cfg.previewW > 0 {
		if err := sess.Wait(ctx); err != nil {
			return "", err
		}
		img, err := sess.Preview(cfg.previewW, cfg.previewH)
		if err != nil {
			return "", fmt.Errorf("渲染预览失败: %w", err)
		}
		if data, err = codec.EncodeBytes(img, cfg.format); err != nil {
			return "", err
		}
	} else if data, err = sess.Export(ctx, cfg.format); err != nil {
		return "", err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return "", fmt.Errorf("写入图片失败: %w", err)
	}
	return out, nil
}

func segmenter(cfg config) (segment.Segmenter, error) {
	switch {
	case cfg.cutoutPath != "":
		return segment.File(cfg.cutoutPath), nil
	case cfg.segmentCmd != "":
		cmd, err := segment.ParseCommand(cfg.segmentCmd)
		if err != nil {
			return nil, err
		}
		return cmd, nil
	default:
		return segment.None{}, nil
	}
}

func registerFonts(c *fonts.Catalog, path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("字体路径 %s 不可用: %w", path, err)
	}
	if info.IsDir() {
		n, err := c.RegisterDir(path)
		if err != nil {
			return err
		}
		logging.Logger().Debug("已加载字体目录", "dir", path, "faces", n)
		return nil
	}
	return c.RegisterFile(path)
}

func parseSize(v string) (int, int, error) {
	w, h, ok := strings.Cut(strings.ToLower(v), "x")
	if !ok {
		return 0, 0, fmt.Errorf("预览尺寸 %q 应为 WxH", v)
	}
	width, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("预览宽度 %q 无效", w)
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("预览高度 %q 无效", h)
	}
	return width, height, nil
}

func writeDebug(path string, layers []layer.TextLayer, width, height float64, rawUnits bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(path, layers, width, height, layout.Options{
		ReferenceWidth: width,
		Debug:          layout.DebugOptions{RawUnits: rawUnits},
	}); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

func writeLayers(path string, layers []layer.TextLayer) error {
	raw, err := layer.MarshalDocument(layers)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("写入图层文件失败: %w", err)
	}
	return nil
}
