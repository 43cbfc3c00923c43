package layout

// Options 配置布局像素到输出像素的换算。
type Options struct {
	// ReferenceWidth 是图层字号、描边宽度所参照的表面宽度（通常是照片的原始宽度）。
	// 小于等于 0 时不缩放。
	ReferenceWidth float64
	Debug          DebugOptions
}

// DebugOptions 控制调试相关输出。
type DebugOptions struct {
	RawUnits bool // 在调试 JSON 中附带 pt 换算后的字号
}
