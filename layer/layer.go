// Package layer 定义文字图层的数据模型与图层集合（Store）。
//
// 图层是值类型：每次修改都会整体替换记录，渲染时拿到的快照不会被之后的编辑影响。
package layer

import "fmt"

// 新建图层时使用的默认属性（与编辑器默认值保持一致）。
const (
	DefaultFontFamily    = "Inter"
	DefaultFontSize      = 100.0
	DefaultFontWeight    = 800
	DefaultOpacity       = 1.0
	DefaultStrokeSize    = 2.0
	DefaultStrokeOpacity = 0.5
)

// 属性的名义取值范围。Store 不做校验，由调用方在 Set 之前自行夹取。
const (
	MinFontSize = 10.0
	MaxFontSize = 800.0
	MinWeight   = 100
	MaxWeight   = 900
)

var (
	DefaultColor       = Color{R: 0xF9, G: 0xDB, B: 0x43}
	DefaultStrokeColor = Color{R: 0xFF}
)

// TextLayer 是合成中的一个文字图层。
//
// Top/Left 为以画布中心为原点的百分比坐标（layout space），超出范围表示位于画布之外，属于合法值。
// IsFront 只把图层分成“抠图之后 / 之前”两组，组内顺序始终是 Store 中的插入顺序。
type TextLayer struct {
	ID            int       `json:"id"`
	Text          string    `json:"text"`
	FontFamily    string    `json:"fontFamily"`
	FontSize      float64   `json:"fontSize"`
	FontWeight    int       `json:"fontWeight"`
	FontStyle     FontStyle `json:"fontStyle"`
	Color         Color     `json:"color"`
	Opacity       float64   `json:"opacity"`
	StrokeColor   Color     `json:"strokeColor"`
	StrokeSize    float64   `json:"strokeSize"`
	StrokeOpacity float64   `json:"strokeOpacity"`
	IsStroke      bool      `json:"isStroke"`
	Top           float64   `json:"top"`
	Left          float64   `json:"left"`
	Rotation      float64   `json:"rotation"`
	ZIndex        int       `json:"zIndex"`
	IsFront       bool      `json:"isFront"`
	Visible       bool      `json:"visible"`
}

// Default 返回指定 id 的默认图层。
func Default(id int) TextLayer {
	return TextLayer{
		ID:            id,
		Text:          fmt.Sprintf("Text %d", id),
		FontFamily:    DefaultFontFamily,
		FontSize:      DefaultFontSize,
		FontWeight:    DefaultFontWeight,
		FontStyle:     StyleNormal,
		Color:         DefaultColor,
		Opacity:       DefaultOpacity,
		StrokeColor:   DefaultStrokeColor,
		StrokeSize:    DefaultStrokeSize,
		StrokeOpacity: DefaultStrokeOpacity,
		Visible:       true,
	}
}

// StrokePass 报告描边是否需要绘制：只有开启描边且线宽为正时才执行。
func (l TextLayer) StrokePass() bool {
	return l.IsStroke && l.StrokeSize > 0
}

// Partition 按 store 顺序把可见图层拆成背面组与正面组，不可见图层被丢弃。
func Partition(layers []TextLayer) (back, front []TextLayer) {
	for _, l := range layers {
		if !l.Visible {
			continue
		}
		if l.IsFront {
			front = append(front, l)
		} else {
			back = append(back, l)
		}
	}
	return back, front
}
