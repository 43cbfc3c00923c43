package layout

import (
	"encoding/json"
	"os"

	"github.com/ByLCY/textbehind/layer"
)

type debugEntry struct {
	Layer      layer.TextLayer `json:"layer"`
	Projection Projection      `json:"projection"`
	FontSizePt float64         `json:"fontSizePt,omitempty"`
}

type debugDump struct {
	Width   float64      `json:"width"`
	Height  float64      `json:"height"`
	Entries []debugEntry `json:"entries"`
}

// WriteDebugJSON 将图层及其在 width×height 表面上的投影输出为 JSON，便于调试或可视化。
func WriteDebugJSON(path string, layers []layer.TextLayer, width, height float64, opts Options) error {
	dump := debugDump{Width: width, Height: height, Entries: make([]debugEntry, 0, len(layers))}
	for _, l := range layers {
		p := Project(l, width, height, opts)
		e := debugEntry{Layer: l, Projection: p}
		if opts.Debug.RawUnits {
			e.FontSizePt = PxToPt(l.FontSize * p.Scale)
		}
		dump.Entries = append(dump.Entries, e)
	}
	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
