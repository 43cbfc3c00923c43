package layer

import (
	"encoding/json"
	"fmt"
)

// DocumentVersion 是当前保存格式的版本号。
const DocumentVersion = 1

// Document 是图层列表的持久化形态，列表顺序即各组内的叠放顺序。
type Document struct {
	Version int         `json:"version"`
	Layers  []TextLayer `json:"layers"`
}

// MarshalDocument 把图层列表序列化为带缩进的 JSON。
func MarshalDocument(layers []TextLayer) ([]byte, error) {
	if layers == nil {
		layers = []TextLayer{}
	}
	return json.MarshalIndent(Document{Version: DocumentVersion, Layers: layers}, "", "  ")
}

// UnmarshalDocument 解析 MarshalDocument 的输出；缺少 version 时按当前版本处理。
// 每条记录都叠加在默认图层之上解码，手写文件可以只给出需要改动的字段；
// 缺少 text 时使用与 Create 相同的 "Text N"。
func UnmarshalDocument(data []byte) ([]TextLayer, error) {
	var doc struct {
		Version int               `json:"version"`
		Layers  []json.RawMessage `json:"layers"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("解析图层文档失败: %w", err)
	}
	if doc.Version > DocumentVersion {
		return nil, fmt.Errorf("不支持的图层文档版本 %d", doc.Version)
	}
	layers := make([]TextLayer, 0, len(doc.Layers))
	for i, raw := range doc.Layers {
		l := Default(0)
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, fmt.Errorf("解析第 %d 个图层失败: %w", i+1, err)
		}
		var fields struct {
			Text *string `json:"text"`
		}
		if err := json.Unmarshal(raw, &fields); err == nil && fields.Text == nil {
			l.Text = fmt.Sprintf("Text %d", l.ID)
		}
		layers = append(layers, l)
	}
	return layers, nil
}
