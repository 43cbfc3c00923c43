package scene

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ByLCY/textbehind/dsl"
	"github.com/ByLCY/textbehind/layer"
	"github.com/ByLCY/textbehind/layout"
)

const posterScene = `
scene Poster v1 {
  source {
    photo: "beach.jpg"
    segment: "rembg i {in} {out}"
    fonts: ["fonts", "/abs/Anton.ttf"]
  }

  palette {
    sun: #F9DB43
  }

  style Base {
    fontFamily: "Go"
    color: sun
  }

  style Title extends Base {
    fontSize: 240px
    fontWeight: 900
  }

  layer Title back stroke {
    "HELLO ${user.name}"
    top: -12.5
    rotation: -8deg
  }

  layer front hidden {
    text: "${missing.path} and ${other|fallback}"
    left: 20%
    color: #fff
  }

  layer { }
}
`

func build(t *testing.T, src string, opts Options) *Scene {
	t.Helper()
	doc, err := dsl.ParseString(src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	sc, err := Build(doc, opts)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return sc
}

func TestBuildScene(t *testing.T) {
	data := map[string]any{"user": map[string]any{"name": "Ada"}}
	sc := build(t, posterScene, Options{Data: data, BaseDir: "/work"})

	if sc.Name != "Poster" || sc.Version != "v1" {
		t.Fatalf("unexpected header %s %s", sc.Name, sc.Version)
	}
	if sc.Source.Photo != filepath.Join("/work", "beach.jpg") {
		t.Fatalf("photo path not resolved: %s", sc.Source.Photo)
	}
	if sc.Source.Segment != "rembg i {in} {out}" {
		t.Fatalf("segment command should be kept verbatim: %s", sc.Source.Segment)
	}
	if len(sc.Source.Fonts) != 2 || sc.Source.Fonts[1] != "/abs/Anton.ttf" {
		t.Fatalf("unexpected fonts %v", sc.Source.Fonts)
	}
	if len(sc.Layers) != 3 {
		t.Fatalf("expected 3 layers, got %d", len(sc.Layers))
	}

	title := sc.Layers[0]
	if title.ID != 1 || title.Text != "HELLO Ada" {
		t.Fatalf("unexpected title layer %+v", title)
	}
	if title.FontFamily != "Go" || title.FontSize != 240 || title.FontWeight != 900 {
		t.Fatalf("style props not applied: %+v", title)
	}
	if title.Color != (layer.Color{R: 0xF9, G: 0xDB, B: 0x43}) {
		t.Fatalf("palette color not applied: %v", title.Color)
	}
	if title.Top != -12.5 || title.Rotation != -8 {
		t.Fatalf("inline props not applied: top=%v rotation=%v", title.Top, title.Rotation)
	}
	if title.IsFront || !title.IsStroke || !title.Visible {
		t.Fatalf("flags not applied: %+v", title)
	}

	front := sc.Layers[1]
	if !front.IsFront || front.ZIndex != 1 || front.Visible {
		t.Fatalf("front hidden flags not applied: %+v", front)
	}
	if front.Text != "${missing.path} and fallback" {
		t.Fatalf("unexpected interpolation %q", front.Text)
	}
	if front.Left != 20 || front.Color != layer.White {
		t.Fatalf("unexpected front layer %+v", front)
	}

	def := sc.Layers[2]
	want := layer.Default(3)
	if def != want {
		t.Fatalf("empty layer should keep defaults:\n got %+v\nwant %+v", def, want)
	}

	if len(sc.Missing) != 1 || sc.Missing[0] != "missing.path" {
		t.Fatalf("unexpected missing report %v", sc.Missing)
	}
}

func TestBuildConvertsPoints(t *testing.T) {
	sc := build(t, "scene P v1 {\n  layer {\n    fontSize: 72pt\n    strokeSize: 4px\n  }\n}", Options{})
	l := sc.Layers[0]
	if math.Abs(l.FontSize-72*layout.PtToMm) > 1e-9 {
		t.Fatalf("expected 72pt converted to px, got %v", l.FontSize)
	}
	if l.StrokeSize != 4 {
		t.Fatalf("expected px value kept, got %v", l.StrokeSize)
	}
}

func TestBuildClampsRanges(t *testing.T) {
	sc := build(t, "scene C v1 {\n  layer {\n    fontSize: 2000\n    fontWeight: 1000\n    opacity: 2\n    top: 140\n  }\n}", Options{})
	l := sc.Layers[0]
	if l.FontSize != layer.MaxFontSize || l.FontWeight != layer.MaxWeight || l.Opacity != 1 {
		t.Fatalf("out-of-range values should be clamped: %+v", l)
	}
	if l.Top != 140 {
		t.Fatalf("positions outside the canvas are valid, got top=%v", l.Top)
	}
}

func TestBuildErrors(t *testing.T) {
	cases := map[string]struct {
		src  string
		want string
	}{
		"undefined style": {
			src:  "scene A v1 {\n  layer Nope { }\n}",
			want: "Nope",
		},
		"style cycle": {
			src:  "scene A v1 {\n  style A extends B { }\n  style B extends A { }\n}",
			want: "循环",
		},
		"unknown key": {
			src:  "scene A v1 {\n  layer {\n    fontColor: red\n  }\n}",
			want: "第 2 行",
		},
		"bad value": {
			src:  "scene A v1 {\n  layer {\n    fontSize: huge\n  }\n}",
			want: "fontSize",
		},
		"unknown flag": {
			src:  "scene A v1 {\n  style S { }\n  layer S sideways { }\n}",
			want: "sideways",
		},
		"bad palette": {
			src:  "scene A v1 {\n  palette {\n    x: notacolor\n  }\n}",
			want: "palette x",
		},
		"unknown source field": {
			src:  "scene A v1 {\n  source {\n    video: \"a.mp4\"\n  }\n}",
			want: "video",
		},
		"duplicate style": {
			src:  "scene A v1 {\n  style S { }\n  style S { }\n}",
			want: "重复",
		},
	}
	for name, tc := range cases {
		doc, err := dsl.ParseString(tc.src)
		if err != nil {
			t.Fatalf("%s: parse failed: %v", name, err)
		}
		_, err = Build(doc, Options{})
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: error %q should mention %q", name, err, tc.want)
		}
	}
}

func TestBuildNilDocument(t *testing.T) {
	if _, err := Build(nil, Options{}); err == nil {
		t.Fatalf("expected error for nil document")
	}
}

func TestLoadReadsDataFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "data.json"), []byte(`{"title":"SUMMER"}`), 0o644); err != nil {
		t.Fatalf("write data: %v", err)
	}
	src := "scene Load v1 {\n  source {\n    photo: \"p.png\"\n    data: \"data.json\"\n  }\n  layer { \"${title}\" }\n}\n"
	path := filepath.Join(dir, "scene.tbi")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write scene: %v", err)
	}

	sc, err := Load(path, Options{})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if sc.Source.Photo != filepath.Join(dir, "p.png") {
		t.Fatalf("photo should be relative to the scene file: %s", sc.Source.Photo)
	}
	if len(sc.Layers) != 1 || sc.Layers[0].Text != "SUMMER" {
		t.Fatalf("data file not used: %+v", sc.Layers)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.tbi"), Options{}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
