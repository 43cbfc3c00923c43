package dsl_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/textbehind/dsl"
)

const sampleScene = `
scene Poster v1 {
  source {
    photo: "beach.jpg"
    cutout: "beach-cutout.png"
    fonts: [
      "fonts/"
      "extra/Anton-Regular.ttf"
    ]
  }

  palette {
    sun: #F9DB43
  }

  // 共享样式
  style Title {
    fontSize: 240px
    fontWeight: 900
    color: sun
  }

  style Caption extends Title {
    fontSize: 48
    fontStyle: "Small Caps"
  }

  layer Title back stroke {
    "HELLO ${user.name}"
    top: -12.5
    rotation: -8deg
  }

  layer front hidden { text: "front"; left: 20% }
}
`

func TestParseScene(t *testing.T) {
	doc, err := dsl.ParseString(sampleScene)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if doc.Name != "Poster" || doc.Version != "v1" {
		t.Fatalf("unexpected header %s %s", doc.Name, doc.Version)
	}
	if len(doc.Sections) != 6 {
		t.Fatalf("expected 6 sections, got %d", len(doc.Sections))
	}
	kinds := []string{"source", "palette", "style", "style", "layer", "layer"}
	for i, want := range kinds {
		if got := doc.Sections[i].Kind(); got != want {
			t.Fatalf("section %d: expected %s, got %s", i, want, got)
		}
	}

	src := doc.Sections[0].Source.Block.Statements
	if len(src) != 3 {
		t.Fatalf("expected 3 source statements, got %d", len(src))
	}
	if got := src[0].Assignment.Value.Raw(); got != "beach.jpg" {
		t.Fatalf("expected photo beach.jpg, got %q", got)
	}
	fonts := src[2].Assignment.Value.Strings()
	if len(fonts) != 2 || fonts[1] != "extra/Anton-Regular.ttf" {
		t.Fatalf("unexpected fonts %v", fonts)
	}

	palette := doc.Sections[1].Palette.Block.Statements[0].Assignment
	if palette.Key != "sun" || palette.Value.Color == nil || *palette.Value.Color != "#F9DB43" {
		t.Fatalf("unexpected palette entry %+v", palette)
	}

	caption := doc.Sections[3].Style
	if caption.Name != "Caption" || caption.Extends != "Title" {
		t.Fatalf("unexpected style header %+v", caption)
	}
	title := doc.Sections[2].Style.Block.Statements
	if got := title[0].Assignment.Value.Raw(); got != "240px" {
		t.Fatalf("expected number with unit, got %q", got)
	}
	if title[2].Assignment.Value.Ident == nil {
		t.Fatalf("expected palette reference to parse as identifier")
	}
}

func TestParseLayerArgs(t *testing.T) {
	doc, err := dsl.ParseString(sampleScene)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	back := doc.Sections[4].Layer
	var args []string
	for _, a := range back.Args {
		args = append(args, a.Value)
	}
	if strings.Join(args, " ") != "Title back stroke" {
		t.Fatalf("unexpected layer args %v", args)
	}
	stmts := back.Block.Statements
	if stmts[0].Text == nil || string(stmts[0].Text.Value) != "HELLO ${user.name}" {
		t.Fatalf("expected text literal, got %+v", stmts[0])
	}
	if got := stmts[2].Assignment.Value.Raw(); got != "-8deg" {
		t.Fatalf("expected -8deg, got %q", got)
	}
	if back.Pos.Line == 0 {
		t.Fatalf("expected layer position to be recorded")
	}

	front := doc.Sections[5].Layer
	if len(front.Block.Statements) != 2 {
		t.Fatalf("expected 2 statements separated by ';', got %d", len(front.Block.Statements))
	}
	if got := front.Block.Statements[1].Assignment.Value.Raw(); got != "20%" {
		t.Fatalf("expected 20%%, got %q", got)
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"missing header":  `{ }`,
		"unknown section": "scene A v1 {\n  meta { }\n}",
		"unclosed block":  "scene A v1 {\n  layer {\n    top: 1\n}",
	}
	for name, input := range cases {
		if _, err := dsl.ParseString(input); err == nil {
			t.Fatalf("%s: expected parse error", name)
		}
	}
}

func TestValueRawNil(t *testing.T) {
	var v *dsl.Value
	if v.Raw() != "" || v.Strings() != nil {
		t.Fatalf("nil value should be empty")
	}
}
