package fonts

import (
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/gofont/gosmallcapsitalic"
)

// 内置字体族名。Go 字体随 golang.org/x/image 一起分发，不依赖系统字体。
const (
	FamilyGo          = "Go"
	FamilyGoMono      = "Go Mono"
	FamilyGoSmallcaps = "Go Smallcaps"
)

type builtinFace struct {
	family string
	weight int
	italic bool
	data   []byte
}

var builtinFaces = []builtinFace{
	{FamilyGo, 400, false, goregular.TTF},
	{FamilyGo, 400, true, goitalic.TTF},
	{FamilyGo, 500, false, gomedium.TTF},
	{FamilyGo, 500, true, gomediumitalic.TTF},
	{FamilyGo, 700, false, gobold.TTF},
	{FamilyGo, 700, true, gobolditalic.TTF},
	{FamilyGoMono, 400, false, gomono.TTF},
	{FamilyGoMono, 400, true, gomonoitalic.TTF},
	{FamilyGoMono, 700, false, gomonobold.TTF},
	{FamilyGoMono, 700, true, gomonobolditalic.TTF},
	{FamilyGoSmallcaps, 400, false, gosmallcaps.TTF},
	{FamilyGoSmallcaps, 400, true, gosmallcapsitalic.TTF},
}
