package binding

import (
	"encoding/json"
	"reflect"
	"testing"
)

func sampleData(t *testing.T) any {
	t.Helper()
	var data any
	raw := `{"user":{"name":"Ada","tags":["a","b"]},"count":3,"ratio":0.5,"items":[{"title":"first"}]}`
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return data
}

func TestInterpolate(t *testing.T) {
	data := sampleData(t)
	cases := map[string]string{
		"HELLO ${user.name}":   "HELLO Ada",
		"${ user.tags[1] }":    "b",
		"${items[0].title}!":   "first!",
		"x${count}":            "x3",
		"${ratio}":             "0.5",
		"${nope}":              "${nope}",
		"${nope|fallback}":     "fallback",
		"${user.name|ignored}": "Ada",
		"${user.tags[9]|none}": "none",
		"no placeholders":      "no placeholders",
	}
	for in, want := range cases {
		if got := Interpolate(in, data); got != want {
			t.Fatalf("Interpolate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInterpolateNilData(t *testing.T) {
	if got := Interpolate("${a}", nil); got != "${a}" {
		t.Fatalf("expected placeholder kept, got %q", got)
	}
	if got := Interpolate("${a|b}", nil); got != "b" {
		t.Fatalf("expected default, got %q", got)
	}
}

func TestLookup(t *testing.T) {
	data := sampleData(t)
	v, ok := Lookup(data, "user.tags")
	if !ok {
		t.Fatalf("expected tags to resolve")
	}
	if _, isSlice := v.([]any); !isSlice {
		t.Fatalf("expected slice, got %T", v)
	}
	if _, ok := Lookup(data, "user..name"); ok {
		t.Fatalf("empty segment should not resolve")
	}
	if _, ok := Lookup(data, "user.tags[x]"); ok {
		t.Fatalf("non-numeric index should not resolve")
	}
	if v, ok := Lookup(map[string]string{"k": "v"}, "k"); !ok || v != "v" {
		t.Fatalf("expected string map lookup, got %v %v", v, ok)
	}
}

func TestMissing(t *testing.T) {
	data := sampleData(t)
	got := Missing("${a} ${user.name} ${b|x} ${a} ${c}", data)
	want := []string{"a", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Missing = %v, want %v", got, want)
	}
}
