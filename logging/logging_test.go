package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestDefaultIsSilent(t *testing.T) {
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("默认 logger 不应启用任何级别")
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { SetLogger(nil) })

	Logger().Info("照片已加载", "width", 10)
	if !strings.Contains(buf.String(), "width=10") {
		t.Fatalf("日志未写出: %q", buf.String())
	}
	SetLogger(nil)
	Logger().Info("ignored")
	if strings.Contains(buf.String(), "ignored") {
		t.Fatalf("恢复静默后仍有输出")
	}
}
