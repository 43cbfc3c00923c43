package segment

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Command 调用外部分割程序（例如 rembg）。
//
// Args 中的 "{in}" 与 "{out}" 会被替换为临时文件路径：照片写入 {in}，程序把抠图写到 {out}。
// 两个占位符都不出现时，照片通过 stdin 传入，抠图从 stdout 读取。
type Command struct {
	Name string
	Args []string
	Dir  string // 临时文件目录，为空时使用系统默认
}

// ParseCommand 把 "rembg i {in} {out}" 这样的命令行拆成 Command（按空白分隔，不支持引号）。
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("分割命令为空")
	}
	return Command{Name: fields[0], Args: fields[1:]}, nil
}

func (c Command) Segment(ctx context.Context, photo []byte) ([]byte, error) {
	usesFiles := false
	for _, a := range c.Args {
		if strings.Contains(a, "{in}") || strings.Contains(a, "{out}") {
			usesFiles = true
			break
		}
	}
	if !usesFiles {
		var stdout, stderr bytes.Buffer
		cmd := exec.CommandContext(ctx, c.Name, c.Args...)
		cmd.Stdin = bytes.NewReader(photo)
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			return nil, c.wrap(ctx, err, stderr.String())
		}
		return nonEmpty(stdout.Bytes())
	}

	dir, err := os.MkdirTemp(c.Dir, "textbehind-segment-")
	if err != nil {
		return nil, fmt.Errorf("创建临时目录失败: %w", err)
	}
	defer os.RemoveAll(dir)
	in, out := filepath.Join(dir, "photo"), filepath.Join(dir, "cutout.png")
	if err := os.WriteFile(in, photo, 0o600); err != nil {
		return nil, fmt.Errorf("写入临时照片失败: %w", err)
	}
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = strings.NewReplacer("{in}", in, "{out}", out).Replace(a)
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Name, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, c.wrap(ctx, err, stderr.String())
	}
	data, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("分割命令 %s 没有生成抠图: %w", c.Name, err)
	}
	return nonEmpty(data)
}

func (c Command) wrap(ctx context.Context, err error, stderr string) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if s := strings.TrimSpace(stderr); s != "" {
		return fmt.Errorf("分割命令 %s 失败: %w: %s", c.Name, err, s)
	}
	return fmt.Errorf("分割命令 %s 失败: %w", c.Name, err)
}

func nonEmpty(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrNoCutout
	}
	return data, nil
}
