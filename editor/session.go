// Package editor 把图层集合、照片、异步抠图与渲染器组合成一个编辑会话，
// 并提供预览与导出两个共用同一渲染器的输出面。
package editor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"sync"

	"github.com/ByLCY/textbehind/codec"
	"github.com/ByLCY/textbehind/layer"
	"github.com/ByLCY/textbehind/logging"
	"github.com/ByLCY/textbehind/renderer"
	"github.com/ByLCY/textbehind/segment"
)

// ErrNoPhoto 表示会话中还没有加载照片。
var ErrNoPhoto = errors.New("尚未加载照片")

// Session 是单张照片的编辑会话，所有方法都可以并发调用。
//
// 每次 LoadPhoto 都会让代数（generation）加一；抠图结果带着发起时的代数返回，
// 只有代数仍是当前值时才会被采用，过期结果直接丢弃。
type Session struct {
	renderer  renderer.Renderer
	segmenter segment.Segmenter
	logger    *slog.Logger

	mu      sync.Mutex
	store   *layer.Store
	photo   image.Image
	cutout  image.Image
	gen     uint64
	cancel  context.CancelFunc
	settled chan struct{} // 当前代的抠图结束（成功、失败或被取代）时关闭
}

// Option configures a Session.
type Option func(*Session)

// WithSegmenter 指定抠图来源，默认不抠图（segment.None）。
func WithSegmenter(s segment.Segmenter) Option {
	return func(sess *Session) { sess.segmenter = s }
}

// WithLogger 指定会话使用的 logger，默认跟随 logging.Logger()。
func WithLogger(l *slog.Logger) Option {
	return func(sess *Session) { sess.logger = l }
}

// New 创建一个空会话。
func New(r renderer.Renderer, opts ...Option) *Session {
	s := &Session{renderer: r, segmenter: segment.None{}, store: layer.NewStore()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logging.Logger()
}

// LoadPhoto 解码并加载新照片：清空图层与抠图，取消上一张照片仍在进行的抠图，
// 然后在后台为新照片发起抠图。抠图失败不会作为错误返回，会话继续以无抠图状态工作。
func (s *Session) LoadPhoto(ctx context.Context, data []byte) error {
	img, err := codec.Decode(data)
	if err != nil {
		return fmt.Errorf("加载照片失败: %w", err)
	}

	// 抠图的生命周期不受本次调用的 ctx 约束，只会被下一张照片或 Close 取消。
	segCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	s.photo = img
	s.cutout = nil
	s.store.Reset()
	s.cancel = cancel
	s.settled = done
	s.mu.Unlock()

	b := img.Bounds()
	s.log().Info("照片已加载", "generation", gen, "width", b.Dx(), "height", b.Dy())
	go s.segment(segCtx, gen, data, done)
	return nil
}

func (s *Session) segment(ctx context.Context, gen uint64, photo []byte, done chan struct{}) {
	defer close(done)

	data, err := s.segmenter.Segment(ctx, photo)
	var cutout image.Image
	if err == nil {
		cutout, err = codec.Decode(data)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		s.log().Debug("丢弃过期的抠图结果", "generation", gen, "current", s.gen)
		return
	}
	switch {
	case errors.Is(err, segment.ErrNoCutout):
		s.log().Debug("没有抠图", "generation", gen)
	case err != nil:
		s.log().Warn("抠图失败，继续以无抠图状态编辑", "generation", gen, "err", err)
	default:
		s.cutout = cutout
		s.log().Debug("抠图完成", "generation", gen)
	}
}

// Close 取消仍在进行的抠图。
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Update 在会话锁内修改图层集合，多个 Update 之间互相串行。fn 不应长时间阻塞，
// 也不能调用会话的其他方法（Layers、Photo、Preview 等都要获取同一把锁，会造成死锁）；
// 需要读取时直接使用传入的 *layer.Store。
func (s *Session) Update(fn func(*layer.Store)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.store)
}

// Layers 返回当前图层快照。
func (s *Session) Layers() []layer.TextLayer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Layers()
}

// Cutout 返回当前抠图，尚未完成或失败时为 nil。
func (s *Session) Cutout() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cutout
}

// Photo 返回当前照片。
func (s *Session) Photo() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.photo
}

// Generation 返回当前照片的代数，未加载照片时为 0。
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Wait 阻塞到当前照片的抠图结束。等待期间换了照片时继续等待新照片的抠图。
func (s *Session) Wait(ctx context.Context) error {
	_, err := s.settledSnapshot(ctx)
	return err
}

type snapshot struct {
	photo  image.Image
	cutout image.Image
	layers []layer.TextLayer
}

func (s *Session) snapshotLocked() snapshot {
	return snapshot{photo: s.photo, cutout: s.cutout, layers: s.store.Layers()}
}

// settledSnapshot 等待抠图结束后，在同一次加锁中确认代数未变并取快照。
func (s *Session) settledSnapshot(ctx context.Context) (snapshot, error) {
	for {
		s.mu.Lock()
		done, gen := s.settled, s.gen
		s.mu.Unlock()
		if done == nil {
			return snapshot{}, ErrNoPhoto
		}
		select {
		case <-done:
		case <-ctx.Done():
			return snapshot{}, ctx.Err()
		}
		s.mu.Lock()
		if gen == s.gen {
			snap := s.snapshotLocked()
			s.mu.Unlock()
			return snap, nil
		}
		s.mu.Unlock()
	}
}

// Preview 以 width×height 立即渲染，使用当时已有的抠图，不等待抠图完成。
// width/height 为 0 时使用照片原始尺寸。
func (s *Session) Preview(width, height int) (*image.RGBA, error) {
	s.mu.Lock()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	if snap.photo == nil {
		return nil, ErrNoPhoto
	}
	return s.render(snap, width, height)
}

func (s *Session) render(snap snapshot, width, height int) (*image.RGBA, error) {
	return s.renderer.Render(renderer.Composition{
		Photo:          snap.photo,
		Cutout:         snap.cutout,
		Layers:         snap.layers,
		Width:          width,
		Height:         height,
		ReferenceWidth: float64(snap.photo.Bounds().Dx()),
	})
}

// Export 等待抠图结束后按照片原始尺寸渲染并编码。ctx 结束时中止，不产生任何输出。
func (s *Session) Export(ctx context.Context, f codec.Format) ([]byte, error) {
	snap, err := s.settledSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	img, err := s.render(snap, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("导出渲染失败: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := codec.EncodeBytes(img, f)
	if err != nil {
		return nil, err
	}
	s.log().Info("导出完成", "format", f.String(), "bytes", len(data), "layers", len(snap.layers))
	return data, nil
}

// Save 导出并写入 w。导出失败时 w 不会收到任何数据。
func (s *Session) Save(ctx context.Context, w io.Writer, f codec.Format) error {
	data, err := s.Export(ctx, f)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("写入导出文件失败: %w", err)
	}
	return nil
}
