// Package imageopt shrinks uploaded images before they are stored: it caps the
// width, drops alpha and lowers lossy quality until the encoded size fits.
package imageopt

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Output is JPEG, encoded by the standard library.
const (
	OutputExt         = ".jpg"
	OutputContentType = "image/jpeg"
)

type Config struct {
	TargetKB       int
	MaxWidth       int
	InitialQuality int
	QualityFloor   int
	QualityStep    int
}

func DefaultConfig() Config {
	return Config{
		TargetKB:       100,
		MaxWidth:       1000,
		InitialQuality: 85,
		QualityFloor:   10,
		QualityStep:    5,
	}
}

// Asset is an optimized image ready to be stored in place of the upload.
type Asset struct {
	Name        string
	Data        []byte
	Width       int
	Height      int
	Quality     int
	ContentType string
}

type Observer interface {
	ObserveOptimization(d time.Duration, size int, ok bool)
}

type Optimizer struct {
	cfg      Config
	logger   *zap.Logger
	observer Observer
}

type Option func(*Optimizer)

func WithLogger(logger *zap.Logger) Option {
	return func(o *Optimizer) { o.logger = logger }
}

func WithObserver(observer Observer) Option {
	return func(o *Optimizer) { o.observer = observer }
}

// New fills zero fields of cfg from DefaultConfig.
func New(cfg Config, opts ...Option) *Optimizer {
	def := DefaultConfig()
	if cfg.TargetKB <= 0 {
		cfg.TargetKB = def.TargetKB
	}
	if cfg.MaxWidth <= 0 {
		cfg.MaxWidth = def.MaxWidth
	}
	if cfg.InitialQuality <= 0 || cfg.InitialQuality > 100 {
		cfg.InitialQuality = def.InitialQuality
	}
	if cfg.QualityFloor <= 0 || cfg.QualityFloor > cfg.InitialQuality {
		cfg.QualityFloor = min(def.QualityFloor, cfg.InitialQuality)
	}
	if cfg.QualityStep <= 0 {
		cfg.QualityStep = def.QualityStep
	}

	o := &Optimizer{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Optimizer) Config() Config { return o.cfg }

// Optimize returns nil when the source cannot be decoded or encoded. Callers
// keep the original upload in that case. The result may still exceed the
// target size when quality reached the floor.
func (o *Optimizer) Optimize(name string, src io.Reader) *Asset {
	start := time.Now()

	asset, err := o.optimize(name, src)
	if err != nil {
		o.logger.Warn("image optimization failed", zap.String("name", name), zap.Error(err))
		if o.observer != nil {
			o.observer.ObserveOptimization(time.Since(start), 0, false)
		}
		return nil
	}

	o.logger.Debug("image optimized",
		zap.String("name", asset.Name),
		zap.Int("width", asset.Width),
		zap.Int("height", asset.Height),
		zap.Int("quality", asset.Quality),
		zap.Int("bytes", len(asset.Data)),
	)
	if o.observer != nil {
		o.observer.ObserveOptimization(time.Since(start), len(asset.Data), true)
	}
	return asset
}

func (o *Optimizer) optimize(name string, src io.Reader) (asset *Asset, err error) {
	defer func() {
		if r := recover(); r != nil {
			asset, err = nil, fmt.Errorf("image codec panic: %v", r)
		}
	}()

	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	img = resize(img, o.cfg.MaxWidth)
	img = flatten(img)

	target := o.cfg.TargetKB * 1024
	quality := o.cfg.InitialQuality
	data, err := encode(img, quality)
	if err != nil {
		return nil, err
	}
	for len(data) > target && quality > o.cfg.QualityFloor {
		quality = max(quality-o.cfg.QualityStep, o.cfg.QualityFloor)
		if data, err = encode(img, quality); err != nil {
			return nil, err
		}
	}

	b := img.Bounds()
	return &Asset{
		Name:        RenameForOutput(name),
		Data:        data,
		Width:       b.Dx(),
		Height:      b.Dy(),
		Quality:     quality,
		ContentType: OutputContentType,
	}, nil
}

// RenameForOutput swaps the extension of name for the output format's.
func RenameForOutput(name string) string {
	base := strings.TrimSuffix(name, path.Ext(name))
	if base == "" || strings.HasSuffix(base, "/") {
		base += "image"
	}
	return base + OutputExt
}

func resize(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxWidth {
		return img
	}

	newHeight := int(int64(h) * int64(maxWidth) / int64(w))
	if newHeight < 1 {
		newHeight = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, maxWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// flatten drops the alpha channel of alpha-bearing color models. Colour
// channels are kept as they are; nothing is composited against a background.
func flatten(img image.Image) image.Image {
	if !hasAlpha(img.ColorModel()) {
		return img
	}
	b := img.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

func hasAlpha(m color.Model) bool {
	switch m {
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model,
		color.AlphaModel, color.Alpha16Model:
		return true
	}
	if p, ok := m.(color.Palette); ok {
		for _, c := range p {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}

func encode(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg q=%d: %w", quality, err)
	}
	return buf.Bytes(), nil
}
