package cursescell

import (
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

// Factory builds cells, buffers and cell strings for one layout.
// It is immutable after construction and safe for concurrent use.
type Factory struct {
	layout  Layout
	codec   Codec
	binding *binding
	pool    *BufferPool
	logger  *zap.Logger
	metrics *Metrics
	chunk   int
}

// Option configures a Factory.
type Option func(*factoryConfig)

type factoryConfig struct {
	forcedLayout string
	codePage     *charmap.Charmap
	chunk        int
	pool         *BufferPool
	logger       *zap.Logger
	metrics      *Metrics
}

func newFactoryConfig(opts []Option) *factoryConfig {
	cfg := &factoryConfig{chunk: DefaultChunkSize}
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.logger = loggerOrNop(cfg.logger)
	if cfg.chunk <= 0 {
		cfg.chunk = DefaultChunkSize
	}
	return cfg
}

// WithLayout forces the layout chosen by Init ("narrow", "wide16", "wide32").
// An empty name keeps the probed layout.
func WithLayout(name string) Option {
	return func(c *factoryConfig) {
		c.forcedLayout = name
	}
}

// WithCodePage sets the narrow-layout code page.
func WithCodePage(cp *charmap.Charmap) Option {
	return func(c *factoryConfig) {
		c.codePage = cp
	}
}

// WithChunkSize sets the number of input bytes per transcoder step.
func WithChunkSize(n int) Option {
	return func(c *factoryConfig) {
		c.chunk = n
	}
}

// WithPool shares a buffer pool between factories.
func WithPool(p *BufferPool) Option {
	return func(c *factoryConfig) {
		c.pool = p
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *factoryConfig) {
		c.logger = l
	}
}

// WithMetrics sets the metrics collectors.
func WithMetrics(m *Metrics) Option {
	return func(c *factoryConfig) {
		c.metrics = m
	}
}

// NewFactory creates a factory for layout.
func NewFactory(layout Layout, opts ...Option) (*Factory, error) {
	cfg := newFactoryConfig(opts)

	if layout.Kind == LayoutNarrow {
		layout = Narrow
	}
	var (
		codec Codec
		err   error
	)
	switch layout {
	case Narrow:
		codec, err = NewCodec(Narrow, cfg.codePage)
	case Wide16, Wide32:
		codec, err = NewCodec(layout, nil)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedLayout, layout)
	}
	if err != nil {
		return nil, err
	}

	pool := cfg.pool
	if pool == nil {
		pool = NewBufferPool()
	}
	if pool.metrics == nil {
		// A shared pool keeps the metrics of the first factory given any.
		pool.metrics = cfg.metrics
	}
	b, err := newBinding(codec, pool)
	if err != nil {
		return nil, err
	}

	return &Factory{
		layout:  layout,
		codec:   codec,
		binding: b,
		pool:    pool,
		logger:  cfg.logger,
		metrics: cfg.metrics,
		chunk:   cfg.chunk,
	}, nil
}

// Layout returns the layout cells are built under.
func (f *Factory) Layout() Layout {
	return f.layout
}

// Codec returns the cell codec.
func (f *Factory) Codec() Codec {
	return f.codec
}

// CellSize returns the native size of one cell in bytes.
func (f *Factory) CellSize() int {
	return f.codec.CellSize()
}

// Pool returns the buffer pool.
func (f *Factory) Pool() *BufferPool {
	return f.pool
}

// Encode returns the zero-attribute cell for r.
func (f *Factory) Encode(r rune) (Cell, error) {
	return f.EncodeStyled(r, AttrNormal, 0)
}

// EncodeAttr returns the cell for r with attrs.
func (f *Factory) EncodeAttr(r rune, attrs Attr) (Cell, error) {
	return f.EncodeStyled(r, attrs, 0)
}

// EncodeStyled returns the cell for r with attrs and pair.
func (f *Factory) EncodeStyled(r rune, attrs Attr, pair ColorPair) (Cell, error) {
	c, err := f.codec.EncodeStyled(r, attrs, pair)
	f.metrics.conversionFailed(opEncode, err)
	return c, err
}

// Decode returns the base code point, attributes and color pair of c.
func (f *Factory) Decode(c Cell) (rune, Attr, ColorPair, error) {
	r, a, p, err := f.codec.Decode(c)
	f.metrics.conversionFailed(opDecode, err)
	return r, a, p, err
}

// AttributeOnly returns a cell with a null glyph carrying attrs.
func (f *Factory) AttributeOnly(attrs Attr) Cell {
	return f.codec.AttributeOnly(attrs)
}

// CellCountFor returns the number of cells text needs at most.
// Zero-width runes may share a cell, so a built string can be shorter.
func (f *Factory) CellCountFor(text string) int {
	return utf8.RuneCountInString(text)
}

// ByteCountFor returns the native size of n cells plus an optional terminator.
func (f *Factory) ByteCountFor(n int, terminator bool) int {
	return regionSize(f.codec.CellSize(), n, terminator)
}

// ByteCountForText returns the native size needed to build text.
func (f *Factory) ByteCountForText(text string, terminator bool) int {
	return f.ByteCountFor(f.CellCountFor(text), terminator)
}

// CreateBuffer rents a zeroed buffer of capacity cells from the pool.
// Release returns it.
func (f *Factory) CreateBuffer(capacity int, terminator bool) (*BufferState, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("%w: negative capacity %d", ErrBufferTooSmall, capacity)
	}
	size := f.codec.CellSize()
	data := f.pool.rent(regionSize(size, capacity, terminator))
	return newBufferState(data, size, capacity, terminator, bufferPooled, f.pool), nil
}

// OwnedBuffer allocates a zeroed buffer of capacity cells outside the pool.
func (f *Factory) OwnedBuffer(capacity int, terminator bool) (*BufferState, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("%w: negative capacity %d", ErrBufferTooSmall, capacity)
	}
	size := f.codec.CellSize()
	return newBufferState(make([]byte, regionSize(size, capacity, terminator)), size, capacity, terminator, bufferOwned, nil), nil
}

// WrapBuffer borrows b as cell storage. Capacity is every whole cell in b,
// minus one when a terminator is reserved.
func (f *Factory) WrapBuffer(b []byte, terminator bool) (*BufferState, error) {
	size := f.codec.CellSize()
	capacity := len(b) / size
	if terminator {
		capacity--
	}
	if capacity < 0 {
		return nil, fmt.Errorf("%w: %d bytes cannot hold a terminator cell of %d bytes", ErrBufferTooSmall, len(b), size)
	}
	return newBufferState(b, size, capacity, terminator, bufferBorrowed, nil), nil
}

// checkBuffer verifies buf can hold cells of this layout.
func (f *Factory) checkBuffer(buf *BufferState) error {
	if buf == nil || buf.Released() {
		return ErrBufferReleased
	}
	if buf.CellSize() != f.codec.CellSize() {
		return fmt.Errorf("%w: %d-byte cells used with %s layout", ErrInvalidCast, buf.CellSize(), f.layout)
	}
	return nil
}
