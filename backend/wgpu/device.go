// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glscene/gl"
	"github.com/gogpu/glscene/internal/cache"
)

// Defaults for New.
const (
	DefaultWidth         = 256
	DefaultHeight        = 256
	DefaultPipelineCache = 64
	DefaultTimeout       = 5 * time.Second
)

type config struct {
	width, height uint32
	format        gputypes.TextureFormat
	pipelines     int
	timeout       time.Duration
}

// Option configures a Device.
type Option func(*config)

// WithSize sets the size of the offscreen color target.
func WithSize(width, height uint32) Option {
	return func(c *config) {
		c.width, c.height = width, height
	}
}

// WithFormat sets the color target format. The default is RGBA8Unorm, or
// the surface format of a provider.
func WithFormat(f gputypes.TextureFormat) Option {
	return func(c *config) {
		c.format = f
	}
}

// WithPipelineCache bounds the number of cached render pipelines.
func WithPipelineCache(n int) Option {
	return func(c *config) {
		c.pipelines = n
	}
}

// WithTimeout bounds the wait for each submitted pass.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// Device is a [gl.Device] backed by a HAL device and queue.
type Device struct {
	device hal.Device
	queue  hal.Queue
	cfg    config
	log    *slog.Logger

	release func() // owned HAL objects, see OpenNoop

	target     hal.Texture
	targetView hal.TextureView
	pipelines  *cache.Cache[pipelineKey, hal.RenderPipeline]

	nextID   uint32
	buffers  map[gl.Buffer]*buffer
	shaders  map[gl.Shader]*shader
	programs map[gl.Program]*program
	vaos     map[gl.VertexArray]*vertexArray

	arrayBuffer gl.Buffer
	defaultVAO  vertexArray
	vao         *vertexArray
	current     *program
	constants   map[uint32][4]float32
	clearColor  gputypes.Color

	stats Stats
}

// Stats counts live objects and submitted work.
type Stats struct {
	Buffers      int
	Shaders      int
	Programs     int
	VertexArrays int
	Pipelines    int
	Passes       int
	Draws        int
}

var _ gl.Device = (*Device)(nil)

// New creates a device drawing into an offscreen target on device.
func New(device hal.Device, queue hal.Queue, opts ...Option) (*Device, error) {
	cfg := config{
		width:     DefaultWidth,
		height:    DefaultHeight,
		format:    gputypes.TextureFormatRGBA8Unorm,
		pipelines: DefaultPipelineCache,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if device == nil || queue == nil {
		return nil, fmt.Errorf("wgpu: nil device or queue")
	}

	d := &Device{
		device:    device,
		queue:     queue,
		cfg:       cfg,
		buffers:   make(map[gl.Buffer]*buffer),
		shaders:   make(map[gl.Shader]*shader),
		programs:  make(map[gl.Program]*program),
		vaos:      make(map[gl.VertexArray]*vertexArray),
		constants: make(map[uint32][4]float32),
	}
	d.defaultVAO = newVertexArray()
	d.vao = &d.defaultVAO
	d.pipelines = cache.New(cfg.pipelines, cache.WithEvict(func(_ pipelineKey, p hal.RenderPipeline) {
		d.device.DestroyRenderPipeline(p)
	}))

	if err := d.createTarget(); err != nil {
		return nil, err
	}
	d.logger().Info("wgpu device ready",
		"width", cfg.width, "height", cfg.height, "format", cfg.format)
	return d, nil
}

// NewFromProvider creates a device on the HAL device and queue of a host
// application. The provider must implement HalDevice() any and HalQueue()
// any returning hal.Device and hal.Queue. The color target uses the
// provider's surface format unless WithFormat says otherwise.
func NewFromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*Device, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNotHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNotHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNotHAL)
	}
	if f := provider.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
		opts = append([]Option{WithFormat(f)}, opts...)
	}
	return New(device, queue, opts...)
}

// SetLogger sets the logger of this device. glscene.NewRoot calls it with
// the root's logger.
func (d *Device) SetLogger(l *slog.Logger) {
	d.log = l
}

func (d *Device) logger() *slog.Logger {
	if d.log != nil {
		return d.log
	}
	return logger()
}

// Language reports WGSL.
func (d *Device) Language() gl.Language { return gl.WGSL }

// Size returns the size of the color target.
func (d *Device) Size() (uint32, uint32) { return d.cfg.width, d.cfg.height }

// Target returns the color target every pass renders into.
func (d *Device) Target() hal.Texture { return d.target }

// Stats returns live object counts and submitted work so far.
func (d *Device) Stats() Stats {
	st := d.stats
	st.Buffers = len(d.buffers)
	st.Shaders = len(d.shaders)
	st.Programs = len(d.programs)
	st.VertexArrays = len(d.vaos)
	st.Pipelines = d.pipelines.Len()
	return st
}

// Destroy releases every object still alive and the color target.
// The HAL device and queue are not destroyed.
func (d *Device) Destroy() {
	for h := range d.programs {
		d.DeleteProgram(h)
	}
	for h := range d.shaders {
		d.DeleteShader(h)
	}
	for h := range d.buffers {
		d.DeleteBuffer(h)
	}
	for h := range d.vaos {
		d.DeleteVertexArray(h)
	}
	d.pipelines.Clear()
	if d.targetView != nil {
		d.device.DestroyTextureView(d.targetView)
		d.targetView = nil
	}
	if d.target != nil {
		d.device.DestroyTexture(d.target)
		d.target = nil
	}
}

func (d *Device) newID() uint32 {
	d.nextID++
	return d.nextID
}

func (d *Device) createTarget() error {
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "glscene_target",
		Size:          hal.Extent3D{Width: d.cfg.width, Height: d.cfg.height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        d.cfg.format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create target: %w", err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "glscene_target_view",
		Format:        d.cfg.format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return fmt.Errorf("wgpu: create target view: %w", err)
	}
	d.target, d.targetView = tex, view
	return nil
}
