package platform

import (
	"context"
	"time"

	"github.com/spaghettifunk/featherwing/engine/core"
)

// FramebufferSizeCallback is told about every framebuffer size change.
type FramebufferSizeCallback func(width, height uint32)

/**
 * @brief The headless platform layer. It paces the frame loop, reports
 * time and owns the framebuffer size, standing in for a window.
 */
type Platform struct {
	ctx        context.Context
	ticker     *time.Ticker
	time       core.TimeProvider
	startTime  time.Time
	width      uint32
	height     uint32
	onResize   FramebufferSizeCallback
	isShutdown bool
}

func New(tp core.TimeProvider) *Platform {
	if tp == nil {
		tp = core.NewSystemTimeProvider()
	}
	return &Platform{time: tp}
}

/**
 * @brief Starts the platform. PumpMessages then returns once per frame at
 * frameRate frames per second, or as fast as possible when frameRate is 0.
 */
func (p *Platform) Startup(ctx context.Context, applicationName string, width, height uint32, frameRate float64) error {
	if width == 0 || height == 0 {
		return core.ErrInvalidConfig
	}
	p.ctx = ctx
	p.width, p.height = width, height
	if frameRate > 0 {
		p.ticker = time.NewTicker(time.Duration(float64(time.Second) / frameRate))
	}
	p.startTime = p.time.Now()
	p.isShutdown = false
	core.LogInfo("Platform '%s' started headless at %dx%d.", applicationName, width, height)
	return nil
}

func (p *Platform) Shutdown() error {
	if p.ticker != nil {
		p.ticker.Stop()
		p.ticker = nil
	}
	p.isShutdown = true
	return nil
}

/**
 * @brief Waits for the next frame. Returns false once the context passed
 * to Startup is done or the platform was shut down.
 */
func (p *Platform) PumpMessages() bool {
	if p.isShutdown || p.ctx == nil {
		return false
	}
	if p.ticker == nil {
		return p.ctx.Err() == nil
	}
	select {
	case <-p.ctx.Done():
		return false
	case <-p.ticker.C:
		return true
	}
}

// GetAbsoluteTime returns the seconds elapsed since Startup.
func (p *Platform) GetAbsoluteTime() float64 {
	return p.time.Now().Sub(p.startTime).Seconds()
}

func (p *Platform) Sleep(ms float64) {
	time.Sleep(time.Duration(ms * float64(time.Millisecond)))
}

func (p *Platform) SetFramebufferSizeCallback(cb FramebufferSizeCallback) {
	p.onResize = cb
}

// SetFramebufferSize changes the size of the output surface.
func (p *Platform) SetFramebufferSize(width, height uint32) {
	if width == p.width && height == p.height {
		return
	}
	p.width, p.height = width, height
	if p.onResize != nil {
		p.onResize(width, height)
	}
}

func (p *Platform) GetFramebufferSize() (uint32, uint32) {
	return p.width, p.height
}
