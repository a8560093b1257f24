package kernel

import (
	"fmt"
	"io"
	"time"
)

// displayInterval is the minimum time between rolling throughput prints.
const displayInterval = time.Second

// sentinelFPS is reported when the measured interval is zero.
const sentinelFPS = 999.99

// perfMonitor tracks frame counts and timestamps for the optional
// performance test. Display is driven purely by comparing timestamps
// during Start; there are no timers or background goroutines.
type perfMonitor struct {
	out io.Writer
	now func() time.Time

	started             bool
	frames              uint64
	start               time.Time
	lastDisplay         time.Time
	lastDisplayedFrames uint64
}

func newPerfMonitor(out io.Writer) *perfMonitor {
	return &perfMonitor{out: out, now: time.Now}
}

// begin records the start timestamp on the first processed frame.
// Subsequent calls are no-ops.
func (p *perfMonitor) begin() {
	if p.started {
		return
	}
	p.start = p.now()
	p.lastDisplay = p.start
	p.started = true
}

// frameDone counts one successfully processed frame and prints the
// rolling throughput once at least a second has elapsed since the last
// display.
func (p *perfMonitor) frameDone() {
	if !p.started {
		return
	}
	p.frames++

	now := p.now()
	if now.Sub(p.lastDisplay) < displayInterval {
		return
	}
	elapsed := now.Sub(p.lastDisplay).Seconds()
	fps := sentinelFPS
	if elapsed > 0 {
		fps = float64(p.frames-p.lastDisplayedFrames) / elapsed
	}
	p.lastDisplay = now
	p.lastDisplayedFrames = p.frames
	fmt.Fprintf(p.out, "\rframe=%5d fps=%6.*f        \r", p.frames, fpsPrecision(fps), fps)
}

// finish prints the overall average throughput for the run.
func (p *perfMonitor) finish() {
	if !p.started {
		return
	}
	elapsed := p.now().Sub(p.start).Seconds()
	fps := sentinelFPS
	if elapsed > 0 {
		fps = float64(p.frames) / elapsed
	}
	fmt.Fprintf(p.out, "\rframe=%5d fps=%6.*f        \n", p.frames, fpsPrecision(fps), fps)
}

func (p *perfMonitor) reset() {
	p.started = false
	p.frames = 0
	p.lastDisplayedFrames = 0
	p.start = time.Time{}
	p.lastDisplay = time.Time{}
}

// fpsPrecision matches the display rule: three decimals below 9.995,
// two at or above it.
func fpsPrecision(fps float64) int {
	if fps < 9.995 {
		return 3
	}
	return 2
}
