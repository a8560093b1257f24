package kernel

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestMonitor() (*perfMonitor, *fakeClock, *bytes.Buffer) {
	var buf bytes.Buffer
	clock := &fakeClock{t: time.Unix(1000, 0)}
	p := newPerfMonitor(&buf)
	p.now = clock.now
	return p, clock, &buf
}

func TestPerfNoDisplayBeforeInterval(t *testing.T) {
	p, clock, buf := newTestMonitor()

	p.begin()
	for i := 0; i < 5; i++ {
		clock.advance(100 * time.Millisecond)
		p.frameDone()
	}
	assert.Empty(t, buf.String(), "no display before a full second elapses")
}

func TestPerfDisplayAfterInterval(t *testing.T) {
	p, clock, buf := newTestMonitor()

	p.begin()
	for i := 0; i < 10; i++ {
		clock.advance(120 * time.Millisecond)
		p.frameDone()
	}

	// 10 frames over 1.2s: below ten fps, three decimals.
	assert.Equal(t, "\rframe=   10 fps= 8.333        \r", buf.String())
}

func TestPerfDisplayRateResetsBetweenPrints(t *testing.T) {
	p, clock, buf := newTestMonitor()

	p.begin()
	clock.advance(time.Second)
	p.frameDone()
	buf.Reset()

	// The second window counts only frames since the last display.
	for i := 0; i < 20; i++ {
		clock.advance(50 * time.Millisecond)
		p.frameDone()
	}
	assert.Equal(t, "\rframe=   21 fps= 20.00        \r", buf.String())
}

func TestPerfFinish(t *testing.T) {
	p, clock, buf := newTestMonitor()

	p.begin()
	for i := 0; i < 4; i++ {
		clock.advance(100 * time.Millisecond)
		p.frameDone()
	}
	buf.Reset()
	p.finish()

	// 4 frames over 0.4s, reported as a final line.
	assert.Equal(t, "\rframe=    4 fps= 10.00        \n", buf.String())
}

func TestPerfFinishZeroElapsed(t *testing.T) {
	p, _, buf := newTestMonitor()

	p.begin()
	p.finish()

	assert.Equal(t, "\rframe=    0 fps=999.99        \n", buf.String())
}

func TestPerfFinishWithoutBegin(t *testing.T) {
	p, _, buf := newTestMonitor()
	p.finish()
	assert.Empty(t, buf.String())
}

func TestPerfReset(t *testing.T) {
	p, clock, buf := newTestMonitor()

	p.begin()
	clock.advance(time.Second)
	p.frameDone()
	p.reset()

	require.False(t, p.started)
	assert.Zero(t, p.frames)

	buf.Reset()
	p.frameDone()
	assert.Empty(t, buf.String(), "frames before begin are not counted")
}

func TestFpsPrecision(t *testing.T) {
	assert.Equal(t, 3, fpsPrecision(0))
	assert.Equal(t, 3, fpsPrecision(9.99))
	assert.Equal(t, 2, fpsPrecision(9.995))
	assert.Equal(t, 2, fpsPrecision(15.2))
	assert.Equal(t, 2, fpsPrecision(sentinelFPS))

	assert.Equal(t, "9.990", fmt.Sprintf("%.*f", fpsPrecision(9.99), 9.99))
	assert.Equal(t, "15.20", fmt.Sprintf("%.*f", fpsPrecision(15.2), 15.2))
}
