package rod

import (
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
)

// DefaultRecycleAfter is the number of renders after which the browser
// process is replaced. Chrome memory grows with every tab even once the
// tab is closed.
const DefaultRecycleAfter = 75

// launchFlags keep background tabs rendering at full speed when several
// pages load concurrently.
var launchFlags = []flags.Flag{
	"disable-background-timer-throttling",
	"disable-backgrounding-occluded-windows",
	"disable-renderer-backgrounding",
	"disable-dev-shm-usage",
	"disable-hang-monitor",
}

// instance is one launched Chrome process and its connection. The counters
// are guarded by the owning Renderer's mutex.
type instance struct {
	browser  *rod.Browser
	launcher *launcher.Launcher

	// renders counts tabs opened on this instance; active counts the ones
	// still open.
	renders int64
	active  int
}

// launch starts a headless Chrome process and connects to it.
func launch() (*instance, error) {
	l := launcher.New().Leakless(true).Headless(true)
	for _, f := range launchFlags {
		l = l.Set(f)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}
	return &instance{browser: browser, launcher: l}, nil
}

// shutdown closes the connection and kills the process.
func (i *instance) shutdown() error {
	err := i.browser.Close()
	i.launcher.Kill()
	return err
}

// acquire returns the browser instance a new render should use and counts
// the render against it. When the current instance has reached the recycle
// limit a replacement is launched; the old instance is shut down once its
// open tabs are released. A failed relaunch keeps the old instance.
func (r *Renderer) acquire() (*instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return nil, errClosed
	}
	if r.recycleAfter > 0 && r.current.renders >= r.recycleAfter {
		if next, err := launch(); err == nil {
			r.retire(r.current)
			r.current = next
		}
	}
	r.current.renders++
	r.current.active++
	return r.current, nil
}

// release marks one render on inst as finished.
func (r *Renderer) release(inst *instance) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst.active--
	if _, ok := r.retired[inst]; ok && inst.active == 0 {
		delete(r.retired, inst)
		_ = inst.shutdown()
	}
}

// retire schedules inst for shutdown. Must be called with mu held.
func (r *Renderer) retire(inst *instance) {
	if inst.active == 0 {
		_ = inst.shutdown()
		return
	}
	r.retired[inst] = struct{}{}
}
