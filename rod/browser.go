package rod

import (
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultRecycleAfter is the number of tabs a Chrome process serves before
// it is replaced.
const DefaultRecycleAfter = 100

// tabPool hands out tabs from one Chrome process and swaps the process for
// a fresh one every recycleAfter tabs. Chrome's memory footprint keeps
// growing across tabs, so long crawls would otherwise degrade.
type tabPool struct {
	mu           sync.Mutex
	chrome       *rod.Browser
	proc         *launcher.Launcher
	served       int64
	recycleAfter int64
	noSandbox    bool
	closed       bool
}

func newTabPool(recycleAfter int64, noSandbox bool) (*tabPool, error) {
	if recycleAfter <= 0 {
		recycleAfter = DefaultRecycleAfter
	}
	p := &tabPool{recycleAfter: recycleAfter, noSandbox: noSandbox}
	chrome, proc, err := startChrome(noSandbox)
	if err != nil {
		return nil, err
	}
	p.chrome, p.proc = chrome, proc
	return p, nil
}

// open returns a blank tab. Tabs still open in a recycled process fail
// and are left to the caller's retry.
func (p *tabPool) open() (*rod.Page, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, fmt.Errorf("browser closed")
	}
	if p.served >= p.recycleAfter {
		p.recycle()
	}

	page, err := p.chrome.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("opening tab: %w", err)
	}
	p.served++
	return page, nil
}

// recycle replaces the Chrome process. A failed launch keeps the old one.
// Must be called with mu held.
func (p *tabPool) recycle() {
	chrome, proc, err := startChrome(p.noSandbox)
	if err != nil {
		return
	}
	_ = p.chrome.Close()
	p.proc.Kill()
	p.chrome, p.proc, p.served = chrome, proc, 0
}

// shutdown stops Chrome. Later calls are no-ops.
func (p *tabPool) shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	err := p.chrome.Close()
	p.proc.Kill()
	return err
}

func (p *tabPool) pid() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0
	}
	return p.proc.PID()
}

func startChrome(noSandbox bool) (*rod.Browser, *launcher.Launcher, error) {
	l := launcher.New().
		Headless(true).
		Leakless(true).
		NoSandbox(noSandbox).
		Set("disable-dev-shm-usage").
		Set("disable-renderer-backgrounding").
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launching chrome: %w", err)
	}
	chrome := rod.New().ControlURL(controlURL)
	if err := chrome.Connect(); err != nil {
		l.Kill()
		return nil, nil, fmt.Errorf("connecting to chrome: %w", err)
	}
	return chrome, l, nil
}
