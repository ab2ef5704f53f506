// Package tray renders the badge on the system tray. It is the production
// indicator adapter; headless runs use the log adapter instead.
package tray

import (
	"sync"

	"github.com/Nexus-Agni/just-server-vpn-proxy/models"

	"fyne.io/systray"
)

const appTitle = "Proxy"

// Indicator projects the badge onto the tray item's title and tooltip.
// Set may be called before the tray loop is ready; the last badge is
// replayed once it is.
type Indicator struct {
	mu     sync.Mutex
	ready  bool
	last   models.Badge
	onExit func()
}

func New() *Indicator {
	return &Indicator{}
}

// Run starts the tray loop and blocks until the tray exits. onExit is
// invoked when the user picks Quit from the tray menu.
func (i *Indicator) Run(onExit func()) {
	i.mu.Lock()
	i.onExit = onExit
	i.mu.Unlock()
	systray.Run(i.onReady, onExit)
}

// Quit tears the tray down, unblocking Run.
func (i *Indicator) Quit() {
	systray.Quit()
}

// Set renders the badge. Implements core.Indicator.
func (i *Indicator) Set(b models.Badge) {
	i.mu.Lock()
	i.last = b
	ready := i.ready
	i.mu.Unlock()
	if ready {
		apply(b)
	}
}

func (i *Indicator) onReady() {
	systray.SetTitle(appTitle)
	systray.SetTooltip("Proxy redirection controller")

	quitItem := systray.AddMenuItem("Quit", "Stop the controller")
	go func() {
		<-quitItem.ClickedCh
		systray.Quit()
	}()

	i.mu.Lock()
	i.ready = true
	last := i.last
	i.mu.Unlock()
	apply(last)
}

func apply(b models.Badge) {
	switch b.Text {
	case models.BadgeTextOn:
		systray.SetTitle(appTitle + " " + models.BadgeTextOn)
		systray.SetTooltip("Proxy redirection enabled")
	case models.BadgeTextError:
		systray.SetTitle(appTitle + " " + models.BadgeTextError)
		systray.SetTooltip("Last rule engine operation failed")
	default:
		systray.SetTitle(appTitle)
		systray.SetTooltip("Proxy redirection disabled")
	}
}
