package app

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"toorak_vpn/internal/model"
	"toorak_vpn/internal/simulator"
	"toorak_vpn/internal/utils/log"

	"github.com/gdamore/tcell/v2"
	"github.com/gorilla/websocket"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

const recentLimit = 5

type (
	App struct {
		app    *tview.Application
		routes *tview.TextView
		stats  *tview.TextView
		status *tview.TextView

		host      string
		clientID  string
		interval  time.Duration
		generator *simulator.Generator

		mu       sync.Mutex
		recent   []*model.ProtectedRecord
		counts   model.RouteStats
		rejected uint64

		// writeMu serializes writes on conn; gorilla/websocket allows one
		// concurrent writer.
		writeMu  sync.Mutex
		conn     *websocket.Conn
		done     chan struct{}
		stopOnce sync.Once
	}
)

func NewApp(host, clientID string, interval time.Duration, generator *simulator.Generator) *App {
	return &App{
		app:       tview.NewApplication(),
		host:      host,
		clientID:  clientID,
		interval:  interval,
		generator: generator,
		done:      make(chan struct{}),
	}
}

func (c *App) Run() error {
	conn, err := c.initStream()
	if err != nil {
		return fmt.Errorf("init stream to server failed: %w", err)
	}
	c.conn = conn

	go c.listenOnStream()
	go c.generate()
	return c.renderUI()
}

// Stop is safe to call more than once and from any goroutine.
func (c *App) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.writeMu.Lock()
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			c.writeMu.Unlock()
			c.conn.Close()
		}
		c.app.Stop()
	})
}

func (c *App) send(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

// blocking function
func (c *App) renderUI() error {
	c.routes = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	c.routes.SetBorder(true).SetTitle(" Toorak VPN Router ")

	c.stats = tview.NewTextView().SetDynamicColors(true)
	c.stats.SetBorder(true).SetTitle(" Stats ")

	c.status = tview.NewTextView().SetDynamicColors(true)
	c.status.SetBorder(true).SetTitle(" Reveal (r) / Quit (q) ")

	c.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'q':
			c.Stop()
			return nil
		case 'r':
			go c.revealLatest()
			return nil
		}
		return event
	})

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(c.stats, 4, 0, false).
		AddItem(c.routes, 0, 1, false).
		AddItem(c.status, 3, 0, false)

	return c.app.SetRoot(layout, true).Run()
}

func (c *App) generate() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.send(c.generator.Next()); err != nil {
				select {
				case <-c.done:
				default:
					c.app.Suspend(func() {
						log.Error("send packet failed", zap.Error(err))
					})
				}
				return
			}
		}
	}
}

func (c *App) listenOnStream() {
	for {
		var event model.StreamEvent
		if err := c.conn.ReadJSON(&event); err != nil {
			log.Debug("stream closed", zap.Error(err))
			c.conn.Close()
			return
		}

		c.mu.Lock()
		if event.Record != nil {
			c.recent = pushRecent(c.recent, event.Record, recentLimit)
			c.counts = tally(c.counts, event.Record.Tier)
		} else {
			c.rejected++
		}
		routes := renderRoutes(c.recent)
		stats := renderStats(c.counts, c.rejected)
		c.mu.Unlock()

		c.app.QueueUpdateDraw(func() {
			c.routes.SetText(routes)
			c.stats.SetText(stats)
		})
	}
}

func (c *App) revealLatest() {
	c.mu.Lock()
	var latest *model.ProtectedRecord
	if len(c.recent) > 0 {
		latest = c.recent[0]
	}
	c.mu.Unlock()

	var text string
	if latest == nil {
		text = "[gray]nothing routed yet[-]"
	} else if res, err := c.revealPacket(latest.MessageID); err != nil {
		text = fmt.Sprintf("[red]reveal %s failed:[-] %v", latest.MessageID, err)
	} else {
		text = fmt.Sprintf("[green]%s:[-] %s", latest.MessageID, tview.Escape(res.Payload))
	}

	c.app.QueueUpdateDraw(func() {
		c.status.SetText(text)
	})
}

// pushRecent prepends rec and keeps at most limit records, newest first.
func pushRecent(recent []*model.ProtectedRecord, rec *model.ProtectedRecord, limit int) []*model.ProtectedRecord {
	out := make([]*model.ProtectedRecord, 0, limit)
	out = append(out, rec)
	for _, r := range recent {
		if len(out) == limit {
			break
		}
		out = append(out, r)
	}
	return out
}

func tally(s model.RouteStats, tier model.Tier) model.RouteStats {
	s.TotalProcessed++
	switch tier {
	case model.TierJustice:
		s.Justice++
	case model.TierLawEnforcement:
		s.LawEnforcement++
	default:
		s.Standard++
	}
	return s
}

func tierColor(tier model.Tier) string {
	switch tier {
	case model.TierJustice:
		return "purple"
	case model.TierLawEnforcement:
		return "blue"
	default:
		return "gray"
	}
}

func renderRoutes(recent []*model.ProtectedRecord) string {
	var b strings.Builder
	for _, r := range recent {
		fmt.Fprintf(&b, "[%s]From: %s[-]\n", tierColor(r.Tier), r.SourcePseudonym)
		fmt.Fprintf(&b, "To: %s\n", tview.Escape(r.Destination))
		fmt.Fprintf(&b, "Priority: %s  Classification: %s\n", r.Tier, r.Classification)
		fmt.Fprintf(&b, "Data: %s\n", tview.Escape("[ENCRYPTED]"))
		fmt.Fprintf(&b, "[gray]Status: Secure Routing...[-]\n\n")
	}
	return b.String()
}

func renderStats(s model.RouteStats, rejected uint64) string {
	return fmt.Sprintf(
		"Total Processed: [blue]%d[-]  Law enforcement: %d  Justice: %d  Standard: %d\nRejected: %d",
		s.TotalProcessed, s.LawEnforcement, s.Justice, s.Standard, rejected)
}
