package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"price-lookup/internal/apiclient"
	"price-lookup/internal/models"
	"price-lookup/internal/presenter"
	"price-lookup/internal/scanner"

	"go.uber.org/zap"
)

var errQuit = errors.New("operator quit")

// stationController is the part of scanner.Controller the console drives.
type stationController interface {
	Start(ctx context.Context) error
	Stop() error
	ManualSearch(ctx context.Context, text string) scanner.Outcome
	CloseDetail(ctx context.Context) (bool, error)
	SwitchCamera(ctx context.Context, id string) error
	Devices() []scanner.Device
	Device() scanner.Device
	DetailOpen() bool
	State() scanner.State
}

// stationAPI is the part of apiclient.Client used by console commands.
type stationAPI interface {
	Health(ctx context.Context) (*apiclient.HealthStatus, error)
	DBHealth(ctx context.Context) (*apiclient.DBHealth, error)
	RetailRate(ctx context.Context) (*models.RateQuote, error)
}

type resetter interface {
	Reset(ctx context.Context) error
}

// consoleView prints alerts and item details on the station terminal.
type consoleView struct {
	out    io.Writer
	detail *presenter.Detail
	clip   presenter.Clipboard
	logger *zap.Logger

	mu      sync.Mutex
	ctx     context.Context
	current *models.InventoryItem
}

func newConsoleView(ctx context.Context, out io.Writer, detail *presenter.Detail, clip presenter.Clipboard, logger *zap.Logger) *consoleView {
	return &consoleView{ctx: ctx, out: out, detail: detail, clip: clip, logger: logger}
}

func (v *consoleView) printf(format string, args ...interface{}) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, format, args...)
}

func (v *consoleView) Alert(a scanner.Alert) {
	v.printf("[%s] %s\n", strings.ToUpper(string(a.Kind)), a.Message)
}

func (v *consoleView) NeedsGesture() {
	v.printf("Scanner is stopped. Type :start to scan or :q <code> to search.\n")
}

func (v *consoleView) OpenDetail(ref models.ItemRef) {
	v.mu.Lock()
	defer v.mu.Unlock()

	fmt.Fprintln(v.out)
	item, err := v.detail.Show(v.ctx, v.out, ref)
	if err != nil {
		v.logger.Debug("Detail not shown", zap.Error(err))
	}
	v.current = item
	fmt.Fprintln(v.out, "\nEnter: scan another   :copy ref|barcode|price|cost")
}

func (v *consoleView) copy(field string) {
	v.mu.Lock()
	item := v.current
	v.mu.Unlock()

	if item == nil {
		v.printf("Nothing to copy.\n")
		return
	}
	feedback, err := presenter.CopyField(v.clip, *item, field)
	if err != nil && feedback == "" {
		v.printf("%v\n", err)
		return
	}
	v.printf("%s\n", feedback)
}

func (v *consoleView) closeDetail() {
	v.mu.Lock()
	v.current = nil
	v.mu.Unlock()
}

// console reads operator input: ":" lines are commands, anything else is a
// code typed by a keyboard-wedge scanner.
type console struct {
	ctrl   stationController
	api    stationAPI
	prefs  resetter
	view   *consoleView
	wedge  chan<- string
	logger *zap.Logger
}

// readLines forwards in line by line and closes the channel at EOF.
func readLines(in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()
	return lines
}

// run handles lines until ctx is done, input ends (io.EOF) or the operator quits (errQuit).
func (c *console) run(ctx context.Context, lines <-chan string) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return io.EOF
			}
			if err := c.handle(ctx, line); err != nil {
				return err
			}
		}
	}
}

func (c *console) handle(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)

	if !strings.HasPrefix(line, ":") {
		if line == "" && c.ctrl.DetailOpen() {
			c.next(ctx)
			return nil
		}
		if line == "" {
			return nil
		}
		select {
		case c.wedge <- line:
		default:
			c.logger.Debug("Wedge line dropped", zap.String("line", line))
		}
		return nil
	}

	cmd, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "q", "search":
		if arg == "" {
			c.view.printf("usage: :q <barcode or reference>\n")
			return nil
		}
		if c.ctrl.ManualSearch(ctx, arg) == scanner.OutcomeIgnored {
			c.view.printf("A search is already running.\n")
		}
	case "next":
		c.next(ctx)
	case "start":
		if err := c.ctrl.Start(ctx); err == nil {
			d := c.ctrl.Device()
			c.view.printf("Scanning with %s (%s).\n", d.Label, d.ID)
		}
	case "stop":
		if err := c.ctrl.Stop(); err != nil {
			c.logger.Warn("Stop failed", zap.Error(err))
		}
		c.view.printf("Scanner stopped.\n")
	case "cams":
		current := c.ctrl.Device().ID
		for _, d := range c.ctrl.Devices() {
			mark := " "
			if d.ID == current {
				mark = "*"
			}
			c.view.printf("%s %s\t%s\n", mark, d.ID, d.Label)
		}
	case "cam":
		if arg == "" {
			c.view.printf("usage: :cam <device>\n")
			return nil
		}
		if err := c.ctrl.SwitchCamera(ctx, arg); err == nil {
			c.view.printf("Scanner set to %s.\n", arg)
		}
	case "copy":
		c.view.copy(arg)
	case "rate":
		c.rate(ctx)
	case "health":
		c.health(ctx)
	case "reset":
		if err := c.prefs.Reset(ctx); err != nil {
			c.view.printf("Could not reset station preferences: %v\n", err)
			return nil
		}
		c.view.printf("Station preferences cleared.\n")
	case "state":
		c.view.printf("%s\n", c.ctrl.State())
	case "quit", "exit":
		return errQuit
	case "help", "?":
		c.view.printf("%s", helpText)
	default:
		c.view.printf("unknown command %q, try :help\n", cmd)
	}
	return nil
}

func (c *console) next(ctx context.Context) {
	c.view.closeDetail()
	started, err := c.ctrl.CloseDetail(ctx)
	if err == nil && started {
		c.view.printf("Ready to scan.\n")
	}
}

func (c *console) rate(ctx context.Context) {
	quote, err := c.api.RetailRate(ctx)
	if err != nil {
		c.view.printf("Could not read the retail rate: %v\n", err)
		return
	}
	c.view.printf("Retail rate: %s\n", presenter.FormatCurrency(&quote.Value, presenter.VES))
}

func (c *console) health(ctx context.Context) {
	if h, err := c.api.Health(ctx); err != nil {
		c.view.printf("API: %v\n", err)
	} else {
		c.view.printf("API: %s (uptime %.0fs)\n", h.Status, h.Uptime)
	}

	db, err := c.api.DBHealth(ctx)
	var apiErr *apiclient.APIError
	switch {
	case err == nil:
		c.view.printf("Database: %s\n", db.DB)
	case errors.As(err, &apiErr) && apiErr.DB != "":
		c.view.printf("Database: %s\n", apiErr.DB)
	default:
		c.view.printf("Database: %v\n", err)
	}
}

const helpText = `Scan a code, or type a command:
  :q <text>        search by barcode (digits) or reference
  Enter / :next    close the detail and scan another
  :copy <field>    copy ref, barcode, price or cost of the shown item
  :start / :stop   start or stop the scanner
  :cams            list scanners
  :cam <device>    switch scanner
  :rate            show the retail rate
  :health          check API and database
  :reset           forget the remembered scanner
  :quit            exit
`
