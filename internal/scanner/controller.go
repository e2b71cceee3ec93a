package scanner

import (
	"context"
	"strings"
	"sync"
	"time"

	"price-lookup/internal/models"

	"go.uber.org/zap"
)

// DefaultWarmup is how long decodes are ignored after the device (re)starts.
const DefaultWarmup = 600 * time.Millisecond

// Camera is an exclusively owned scanning device.
// onDecode may be called from any goroutine.
type Camera interface {
	Devices(ctx context.Context) ([]Device, error)
	Start(ctx context.Context, deviceID string, onDecode func(text string)) error
	Pause() error
	Resume() error
	Stop() error
	// Scanning reports whether the device is started, paused or not
	Scanning() bool
}

// Searcher runs inventory searches against the API.
type Searcher interface {
	Search(ctx context.Context, q models.SearchQuery) (*models.SearchResult, error)
}

// View is the operator-facing surface.
type View interface {
	Alert(a Alert)
	// OpenDetail navigates to the detail of ref
	OpenDetail(ref models.ItemRef)
	// NeedsGesture asks the operator to start the device explicitly
	NeedsGesture()
}

type Options struct {
	Camera      Camera
	Searcher    Searcher
	Preferences Preferences
	View        View
	Logger      *zap.Logger

	DedupeWindow time.Duration
	Warmup       time.Duration
	PrimeTTL     time.Duration

	// Visible gates automatic starts; nil means always visible
	Visible      func() bool
	// OnTransition observes every state change
	OnTransition func(from, to State)
	// Now is the clock; nil means time.Now
	Now          func() time.Time
}

// Controller is the scan loop state machine.
type Controller struct {
	camera   Camera
	searcher Searcher
	prefs    Preferences
	view     View
	logger   *zap.Logger

	dedupe   *Dedupe
	flight   FlightGuard
	warmup   time.Duration
	primeTTL time.Duration

	visible      func() bool
	onTransition func(from, to State)
	now          func() time.Time

	mu         sync.Mutex
	state      State
	devices    []Device
	device     Device
	readyAt    time.Time
	detailOpen bool
}

func NewController(opts Options) *Controller {
	c := &Controller{
		camera:       opts.Camera,
		searcher:     opts.Searcher,
		prefs:        opts.Preferences,
		view:         opts.View,
		logger:       opts.Logger,
		dedupe:       NewDedupe(opts.DedupeWindow),
		warmup:       opts.Warmup,
		primeTTL:     opts.PrimeTTL,
		visible:      opts.Visible,
		onTransition: opts.OnTransition,
		now:          opts.Now,
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.warmup < 0 {
		c.warmup = 0
	}
	if c.primeTTL <= 0 {
		c.primeTTL = DefaultPrimeTTL
	}
	if c.visible == nil {
		c.visible = func() bool { return true }
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Device returns the selected device.
func (c *Controller) Device() Device {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.device
}

// Devices returns the last enumerated devices.
func (c *Controller) Devices() []Device {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Device(nil), c.devices...)
}

func (c *Controller) DetailOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.detailOpen
}

func (c *Controller) setState(to State) {
	c.mu.Lock()
	from := c.state
	c.state = to
	c.mu.Unlock()

	if from == to {
		return
	}
	c.logger.Debug("Scan state", zap.Stringer("from", from), zap.Stringer("to", to))
	if c.onTransition != nil {
		c.onTransition(from, to)
	}
}

// Start enumerates devices, selects one and starts scanning.
// It is the explicit, operator-initiated start.
func (c *Controller) Start(ctx context.Context) error {
	c.setState(StateEnumeratingCameras)

	devices, err := c.camera.Devices(ctx)
	if err == nil && len(devices) == 0 {
		err = &NoDeviceError{}
	}
	if err != nil {
		return c.cameraFailed(err)
	}

	remembered, err := c.prefs.LastDevice(ctx)
	if err != nil {
		c.logger.Warn("Could not read remembered device", zap.Error(err))
		remembered = ""
	}
	device, _ := SelectDevice(devices, remembered)

	c.mu.Lock()
	c.devices = devices
	c.device = device
	c.mu.Unlock()
	c.setState(StateCameraSelected)

	if err := c.startDevice(ctx, device); err != nil {
		return c.cameraFailed(err)
	}
	return nil
}

// AutoStart starts scanning without an operator gesture. It only proceeds
// when the station is visible and a priming signal is pending; the signal
// is consumed by the attempt.
func (c *Controller) AutoStart(ctx context.Context) (bool, error) {
	if !c.visible() {
		c.logger.Debug("Auto-start suppressed: station not visible")
		return false, nil
	}

	primed, err := c.prefs.ConsumePrimed(ctx)
	if err != nil {
		c.logger.Warn("Could not read priming signal", zap.Error(err))
		primed = false
	}
	if !primed {
		c.view.NeedsGesture()
		return false, nil
	}
	return true, c.Start(ctx)
}

func (c *Controller) startDevice(ctx context.Context, device Device) error {
	if c.camera.Scanning() {
		if err := c.camera.Stop(); err != nil {
			c.logger.Warn("Could not stop previous device", zap.Error(err))
		}
	}

	c.mu.Lock()
	c.readyAt = c.now().Add(c.warmup)
	c.mu.Unlock()

	onDecode := func(text string) { c.HandleDecode(ctx, text) }
	if err := c.camera.Start(ctx, device.ID, onDecode); err != nil {
		return err
	}

	if err := c.prefs.SaveDevice(ctx, device.ID); err != nil {
		c.logger.Warn("Could not remember device", zap.String("device", device.ID), zap.Error(err))
	}
	c.logger.Info("Scanning", zap.String("device", device.ID), zap.String("label", device.Label))
	c.setState(StateScanning)
	return nil
}

func (c *Controller) cameraFailed(err error) error {
	alert, needsGesture := CameraAlert(err)
	c.logger.Warn("Scanner start failed", zap.String("category", alert.Category), zap.Error(err))
	c.setState(StateError)
	c.view.Alert(alert)
	if needsGesture {
		c.view.NeedsGesture()
	}
	return err
}

// HandleDecode processes one decoded text from the device.
func (c *Controller) HandleDecode(ctx context.Context, text string) Outcome {
	text = strings.TrimSpace(text)
	if text == "" {
		return OutcomeIgnored
	}

	now := c.now()
	c.mu.Lock()
	ignore := c.detailOpen || now.Before(c.readyAt)
	c.mu.Unlock()
	if ignore {
		return OutcomeIgnored
	}

	if !c.flight.TryAcquire() {
		return OutcomeIgnored
	}
	defer c.flight.Release()

	if !c.dedupe.Accept(text, now) {
		return OutcomeIgnored
	}

	c.setState(StatePausedAwaitingResult)
	if err := c.camera.Pause(); err != nil {
		c.logger.Debug("Pause failed", zap.Error(err))
	}
	return c.lookup(ctx, text, true)
}

// ManualSearch runs typed text through the same classify-and-search path.
func (c *Controller) ManualSearch(ctx context.Context, text string) Outcome {
	text = strings.TrimSpace(text)
	if text == "" {
		return OutcomeIgnored
	}
	if !c.flight.TryAcquire() {
		return OutcomeIgnored
	}
	defer c.flight.Release()

	return c.lookup(ctx, text, false)
}

func (c *Controller) lookup(ctx context.Context, text string, paused bool) Outcome {
	q := Classify(text)
	res, err := c.searcher.Search(ctx, q)
	if err != nil {
		c.logger.Warn("Search failed", zap.String("text", text), zap.Error(err))
		c.view.Alert(SearchAlert(err))
		c.settle(ctx, StateError, paused)
		return OutcomeFailed
	}
	if !res.OK {
		c.view.Alert(Alert{AlertError, CategoryServer, "server query failed"})
		c.settle(ctx, StateError, paused)
		return OutcomeFailed
	}
	if len(res.Data) == 0 {
		c.view.Alert(NotFoundAlert())
		c.settle(ctx, StateNoMatch, paused)
		return OutcomeNoMatch
	}

	ref := models.ItemRef{Reference: res.Data[0].Reference}
	if q.Barcode != "" {
		ref = models.ItemRef{Barcode: q.Barcode}
	} else if ref.Reference == "" {
		ref.Reference = q.Reference
	}

	c.leaveForDetail(ctx)
	c.view.OpenDetail(ref)
	return OutcomeMatch
}

// settle passes through the outcome state and returns to scanning,
// resuming the device when it was paused for this search.
func (c *Controller) settle(ctx context.Context, outcome State, paused bool) {
	c.setState(outcome)

	if !c.camera.Scanning() {
		c.setState(StateIdle)
		return
	}
	if paused {
		if err := c.camera.Resume(); err != nil {
			c.logger.Warn("Resume failed, restarting device", zap.Error(err))
			if err := c.startDevice(ctx, c.Device()); err != nil {
				c.cameraFailed(err)
				return
			}
		}
	}
	c.setState(StateScanning)
}

// leaveForDetail stops the device and leaves a priming signal when it was running.
func (c *Controller) leaveForDetail(ctx context.Context) {
	if c.camera.Scanning() {
		if err := c.prefs.SetPrimed(ctx, c.primeTTL); err != nil {
			c.logger.Warn("Could not set priming signal", zap.Error(err))
		}
		if err := c.camera.Stop(); err != nil {
			c.logger.Warn("Could not stop device", zap.Error(err))
		}
	}

	c.mu.Lock()
	c.detailOpen = true
	c.mu.Unlock()
	c.setState(StateMatchFound)
}

// CloseDetail is the "scan another" action: it leaves the detail view and
// re-arms scanning through AutoStart.
func (c *Controller) CloseDetail(ctx context.Context) (bool, error) {
	c.mu.Lock()
	c.detailOpen = false
	c.readyAt = c.now().Add(c.warmup)
	c.mu.Unlock()

	return c.AutoStart(ctx)
}

// SwitchCamera selects id and remembers it. A running device is restarted on id.
func (c *Controller) SwitchCamera(ctx context.Context, id string) error {
	devices := c.Devices()
	if len(devices) == 0 {
		var err error
		if devices, err = c.camera.Devices(ctx); err != nil {
			return c.cameraFailed(err)
		}
		c.mu.Lock()
		c.devices = devices
		c.mu.Unlock()
	}

	var (
		device Device
		found  bool
	)
	for _, d := range devices {
		if d.ID == id {
			device, found = d, true
			break
		}
	}
	if !found {
		c.view.Alert(Alert{AlertWarn, CategorySwitchCamera, "could not switch scanner: unknown device " + id})
		return &NoDeviceError{Device: id}
	}

	c.mu.Lock()
	c.device = device
	c.mu.Unlock()
	if err := c.prefs.SaveDevice(ctx, id); err != nil {
		c.logger.Warn("Could not remember device", zap.String("device", id), zap.Error(err))
	}

	if !c.camera.Scanning() {
		return nil
	}
	if err := c.startDevice(ctx, device); err != nil {
		c.view.Alert(Alert{AlertWarn, CategorySwitchCamera, "could not switch scanner"})
		c.setState(StateError)
		return err
	}
	return nil
}

// Stop releases the device.
func (c *Controller) Stop() error {
	var err error
	if c.camera.Scanning() {
		err = c.camera.Stop()
	}
	c.setState(StateIdle)
	return err
}
