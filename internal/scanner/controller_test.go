package scanner

import (
	"context"
	"errors"
	"io/fs"
	"sync"
	"testing"
	"time"

	"price-lookup/internal/apiclient"
	"price-lookup/internal/cache"
	"price-lookup/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockSearcher is a mock implementation of Searcher
type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, q models.SearchQuery) (*models.SearchResult, error) {
	args := m.Called(ctx, q)
	if res := args.Get(0); res != nil {
		return res.(*models.SearchResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type fakeCamera struct {
	mu         sync.Mutex
	devices    []Device
	devicesErr error
	startErr   map[string]error
	resumeErr  error

	started  []string
	active   bool
	paused   bool
	pauses   int
	resumes  int
	stops    int
	onDecode func(string)
}

func newFakeCamera(devices ...Device) *fakeCamera {
	return &fakeCamera{devices: devices, startErr: map[string]error{}}
}

func (f *fakeCamera) Devices(ctx context.Context) ([]Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.devices, f.devicesErr
}

func (f *fakeCamera) Start(ctx context.Context, deviceID string, onDecode func(string)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.startErr[deviceID]; err != nil {
		return err
	}
	f.started = append(f.started, deviceID)
	f.active = true
	f.paused = false
	f.onDecode = onDecode
	return nil
}

func (f *fakeCamera) Pause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauses++
	f.paused = true
	return nil
}

func (f *fakeCamera) Resume() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumes++
	if f.resumeErr != nil {
		return f.resumeErr
	}
	f.paused = false
	return nil
}

func (f *fakeCamera) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	f.active = false
	return nil
}

func (f *fakeCamera) Scanning() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func (f *fakeCamera) Started() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.started...)
}

func (f *fakeCamera) emit(text string) {
	f.mu.Lock()
	fn := f.onDecode
	f.mu.Unlock()
	fn(text)
}

type recordingView struct {
	mu       sync.Mutex
	alerts   []Alert
	details  []models.ItemRef
	gestures int
}

func (v *recordingView) Alert(a Alert) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.alerts = append(v.alerts, a)
}

func (v *recordingView) OpenDetail(ref models.ItemRef) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.details = append(v.details, ref)
}

func (v *recordingView) NeedsGesture() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gestures++
}

func (v *recordingView) lastAlert() Alert {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.alerts) == 0 {
		return Alert{}
	}
	return v.alerts[len(v.alerts)-1]
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type harness struct {
	ctrl        *Controller
	camera      *fakeCamera
	searcher    *MockSearcher
	view        *recordingView
	prefs       *CachePreferences
	store       *cache.InMemoryCache
	clock       *fakeClock
	visible     bool
	transitions []State
}

func newHarness(t *testing.T, cam *fakeCamera) *harness {
	t.Helper()
	h := &harness{
		camera:   cam,
		searcher: new(MockSearcher),
		view:     &recordingView{},
		store:    cache.NewInMemoryCache(),
		clock:    &fakeClock{t: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)},
		visible:  true,
	}
	h.prefs = NewCachePreferences(h.store, "test")
	h.ctrl = NewController(Options{
		Camera:       cam,
		Searcher:     h.searcher,
		Preferences:  h.prefs,
		View:         h.view,
		Logger:       zap.NewNop(),
		DedupeWindow: DefaultDedupeWindow,
		Warmup:       DefaultWarmup,
		Visible:      func() bool { return h.visible },
		OnTransition: func(from, to State) { h.transitions = append(h.transitions, to) },
		Now:          h.clock.Now,
	})
	return h
}

// startScanning starts the device and waits out the warm-up.
func (h *harness) startScanning(t *testing.T) {
	t.Helper()
	require.NoError(t, h.ctrl.Start(context.Background()))
	require.Equal(t, StateScanning, h.ctrl.State())
	h.clock.Advance(DefaultWarmup)
}

func (h *harness) primed(t *testing.T) bool {
	t.Helper()
	_, err := h.store.Get(context.Background(), "station:test:primed")
	if errors.Is(err, cache.ErrCacheMiss) {
		return false
	}
	require.NoError(t, err)
	return true
}

func noMatch(by string) *models.SearchResult {
	return &models.SearchResult{OK: true, By: by, One: true, Count: 0, Data: []models.InventoryItem{}}
}

func oneMatch(by string, item models.InventoryItem) *models.SearchResult {
	return &models.SearchResult{OK: true, By: by, One: true, Count: 1, Data: []models.InventoryItem{item}}
}

var wedge = Device{ID: WedgeDeviceID, Label: "Keyboard wedge scanner"}

func TestHandleDecode_DuplicateWithinWindowSearchesOnce(t *testing.T) {
	h := newHarness(t, newFakeCamera(wedge))
	h.startScanning(t)
	h.searcher.On("Search", mock.Anything, models.SearchQuery{Barcode: "7501234567890", One: true}).
		Return(noMatch(models.ByBarcode), nil)

	ctx := context.Background()
	assert.Equal(t, OutcomeNoMatch, h.ctrl.HandleDecode(ctx, "7501234567890"))
	h.clock.Advance(500 * time.Millisecond)
	assert.Equal(t, OutcomeIgnored, h.ctrl.HandleDecode(ctx, "7501234567890"))

	h.searcher.AssertNumberOfCalls(t, "Search", 1)
}

func TestHandleDecode_DuplicateAfterWindowSearchesTwice(t *testing.T) {
	h := newHarness(t, newFakeCamera(wedge))
	h.startScanning(t)
	h.searcher.On("Search", mock.Anything, models.SearchQuery{Barcode: "7501234567890", One: true}).
		Return(noMatch(models.ByBarcode), nil)

	ctx := context.Background()
	assert.Equal(t, OutcomeNoMatch, h.ctrl.HandleDecode(ctx, "7501234567890"))
	h.clock.Advance(2000 * time.Millisecond)
	assert.Equal(t, OutcomeNoMatch, h.ctrl.HandleDecode(ctx, "7501234567890"))

	h.searcher.AssertNumberOfCalls(t, "Search", 2)
}

func TestHandleDecode_ClassifiesBarcodeAndReference(t *testing.T) {
	h := newHarness(t, newFakeCamera(wedge))
	h.startScanning(t)
	h.searcher.On("Search", mock.Anything, models.SearchQuery{Barcode: "1234567890123", One: true}).
		Return(noMatch(models.ByBarcode), nil).Once()
	h.searcher.On("Search", mock.Anything, models.SearchQuery{Reference: "SHIRT-RED-M", One: true}).
		Return(noMatch(models.ByReference), nil).Once()

	ctx := context.Background()
	h.ctrl.HandleDecode(ctx, "1234567890123")
	h.ctrl.HandleDecode(ctx, "SHIRT-RED-M")

	h.searcher.AssertExpectations(t)
}

func TestHandleDecode_DeliveredByDevice(t *testing.T) {
	h := newHarness(t, newFakeCamera(wedge))
	h.startScanning(t)
	h.searcher.On("Search", mock.Anything, models.SearchQuery{Barcode: "42", One: true}).
		Return(noMatch(models.ByBarcode), nil).Once()

	h.camera.emit("42\r")

	h.searcher.AssertExpectations(t)
}

func TestHandleDecode_IgnoredDuringWarmup(t *testing.T) {
	h := newHarness(t, newFakeCamera(wedge))
	require.NoError(t, h.ctrl.Start(context.Background()))
	h.searcher.On("Search", mock.Anything, mock.Anything).Return(noMatch(models.ByBarcode), nil)

	ctx := context.Background()
	assert.Equal(t, OutcomeIgnored, h.ctrl.HandleDecode(ctx, "111"))
	h.clock.Advance(DefaultWarmup - time.Millisecond)
	assert.Equal(t, OutcomeIgnored, h.ctrl.HandleDecode(ctx, "111"))
	h.clock.Advance(time.Millisecond)
	assert.Equal(t, OutcomeNoMatch, h.ctrl.HandleDecode(ctx, "111"))

	h.searcher.AssertNumberOfCalls(t, "Search", 1)
}

func TestHandleDecode_BlankIgnored(t *testing.T) {
	h := newHarness(t, newFakeCamera(wedge))
	h.startScanning(t)

	assert.Equal(t, OutcomeIgnored, h.ctrl.HandleDecode(context.Background(), "  \n"))
	h.searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestHandleDecode_OneSearchInFlight(t *testing.T) {
	h := newHarness(t, newFakeCamera(wedge))
	h.startScanning(t)

	started := make(chan struct{})
	release := make(chan struct{})
	h.searcher.On("Search", mock.Anything, models.SearchQuery{Barcode: "111", One: true}).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(noMatch(models.ByBarcode), nil)

	ctx := context.Background()
	done := make(chan Outcome, 1)
	go func() { done <- h.ctrl.HandleDecode(ctx, "111") }()

	<-started
	assert.Equal(t, StatePausedAwaitingResult, h.ctrl.State())
	assert.Equal(t, OutcomeIgnored, h.ctrl.HandleDecode(ctx, "222"))
	assert.Equal(t, OutcomeIgnored, h.ctrl.ManualSearch(ctx, "333"))
	close(release)

	assert.Equal(t, OutcomeNoMatch, <-done)
	h.searcher.AssertNumberOfCalls(t, "Search", 1)
}

func TestHandleDecode_NoMatchResumesScanning(t *testing.T) {
	h := newHarness(t, newFakeCamera(wedge))
	h.startScanning(t)
	h.searcher.On("Search", mock.Anything, mock.Anything).Return(noMatch(models.ByBarcode), nil)

	assert.Equal(t, OutcomeNoMatch, h.ctrl.HandleDecode(context.Background(), "999"))

	assert.Equal(t, StateScanning, h.ctrl.State())
	assert.Equal(t, 1, h.camera.pauses)
	assert.Equal(t, 1, h.camera.resumes)
	assert.Equal(t, Alert{AlertWarn, CategoryNotFound, "barcode not found"}, h.view.lastAlert())
	assert.Equal(t, []State{
		StateEnumeratingCameras, StateCameraSelected, StateScanning,
		StatePausedAwaitingResult, StateNoMatch, StateScanning,
	}, h.transitions)
}

func TestHandleDecode_MatchStopsDeviceAndOpensDetail(t *testing.T) {
	h := newHarness(t, newFakeCamera(wedge))
	h.startScanning(t)
	item := models.InventoryItem{Reference: "SHIRT-RED-M", Barcode: "7501234567890", Name: "Shirt"}
	h.searcher.On("Search", mock.Anything, models.SearchQuery{Barcode: "7501234567890", One: true}).
		Return(oneMatch(models.ByBarcode, item), nil)

	ctx := context.Background()
	assert.Equal(t, OutcomeMatch, h.ctrl.HandleDecode(ctx, "7501234567890"))

	assert.Equal(t, []models.ItemRef{{Barcode: "7501234567890"}}, h.view.details)
	assert.Equal(t, StateMatchFound, h.ctrl.State())
	assert.True(t, h.ctrl.DetailOpen())
	assert.False(t, h.camera.Scanning())
	assert.True(t, h.primed(t))

	// decodes are ignored while the detail is shown
	h.clock.Advance(5 * time.Second)
	assert.Equal(t, OutcomeIgnored, h.ctrl.HandleDecode(ctx, "123"))
	h.searcher.AssertNumberOfCalls(t, "Search", 1)
}

func TestHandleDecode_ReferenceMatchUsesRowReference(t *testing.T) {
	h := newHarness(t, newFakeCamera(wedge))
	h.startScanning(t)
	item := models.InventoryItem{Reference: "SHIRT-RED-M", Barcode: "7501234567890"}
	h.searcher.On("Search", mock.Anything, models.SearchQuery{Reference: "shirt-red-m", One: true}).
		Return(oneMatch(models.ByReference, item), nil)

	assert.Equal(t, OutcomeMatch, h.ctrl.HandleDecode(context.Background(), "shirt-red-m"))
	assert.Equal(t, []models.ItemRef{{Reference: "SHIRT-RED-M"}}, h.view.details)
}

func TestCloseDetail_RestartsWhenPrimed(t *testing.T) {
	h := newHarness(t, newFakeCamera(wedge))
	h.startScanning(t)
	h.searcher.On("Search", mock.Anything, mock.Anything).
		Return(oneMatch(models.ByBarcode, models.InventoryItem{Barcode: "1"}), nil)
	require.Equal(t, OutcomeMatch, h.ctrl.HandleDecode(context.Background(), "1"))

	started, err := h.ctrl.CloseDetail(context.Background())
	require.NoError(t, err)

	assert.True(t, started)
	assert.False(t, h.ctrl.DetailOpen())
	assert.Equal(t, StateScanning, h.ctrl.State())
	assert.Equal(t, []string{WedgeDeviceID, WedgeDeviceID}, h.camera.Started())
	assert.False(t, h.primed(t), "priming signal is consumed")
	assert.Zero(t, h.view.gestures)

	// the restart has its own warm-up
	assert.Equal(t, OutcomeIgnored, h.ctrl.HandleDecode(context.Background(), "2"))
}

func TestCloseDetail_WithoutPrimingNeedsGesture(t *testing.T) {
	h := newHarness(t, newFakeCamera(wedge))
	h.searcher.On("Search", mock.Anything, models.SearchQuery{Reference: "SHIRT-RED-M", One: true}).
		Return(oneMatch(models.ByReference, models.InventoryItem{Reference: "SHIRT-RED-M"}), nil)

	// manual search from an idle station never starts the device
	assert.Equal(t, OutcomeMatch, h.ctrl.ManualSearch(context.Background(), "SHIRT-RED-M"))
	assert.False(t, h.primed(t))

	started, err := h.ctrl.CloseDetail(context.Background())
	require.NoError(t, err)

	assert.False(t, started)
	assert.Empty(t, h.camera.Started())
	assert.Equal(t, 1, h.view.gestures)
}

func TestAutoStart_SuppressedWhenNotVisible(t *testing.T) {
	h := newHarness(t, newFakeCamera(wedge))
	ctx := context.Background()
	require.NoError(t, h.prefs.SetPrimed(ctx, time.Minute))

	h.visible = false
	started, err := h.ctrl.AutoStart(ctx)
	require.NoError(t, err)
	assert.False(t, started)
	assert.True(t, h.primed(t), "hidden station keeps the signal")
	assert.Zero(t, h.view.gestures)

	h.visible = true
	started, err = h.ctrl.AutoStart(ctx)
	require.NoError(t, err)
	assert.True(t, started)
	assert.Equal(t, StateScanning, h.ctrl.State())
}

func TestHandleDecode_SearchFailureAlertsAndResumes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category string
		message  string
	}{
		{
			name:     "database error",
			err:      &apiclient.APIError{Status: 500, Message: "database query failed", Code: "DATA_SOURCE_ERROR"},
			category: CategoryDatabase,
			message:  "database query failed",
		},
		{
			name:     "upstream error",
			err:      &apiclient.APIError{Status: 502, Message: "Error 502"},
			category: CategoryServer,
			message:  "server query failed",
		},
		{
			name:     "timeout",
			err:      &apiclient.NetworkTimeoutError{Path: "/api/buscar", After: 12 * time.Second},
			category: CategoryServer,
			message:  "server query failed: timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, newFakeCamera(wedge))
			h.startScanning(t)
			h.searcher.On("Search", mock.Anything, mock.Anything).Return(nil, tt.err)

			assert.Equal(t, OutcomeFailed, h.ctrl.HandleDecode(context.Background(), "111"))

			assert.Equal(t, Alert{AlertError, tt.category, tt.message}, h.view.lastAlert())
			assert.Equal(t, StateScanning, h.ctrl.State())
			assert.Contains(t, h.transitions, StateError)
			assert.Equal(t, 1, h.camera.resumes)
		})
	}
}

func TestHandleDecode_NotOKResultIsServerFailure(t *testing.T) {
	h := newHarness(t, newFakeCamera(wedge))
	h.startScanning(t)
	h.searcher.On("Search", mock.Anything, mock.Anything).Return(&models.SearchResult{OK: false}, nil)

	assert.Equal(t, OutcomeFailed, h.ctrl.HandleDecode(context.Background(), "111"))
	assert.Equal(t, CategoryServer, h.view.lastAlert().Category)
}

func TestHandleDecode_ResumeFailureRestartsDevice(t *testing.T) {
	h := newHarness(t, newFakeCamera(wedge))
	h.startScanning(t)
	h.camera.resumeErr = errors.New("stream ended")
	h.searcher.On("Search", mock.Anything, mock.Anything).Return(noMatch(models.ByBarcode), nil)

	assert.Equal(t, OutcomeNoMatch, h.ctrl.HandleDecode(context.Background(), "111"))

	assert.Equal(t, []string{WedgeDeviceID, WedgeDeviceID}, h.camera.Started())
	assert.Equal(t, StateScanning, h.ctrl.State())
}

func TestStart_DeviceFailures(t *testing.T) {
	tests := []struct {
		name     string
		camera   func() *fakeCamera
		category string
		gesture  int
	}{
		{
			name: "permission denied",
			camera: func() *fakeCamera {
				c := newFakeCamera(wedge)
				c.startErr[WedgeDeviceID] = &PermissionError{Device: WedgeDeviceID, Err: fs.ErrPermission}
				return c
			},
			category: CategoryPermission,
			gesture:  1,
		},
		{
			name: "device busy",
			camera: func() *fakeCamera {
				c := newFakeCamera(wedge)
				c.startErr[WedgeDeviceID] = &DeviceBusyError{Device: WedgeDeviceID}
				return c
			},
			category: CategoryBusy,
		},
		{
			name:     "no devices",
			camera:   func() *fakeCamera { return newFakeCamera() },
			category: CategoryAbsent,
		},
		{
			name: "enumeration failure",
			camera: func() *fakeCamera {
				c := newFakeCamera(wedge)
				c.devicesErr = errors.New("udev unavailable")
				return c
			},
			category: CategoryCamera,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.camera())

			err := h.ctrl.Start(context.Background())

			assert.Error(t, err)
			assert.Equal(t, StateError, h.ctrl.State())
			assert.Equal(t, tt.category, h.view.lastAlert().Category)
			assert.Equal(t, tt.gesture, h.view.gestures)
		})
	}
}

func TestStart_PrefersRememberedDevice(t *testing.T) {
	cam := newFakeCamera(
		Device{ID: "/dev/ttyACM0", Label: "Front counter"},
		Device{ID: "/dev/ttyACM1", Label: "Rear dock"},
	)
	h := newHarness(t, cam)
	ctx := context.Background()

	require.NoError(t, h.ctrl.Start(ctx))
	assert.Equal(t, "/dev/ttyACM1", h.ctrl.Device().ID)

	require.NoError(t, h.ctrl.Stop())
	require.NoError(t, h.prefs.SaveDevice(ctx, "/dev/ttyACM0"))
	require.NoError(t, h.ctrl.Start(ctx))

	assert.Equal(t, "/dev/ttyACM0", h.ctrl.Device().ID)
	assert.Equal(t, []string{"/dev/ttyACM1", "/dev/ttyACM0"}, cam.Started())
}

func TestSwitchCamera_RestartsAndRemembers(t *testing.T) {
	cam := newFakeCamera(
		Device{ID: "/dev/ttyACM0", Label: "Front counter"},
		Device{ID: "/dev/ttyACM1", Label: "Rear dock"},
	)
	h := newHarness(t, cam)
	h.startScanning(t)
	ctx := context.Background()

	require.NoError(t, h.ctrl.SwitchCamera(ctx, "/dev/ttyACM0"))

	assert.Equal(t, "/dev/ttyACM0", h.ctrl.Device().ID)
	assert.Equal(t, []string{"/dev/ttyACM1", "/dev/ttyACM0"}, cam.Started())
	last, err := h.prefs.LastDevice(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", last)
}

func TestSwitchCamera_UnknownDevice(t *testing.T) {
	h := newHarness(t, newFakeCamera(wedge))
	h.startScanning(t)

	err := h.ctrl.SwitchCamera(context.Background(), "/dev/nope")

	var noDev *NoDeviceError
	assert.ErrorAs(t, err, &noDev)
	assert.Equal(t, CategorySwitchCamera, h.view.lastAlert().Category)
	assert.Equal(t, []string{WedgeDeviceID}, h.camera.Started())
}

func TestSwitchCamera_WhileStoppedOnlyRemembers(t *testing.T) {
	cam := newFakeCamera(wedge, Device{ID: "/dev/ttyACM0", Label: "Front counter"})
	h := newHarness(t, cam)
	ctx := context.Background()

	require.NoError(t, h.ctrl.SwitchCamera(ctx, "/dev/ttyACM0"))

	assert.Empty(t, cam.Started())
	last, err := h.prefs.LastDevice(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", last)
}

func TestStop_ReleasesDevice(t *testing.T) {
	h := newHarness(t, newFakeCamera(wedge))
	h.startScanning(t)

	require.NoError(t, h.ctrl.Stop())

	assert.False(t, h.camera.Scanning())
	assert.Equal(t, StateIdle, h.ctrl.State())
}
