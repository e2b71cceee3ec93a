package scanner

import (
	"bufio"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
)

// WedgeDeviceID is the keyboard-wedge scanner typing into the station console.
const WedgeDeviceID = "-"

// LineCamera reads one code per line from serial scanners or from the
// console, where keyboard-wedge scanners type followed by Enter.
// Lines arriving while paused or stopped are dropped.
type LineCamera struct {
	devices []Device
	wedge   <-chan string
	open    func(path string) (io.ReadCloser, error)
	stat    func(path string) error

	paused atomic.Bool

	mu     sync.Mutex
	active *lineSession
}

type lineSession struct {
	device string
	done   chan struct{}
	closer io.Closer
}

// ParseDevices reads "path=label" entries; "-" is the console wedge.
func ParseDevices(entries []string) []Device {
	devices := make([]Device, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, label, _ := strings.Cut(entry, "=")
		id = strings.TrimSpace(id)
		label = strings.TrimSpace(label)
		if label == "" {
			label = id
		}
		devices = append(devices, Device{ID: id, Label: label})
	}
	return devices
}

// NewLineCamera creates a camera over devices. wedge delivers console lines
// for the "-" device and may be nil when no wedge is configured.
func NewLineCamera(devices []Device, wedge <-chan string) *LineCamera {
	return &LineCamera{
		devices: devices,
		wedge:   wedge,
		open: func(path string) (io.ReadCloser, error) {
			return os.OpenFile(path, os.O_RDONLY, 0)
		},
		stat: func(path string) error {
			_, err := os.Stat(path)
			return err
		},
	}
}

// Devices lists the configured devices that are present right now.
func (l *LineCamera) Devices(ctx context.Context) ([]Device, error) {
	present := make([]Device, 0, len(l.devices))
	var permErr error
	for _, d := range l.devices {
		if d.ID == WedgeDeviceID {
			if l.wedge != nil {
				present = append(present, d)
			}
			continue
		}
		err := l.stat(d.ID)
		if err == nil {
			present = append(present, d)
			continue
		}
		if errors.Is(err, fs.ErrPermission) && permErr == nil {
			permErr = &PermissionError{Device: d.ID, Err: err}
		}
	}
	if len(present) == 0 && permErr != nil {
		return nil, permErr
	}
	return present, nil
}

func (l *LineCamera) Start(ctx context.Context, deviceID string, onDecode func(text string)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active != nil {
		l.stopLocked()
	}

	session := &lineSession{device: deviceID, done: make(chan struct{})}

	var lines <-chan string
	if deviceID == WedgeDeviceID {
		if l.wedge == nil {
			return &NoDeviceError{Device: deviceID}
		}
		lines = l.wedge
	} else {
		rc, err := l.open(deviceID)
		if err != nil {
			return classifyOpenError(deviceID, err)
		}
		session.closer = rc
		lines = readLines(rc, session.done)
	}

	l.active = session
	l.paused.Store(false)

	go l.dispatch(session, lines, onDecode)
	return nil
}

func (l *LineCamera) dispatch(s *lineSession, lines <-chan string, onDecode func(string)) {
	for {
		select {
		case <-s.done:
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			line = strings.TrimSpace(line)
			if line == "" || l.paused.Load() {
				continue
			}
			select {
			case <-s.done:
				return
			default:
			}
			// decode callbacks run concurrently; the controller serializes searches
			go onDecode(line)
		}
	}
}

func readLines(r io.Reader, done <-chan struct{}) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case out <- sc.Text():
			case <-done:
				return
			}
		}
	}()
	return out
}

func (l *LineCamera) Pause() error {
	l.paused.Store(true)
	return nil
}

func (l *LineCamera) Resume() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active == nil {
		return errors.New("scanner is not started")
	}
	l.paused.Store(false)
	return nil
}

func (l *LineCamera) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopLocked()
}

func (l *LineCamera) stopLocked() error {
	if l.active == nil {
		return nil
	}
	close(l.active.done)
	var err error
	if l.active.closer != nil {
		err = l.active.closer.Close()
	}
	l.active = nil
	return err
}

func (l *LineCamera) Scanning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active != nil
}

func classifyOpenError(device string, err error) error {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return &PermissionError{Device: device, Err: err}
	case errors.Is(err, syscall.EBUSY):
		return &DeviceBusyError{Device: device, Err: err}
	case errors.Is(err, fs.ErrNotExist):
		return &NoDeviceError{Device: device}
	}
	return err
}
