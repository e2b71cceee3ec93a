package scanner

import (
	"errors"
	"fmt"
	"regexp"

	"price-lookup/internal/apiclient"
)

// PermissionError means the device refused access.
type PermissionError struct {
	Device string
	Err    error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied for device %s: %v", e.Device, e.Err)
}

func (e *PermissionError) Unwrap() error { return e.Err }

// DeviceBusyError means another process holds the device.
type DeviceBusyError struct {
	Device string
	Err    error
}

func (e *DeviceBusyError) Error() string {
	return fmt.Sprintf("device %s is in use: %v", e.Device, e.Err)
}

func (e *DeviceBusyError) Unwrap() error { return e.Err }

// NoDeviceError means there is nothing to scan with.
type NoDeviceError struct {
	Device string
}

func (e *NoDeviceError) Error() string {
	if e.Device == "" {
		return "no scanning device available"
	}
	return fmt.Sprintf("scanning device %s not found", e.Device)
}

// AlertKind is the severity shown to the operator.
type AlertKind string

const (
	AlertWarn  AlertKind = "warn"
	AlertError AlertKind = "error"
)

// Alert categories.
const (
	CategoryPermission   = "permission"
	CategoryBusy         = "busy"
	CategoryAbsent       = "absent"
	CategoryCamera       = "camera"
	CategoryDatabase     = "database"
	CategoryServer       = "server"
	CategoryNotFound     = "not-found"
	CategorySwitchCamera = "switch-camera"
)

// Alert is a dismissible message for the operator.
type Alert struct {
	Kind     AlertKind
	Category string
	Message  string
}

// CameraAlert maps a device failure to the operator alert.
// needsGesture is set for permission failures, which a manual start may clear.
func CameraAlert(err error) (alert Alert, needsGesture bool) {
	var (
		perm  *PermissionError
		busy  *DeviceBusyError
		noDev *NoDeviceError
	)
	switch {
	case errors.As(err, &perm):
		return Alert{AlertWarn, CategoryPermission, "scanner access was denied; start it manually or use manual search"}, true
	case errors.As(err, &busy):
		return Alert{AlertWarn, CategoryBusy, "the scanner is in use by another application; close it and try again"}, false
	case errors.As(err, &noDev):
		return Alert{AlertWarn, CategoryAbsent, "no scanner found on this station"}, false
	}
	return Alert{AlertError, CategoryCamera, fmt.Sprintf("could not start the scanner: %v", err)}, false
}

var databaseProblem = regexp.MustCompile(`(?i)db|database|sql|sqlserver|mssql`)

// SearchAlert maps a failed search to the database or server category.
func SearchAlert(err error) Alert {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		if apiErr.DB == "down" || databaseProblem.MatchString(apiErr.Message) {
			return Alert{AlertError, CategoryDatabase, "database query failed"}
		}
		return Alert{AlertError, CategoryServer, "server query failed"}
	}

	var timeout *apiclient.NetworkTimeoutError
	if errors.As(err, &timeout) {
		return Alert{AlertError, CategoryServer, "server query failed: timeout"}
	}
	return Alert{AlertError, CategoryServer, "server query failed"}
}

// NotFoundAlert is shown when a search returns no rows.
func NotFoundAlert() Alert {
	return Alert{AlertWarn, CategoryNotFound, "barcode not found"}
}
