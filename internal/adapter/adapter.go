// Package adapter enumerates network adapters and changes their MAC address
// by sequencing OS-native commands. Behaviour is selected per call from the
// reported operating system: macOS (ifconfig/networksetup), Windows
// (PowerShell NetAdapter cmdlets), or an unsupported variant.
package adapter

import (
	"context"
	"errors"
	"fmt"
)

const (
	StatusUp      = "Up"
	StatusDown    = "Down"
	StatusUnknown = "Unknown"
)

// Record is one adapter from an enumeration snapshot. MacAddress is always in
// canonical form and never empty.
type Record struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	MacAddress  string `json:"macAddress"`
	Status      string `json:"status"`
}

// Outcome is the result of a change or restore. OriginalMac is the address
// captured before mutation; it is empty on restores and when capture failed.
type Outcome struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	OriginalMac string `json:"originalMac,omitempty"`
}

// Inventory lists the adapters of one platform.
type Inventory interface {
	List(ctx context.Context) ([]Record, error)
}

// Reconfigurator mutates a single named adapter. Change and Restore report
// failures through Outcome rather than an error.
type Reconfigurator interface {
	Change(ctx context.Context, name, rawMAC string) Outcome
	Restore(ctx context.Context, name, rawMAC string) Outcome
	Restart(ctx context.Context, name string) error
}

// Strategy is the capability set of one platform.
type Strategy interface {
	Inventory
	Reconfigurator
}

var ErrUnsupportedPlatform = errors.New("unsupported operating system")

type UnsupportedPlatformError struct {
	Platform string
}

func (e *UnsupportedPlatformError) Error() string {
	return ErrUnsupportedPlatform.Error() + ": " + e.Platform
}

func (e *UnsupportedPlatformError) Is(target error) bool {
	return target == ErrUnsupportedPlatform
}

// EnumerationError wraps a failed listing command or unparsable output.
type EnumerationError struct {
	Platform string
	Err      error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("failed to list %s adapters: %v", e.Platform, e.Err)
}

func (e *EnumerationError) Unwrap() error { return e.Err }
