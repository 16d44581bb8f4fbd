package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"macswap/internal/mac"
	"macswap/internal/runner"
)

const (
	platformWindows = "Windows"

	listAdaptersScript = `Get-NetAdapter | Where-Object { $_.MacAddress -ne $null } | ` +
		`Select-Object Name, InterfaceDescription, MacAddress, Status | ConvertTo-Json -Depth 2`
)

type windows struct {
	runner  runner.Runner
	bin     string
	settle  Settler
	restart Settler
}

func (w *windows) List(ctx context.Context) ([]Record, error) {
	res, err := w.runner.Run(ctx, runner.PowerShell(w.bin, listAdaptersScript))
	if err != nil {
		return nil, &EnumerationError{Platform: platformWindows, Err: err}
	}
	records, err := parseNetAdapterJSON(res.Stdout)
	if err != nil {
		return nil, &EnumerationError{Platform: platformWindows, Err: err}
	}
	return records, nil
}

func (w *windows) Change(ctx context.Context, name, rawMAC string) Outcome {
	target := mac.Normalize(rawMAC)

	original, err := w.currentMAC(ctx, name)
	if err != nil {
		return Outcome{Message: fmt.Sprintf("failed to change Windows MAC address: %v", err)}
	}

	if err := w.apply(ctx, name, target); err != nil {
		return Outcome{
			Message:     fmt.Sprintf("failed to change Windows MAC address: %v", err),
			OriginalMac: original,
		}
	}
	return Outcome{
		Success:     true,
		Message:     "MAC address successfully changed to " + target,
		OriginalMac: original,
	}
}

func (w *windows) Restore(ctx context.Context, name, rawMAC string) Outcome {
	target := mac.Normalize(rawMAC)
	if err := w.apply(ctx, name, target); err != nil {
		return Outcome{Message: fmt.Sprintf("failed to restore Windows MAC address: %v", err)}
	}
	return Outcome{Success: true, Message: "original MAC address restored: " + target}
}

func (w *windows) Restart(ctx context.Context, name string) error {
	err := runSteps(ctx, w.runner, w.restart, name, []step{
		{name: "disable", cmd: w.disable(name)},
		{name: "enable", cmd: w.enable(name)},
	})
	if err != nil {
		return fmt.Errorf("failed to restart Windows adapter: %w", err)
	}
	return nil
}

// apply runs disable, set, enable; every step is mandatory. A failure after
// disable leaves the adapter disabled.
func (w *windows) apply(ctx context.Context, name, target string) error {
	set := runner.PowerShell(w.bin, fmt.Sprintf("Set-NetAdapter -Name %s -MacAddress %s -Confirm:$false",
		runner.QuotePS(name), runner.QuotePS(mac.Hyphenated(target))))
	return runSteps(ctx, w.runner, w.settle, name, []step{
		{name: "disable", cmd: w.disable(name)},
		{name: "set " + target, cmd: set, probe: macProbe(w.currentMAC, name, target)},
		{name: "enable", cmd: w.enable(name)},
	})
}

func (w *windows) disable(name string) runner.Command {
	return runner.PowerShell(w.bin, fmt.Sprintf("Disable-NetAdapter -Name %s -Confirm:$false", runner.QuotePS(name)))
}

func (w *windows) enable(name string) runner.Command {
	return runner.PowerShell(w.bin, fmt.Sprintf("Enable-NetAdapter -Name %s -Confirm:$false", runner.QuotePS(name)))
}

func (w *windows) currentMAC(ctx context.Context, name string) (string, error) {
	script := fmt.Sprintf("Get-NetAdapter -Name %s | Select-Object -ExpandProperty MacAddress", runner.QuotePS(name))
	res, err := w.runner.Run(ctx, runner.PowerShell(w.bin, script))
	if err != nil {
		return "", err
	}
	value := strings.TrimSpace(res.Stdout)
	if value == "" {
		return "", fmt.Errorf("no hardware address reported for %s", name)
	}
	return mac.Normalize(value), nil
}

type netAdapter struct {
	Name                 string          `json:"Name"`
	InterfaceDescription string          `json:"InterfaceDescription"`
	MacAddress           string          `json:"MacAddress"`
	Status               json.RawMessage `json:"Status"`
}

// parseNetAdapterJSON accepts ConvertTo-Json output, which is an array for
// several adapters and a bare object for exactly one. Blank output means no
// adapters. Entries without a name or address are dropped.
func parseNetAdapterJSON(out string) ([]Record, error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(out, "\ufeff"))
	if trimmed == "" {
		return []Record{}, nil
	}

	var adapters []*netAdapter
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &adapters); err != nil {
			return nil, fmt.Errorf("parse Get-NetAdapter output: %w", err)
		}
	} else {
		var single netAdapter
		if err := json.Unmarshal([]byte(trimmed), &single); err != nil {
			return nil, fmt.Errorf("parse Get-NetAdapter output: %w", err)
		}
		adapters = append(adapters, &single)
	}

	records := make([]Record, 0, len(adapters))
	for _, a := range adapters {
		if a == nil || a.Name == "" || a.MacAddress == "" {
			continue
		}
		records = append(records, Record{
			Name:        a.Name,
			Description: a.InterfaceDescription,
			MacAddress:  mac.Normalize(a.MacAddress),
			Status:      netAdapterStatus(a.Status),
		})
	}
	return records, nil
}

// netAdapterStatus passes through whatever the OS reported. Older PowerShell
// releases serialize the enum as a number.
func netAdapterStatus(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return StatusUnknown
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if str == "" {
			return StatusUnknown
		}
		return str
	}
	return s
}
