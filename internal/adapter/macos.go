package adapter

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"macswap/internal/flog"
	"macswap/internal/mac"
	"macswap/internal/runner"
)

const platformMacOS = "macOS"

var (
	ifconfigHeaderRe = regexp.MustCompile(`^([a-z]+\d+):`)
	ifconfigEtherRe  = regexp.MustCompile(`ether\s+([a-fA-F0-9:]{17})`)
)

type macOS struct {
	runner  runner.Runner
	sudo    bool
	settle  Settler
	restart Settler
}

func (m *macOS) List(ctx context.Context) ([]Record, error) {
	res, err := m.runner.Run(ctx, runner.Command{Name: "ifconfig", Args: []string{"-a"}})
	if err != nil {
		return nil, &EnumerationError{Platform: platformMacOS, Err: err}
	}
	return parseIfconfig(res.Stdout), nil
}

func (m *macOS) Change(ctx context.Context, name, rawMAC string) Outcome {
	target := mac.Normalize(rawMAC)

	original, err := m.currentMAC(ctx, name)
	if err != nil {
		return Outcome{Message: fmt.Sprintf("failed to change macOS MAC address: %v", err)}
	}

	if err := m.apply(ctx, name, target); err != nil {
		return Outcome{
			Message:     fmt.Sprintf("failed to change macOS MAC address: %v", err),
			OriginalMac: original,
		}
	}
	return Outcome{
		Success:     true,
		Message:     "MAC address successfully changed to " + target,
		OriginalMac: original,
	}
}

func (m *macOS) Restore(ctx context.Context, name, rawMAC string) Outcome {
	target := mac.Normalize(rawMAC)
	if err := m.apply(ctx, name, target); err != nil {
		return Outcome{Message: fmt.Sprintf("failed to restore macOS MAC address: %v", err)}
	}
	return Outcome{Success: true, Message: "original MAC address restored: " + target}
}

// Restart power-cycles Wi-Fi devices through networksetup and bounces any
// other device with ifconfig. When the hardware port listing is unavailable
// the device is treated as Wi-Fi.
func (m *macOS) Restart(ctx context.Context, name string) error {
	wifi := true
	if res, err := m.runner.Run(ctx, runner.Command{Name: "networksetup", Args: []string{"-listallhardwareports"}}); err == nil {
		if port, ok := hardwarePortFor(res.Stdout, name); ok {
			wifi = isWirelessPort(port)
		}
	} else {
		flog.Debugf("networksetup -listallhardwareports: %v", err)
	}

	var steps []step
	if wifi {
		steps = []step{
			{name: "wifi power off", cmd: runner.Command{Name: "networksetup", Args: []string{"-setairportpower", name, "off"}}},
			{name: "wifi power on", cmd: runner.Command{Name: "networksetup", Args: []string{"-setairportpower", name, "on"}}},
		}
	} else {
		steps = []step{
			{name: "down", cmd: runner.Privileged(m.sudo, "ifconfig", name, "down")},
			{name: "up", cmd: runner.Privileged(m.sudo, "ifconfig", name, "up")},
		}
	}
	if err := runSteps(ctx, m.runner, m.restart, name, steps); err != nil {
		return fmt.Errorf("failed to restart macOS adapter: %w", err)
	}
	return nil
}

// apply runs down, set, up. Only the set step is mandatory; some interfaces
// refuse down/up or bring themselves back up.
func (m *macOS) apply(ctx context.Context, name, target string) error {
	return runSteps(ctx, m.runner, m.settle, name, []step{
		{name: "down", cmd: runner.Privileged(m.sudo, "ifconfig", name, "down"), optional: true},
		{name: "set " + target, cmd: runner.Privileged(m.sudo, "ifconfig", name, "ether", target), probe: macProbe(m.currentMAC, name, target)},
		{name: "up", cmd: runner.Privileged(m.sudo, "ifconfig", name, "up"), optional: true},
	})
}

func (m *macOS) currentMAC(ctx context.Context, name string) (string, error) {
	res, err := m.runner.Run(ctx, runner.Command{Name: "ifconfig", Args: []string{name}})
	if err != nil {
		return "", err
	}
	match := ifconfigEtherRe.FindStringSubmatch(res.Stdout)
	if match == nil {
		return "", fmt.Errorf("no hardware address reported for %s", name)
	}
	return mac.Normalize(match[1]), nil
}

type parseState int

const (
	stateNoRecord parseState = iota
	stateAccumulating
)

// ifconfigParser turns `ifconfig -a` output into records. A header line
// ("en0: flags=...") starts a record and flushes the previous one; ether and
// status lines fill in the record being accumulated. Records are kept only
// when both name and address were seen.
type ifconfigParser struct {
	state   parseState
	current Record
	records []Record
}

func (p *ifconfigParser) feed(line string) {
	if m := ifconfigHeaderRe.FindStringSubmatch(line); m != nil {
		p.flush()
		p.current = Record{Name: m[1], Description: "Network Interface " + m[1]}
		p.state = stateAccumulating
		return
	}
	if p.state != stateAccumulating {
		return
	}
	if m := ifconfigEtherRe.FindStringSubmatch(line); m != nil {
		p.current.MacAddress = mac.Normalize(m[1])
	}
	switch {
	case strings.Contains(line, "status: active"):
		p.current.Status = StatusUp
	case strings.Contains(line, "status: inactive"):
		p.current.Status = StatusDown
	}
}

func (p *ifconfigParser) flush() {
	if p.state == stateAccumulating && p.current.Name != "" && p.current.MacAddress != "" {
		if p.current.Status == "" {
			p.current.Status = StatusUnknown
		}
		p.records = append(p.records, p.current)
	}
	p.current = Record{}
	p.state = stateNoRecord
}

func (p *ifconfigParser) finish() []Record {
	p.flush()
	if p.records == nil {
		return []Record{}
	}
	return p.records
}

func parseIfconfig(out string) []Record {
	p := &ifconfigParser{}
	for _, line := range strings.Split(out, "\n") {
		p.feed(strings.TrimRight(line, "\r"))
	}
	return p.finish()
}

// hardwarePortFor finds the "Hardware Port" paired with device in
// `networksetup -listallhardwareports` output.
func hardwarePortFor(out, device string) (string, bool) {
	var port string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Hardware Port:"):
			port = strings.TrimSpace(strings.TrimPrefix(line, "Hardware Port:"))
		case strings.HasPrefix(line, "Device:"):
			if strings.TrimSpace(strings.TrimPrefix(line, "Device:")) == device {
				return port, port != ""
			}
		}
	}
	return "", false
}

func isWirelessPort(port string) bool {
	p := strings.ToLower(port)
	return strings.Contains(p, "wi-fi") || strings.Contains(p, "airport")
}
