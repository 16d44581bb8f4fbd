package conf

import (
	"fmt"
	"os"
	"strings"

	"macswap/internal/adapter"

	"github.com/goccy/go-yaml"
)

type Conf struct {
	Log    Log    `yaml:"log"`
	Runner Runner `yaml:"runner"`
	Settle Settle `yaml:"settle"`
	Serve  Serve  `yaml:"serve"`
}

// Load reads path, or returns the defaults when path is empty.
func Load(path string) (*Conf, error) {
	if path == "" {
		return Default()
	}
	return LoadFromFile(path)
}

func LoadFromFile(path string) (*Conf, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(data)
}

// Default returns a configuration with every value defaulted.
func Default() (*Conf, error) {
	return parse(nil)
}

func parse(data []byte) (*Conf, error) {
	var conf Conf

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &conf); err != nil {
			return &conf, err
		}
	}

	conf.setDefaults()
	if err := conf.validate(); err != nil {
		return &conf, err
	}

	return &conf, nil
}

func (c *Conf) setDefaults() {
	c.Log.setDefaults()
	c.Runner.setDefaults()
	c.Settle.setDefaults()
	c.Serve.setDefaults()
}

func (c *Conf) validate() error {
	var allErrors []error

	allErrors = append(allErrors, c.Log.validate()...)
	allErrors = append(allErrors, c.Runner.validate()...)
	allErrors = append(allErrors, c.Settle.validate()...)
	allErrors = append(allErrors, c.Serve.validate()...)

	return writeErr(allErrors)
}

// AdapterOptions translates the runner and settle sections for the adapter
// service.
func (c *Conf) AdapterOptions() adapter.Options {
	opts := adapter.DefaultOptions()
	opts.Sudo = *c.Runner.Sudo
	opts.PowerShell = c.Runner.PowerShell
	opts.SettleMode = adapter.SettleMode(c.Settle.Mode)
	opts.DarwinDelay = *c.Settle.Darwin
	opts.WindowsDelay = *c.Settle.Windows
	opts.DarwinRestartDelay = *c.Settle.DarwinRestart
	opts.WindowsRestartDelay = *c.Settle.WindowsRestart
	opts.PollInterval = c.Settle.PollInterval
	opts.PollTimeout = c.Settle.PollTimeout
	return opts
}

func writeErr(allErrors []error) error {
	if len(allErrors) > 0 {
		var messages []string
		for _, err := range allErrors {
			messages = append(messages, err.Error())
		}
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(messages, "\n  - "))
	}
	return nil
}
