package cli

import (
	"fmt"
	"strconv"

	"gopkg.in/alecthomas/kingpin.v2"
)

// override holds a raw flag value until the config file has been loaded, so
// flags given on the command line win over file values.
type override struct {
	name  string
	raw   string
	set   bool
	apply func(raw string) error
}

func (o *override) String() string { return o.raw }

func (o *override) Set(s string) error {
	o.raw, o.set = s, true
	return nil
}

type boolOverride struct{ override }

func (o *boolOverride) IsBoolFlag() bool { return true }

// Overrides collects the flags of one subcommand.
type Overrides struct {
	cmd   *kingpin.CmdClause
	flags []*override
}

func newOverrides(cmd *kingpin.CmdClause) *Overrides {
	return &Overrides{cmd: cmd}
}

func (o *Overrides) add(name, help string, apply func(string) error) {
	ov := &override{name: name, apply: apply}
	o.cmd.Flag(name, help).SetValue(ov)
	o.flags = append(o.flags, ov)
}

// String ...
func (o *Overrides) String(name, help string, dst *string) {
	o.add(name, help, func(raw string) error {
		*dst = raw
		return nil
	})
}

// Float ...
func (o *Overrides) Float(name, help string, dst *float64) {
	o.add(name, help, func(raw string) error {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	})
}

// Int ...
func (o *Overrides) Int(name, help string, dst *int) {
	o.add(name, help, func(raw string) error {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	})
}

// Bool registers a switch; --no-<name> sets dst to false.
func (o *Overrides) Bool(name, help string, dst *bool) {
	ov := &boolOverride{override{name: name, apply: func(raw string) error {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}}}
	o.cmd.Flag(name, help).SetValue(ov)
	o.flags = append(o.flags, &ov.override)
}

// apply writes every flag given on the command line into its destination.
func (o *Overrides) apply() error {
	for _, f := range o.flags {
		if !f.set {
			continue
		}
		if err := f.apply(f.raw); err != nil {
			return fmt.Errorf("--%s: %w", f.name, err)
		}
	}
	return nil
}
