// Package cli turns a config struct into a kingpin subcommand whose settings
// come from the defaults, then an optional YAML file, then the flags.
package cli

import (
	"fmt"
	"io"

	"github.com/godeepar/geoprep/config"
	"github.com/godeepar/geoprep/monitoring"
	"gopkg.in/alecthomas/kingpin.v2"
	"gopkg.in/yaml.v2"
)

// Command is one subcommand: its config, the file it may be loaded from and
// the flags that override it.
type Command struct {
	Name    string
	Flags   *Overrides
	Execute func() (*monitoring.Counter, error)

	config *string
	dump   *bool
	cfg    config.Validator
}

// New registers name on app. cfg must be a pointer holding the defaults.
func New(app *kingpin.Application, name, help string, cfg config.Validator) *Command {
	clause := app.Command(name, help)
	return &Command{
		Name:   name,
		Flags:  newOverrides(clause),
		config: clause.Flag("config", "YAML file with the settings of this command").Short('c').String(),
		dump:   clause.Flag("dump-config", "print the effective settings and exit").Bool(),
		cfg:    cfg,
	}
}

// Run layers the config file and the flags over the defaults, then either
// writes the effective settings to w or validates and executes.
func (c *Command) Run(w io.Writer) error {
	if err := config.Load(*c.config, c.cfg); err != nil {
		return err
	}
	if err := c.Flags.apply(); err != nil {
		return fmt.Errorf("%w: %s", config.ErrInvalid, err)
	}

	if *c.dump {
		out, err := yaml.Marshal(c.cfg)
		if err != nil {
			return fmt.Errorf("[yaml.Marshal] in pkg [cli] encountered: %w", err)
		}
		_, err = w.Write(out)
		return err
	}

	if err := c.cfg.Validate(); err != nil {
		return err
	}

	counter, err := c.Execute()
	if err != nil {
		return err
	}
	if counter != nil {
		monitoring.Logf("%s finished: %s", c.Name, counter)
	}
	return nil
}
