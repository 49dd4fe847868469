package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/deepnoodle-ai/tape"
	"github.com/deepnoodle-ai/tape/vm"
	"github.com/gofrs/uuid"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// app holds the configuration shared by every command.
type app struct {
	v       *viper.Viper
	cfgFile string
	log     zerolog.Logger
	runID   string
}

func newApp() *app {
	return &app{v: viper.New(), log: zerolog.Nop()}
}

func (a *app) bind(flags *pflag.FlagSet) {
	if err := a.v.BindPFlags(flags); err != nil {
		panic(err)
	}
}

// setup reads the config file and environment, then builds the logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if err := a.initConfig(); err != nil {
		return err
	}
	if a.v.GetBool("no-color") {
		disableColor()
	}
	id, err := uuid.NewV4()
	if err != nil {
		return err
	}
	a.runID = id.String()
	a.log, err = newLogger(cmd.ErrOrStderr(), a.v.GetString("log-level"), a.v.GetBool("no-color"), a.runID)
	if err != nil {
		return err
	}
	if used := a.v.ConfigFileUsed(); used != "" {
		a.log.Debug().Str("path", used).Msg("using config file")
	}
	return nil
}

// initConfig reads in the config file and TAPE_ prefixed env variables.
func (a *app) initConfig() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return err
		}
		a.v.AddConfigPath(home)
		a.v.SetConfigType("yaml")
		a.v.SetConfigName(".tape")
	}
	a.v.SetEnvPrefix("tape")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// tapeOptions translates the configuration into evaluation options. The
// returned closer releases the input file, if one was opened.
func (a *app) tapeOptions(cmd *cobra.Command) ([]tape.Option, func(), error) {
	policy, err := vm.ParseEOFPolicy(a.v.GetString("eof"))
	if err != nil {
		return nil, nil, err
	}
	input, closer, err := a.openInput(cmd)
	if err != nil {
		return nil, nil, err
	}
	opts := []tape.Option{
		tape.WithEOFPolicy(policy),
		tape.WithLogger(a.log),
		tape.WithInput(input),
		tape.WithOutput(cmd.OutOrStdout()),
	}
	return opts, closer, nil
}

func (a *app) openInput(cmd *cobra.Command) (io.Reader, func(), error) {
	path := a.v.GetString("input")
	if path == "" {
		return cmd.InOrStdin(), func() {}, nil
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
