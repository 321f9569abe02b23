// main.go
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jshaughn/bloodline/loader"
	"github.com/jshaughn/bloodline/metrics"
	"github.com/jshaughn/bloodline/promsource"
	"github.com/jshaughn/bloodline/tree"
)

type options struct {
	file        string
	server      string
	metric      string
	offset      time.Duration
	logLevel    string
	metricsFile string
}

// app carries what every subcommand needs: the resolved options, the
// lineage, loaded on first use, and the query recorder.
type app struct {
	v        *viper.Viper
	cmd      *cobra.Command
	options  options
	recorder *metrics.Recorder
	forest   []*tree.Tree
	loaded   bool
}

func newRootCmd() *cobra.Command {
	return newApp().cmd
}

func newApp() *app {
	a := &app{
		v:        viper.New(),
		recorder: metrics.NewRecorder(),
	}

	rootCmd := &cobra.Command{
		Use:           "bloodline",
		Short:         "Query a vampire lineage",
		Long:          `Loads a vampire lineage from a YAML document or from Prometheus and answers questions about it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.options = a.parseOptions()
			if err := setLogLevel(a.options.logLevel); err != nil {
				return err
			}
			return validateOptions(a.options)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.options.metricsFile == "" {
				return nil
			}
			return a.recorder.WriteFile(a.options.metricsFile)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("file", "", "Lineage document (YAML or JSON)")
	flags.String("server", "http://localhost:9090", "Prometheus server URL, used when no file is given (can be set via PROMETHEUS_SERVER environment variable)")
	flags.String("metric", promsource.DefaultMetric, "Prometheus metric holding one series per vampire")
	flags.String("offset", "0m", "Offset (Xm, Xh, or Xd) from now to query Prometheus at")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("metrics-file", "", "Write query metrics to this file in the Prometheus text format")

	a.v.SetEnvPrefix("BLOODLINE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	for _, name := range []string{"file", "server", "metric", "offset", "log-level", "metrics-file"} {
		if err := a.v.BindPFlag(name, flags.Lookup(name)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", name, err)
		}
	}
	if err := a.v.BindEnv("server", "BLOODLINE_SERVER", "PROMETHEUS_SERVER"); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding server environment variables: %v\n", err)
	}

	rootCmd.AddCommand(
		a.offspringCmd(),
		a.depthCmd(),
		a.seniorCmd(),
		a.findCmd(),
		a.descendantsCmd(),
		a.afterCmd(),
		a.millennialsCmd(),
		a.ancestorCmd(),
		a.exportCmd(),
	)
	a.cmd = rootCmd
	return a
}

// load reads the lineage once. Commands that never look at it, such as help
// and completion, never reach the file or Prometheus.
func (a *app) load(ctx context.Context) ([]*tree.Tree, error) {
	if a.loaded {
		return a.forest, nil
	}
	forest, err := loadForest(ctx, a.options)
	if err != nil {
		return nil, err
	}
	a.forest, a.loaded = forest, true
	return forest, nil
}

func (a *app) parseOptions() options {
	return options{
		file:        a.v.GetString("file"),
		server:      a.v.GetString("server"),
		metric:      a.v.GetString("metric"),
		offset:      durationOption(a.v.GetString("offset")),
		logLevel:    a.v.GetString("log-level"),
		metricsFile: a.v.GetString("metrics-file"),
	}
}

// durationOption accepts time.ParseDuration input plus a day suffix. Invalid
// input yields zero.
func durationOption(option string) time.Duration {
	if strings.HasSuffix(option, "d") {
		var days int
		if _, err := fmt.Sscanf(option, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour
		}
	}
	val, err := time.ParseDuration(option)
	if err != nil {
		logrus.WithField("offset", option).Warn("Ignoring invalid offset")
		return 0
	}
	return val
}

func setLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	logrus.SetLevel(lvl)
	return nil
}

func validateOptions(o options) error {
	logrus.Debugf("Options: %+v", o)

	if o.file == "" && o.server == "" {
		return errors.New("either a lineage file or a Prometheus server must be set")
	}
	return nil
}

func loadForest(ctx context.Context, o options) ([]*tree.Tree, error) {
	if o.file != "" {
		t, err := loader.Load(o.file)
		if err != nil {
			return nil, err
		}
		logrus.WithField("file", o.file).Debugf("Loaded lineage of %v", t)
		return []*tree.Tree{t}, nil
	}

	if ctx == nil {
		ctx = context.Background()
	}
	source, err := promsource.NewSource(o.server)
	if err != nil {
		return nil, err
	}
	return source.Fetch(ctx, o.metric, time.Now().Add(-o.offset))
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
