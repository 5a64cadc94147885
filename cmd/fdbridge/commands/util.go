package commands

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/stlalpha/fdbridge/internal/area"
	"github.com/stlalpha/fdbridge/internal/config"
	"github.com/stlalpha/fdbridge/internal/journal"
	"github.com/stlalpha/fdbridge/internal/logging"
	"github.com/stlalpha/fdbridge/internal/metrics"
	"github.com/stlalpha/fdbridge/internal/tosser"
)

// env is what every command that touches the message base sets up.
type env struct {
	settings *config.Settings
	logger   *logrus.Logger
	areas    *area.Registry
	journal  *journal.Journal
	metrics  *metrics.Metrics
}

// addRunFlags registers the flags shared by toss and watch.
func addRunFlags(f *pflag.FlagSet) {
	f.Bool("delete", false, "delete *.MSG files once tossed into the message base")
	f.Bool("kill", false, "mark message base headers deleted once tossed out")
	f.Bool("skip-inbound", false, "skip the *.MSG to message base pass")
	f.Bool("skip-outbound", false, "skip the message base to *.MSG pass")
	f.String("rescan", "", "also toss out every message from this sender")
	f.String("journal", "", "crash recovery journal (bbolt database path)")
	f.String("metrics-file", "", "write Prometheus metrics to this textfile after each run")
}

// loadSettings resolves settings and configures logging.
func loadSettings(cmd *cobra.Command) (*config.Settings, *logrus.Logger, error) {
	settingsPath, _ := cmd.Flags().GetString("config")
	s, err := config.Load(settingsPath, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.Setup(logging.Options{
		Output: cmd.ErrOrStderr(),
		Format: s.Log.Format,
		Level:  s.Log.Level,
		Diag:   s.Log.Diag,
	})
	if err != nil {
		return nil, nil, err
	}
	return s, logger, nil
}

// setup loads settings, the routing table, and the optional journal and
// metrics. The caller must Close the result.
func setup(cmd *cobra.Command) (*env, error) {
	s, logger, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	e := &env{settings: s, logger: logger}

	path, err := s.AreasPath()
	if err != nil {
		return nil, err
	}
	logger.WithField("file", path).Debug("loading routing table")
	if e.areas, err = area.LoadFile(path, logger); err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"root":  e.areas.Root,
		"areas": e.areas.Len(),
	}).Info("routing table loaded")

	if s.Journal != "" {
		if e.journal, err = journal.Open(s.Journal); err != nil {
			return nil, err
		}
	}
	if s.MetricsFile != "" {
		e.metrics = metrics.New()
	}
	return e, nil
}

func (e *env) Close() {
	if err := e.journal.Close(); err != nil {
		e.logger.WithError(err).Warn("journal close failed")
	}
}

// tosser builds a Tosser from the resolved settings and the run flags on
// cmd.
func (e *env) tosser(cmd *cobra.Command) *tosser.Tosser {
	f := cmd.Flags()
	skipIn, _ := f.GetBool("skip-inbound")
	skipOut, _ := f.GetBool("skip-outbound")
	rescan, _ := f.GetString("rescan")
	return e.newTosser(skipIn, skipOut, rescan)
}

func (e *env) newTosser(skipIn, skipOut bool, rescan string) *tosser.Tosser {
	t := tosser.New(e.areas, tosser.Options{
		Delete:       e.settings.Toss.Delete,
		Kill:         e.settings.Toss.Kill,
		SkipInbound:  skipIn,
		SkipOutbound: skipOut,
		RescanName:   rescan,
		MetricsFile:  e.settings.MetricsFile,
	}, e.logger)
	t.SetJournal(e.journal)
	t.SetMetrics(e.metrics)
	return t
}
