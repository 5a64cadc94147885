// Package tosser moves mail between *.MSG directories and the message base.
//
// A run tosses inbound first, area by area in registration order, then walks
// the message base headers once for outbound mail.
package tosser

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stlalpha/fdbridge/internal/area"
	"github.com/stlalpha/fdbridge/internal/journal"
	"github.com/stlalpha/fdbridge/internal/metrics"
	"github.com/stlalpha/fdbridge/internal/ra"
)

// ExcludedSender is the sender prefix of messages the BBS mail door writes
// into the *.MSG directories itself. They are never tossed inbound.
const ExcludedSender = "qmail"

// Options select what a run does.
type Options struct {
	Delete       bool   // remove *.MSG files after tossing them inbound
	Kill         bool   // mark outbound-tossed headers deleted
	SkipInbound  bool
	SkipOutbound bool
	RescanName   string // also export mail from this sender
	MetricsFile  string
}

// TossResult holds the results of a toss run.
type TossResult struct {
	RunID            string
	MessagesImported int
	MessagesExported int
	AlreadyTossed    int
	Excluded         int
	Corrupt          int
	Rejected         int
	Abandoned        int
	Recovered        bool
	Errors           []string
}

// Moved reports whether any message was tossed in either direction.
func (r TossResult) Moved() bool {
	return r.MessagesImported > 0 || r.MessagesExported > 0
}

// Tosser runs toss passes for one message base and its areas.
type Tosser struct {
	areas   *area.Registry
	opts    Options
	logger  *logrus.Logger
	journal *journal.Journal
	metrics *metrics.Metrics
}

// New creates a Tosser. A nil logger uses logrus' standard logger.
func New(areas *area.Registry, opts Options, logger *logrus.Logger) *Tosser {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	opts.RescanName = strings.ToUpper(strings.TrimSpace(opts.RescanName))
	return &Tosser{areas: areas, opts: opts, logger: logger}
}

// SetJournal enables crash recovery through j.
func (t *Tosser) SetJournal(j *journal.Journal) { t.journal = j }

// SetMetrics enables metrics collection.
func (t *Tosser) SetMetrics(m *metrics.Metrics) { t.metrics = m }

// RunOnce opens the message base, performs one inbound and one outbound
// pass, and closes it again. A returned error is fatal for the run; the
// result still reports what was done before it.
func (t *Tosser) RunOnce() (TossResult, error) {
	started := time.Now()
	res := TossResult{RunID: uuid.NewString()}
	log := t.logger.WithField("run", res.RunID)

	err := t.run(log, &res)

	t.metrics.ObserveRun(time.Since(started), err)
	if werr := t.metrics.WriteTextfile(t.opts.MetricsFile); werr != nil {
		log.WithError(werr).Warn("metrics textfile not written")
	}

	rec := journal.Run{
		ID:        res.RunID,
		Started:   started,
		Finished:  time.Now(),
		Inbound:   res.MessagesImported,
		Outbound:  res.MessagesExported,
		Abandoned: res.Abandoned,
	}
	if err != nil {
		rec.Error = err.Error()
		res.Errors = append(res.Errors, err.Error())
	}
	if jerr := t.journal.RecordRun(rec); jerr != nil {
		log.WithError(jerr).Warn("run history not recorded")
	}

	log.WithFields(logrus.Fields{
		"inbound":   res.MessagesImported,
		"outbound":  res.MessagesExported,
		"abandoned": res.Abandoned,
		"elapsed":   time.Since(started).Round(time.Millisecond).String(),
	}).Info("toss run finished")
	return res, err
}

func (t *Tosser) run(log logrus.FieldLogger, res *TossResult) (err error) {
	base, err := ra.Open(t.areas.Root)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := base.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	recovered, err := t.journal.Recover(base, log)
	if err != nil {
		return err
	}
	res.Recovered = recovered

	st, err := base.Stats()
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"lowest":  st.Counts.Lowest,
		"highest": st.Counts.Highest,
		"total":   st.Counts.Total,
		"blocks":  st.Blocks,
	}).Info("message base opened")

	if t.opts.SkipInbound {
		log.Info("skipping scan for inbound mail")
	} else {
		counts := st.Counts
		if err := t.processInbound(base, &counts, log, res); err != nil {
			return fmt.Errorf("inbound: %w", err)
		}
	}

	if t.opts.SkipOutbound {
		log.Info("skipping scan for outbound mail")
		return nil
	}
	if err := t.processOutbound(base, log, res); err != nil {
		return fmt.Errorf("outbound: %w", err)
	}
	return nil
}
