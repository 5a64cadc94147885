// Package journal keeps a small bbolt database next to the message base so
// an inbound toss that dies between its five appends can be undone on the
// next start, plus a short history of completed runs.
package journal

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"

	"github.com/stlalpha/fdbridge/internal/ftn"
	"github.com/stlalpha/fdbridge/internal/ra"
)

var (
	pendingBucket = []byte("pending")
	runsBucket    = []byte("runs")
	pendingKey    = []byte("toss")
)

// historyLimit bounds the runs bucket.
const historyLimit = 100

var ErrJournalClosed = errors.New("journal: closed")

// Entry describes one inbound toss in flight.
type Entry struct {
	Run       string       `json:"run"`
	Source    string       `json:"source"`
	OrigCost  int16        `json:"orig_cost"`
	Snapshot  *ra.Snapshot `json:"snapshot"`
	CreatedAt time.Time    `json:"created_at"`
}

// Run is the summary kept for each finished toss run.
type Run struct {
	ID        string    `json:"id"`
	Started   time.Time `json:"started"`
	Finished  time.Time `json:"finished"`
	Inbound   int       `json:"inbound"`
	Outbound  int       `json:"outbound"`
	Abandoned int       `json:"abandoned"`
	Error     string    `json:"error,omitempty"`
}

// Journal wraps the bbolt handle.
type Journal struct {
	db *bolt.DB
}

// Open opens or creates the journal database at path.
func Open(path string) (*Journal, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(pendingBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(runsBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: init %s: %w", path, err)
	}
	return &Journal{db: db}, nil
}

// Close closes the database. A nil Journal is a no-op.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	return err
}

// Begin records e as the toss in flight. Only one toss is ever pending.
func (j *Journal) Begin(e Entry) error {
	if j == nil {
		return nil
	}
	if j.db == nil {
		return ErrJournalClosed
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	bz, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(pendingBucket)
		if b == nil {
			return fmt.Errorf("journal: pending bucket missing")
		}
		return b.Put(pendingKey, bz)
	})
}

// Commit clears the pending toss.
func (j *Journal) Commit() error {
	if j == nil {
		return nil
	}
	if j.db == nil {
		return ErrJournalClosed
	}
	return j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(pendingBucket)
		if b == nil {
			return fmt.Errorf("journal: pending bucket missing")
		}
		return b.Delete(pendingKey)
	})
}

// Pending returns the toss in flight, or nil.
func (j *Journal) Pending() (*Entry, error) {
	if j == nil {
		return nil, nil
	}
	if j.db == nil {
		return nil, ErrJournalClosed
	}
	var e *Entry
	err := j.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(pendingBucket)
		if b == nil {
			return nil
		}
		bz := b.Get(pendingKey)
		if bz == nil {
			return nil
		}
		e = &Entry{}
		return json.Unmarshal(bz, e)
	})
	if err != nil {
		return nil, fmt.Errorf("journal: read pending: %w", err)
	}
	return e, nil
}

// Recover undoes a pending toss: the base files are cut back to the
// snapshot and the source message gets its original cost back so the next
// run tosses it again. It reports whether anything was undone.
func (j *Journal) Recover(base *ra.Base, log logrus.FieldLogger) (bool, error) {
	e, err := j.Pending()
	if err != nil || e == nil {
		return false, err
	}
	if e.Snapshot == nil {
		return false, fmt.Errorf("journal: pending toss of %s has no snapshot", e.Source)
	}

	if err := base.Rollback(e.Snapshot); err != nil {
		return false, fmt.Errorf("journal: rollback: %w", err)
	}

	if _, err := os.Stat(e.Source); os.IsNotExist(err) {
		log.WithField("source", e.Source).Warn("journal: source of interrupted toss is gone; message base rolled back only")
	} else {
		msg, _, err := ftn.ReadFile(e.Source)
		if err != nil {
			return false, fmt.Errorf("journal: restore %s: %w", e.Source, err)
		}
		msg.Cost = e.OrigCost
		if err := ftn.RewriteHeader(e.Source, msg); err != nil {
			return false, fmt.Errorf("journal: restore %s: %w", e.Source, err)
		}
	}

	log.WithFields(logrus.Fields{
		"source": e.Source,
		"run":    e.Run,
	}).Warn("journal: rolled back interrupted toss")
	return true, j.Commit()
}

// RecordRun appends a finished run to the history, trimming the oldest
// entries past historyLimit.
func (j *Journal) RecordRun(r Run) error {
	if j == nil {
		return nil
	}
	if j.db == nil {
		return ErrJournalClosed
	}
	bz, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(runsBucket)
		if b == nil {
			return fmt.Errorf("journal: runs bucket missing")
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		if err := b.Put(seqKey(seq), bz); err != nil {
			return err
		}
		n := 0
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			n++
		}
		for ; n > historyLimit; n-- {
			k, _ := b.Cursor().First()
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// Runs returns up to limit of the most recent runs, newest first.
func (j *Journal) Runs(limit int) ([]Run, error) {
	if j == nil {
		return nil, nil
	}
	if j.db == nil {
		return nil, ErrJournalClosed
	}
	var out []Run
	err := j.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(runsBucket)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Last(); k != nil && len(out) < limit; k, v = c.Prev() {
			var r Run
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			out = append(out, r)
		}
		return nil
	})
	return out, err
}

func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}
