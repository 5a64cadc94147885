// Package area maps *.MSG directories to message base board numbers.
package area

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// MaxAreas is the number of boards a message base can count.
const MaxAreas = 200

var (
	// ErrConfiguration covers a bad routing table: too many areas, tags out
	// of range, duplicate tags, a missing root.
	ErrConfiguration = errors.New("area: configuration error")
	// ErrNotFound means no routing file exists at any searched location.
	ErrNotFound = errors.New("area: configuration file not found")
	// ErrTooManyAreas is the ErrConfiguration case of a table that does
	// not fit the message base: more than MaxAreas entries or a tag past it.
	ErrTooManyAreas = fmt.Errorf("%w: too many areas", ErrConfiguration)
)

// Area binds one directory of *.MSG files to a board.
type Area struct {
	Dir string `json:"dir"`
	Tag int    `json:"tag"`
}

// Registry is the loaded routing table. It is read-only after New.
type Registry struct {
	Root  string
	areas []Area
	byTag map[int]int
	byDir map[string]int
}

// New validates defs and builds a registry. Tag 0 areas are logged and
// skipped; anything else invalid fails with ErrConfiguration.
func New(root string, defs []Area, log logrus.FieldLogger) (*Registry, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: no message base root", ErrConfiguration)
	}
	r := &Registry{
		Root:  root,
		byTag: make(map[int]int),
		byDir: make(map[string]int),
	}
	for _, d := range defs {
		if d.Dir == "" {
			return nil, fmt.Errorf("%w: area with tag %d has no directory", ErrConfiguration, d.Tag)
		}
		if d.Tag == 0 {
			if log != nil {
				log.WithField("dir", d.Dir).Warn("area may not have a tag of 0; skipped")
			}
			continue
		}
		if d.Tag < 0 || d.Tag > MaxAreas {
			return nil, fmt.Errorf("%w: tag %d for %s outside 1..%d", ErrTooManyAreas, d.Tag, d.Dir, MaxAreas)
		}
		if prev, ok := r.byTag[d.Tag]; ok {
			return nil, fmt.Errorf("%w: tag %d used by %s and %s", ErrConfiguration, d.Tag, r.areas[prev].Dir, d.Dir)
		}
		if len(r.areas) == MaxAreas {
			return nil, fmt.Errorf("%w: more than %d", ErrTooManyAreas, MaxAreas)
		}
		r.byTag[d.Tag] = len(r.areas)
		r.byDir[filepath.Clean(d.Dir)] = len(r.areas)
		r.areas = append(r.areas, d)
	}
	return r, nil
}

// Areas returns the routable areas in registration order.
func (r *Registry) Areas() []Area {
	out := make([]Area, len(r.areas))
	copy(out, r.areas)
	return out
}

// Len returns the number of routable areas.
func (r *Registry) Len() int { return len(r.areas) }

// ByTag looks up the area for a board number.
func (r *Registry) ByTag(tag int) (Area, bool) {
	i, ok := r.byTag[tag]
	if !ok {
		return Area{}, false
	}
	return r.areas[i], true
}

// ByDir looks up the area registered for dir.
func (r *Registry) ByDir(dir string) (Area, bool) {
	i, ok := r.byDir[filepath.Clean(dir)]
	if !ok {
		return Area{}, false
	}
	return r.areas[i], true
}
