package ra

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Base is an open message base. All five files stay open, read-write, until
// Close. A Base is not safe for concurrent use; the .BSY lock keeps other
// processes out while it is open.
type Base struct {
	Root string

	info  *os.File
	idx   *os.File
	toidx *os.File
	hdr   *os.File
	txt   *os.File

	release func()
	isOpen  bool
}

func filesOf(root string) []string {
	return []string{
		filepath.Join(root, CountsFile),
		filepath.Join(root, IndexFile),
		filepath.Join(root, RecipientFile),
		filepath.Join(root, HeaderFile),
		filepath.Join(root, TextFile),
	}
}

// Create lays down an empty message base in root: a zeroed counts record and
// four empty record files. It refuses to touch an existing base.
func Create(root string) error {
	if err := os.MkdirAll(root, 0755); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBaseOpen, root, err)
	}
	paths := filesOf(root)
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return fmt.Errorf("%w: %s", ErrBaseExists, p)
		}
	}

	for i, p := range paths {
		var data []byte
		if i == 0 {
			data = make([]byte, CountsSize)
		}
		if err := os.WriteFile(p, data, 0644); err != nil {
			return fmt.Errorf("%w: create %s: %v", ErrStorageWrite, p, err)
		}
	}
	return nil
}

// Open acquires the base lock and opens all five files. Missing files are an
// error; Open never creates a base.
func Open(root string) (*Base, error) {
	release, err := acquireFileLock(root)
	if err != nil {
		return nil, err
	}

	b := &Base{Root: root, release: release}
	handles := []**os.File{&b.info, &b.idx, &b.toidx, &b.hdr, &b.txt}
	for i, p := range filesOf(root) {
		f, err := os.OpenFile(p, os.O_RDWR, 0644)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("%w: %s: %v", ErrBaseOpen, p, err)
		}
		*handles[i] = f
	}

	b.isOpen = true
	return b, nil
}

// Close closes every file and releases the lock.
func (b *Base) Close() error {
	var errs []error
	for _, f := range []*os.File{b.info, b.idx, b.toidx, b.hdr, b.txt} {
		if f != nil {
			if err := f.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	b.info, b.idx, b.toidx, b.hdr, b.txt = nil, nil, nil, nil, nil
	b.isOpen = false

	if b.release != nil {
		b.release()
		b.release = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("ra: errors closing base: %w", errors.Join(errs...))
	}
	return nil
}

// recordCount returns the number of whole records of size in f. A torn tail
// shorter than one record is not counted.
func recordCount(f *os.File, size int64) (int64, error) {
	st, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("%w: stat %s: %v", ErrStorageSeek, f.Name(), err)
	}
	return st.Size() / size, nil
}

// appendRecord writes data at the record-aligned end of f and returns the
// zero-based position it landed at.
func appendRecord(f *os.File, size int64, data []byte) (int64, error) {
	n, err := recordCount(f, size)
	if err != nil {
		return 0, err
	}
	if _, err := f.WriteAt(data, n*size); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrStorageWrite, f.Name(), err)
	}
	return n, nil
}

// readRecord fills buf from offset off. A short read is ErrCorruptRecord;
// io.EOF at exactly off is returned unwrapped so iterators can stop.
func readRecord(f *os.File, buf []byte, off int64) error {
	n, err := f.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if errors.Is(err, io.EOF) {
		if n == 0 {
			return io.EOF
		}
		return fmt.Errorf("%w: %s at %d", ErrCorruptRecord, f.Name(), off)
	}
	return fmt.Errorf("%w: %s at %d: %v", ErrStorageRead, f.Name(), off, err)
}

func (b *Base) checkOpen() error {
	if !b.isOpen {
		return ErrBaseNotOpen
	}
	return nil
}
