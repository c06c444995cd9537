// Package wal implements the write-ahead log that is the sole source of
// truth for the set of known packages and their dependency edges (spec
// §4.D). It owns the in-memory state.State it replays into and drives
// every mutation of it.
package wal

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/open-edge-platform/repodb/internal/errs"
	"github.com/open-edge-platform/repodb/internal/pkgrecord"
	"github.com/open-edge-platform/repodb/internal/state"
	"github.com/open-edge-platform/repodb/internal/utils/logger"
	"golang.org/x/sys/unix"
)

// Magic is the fixed 8-byte header every WAL file begins with.
var Magic = [8]byte{'A', 'L', 'A', 'I', 0x00, 0x00, 0x00, 0x00}

// mode tracks the WAL's lifecycle: init -> replaying -> ready. Appends
// are no-ops outside ready so replay never double-logs.
type mode int

const (
	modeInit mode = iota
	modeReplaying
	modeReady
)

// WAL owns one log file and the State it drives. It is not safe for
// concurrent use by multiple goroutines; spec §5 assumes a single
// cooperative caller per open WAL.
type WAL struct {
	file  *os.File
	path  string
	mode  mode
	state *state.State
}

// Open opens the WAL at path, creating it (with just the magic header)
// if absent, or replaying it into a fresh State if present. It takes an
// exclusive advisory lock on the file for the lifetime of the returned
// WAL, failing with errs.ErrWalBusy if another process holds it.
func Open(path string) (*WAL, error) {
	log := logger.Logger()

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening wal %s: %w", path, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if err == unix.EWOULDBLOCK {
			return nil, fmt.Errorf("%w: %s is locked by another process", errs.ErrWalBusy, path)
		}
		return nil, fmt.Errorf("locking wal %s: %w", path, err)
	}

	w := &WAL{file: f, path: path, mode: modeInit, state: state.New()}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat wal %s: %w", path, err)
	}

	if info.Size() == 0 {
		if _, err := f.Write(Magic[:]); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing wal magic: %w", err)
		}
		if err := f.Sync(); err != nil {
			f.Close()
			return nil, fmt.Errorf("syncing wal magic: %w", err)
		}
		w.mode = modeReady
		log.Debugf("created new wal at %s", path)
		return w, nil
	}

	w.mode = modeReplaying
	if err := w.replay(); err != nil {
		f.Close()
		return nil, err
	}
	w.mode = modeReady
	log.Infof("replayed wal %s: revision=%d packages=%d", path, w.state.Revision(), w.state.Len())
	return w, nil
}

// replay reads every complete, newline-terminated record and applies it
// to State, bumping the revision once per applied record. A truncated
// final line (no trailing 0x0A) is silently dropped, per spec §4.D. Any
// other malformed record is fatal.
func (w *WAL) replay() error {
	if _, err := w.file.Seek(0, 0); err != nil {
		return fmt.Errorf("seeking wal %s: %w", w.path, err)
	}

	header := make([]byte, 8)
	n, err := w.file.Read(header)
	if err != nil && n == 0 {
		return fmt.Errorf("%w: reading magic of %s: %v", errs.ErrWalCorrupt, w.path, err)
	}
	if n < 8 || !bytes.Equal(header[:n], Magic[:]) {
		return fmt.Errorf("%w: bad magic in %s", errs.ErrWalCorrupt, w.path)
	}

	reader := bufio.NewReader(w.file)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err != io.EOF {
				return fmt.Errorf("%w: reading wal %s: %v", errs.ErrWalCorrupt, w.path, err)
			}
			// EOF: a non-empty line here has no trailing 0x0A, meaning
			// it is a record truncated mid-append by a crash. Drop it
			// silently rather than treating it as corruption.
			break
		}
		line = bytes.TrimRight(line, "\n")
		if len(line) == 0 {
			continue
		}
		if err := w.applyLine(line); err != nil {
			return err
		}
	}
	return nil
}

// applyLine decodes and applies one record during replay, enforcing the
// same preconditions the live operations enforce.
func (w *WAL) applyLine(line []byte) error {
	op, pkg, err := decodeLine(line)
	if err != nil {
		return err
	}
	switch op {
	case OpAdd:
		if err := w.checkAdd(pkg); err != nil {
			return fmt.Errorf("%w: replaying add-package %s: %v", errs.ErrWalCorrupt, pkg.Name, err)
		}
		w.state.Insert(pkg)
	case OpUpdate:
		if err := w.checkUpdate(pkg); err != nil {
			return fmt.Errorf("%w: replaying update-package %s: %v", errs.ErrWalCorrupt, pkg.Name, err)
		}
		w.state.Replace(pkg)
	case OpRemove:
		if err := w.checkRemove(pkg.Name); err != nil {
			return fmt.Errorf("%w: replaying remove-package %s: %v", errs.ErrWalCorrupt, pkg.Name, err)
		}
		w.state.Delete(pkg.Name)
	default:
		return fmt.Errorf("%w: unknown op during replay: %q", errs.ErrWalCorrupt, op)
	}
	return nil
}

// State returns the WAL's in-memory state for read-only use by callers
// such as the graph and exporter.
func (w *WAL) State() *state.State { return w.state }

// Close flushes and releases the file handle. The lock is released as
// part of the close.
func (w *WAL) Close() error {
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// append writes one compact JSON line plus a terminating 0x0A and
// flushes it to the OS before returning, per the durability guarantee in
// spec §4.D. It is a no-op outside mode ready so replay never
// double-logs.
func (w *WAL) append(line []byte) error {
	if w.mode != modeReady {
		return nil
	}
	line = append(line, '\n')
	if _, err := w.file.Write(line); err != nil {
		logger.Logger().Fatalf("wal append to %s failed after state mutation: %v", w.path, err)
	}
	if err := w.file.Sync(); err != nil {
		logger.Logger().Fatalf("wal sync of %s failed after state mutation: %v", w.path, err)
	}
	return nil
}
