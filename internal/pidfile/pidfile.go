// Package pidfile keeps a single daemon instance per user with an flock'd
// pid file and lets other processes signal it.
package pidfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// ErrLocked is returned when another process holds the pid file.
var ErrLocked = errors.New("daemon already running")

// ErrNotRunning is returned when no process holds the pid file.
var ErrNotRunning = errors.New("daemon not running")

// File is a held pid file lock.
type File struct {
	path string
	f    *os.File
}

// Acquire locks path and writes the current pid into it.
func Acquire(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create pid dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open pid file: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			if pid, readErr := Read(path); readErr == nil {
				return nil, fmt.Errorf("%w (pid %d)", ErrLocked, pid)
			}
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("lock pid file: %w", err)
	}
	if err := f.Truncate(0); err != nil {
		f.Close()
		return nil, fmt.Errorf("truncate pid file: %w", err)
	}
	if _, err := f.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("write pid file: %w", err)
	}
	return &File{path: path, f: f}, nil
}

// Path returns the pid file location.
func (p *File) Path() string {
	return p.path
}

// Release removes the pid file and drops the lock.
func (p *File) Release() error {
	if p == nil || p.f == nil {
		return nil
	}
	f := p.f
	p.f = nil
	if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		f.Close()
		return fmt.Errorf("remove pid file: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_UN); err != nil {
		f.Close()
		return fmt.Errorf("unlock pid file: %w", err)
	}
	return f.Close()
}

// Read returns the pid recorded in path.
func Read(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, 64))
	if err != nil {
		return 0, fmt.Errorf("read pid file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("malformed pid file %s", path)
	}
	return pid, nil
}

// Running reports the pid of the process holding path, or ErrNotRunning when
// the file is missing or unlocked.
func Running(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, ErrNotRunning
		}
		return 0, fmt.Errorf("open pid file: %w", err)
	}
	defer f.Close()
	if err := unix.Flock(int(f.Fd()), unix.LOCK_SH|unix.LOCK_NB); err == nil {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		return 0, ErrNotRunning
	} else if !errors.Is(err, unix.EWOULDBLOCK) {
		return 0, fmt.Errorf("probe pid file: %w", err)
	}
	return Read(path)
}

// Signal sends sig to the process holding path and returns its pid.
func Signal(path string, sig unix.Signal) (int, error) {
	pid, err := Running(path)
	if err != nil {
		return 0, err
	}
	if err := unix.Kill(pid, sig); err != nil {
		return pid, fmt.Errorf("signal pid %d: %w", pid, err)
	}
	return pid, nil
}
