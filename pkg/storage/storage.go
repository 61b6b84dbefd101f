// Package storage keeps the placeholder artifacts on disk.
// Every artifact lives directly inside a single output directory and is named by a fresh uuid.
package storage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-errors/errors"
	"github.com/google/uuid"
	"github.com/labstack/gommon/bytes"
	logger "github.com/labstack/gommon/log"
)

// Extension is appended to every artifact identifier.
const Extension = ".mp4"

var ErrNotFound = errors.Errorf("File not found")

var log = logger.New("storage")

// SetLogLevel adjusts the package logger, normally to match the server's level.
func SetLogLevel(lvl logger.Lvl) {
	log.SetLevel(lvl)
}

// Store is the output directory holding all artifacts.
type Store struct {
	dir     string
	tempDir string
}

// New creates dir if it does not exist. Staged inputs go to the system temp directory.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("output directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.WrapPrefix(err, "could not create output directory", 0)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	return &Store{dir: abs, tempDir: os.TempDir()}, nil
}

// WithTempDir changes where staged inputs are written.
func (s *Store) WithTempDir(dir string) *Store {
	s.tempDir = dir
	return s
}

func (s *Store) Dir() string {
	return s.dir
}

// Stage writes b to a temporary file and returns its path with a cleanup func.
// The cleanup ignores errors from a file that is already gone.
func (s *Store) Stage(b []byte, suffix string) (string, func(), error) {
	f, err := os.CreateTemp(s.tempDir, "input-*"+suffix)
	if err != nil {
		return "", nil, errors.WrapPrefix(err, "could not stage input", 0)
	}
	name := f.Name()
	cleanup := func() {
		if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
			log.Warnf("could not remove staged input %s: %v", name, err)
		}
	}

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, errors.WrapPrefix(err, "could not write staged input", 0)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, errors.Wrap(err, 0)
	}

	log.Debugf("staged %s (%s)", name, bytes.Format(int64(len(b))))
	return name, cleanup, nil
}

// CreatePlaceholder creates an empty artifact under a fresh identifier.
// The file is created exclusively, so an identifier is never handed out twice.
func (s *Store) CreatePlaceholder() (string, error) {
	id := uuid.NewString() + Extension
	f, err := os.OpenFile(filepath.Join(s.dir, id), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", errors.WrapPrefix(err, "could not create placeholder", 0)
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrap(err, 0)
	}
	log.Debugf("created placeholder %s", id)
	return id, nil
}

// Path resolves id to a regular file inside the output directory.
// Identifiers that would escape the directory are reported as ErrNotFound.
func (s *Store) Path(id string) (string, error) {
	if !validID(id) {
		return "", ErrNotFound
	}
	path := filepath.Join(s.dir, id)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", ErrNotFound
	}
	return path, nil
}

// Exists reports whether id names an artifact.
func (s *Store) Exists(id string) bool {
	_, err := s.Path(id)
	return err == nil
}

func validID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	if strings.ContainsAny(id, `/\`) || strings.ContainsRune(id, 0) {
		return false
	}
	return filepath.Base(id) == id
}
