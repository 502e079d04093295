package report

import (
	"io"
	"os"
	"path/filepath"

	"github.com/YuminosukeSato/outcomecv/pkg/errors"
)

// Batch stages artifacts as temp files next to their targets and renames
// them into place together on Commit, so a run either leaves every artifact
// or none. The zero value is ready to use.
type Batch struct {
	staged []stagedFile
}

type stagedFile struct {
	tmp, path string
}

// Stage writes one artifact to a temp file in path's directory. Nothing is
// visible at path until Commit.
func (b *Batch) Stage(path string, write func(w io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "create temp file for %s", path)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrapf(err, "sync %s", path)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", path)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.Wrapf(err, "chmod %s", path)
	}
	b.staged = append(b.staged, stagedFile{tmp: tmp.Name(), path: path})
	return nil
}

// Commit renames every staged file into place. If a rename fails, the
// targets already renamed by this call are removed again.
func (b *Batch) Commit() error {
	for i, s := range b.staged {
		if err := os.Rename(s.tmp, s.path); err != nil {
			for _, done := range b.staged[:i] {
				os.Remove(done.path)
			}
			b.staged = b.staged[i:]
			b.Discard()
			return errors.Wrapf(err, "rename into %s", s.path)
		}
	}
	b.staged = nil
	return nil
}

// Discard removes any staged temp files. It is a no-op after Commit.
func (b *Batch) Discard() {
	for _, s := range b.staged {
		os.Remove(s.tmp)
	}
	b.staged = nil
}

// writeAtomic stages a single artifact and commits it.
func writeAtomic(path string, write func(w io.Writer) error) error {
	var b Batch
	defer b.Discard()
	if err := b.Stage(path, write); err != nil {
		return err
	}
	return b.Commit()
}
