package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"

	"github.com/ginjaninja78/dfpitr-reader/internal/types"
)

// Options selects which statement files an archive must carry.
type Options struct {
	PrefixLength int
	Individual   bool
	Consolidated bool
}

// DefaultOptions reads both balance types with the default prefix.
func DefaultOptions() Options {
	return Options{PrefixLength: DefaultPrefixLength, Individual: true, Consolidated: true}
}

// Archive is an open DFP/ITR ZIP archive with classified members.
type Archive struct {
	Names   *MemberNames
	Options Options

	zr     *zip.Reader
	closer io.Closer
}

// Open opens the archive at path.
func Open(path string, opts Options) (*Archive, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrBadArchive, path, err)
	}

	a, err := newArchive(&rc.Reader, rc, opts)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// NewReader reads an archive from r, which has the given size.
func NewReader(r io.ReaderAt, size int64, opts Options) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrBadArchive, err)
	}
	return newArchive(zr, nil, opts)
}

func newArchive(zr *zip.Reader, closer io.Closer, opts Options) (*Archive, error) {
	if opts.PrefixLength == 0 {
		opts.PrefixLength = DefaultPrefixLength
	}

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}

	parsed, err := ParseMemberNames(names, opts.PrefixLength, opts.Individual, opts.Consolidated)
	if err != nil {
		return nil, err
	}
	return &Archive{Names: parsed, Options: opts, zr: zr, closer: closer}, nil
}

// OpenMember opens a member for reading.
func (a *Archive) OpenMember(name string) (io.ReadCloser, error) {
	f, err := a.zr.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: member '%s': %v", types.ErrBadArchive, name, err)
	}
	return f, nil
}

// Close releases the archive file, if the archive owns one.
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// Stack holds resources that are closed together, last pushed first.
type Stack struct {
	closers []io.Closer
}

// Push adds a resource to the stack.
func (s *Stack) Push(c io.Closer) {
	s.closers = append(s.closers, c)
}

// Close closes every resource in reverse order and joins their errors.
// The stack is empty afterwards, so closing twice is harmless.
func (s *Stack) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
