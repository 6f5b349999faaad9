package genericclioptions

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

type IOStreams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer

	Verbose bool
}

// NewDefaultIOStreams returns the default IOStreams (using os.Stdin, os.Stdout, os.Stderr).
func NewDefaultIOStreams() *IOStreams {
	return &IOStreams{
		In:     os.Stdin,
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	}
}

// NewTestIOStreams returns IOStreams backed by buffers for unit tests.
//
//nolint:revive
func NewTestIOStreams() (iostreams *IOStreams, out *bytes.Buffer, errOut *bytes.Buffer) {
	out, errOut = &bytes.Buffer{}, &bytes.Buffer{}

	iostreams = &IOStreams{
		In:     &bytes.Buffer{},
		Out:    out,
		ErrOut: errOut,
	}

	return
}

// NewTestIOStreamsDiscard returns IOStreams that discard both output and error output.
func NewTestIOStreamsDiscard() *IOStreams {
	return &IOStreams{
		In:     &bytes.Buffer{},
		Out:    io.Discard,
		ErrOut: io.Discard,
	}
}

// Printf writes a general, unprefixed formatted message to the standard output stream.
func (s *IOStreams) Printf(format string, args ...any) {
	fmt.Fprintf(s.Out, format, args...)
}

// Debugf writes formatted debug output to the error stream
// if Verbose is enabled.
func (s *IOStreams) Debugf(format string, args ...any) {
	if s.Verbose {
		fmt.Fprintf(s.ErrOut, "DEBUG "+format, args...)
	}
}

// Infof writes a formatted message to the standard output stream.
func (s *IOStreams) Infof(format string, args ...any) {
	fmt.Fprintf(s.Out, "INFO "+format, args...)
}

// Warnf writes a formatted warning to the error stream.
func (s *IOStreams) Warnf(format string, args ...any) {
	fmt.Fprintf(s.ErrOut, "WARN "+format, args...)
}

// Errorf writes a formatted message to the error stream.
func (s *IOStreams) Errorf(format string, args ...any) {
	fmt.Fprintf(s.ErrOut, "ERROR "+format, args...)
}
