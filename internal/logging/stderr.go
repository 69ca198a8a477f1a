package logging

import "os"

// stderr resolves os.Stderr on each write so tests that swap it still capture output.
type stderr struct{}

func (stderr) Write(p []byte) (int, error) { return os.Stderr.Write(p) }
