package formatter

import (
	"fmt"
	"io"
)

// Summary counts what a run has done.
type Summary struct {
	Files        int // files scanned
	MatchedFiles int // files with at least one match
	Matches      int
	FailedFiles  int // files skipped after a read or parse failure
}

// Write prints the summary as a single line.
func (s Summary) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%d files scanned, %d matched, %d matches, %d failed\n",
		s.Files, s.MatchedFiles, s.Matches, s.FailedFiles)
	return err
}
