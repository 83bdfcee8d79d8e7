package fort15

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// SetHotStart rewrites the IHOT value in dir's run-control file. IHOT
// selects the checkpoint unit the model resumes from, zero for a cold
// start. The trailing comment is preserved; a file without an IHOT line is
// rewritten unchanged.
func SetHotStart(ihot int, dir string) error {
	return rewriteKeyword(dir, "IHOT", func(w io.Writer, comment string) {
		fmt.Fprintf(w, " %-35d %s%s", ihot, "!", ensureNewline(comment))
	})
}

// SetHotStartOutput rewrites the NHSTAR line: nhstar chooses the hot-start
// output unit and nhsinc the write cadence in time steps.
func SetHotStartOutput(nhstar, nhsinc int, dir string) error {
	return rewriteKeyword(dir, "NHSTAR", func(w io.Writer, comment string) {
		fmt.Fprintf(w, " %-1d %-35d %s%s", nhstar, nhsinc, "!", ensureNewline(comment))
	})
}

// rewriteKeyword streams dir's run-control file to a temp file in the same
// directory, replacing every line containing keyword via emit and copying
// the rest verbatim, then renames the temp file over the original. The
// original is never left partially written; the temp file is removed on
// every failure path.
func rewriteKeyword(dir, keyword string, emit func(w io.Writer, comment string)) error {
	path := filepath.Join(dir, FileName)
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open run control: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("stat run control: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "temp-*.15")
	if err != nil {
		return fmt.Errorf("create temp run control: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if err := copyRewritten(src, path, tmp, keyword, emit); err != nil {
		return err
	}
	if err := tmp.Chmod(info.Mode()); err != nil {
		return fmt.Errorf("carry run control mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp run control: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace run control: %w", err)
	}
	return nil
}

func copyRewritten(src io.Reader, srcPath string, dst io.Writer, keyword string, emit func(io.Writer, string)) error {
	lr := newLineReader(src, srcPath)
	w := bufio.NewWriter(dst)
	for {
		line, ok, err := lr.next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if strings.Contains(line, keyword) {
			_, comment := splitValue(line)
			emit(w, comment)
		} else {
			_, _ = w.WriteString(line)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write temp run control: %w", err)
	}
	return nil
}
