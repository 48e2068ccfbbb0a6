// Package loader reads whole log files through the classifier and hands the
// resulting records to a session. A load is all-or-nothing: the target
// session is only touched after every line has been read and classified.
package loader

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/atikulmunna/loupe/internal/model"
	"github.com/atikulmunna/loupe/internal/parser"
	"github.com/atikulmunna/loupe/internal/session"
)

// maxLineBytes bounds a single raw line; folded messages can grow past this,
// single lines cannot.
const maxLineBytes = 1024 * 1024

// Load reads the file at path, classifies every line, and replaces the
// session's records with the result. On any failure — open error, read
// error, cancellation — the session keeps its previous contents untouched.
// Filter and highlight state always carries over.
func Load(ctx context.Context, sess *session.Session, c *parser.Classifier, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	records, err := ReadAll(ctx, f, c)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	sess.Replace(records)
	return nil
}

// ReadAll classifies every line of r in order and returns the produced
// records. Lines no grammar accepts are folded per the continuation policy:
// into the preceding record, or into a fresh unparsed record when none
// exists yet. The context is checked between lines, making large loads
// cancellable without partial effects.
func ReadAll(ctx context.Context, r io.Reader, c *parser.Classifier) ([]model.LogRecord, error) {
	// A scratch session gives us the exact append/fold semantics the
	// streaming boundary exposes, sequence ids included.
	staging := session.New("")

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line := scanner.Text()
		if rec, ok := c.Classify(line); ok {
			staging.Append(rec)
		} else {
			staging.Fold(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return staging.Records(), nil
}
