package loader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/atikulmunna/loupe/internal/parser"
	"github.com/atikulmunna/loupe/internal/session"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadEndToEnd(t *testing.T) {
	path := writeFile(t, "app.log", strings.Join([]string{
		"2025/02/25 06:28:24 INFO A: hello",
		"2025/02/25 06:28:25 ERROR B: boom",
		"stack line 1",
	}, "\n"))

	sess := session.New(path)
	if err := Load(context.Background(), sess, parser.NewClassifier(), path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	recs := sess.Records()
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[1].Message != "boom\nstack line 1" {
		t.Errorf("expected folded message, got %q", recs[1].Message)
	}

	sess.SetLevelFilter("ERROR")
	view := sess.Filtered()
	if len(view) != 1 || view[0].Seq != 2 {
		t.Errorf("expected exactly record 2 in the view, got %+v", view)
	}
}

func TestLoadLeadingGarbageBecomesFirstRecord(t *testing.T) {
	path := writeFile(t, "app.log", strings.Join([]string{
		"banner with no structure",
		"second banner line",
		"2025/02/25 06:28:24 INFO A: hello",
	}, "\n"))

	sess := session.New(path)
	if err := Load(context.Background(), sess, parser.NewClassifier(), path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	recs := sess.Records()
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Message != "banner with no structure\nsecond banner line" {
		t.Errorf("unexpected first record message %q", recs[0].Message)
	}
	if recs[0].HasTimestamp() {
		t.Error("unparsed record must not carry a timestamp")
	}
	if recs[1].Seq != 2 {
		t.Errorf("expected seq 2 for the parsed record, got %d", recs[1].Seq)
	}
}

func TestLoadMissingFile(t *testing.T) {
	sess := session.New("nope.log")
	err := Load(context.Background(), sess, parser.NewClassifier(), filepath.Join(t.TempDir(), "nope.log"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if got := len(sess.Records()); got != 0 {
		t.Errorf("failed load must not populate the session, got %d records", got)
	}
}

func TestLoadFailureKeepsPreviousRecords(t *testing.T) {
	path := writeFile(t, "app.log", "2025/02/25 06:28:24 INFO A: hello")
	sess := session.New(path)
	if err := Load(context.Background(), sess, parser.NewClassifier(), path); err != nil {
		t.Fatal(err)
	}

	if err := Load(context.Background(), sess, parser.NewClassifier(), path+".gone"); err == nil {
		t.Fatal("expected an error")
	}
	recs := sess.Records()
	if len(recs) != 1 || recs[0].Message != "hello" {
		t.Errorf("previous records must survive a failed reload, got %+v", recs)
	}
}

func TestLoadCancellation(t *testing.T) {
	path := writeFile(t, "app.log", strings.Repeat("2025/02/25 06:28:24 INFO A: hello\n", 100))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sess := session.New(path)
	err := Load(ctx, sess, parser.NewClassifier(), path)
	if err == nil {
		t.Fatal("expected a cancellation error")
	}
	if got := len(sess.Records()); got != 0 {
		t.Errorf("cancelled load must leave the session untouched, got %d records", got)
	}
}

func TestLoadReloadReplacesRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	if err := os.WriteFile(path, []byte("2025/02/25 06:28:24 INFO A: hello\n"), 0644); err != nil {
		t.Fatal(err)
	}

	sess := session.New(path)
	c := parser.NewClassifier()
	if err := Load(context.Background(), sess, c, path); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("2025/02/25 06:28:26 WARN C: rewritten\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Load(context.Background(), sess, c, path); err != nil {
		t.Fatal(err)
	}

	recs := sess.Records()
	if len(recs) != 1 || recs[0].Message != "rewritten" {
		t.Errorf("reload must fully replace records, got %+v", recs)
	}
	if recs[0].Seq != 1 {
		t.Errorf("sequence ids restart on reload, got %d", recs[0].Seq)
	}
}

func TestExpandGlobs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.log", "b.log", "c.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	paths, err := ExpandGlobs([]string{filepath.Join(dir, "*.log")})
	if err != nil {
		t.Fatalf("ExpandGlobs() error = %v", err)
	}
	if len(paths) != 2 {
		t.Errorf("expected 2 matches, got %v", paths)
	}
}

func TestExpandGlobsKeepsUnmatchedLiteral(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nothing.log")
	paths, err := ExpandGlobs([]string{missing})
	if err != nil {
		t.Fatalf("ExpandGlobs() error = %v", err)
	}
	if len(paths) != 1 || paths[0] != missing {
		t.Errorf("expected literal passthrough, got %v", paths)
	}
}

func TestExpandGlobsDeduplicates(t *testing.T) {
	path := writeFile(t, "a.log", "x")
	paths, err := ExpandGlobs([]string{path, path})
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 {
		t.Errorf("expected deduplication, got %v", paths)
	}
}
