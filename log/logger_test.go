package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stdout)
	defer SetLevel(Notice)

	logger := New("test")

	SetLevel(Notice)
	logger.Debug("hidden debug message")
	logger.Notice("visible notice message")

	out := buf.String()
	if strings.Contains(out, "hidden debug message") {
		t.Fatalf("expected debug message to be filtered; got %q", out)
	}
	if !strings.Contains(out, "visible notice message") || !strings.Contains(out, "[test]") {
		t.Fatalf("expected notice message with module name; got %q", out)
	}

	buf.Reset()
	SetLevel(Debug)
	logger.Debugf("frame %03d", 7)
	if !strings.Contains(buf.String(), "frame 007") {
		t.Fatalf("expected debug message after raising verbosity; got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	type spec struct {
		in     string
		exp    Level
		expErr bool
	}
	specs := []spec{
		{"debug", Debug, false},
		{" INFO ", Info, false},
		{"warning", Warning, false},
		{"verbose", Notice, true},
	}

	for index, s := range specs {
		level, err := ParseLevel(s.in)
		if s.expErr != (err != nil) {
			t.Fatalf("[spec %d] expected error %t; got %v", index, s.expErr, err)
		}
		if level != s.exp {
			t.Fatalf("[spec %d] expected level %d; got %d", index, s.exp, level)
		}
	}
}
