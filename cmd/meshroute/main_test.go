package main

import (
	"errors"
	"testing"

	"github.com/okdaichi/meshroute/internal/cli"
)

func TestRunMapsSuccessToZero(t *testing.T) {
	orig := runNode
	defer func() { runNode = orig }()
	runNode = func([]string) error { return nil }

	if code := run(nil); code != 0 {
		t.Fatalf("code = %d, want 0", code)
	}
}

func TestRunVersionFlagExitsZeroWithoutCallingRunNode(t *testing.T) {
	orig := runNode
	defer func() { runNode = orig }()
	called := false
	runNode = func([]string) error { called = true; return nil }

	if code := run([]string{"--version"}); code != 0 {
		t.Fatalf("code = %d, want 0", code)
	}
	if called {
		t.Fatal("expected runNode not to be called for --version")
	}
}

func TestRunMapsConfigErrorToOne(t *testing.T) {
	orig := runNode
	defer func() { runNode = orig }()
	runNode = func([]string) error { return errors.New("-id is required") }

	if code := run(nil); code != 1 {
		t.Fatalf("code = %d, want 1", code)
	}
}

func TestRunMapsTransportErrorToTwo(t *testing.T) {
	orig := runNode
	defer func() { runNode = orig }()
	runNode = func([]string) error { return &cli.TransportError{Err: errors.New("bind: address in use")} }

	if code := run(nil); code != 2 {
		t.Fatalf("code = %d, want 2", code)
	}
}
