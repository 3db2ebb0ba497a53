package main

import (
	"reflect"
	"testing"
)

func TestSplitShellArgs(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"  ", nil},
		{"-u NONE --headless", []string{"-u", "NONE", "--headless"}},
		{`--cmd "set number"`, []string{"--cmd", "set number"}},
		{"--cmd 'set number'", []string{"--cmd", "set number"}},
		{"a  b   c", []string{"a", "b", "c"}},
	}
	for _, tc := range tests {
		got, err := splitShellArgs(tc.in)
		if err != nil {
			t.Fatalf("splitShellArgs(%q): %v", tc.in, err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("splitShellArgs(%q) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
}

func TestSplitShellArgsUnterminatedQuote(t *testing.T) {
	if _, err := splitShellArgs(`--cmd "set number`); err == nil {
		t.Fatal("expected an error for an unterminated quote")
	}
}

func TestRunVersionFlag(t *testing.T) {
	if code := run([]string{"-version"}); code != exitOK {
		t.Fatalf("run(-version) = %d, want exitOK", code)
	}
}

func TestRunUnknownDriver(t *testing.T) {
	if code := run([]string{"-driver", "bogus", "-no-stdin"}); code != exitUsage {
		t.Fatalf("run(-driver bogus) = %d, want exitUsage", code)
	}
}
