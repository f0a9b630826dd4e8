package errors

import (
	"testing"

	"github.com/wippyai/hostbridge"
)

func TestStatusRoundTrip(t *testing.T) {
	for c := hostbridge.CodeOK; c <= hostbridge.MaxCode; c++ {
		s := StatusFromCode(c)
		if !s.Valid() {
			t.Errorf("StatusFromCode(%d) = %v, not valid", c, s)
		}
		if got := s.Code(); got != c {
			t.Errorf("StatusFromCode(%d).Code() = %d", c, got)
		}
	}
}

func TestStatusUnknown(t *testing.T) {
	tests := []hostbridge.Code{-1, hostbridge.MaxCode + 1, 100, 1024, 1 << 20}
	for _, c := range tests {
		s := StatusFromCode(c)
		if s != StatusUnknown {
			t.Errorf("StatusFromCode(%d) = %v, want Unknown", c, s)
		}
		if got := s.Code(); got != UnknownCode {
			t.Errorf("Unknown.Code() = %d, want %d", got, UnknownCode)
		}
	}
	if StatusUnknown.Valid() {
		t.Error("StatusUnknown.Valid() = true")
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusOK, "Ok"},
		{StatusInvalidArg, "InvalidArg"},
		{StatusGenericFailure, "GenericFailure"},
		{StatusPendingException, "PendingException"},
		{StatusBigintExpected, "BigintExpected"},
		{StatusCannotRunJS, "CannotRunJS"},
		{StatusUnknown, "Unknown"},
		{Status(500), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestAllStatuses(t *testing.T) {
	all := AllStatuses()
	if len(all) != int(hostbridge.MaxCode)+2 {
		t.Fatalf("len(AllStatuses()) = %d, want %d", len(all), hostbridge.MaxCode+2)
	}
	if all[len(all)-1] != StatusUnknown {
		t.Errorf("last = %v, want Unknown", all[len(all)-1])
	}
	seen := make(map[string]bool)
	for _, s := range all {
		if seen[s.String()] {
			t.Errorf("duplicate name %q", s)
		}
		seen[s.String()] = true
	}
}
