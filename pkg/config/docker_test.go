package config

import (
	"testing"
)

func TestResolveBindAddrForDocker_NonLoopback(t *testing.T) {
	// These addresses are never modified regardless of Docker status
	tests := []struct {
		input    string
		expected string
	}{
		{"0.0.0.0", "0.0.0.0"},
		{"192.168.1.100", "192.168.1.100"},
		{"", ""},
	}

	for _, tt := range tests {
		result := ResolveBindAddrForDocker(tt.input)
		if result != tt.expected {
			t.Errorf("ResolveBindAddrForDocker(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestResolveBindAddrForDocker_Loopback(t *testing.T) {
	// The actual replacement only happens when IsRunningInDocker() returns true
	for _, addr := range []string{"localhost", "127.0.0.1"} {
		result := ResolveBindAddrForDocker(addr)
		if IsRunningInDocker() {
			if result != "0.0.0.0" {
				t.Errorf("ResolveBindAddrForDocker(%q) in Docker = %q, want 0.0.0.0", addr, result)
			}
		} else if result != addr {
			t.Errorf("ResolveBindAddrForDocker(%q) outside Docker = %q, want %q", addr, result, addr)
		}
	}
}

func TestIsRunningInDocker_Cached(t *testing.T) {
	// Multiple calls must agree
	if IsRunningInDocker() != IsRunningInDocker() {
		t.Error("IsRunningInDocker() returned different results")
	}
}
