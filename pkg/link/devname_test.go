package link

import (
	"os"
	"path/filepath"
	"testing"
)

// TestCheckPrefix tests the device-name prefix matcher
func TestCheckPrefix(t *testing.T) {
	tests := []struct {
		name    string
		s       string
		prefix  string
		rest    string
		matched bool
	}{
		{"prefix with remainder", "USB:foo", "usb", "foo", true},
		{"bare prefix", "usb", "usb", "", true},
		{"prefix with trailing colon", "usb:", "usb", "", true},
		{"prefix run-on", "usbx", "usb", "", false},
		{"different prefix", "tcp:host", "usb", "", false},
		{"too short", "us", "usb", "", false},
		{"mixed case serial", "Serial:/dev/ttyUSB0", "serial", "/dev/ttyUSB0", true},
		{"tcp with address", "tcp:localhost:2000", "tcp", "localhost:2000", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rest, ok := CheckPrefix(tt.s, tt.prefix)
			if ok != tt.matched {
				t.Fatalf("CheckPrefix(%q, %q) matched = %v, want %v", tt.s, tt.prefix, ok, tt.matched)
			}
			if rest != tt.rest {
				t.Errorf("CheckPrefix(%q, %q) rest = %q, want %q", tt.s, tt.prefix, rest, tt.rest)
			}
		})
	}
}

// TestResolveDeviceName tests the lookup precedence
func TestResolveDeviceName(t *testing.T) {
	t.Run("explicit name wins", func(t *testing.T) {
		t.Setenv(portEnv, "tcp:elsewhere:2000")
		if got := ResolveDeviceName("serial:/dev/ttyS1"); got != "serial:/dev/ttyS1" {
			t.Errorf("ResolveDeviceName = %q", got)
		}
	})

	t.Run("environment next", func(t *testing.T) {
		t.Setenv(portEnv, "tcp:elsewhere:2000")
		t.Setenv("HOME", t.TempDir())
		if got := ResolveDeviceName(""); got != "tcp:elsewhere:2000" {
			t.Errorf("ResolveDeviceName = %q", got)
		}
	})

	t.Run("user config file next", func(t *testing.T) {
		t.Setenv(portEnv, "")
		home := t.TempDir()
		t.Setenv("HOME", home)

		confDir := filepath.Join(home, ".rcx")
		if err := os.MkdirAll(confDir, 0o755); err != nil {
			t.Fatal(err)
		}
		conf := filepath.Join(confDir, "device.conf")
		if err := os.WriteFile(conf, []byte("  /dev/ttyUSB3  trailing junk\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		if got := ResolveDeviceName(""); got != "/dev/ttyUSB3" {
			t.Errorf("ResolveDeviceName = %q, want first token of config", got)
		}
	})

	t.Run("compiled default last", func(t *testing.T) {
		t.Setenv(portEnv, "")
		t.Setenv("HOME", t.TempDir())
		if got := ResolveDeviceName(""); got != defaultDevice {
			t.Errorf("ResolveDeviceName = %q, want %q", got, defaultDevice)
		}
	})
}
