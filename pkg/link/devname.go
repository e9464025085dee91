package link

import (
	"os"
	"path/filepath"
	"strings"
)

// Device-name resolution order: explicit argument, environment,
// per-user config file, system config file, compiled default.
const (
	portEnv        = "RCX_PORT"
	userDeviceConf = ".rcx/device.conf"
	etcDeviceConf  = "/etc/rcx/device.conf"
	defaultDevice  = "usb"
)

// ResolveDeviceName resolves the device name for Open. An empty name
// walks the lookup chain; anything else is returned as given.
func ResolveDeviceName(name string) string {
	if name != "" {
		return name
	}

	if env := os.Getenv(portEnv); env != "" {
		return env
	}

	if home := os.Getenv("HOME"); home != "" {
		if tok := firstToken(filepath.Join(home, userDeviceConf)); tok != "" {
			return tok
		}
	}

	if tok := firstToken(etcDeviceConf); tok != "" {
		return tok
	}

	return defaultDevice
}

// firstToken returns the first whitespace-delimited token of the named
// file, or "" when the file is missing or empty.
func firstToken(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// CheckPrefix matches a case-insensitive device-name prefix. The prefix
// must be followed by ':' (absorbed) or end the string. The remainder
// and whether the prefix matched are returned.
func CheckPrefix(s, prefix string) (string, bool) {
	if len(s) < len(prefix) {
		return "", false
	}
	if !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}

	rest := s[len(prefix):]
	switch {
	case rest == "":
		return "", true
	case rest[0] == ':':
		return rest[1:], true
	default:
		return "", false
	}
}
