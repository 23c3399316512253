// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package validation holds the CLI-boundary input checks kefirctl
// runs before handing a value to the kernel bridge or the filesystem:
// interface names, backup-file paths, and MAC address literals.
package validation

import (
	"net"
	"path/filepath"
	"regexp"
	"strings"

	kerrors "github.com/kefir-project/kefir/internal/errors"
)

var (
	// Valid interface name: alphanumeric, dash, underscore, dot (for VLANs), max 15 chars
	interfaceNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]{1,15}$`)

	// Dangerous characters that should never appear in a name taken
	// from the command line and later passed to an external tool.
	dangerousChars = []string{";", "|", "&", "$", "`", "(", ")", "<", ">", "\\", "\"", "'", "\n", "\r"}
)

// ValidateInterfaceName validates a network interface name before it
// reaches kernel.Attach.
func ValidateInterfaceName(name string) error {
	if name == "" {
		return kerrors.New(kerrors.InvalidArgument, "interface name cannot be empty")
	}
	if len(name) > 15 {
		return kerrors.Errorf(kerrors.InvalidArgument, "interface name too long (max 15 characters): %s", name)
	}
	if !interfaceNameRegex.MatchString(name) {
		return kerrors.Errorf(kerrors.InvalidArgument, "invalid interface name: %s (must be alphanumeric with -_.)", name)
	}
	for _, char := range dangerousChars {
		if strings.Contains(name, char) {
			return kerrors.Errorf(kerrors.InvalidArgument, "interface name contains dangerous character: %s", char)
		}
	}
	return nil
}

// ValidatePath validates a file path supplied on the command line
// (backup file, emitted C source, object file) against an allowlist
// of permitted directories.
func ValidatePath(path string, allowedDirs []string) error {
	if path == "" {
		return kerrors.New(kerrors.InvalidArgument, "path cannot be empty")
	}

	cleanPath := filepath.Clean(path)

	if filepath.IsAbs(cleanPath) {
		allowed := false
		for _, allowedDir := range allowedDirs {
			if strings.HasPrefix(cleanPath, filepath.Clean(allowedDir)) {
				allowed = true
				break
			}
		}
		if !allowed {
			return kerrors.Errorf(kerrors.InvalidArgument, "path not in allowed directories: %s", cleanPath)
		}
	}

	if strings.Contains(path, "..") {
		return kerrors.Errorf(kerrors.InvalidArgument, "path traversal not allowed: %s", path)
	}
	if strings.Contains(path, "\x00") {
		return kerrors.New(kerrors.InvalidArgument, "null byte in path")
	}
	return nil
}

// ValidateMACAddress validates a MAC address literal supplied on the
// command line (e.g. an inline ethernet-src/dst match override).
func ValidateMACAddress(s string) error {
	if s == "" {
		return kerrors.New(kerrors.InvalidArgument, "MAC address cannot be empty")
	}
	if _, err := net.ParseMAC(s); err != nil {
		return kerrors.Wrapf(err, kerrors.InvalidArgument, "invalid MAC address: %s", s)
	}
	return nil
}
