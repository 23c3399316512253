// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package logging

import (
	"fmt"
	"log/syslog"
)

// SyslogConfig configures an optional remote syslog destination for a
// Logger. Facility follows RFC 5424's numeric facility codes (1 is
// "user-level messages"); severity is fixed at the syslog transport
// layer to INFO, since this package's own Level already governs which
// lines reach the handler at all.
type SyslogConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Protocol string
	Tag      string
	Facility int
}

// DefaultSyslogConfig returns a disabled syslog configuration with the
// standard port/protocol/tag this module falls back to once enabled.
func DefaultSyslogConfig() SyslogConfig {
	return SyslogConfig{
		Enabled:  false,
		Port:     514,
		Protocol: "udp",
		Tag:      "kefir",
		Facility: 1,
	}
}

// NewSyslogWriter dials a remote syslog daemon per cfg, filling in any
// zero-valued Port/Protocol/Tag with DefaultSyslogConfig's values.
// cfg.Host is required: there is no local-syslog fallback.
func NewSyslogWriter(cfg SyslogConfig) (*syslog.Writer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("logging: syslog host is required")
	}

	defaults := DefaultSyslogConfig()
	if cfg.Port == 0 {
		cfg.Port = defaults.Port
	}
	if cfg.Protocol == "" {
		cfg.Protocol = defaults.Protocol
	}
	if cfg.Tag == "" {
		cfg.Tag = defaults.Tag
	}

	priority := syslog.Priority(cfg.Facility<<3) | syslog.LOG_INFO
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	return syslog.Dial(cfg.Protocol, addr, priority, cfg.Tag)
}
