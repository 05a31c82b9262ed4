package preflight

import (
	"context"
	"errors"
	"io/ioutil"
	"testing"

	"github.com/archstrap/archstrap/internal/system"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logrus.SetOutput(ioutil.Discard)
}

func healthyChecker() *Checker {
	return &Checker{
		Platform:     &system.Platform{Vendor: system.AMD, VendorID: "AuthenticAMD", Firmware: system.UEFI},
		Euid:         func() int { return 0 },
		LookPath:     func(file string) (string, error) { return "/usr/bin/" + file, nil },
		BtrfsVersion: func(context.Context) (string, error) { return "mkfs.btrfs, part of btrfs-progs v6.8.1\n", nil },
	}
}

func severities(results []Result) map[string]Severity {
	got := make(map[string]Severity, len(results))
	for _, r := range results {
		got[r.Name] = r.Severity
	}
	return got
}

func TestChecker_Run(t *testing.T) {
	results := healthyChecker().Run(context.Background())

	for _, r := range results {
		assert.Equal(t, OK, r.Severity, "check %s: %s", r.Name, r.Detail)
	}
	assert.NoError(t, Err(results))
}

func TestChecker_Failures(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *Checker)
		check    string
		severity Severity
	}{
		{
			name:     "Bad case: not root",
			mutate:   func(c *Checker) { c.Euid = func() int { return 1000 } },
			check:    "root",
			severity: Failure,
		},
		{
			name:     "Bad case: BIOS boot",
			mutate:   func(c *Checker) { c.Platform.Firmware = system.BIOS },
			check:    "firmware",
			severity: Failure,
		},
		{
			name: "Bad case: missing tool",
			mutate: func(c *Checker) {
				c.LookPath = func(file string) (string, error) {
					if file == "pacstrap" {
						return "", errors.New("not found")
					}
					return "/usr/bin/" + file, nil
				}
			},
			check:    "tools",
			severity: Failure,
		},
		{
			name:     "Warning case: unknown vendor",
			mutate:   func(c *Checker) { c.Platform.Vendor, c.Platform.VendorID = system.Unknown, "CentaurHauls" },
			check:    "microcode",
			severity: Warning,
		},
		{
			name:     "Warning case: old btrfs-progs",
			mutate:   func(c *Checker) { c.BtrfsVersion = func(context.Context) (string, error) { return "btrfs-progs v5.4.1", nil } },
			check:    "btrfs-progs",
			severity: Warning,
		},
		{
			name:     "Warning case: btrfs-progs not runnable",
			mutate:   func(c *Checker) { c.BtrfsVersion = func(context.Context) (string, error) { return "", errors.New("error") } },
			check:    "btrfs-progs",
			severity: Warning,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := healthyChecker()
			tt.mutate(c)

			results := c.Run(context.Background())

			assert.Equal(t, tt.severity, severities(results)[tt.check])
			if tt.severity == Failure {
				assert.Error(t, Err(results))
			} else {
				assert.NoError(t, Err(results), "warnings should not fail the preflight")
			}
		})
	}
}

func TestParseBtrfsVersion(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    string
		wantErr bool
	}{
		{name: "Good case: full banner", out: "mkfs.btrfs, part of btrfs-progs v6.8.1", want: "6.8.1"},
		{name: "Good case: two components", out: "btrfs-progs v6.3", want: "6.3.0"},
		{name: "Bad case: no version", out: "mkfs.btrfs: unknown option", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseBtrfsVersion(tt.out)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
