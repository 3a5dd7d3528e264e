package configs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	req := require.New(t)

	cfg, err := LoadConfig(writeConfig(t, ""))
	req.NoError(err)

	req.Equal("0.0.0.0:7878", cfg.ListenAddr())
	req.True(cfg.Admin.Start)
	req.Equal("127.0.0.1:8080", cfg.Admin.Addr)
	req.Equal(256, cfg.Limits.MailboxCapacity)
	req.Equal(0.2, cfg.Limits.WsConnectRate)
	req.Equal(5, cfg.Limits.WsConnectBurst)
	req.Equal("users.json", cfg.DirectoryPath)
}

func TestLoadConfig_Overrides(t *testing.T) {
	req := require.New(t)

	cfg, err := LoadConfig(writeConfig(t, `
directory_path = "/etc/chirpd/users.json"

[server]
addr = "127.0.0.1"
port = 9000

[admin]
start = false

[log]
development = false
file = "/var/log/chirpd.log"

[limits]
accept_rate = 0.5
accept_burst = 2
mailbox_capacity = 32
ws_connect_rate = 1.0
ws_connect_burst = 10
`))
	req.NoError(err)

	req.Equal("127.0.0.1:9000", cfg.ListenAddr())
	req.False(cfg.Admin.Start)
	req.False(cfg.Log.Development)
	req.Equal("/var/log/chirpd.log", cfg.Log.File)
	req.Equal(0.5, cfg.Limits.AcceptRate)
	req.Equal(32, cfg.Limits.MailboxCapacity)
	req.Equal(1.0, cfg.Limits.WsConnectRate)
	req.Equal(10, cfg.Limits.WsConnectBurst)
	req.Equal("/etc/chirpd/users.json", cfg.DirectoryPath)
}

func TestLoadConfig_InvalidPort(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
[server]
port = 70000
`))
	require.Error(t, err)
}

func TestLoadConfig_InvalidLimits(t *testing.T) {
	cases := map[string]string{
		"zero rate":     "[limits]\naccept_rate = 0.0",
		"zero burst":    "[limits]\naccept_burst = 0",
		"zero capacity": "[limits]\nmailbox_capacity = 0",
		"zero ws rate":  "[limits]\nws_connect_rate = 0.0",
		"zero ws burst": "[limits]\nws_connect_burst = 0",
	}

	for name, contents := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, contents))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_AdminAddrRequiredWhenEnabled(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
[admin]
start = true
addr = ""
`))
	require.Error(t, err)

	// A disabled admin server needs no address.
	cfg, err := LoadConfig(writeConfig(t, `
[admin]
start = false
addr = ""
`))
	require.NoError(t, err)
	require.False(t, cfg.Admin.Start)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
