package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/airlink/helpers"
	"github.com/temoto/airlink/log2"
)

func TestReadConfig(t *testing.T) {
	t.Parallel()

	type Case struct {
		name      string
		input     string
		check     func(testing.TB, *Config)
		expectErr string
	}
	cases := []Case{
		{"empty", "", func(t testing.TB, c *Config) {
			assert.False(t, c.LogDebug)
			assert.Len(t, c.Devices, 0)
			assert.Equal(t, DefaultCloudTimeout, c.Cloud.Timeout())
		}, ""},

		{"cloud", `
log_debug = true
cloud {
	api_url = "http://localhost:8080"
	email = "a@b.c"
	password = "secret"
	country = "GB"
	timeout_sec = 5
}`, func(t testing.TB, c *Config) {
			assert.True(t, c.LogDebug)
			assert.Equal(t, "http://localhost:8080", c.Cloud.URL)
			assert.Equal(t, "a@b.c", c.Cloud.Email)
			assert.Equal(t, "GB", c.Cloud.Country)
			assert.Equal(t, 5*time.Second, c.Cloud.Timeout())
		}, ""},

		{"devices", `
device "ABC-DE-FGH1234A" {
	name = "bedroom"
	product_type = "527"
	broker = "tcp://192.168.1.10:1883"
	keepalive_sec = 7
}
device "XYZ-AB-KLM9876B" {
	product_type = "438"
	broker = "tcp://192.168.1.11:1883"
	credentials = "blob"
}`, func(t testing.TB, c *Config) {
			require.Len(t, c.Devices, 2)
			d, err := c.Device("ABC-DE-FGH1234A")
			require.NoError(t, err)
			assert.Equal(t, "bedroom/ABC-DE-FGH1234A", d.String())
			assert.Equal(t, "527", d.ProductType)
			assert.Equal(t, 7*time.Second, d.Keepalive())
			assert.Equal(t, DefaultNetworkTimeout, d.NetworkTimeout())
			d, err = c.Device("XYZ-AB-KLM9876B")
			require.NoError(t, err)
			assert.Equal(t, "XYZ-AB-KLM9876B", d.String())
			assert.Equal(t, "blob", d.Credentials)
			_, err = c.Device("nope")
			assert.True(t, errors.IsNotFound(err))
		}, ""},

		{"include-normalize", `
log_debug = true
include "./empty" {}`,
			nil, ""},

		{"include-optional", `
include "secrets" {}
include "non-exist" { optional = true }`,
			func(t testing.TB, c *Config) {
				assert.Equal(t, "from-include", c.Cloud.Password)
			}, ""},

		{"include-overwrites", `
cloud { password = "inline" }
include "secrets" {}`,
			func(t testing.TB, c *Config) {
				assert.Equal(t, "from-include", c.Cloud.Password)
			}, ""},

		{"include-required", `include "non-exist" {}`, nil, "config required name=non-exist"},
		{"include-loop", `include "loop-a" {}`, nil, "config include loop: from=loop-b include=loop-a"},
		{"syntax", `device "X" {`, nil, "config unmarshal source=test-inline"},
		{"device-duplicate", `
device "X" { product_type = "527" broker = "tcp://a:1883" }
device "X" { product_type = "527" broker = "tcp://b:1883" }`,
			nil, "config device serial=X duplicate"},
		{"device-incomplete", `device "X" { product_type = "527" }`, nil, "config device serial=X broker empty"},
	}
	helpers.Shuffle(cases)
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			log := log2.NewTest(t, log2.LDebug)
			fs := NewMockFullReader(map[string]string{
				"test-inline": c.input,
				"empty":       "",
				"secrets":     `cloud { password = "from-include" }`,
				"loop-a":      `include "loop-b" {}`,
				"loop-b":      `include "loop-a" {}`,
			})
			cfg, err := ReadConfig(log, fs, "test-inline")
			if c.expectErr == "" {
				require.NoError(t, err, errors.ErrorStack(err))
				if c.check != nil {
					c.check(t, cfg)
				}
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), c.expectErr)
			}
		})
	}
}

func TestReadConfigValidateAll(t *testing.T) {
	t.Parallel()

	fs := NewMockFullReader(map[string]string{"main": `
device "A" { }
device "B" { product_type = "527" }`})
	_, err := ReadConfig(log2.NewTest(t, log2.LDebug), fs, "main")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "serial=A product_type empty")
	assert.Contains(t, err.Error(), "serial=A broker empty")
	assert.Contains(t, err.Error(), "serial=B broker empty")
}

func TestReadConfigOs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.hcl"), []byte(`
include "local.hcl" {}
include "missing.hcl" { optional = true }`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "local.hcl"), []byte(`
device "ABC" { product_type = "527" broker = "tcp://h:1883" }`), 0o600))

	cfg, err := ReadConfig(log2.NewTest(t, log2.LDebug), NewOsFullReader(), filepath.Join(dir, "main.hcl"))
	require.NoError(t, err, errors.ErrorStack(err))
	require.Len(t, cfg.Devices, 1)
	assert.Equal(t, "ABC", cfg.Devices[0].Serial)
}
