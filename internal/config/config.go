// Package config reads airlink HCL configuration.
//
//	log_debug = true
//	cloud { email = "..." password = "..." country = "GB" }
//	device "ABC-DE-FGH1234A" {
//		product_type = "527"
//		broker       = "tcp://192.168.1.10:1883"
//	}
//	include "secrets.hcl" { optional = true }
package config

import (
	"path/filepath"
	"time"

	"github.com/hashicorp/hcl"
	"github.com/juju/errors"
	"github.com/temoto/airlink/helpers"
	"github.com/temoto/airlink/log2"
)

const (
	DefaultCloudTimeout   = 30 * time.Second
	DefaultKeepalive      = 30 * time.Second
	DefaultNetworkTimeout = 10 * time.Second
)

type Config struct {
	// includeSeen contains absolute paths to prevent include loops
	includeSeen map[string]struct{}
	// only used for Unmarshal, do not access
	XXX_Include []Source `hcl:"include"`

	LogDebug bool        `hcl:"log_debug"`
	Cloud    CloudConfig `hcl:"cloud"`
	Devices  []Device    `hcl:"device"`
}

type Source struct {
	Name     string `hcl:"name,key"`
	Optional bool   `hcl:"optional"`
}

type CloudConfig struct {
	URL        string `hcl:"api_url"`
	Email      string `hcl:"email"`
	Password   string `hcl:"password"` // secret
	Country    string `hcl:"country"`
	TimeoutSec int    `hcl:"timeout_sec"`
}

func (c CloudConfig) Timeout() time.Duration {
	return helpers.IntSecondDefault(c.TimeoutSec, DefaultCloudTimeout)
}

// Device is one appliance on local network.
// Credentials is encrypted blob as in cloud manifest, empty means fetch from cloud.
type Device struct {
	Serial            string `hcl:"serial,key"`
	Name              string `hcl:"name"`
	ProductType       string `hcl:"product_type"`
	Broker            string `hcl:"broker"`
	Credentials       string `hcl:"credentials"` // secret
	KeepaliveSec      int    `hcl:"keepalive_sec"`
	NetworkTimeoutSec int    `hcl:"network_timeout_sec"`
	LogDebug          bool   `hcl:"log_debug"`
}

func (d *Device) Keepalive() time.Duration {
	return helpers.IntSecondDefault(d.KeepaliveSec, DefaultKeepalive)
}

func (d *Device) NetworkTimeout() time.Duration {
	return helpers.IntSecondDefault(d.NetworkTimeoutSec, DefaultNetworkTimeout)
}

func (d *Device) String() string {
	if d.Name != "" {
		return d.Name + "/" + d.Serial
	}
	return d.Serial
}

func (c *Config) Device(serial string) (*Device, error) {
	for i := range c.Devices {
		if c.Devices[i].Serial == serial {
			return &c.Devices[i], nil
		}
	}
	return nil, errors.NotFoundf("config device serial=%s", serial)
}

func (c *Config) read(log *log2.Log, fs FullReader, source Source, errs *[]error) {
	norm := fs.Normalize(source.Name)
	if _, ok := c.includeSeen[norm]; ok {
		*errs = append(*errs, errors.Errorf("config duplicate source=%s", source.Name))
		return
	}
	log.Debugf("config reading source='%s' path=%s", source.Name, norm)
	c.includeSeen[norm] = struct{}{}

	bs, err := fs.ReadAll(norm)
	if bs == nil && err == nil {
		if !source.Optional {
			err = errors.NotFoundf("config required name=%s path=%s", source.Name, norm)
			*errs = append(*errs, err)
		}
		return
	}
	if err != nil {
		*errs = append(*errs, errors.Annotatef(err, "config source=%s", source.Name))
		return
	}

	// content may hold secrets, keep it out of error text
	if err = hcl.Unmarshal(bs, c); err != nil {
		*errs = append(*errs, errors.Annotatef(err, "config unmarshal source=%s", source.Name))
		return
	}

	var includes []Source
	includes, c.XXX_Include = c.XXX_Include, nil
	for _, include := range includes {
		if _, ok := c.includeSeen[fs.Normalize(include.Name)]; ok {
			err = errors.Errorf("config include loop: from=%s include=%s", source.Name, include.Name)
			*errs = append(*errs, err)
			continue
		}
		c.read(log, fs, include, errs)
	}
}

func (c *Config) validate() []error {
	var errs []error
	seen := make(map[string]struct{}, len(c.Devices))
	for i := range c.Devices {
		d := &c.Devices[i]
		if _, dup := seen[d.Serial]; dup {
			errs = append(errs, errors.NotValidf("config device serial=%s duplicate", d.Serial))
		}
		seen[d.Serial] = struct{}{}
		if d.ProductType == "" {
			errs = append(errs, errors.NotValidf("config device serial=%s product_type empty", d.Serial))
		}
		if d.Broker == "" {
			errs = append(errs, errors.NotValidf("config device serial=%s broker empty", d.Serial))
		}
	}
	return errs
}

// ReadConfig merges sources in order, later values overwrite earlier.
// With OsFullReader relative includes resolve against directory of first name.
func ReadConfig(log *log2.Log, fs FullReader, names ...string) (*Config, error) {
	if len(names) == 0 {
		log.Fatal("code error [Must]ReadConfig() without names")
	}

	if osfs, ok := fs.(*OsFullReader); ok {
		dir, name := filepath.Split(names[0])
		if err := osfs.SetBase(dir); err != nil {
			return nil, err
		}
		names[0] = name
	}
	c := &Config{
		includeSeen: make(map[string]struct{}),
	}
	errs := make([]error, 0, 8)
	for _, name := range names {
		c.read(log, fs, Source{Name: name}, &errs)
	}
	if len(errs) == 0 {
		errs = c.validate()
	}
	return c, helpers.FoldErrors(errs)
}

func MustReadConfig(log *log2.Log, fs FullReader, names ...string) *Config {
	c, err := ReadConfig(log, fs, names...)
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	return c
}
