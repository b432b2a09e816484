// Package fleet pairs configured devices with their local credentials,
// taken from config or from cloud manifest.
package fleet

import (
	"context"

	"github.com/juju/errors"
	"github.com/temoto/airlink/cloud"
	"github.com/temoto/airlink/credential"
	"github.com/temoto/airlink/helpers"
	"github.com/temoto/airlink/internal/config"
	"github.com/temoto/airlink/log2"
)

type Device struct {
	Config *config.Device
	Local  credential.Local
}

// Cloud is subset of *cloud.Client used here.
type Cloud interface {
	Login(ctx context.Context, user cloud.UserCredentials) (cloud.AccountCredentials, error)
	Manifest(ctx context.Context) ([]cloud.DeviceManifest, error)
}

// Resolve returns devices with usable credentials and folded errors for the rest.
// One broken device does not hide others: result may be non-empty together with error.
// Cloud is contacted only when some device has no credentials in config, c may be nil otherwise.
func Resolve(ctx context.Context, cfg *config.Config, c Cloud) ([]Device, error) {
	log := log2.ContextValueLogger(ctx)
	result := make([]Device, 0, len(cfg.Devices))
	errs := make([]error, 0)
	missing := make([]*config.Device, 0)

	for i := range cfg.Devices {
		d := &cfg.Devices[i]
		if d.Credentials == "" {
			missing = append(missing, d)
			continue
		}
		local, err := decrypt(d, d.Credentials)
		if err != nil {
			errs = append(errs, errors.Annotate(err, "config"))
			continue
		}
		result = append(result, Device{Config: d, Local: local})
	}

	if len(missing) != 0 {
		manifest, err := fetchManifest(ctx, cfg, c)
		if err != nil {
			for _, d := range missing {
				errs = append(errs, errors.Annotatef(err, "device=%s credentials", d))
			}
			return result, helpers.FoldErrors(errs)
		}
		for _, d := range missing {
			m, ok := manifest[d.Serial]
			if !ok {
				errs = append(errs, errors.NotFoundf("device=%s in cloud manifest", d))
				continue
			}
			local, err := decrypt(d, m.LocalCredentials)
			if err != nil {
				errs = append(errs, errors.Annotate(err, "cloud manifest"))
				continue
			}
			log.Debugf("device=%s credentials from cloud manifest", d)
			result = append(result, Device{Config: d, Local: local})
		}
	}
	return result, helpers.FoldErrors(errs)
}

func decrypt(d *config.Device, blob string) (credential.Local, error) {
	local, err := credential.Decrypt(blob)
	if err != nil {
		return local, errors.Annotatef(err, "device=%s", d)
	}
	if local.Serial != d.Serial {
		return local, errors.NotValidf("device=%s credentials for serial=%s", d, local.Serial)
	}
	return local, nil
}

func fetchManifest(ctx context.Context, cfg *config.Config, c Cloud) (map[string]cloud.DeviceManifest, error) {
	if c == nil {
		return nil, errors.NotSupportedf("cloud client")
	}
	user := cloud.UserCredentials{Email: cfg.Cloud.Email, Password: cfg.Cloud.Password, Country: cfg.Cloud.Country}
	if _, err := c.Login(ctx, user); err != nil {
		return nil, err
	}
	ds, err := c.Manifest(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[string]cloud.DeviceManifest, len(ds))
	for _, d := range ds {
		m[d.Serial] = d
	}
	return m, nil
}
