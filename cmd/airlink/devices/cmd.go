package devices

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/juju/errors"
	"github.com/temoto/airlink/cloud"
	"github.com/temoto/airlink/cmd/airlink/subcmd"
	"github.com/temoto/airlink/internal/config"
	"github.com/temoto/airlink/log2"
)

var Mod = subcmd.Mod{
	Name:  "devices",
	Usage: "[-env] [-history]  list cloud account devices with local credentials",
	Main:  Main,
}

func Main(ctx context.Context, cfg *config.Config, args []string) error {
	log := log2.ContextValueLogger(ctx)
	c := cloud.New(cfg.Cloud.URL, &http.Client{Timeout: cfg.Cloud.Timeout()}, log)
	return run(ctx, os.Stdout, cfg, c, args)
}

func run(ctx context.Context, w io.Writer, cfg *config.Config, c *cloud.Client, args []string) error {
	log := log2.ContextValueLogger(ctx)
	fs := flag.NewFlagSet("devices", flag.ContinueOnError)
	fs.SetOutput(w)
	flagEnv := fs.Bool("env", false, "show cloud environment data of each device")
	flagHistory := fs.Bool("history", false, "show daily environment history of each device")
	if err := fs.Parse(args); err != nil {
		return errors.Annotate(err, "devices flags")
	}

	user := cloud.UserCredentials{Email: cfg.Cloud.Email, Password: cfg.Cloud.Password, Country: cfg.Cloud.Country}
	if _, err := c.Login(ctx, user); err != nil {
		return err
	}
	ds, err := c.Manifest(ctx)
	if err != nil {
		return err
	}

	failed := 0
	for _, d := range ds {
		fmt.Fprintf(w, "device \"%s\" {\n  name = %q\n  product_type = %q\n  version = %q\n", d.Serial, d.Name, d.ProductType, d.Version)
		if local, err := d.Credentials(); err != nil {
			failed++
			log.Errorf("device=%s credentials err=%v", d.Serial, err)
		} else {
			fmt.Fprintf(w, "  password_hash = %q\n", local.AccessPointPasswordHash)
		}
		if *flagEnv {
			if env, err := c.EnvironmentData(ctx, d.Serial); err != nil {
				log.Errorf("device=%s err=%v", d.Serial, err)
			} else {
				fmt.Fprintf(w, "  # environment location=%s aqi=%d (%s) temperature=%.1f humidity=%d\n",
					env.LocationName, env.AqiValue, env.AqiName, env.Temperature, env.Humidity)
			}
		}
		if *flagHistory {
			if days, err := c.DailyHistoryLegacy(ctx, d.Serial); err != nil {
				log.Errorf("device=%s err=%v", d.Serial, err)
			} else {
				for _, day := range days {
					fmt.Fprintf(w, "  # history date=%s %s\n", day.Date, formatDay(day))
				}
			}
		}
		fmt.Fprintf(w, "}\n")
	}
	if failed != 0 {
		return errors.Errorf("credentials failed for %d of %d devices", failed, len(ds))
	}
	return nil
}

func formatDay(day cloud.EnvironmentDaily) string {
	optional := func(p *int) string {
		if p == nil {
			return "-"
		}
		return fmt.Sprint(*p)
	}
	return fmt.Sprintf("temperature=%s..%s humidity=%s usage=%s",
		optional(day.MinTemperature), optional(day.MaxTemperature), optional(day.AverageHumidity), optional(day.TotalUsage))
}
