package set

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/airlink/cloud"
	"github.com/temoto/airlink/cmd/airlink/subcmd"
	"github.com/temoto/airlink/helpers"
	"github.com/temoto/airlink/internal/config"
	"github.com/temoto/airlink/internal/fleet"
	"github.com/temoto/airlink/internal/link"
	"github.com/temoto/airlink/log2"
	"github.com/temoto/airlink/protocol"
	"github.com/temoto/airlink/units"
)

var Mod = subcmd.Mod{
	Name:  "set",
	Usage: "-serial S [-fan-mode off|fan|auto] [-fan-speed 1..10|auto] [-heat-target C] ...  change device settings",
	Main:  Main,
}

func Main(ctx context.Context, cfg *config.Config, args []string) error {
	log := log2.ContextValueLogger(ctx)
	serial, cmd, err := parse(args, os.Stderr, time.Now())
	if err != nil {
		return err
	}
	d, err := cfg.Device(serial)
	if err != nil {
		return err
	}

	// resolve only the target device
	single := &config.Config{Cloud: cfg.Cloud, Devices: []config.Device{*d}}
	c := cloud.New(cfg.Cloud.URL, &http.Client{Timeout: cfg.Cloud.Timeout()}, log)
	devices, err := fleet.Resolve(ctx, single, c)
	if err != nil {
		return err
	}
	s, err := link.Open(ctx, link.Options{
		ProductType:    d.ProductType,
		Broker:         d.Broker,
		Credentials:    devices[0].Local,
		Keepalive:      d.Keepalive(),
		NetworkTimeout: d.NetworkTimeout(),
		OnMessage: func(_ context.Context, serial string, m protocol.Message) {
			log.Debugf("device=%s msg=%s", serial, m.Kind())
		},
	})
	if err != nil {
		return err
	}
	defer s.Close()
	if err = s.Send(ctx, cmd); err != nil {
		return err
	}
	log.Infof("device=%s settings sent", d)
	return nil
}

// parse builds command from flags, empty value means unchanged.
func parse(args []string, output io.Writer, now time.Time) (string, protocol.SetState, error) {
	cmd := protocol.SetState{Time: now}
	fs := flag.NewFlagSet("set", flag.ContinueOnError)
	fs.SetOutput(output)
	serial := fs.String("serial", "", "device serial, required")
	reason := fs.String("reason", protocol.DefaultModeReason, "mode-reason sent to device")
	fanMode := fs.String("fan-mode", "", "off|fan|auto")
	fanSpeed := fs.String("fan-speed", "", "1..10|auto")
	quality := fs.String("quality", "", "normal|high|better")
	oscillation := fs.String("oscillation", "", "on|off")
	monitoring := fs.String("monitoring", "", "air quality monitoring on|off")
	night := fs.String("night", "", "on|off")
	heat := fs.String("heat", "", "on|off")
	heatTarget := fs.String("heat-target", "", "Celsius, e.g. 21.5")
	focus := fs.String("focus", "", "on|wide")
	if err := fs.Parse(args); err != nil {
		return "", cmd, errors.Annotate(err, "set flags")
	}
	if *serial == "" {
		return "", cmd, errors.NotValidf("set -serial empty")
	}
	cmd.ModeReason = *reason

	var errs []error
	check := func(name string, err error) {
		if err != nil {
			errs = append(errs, errors.Annotatef(err, "-%s", name))
		}
	}
	var err error
	if *fanMode != "" {
		cmd.FanMode, err = protocol.ParseFanMode(strings.ToUpper(*fanMode))
		check("fan-mode", err)
	}
	if *fanSpeed != "" {
		token := strings.ToUpper(*fanSpeed)
		if n, convErr := strconv.Atoi(token); convErr == nil {
			token = fmt.Sprintf("%04d", n)
		}
		cmd.FanSpeed, err = protocol.ParseFanSpeed(token)
		check("fan-speed", err)
	}
	if *quality != "" {
		q, ok := qualityNames[strings.ToLower(*quality)]
		if !ok {
			check("quality", errors.NotValidf("value=%s", *quality))
		}
		cmd.QualityTarget = q
	}
	if *oscillation != "" {
		cmd.Oscillation, err = protocol.ParseSwitch(strings.ToUpper(*oscillation))
		check("oscillation", err)
	}
	if *monitoring != "" {
		cmd.AirQualityMonitoring, err = protocol.ParseSwitch(strings.ToUpper(*monitoring))
		check("monitoring", err)
	}
	if *night != "" {
		cmd.NightMode, err = protocol.ParseSwitch(strings.ToUpper(*night))
		check("night", err)
	}
	if *heat != "" {
		token := strings.ToUpper(*heat)
		if token == "ON" {
			token = "HEAT"
		}
		cmd.HeatMode, err = protocol.ParseHeatMode(token)
		check("heat", err)
	}
	if *heatTarget != "" {
		var c float64
		c, err = strconv.ParseFloat(*heatTarget, 64)
		if err == nil && (c < heatTargetMin || c > heatTargetMax) {
			err = errors.NotValidf("value=%s out of %v..%v", *heatTarget, heatTargetMin, heatTargetMax)
		}
		cmd.HeatTargetKelvin = units.ToKelvin(c)
		check("heat-target", err)
	}
	if *focus != "" {
		token := strings.ToUpper(*focus)
		if token == "WIDE" {
			token = "OFF"
		}
		cmd.FanFocus, err = protocol.ParseFanFocusMode(token)
		check("focus", err)
	}
	if len(errs) != 0 {
		return "", cmd, helpers.FoldErrors(errs)
	}
	return *serial, cmd, nil
}

// device accepts heat targets 1..37 Celsius
const (
	heatTargetMin = 1
	heatTargetMax = 37
)

var qualityNames = map[string]protocol.QualityTarget{
	"normal": protocol.QualityTargetNormal,
	"high":   protocol.QualityTargetHigh,
	"better": protocol.QualityTargetBetter,
}
