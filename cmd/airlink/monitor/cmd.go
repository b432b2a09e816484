package monitor

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/juju/errors"
	"github.com/temoto/airlink/cloud"
	"github.com/temoto/airlink/cmd/airlink/subcmd"
	"github.com/temoto/airlink/internal/config"
	"github.com/temoto/airlink/internal/fleet"
	"github.com/temoto/airlink/internal/link"
	"github.com/temoto/airlink/log2"
	"github.com/temoto/airlink/protocol"
	"github.com/temoto/alive/v2"
)

var Mod = subcmd.Mod{
	Name:  "monitor",
	Usage: "[-interval 30s]  log state and sensor data of configured devices until stopped",
	Main:  Main,
}

func Main(ctx context.Context, cfg *config.Config, args []string) error {
	log := log2.ContextValueLogger(ctx)
	fs := flag.NewFlagSet("monitor", flag.ContinueOnError)
	interval := fs.Duration("interval", 30*time.Second, "poll interval, 0 disables polling")
	if err := fs.Parse(args); err != nil {
		return errors.Annotate(err, "monitor flags")
	}
	if len(cfg.Devices) == 0 {
		return errors.NotFoundf("config devices")
	}

	c := cloud.New(cfg.Cloud.URL, &http.Client{Timeout: cfg.Cloud.Timeout()}, log)
	devices, err := fleet.Resolve(ctx, cfg, c)
	if err != nil {
		if len(devices) == 0 {
			return err
		}
		log.Error(err)
	}

	a := alive.NewAlive()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			log.Infof("signal=%v stopping", sig)
			a.Stop()
		case <-a.StopChan():
		}
	}()

	handler := func(ctx context.Context, serial string, m protocol.Message) {
		log2.ContextValueLogger(ctx).Infof("device=%s %s", serial, Format(m))
	}
	sessions := make([]*link.Session, 0, len(devices))
	for _, d := range devices {
		dctx := log2.ContextWithLog(ctx, log.Sub(devicePrefix(d.Config), deviceLevel(log, d.Config)))
		s, err := link.Open(dctx, link.Options{
			ProductType:    d.Config.ProductType,
			Broker:         d.Config.Broker,
			Credentials:    d.Local,
			Keepalive:      d.Config.Keepalive(),
			NetworkTimeout: d.Config.NetworkTimeout(),
			OnMessage:      handler,
		})
		if err != nil {
			log.Error(errors.ErrorStack(err))
			continue
		}
		sessions = append(sessions, s)
	}
	if len(sessions) == 0 {
		a.Stop()
		return errors.Errorf("no device connected")
	}
	subcmd.SdNotify(daemon.SdNotifyReady)

	poll := func() {
		for _, s := range sessions {
			if err := s.RequestCurrentState(ctx); err != nil {
				log.Error(errors.ErrorStack(err))
			}
			if err := s.RequestSensorData(ctx); err != nil {
				log.Error(errors.ErrorStack(err))
			}
		}
	}
	poll()
	if a.Add(1) {
		go func() {
			defer a.Done()
			if *interval <= 0 {
				return
			}
			tick := time.NewTicker(*interval)
			defer tick.Stop()
			for {
				select {
				case <-tick.C:
					poll()
				case <-a.StopChan():
					return
				}
			}
		}()
	}

	a.Wait()
	subcmd.SdNotify(daemon.SdNotifyStopping)
	for _, s := range sessions {
		_ = s.Close()
	}
	return nil
}

func devicePrefix(d *config.Device) string {
	if d.Name == "" {
		return ""
	}
	return d.Name + ": "
}

func deviceLevel(log *log2.Log, d *config.Device) log2.Level {
	if d.LogDebug {
		return log2.LDebug
	}
	return log.Level()
}
