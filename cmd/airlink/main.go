package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/juju/errors"
	"github.com/mattn/go-isatty"
	"github.com/temoto/airlink/cmd/airlink/decrypt"
	"github.com/temoto/airlink/cmd/airlink/devices"
	"github.com/temoto/airlink/cmd/airlink/monitor"
	"github.com/temoto/airlink/cmd/airlink/set"
	"github.com/temoto/airlink/cmd/airlink/subcmd"
	"github.com/temoto/airlink/internal/config"
	"github.com/temoto/airlink/internal/link"
	"github.com/temoto/airlink/log2"
)

var log = log2.NewStderr(log2.LInfo)

var modules = []subcmd.Mod{
	decrypt.Mod,
	devices.Mod,
	monitor.Mod,
	set.Mod,
}

func main() {
	flagset := flag.NewFlagSet("airlink", flag.ExitOnError)
	configPath := flagset.String("config", "airlink.hcl", "")
	debug := flagset.Bool("debug", false, "debug logging")
	flagset.Usage = func() {
		fmt.Fprintf(flagset.Output(), "usage: airlink [-config airlink.hcl] [-debug] command [args]\n%s", subcmd.Usage(modules))
		flagset.PrintDefaults()
	}
	_ = flagset.Parse(os.Args[1:])

	if subcmd.SdNotify("start") {
		// under systemd, assume journal logging, remove timestamp
		log.SetFlags(log2.LServiceFlags)
	} else if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		log.SetFlags(log2.LInteractiveFlags)
	} else {
		log.SetFlags(log2.LStdFlags)
	}

	mod, err := subcmd.Parse(flagset.Arg(0), modules)
	if err != nil {
		flagset.Usage()
		log.Fatal(err)
	}

	var cfg *config.Config
	if !mod.NoConfig {
		cfg = config.MustReadConfig(log, config.NewOsFullReader(), *configPath)
		if cfg.LogDebug {
			*debug = true
		}
	}
	if *debug {
		log.SetLevel(log2.LDebug)
	}
	link.SetTransportLog(log)

	ctx := log2.ContextWithLog(context.Background(), log)
	log.Debugf("airlink command=%s", mod.Name)
	if err := mod.Main(ctx, cfg, flagset.Args()[1:]); err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
}
