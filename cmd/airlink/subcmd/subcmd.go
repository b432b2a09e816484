// Support sub-commands in airlink application.
// It's simple but fine so far.
package subcmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/coreos/go-systemd/daemon"
	"github.com/juju/errors"
	"github.com/temoto/airlink/internal/config"
)

type Mod struct {
	Name  string
	Usage string
	// config is nil for modules with NoConfig
	Main     func(ctx context.Context, config *config.Config, args []string) error
	NoConfig bool
}

func Parse(command string, modules []Mod) (*Mod, error) {
	if command == "" {
		return nil, fmt.Errorf("empty command")
	}

	var found *Mod
	for i := range modules {
		m := &modules[i]
		if m.Name == "" {
			panic(fmt.Sprintf("code error Name='' module=%#v", m))
		}
		if command == m.Name {
			found = m
			break
		}
	}
	if found == nil {
		return nil, fmt.Errorf("unknown command='%s'", command)
	}
	return found, nil
}

func Usage(modules []Mod) string {
	var b strings.Builder
	b.WriteString("commands:\n")
	for _, m := range modules {
		fmt.Fprintf(&b, "  %-8s %s\n", m.Name, m.Usage)
	}
	return b.String()
}

func SdNotify(s string) bool {
	ok, err := daemon.SdNotify(false, s)
	if err != nil {
		log.Fatal("sdnotify: ", errors.ErrorStack(err))
	}
	return ok
}
