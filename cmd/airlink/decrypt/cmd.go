package decrypt

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/juju/errors"
	"github.com/temoto/airlink/cmd/airlink/subcmd"
	"github.com/temoto/airlink/credential"
	"github.com/temoto/airlink/internal/config"
)

var Mod = subcmd.Mod{
	Name:     "decrypt",
	Usage:    "BLOB  print serial and password hash from encrypted local credentials",
	Main:     Main,
	NoConfig: true,
}

func Main(ctx context.Context, _ *config.Config, args []string) error {
	return run(os.Stdout, args)
}

func run(w io.Writer, args []string) error {
	if len(args) != 1 {
		return errors.NotValidf("arguments, usage: decrypt BLOB")
	}
	local, err := credential.Decrypt(args[0])
	if err != nil {
		return errors.Annotate(err, "decrypt")
	}
	_, err = fmt.Fprintf(w, "serial=%s\npassword_hash=%s\n", local.Serial, local.AccessPointPasswordHash)
	return err
}
