package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jrsteele09/varix-web/internal/config"
	apperrors "github.com/jrsteele09/varix-web/internal/errors"
	"github.com/jrsteele09/varix-web/sessions"
	"github.com/jrsteele09/varix-web/supabase"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// userAdmin is the slice of the admin API the CLI drives.
type userAdmin interface {
	ListUsers(ctx context.Context) ([]sessions.User, error)
	DeleteUser(ctx context.Context, id string) error
}

var _ userAdmin = (*supabase.Client)(nil)

type app struct {
	in      io.Reader
	out     io.Writer
	errOut  io.Writer
	connect func() (userAdmin, error)
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	a := &app{in: os.Stdin, out: os.Stdout, errOut: os.Stderr, connect: connectFromEnv}
	if err := a.rootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func connectFromEnv() (userAdmin, error) {
	cfg, err := config.LoadAdmin()
	if err != nil {
		return nil, err
	}
	if err := config.ValidateAdmin(cfg); err != nil {
		return nil, err
	}
	return supabase.New(cfg.GetSupabaseURL(), cfg.GetServiceRoleKey())
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Administrative tasks for the Varix Supabase project",
		SilenceUsage: true,
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	users := &cobra.Command{
		Use:   "users",
		Short: "Manage auth users (requires the service role key)",
	}
	users.AddCommand(a.listCommand(), a.clearCommand())
	root.AddCommand(users)
	return root
}

// client connects and, on a configuration problem, prints the setup help.
func (a *app) client() (userAdmin, error) {
	c, err := a.connect()
	switch {
	case apperrors.Is(err, apperrors.ErrMissingEnvVars):
		fmt.Fprint(a.errOut, missingEnvHelp)
	case apperrors.Is(err, apperrors.ErrInvalidServiceRoleKey):
		fmt.Fprint(a.errOut, invalidKeyHelp)
	}
	return c, err
}

const missingEnvHelp = `
Missing environment variables!

Please set the following environment variables:
  SUPABASE_URL - Your Supabase project URL
  SUPABASE_SERVICE_ROLE_KEY - Your service role key (from Dashboard > Settings > API)

Example:
  export SUPABASE_URL="https://xxxxx.supabase.co"
  export SUPABASE_SERVICE_ROLE_KEY="eyJ..."
  admin users clear

`

const invalidKeyHelp = `
Invalid service_role key format!
The service_role key should be a JWT starting with "eyJ..."
Make sure you're using the service_role key, NOT the anon key.

`
