package commands

import (
	"fmt"
	"strings"

	"github.com/de-tools/mpesa-etl/pkg/services/config"
	"github.com/spf13/cobra"
)

type ProfilesCmd struct {
	env *Env
}

func NewProfilesCmd(env *Env) *cobra.Command {
	pc := &ProfilesCmd{env: env}
	return &cobra.Command{
		Use:   "profiles",
		Short: "List export destinations and supported warehouse drivers",
		RunE:  pc.run,
	}
}

func (pc *ProfilesCmd) run(cmd *cobra.Command, _ []string) error {
	cfg, ctx, err := pc.env.Setup(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Supported warehouse drivers:\n%s\n", strings.Join(pc.env.Sinks.ListDrivers(), "\n"))

	if cfg.Storage.ProfilesPath == "" {
		fmt.Fprintln(out, "\nNo profiles file configured (storage.profiles_path)")
		return nil
	}

	registry, err := config.NewProfileRegistry(cfg.Storage.ProfilesPath)
	if err != nil {
		return err
	}
	profiles, err := registry.GetProfiles(ctx)
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		fmt.Fprintf(out, "\nNo profiles found in %s\n", cfg.Storage.ProfilesPath)
		return nil
	}

	fmt.Fprintf(out, "\nProfiles in %s:\n", cfg.Storage.ProfilesPath)
	for _, profile := range profiles {
		fmt.Fprintln(out, profile.String())
	}
	return nil
}
