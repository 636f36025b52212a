package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mhpenta/lynx"
	"github.com/mhpenta/lynx/internal/config"
	"github.com/mhpenta/lynx/provider/gemini"
)

func NewSettingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Show the effective configuration and model tiers",
		Args:  cobra.NoArgs,
		RunE:  settingsHandler,
	}
}

func settingsHandler(cmd *cobra.Command, args []string) error {
	s := sessionFrom(cmd)
	if s == nil {
		return errors.New("session not initialized")
	}

	path, _ := cmd.Flags().GetString("config")
	fmt.Fprintf(s.out, "# %s\n", path)
	fmt.Fprintf(s.out, "# env: %s, %s, %s\n", config.EnvDataDir, config.EnvBackend, config.EnvDynamoDBTable)

	data, err := s.cfg.Marshal()
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, string(data))

	fmt.Fprintln(s.out, "tiers:")
	for _, tier := range []lynx.TierInfo{gemini.FlashInfo, gemini.ProInfo} {
		fmt.Fprintf(s.out, "  %-6s %-28s %s\n", tier.Label, tier.Model, tier.Description)
	}
	return nil
}
