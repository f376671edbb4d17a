// Copyright (2015) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

// Package commands implements the rohcc CLI's subcommands.
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oprsystem/rohc"
)

var (
	cfgFile string

	flagCIDType   string
	flagMaxCID    int
	flagMRRU      int
	flagWindow    int
	flagIRRefresh int
	flagFORefresh int
	flagProfiles    []string
	flagRTPPorts    []int
	flagMetricsAddr string
)

// rootCmd is the rohcc base command.
var rootCmd = &cobra.Command{
	Use:   "rohcc",
	Short: "ROHC compressor demonstration CLI",
	Long: `rohcc drives the rohc package's Compressor from the command line:
compress a single packet, or open an interactive shell that compresses
one packet per line of hex input.

All Compressor configuration can also be supplied via a config file
(--config) or ROHCC_-prefixed environment variables, e.g.
ROHCC_PROFILES="ip udp rtp" (list values in the environment are
separated by spaces).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/rohcc/config.yaml)")
	pf.StringVar(&flagCIDType, "cid-type", "small", "cid type: small or large")
	pf.IntVar(&flagMaxCID, "max-cid", 15, "maximum context id")
	pf.IntVar(&flagMRRU, "mrru", 0, "maximum reconstructed reception unit (0 disables segmentation)")
	pf.IntVar(&flagWindow, "window", 16, "w-lsb window width (power of two)")
	pf.IntVar(&flagIRRefresh, "ir-refresh", 1700, "packets between forced IR refreshes")
	pf.IntVar(&flagFORefresh, "fo-refresh", 700, "packets between forced FO refreshes")
	pf.StringSliceVar(&flagProfiles, "profiles", []string{"ip", "udp", "udplite", "esp", "rtp"}, "enabled profiles")
	pf.IntSliceVar(&flagRTPPorts, "rtp-port", nil, "UDP port to treat as RTP (repeatable)")
	pf.StringVar(&flagMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9100); empty disables")

	for _, name := range []string{"cid-type", "max-cid", "mrru", "window", "ir-refresh", "fo-refresh", "profiles", "rtp-port", "metrics-addr"} {
		_ = viper.BindPFlag(name, pf.Lookup(name))
	}

	rootCmd.AddCommand(compressCmd)
	rootCmd.AddCommand(shellCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("$XDG_CONFIG_HOME/rohcc")
		viper.AddConfigPath(".")
	}
	viper.SetEnvPrefix("ROHCC")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

// profileByName maps a config/flag profile name to its ProfileID.
func profileByName(name string) (rohc.ProfileID, bool) {
	switch strings.ToLower(name) {
	case "ip", "iponly", "ip-only":
		return rohc.ProfileIP, true
	case "udp":
		return rohc.ProfileUDP, true
	case "udplite", "udp-lite":
		return rohc.ProfileUDPLite, true
	case "esp":
		return rohc.ProfileESP, true
	case "rtp":
		return rohc.ProfileRTP, true
	case "tcp":
		return rohc.ProfileTCP, true
	case "uncompressed":
		return rohc.ProfileUncompressed, true
	}
	return 0, false
}

// buildCompressor assembles a Compressor from the bound viper
// configuration, shared by every subcommand that needs one.
func buildCompressor() (*rohc.Compressor, error) {
	cidType := rohc.SmallCID
	if strings.EqualFold(viper.GetString("cid-type"), "large") {
		cidType = rohc.LargeCID
	}

	c, err := rohc.NewCompressor(cidType, viper.GetInt("max-cid"))
	if err != nil {
		return nil, fmt.Errorf("new compressor: %w", err)
	}

	if err := c.SetWLSBWindowWidth(viper.GetInt("window")); err != nil {
		return nil, fmt.Errorf("window width: %w", err)
	}
	if err := c.SetPeriodicRefreshes(viper.GetInt("ir-refresh"), viper.GetInt("fo-refresh")); err != nil {
		return nil, fmt.Errorf("periodic refresh: %w", err)
	}
	if err := c.SetMRRU(viper.GetInt("mrru")); err != nil {
		return nil, fmt.Errorf("mrru: %w", err)
	}

	for _, name := range viper.GetStringSlice("profiles") {
		id, ok := profileByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown profile %q", name)
		}
		if err := c.EnableProfile(id); err != nil {
			return nil, fmt.Errorf("enable profile %q: %w", name, err)
		}
	}

	for _, port := range viper.GetIntSlice("rtp-port") {
		if err := c.AddRTPPort(uint16(port)); err != nil {
			return nil, fmt.Errorf("rtp port %d: %w", port, err)
		}
	}

	return c, nil
}
