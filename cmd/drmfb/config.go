package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srlehn/drmfb"
	"github.com/srlehn/drmfb/display"
	"github.com/srlehn/drmfb/internal/environ"
	"github.com/srlehn/drmfb/internal/propkeys"
)

func init() { rootCmd.AddCommand(configCmd) }

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "print the effective configuration",
	Long:  "print the configuration read from the config file and the environment without opening the device",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(configFunc)
	},
}

func configFunc(_ **display.Framebuffer) error {
	path, err := environ.ConfigFilePath()
	if err != nil {
		return err
	}
	pr, err := environ.Load()
	if err != nil {
		return err
	}
	if len(deviceFlag) > 0 {
		pr.SetProperty(propkeys.Device, deviceFlag)
	}
	if len(modeFlag) > 0 {
		pr.SetProperty(propkeys.ModeForce, modeFlag)
	}
	if flipTimeoutFlag > 0 {
		pr.SetProperty(propkeys.FlipTimeout, flipTimeoutFlag.String())
	}
	_, loaded := pr.Property(propkeys.ConfigFileLoaded)
	fmt.Printf("%-18s%s (loaded: %t)\n", `config file:`, path, loaded)
	fmt.Printf("%-18s%s\n", `device:`, drmfb.DevicePath(pr))
	for _, key := range []string{propkeys.ModeForce, propkeys.FlipTimeout} {
		v, ok := pr.Property(key)
		if !ok || len(v) == 0 {
			v = `-`
		}
		fmt.Printf("%-18s%s\n", key+`:`, v)
	}
	if debugFlag {
		fmt.Println(pr.String())
	}
	return nil
}
