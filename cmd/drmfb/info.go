package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srlehn/drmfb/display"
	"github.com/srlehn/drmfb/internal/propkeys"
)

func init() { rootCmd.AddCommand(infoCmd) }

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "print output, mode and device descriptor",
	Long:  "print the connector, crtc and mode chosen for the display and the resulting device descriptor",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(infoFunc)
	},
}

func infoFunc(fbp **display.Framebuffer) error {
	fb, _, err := openDisplay(false)
	if err != nil {
		return err
	}
	*fbp = fb

	out := fb.Output()
	d := fb.Descriptor()
	fmt.Printf("connector:  %d (%s)\n", out.ConnectorID, out.ConnectorName)
	fmt.Printf("crtc:       %d\n", out.CrtcID)
	fmt.Printf("mode:       %s", out.Mode)
	if out.Mode.Preferred {
		fmt.Print(` (preferred)`)
	}
	fmt.Println()
	fmt.Printf("panel:      %dmm x %dmm\n", out.WidthMM, out.HeightMM)
	fmt.Printf("descriptor: %s\n", d)
	fmt.Printf("state:      %s\n", fb.State())
	if cfg, ok := fb.Property(propkeys.ConfigFileLoaded); ok {
		fmt.Printf("config:     %s\n", cfg)
	}
	return nil
}
