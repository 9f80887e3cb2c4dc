package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/srlehn/drmfb/display"
	"github.com/srlehn/drmfb/drm"
)

func init() { rootCmd.AddCommand(modesCmd) }

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "list the modes of the connected output",
	Long: `list the modes of the connected output

    >    selected mode
    *    preferred mode`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(modesFunc)
	},
}

func modesFunc(fbp **display.Framebuffer) error {
	fb, card, err := openDisplay(false)
	if err != nil {
		return err
	}
	*fbp = fb
	out := fb.Output()
	conn, err := card.Connector(out.ConnectorID)
	if err != nil {
		return err
	}
	fmt.Printf("%s (connector %d, %s)\n", conn.Name(), conn.ID, conn.Connection)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for i := range conn.Modes {
		m := &conn.Modes[i]
		var mark string
		if m.IsPreferred() {
			mark = `*`
		}
		if *m == out.Mode.Info {
			mark = `>` + mark
		}
		fmt.Fprintf(w, "%s\t%dx%d\t%d Hz\t%s\t%s\n",
			mark, m.Hdisplay, m.Vdisplay, m.Vrefresh, pixelClock(m), modeTypeString(m))
	}
	return w.Flush()
}

func pixelClock(m *drm.ModeInfo) string {
	// drm reports the clock in kHz
	return humanize.SIWithDigits(float64(m.Clock)*1000, 2, `Hz`)
}

func modeTypeString(m *drm.ModeInfo) string {
	var s string
	for _, t := range []struct {
		bit  uint32
		name string
	}{
		{drm.ModeTypePreferred, `preferred`},
		{drm.ModeTypeDriver, `driver`},
		{drm.ModeTypeUserdef, `userdef`},
	} {
		if m.Type&t.bit == 0 {
			continue
		}
		if len(s) > 0 {
			s += `,`
		}
		s += t.name
	}
	return s
}
