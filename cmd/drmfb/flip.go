package main

import (
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/image/draw"

	"github.com/srlehn/drmfb/display"
	"github.com/srlehn/drmfb/format"
	"github.com/srlehn/drmfb/internal"
	"github.com/srlehn/drmfb/internal/dumb"
	"github.com/srlehn/drmfb/internal/errors"
	"github.com/srlehn/drmfb/internal/logx"
)

var (
	flipFrames int
	flipFormat string
	flipKeep   bool
)

func init() {
	flipCmd.Flags().IntVarP(&flipFrames, `frames`, `n`, 300, `number of frames`)
	flipCmd.Flags().StringVarP(&flipFormat, `format`, `f`, `rgbx8888`, `buffer format (`+strings.Join(formatNames(), `, `)+`)`)
	flipCmd.Flags().BoolVarP(&flipKeep, `keep`, `k`, false, `leave the last frame on screen`)
	rootCmd.AddCommand(flipCmd)
}

var flipCmd = &cobra.Command{
	Use:   "flip",
	Short: "page flip a test pattern",
	Long:  "allocate two scanout buffers and page flip between them, drawing a test pattern",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(flipFunc)
	},
}

func flipFunc(fbp **display.Framebuffer) (err error) {
	halFormat, err := parseFormat(flipFormat)
	if err != nil {
		return err
	}
	fb, card, err := openDisplay(true)
	if err != nil {
		return err
	}
	*fbp = fb

	closer := internal.NewCloser()
	defer func() { err = errors.Join(err, closer.Close()) }()

	desc := fb.Descriptor()
	var bufs [2]*dumb.Buffer
	for i := range bufs {
		b, err := dumb.Allocate(card, desc.Width, desc.Height, halFormat)
		if err != nil {
			return err
		}
		closer.AddClosers(b)
		importBuffer := b.Import
		if flipKeep {
			// the framebuffer object outlives the buffer, keeping the frame shown
			importBuffer = func(fb dumb.Importer) error { return fb.ImportBuffer(b.Display()) }
		}
		if err := importBuffer(fb); err != nil {
			return err
		}
		bufs[i] = b
		logx.Debug(`buffer allocated`, fb, `handle`, b.Handle(), `fb`, b.Display().FramebufferID,
			`size`, humanize.IBytes(b.Size()))
	}
	fmt.Printf("%s: 2 x %dx%d %s buffers (%s each)\n", fb.Output().ConnectorName,
		desc.Width, desc.Height, halFormat, humanize.IBytes(bufs[0].Size()))

	pattern, err := newPatternRenderer(image.Pt(int(desc.Width), int(desc.Height)))
	if err != nil {
		return err
	}
	closer.AddClosers(pattern)

	start := time.Now()
	for n := range flipFrames {
		back := bufs[n%2]
		img := pattern.Render(n, flipFrames)
		draw.Draw(back.Image(), back.Image().Bounds(), img, image.Point{}, draw.Src)
		if err := fb.Post(back.Display()); err != nil {
			return err
		}
		// the other buffer is free to draw into once this flip completed
		if err := fb.Wait(); err != nil {
			return err
		}
	}
	elapsed := time.Since(start)
	if flipFrames > 0 {
		fmt.Printf("%d frames in %s (%.1f fps, mode %d Hz)\n", flipFrames, elapsed.Round(time.Millisecond),
			float64(flipFrames)/elapsed.Seconds(), fb.Output().Mode.Refresh)
	}
	if flipKeep {
		return nil
	}
	return fb.SetScreenEnabled(false)
}

var formatsByName = map[string]format.HAL{
	`rgba8888`: format.RGBA8888,
	`rgbx8888`: format.RGBX8888,
	`rgb888`:   format.RGB888,
	`rgb565`:   format.RGB565,
	`bgra8888`: format.BGRA8888,
}

func formatNames() []string {
	return []string{`rgba8888`, `rgbx8888`, `rgb888`, `rgb565`, `bgra8888`}
}

func parseFormat(name string) (format.HAL, error) {
	f, ok := formatsByName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, errors.Errorf(`unknown format %q, want one of %s`, name, strings.Join(formatNames(), `, `))
	}
	return f, nil
}
