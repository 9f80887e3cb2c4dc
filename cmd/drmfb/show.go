package main

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/srlehn/thumbnails"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/srlehn/drmfb/display"
	"github.com/srlehn/drmfb/internal"
	"github.com/srlehn/drmfb/internal/dumb"
	"github.com/srlehn/drmfb/internal/errors"
	"github.com/srlehn/drmfb/internal/logx"
	"github.com/srlehn/drmfb/resize"
	_ "github.com/srlehn/drmfb/resize/bild"
	_ "github.com/srlehn/drmfb/resize/caire"
	_ "github.com/srlehn/drmfb/resize/gift"
	_ "github.com/srlehn/drmfb/resize/imaging"
	_ "github.com/srlehn/drmfb/resize/nfnt"
	_ "github.com/srlehn/drmfb/resize/rdefault"
	_ "github.com/srlehn/drmfb/resize/rez"
	_ "github.com/srlehn/drmfb/resize/xdraw"
)

var (
	showResizer  string
	showDuration time.Duration
	showFormat   string
	showKeep     bool
)

func init() {
	showCmd.Flags().StringVarP(&showResizer, `resizer`, `r`, `default`, `resizer (`+strings.Join(resize.Names(), `, `)+`)`)
	showCmd.Flags().DurationVarP(&showDuration, `time`, `t`, 5*time.Second, `display duration`)
	showCmd.Flags().StringVarP(&showFormat, `format`, `f`, `rgbx8888`, `buffer format (`+strings.Join(formatNames(), `, `)+`)`)
	showCmd.Flags().BoolVarP(&showKeep, `keep`, `k`, false, `leave the image on screen`)
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "display an image",
	Long: `display an image scaled to the display mode

Files that can't be decoded as an image are shown by their XDG thumbnail,
generated by the installed thumbnailers if necessary.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(showFunc(args[0]))
	},
}

func showFunc(fileName string) displaySwapper {
	return func(fbp **display.Framebuffer) (err error) {
		halFormat, err := parseFormat(showFormat)
		if err != nil {
			return err
		}
		rsz, err := resize.Get(showResizer)
		if err != nil {
			return err
		}
		fb, card, err := openDisplay(true)
		if err != nil {
			return err
		}
		*fbp = fb

		desc := fb.Descriptor()
		size := image.Pt(int(desc.Width), int(desc.Height))
		img, err := loadImage(fileName, size, fb)
		if err != nil {
			return err
		}
		var canvas image.Image
		err = logx.TimeIt(func() error {
			var errResize error
			canvas, errResize = resize.Letterbox(img, size, rsz)
			return errResize
		}, `resize`, fb, `resizer`, showResizer, `from`, img.Bounds().Size(), `to`, size)
		if err != nil {
			return err
		}

		closer := internal.NewCloser()
		defer func() { err = errors.Join(err, closer.Close()) }()
		b, err := dumb.Allocate(card, desc.Width, desc.Height, halFormat)
		if err != nil {
			return err
		}
		closer.AddClosers(b)
		draw.Draw(b.Image(), b.Image().Bounds(), canvas, image.Point{}, draw.Src)
		importBuffer := b.Import
		if showKeep {
			// the framebuffer object outlives the buffer, keeping the frame shown
			importBuffer = func(fb dumb.Importer) error { return fb.ImportBuffer(b.Display()) }
		}
		if err := importBuffer(fb); err != nil {
			return err
		}
		if err := fb.Post(b.Display()); err != nil {
			return err
		}
		fmt.Printf("%s on %s %s\n", fileName, fb.Output().ConnectorName, fb.Output().Mode)
		time.Sleep(showDuration)
		if showKeep {
			return nil
		}
		return fb.SetScreenEnabled(false)
	}
}

func loadImage(fileName string, size image.Point, fb *display.Framebuffer) (image.Image, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.New(err)
	}
	img, imgFormat, errDecode := image.Decode(f)
	_ = f.Close()
	if errDecode == nil {
		logx.Debug(`image decoded`, fb, `file`, fileName, `format`, imgFormat, `size`, img.Bounds().Size())
		return img, nil
	}
	logx.Debug(`not an image, trying thumbnail`, fb, `file`, fileName, `error`, errDecode)
	img, err = thumbnails.OpenThumbnail(fileName, size, true)
	if err != nil {
		return nil, errors.Join(errors.New(errDecode), errors.New(err))
	}
	return img, nil
}
