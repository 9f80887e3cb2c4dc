package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"

	"github.com/srlehn/drmfb"
	"github.com/srlehn/drmfb/display"
	"github.com/srlehn/drmfb/drm"
	"github.com/srlehn/drmfb/internal/errors"
	"github.com/srlehn/drmfb/internal/linux"
	"github.com/srlehn/drmfb/internal/logx"
)

var rootCmd = &cobra.Command{
	Use:              filepath.Base(os.Args[0]),
	Short:            "drmfb drive a display through kernel mode setting",
	Long:             "drmfb drive a display through kernel mode setting",
	SilenceUsage:     true,
	TraverseChildren: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	cobra.EnablePrefixMatching = true
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&deviceFlag, `device`, `D`, ``, `drm card (default: configured or /dev/dri/card0)`)
	pf.StringVarP(&modeFlag, `mode`, `m`, ``, `force mode <width>x<height>[@<refresh>]`)
	pf.DurationVar(&flipTimeoutFlag, `flip-timeout`, 0, `page flip wait timeout (0: wait forever)`)
	pf.BoolVarP(&debugFlag, `debug`, `d`, false, `debug errors`)
	pf.BoolVarP(&silentFlag, `silent`, `s`, false, `silence errors`)
	pf.StringVarP(&logFileFlag, `log-file`, `l`, ``, `log file`)
	pf.BoolVarP(&graphicsFlag, `graphics`, `g`, true, `switch the virtual terminal to graphics mode while drawing`)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var (
	deviceFlag      string
	modeFlag        string
	flipTimeoutFlag time.Duration
	debugFlag       bool
	silentFlag      bool
	logFileFlag     string
	graphicsFlag    bool
	cpuProfileFlag  string
	cpuProfilefunc  func(profileFile string) func()
)

type displaySwapper func(fb **display.Framebuffer) error

func run(fn displaySwapper) {
	var err error
	var fb *display.Framebuffer
	var exitCode int
	defer func() {
		if r := recover(); r != nil {
			exitCode = 1
			if !silentFlag {
				if stackFramer, ok := r.(interface{ ErrorStack() string }); ok {
					fmt.Fprintln(os.Stderr, "\n"+stackFramer.ErrorStack())
				} else {
					fmt.Fprintln(os.Stderr, r)
					debug.PrintStack()
				}
			}
		}
		if err := fb.Close(); err != nil && !silentFlag {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		os.Exit(exitCode)
	}()
	if len(cpuProfileFlag) > 0 && cpuProfilefunc != nil {
		if stop := cpuProfilefunc(cpuProfileFlag); stop != nil {
			defer stop()
		}
	}
	if fn == nil {
		err = errors.NilParam()
	} else {
		err = fn(&fb)
	}
	if err != nil {
		logx.IsErr(err, fb, slog.LevelError)
		exitCode = 1
		if !silentFlag {
			if stackFramer, ok := err.(interface{ ErrorStack() string }); debugFlag && ok {
				fmt.Fprintln(os.Stderr, "\n"+stackFramer.ErrorStack())
			} else {
				fmt.Fprintln(os.Stderr, err.Error())
			}
		}
	}
}

// openDisplay opens the display with the options given by the persistent
// flags. Commands that draw pass draw to switch the console to graphics mode.
func openDisplay(draw bool) (*display.Framebuffer, *drm.Card, error) {
	var opts []display.Option
	if len(modeFlag) > 0 {
		opts = append(opts, display.SetModeOverride(modeFlag))
	}
	if flipTimeoutFlag > 0 {
		opts = append(opts, display.SetFlipTimeout(flipTimeoutFlag))
	}
	lvl := slog.LevelInfo
	if debugFlag {
		lvl = slog.LevelDebug
	}
	switch {
	case len(logFileFlag) > 0:
		f, err := os.OpenFile(logFileFlag, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, errors.New(err)
		}
		h := slog.NewTextHandler(f, &slog.HandlerOptions{Level: lvl, AddSource: debugFlag})
		opts = append(opts, display.CloseWith(f), display.SetSLogger(h, true))
	case debugFlag:
		h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
		opts = append(opts, display.SetSLogger(h, true))
	}
	if draw && graphicsFlag {
		// not running on a virtual terminal is fine
		restorer, err := linux.EnterGraphics(os.Stdin.Fd())
		if err == nil && restorer != nil {
			opts = append(opts, display.CloseWith(restorer))
		}
	}
	return drmfb.OpenWithCard(deviceFlag, opts...)
}
