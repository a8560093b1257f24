// Command dpuinfer runs the DPU inference kernel over a directory of
// frames using a kernel configuration file, printing the annotations the
// kernel attaches.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/edge-ai-lab/go-dpuinfer/frames"
	"github.com/edge-ai-lab/go-dpuinfer/kernel"
	"github.com/edge-ai-lab/go-dpuinfer/meta"
	"github.com/edge-ai-lab/go-dpuinfer/util"
)

type options struct {
	configFile   string
	framesDir    string
	loops        int
	width        int
	height       int
	runtimeClass int
	runtimeName  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "dpuinfer",
		Short: "Run DPU inference models over raw frames",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&opts.configFile, "config", "c", "", "kernel configuration file (json)")
	cmd.Flags().StringVarP(&opts.framesDir, "frames", "f", "", "directory of frames to process")
	cmd.Flags().IntVar(&opts.loops, "loops", 1, "number of passes over the frame directory")
	cmd.Flags().IntVar(&opts.width, "width", 0, "frame width, defaults to the negotiated model shape")
	cmd.Flags().IntVar(&opts.height, "height", 0, "frame height, defaults to the negotiated model shape")
	cmd.Flags().IntVar(&opts.runtimeClass, "runtime-class", -1, "model class attached as per-frame selection metadata")
	cmd.Flags().StringVar(&opts.runtimeName, "runtime-name", "", "model name attached as per-frame selection metadata")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("frames")
	return cmd
}

func run(opts *options) error {
	v := viper.New()
	v.SetConfigFile(opts.configFile)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return err
	}
	raw, err := json.Marshal(v.AllSettings())
	if err != nil {
		return err
	}

	k, err := kernel.Init(raw)
	if err != nil {
		return err
	}
	defer k.Deinit()

	format, err := frames.ParseFormat(v.GetString("model-format"))
	if err != nil {
		return err
	}

	width, height := opts.width, opts.height
	if caps := k.Caps(); len(caps) > 0 && caps[0].Fixed() && width == 0 {
		width = caps[0].MaxWidth
		height = caps[0].MaxHeight
	}
	if width == 0 || height == 0 {
		return fmt.Errorf("--width and --height are required in runtime selection mode")
	}

	imgs, err := util.LoadDirectoryFrames(opts.framesDir, width, height, format)
	if err != nil {
		return err
	}
	if len(imgs) == 0 {
		return fmt.Errorf("no frames found in %s", opts.framesDir)
	}

	for i := 0; i < opts.loops; i++ {
		for n, frame := range imgs {
			if opts.runtimeName != "" {
				frame.Input = &meta.Input{Class: opts.runtimeClass, Name: opts.runtimeName}
			}
			if err := k.Start(frame); err != nil {
				fmt.Fprintf(os.Stderr, "frame %d failed: %v\n", n, err)
				continue
			}
			printInference(n, frame.Inference)
		}
	}
	return k.Done()
}

func printInference(frame int, inf *meta.Inference) {
	for _, p := range inf.Predictions {
		name := p.DisplayName
		if name == "" {
			name = fmt.Sprintf("label %d", p.Label)
		}
		fmt.Printf("frame %d: %s %s score=%.3f box=(%.0f,%.0f)-(%.0f,%.0f)\n",
			frame, inf.ModelName, name, p.Score,
			p.Box.XMin, p.Box.YMin, p.Box.XMax, p.Box.YMax)
	}
}
