// Package main provides a command that turns detected pose keypoints into
// a 3D body model and measurements.
package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/bodyscan/keypoint"
	"go.viam.com/bodyscan/measure"
	"go.viam.com/bodyscan/multiview"
	"go.viam.com/bodyscan/scan"
)

var logger = golog.NewDevelopmentLogger("bodyscan")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	KeypointsFile string `flag:"keypoints,required,usage=path to detected keypoints JSON"`
	HeightCm      int    `flag:"height,default=170,usage=subject height in centimeters"`
	OutFile       string `flag:"out,default=body.glb,usage=output GLB path"`
	PlotFile      string `flag:"plot,usage=optional skeleton plot PNG path"`
	MeasureConfig string `flag:"measure-config,usage=optional measurement tuning JSON path"`
}

// scanInput is the on-disk keypoints format: one frame per view, each with
// either the 33 detector landmarks or a full 135 slot frame.
type scanInput struct {
	Views       [][]inputPoint `json:"views"`
	ImageWidth  int            `json:"image_width"`
	ImageHeight int            `json:"image_height"`
	HeightCm    float64        `json:"height_cm"`
}

type inputPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

var sliceLabels = []string{
	"waist", "chest", "hips", "left thigh", "right thigh", "left arm", "right arm",
}

var proportionLabels = []string{
	"shoulder width", "arm length", "leg length", "hip width",
	"upper body", "lower body", "neck width", "thigh width",
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}

	input, err := readInput(argsParsed.KeypointsFile)
	if err != nil {
		return err
	}
	views, err := input.frames()
	if err != nil {
		return err
	}

	refHeightCm := float64(argsParsed.HeightCm)
	if input.HeightCm > 0 {
		refHeightCm = input.HeightCm
	}

	cfg := scan.DefaultConfig()
	if argsParsed.MeasureConfig != "" {
		measureCfg, err := measure.LoadConfig(argsParsed.MeasureConfig)
		if err != nil {
			return errors.Wrap(err, "cannot load measurement tuning")
		}
		cfg.Measure = *measureCfg
	}
	scanner, err := scan.NewScannerFromConfig(cfg, logger)
	if err != nil {
		return err
	}

	if validation := keypoint.Validate(views[0]); !validation.IsFullBody {
		logger.Warnw("keypoints look incomplete",
			"message", validation.Message,
			"confidence", validation.Confidence)
	}

	var result *scan.Result
	var labels []string
	switch len(views) {
	case multiview.ViewCount:
		result = scanner.ProcessViews(views, refHeightCm)
		labels = sliceLabels
	case 1:
		result = scanner.ProcessView(views[0], refHeightCm, input.ImageWidth, input.ImageHeight, nil)
		labels = proportionLabels
	default:
		return errors.Errorf("expected 1 or %d views, got %d", multiview.ViewCount, len(views))
	}

	for i, cm := range result.Measurements {
		logger.Infow("measurement", "name", labels[i], "cm", cm)
	}

	if len(result.ModelGLB) > 0 {
		if err := writeModel(result.ModelGLB, argsParsed.OutFile); err != nil {
			return err
		}
		logger.Infow("wrote model", "path", argsParsed.OutFile, "bytes", len(result.ModelGLB))
	}

	if argsParsed.PlotFile != "" {
		width, height := input.ImageWidth, input.ImageHeight
		if width <= 0 || height <= 0 {
			width, height = multiview.DefaultImageWidth, multiview.DefaultImageHeight
		}
		if err := keypoint.Plot(views[0], width, height, argsParsed.PlotFile); err != nil {
			return errors.Wrap(err, "cannot plot keypoints")
		}
		logger.Infow("wrote plot", "path", argsParsed.PlotFile)
	}
	return nil
}

// readInput parses the keypoints JSON file.
func readInput(path string) (*scanInput, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	var input scanInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, errors.Wrap(err, "cannot parse keypoints JSON")
	}
	if len(input.Views) == 0 {
		return nil, errors.New("keypoints JSON has no views")
	}
	return &input, nil
}

// frames converts the raw views into full keypoint frames, expanding
// detector-sized landmark lists.
func (in *scanInput) frames() ([]keypoint.Keypoints2D, error) {
	views := make([]keypoint.Keypoints2D, 0, len(in.Views))
	for i, raw := range in.Views {
		pts := make([]r2.Point, len(raw))
		for j, p := range raw {
			pts[j] = r2.Point{X: p.X, Y: p.Y}
		}
		switch len(pts) {
		case keypoint.LandmarkCount:
			views = append(views, keypoint.Expand(pts))
		case keypoint.FrameSize:
			views = append(views, keypoint.Keypoints2D(pts))
		default:
			return nil, errors.Errorf("view %d has %d points, want %d or %d",
				i, len(pts), keypoint.LandmarkCount, keypoint.FrameSize)
		}
	}
	return views, nil
}

// writeModel writes the GLB bytes to disk.
func writeModel(data []byte, path string) (err error) {
	out, err := os.Create(filepath.Clean(path))
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, out.Close())
	}()
	_, err = out.Write(data)
	return err
}
