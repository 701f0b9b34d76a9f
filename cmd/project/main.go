// Package main contains a command to project world points through a camera pose.
package main

import (
	"context"
	"flag"
	"math"
	"strconv"
	"strings"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/camtools/se3cam/spatialmath"
	"github.com/camtools/se3cam/transform"
	se3utils "github.com/camtools/se3cam/utils"
)

var logger = golog.NewDevelopmentLogger("project")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

func mainWithArgs(_ context.Context, args []string, logger golog.Logger) error {
	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	intrinsicsFile := flags.String("intrinsics", "", "path to an intrinsics JSON file")
	rx := flags.Float64("rx", 0, "camera roll in degrees")
	ry := flags.Float64("ry", 0, "camera pitch in degrees")
	rz := flags.Float64("rz", 0, "camera yaw in degrees")
	tx := flags.Float64("tx", 0, "camera x translation")
	ty := flags.Float64("ty", 0, "camera y translation")
	tz := flags.Float64("tz", 0, "camera z translation")
	if err := flags.Parse(args[1:]); err != nil {
		return err
	}
	if *intrinsicsFile == "" {
		return errors.New("need an -intrinsics file")
	}
	if flags.NArg() == 0 {
		return errors.New("need at least one x,y,z world point")
	}

	intrinsics, err := transform.NewPinholeCameraIntrinsicsFromJSONFile(*intrinsicsFile)
	if err != nil {
		return err
	}
	if err := intrinsics.CheckValid(); err != nil {
		return err
	}

	points := make([]r3.Vector, flags.NArg())
	for i, arg := range flags.Args() {
		pt, err := parsePoint(arg)
		if err != nil {
			return err
		}
		points[i] = pt
	}

	extrinsic := transform.NewSingleRigidTransform(
		&spatialmath.EulerAngles{
			A1:    se3utils.DegToRad(*rx),
			A2:    se3utils.DegToRad(*ry),
			A3:    se3utils.DegToRad(*rz),
			Order: spatialmath.OrderXYZ,
		},
		r3.Vector{X: *tx, Y: *ty, Z: *tz},
	)
	aa := extrinsic.Rotations()[0].AxisAngles()
	logger.Infow("camera pose",
		"rotation_deg", se3utils.RadToDeg(aa.Theta),
		"axis", r3.Vector{X: aa.RX, Y: aa.RY, Z: aa.RZ},
		"translation", r3.Vector{X: *tx, Y: *ty, Z: *tz},
	)

	pixels, err := transform.PerspectiveProjection(extrinsic, intrinsics.CameraMatrix(), [][]r3.Vector{points})
	if err != nil {
		return err
	}

	for i, px := range pixels[0] {
		inFrame := px.X >= 0 && px.X < float64(intrinsics.Width) &&
			px.Y >= 0 && px.Y < float64(intrinsics.Height) &&
			!math.IsNaN(px.X) && !math.IsNaN(px.Y)
		logger.Infow("projected point", "world", points[i], "pixel", px, "in_frame", inFrame)
	}
	return nil
}

// parsePoint splits a comma-delimited x,y,z argument into a vector.
func parsePoint(s string) (r3.Vector, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 3 {
		return r3.Vector{}, errors.Errorf("expected x,y,z but got %q", s)
	}
	var out [3]float64
	for i, field := range fields {
		value, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return r3.Vector{}, errors.Wrapf(err, "bad coordinate %q", field)
		}
		out[i] = value
	}
	return r3.Vector{X: out[0], Y: out[1], Z: out[2]}, nil
}
