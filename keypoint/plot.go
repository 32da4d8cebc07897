package keypoint

import (
	"image"

	"github.com/fogleman/gg"
)

// bonePairs connects landmark slots for skeleton rendering.
var bonePairs = [][2]int{
	{LeftShoulder, RightShoulder},
	{LeftShoulder, LeftElbow},
	{LeftElbow, LeftWrist},
	{RightShoulder, RightElbow},
	{RightElbow, RightWrist},
	{LeftShoulder, LeftHip},
	{RightShoulder, RightHip},
	{LeftHip, RightHip},
	{LeftHip, LeftKnee},
	{LeftKnee, LeftAnkle},
	{RightHip, RightKnee},
	{RightKnee, RightAnkle},
	{LeftAnkle, LeftHeel},
	{LeftHeel, LeftFootIndex},
	{RightAnkle, RightHeel},
	{RightHeel, RightFootIndex},
}

// Plot renders a keypoint frame at the given pixel size and saves it as PNG.
// Bones draw between detected landmark pairs, then every detected point
// draws on top.
func Plot(kps Keypoints2D, width, height int, outName string) error {
	return plot(kps, nil, width, height, outName)
}

// PlotOnImage renders a keypoint frame over img and saves it as PNG.
func PlotOnImage(kps Keypoints2D, img image.Image, outName string) error {
	b := img.Bounds()
	return plot(kps, img, b.Dx(), b.Dy(), outName)
}

func plot(kps Keypoints2D, img image.Image, w, h int, outName string) error {
	dc := gg.NewContext(w, h)
	if img != nil {
		dc.DrawImage(img, 0, 0)
	} else {
		dc.SetRGB(0, 0, 0)
		dc.Clear()
	}

	dc.SetRGBA(0, 1, 0, 0.8)
	dc.SetLineWidth(2)
	for _, bone := range bonePairs {
		if !kps.Valid(bone[0]) || !kps.Valid(bone[1]) {
			continue
		}
		a, b := kps[bone[0]], kps[bone[1]]
		dc.DrawLine(a.X*float64(w), a.Y*float64(h), b.X*float64(w), b.Y*float64(h))
		dc.Stroke()
	}

	// draw keypoints on image
	dc.SetRGBA(0, 0, 1, 0.5)
	for i := range kps {
		if !kps.Valid(i) {
			continue
		}
		dc.DrawCircle(kps[i].X*float64(w), kps[i].Y*float64(h), 3.0)
		dc.Fill()
	}
	return dc.SavePNG(outName)
}
