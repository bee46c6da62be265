package debug

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/draw"

	"github.com/valerio/go-jeebie-core/jeebie/video"
)

// FrameImage converts a frame to an RGBA image. A scale above 1 upscales it
// with nearest neighbour sampling so pixels stay sharp.
func FrameImage(frame *video.FrameBuffer, scale int) *image.RGBA {
	w, h := frame.Width(), frame.Height()
	src := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, shade := range frame.Shades() {
		r, g, b, a := video.ShadeColor(shade).RGBA()
		px := src.Pix[i*4 : i*4+4]
		px[0], px[1], px[2], px[3] = r, g, b, a
	}
	if scale <= 1 {
		return src
	}

	dst := image.NewRGBA(image.Rect(0, 0, w*scale, h*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// WriteFramePNG encodes the frame as PNG.
func WriteFramePNG(w io.Writer, frame *video.FrameBuffer, scale int) error {
	return png.Encode(w, FrameImage(frame, scale))
}

// SaveFramePNGToDir saves a frame as <directory>/<baseName>.png and returns
// the file path. An empty directory means the working directory.
func SaveFramePNGToDir(frame *video.FrameBuffer, baseName, directory string, scale int) (string, error) {
	filePath := filepath.Join(directory, baseName+".png")
	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", filePath, err)
	}
	defer file.Close()

	if err := WriteFramePNG(file, frame, scale); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}

	slog.Debug("Snapshot saved", "path", filePath, "scale", scale)
	return filePath, nil
}

// TakeSnapshot saves a timestamped snapshot in the working directory, for
// interactive hosts.
func TakeSnapshot(frame *video.FrameBuffer, scale int) {
	if frame == nil {
		slog.Warn("No frame data available for snapshot")
		return
	}

	name := "jeebie_snapshot_" + time.Now().Format("20060102_150405")
	path, err := SaveFramePNGToDir(frame, name, "", scale)
	if err != nil {
		slog.Error("Failed to save snapshot", "error", err)
		return
	}
	slog.Info("Snapshot saved", "path", path)
}
