package runner

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nvr-ai/go-imgprep/engines"
	"github.com/nvr-ai/go-imgprep/images"
)

func writePNG(t *testing.T, dir string, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, "input.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func colorImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	return img
}

// failingEngine records whether Transform was reached.
type failingEngine struct {
	called bool
}

func (f *failingEngine) Name() engines.Type { return "fake" }
func (f *failingEngine) Close() error       { return nil }
func (f *failingEngine) Transform(context.Context, engines.Job) (images.Image, error) {
	f.called = true
	return images.Image{}, &images.EncodeError{Path: "x", Err: images.ErrEmptyImage}
}

func TestJobs(t *testing.T) {
	r := ResizeJob("photo.jpg")
	assert.Equal(t, engines.Job{
		Op: engines.OpResize, Input: "photo.jpg", Output: "resized_image.jpg", Width: 32, Height: 32,
	}, r)

	g := GrayscaleJob("photo.jpg", GrayscaleOutput)
	assert.Equal(t, engines.Job{Op: engines.OpGrayscale, Input: "photo.jpg", Output: "gray_image.jpg"}, g)
}

func TestRunResize(t *testing.T) {
	dir := t.TempDir()
	job := ResizeJob(writePNG(t, dir, colorImage(640, 480)))
	job.Output = filepath.Join(dir, ResizeOutput)

	core, logs := observer.New(zap.DebugLevel)
	res, err := New(engines.NewNative(nil), zap.New(core)).Run(context.Background(), job)
	require.NoError(t, err)

	assert.Equal(t, engines.EngineNative, res.Engine)
	assert.Equal(t, 32, res.Output.Width)
	assert.Equal(t, 32, res.Output.Height)
	assert.NotEmpty(t, res.Checksum)
	assert.FileExists(t, job.Output)

	done := logs.FilterMessage("transform complete").All()
	require.Len(t, done, 1)
	assert.Equal(t, res.Checksum, done[0].ContextMap()["checksum"])
}

func TestRunWarnsOnMisleadingExtension(t *testing.T) {
	dir := t.TempDir()
	input := writePNG(t, dir, colorImage(16, 16))

	core, logs := observer.New(zap.WarnLevel)
	run := New(engines.NewNative(nil), zap.New(core))

	_, err := run.Run(context.Background(), GrayscaleJob(input, filepath.Join(dir, "gray.png")))
	require.NoError(t, err)
	warned := logs.FilterMessage("output extension does not match JPEG content").All()
	require.Len(t, warned, 1)
	assert.Equal(t, "png", warned[0].ContextMap()["extension_format"])

	_, err = run.Run(context.Background(), GrayscaleJob(input, filepath.Join(dir, "gray.jpg")))
	require.NoError(t, err)
	assert.Equal(t, 1, logs.Len())
}

func TestRunGrayscaleIdempotent(t *testing.T) {
	dir := t.TempDir()
	input := writePNG(t, dir, colorImage(64, 48))
	first := filepath.Join(dir, "first.jpg")
	second := filepath.Join(dir, "second.jpg")

	run := New(engines.NewNative(nil), nil)

	res1, err := run.Run(context.Background(), GrayscaleJob(input, first))
	require.NoError(t, err)
	assert.Equal(t, 1, res1.Output.Channels)
	assert.Equal(t, 64, res1.Output.Width)
	assert.Equal(t, 48, res1.Output.Height)

	// Converting the gray output again does not shift any level; the pixels
	// only differ by what a second JPEG pass adds.
	gray1, _, err := images.DecodeFile(first)
	require.NoError(t, err)
	res2, err := run.Run(context.Background(), GrayscaleJob(first, second))
	require.NoError(t, err)
	assert.Equal(t, res1.Output, res2.Output)
	gray2, _, err := images.DecodeFile(second)
	require.NoError(t, err)

	g1, g2 := images.Grayscale(gray1), images.Grayscale(gray2)
	assert.Equal(t, images.ComputeChecksum(gray1), images.ComputeChecksum(g1))

	var total int
	for i := range g1.Pix {
		d := int(g1.Pix[i]) - int(g2.Pix[i])
		if d < 0 {
			d = -d
		}
		total += d
	}
	assert.LessOrEqual(t, float64(total)/float64(len(g1.Pix)), 3.0)
}

func TestRunMissingArgumentSkipsEngine(t *testing.T) {
	eng := &failingEngine{}
	_, err := New(eng, nil).Run(context.Background(), ResizeJob(""))

	require.Error(t, err)
	assert.True(t, images.IsMissingArgument(err))
	assert.Equal(t, images.MissingArgumentMessage, err.Error())
	assert.False(t, eng.called)
}

func TestRunPropagatesEngineErrors(t *testing.T) {
	eng := &failingEngine{}
	_, err := New(eng, nil).Run(context.Background(), GrayscaleJob("in.jpg", "out.jpg"))

	assert.True(t, eng.called)
	assert.True(t, images.IsEncodeError(err))
}

func TestRunNonexistentInput(t *testing.T) {
	dir := t.TempDir()
	job := ResizeJob(filepath.Join(dir, "missing.jpg"))
	job.Output = filepath.Join(dir, ResizeOutput)

	_, err := New(engines.NewNative(nil), nil).Run(context.Background(), job)
	require.Error(t, err)
	assert.True(t, images.IsDecodeError(err))
	assert.NoFileExists(t, job.Output)
}
