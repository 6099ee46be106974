package imaging

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"sync"
	"testing"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 0, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func decode(t *testing.T, th *Thumbnailer, data []byte) *Source {
	t.Helper()
	src, err := th.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode source: %v", err)
	}
	return src
}

// withDimensions rewrites a png's IHDR so it claims w x h pixels
func withDimensions(data []byte, w, h uint32) []byte {
	out := append([]byte(nil), data...)
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestThumbnailer_Resize(t *testing.T) {
	th := NewThumbnailer(0)
	src := decode(t, th, testPNG(t, 800, 400))
	if src.Format() != "png" || src.Bounds().Dx() != 800 {
		t.Fatalf("source = %s %v", src.Format(), src.Bounds())
	}

	for _, width := range []int{500, 250, 100} {
		out, err := th.Resize(src, width)
		if err != nil {
			t.Fatalf("resize %d: %v", width, err)
		}
		cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
		if err != nil {
			t.Fatalf("decode %d: %v", width, err)
		}
		if format != "png" {
			t.Errorf("format = %s, want png", format)
		}
		if cfg.Width != width || cfg.Height != width/2 {
			t.Errorf("size = %dx%d, want %dx%d", cfg.Width, cfg.Height, width, width/2)
		}
	}
}

func TestThumbnailer_KeepsJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 300, 300))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode: %v", err)
	}

	th := NewThumbnailer(0)
	out, err := th.Resize(decode(t, th, buf.Bytes()), 100)
	if err != nil {
		t.Fatalf("resize: %v", err)
	}
	if _, format, _ := image.DecodeConfig(bytes.NewReader(out)); format != "jpeg" {
		t.Errorf("format = %s, want jpeg", format)
	}
}

func TestThumbnailer_Errors(t *testing.T) {
	th := NewThumbnailer(0)
	if _, err := th.Decode(strings.NewReader("not an image")); err == nil {
		t.Error("expected decode error")
	}
	if _, err := th.Resize(decode(t, th, testPNG(t, 10, 10)), 0); err != ErrInvalidWidth {
		t.Errorf("err = %v, want ErrInvalidWidth", err)
	}
}

func TestThumbnailer_RejectsOversizedImages(t *testing.T) {
	small := testPNG(t, 4, 4)

	// a few hundred bytes claiming 60000x60000 must fail on the header alone
	huge := withDimensions(small, 60000, 60000)
	if _, err := NewThumbnailer(0).Decode(bytes.NewReader(huge)); !errors.Is(err, ErrTooLarge) {
		t.Errorf("huge header: err = %v, want ErrTooLarge", err)
	}

	th := NewThumbnailer(100)
	if _, err := th.Decode(bytes.NewReader(testPNG(t, 20, 20))); !errors.Is(err, ErrTooLarge) {
		t.Errorf("over limit: err = %v, want ErrTooLarge", err)
	}
	if _, err := th.Decode(bytes.NewReader(testPNG(t, 10, 10))); err != nil {
		t.Errorf("at limit: %v", err)
	}
}

func TestThumbnailer_Concurrent(t *testing.T) {
	th := NewThumbnailer(0)
	src := decode(t, th, testPNG(t, 200, 200))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := th.Resize(src, 50); err != nil {
				t.Errorf("resize: %v", err)
			}
		}()
	}
	wg.Wait()
}
