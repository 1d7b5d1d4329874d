package images

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	// Decoders for formats that get converted to PNG
	_ "image/gif"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"roster-scraper/internal/types"
)

// Fetcher is the network capability the processor needs
type Fetcher interface {
	ContentType(ctx context.Context, url string) (string, error)
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
}

// Processor downloads, validates and normalizes player photos
type Processor struct {
	fetcher Fetcher
	config  *types.Config
	logger  types.Logger

	// per-stem locks make check-then-write atomic for each target file
	locks sync.Map
}

// NewProcessor creates a new image processor
func NewProcessor(fetcher Fetcher, config *types.Config, logger types.Logger) *Processor {
	return &Processor{
		fetcher: fetcher,
		config:  config,
		logger:  logger,
	}
}

// Process stores the image at imageURL under dir and returns its local path.
// Any failure or rejection yields "" so the record carries on without a photo.
// A file already stored under the computed name is returned without touching
// the network.
func (p *Processor) Process(ctx context.Context, imageURL, dir, name, playerID string) string {
	if imageURL == "" {
		return ""
	}

	stem := FileStem(name, playerID)
	if stem == "" {
		p.logger.Debugf("No usable filename for image %s", imageURL)
		return ""
	}

	unlock := p.lock(filepath.Join(dir, stem))
	defer unlock()

	ext := ExtensionFromURL(imageURL)
	if existing := findExisting(dir, stem, ext); existing != "" {
		p.logger.Debugf("Image already stored at %s", existing)
		return existing
	}

	if ext == "" {
		ext = p.probeExtension(ctx, imageURL)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		p.logger.Warnf("Failed to create image directory %s: %v", dir, err)
		return ""
	}

	tmpPath, err := p.download(ctx, imageURL, dir)
	if err != nil {
		p.logger.Warnf("Failed to download image %s: %v", imageURL, err)
		return ""
	}
	defer os.Remove(tmpPath)

	finalPath, err := p.normalize(tmpPath, filepath.Join(dir, stem), ext)
	if err != nil {
		var verr *types.ValidationError
		if errors.As(err, &verr) {
			p.logger.Infof("Skipping low resolution image %s (%dx%d)", imageURL, verr.Width, verr.Height)
		} else {
			p.logger.Warnf("Failed to process image %s: %v", imageURL, err)
		}
		return ""
	}

	p.logger.Debugf("Stored image %s as %s", imageURL, finalPath)
	return finalPath
}

func (p *Processor) lock(key string) func() {
	v, _ := p.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (p *Processor) probeExtension(ctx context.Context, imageURL string) string {
	contentType, err := p.fetcher.ContentType(ctx, imageURL)
	if err != nil {
		p.logger.Debugf("Content type probe for %s failed: %v", imageURL, err)
		return defaultExtension
	}
	return ExtensionForContentType(contentType)
}

// download writes the image into a hidden temp file inside dir, so the final
// rename stays on one filesystem.
func (p *Processor) download(ctx context.Context, imageURL, dir string) (string, error) {
	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	_, err = p.fetcher.Download(ctx, imageURL, tmp)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// normalize validates the downloaded file and moves it to its final name.
// JPEG is re-encoded at the configured quality, PNG is kept as is and
// anything else is converted to PNG.
func (p *Processor) normalize(tmpPath, stemPath, ext string) (string, error) {
	f, err := os.Open(tmpPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return "", &types.DecodeError{URL: tmpPath, Err: err}
	}
	if cfg.Width < p.config.MinImageSize || cfg.Height < p.config.MinImageSize {
		return "", &types.ValidationError{Path: tmpPath, Width: cfg.Width, Height: cfg.Height, Min: p.config.MinImageSize}
	}

	switch format {
	case "png":
		finalPath := stemPath + ext
		if err := os.Rename(tmpPath, finalPath); err != nil {
			return "", err
		}
		return finalPath, nil

	case "jpeg":
		img, err := decodeFrom(f)
		if err != nil {
			return "", err
		}
		finalPath := stemPath + ".jpg"
		err = writeAtomic(finalPath, func(w io.Writer) error {
			return jpeg.Encode(w, toRGBA(img), &jpeg.Options{Quality: p.config.JPEGQuality})
		})
		if err != nil {
			return "", err
		}
		return finalPath, nil

	default:
		img, err := decodeFrom(f)
		if err != nil {
			return "", err
		}
		finalPath := stemPath + ".png"
		err = writeAtomic(finalPath, func(w io.Writer) error {
			return png.Encode(w, img)
		})
		if err != nil {
			return "", err
		}
		return finalPath, nil
	}
}

func decodeFrom(f *os.File) (image.Image, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &types.DecodeError{URL: f.Name(), Err: err}
	}
	return img, nil
}

// toRGBA converts img to the plain RGB color model
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba
}

// writeAtomic writes through a temp file renamed over finalPath on success
func writeAtomic(finalPath string, encode func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(finalPath), ".encode-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := encode(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), finalPath)
}

// findExisting looks for a file already stored for stem: the exact name,
// its normalized .jpg/.png siblings, or any extension when ext is unknown.
func findExisting(dir, stem, ext string) string {
	var names []string
	if ext != "" {
		names = append(names, stem+ext)
	}
	names = append(names, stem+".jpg", stem+".png")

	for _, name := range names {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
	}

	if ext != "" {
		return ""
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())) == stem {
			return filepath.Join(dir, entry.Name())
		}
	}
	return ""
}
