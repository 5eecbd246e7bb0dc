package workflow

import (
	"context"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"runtime"

	"github.com/JaimeStill/document-context/pkg/config"
	"github.com/JaimeStill/document-context/pkg/document"
	dcimage "github.com/JaimeStill/document-context/pkg/image"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/scrivener/internal/markup"
)

// Rasterizer converts a source document into ordered page images written
// under dir.
type Rasterizer interface {
	Rasterize(ctx context.Context, sourcePath, dir string) ([]Page, error)
}

// RasterizerFunc adapts a function to the Rasterizer interface.
type RasterizerFunc func(ctx context.Context, sourcePath, dir string) ([]Page, error)

func (f RasterizerFunc) Rasterize(ctx context.Context, sourcePath, dir string) ([]Page, error) {
	return f(ctx, sourcePath, dir)
}

// PDFRasterizer renders PDF pages to PNG with ImageMagick.
type PDFRasterizer struct{}

// Rasterize renders every page of the PDF at sourcePath concurrently and
// reads back each image's pixel dimensions.
func (PDFRasterizer) Rasterize(ctx context.Context, sourcePath, dir string) ([]Page, error) {
	pdfDoc, err := document.OpenPDF(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf: %w", ErrRasterizeFailed, err)
	}
	defer pdfDoc.Close()

	renderer, err := dcimage.NewImageMagickRenderer(config.DefaultImageConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: create renderer: %w", ErrRasterizeFailed, err)
	}

	allPages, err := pdfDoc.ExtractAllPages()
	if err != nil {
		return nil, fmt.Errorf("%w: extract pages: %w", ErrRasterizeFailed, err)
	}

	pages := make([]Page, len(allPages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(min(runtime.NumCPU(), len(allPages)), 1))

	for i, page := range allPages {
		number := i + 1
		imgPath := filepath.Join(dir, fmt.Sprintf("page-%d.png", number))

		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			data, err := page.ToImage(renderer, nil)
			if err != nil {
				return fmt.Errorf("render page %d: %w", number, err)
			}

			if err := os.WriteFile(imgPath, data, 0600); err != nil {
				return fmt.Errorf("write page %d image: %w", number, err)
			}

			dims, err := ImageDimensions(imgPath)
			if err != nil {
				return fmt.Errorf("page %d: %w", number, err)
			}

			pages[i] = Page{ImagePath: imgPath, Number: number, Dimensions: dims}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRasterizeFailed, err)
	}

	return pages, nil
}

// ImageDimensions reads the pixel size of the PNG at path without decoding
// the whole image.
func ImageDimensions(path string) (markup.Dimensions, error) {
	f, err := os.Open(path)
	if err != nil {
		return markup.Dimensions{}, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return markup.Dimensions{}, fmt.Errorf("decode image config: %w", err)
	}
	return markup.Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}
