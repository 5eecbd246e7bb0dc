package workflow

import (
	"fmt"

	"github.com/JaimeStill/scrivener/internal/markup"
)

// Page is one rasterized page of the source document.
type Page struct {
	ImagePath  string
	Number     int
	Dimensions markup.Dimensions
}

// PageInfo is the persisted description of a page.
type PageInfo struct {
	PageNumber int               `json:"page_number"`
	Dimensions markup.Dimensions `json:"dimensions"`
}

// Info returns the persisted description of p.
func (p Page) Info() PageInfo {
	return PageInfo{PageNumber: p.Number, Dimensions: p.Dimensions}
}

// Result is the translated HTML for one page.
type Result struct {
	HTML string
	Info PageInfo
}

// ValidatePages checks the rasterizer output before any page is scheduled.
func ValidatePages(pages []Page) error {
	if len(pages) == 0 {
		return ErrNoPages
	}

	for i, p := range pages {
		if p.ImagePath == "" {
			return fmt.Errorf("%w: page %d", ErrMissingImage, p.Number)
		}
		if p.Number != i+1 {
			return fmt.Errorf("%w: position %d has page %d", ErrPageSequence, i+1, p.Number)
		}
		if p.Dimensions.Width <= 0 || p.Dimensions.Height <= 0 {
			return fmt.Errorf("%w: page %d", ErrInvalidDimension, p.Number)
		}
	}
	return nil
}

// Infos returns the persisted descriptions of pages in order.
func Infos(pages []Page) []PageInfo {
	out := make([]PageInfo, len(pages))
	for i, p := range pages {
		out[i] = p.Info()
	}
	return out
}
