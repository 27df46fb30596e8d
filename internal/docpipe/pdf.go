package docpipe

import (
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// FirstPageImage pulls the first embedded image out of a PDF. Scanned
// handwriting PDFs are one full-page image per page, so the first image of
// the first page that has one is the page scan.
func FirstPageImage(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, "", fmt.Errorf("pdfcpu read: %w", err)
	}

	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		images, err := pdfcpu.ExtractPageImages(ctx, pageNr, false)
		if err != nil {
			continue
		}
		for _, img := range images {
			data, err := io.ReadAll(img)
			if err != nil || len(data) == 0 {
				continue
			}
			return data, mediaTypeForFileType(img.FileType), nil
		}
	}
	return nil, "", fmt.Errorf("no embedded image found in %s", path)
}

func mediaTypeForFileType(fileType string) string {
	switch fileType {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	case "tiff", "tif":
		return "image/tiff"
	default:
		return "image/png"
	}
}
