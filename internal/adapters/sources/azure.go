package sources

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/Azure/azure-sdk-for-go/services/cognitiveservices/v3.0/computervision"
	"github.com/Azure/go-autorest/autorest"
	"github.com/disintegration/imaging"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/ocr"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/config"
)

// AzureOCR recognizes printed text with Azure Computer Vision
type AzureOCR struct {
	client  computervision.BaseClient
	enhance bool
	logger  *slog.Logger
}

// NewAzureOCR creates a recognizer from config
func NewAzureOCR(cfg config.AzureConfig, logger *slog.Logger) *AzureOCR {
	if logger == nil {
		logger = slog.Default()
	}
	client := computervision.New(cfg.Endpoint)
	client.Authorizer = autorest.NewCognitiveServicesAuthorizer(cfg.APIKey)

	return &AzureOCR{
		client:  client,
		enhance: cfg.Enhance,
		logger:  logger,
	}
}

// Recognize runs OCR on an image. With enhancement enabled the image is
// converted to a sharpened high-contrast grayscale PNG first.
func (a *AzureOCR) Recognize(ctx context.Context, imagePath string) (*ocr.Document, error) {
	var (
		data []byte
		err  error
	)
	if a.enhance {
		data, err = enhanceImage(imagePath)
	} else {
		data, err = os.ReadFile(imagePath)
	}
	if err != nil {
		return nil, err
	}

	result, err := a.client.RecognizePrintedTextInStream(
		ctx,
		true,
		io.NopCloser(bytes.NewReader(data)),
		computervision.OcrLanguages(computervision.En),
	)
	if err != nil {
		return nil, fmt.Errorf("recognize %s: %w", imagePath, err)
	}

	doc := documentFromOCR(result)
	a.logger.Debug("OCR complete", "path", imagePath, "blocks", len(doc.Blocks), "enhanced", a.enhance)
	return doc, nil
}

// enhanceImage prepares a document photo for OCR
func enhanceImage(path string) ([]byte, error) {
	src, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", path, err)
	}

	img := imaging.Grayscale(src)
	img = imaging.AdjustContrast(img, 30)
	img = imaging.Sharpen(img, 1.5)
	if b := img.Bounds(); b.Dx() > 4200 || b.Dy() > 4200 {
		img = imaging.Fit(img, 4200, 4200, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// documentFromOCR converts regions/lines/words into LINE blocks whose
// children are WORD blocks
func documentFromOCR(result computervision.OcrResult) *ocr.Document {
	var blocks []ocr.Block
	if result.Regions == nil {
		return ocr.NewDocument(blocks)
	}

	lineNo := 0
	for _, region := range *result.Regions {
		if region.Lines == nil {
			continue
		}
		for _, line := range *region.Lines {
			if line.Words == nil {
				continue
			}
			lineID := "line-" + strconv.Itoa(lineNo)
			lineNo++

			var (
				words    []ocr.Block
				children []string
				texts    []string
			)
			for i, word := range *line.Words {
				if word.Text == nil || strings.TrimSpace(*word.Text) == "" {
					continue
				}
				id := lineID + "-word-" + strconv.Itoa(i)
				words = append(words, ocr.Block{ID: id, Kind: ocr.KindWord, Text: *word.Text})
				children = append(children, id)
				texts = append(texts, *word.Text)
			}
			if len(texts) == 0 {
				continue
			}

			blocks = append(blocks, ocr.Block{
				ID:       lineID,
				Kind:     ocr.KindLine,
				Text:     strings.Join(texts, " "),
				Children: children,
			})
			blocks = append(blocks, words...)
		}
	}

	return ocr.NewDocument(blocks)
}
