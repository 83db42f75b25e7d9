package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"github.com/nguyentantai21042004/lecture-flow/internal/gcp"
	"github.com/nguyentantai21042004/lecture-flow/internal/logger"
	"github.com/nguyentantai21042004/lecture-flow/internal/stageerr"
)

type visionEngine struct {
	client  *vision.ImageAnnotatorClient
	logger  logger.Logger
	backoff gcp.Backoff
}

func newVision(log logger.Logger) (Engine, error) {
	c, err := vision.NewImageAnnotatorClient(context.Background(), gcp.ClientOptionsFromEnv()...)
	if err != nil {
		return nil, stageerr.NewFatal(stage, fmt.Errorf("vision client: %w", err))
	}
	return &visionEngine{client: c, logger: log, backoff: gcp.Backoff{MaxRetries: 3}}, nil
}

func (e *visionEngine) Recognize(ctx context.Context, imagePath string) ([]Detection, error) {
	img, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, stageerr.NewRecoverable(stage, fmt.Errorf("read image: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	req := &visionpb.BatchAnnotateImagesRequest{Requests: []*visionpb.AnnotateImageRequest{{
		Image:    &visionpb.Image{Content: img},
		Features: []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
	}}}

	resp, err := gcp.Retry(ctx, e.backoff, func() (*visionpb.BatchAnnotateImagesResponse, error) {
		return e.client.BatchAnnotateImages(ctx, req)
	})
	if err != nil {
		return nil, stageerr.NewRecoverable(stage, fmt.Errorf("vision BatchAnnotateImages: %w", err))
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return nil, nil
	}

	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return nil, stageerr.NewRecoverable(stage, fmt.Errorf("vision annotate error: %s", r0.Error.Message))
	}
	return paragraphs(r0.FullTextAnnotation), nil
}

func (e *visionEngine) Close() error {
	return e.client.Close()
}

// paragraphs flattens a text annotation into one detection per paragraph.
func paragraphs(fta *visionpb.TextAnnotation) []Detection {
	if fta == nil {
		return nil
	}

	var out []Detection
	for _, page := range fta.Pages {
		for _, block := range page.GetBlocks() {
			for _, par := range block.GetParagraphs() {
				words := make([]string, 0, len(par.GetWords()))
				for _, w := range par.GetWords() {
					var sb strings.Builder
					for _, s := range w.GetSymbols() {
						sb.WriteString(s.GetText())
					}
					if sb.Len() > 0 {
						words = append(words, sb.String())
					}
				}
				if len(words) == 0 {
					continue
				}
				out = append(out, Detection{
					Box:        box(par.GetBoundingBox()),
					Text:       strings.Join(words, " "),
					Confidence: float64(par.GetConfidence()),
				})
			}
		}
	}
	return out
}

func box(bp *visionpb.BoundingPoly) [4][2]int {
	var b [4][2]int
	for i, v := range bp.GetVertices() {
		if i == 4 {
			break
		}
		b[i] = [2]int{int(v.GetX()), int(v.GetY())}
	}
	return b
}
