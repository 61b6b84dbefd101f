package service

import (
	"context"
	"encoding/base64"

	"github.com/disintegration/imaging"
	units "github.com/labstack/gommon/bytes"
	logger "github.com/labstack/gommon/log"

	"github.com/ellypaws/video2world/pkg/api/entities"
	"github.com/ellypaws/video2world/pkg/db"
	"github.com/ellypaws/video2world/pkg/storage"
)

// ValidationError is returned for requests that can never succeed as sent.
// Detail is shown to the caller verbatim.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return e.Detail
}

var (
	ErrPromptRequired = &ValidationError{Detail: "Field required: prompt"}
	ErrImageRequired = &ValidationError{Detail: "Image data required"}
	ErrImageEncoding = &ValidationError{Detail: "Image must be base64 encoded"}
)

// Ledger records finished generations.
type Ledger interface {
	InsertGeneration(ctx context.Context, g db.Generation) error
}

var log = logger.New("service")

func SetLogLevel(lvl logger.Lvl) {
	log.SetLevel(lvl)
}

// Generator turns requests into placeholder artifacts.
// The decoded image is staged and then discarded; the artifact never reflects the input.
type Generator struct {
	Store  *storage.Store
	Ledger Ledger
}

func NewGenerator(store *storage.Store, ledger Ledger) *Generator {
	return &Generator{Store: store, Ledger: ledger}
}

// Generate validates req, creates an empty artifact and returns its identifier.
// Validation failures never create a file.
func (g *Generator) Generate(ctx context.Context, req entities.GenerateRequest) (string, error) {
	if req.Prompt == nil {
		return "", ErrPromptRequired
	}
	if req.Image == "" {
		return "", ErrImageRequired
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		return "", ErrImageEncoding
	}

	staged, cleanup, err := g.Store.Stage(image, ".png")
	if err != nil {
		return "", err
	}
	defer cleanup()

	probe(staged)

	id, err := g.Store.CreatePlaceholder()
	if err != nil {
		return "", err
	}

	log.Infof("generated %s from %s input", id, units.Format(int64(len(image))))

	if g.Ledger != nil {
		err := g.Ledger.InsertGeneration(ctx, db.Generation{
			ID:             id,
			Prompt:         req.PromptText(),
			NegativePrompt: req.NegativePrompt,
			Guidance:       req.GuidanceOrDefault(),
			InputBytes:     len(image),
		})
		if err != nil {
			log.Warnf("could not record generation %s: %v", id, err)
		}
	}

	return id, nil
}

// probe logs the staged input's dimensions when it decodes as an image.
func probe(path string) {
	if log.Level() > logger.DEBUG {
		return
	}
	img, err := imaging.Open(path)
	if err != nil {
		log.Debugf("staged input %s is not a decodable image: %v", path, err)
		return
	}
	bounds := img.Bounds()
	log.Debugf("staged input %s is %dx%d", path, bounds.Dx(), bounds.Dy())
}
