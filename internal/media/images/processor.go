package images

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/listenupapp/recipe-server/internal/id"
)

// Stored describes an image written by Processor.
type Stored struct {
	Name     string
	Format   string
	Width    int
	Height   int
	BlurHash string
}

// Processor validates uploads and writes them to Storage under fresh names.
type Processor struct {
	storage *Storage
	logger  *slog.Logger
	prefix  string
}

// NewProcessor creates a Processor whose file names start with prefix.
func NewProcessor(storage *Storage, prefix string, logger *slog.Logger) *Processor {
	return &Processor{storage: storage, prefix: prefix, logger: logger}
}

// Storage returns the underlying storage.
func (p *Processor) Storage() *Storage {
	return p.storage
}

// Process decodes data, stores it and computes its BlurHash. A BlurHash
// failure is logged and leaves Stored.BlurHash empty.
func (p *Processor) Process(ctx context.Context, data []byte) (*Stored, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name, err := id.FileName(p.prefix, img.Ext())
	if err != nil {
		return nil, fmt.Errorf("image name: %w", err)
	}
	if err := p.storage.Save(name, data); err != nil {
		return nil, err
	}

	hash, err := img.BlurHash()
	if err != nil {
		p.logger.Warn("blurhash failed", "name", name, "error", err)
		hash = ""
	}

	p.logger.Debug("image stored",
		"name", name,
		"format", img.Format,
		"width", img.Width,
		"height", img.Height,
		"size", len(data),
	)

	return &Stored{
		Name:     name,
		Format:   img.Format,
		Width:    img.Width,
		Height:   img.Height,
		BlurHash: hash,
	}, nil
}
