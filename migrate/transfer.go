package migrate

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/toothbrush/wp-migrate/wordpress"
)

type Stage int

const (
	MediaStage Stage = iota
	TaxonomyStage
	CreationStage
)

func (s Stage) String() string {
	switch s {
	case MediaStage:
		return "media transfer"
	case TaxonomyStage:
		return "taxonomy transfer"
	default:
		return "content creation"
	}
}

// StageError names the step of an item transfer that failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error             { return e.Err }
func (e *StageError) Kind() wordpress.ErrorKind { return wordpress.KindStage }

type Options struct {
	SkipImageTransfer bool
}

// Transferrer moves content items from one site to another.
type Transferrer struct {
	Source      *wordpress.API
	Destination *wordpress.API
	ContentType wordpress.ContentType
	Options     Options
}

// TransferItem recreates item on the destination: featured image first, then terms (posts only),
// then the item itself.  It stops at the first failing stage and returns a *StageError.  Earlier
// stages aren't undone, so an uploaded image or created term may stay behind.
func (t *Transferrer) TransferItem(ctx context.Context, item wordpress.ContentItem) (*wordpress.ContentItem, error) {
	logger := zerolog.Ctx(ctx).With().
		Str("type", string(t.ContentType)).
		Int("source_id", item.ID).
		Logger()

	payload := wordpress.CreateContentRequest{
		Title:   item.Title.Text(),
		Content: item.Content.Rendered,
		Status:  item.Status,
	}

	if asset, ok := item.Embedded.FeaturedAsset(); ok && !t.Options.SkipImageTransfer {
		logger.Debug().Str("image", asset.SourceURL).Msg("transferring featured image")
		mediaID, err := TransferMedia(ctx, asset, t.Source, t.Destination)
		if err != nil {
			return nil, &StageError{Stage: MediaStage, Err: err}
		}
		payload.FeaturedMedia = mediaID
	}

	if t.ContentType == wordpress.Posts {
		categories, tags, err := t.resolveTerms(ctx, item.Embedded.AllTerms())
		if err != nil {
			return nil, &StageError{Stage: TaxonomyStage, Err: err}
		}
		if len(categories) > 0 {
			payload.Categories = categories
		}
		if len(tags) > 0 {
			payload.Tags = tags
		}
	}

	if t.ContentType == wordpress.Pages && item.Parent != 0 {
		// TODO: map item.Parent to the destination ID once parents are transferred before children.
		logger.Debug().Int("parent", item.Parent).Msg("page hierarchy not transferred")
	}

	created, err := t.Destination.CreateContent(ctx, t.ContentType, payload)
	if err != nil {
		return nil, &StageError{Stage: CreationStage, Err: err}
	}

	logger.Info().Int("destination_id", created.ID).Msg("transferred")
	return created, nil
}

func (t *Transferrer) resolveTerms(ctx context.Context, terms []wordpress.TaxonomyTerm) ([]int, []int, error) {
	categories := []int{}
	tags := []int{}

	for _, term := range terms {
		if term.Kind != wordpress.Category && term.Kind != wordpress.Tag {
			zerolog.Ctx(ctx).Debug().Str("taxonomy", string(term.Kind)).Str("slug", term.Slug).Msg("skipping custom taxonomy")
			continue
		}

		id, err := t.Destination.ResolveTerm(ctx, term)
		if err != nil {
			return nil, nil, err
		}

		switch term.Kind {
		case wordpress.Category:
			categories = append(categories, id)
		case wordpress.Tag:
			tags = append(tags, id)
		}
	}

	return categories, tags, nil
}
