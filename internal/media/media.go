// Package media attaches video and image references to answers and resolves
// media identifiers to playable URLs through a CDN collaborator.
package media

import (
	"context"
	"log/slog"

	"github.com/dojosearch/dojosearch/internal/models"
)

// Resolver turns a media identifier into a playable or viewable URL,
// possibly time-limited (signed).
type Resolver interface {
	Resolve(ctx context.Context, id string, kind models.MediaKind) (models.MediaRef, error)
}

// Attachments is the media enrichment of one result.
type Attachments struct {
	Video  *models.MediaRef
	Images []models.MediaRef
}

// Attach derives attachments from the retrieved document set: image
// references in document order and at most one video (the best-scored
// document carrying one). Documents with missing or malformed media
// metadata are skipped; individual resolve failures skip that asset.
//
// The returned error is non-nil only when every referenced asset failed to
// resolve, so the caller can mark the result degraded.
func Attach(ctx context.Context, resolver Resolver, docs []models.RetrievedDocument) (Attachments, error) {
	var out Attachments

	referenced := 0
	var lastErr error

	for _, doc := range docs {
		if doc.MediaID == "" {
			continue
		}
		switch doc.MediaKind {
		case models.MediaVideo, models.MediaImage:
		default:
			// Unknown media kind, skip silently.
			continue
		}

		referenced++
		ref, err := resolver.Resolve(ctx, doc.MediaID, doc.MediaKind)
		if err != nil {
			slog.Warn("media resolution failed", "media_id", doc.MediaID, "kind", doc.MediaKind, "error", err)
			lastErr = err
			continue
		}

		if ref.Kind == models.MediaVideo {
			if out.Video == nil {
				out.Video = &ref
			}
			continue
		}
		out.Images = append(out.Images, ref)
	}

	if referenced > 0 && out.Video == nil && len(out.Images) == 0 && lastErr != nil {
		return out, lastErr
	}
	return out, nil
}
