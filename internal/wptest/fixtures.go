package wptest

import (
	"fmt"

	"github.com/toothbrush/wp-migrate/wordpress"
)

// Post builds a published post with the given ID and a title derived from it.
func Post(id int) wordpress.ContentItem {
	return wordpress.ContentItem{
		ID:      id,
		Title:   wordpress.Rendered{Rendered: fmt.Sprintf("Post %d", id)},
		Content: wordpress.Rendered{Rendered: fmt.Sprintf("<p>Body of post %d</p>", id)},
		Status:  wordpress.StatusPublish,
		Author:  1,
	}
}

// Posts builds count posts with IDs 1..count.
func Posts(count int) []wordpress.ContentItem {
	items := make([]wordpress.ContentItem, 0, count)
	for i := 1; i <= count; i++ {
		items = append(items, Post(i))
	}
	return items
}

// WithFeaturedImage embeds a featured image pointing at sourceURL.
func WithFeaturedImage(item wordpress.ContentItem, mediaID int, sourceURL, mimeType string) wordpress.ContentItem {
	item.FeaturedMedia = mediaID
	item.Embedded.FeaturedMedia = []wordpress.Media{{
		ID:        mediaID,
		SourceURL: sourceURL,
		MimeType:  mimeType,
	}}
	return item
}

// WithTerms embeds terms, grouped per taxonomy the way WordPress does.
func WithTerms(item wordpress.ContentItem, terms ...wordpress.Term) wordpress.ContentItem {
	var categories, tags []wordpress.Term
	for _, t := range terms {
		if t.Taxonomy == string(wordpress.Category) {
			categories = append(categories, t)
			item.Categories = append(item.Categories, t.ID)
		} else {
			tags = append(tags, t)
			item.Tags = append(item.Tags, t.ID)
		}
	}
	item.Embedded.Terms = [][]wordpress.Term{categories, tags}
	return item
}
