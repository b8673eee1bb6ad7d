package database

import (
	"context"
	"fmt"

	"visiondb/types"
)

// Descriptors for the entity tables of the schema
var (
	ImageTable     = MustTable[types.ImageID]("image", "id", []string{"url"})
	PageTable      = MustTable[types.PageID]("page", "id", []string{"url"})
	LocationTable  = MustTable[types.LocationID]("location", "id", []string{"latitude", "longitude"})
	LabelTable     = MustTable[types.LabelID]("label", "id", []string{"id"}, "description")
	LandmarkTable  = MustTable[types.LandmarkID]("landmark", "id", []string{"id"}, "description")
	WebEntityTable = MustTable[types.EntityID]("webEntity", "entityId", []string{"entityId"}, "description")
)

// EnsureImage returns the id of the image with url, creating it if needed
func EnsureImage(ctx context.Context, q Querier, url string) (types.ImageID, error) {
	return GetOrCreate(ctx, q, ImageTable, []any{url})
}

// MarkDocument flags an image as described by its own JSON document.
// Repeating it is harmless.
func MarkDocument(ctx context.Context, q Querier, id types.ImageID) error {
	if _, err := q.ExecContext(ctx, `UPDATE image SET isDocument = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark image %d as document: %w", id, err)
	}
	return nil
}

// EnsurePage returns the id of the page with url, creating it if needed
func EnsurePage(ctx context.Context, q Querier, url string) (types.PageID, error) {
	return GetOrCreate(ctx, q, PageTable, []any{url})
}

// EnsureLocation returns the id of the location at lat/lon, creating it if needed
func EnsureLocation(ctx context.Context, q Querier, p types.LatLng) (types.LocationID, error) {
	return GetOrCreate(ctx, q, LocationTable, []any{p.Latitude, p.Longitude})
}

// EnsureLabel makes sure the label exists. The description is only stored
// when the label is first seen.
func EnsureLabel(ctx context.Context, q Querier, id types.LabelID, description string) (types.LabelID, error) {
	return GetOrCreate(ctx, q, LabelTable, []any{id}, nullable(description))
}

// EnsureLandmark makes sure the landmark exists
func EnsureLandmark(ctx context.Context, q Querier, id types.LandmarkID, description string) (types.LandmarkID, error) {
	return GetOrCreate(ctx, q, LandmarkTable, []any{id}, nullable(description))
}

// EnsureWebEntity makes sure the web entity exists
func EnsureWebEntity(ctx context.Context, q Querier, id types.EntityID, description string) (types.EntityID, error) {
	return GetOrCreate(ctx, q, WebEntityTable, []any{id}, nullable(description))
}

// TagLabel records that an image carries a label with the given confidence.
// It reports whether a new row was written.
func TagLabel(ctx context.Context, q Querier, image types.ImageID, label types.LabelID, score *float64) (bool, error) {
	return insertIgnore(ctx, q, "image_tagged_label",
		`INSERT OR IGNORE INTO image_tagged_label (imageId, labelId, score) VALUES (?, ?, ?)`,
		image, label, score)
}

// LinkPage records that an image appears on a page
func LinkPage(ctx context.Context, q Querier, image types.ImageID, page types.PageID) (bool, error) {
	return insertIgnore(ctx, q, "image_in_page",
		`INSERT OR IGNORE INTO image_in_page (imageId, pageId) VALUES (?, ?)`,
		image, page)
}

// LinkMatch records that two images match. The pair is unordered: it is
// stored with the smaller id first, so (a, b) and (b, a) are one row, and the
// first match type recorded for a pair is kept. An image never matches itself.
func LinkMatch(ctx context.Context, q Querier, a, b types.ImageID, kind types.MatchType) (bool, error) {
	if a == b {
		return false, nil
	}
	if kind != types.MatchFull && kind != types.MatchPartial {
		return false, fmt.Errorf("unknown match type %q", kind)
	}
	if b < a {
		a, b = b, a
	}
	return insertIgnore(ctx, q, "image_matches_image",
		`INSERT OR IGNORE INTO image_matches_image (imageId, matchedImageId, matchType) VALUES (?, ?, ?)`,
		a, b, string(kind))
}

// TagLandmark records that an image contains a landmark
func TagLandmark(ctx context.Context, q Querier, image types.ImageID, landmark types.LandmarkID) (bool, error) {
	return insertIgnore(ctx, q, "image_contains_landmark",
		`INSERT OR IGNORE INTO image_contains_landmark (imageId, landmarkId) VALUES (?, ?)`,
		image, landmark)
}

// TagWebEntity records that an image is tagged with a web entity
func TagWebEntity(ctx context.Context, q Querier, image types.ImageID, entity types.EntityID) (bool, error) {
	return insertIgnore(ctx, q, "image_tagged_webEntity",
		`INSERT OR IGNORE INTO image_tagged_webEntity (imageId, entityId) VALUES (?, ?)`,
		image, entity)
}

// LocateLandmark records that a landmark is located at a location
func LocateLandmark(ctx context.Context, q Querier, landmark types.LandmarkID, location types.LocationID) (bool, error) {
	return insertIgnore(ctx, q, "landmark_located_at_location",
		`INSERT OR IGNORE INTO landmark_located_at_location (landmarkId, locationId) VALUES (?, ?)`,
		landmark, location)
}

func insertIgnore(ctx context.Context, q Querier, table, stmt string, args ...any) (bool, error) {
	res, err := q.ExecContext(ctx, stmt, args...)
	if err != nil {
		return false, fmt.Errorf("insert into %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert into %s: %w", table, err)
	}
	return n > 0, nil
}

// nullable stores empty descriptions as NULL
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
