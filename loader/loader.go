// Package loader materializes Vision documents into the database.
package loader

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"visiondb/database"
	"visiondb/logging"
	"visiondb/types"
)

// Result counts the association rows a document added. Reloading a
// document that is already stored adds nothing.
type Result struct {
	ImageID   types.ImageID
	Labels    int
	Matches   int
	Pages     int
	Entities  int
	Landmarks int
	Locations int
}

// Total returns the number of association rows added
func (r Result) Total() int {
	return r.Labels + r.Matches + r.Pages + r.Entities + r.Landmarks + r.Locations
}

// Loader writes documents, each in its own transaction
type Loader struct {
	db *sql.DB
}

// NewLoader creates a loader on an open database whose schema exists
func NewLoader(db *sql.DB) *Loader {
	return &Loader{db: db}
}

// LoadDocument stores one document. Either everything the document
// references is committed, or nothing is; documents loaded earlier are
// never affected by a failure here.
func (l *Loader) LoadDocument(ctx context.Context, doc *types.Document) (res Result, err error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("begin tx for %s: %w", doc.URL, err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logging.LogError("rollback failed", "url", doc.URL, "error", rbErr)
			}
		}
	}()

	w := &writer{ctx: ctx, tx: tx}
	res, err = w.document(doc)
	if err != nil {
		return Result{}, fmt.Errorf("load %s: %w", doc.URL, err)
	}
	if err = tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("commit %s: %w", doc.URL, err)
	}
	logging.DebugLog("document stored", "url", doc.URL, "image_id", res.ImageID, "rows", res.Total())
	return res, nil
}

type writer struct {
	ctx context.Context
	tx  *sql.Tx
}

func (w *writer) document(doc *types.Document) (Result, error) {
	var res Result

	imageID, err := database.EnsureImage(w.ctx, w.tx, doc.URL)
	if err != nil {
		return res, err
	}
	res.ImageID = imageID
	if err := database.MarkDocument(w.ctx, w.tx, imageID); err != nil {
		return res, err
	}

	for _, l := range doc.Labels {
		if l.ID == "" {
			continue
		}
		labelID, err := database.EnsureLabel(w.ctx, w.tx, l.ID, l.Description)
		if err != nil {
			return res, err
		}
		added, err := database.TagLabel(w.ctx, w.tx, imageID, labelID, l.Score)
		if err != nil {
			return res, err
		}
		res.Labels += count(added)
	}

	n, err := w.matches(imageID, doc.Full, types.MatchFull)
	if err != nil {
		return res, err
	}
	res.Matches += n
	n, err = w.matches(imageID, doc.Partial, types.MatchPartial)
	if err != nil {
		return res, err
	}
	res.Matches += n

	for _, p := range doc.Pages {
		n, err := w.page(imageID, p)
		if err != nil {
			return res, err
		}
		res.Pages += n
	}

	for _, e := range doc.Entities {
		if e.ID == "" {
			continue
		}
		entityID, err := database.EnsureWebEntity(w.ctx, w.tx, e.ID, e.Description)
		if err != nil {
			return res, err
		}
		added, err := database.TagWebEntity(w.ctx, w.tx, imageID, entityID)
		if err != nil {
			return res, err
		}
		res.Entities += count(added)
	}

	for _, lm := range doc.Landmarks {
		if lm.ID == "" {
			continue
		}
		landmarkID, err := database.EnsureLandmark(w.ctx, w.tx, lm.ID, lm.Description)
		if err != nil {
			return res, err
		}
		added, err := database.TagLandmark(w.ctx, w.tx, imageID, landmarkID)
		if err != nil {
			return res, err
		}
		res.Landmarks += count(added)

		for _, loc := range lm.Locations {
			locationID, err := database.EnsureLocation(w.ctx, w.tx, loc)
			if err != nil {
				return res, err
			}
			added, err := database.LocateLandmark(w.ctx, w.tx, landmarkID, locationID)
			if err != nil {
				return res, err
			}
			res.Locations += count(added)
		}
	}

	return res, nil
}

func (w *writer) matches(imageID types.ImageID, urls []string, kind types.MatchType) (int, error) {
	added := 0
	for _, u := range urls {
		if u == "" {
			continue
		}
		otherID, err := database.EnsureImage(w.ctx, w.tx, u)
		if err != nil {
			return added, err
		}
		ok, err := database.LinkMatch(w.ctx, w.tx, imageID, otherID, kind)
		if err != nil {
			return added, err
		}
		added += count(ok)
	}
	return added, nil
}

// page links the document image, and any images the page entry lists, to the page
func (w *writer) page(imageID types.ImageID, p types.PageMatch) (int, error) {
	if p.URL == "" {
		return 0, nil
	}
	pageID, err := database.EnsurePage(w.ctx, w.tx, p.URL)
	if err != nil {
		return 0, err
	}

	images := []types.ImageID{imageID}
	for _, u := range append(append([]string{}, p.Full...), p.Partial...) {
		if u == "" {
			continue
		}
		id, err := database.EnsureImage(w.ctx, w.tx, u)
		if err != nil {
			return 0, err
		}
		images = append(images, id)
	}

	added := 0
	for _, id := range images {
		ok, err := database.LinkPage(w.ctx, w.tx, id, pageID)
		if err != nil {
			return added, err
		}
		added += count(ok)
	}
	return added, nil
}

func count(added bool) int {
	if added {
		return 1
	}
	return 0
}
