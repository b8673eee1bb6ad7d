// Package queries holds the fixed report queries run after a load.
package queries

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"visiondb/logging"
	"visiondb/utils"
)

// Query is one named, read-only report query
type Query struct {
	Title       string
	Description string
	SQL         string
}

// Label and landmarks used by the reports
const (
	LabelOfInterest = "/m/015kr"
	LandmarkSkipA   = "/m/059rby"
	LandmarkSkipB   = "/m/02nd_"
)

const (
	countImagesSQL = `SELECT COUNT(*) FROM image`

	countDocumentsSQL = `SELECT COUNT(*) FROM image WHERE isDocument = 1`

	countEntitiesSQL = `
SELECT
	(SELECT COUNT(*) FROM image),
	(SELECT COUNT(*) FROM label),
	(SELECT COUNT(*) FROM landmark),
	(SELECT COUNT(*) FROM location),
	(SELECT COUNT(*) FROM page),
	(SELECT COUNT(*) FROM webEntity)`

	imagesWithLabelSQL = `
SELECT i.url, itl.score
FROM image i
JOIN image_tagged_label itl ON itl.imageId = i.id
WHERE itl.labelId = '` + LabelOfInterest + `'
ORDER BY itl.score DESC, i.url`

	entitiesWithLabelSQL = `
SELECT we.entityId, we.description, COUNT(*) AS n
FROM image_tagged_label itl
JOIN image_tagged_webEntity itw ON itw.imageId = itl.imageId
JOIN webEntity we ON we.entityId = itw.entityId
WHERE itl.labelId = '` + LabelOfInterest + `'
GROUP BY we.entityId, we.description
ORDER BY n DESC, we.entityId
LIMIT 10`

	otherLandmarksSQL = `
SELECT l.description, i.url
FROM image_contains_landmark icl
JOIN landmark l ON l.id = icl.landmarkId
JOIN image i ON i.id = icl.imageId
WHERE icl.landmarkId NOT IN ('` + LandmarkSkipA + `', '` + LandmarkSkipB + `')
ORDER BY l.description, i.url`

	topLabelsSQL = `
SELECT l.id, l.description, COUNT(*) AS n
FROM image_tagged_label itl
JOIN label l ON l.id = itl.labelId
GROUP BY l.id, l.description
ORDER BY n DESC, l.id
LIMIT 10`

	topPagesSQL = `
SELECT p.url, COUNT(*) AS n
FROM image_in_page iip
JOIN page p ON p.id = iip.pageId
GROUP BY p.id, p.url
ORDER BY n DESC, p.url
LIMIT 10`

	sharedPagesSQL = `
SELECT a.url, b.url, COUNT(*) AS n
FROM image_in_page x
JOIN image_in_page y ON y.pageId = x.pageId AND x.imageId < y.imageId
JOIN image a ON a.id = x.imageId
JOIN image b ON b.id = y.imageId
GROUP BY x.imageId, y.imageId
ORDER BY n DESC, a.url, b.url
LIMIT 10`
)

// Queries is the ordered report list; the position is the query number
var Queries = []Query{
	{Title: "Query 0", Description: "Number of images", SQL: countImagesSQL},
	{Title: "Query 1", Description: "Number of JSON documents", SQL: countDocumentsSQL},
	{Title: "Query 2", Description: "Number of images, labels, landmarks, locations, pages and web entities", SQL: countEntitiesSQL},
	{Title: "Query 3", Description: "Images tagged with label " + LabelOfInterest + " by score", SQL: imagesWithLabelSQL},
	{Title: "Query 4", Description: "Top 10 web entities on images tagged with label " + LabelOfInterest, SQL: entitiesWithLabelSQL},
	{Title: "Query 5", Description: "Images with landmarks other than " + LandmarkSkipA + " and " + LandmarkSkipB, SQL: otherLandmarksSQL},
	{Title: "Query 6", Description: "Top 10 labels by number of images", SQL: topLabelsSQL},
	{Title: "Query 7", Description: "Top 10 pages by number of images", SQL: topPagesSQL},
	{Title: "Query 8", Description: "Top 10 image pairs sharing the most pages", SQL: sharedPagesSQL},
}

// Options controls the printer
type Options struct {
	ShowSQL bool
}

// Select returns the queries with the given numbers, in the order given.
// An empty list selects every query.
func Select(numbers []int) ([]Query, error) {
	if len(numbers) == 0 {
		return Queries, nil
	}
	out := make([]Query, 0, len(numbers))
	for _, n := range numbers {
		if n < 0 || n >= len(Queries) {
			return nil, fmt.Errorf("unknown query %d (valid: 0-%d)", n, len(Queries)-1)
		}
		out = append(out, Queries[n])
	}
	return out, nil
}

// Run executes each query and prints a blank line, the title, optionally the
// SQL text, then every row indented by four spaces with tab separated fields.
// The first failing query stops the run.
func Run(ctx context.Context, db *sql.DB, w io.Writer, qs []Query, opts Options) error {
	for _, q := range qs {
		fmt.Fprintf(w, "\n%s\n", q.Title)
		if opts.ShowSQL {
			fmt.Fprintln(w, indent(strings.TrimSpace(q.SQL)))
		}
		n, err := runOne(ctx, db, w, q)
		if err != nil {
			return fmt.Errorf("%s: %w", q.Title, err)
		}
		logging.DebugLog("query finished", "title", q.Title, "rows", n)
	}
	return nil
}

func runOne(ctx context.Context, db *sql.DB, w io.Writer, q Query) (int, error) {
	rows, err := db.QueryContext(ctx, q.SQL)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return 0, err
	}

	count := 0
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return count, err
		}
		fmt.Fprintf(w, "    %s\n", utils.FormatRow(values))
		count++
	}
	return count, rows.Err()
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "    " + l
	}
	return strings.Join(lines, "\n")
}
