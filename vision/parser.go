// Package vision reads Cloud Vision annotation documents.
//
// The response format is not guaranteed to carry every section, so each
// section is read on its own: a missing section is simply empty, and a
// section with an unexpected shape is empty too but its name is recorded in
// Document.Skipped. Only a document without a usable "url" is rejected.
package vision

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/antonholmquist/jason"

	"visiondb/types"
)

// ErrInvalidDocument indicates the input is not a JSON object with a url
var ErrInvalidDocument = errors.New("invalid vision document")

// Section names as they appear in Document.Skipped
const (
	SectionLabels    = "labelAnnotations"
	SectionFull      = "webDetection.fullMatchingImages"
	SectionPartial   = "webDetection.partialMatchingImages"
	SectionPages     = "webDetection.pagesWithMatchingImages"
	SectionEntities  = "webDetection.webEntities"
	SectionLandmarks = "landmarkAnnotations"
	SectionLocations = "landmarkAnnotations.locations"
)

// Parse reads one document from r
func Parse(r io.Reader) (*types.Document, error) {
	root, err := jason.NewObjectFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return fromObject(root)
}

// ParseBytes reads one document from data
func ParseBytes(data []byte) (*types.Document, error) {
	root, err := jason.NewObjectFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return fromObject(root)
}

func fromObject(root *jason.Object) (*types.Document, error) {
	url, err := root.GetString("url")
	if err != nil {
		return nil, fmt.Errorf("%w: url: %w", ErrInvalidDocument, err)
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("%w: empty url", ErrInvalidDocument)
	}

	doc := &types.Document{URL: url}
	p := &sectionReader{doc: doc}

	for _, o := range p.objects(root, SectionLabels, "labelAnnotations") {
		id, _ := o.GetString("id")
		if id == "" {
			continue
		}
		desc, _ := o.GetString("description")
		doc.Labels = append(doc.Labels, types.LabelAnnotation{
			ID:          types.LabelID(id),
			Description: desc,
			Score:       optionalFloat(o, "score"),
		})
	}

	doc.Full = p.urls(root, SectionFull, "webDetection", "fullMatchingImages")
	doc.Partial = p.urls(root, SectionPartial, "webDetection", "partialMatchingImages")

	for _, o := range p.objects(root, SectionPages, "webDetection", "pagesWithMatchingImages") {
		u, _ := o.GetString("url")
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		doc.Pages = append(doc.Pages, types.PageMatch{
			URL:     u,
			Full:    p.urls(o, SectionPages, "fullMatchingImages"),
			Partial: p.urls(o, SectionPages, "partialMatchingImages"),
		})
	}

	for _, o := range p.objects(root, SectionEntities, "webDetection", "webEntities") {
		id, _ := o.GetString("entityId")
		if id == "" {
			continue
		}
		desc, _ := o.GetString("description")
		doc.Entities = append(doc.Entities, types.WebEntity{
			ID:          types.EntityID(id),
			Description: desc,
			Score:       optionalFloat(o, "score"),
		})
	}

	for _, o := range p.objects(root, SectionLandmarks, "landmarkAnnotations") {
		mid, _ := o.GetString("mid")
		if mid == "" {
			continue
		}
		desc, _ := o.GetString("description")
		lm := types.Landmark{ID: types.LandmarkID(mid), Description: desc}
		for _, loc := range p.objects(o, SectionLocations, "locations") {
			lat, errLat := loc.GetFloat64("latLng", "latitude")
			lon, errLon := loc.GetFloat64("latLng", "longitude")
			if errLat != nil || errLon != nil {
				p.skip(SectionLocations)
				continue
			}
			lm.Locations = append(lm.Locations, types.LatLng{Latitude: lat, Longitude: lon})
		}
		doc.Landmarks = append(doc.Landmarks, lm)
	}

	return doc, nil
}

type sectionReader struct {
	doc *types.Document
}

func (p *sectionReader) skip(section string) {
	for _, s := range p.doc.Skipped {
		if s == section {
			return
		}
	}
	p.doc.Skipped = append(p.doc.Skipped, section)
}

// objects returns the array of objects at path. Non-object elements are
// dropped and the section is marked as skipped.
func (p *sectionReader) objects(obj *jason.Object, section string, path ...string) []*jason.Object {
	values := p.array(obj, section, path...)
	out := make([]*jason.Object, 0, len(values))
	for _, v := range values {
		o, err := v.Object()
		if err != nil {
			p.skip(section)
			continue
		}
		out = append(out, o)
	}
	return out
}

// urls returns the trimmed "url" field of every object in the array at path
func (p *sectionReader) urls(obj *jason.Object, section string, path ...string) []string {
	var out []string
	for _, o := range p.objects(obj, section, path...) {
		u, err := o.GetString("url")
		u = strings.TrimSpace(u)
		if err != nil || u == "" {
			continue
		}
		out = append(out, u)
	}
	return out
}

func (p *sectionReader) array(obj *jason.Object, section string, path ...string) []*jason.Value {
	v, err := obj.GetValue(path...)
	if err != nil {
		if present(obj, path...) {
			p.skip(section)
		}
		return nil
	}
	if v.Null() == nil {
		return nil
	}
	arr, err := v.Array()
	if err != nil {
		p.skip(section)
		return nil
	}
	return arr
}

// present reports whether the first key of path exists, and every key after
// it under a parent that is an object. A non-object parent counts as present
// so that the caller reports the section as malformed.
func present(obj *jason.Object, path ...string) bool {
	cur := obj
	for i, key := range path {
		v, ok := cur.Map()[key]
		if !ok {
			return false
		}
		if i == len(path)-1 {
			return true
		}
		next, err := v.Object()
		if err != nil {
			return v.Null() != nil
		}
		cur = next
	}
	return false
}

func optionalFloat(o *jason.Object, key string) *float64 {
	f, err := o.GetFloat64(key)
	if err != nil {
		return nil
	}
	return &f
}
