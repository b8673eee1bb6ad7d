package types

// ImageID is the surrogate key of an image row
type ImageID int64

// PageID is the surrogate key of a page row
type PageID int64

// LocationID is the surrogate key of a location row
type LocationID int64

// LabelID is the external vocabulary id of a label, e.g. "/m/015kr"
type LabelID string

// LandmarkID is the external id ("mid") of a landmark
type LandmarkID string

// EntityID is the external id of a web entity
type EntityID string

// MatchType tells whether two images matched fully or partially
type MatchType string

const (
	MatchFull    MatchType = "full"
	MatchPartial MatchType = "partial"
)

// Document holds the parts of one Vision annotation document the loader stores
type Document struct {
	URL       string            `json:"url"`
	Labels    []LabelAnnotation `json:"labelAnnotations,omitempty"`
	Full      []string          `json:"fullMatchingImages,omitempty"`
	Partial   []string          `json:"partialMatchingImages,omitempty"`
	Pages     []PageMatch       `json:"pagesWithMatchingImages,omitempty"`
	Entities  []WebEntity       `json:"webEntities,omitempty"`
	Landmarks []Landmark        `json:"landmarkAnnotations,omitempty"`

	// Skipped lists sections that were present but could not be read
	Skipped []string `json:"-"`
}

// LabelAnnotation is one entry of labelAnnotations
type LabelAnnotation struct {
	ID          LabelID  `json:"id"`
	Description string   `json:"description"`
	Score       *float64 `json:"score,omitempty"`
}

// PageMatch is one entry of webDetection.pagesWithMatchingImages
type PageMatch struct {
	URL     string   `json:"url"`
	Full    []string `json:"fullMatchingImages,omitempty"`
	Partial []string `json:"partialMatchingImages,omitempty"`
}

// WebEntity is one entry of webDetection.webEntities
type WebEntity struct {
	ID          EntityID `json:"entityId"`
	Description string   `json:"description"`
	Score       *float64 `json:"score,omitempty"`
}

// Landmark is one entry of landmarkAnnotations
type Landmark struct {
	ID          LandmarkID `json:"mid"`
	Description string     `json:"description"`
	Locations   []LatLng   `json:"locations,omitempty"`
}

// LatLng is a landmark location
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
