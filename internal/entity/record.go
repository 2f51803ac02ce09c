package entity

// EmbeddedPair is an (image, destination) association recovered from the
// structured data blob embedded in the page.
type EmbeddedPair struct {
	ImageLocatorBasename string `json:"img"`
	Destination          string `json:"link"`
}

// RecordSource names the path that resolved a record's destination.
type RecordSource string

const (
	SourceNewSurface    RecordSource = "new_surface"
	SourceSameSurface   RecordSource = "same_surface"
	SourceEmbeddedExact RecordSource = "embedded_exact"
	SourceEmbeddedFuzzy RecordSource = "embedded_fuzzy"
	SourceDOMAnchor     RecordSource = "dom_anchor"
	SourceUnresolved    RecordSource = "unresolved"
)

// BannerRecord is the output unit, one per unique discovered slide.
type BannerRecord struct {
	Title        string       `json:"title"`
	Destination  string       `json:"destination"`
	ImageLocator string       `json:"image_locator"`
	Source       RecordSource `json:"source"`
}
