package entity

// SlideSignature identifies a slide as it is observable at read time.
// ImageLocator is the normalized (absolute, query-stripped, percent-decoded)
// image address; Title is best-effort and may be empty.
type SlideSignature struct {
	Title        string `json:"title"`
	ImageLocator string `json:"image_locator"`
}

// Empty reports whether the signature could not be read.
func (s SlideSignature) Empty() bool {
	return s.ImageLocator == ""
}

// SameSlide reports whether both signatures refer to the same underlying slide.
func (s SlideSignature) SameSlide(other SlideSignature) bool {
	return s.ImageLocator != "" && s.ImageLocator == other.ImageLocator
}

// DiscoveredSlide is a unique slide recorded during discovery.
// Order is discovery order, not DOM order.
type DiscoveredSlide struct {
	Order     int            `json:"order"`
	Signature SlideSignature `json:"signature"`
}

// PresentedSlide is whatever the carousel presents right now, together with
// the DOM handle used to activate it.
type PresentedSlide struct {
	Signature SlideSignature
	Handle    int
}

// SlideNode is a raw snapshot of one slide element in the live document.
type SlideNode struct {
	Index   int      `json:"index"`
	Classes []string `json:"classes"`
	Title   string   `json:"title"`
	Src     string   `json:"src"`
	Srcset  string   `json:"srcset"`
	Href    string   `json:"href"`
	Visible bool     `json:"visible"`
}

// HasClass reports whether the node carries the given class.
func (n SlideNode) HasClass(class string) bool {
	for _, c := range n.Classes {
		if c == class {
			return true
		}
	}
	return false
}
