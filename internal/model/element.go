package model

// ElementType discriminates the drawable element variants.
type ElementType string

const (
	ElementPen       ElementType = "pen"
	ElementRect      ElementType = "rect"
	ElementEllipse   ElementType = "ellipse"
	ElementLine      ElementType = "line"
	ElementArrow     ElementType = "arrow"
	ElementConnector ElementType = "connector"
	ElementText      ElementType = "text"

	// Diagram icons
	ElementComponent ElementType = "component"
	ElementDatabase  ElementType = "database"
	ElementUser      ElementType = "user"
	ElementService   ElementType = "service"
	ElementCloud     ElementType = "cloud"
)

// Valid reports whether t is one of the known element variants.
func (t ElementType) Valid() bool {
	switch t {
	case ElementPen, ElementRect, ElementEllipse, ElementLine, ElementArrow,
		ElementConnector, ElementText,
		ElementComponent, ElementDatabase, ElementUser, ElementService, ElementCloud:
		return true
	}
	return false
}

// IsIcon reports whether t is one of the diagram icon variants.
func (t ElementType) IsIcon() bool {
	switch t {
	case ElementComponent, ElementDatabase, ElementUser, ElementService, ElementCloud:
		return true
	}
	return false
}

// Point is a single coordinate of a pen stroke.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Element is one drawable object on a board. The Type tag decides which of
// the variant fields are meaningful: Points for pen strokes, Text/FontSize/
// FontFamily/Align for text, Label for the diagram icons. Width and Height
// stay signed exactly as the client drew them; renderers normalize via
// NormalizedBounds, storage never does.
type Element struct {
	ID          string      `json:"id"`
	Type        ElementType `json:"type"`
	X           float64     `json:"x"`
	Y           float64     `json:"y"`
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
	Rotation    float64     `json:"rotation,omitempty"`
	StrokeColor string      `json:"strokeColor,omitempty"`
	FillColor   string      `json:"fillColor,omitempty"`
	StrokeWidth float64     `json:"strokeWidth,omitempty"`
	CreatedAt   int64       `json:"createdAt"` // epoch millis, server-stamped
	UpdatedAt   int64       `json:"updatedAt"` // epoch millis, server-stamped
	CreatedBy   string      `json:"createdBy"`

	// pen
	Points []Point `json:"points,omitempty"`

	// text
	Text       string  `json:"text,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`
	Align      string  `json:"align,omitempty"`

	// icons
	Label string `json:"label,omitempty"`
}

// NormalizedBounds returns the element's bounding box with non-negative
// width/height. A drag in the negative direction stores negative extents;
// consumers that need a top-left origin use this.
func (e *Element) NormalizedBounds() (x, y, w, h float64) {
	x, y, w, h = e.X, e.Y, e.Width, e.Height
	if w < 0 {
		x += w
		w = -w
	}
	if h < 0 {
		y += h
		h = -h
	}
	return x, y, w, h
}

// Clone returns a deep copy. History entries and snapshots must not alias
// the live element map, otherwise a later in-place edit would rewrite the
// captured prior value.
func (e *Element) Clone() Element {
	c := *e
	if e.Points != nil {
		c.Points = make([]Point, len(e.Points))
		copy(c.Points, e.Points)
	}
	return c
}
