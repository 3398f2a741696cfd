package models

// ViewportProfile is a named device size used to force a responsive layout
type ViewportProfile struct {
	Name   string `json:"name" bson:"name"`
	Width  int    `json:"width" bson:"width"`
	Height int    `json:"height" bson:"height"`
}

var (
	Mobile  = ViewportProfile{Name: "mobile", Width: 375, Height: 667}
	Tablet  = ViewportProfile{Name: "tablet", Width: 768, Height: 1024}
	Desktop = ViewportProfile{Name: "desktop", Width: 1440, Height: 900}
)

// Viewports is the fixed profile order used by the responsive pass.
var Viewports = []ViewportProfile{Mobile, Tablet, Desktop}

// ViewportByName looks up one of the canonical profiles.
func ViewportByName(name string) (ViewportProfile, bool) {
	for _, v := range Viewports {
		if v.Name == name {
			return v, true
		}
	}
	return ViewportProfile{}, false
}
