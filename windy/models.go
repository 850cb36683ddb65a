package windy

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Webcam is one directory-listed camera eligible for rain matching.
type Webcam struct {
	ID           string  `json:"id"`
	Title        string  `json:"title,omitempty"`
	ImageURL     string  `json:"image_url"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	LocationName string  `json:"location_name,omitempty"`
	CountryCode  string  `json:"country_code,omitempty"`
	LastUpdated  string  `json:"last_updated,omitempty"`
}

// Valid reports whether the webcam satisfies the pool invariant: non-empty
// id, non-empty image URL, finite coordinates.
func (w Webcam) Valid() bool {
	return w.ID != "" &&
		w.ImageURL != "" &&
		isFinite(w.Latitude) &&
		isFinite(w.Longitude)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// The upstream list shape. Newer deployments wrap the payload in a result
// object, older ones return it at the top level; both are accepted.
type listResponse struct {
	Total   *float64    `json:"total"`
	Webcams []rawWebcam `json:"webcams"`
	Result  *struct {
		Total   *float64    `json:"total"`
		Webcams []rawWebcam `json:"webcams"`
	} `json:"result"`
}

func (r listResponse) webcams() []rawWebcam {
	if r.Result != nil && r.Result.Webcams != nil {
		return r.Result.Webcams
	}
	return r.Webcams
}

func (r listResponse) total() int {
	total := r.Total
	if r.Result != nil && r.Result.Total != nil {
		total = r.Result.Total
	}
	if total == nil || !isFinite(*total) {
		return 0
	}
	return int(*total)
}

// rawWebcam mirrors one upstream camera record. Identifier and coordinates
// arrive as either numbers or strings depending on deployment, so they are
// held raw and coerced afterwards.
type rawWebcam struct {
	WebcamID      json.RawMessage `json:"webcamId"`
	LegacyID      json.RawMessage `json:"id"`
	Title         string          `json:"title"`
	Images        *rawImages      `json:"images"`
	Image         *rawImages      `json:"image"`
	Location      *rawLocation    `json:"location"`
	LastUpdatedOn string          `json:"lastUpdatedOn"`
	LastUpdatedAt string          `json:"lastUpdatedAt"`
	LastUpdated   string          `json:"last_updated"`
}

type rawImages struct {
	Current  *rawImageSet `json:"current"`
	Daylight *rawImageSet `json:"daylight"`
	rawImageSet
}

type rawImageSet struct {
	Preview   string `json:"preview"`
	Icon      string `json:"icon"`
	Thumbnail string `json:"thumbnail"`
}

type rawLocation struct {
	Latitude    json.RawMessage `json:"latitude"`
	Longitude   json.RawMessage `json:"longitude"`
	City        string          `json:"city"`
	Region      string          `json:"region"`
	CountryCode string          `json:"country_code"`
}

// imageURL picks the best image source: current set, else daylight set,
// else the object's own fields; within a set preview, else icon, else
// thumbnail.
func (cam rawWebcam) imageURL() string {
	images := cam.Images
	if images == nil {
		images = cam.Image
	}
	if images == nil {
		return ""
	}

	set := images.rawImageSet
	switch {
	case images.Current != nil:
		set = *images.Current
	case images.Daylight != nil:
		set = *images.Daylight
	}

	switch {
	case set.Preview != "":
		return set.Preview
	case set.Icon != "":
		return set.Icon
	default:
		return set.Thumbnail
	}
}

func (cam rawWebcam) lastUpdated() string {
	switch {
	case cam.LastUpdatedOn != "":
		return cam.LastUpdatedOn
	case cam.LastUpdatedAt != "":
		return cam.LastUpdatedAt
	default:
		return cam.LastUpdated
	}
}

// toWebcam converts a raw record into the internal shape. The second return
// is false when the record fails validation and must be dropped.
func (cam rawWebcam) toWebcam() (Webcam, bool) {
	id := rawString(cam.WebcamID)
	if id == "" {
		id = rawString(cam.LegacyID)
	}

	w := Webcam{
		ID:          id,
		Title:       cam.Title,
		ImageURL:    cam.imageURL(),
		Latitude:    math.NaN(),
		Longitude:   math.NaN(),
		LastUpdated: cam.lastUpdated(),
	}
	if loc := cam.Location; loc != nil {
		w.Latitude = rawFloat(loc.Latitude)
		w.Longitude = rawFloat(loc.Longitude)
		w.LocationName = loc.City
		if w.LocationName == "" {
			w.LocationName = loc.Region
		}
		w.CountryCode = loc.CountryCode
	}
	return w, w.Valid()
}

// rawString renders a raw JSON scalar as a string, stripping quotes.
func rawString(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	return s
}

// rawFloat parses a raw JSON scalar as a float. Records with unparseable
// coordinates (including string "NaN") come back NaN and fail validation.
func rawFloat(raw json.RawMessage) float64 {
	s := rawString(raw)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
