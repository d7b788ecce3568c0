package models

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// PhotoCategory identifies the physical subject of a photo slot.
type PhotoCategory string

const (
	CategoryFront        PhotoCategory = "front"
	CategoryBack         PhotoCategory = "back"
	CategoryLeft         PhotoCategory = "left"
	CategoryRight        PhotoCategory = "right"
	CategoryVIN          PhotoCategory = "vin"
	CategoryRegistration PhotoCategory = "registration"
	CategoryOwnerID      PhotoCategory = "owner_id"
	CategoryLocation     PhotoCategory = "location"
	CategoryEngine       PhotoCategory = "engine"
	CategoryOdometer     PhotoCategory = "odometer"
)

// AllCategories returns the fixed category enumeration in report order.
func AllCategories() []PhotoCategory {
	return []PhotoCategory{
		CategoryFront,
		CategoryBack,
		CategoryLeft,
		CategoryRight,
		CategoryVIN,
		CategoryRegistration,
		CategoryOwnerID,
		CategoryLocation,
		CategoryEngine,
		CategoryOdometer,
	}
}

var categoryDisplayNames = map[PhotoCategory]string{
	CategoryFront:        "Front View",
	CategoryBack:         "Back View",
	CategoryLeft:         "Left Side",
	CategoryRight:        "Right Side",
	CategoryVIN:          "VIN / Chassis Number",
	CategoryRegistration: "Registration Card",
	CategoryOwnerID:      "Owner ID",
	CategoryLocation:     "Vehicle Location",
	CategoryEngine:       "Engine Bay",
	CategoryOdometer:     "Odometer",
}

// DisplayName returns the human readable name for the category. Unknown
// categories fall back to the raw key.
func (c PhotoCategory) DisplayName() string {
	if name, ok := categoryDisplayNames[c]; ok {
		return name
	}
	return string(c)
}

// Critical reports whether the category carries text that must stay legible
// in the printed report (VIN, registration, ID documents). Critical photos
// are exempt from aggressive downscaling.
func (c PhotoCategory) Critical() bool {
	switch c {
	case CategoryVIN, CategoryRegistration, CategoryOwnerID:
		return true
	}
	return false
}

// Photo is one captured image slot of a vehicle. ImageData holds a
// self-describing data URI ("data:image/jpeg;base64,..."); an empty
// ImageData marks a placeholder slot that was never filled.
type Photo struct {
	ID       string        `json:"id"`
	Category PhotoCategory `json:"category"`
	Name     string        `json:"name"`
	Note     string        `json:"note"`
	// ImageData is a data URI with a base64 payload, or empty.
	ImageData string `json:"image_data,omitempty"`
}

// HasPayload reports whether the photo carries an actual image.
func (p *Photo) HasPayload() bool {
	return p != nil && p.ImageData != ""
}

// Caption returns the report caption for the photo: the free-text note,
// then the category display name, then a literal "NO NOTE" marker.
// The result is upper-cased for the printed report.
func (p *Photo) Caption() string {
	switch {
	case p == nil:
		return "NO NOTE"
	case strings.TrimSpace(p.Note) != "":
		return strings.ToUpper(strings.TrimSpace(p.Note))
	case p.Category != "":
		return strings.ToUpper(p.Category.DisplayName())
	case p.Name != "":
		return strings.ToUpper(p.Name)
	}
	return "NO NOTE"
}

// DecodePayload parses the data URI and returns the raw image bytes and the
// declared mime type.
func (p *Photo) DecodePayload() ([]byte, string, error) {
	if !p.HasPayload() {
		return nil, "", fmt.Errorf("photo %s has no image payload", p.ID)
	}

	data := p.ImageData
	mimeType := ""
	if strings.HasPrefix(data, "data:") {
		sep := strings.Index(data, ",")
		if sep < 0 {
			return nil, "", fmt.Errorf("photo %s: malformed data URI", p.ID)
		}
		header := data[len("data:"):sep]
		mimeType = strings.TrimSuffix(header, ";base64")
		data = data[sep+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, "", fmt.Errorf("photo %s: failed to decode base64 payload: %w", p.ID, err)
	}
	return raw, mimeType, nil
}

// EncodeJPEGDataURI wraps raw JPEG bytes in the self-describing data URI
// form used for photo payloads.
func EncodeJPEGDataURI(data []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)
}

// VehicleRecord is one vehicle of an inspection. The ID is assigned at
// creation and stays stable across edits. Photos maps the fixed category
// enumeration to optional photos; missing keys and nil photos are empty
// placeholder slots, never an error.
type VehicleRecord struct {
	ID            string                   `json:"id"`
	Make          string                   `json:"make"`
	Model         string                   `json:"model"`
	Year          string                   `json:"year"`
	LicensePlate  string                   `json:"license_plate"`
	ChassisNumber string                   `json:"chassis_number"`
	Photos        map[PhotoCategory]*Photo `json:"photos"`
}

// PhotosWithPayload returns the vehicle's photos that carry an image, in the
// fixed category order.
func (v *VehicleRecord) PhotosWithPayload() []*Photo {
	var photos []*Photo
	for _, category := range AllCategories() {
		if photo, ok := v.Photos[category]; ok && photo.HasPayload() {
			photos = append(photos, photo)
		}
	}
	return photos
}

// Description returns the make/model/year concatenation shown in the report.
func (v *VehicleRecord) Description() string {
	parts := []string{}
	for _, s := range []string{v.Make, v.Model, v.Year} {
		if strings.TrimSpace(s) != "" {
			parts = append(parts, strings.TrimSpace(s))
		}
	}
	return strings.Join(parts, " ")
}

// InspectionRecord is one vehicle inspection. The report generator receives
// it by value and never mutates it.
type InspectionRecord struct {
	ID             string          `json:"id"`
	AgentName      string          `json:"agent_name"`
	InsuredName    string          `json:"insured_name"`
	PolicyNumber   string          `json:"policy_number"`
	InspectionDate time.Time       `json:"inspection_date"`
	Vehicles       []VehicleRecord `json:"vehicles"`

	// Delivery status
	PdfGenerated bool       `json:"pdf_generated"`
	EmailSent    bool       `json:"email_sent"`
	Recipient    string     `json:"recipient,omitempty"`
	SentAt       *time.Time `json:"sent_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ShortID returns the first 8 characters of the inspection id, used for the
// report header and footer.
func (r *InspectionRecord) ShortID() string {
	if len(r.ID) > 8 {
		return r.ID[:8]
	}
	return r.ID
}
