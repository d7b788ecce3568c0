package report

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
	"time"

	"github.com/google/uuid"

	"inspection-service/models"
)

// testJPEGDataURI renders a flat-color JPEG of the given pixel size and
// wraps it in a data URI.
func testJPEGDataURI(t *testing.T, w, h int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 180, G: 40, B: 40, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		t.Fatalf("Failed to encode test JPEG: %v", err)
	}
	return models.EncodeJPEGDataURI(buf.Bytes())
}

func testPhoto(t *testing.T, category models.PhotoCategory, w, h int) *models.Photo {
	t.Helper()
	return &models.Photo{
		ID:        uuid.New().String(),
		Category:  category,
		Name:      category.DisplayName(),
		ImageData: testJPEGDataURI(t, w, h),
	}
}

func testInspection(vehicles ...models.VehicleRecord) models.InspectionRecord {
	return models.InspectionRecord{
		ID:             "11112222-3333-4444-5555-666677778888",
		AgentName:      "Maria Gonzalez",
		InsuredName:    "Carlos Perez",
		PolicyNumber:   "POL-2026-0042",
		InspectionDate: time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
		Vehicles:       vehicles,
	}
}

func TestGenerate_SingleVehicleNoPhotos(t *testing.T) {
	gen := NewGenerator(testOptions(), "")

	inspection := testInspection(models.VehicleRecord{
		ID:           uuid.New().String(),
		Make:         "Toyota",
		Model:        "Corolla",
		Year:         "2021",
		LicensePlate: "ABC-123",
	})

	result := gen.Generate(context.Background(), inspection)

	if result.Fallback {
		t.Fatalf("Expected successful render, got fallback: %v", result.Err)
	}
	if result.Pages != 1 {
		t.Errorf("Expected exactly 1 page for vehicle without photos, got %d", result.Pages)
	}
	if len(result.Skipped) != 0 {
		t.Errorf("Expected no skipped photos, got %d", len(result.Skipped))
	}
	if !bytes.HasPrefix(result.PDF, []byte("%PDF")) {
		t.Error("Expected output to start with the PDF magic")
	}
	if bytes.Contains(result.PDF, []byte("VEHICLE PHOTOS")) {
		t.Error("Expected no photo section for a vehicle without photos")
	}
}

func TestGenerate_BlankFieldsRenderPlaceholder(t *testing.T) {
	gen := NewGenerator(testOptions(), "")

	inspection := testInspection(models.VehicleRecord{ID: uuid.New().String()})
	inspection.AgentName = ""
	inspection.InsuredName = ""
	inspection.PolicyNumber = ""

	result := gen.Generate(context.Background(), inspection)

	if result.Fallback {
		t.Fatalf("Expected successful render, got fallback: %v", result.Err)
	}
	if !bytes.Contains(result.PDF, []byte("NOT SPECIFIED")) {
		t.Error("Expected blank fields to render the NOT SPECIFIED placeholder")
	}
}

func TestGenerate_OneInfoBlockPerVehicleInOrder(t *testing.T) {
	gen := NewGenerator(testOptions(), "")

	var vehicles []models.VehicleRecord
	for i := 0; i < 3; i++ {
		vehicles = append(vehicles, models.VehicleRecord{
			ID:           uuid.New().String(),
			Make:         "Make",
			Model:        fmt.Sprintf("Model-%d", i),
			LicensePlate: fmt.Sprintf("PLATE-%d", i),
		})
	}

	result := gen.Generate(context.Background(), testInspection(vehicles...))

	if result.Fallback {
		t.Fatalf("Expected successful render, got fallback: %v", result.Err)
	}
	// One fresh page per vehicle.
	if result.Pages != 3 {
		t.Errorf("Expected 3 pages for 3 photo-less vehicles, got %d", result.Pages)
	}

	lastIndex := -1
	for i := 0; i < 3; i++ {
		idx := bytes.Index(result.PDF, []byte(fmt.Sprintf("Model-%d", i)))
		if idx < 0 {
			t.Fatalf("Vehicle %d missing from document", i)
		}
		if idx < lastIndex {
			t.Errorf("Vehicle %d rendered out of input order", i)
		}
		lastIndex = idx
	}
}

func TestGenerate_PhotoOverflowAndFreshPagePerVehicle(t *testing.T) {
	gen := NewGenerator(testOptions(), "")

	vehicleA := models.VehicleRecord{
		ID:     uuid.New().String(),
		Make:   "Ford",
		Model:  "Ranger",
		Photos: map[models.PhotoCategory]*models.Photo{},
	}
	categories := []models.PhotoCategory{
		models.CategoryFront,
		models.CategoryBack,
		models.CategoryLeft,
		models.CategoryRight,
		models.CategoryLocation,
	}
	for _, cat := range categories {
		vehicleA.Photos[cat] = testPhoto(t, cat, 800, 600)
	}

	vehicleB := models.VehicleRecord{
		ID:    uuid.New().String(),
		Make:  "Honda",
		Model: "Civic",
		Photos: map[models.PhotoCategory]*models.Photo{
			models.CategoryFront: testPhoto(t, models.CategoryFront, 800, 600),
		},
	}

	onlyA := gen.Generate(context.Background(), testInspection(vehicleA))
	both := gen.Generate(context.Background(), testInspection(vehicleA, vehicleB))

	if onlyA.Fallback || both.Fallback {
		t.Fatalf("Expected successful renders, got fallback: %v / %v", onlyA.Err, both.Err)
	}
	if onlyA.Pages < 2 {
		t.Errorf("Expected vehicle A's 5 photos to overflow one page, got %d pages", onlyA.Pages)
	}
	// Vehicle B always starts on its own fresh page and fits on it, so the
	// combined document is exactly one page longer.
	if both.Pages != onlyA.Pages+1 {
		t.Errorf("Expected %d pages with vehicle B appended, got %d", onlyA.Pages+1, both.Pages)
	}
	if len(both.Skipped) != 0 {
		t.Errorf("Expected every decodable photo to render, got %d skipped", len(both.Skipped))
	}
	if !bytes.Contains(both.PDF, []byte("VEHICLE PHOTOS")) {
		t.Error("Expected photo section title in the document")
	}
}

func TestGenerate_FooterOnEveryPage(t *testing.T) {
	gen := NewGenerator(testOptions(), "")

	vehicles := []models.VehicleRecord{
		{ID: uuid.New().String(), Make: "A"},
		{ID: uuid.New().String(), Make: "B"},
	}

	result := gen.Generate(context.Background(), testInspection(vehicles...))

	if result.Fallback {
		t.Fatalf("Expected successful render, got fallback: %v", result.Err)
	}
	if result.Pages < 2 {
		t.Fatalf("Footer test needs a multi-page document, got %d pages", result.Pages)
	}

	for i := 1; i <= result.Pages; i++ {
		footer := fmt.Sprintf("Page %d of %d", i, result.Pages)
		if !bytes.Contains(result.PDF, []byte(footer)) {
			t.Errorf("Expected footer %q in document", footer)
		}
	}
	if bytes.Contains(result.PDF, []byte("{nb}")) {
		t.Error("Expected the page-count alias to be substituted in the output")
	}
}

func TestGenerate_CorruptPhotoIsSkipped(t *testing.T) {
	gen := NewGenerator(testOptions(), "")

	corrupt := &models.Photo{
		ID:        uuid.New().String(),
		Category:  models.CategoryFront,
		ImageData: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("not an image at all")),
	}
	good := testPhoto(t, models.CategoryBack, 640, 480)

	vehicle := models.VehicleRecord{
		ID:   uuid.New().String(),
		Make: "Nissan",
		Photos: map[models.PhotoCategory]*models.Photo{
			models.CategoryFront: corrupt,
			models.CategoryBack:  good,
		},
	}

	result := gen.Generate(context.Background(), testInspection(vehicle))

	if result.Fallback {
		t.Fatalf("Expected render to survive a corrupt photo, got fallback: %v", result.Err)
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("Expected exactly 1 skipped photo, got %d", len(result.Skipped))
	}
	if result.Skipped[0].PhotoID != corrupt.ID {
		t.Errorf("Expected skipped photo %s, got %s", corrupt.ID, result.Skipped[0].PhotoID)
	}
	if result.Skipped[0].Category != models.CategoryFront {
		t.Errorf("Expected skipped category front, got %s", result.Skipped[0].Category)
	}
}

func TestGenerate_NilPayloadPhotosAreOmitted(t *testing.T) {
	gen := NewGenerator(testOptions(), "")

	vehicle := models.VehicleRecord{
		ID:   uuid.New().String(),
		Make: "Mazda",
		Photos: map[models.PhotoCategory]*models.Photo{
			models.CategoryFront: nil,
			models.CategoryBack:  {ID: uuid.New().String(), Category: models.CategoryBack}, // no payload
		},
	}

	result := gen.Generate(context.Background(), testInspection(vehicle))

	if result.Fallback {
		t.Fatalf("Expected successful render, got fallback: %v", result.Err)
	}
	if result.Pages != 1 {
		t.Errorf("Expected a single page, got %d", result.Pages)
	}
	if len(result.Skipped) != 0 {
		t.Errorf("Payload-less slots are placeholders, not errors; got %d skipped", len(result.Skipped))
	}
	if bytes.Contains(result.PDF, []byte("VEHICLE PHOTOS")) {
		t.Error("Expected no photo section when no photo has a payload")
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	gen := NewGenerator(testOptions(), "")

	vehicle := models.VehicleRecord{
		ID:   "vehicle-1",
		Make: "Kia",
		Photos: map[models.PhotoCategory]*models.Photo{
			models.CategoryFront: {ID: "photo-1", Category: models.CategoryFront, ImageData: testJPEGDataURI(t, 800, 600)},
			models.CategoryVIN:   {ID: "photo-2", Category: models.CategoryVIN, ImageData: testJPEGDataURI(t, 400, 300)},
		},
	}
	inspection := testInspection(vehicle)

	first := gen.Generate(context.Background(), inspection)
	second := gen.Generate(context.Background(), inspection)

	if first.Pages != second.Pages {
		t.Errorf("Expected deterministic page count, got %d then %d", first.Pages, second.Pages)
	}
	if len(first.Skipped) != len(second.Skipped) {
		t.Errorf("Expected deterministic skip list, got %d then %d", len(first.Skipped), len(second.Skipped))
	}
}

func TestPhotoBox_LegibilityFloor(t *testing.T) {
	opts := testOptions()
	interior := opts.contentWidth() - 2*opts.CardPadding

	testCases := []struct {
		name     string
		category models.PhotoCategory
		minW     float64
		minH     float64
	}{
		{name: "critical VIN photo", category: models.CategoryVIN, minW: opts.MinCriticalPhotoW, minH: opts.MinCriticalPhotoH},
		{name: "critical registration photo", category: models.CategoryRegistration, minW: opts.MinCriticalPhotoW, minH: opts.MinCriticalPhotoH},
		{name: "generic front photo", category: models.CategoryFront, minW: opts.MinPhotoW, minH: opts.MinPhotoH},
	}

	for _, testCase := range testCases {
		// Squeeze into almost no remaining space: the floor must win.
		w, h := opts.photoBox(testCase.category, 800, 600, interior, 10)
		if w < testCase.minW {
			t.Errorf("%s: width %f below floor %f", testCase.name, w, testCase.minW)
		}
		if h < testCase.minH {
			t.Errorf("%s: height %f below floor %f", testCase.name, h, testCase.minH)
		}

		aspect := w / h
		if diff := aspect - 800.0/600.0; diff > 0.01 || diff < -0.01 {
			t.Errorf("%s: aspect ratio not preserved, got %f", testCase.name, aspect)
		}
	}
}

func TestPhotoBox_FitsAvailableSpace(t *testing.T) {
	opts := testOptions()
	interior := opts.contentWidth() - 2*opts.CardPadding

	w, h := opts.photoBox(models.CategoryFront, 1600, 1200, interior, 100)
	if w > interior {
		t.Errorf("Width %f exceeds card interior %f", w, interior)
	}
	if h > 100 {
		t.Errorf("Height %f exceeds the available space despite being above the floor", h)
	}
}
