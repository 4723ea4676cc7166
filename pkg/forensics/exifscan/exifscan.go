// Package exifscan implements the external EXIF extractor collaborator
// from spec.md §6, wrapping github.com/rwcarlsen/goexif. It also computes
// the "suspicious_indicators" the core contributes by inspecting the
// returned fields.
package exifscan

import (
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"github.com/kschiffer/imgforensics/pkg/forensics"
)

// Metadata mirrors spec.md §6's EXIF contract. Missing fields are nil/empty,
// never an error.
type Metadata struct {
	CameraMake         string
	CameraModel        string
	Software           string
	DateTime           string
	DateTimeOriginal   string
	DateTimeDigitized  string
	GPSLatitude        string
	GPSLongitude       string
	AllTags            map[string]string
	SuspiciousIndicators []string
}

// Extract reads EXIF metadata from the file at path. A missing or
// tag-less EXIF segment is not an error: it yields an empty Metadata.
func Extract(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, forensics.ErrIO("open file", err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		// No EXIF segment present is not an error per spec §6.
		return &Metadata{AllTags: map[string]string{}}, nil
	}

	m := &Metadata{AllTags: map[string]string{}}
	m.CameraMake = stringTag(x, exif.Make)
	m.CameraModel = stringTag(x, exif.Model)
	m.Software = stringTag(x, exif.Software)
	m.DateTime = stringTag(x, exif.DateTime)
	m.DateTimeOriginal = stringTag(x, exif.DateTimeOriginal)
	m.DateTimeDigitized = stringTag(x, exif.DateTimeDigitized)
	m.GPSLatitude = stringTag(x, exif.GPSLatitude)
	m.GPSLongitude = stringTag(x, exif.GPSLongitude)

	_ = x.Walk(tagCollector{tags: m.AllTags})

	m.SuspiciousIndicators = suspiciousIndicators(m)
	return m, nil
}

func stringTag(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return strings.Trim(tag.String(), `"`)
	}
	return s
}

// tagCollector implements exif.Walker, copying every tag's string
// representation into a flat map for the "all_tags" contract field.
type tagCollector struct {
	tags map[string]string
}

func (c tagCollector) Walk(name exif.FieldName, t *tiff.Tag) error {
	c.tags[string(name)] = t.String()
	return nil
}

// suspiciousIndicators implements spec.md §6's exact rules:
//   - software string contains "photoshop"/"gimp"/"paint" -> suspicious
//   - date_time present without date_time_original -> "original datetime missing"
//   - date_time_original != date_time_digitized -> "inconsistent datetimes"
func suspiciousIndicators(m *Metadata) []string {
	var out []string
	lower := strings.ToLower(m.Software)
	for _, needle := range []string{"photoshop", "gimp", "paint"} {
		if strings.Contains(lower, needle) {
			out = append(out, "editing software detected: "+m.Software)
			break
		}
	}
	if m.DateTime != "" && m.DateTimeOriginal == "" {
		out = append(out, "original datetime missing")
	}
	if m.DateTimeOriginal != "" && m.DateTimeDigitized != "" && m.DateTimeOriginal != m.DateTimeDigitized {
		out = append(out, "inconsistent datetimes")
	}
	return out
}
