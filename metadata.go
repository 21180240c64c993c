package exif_scanner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/barasher/go-exiftool"
	"github.com/bradfitz/latlong"
	"github.com/gabriel-vasile/mimetype"
)

const (
	Photo   = "photo"
	Video   = "video"
	Unknown = "unknown"
)

type MetaDataKeys struct {
	width            string
	height           string
	rotation         string
	createTime       string
	createTimeLayout string
	gpsTime          string
	gpsTimeLayout    string
	gpsPosition      string
}

func LoadPhotoKeys() *MetaDataKeys {
	return &MetaDataKeys{
		width:            "ImageWidth",
		height:           "ImageHeight",
		rotation:         "Orientation",
		createTime:       "CreateDate",
		createTimeLayout: "2006:01:02 15:04:05",
		gpsTime:          "GPSDateTime",
		gpsTimeLayout:    "2006:01:02 15:04:05Z",
		gpsPosition:      "GPSPosition",
	}
}

type Resolution struct {
	Width  uint `json:"width"`
	Height uint `json:"height"`
}

type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	TimeZone  string  `json:"tz,omitempty"`
}

type StructuredFileMetadata struct {
	Type       string     `json:"type"`
	MimeType   string     `json:"mime"`
	Extension  string     `json:"extension"`
	Resolution Resolution `json:"resolution"`
	Size       string     `json:"size"`
	Timestamp  int64      `json:"time,omitempty"`
	Location   *Location  `json:"location,omitempty"`
}

// Metadata is the parse result for one object: every tag exiftool reported
// plus the fields derived from them.
type Metadata struct {
	Key        string                  `json:"key"`
	Tags       map[string]interface{}  `json:"tags"`
	Structured *StructuredFileMetadata `json:"structured"`
	// Warnings lists derived fields that could not be filled.
	Warnings []string `json:"warnings,omitempty"`
}

// Parser decodes the embedded metadata of one fetched object.
type Parser interface {
	Parse(fileObject *FileObject) (*Metadata, error)
}

// ExiftoolParser hands object bytes to a long-running exiftool process.
type ExiftoolParser struct {
	et *exiftool.Exiftool
}

func NewExiftoolParser() (*ExiftoolParser, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("start exiftool: %w", err)
	}
	return &ExiftoolParser{et: et}, nil
}

func (p *ExiftoolParser) Close() error {
	return p.et.Close()
}

func (p *ExiftoolParser) Parse(fileObject *FileObject) (*Metadata, error) {
	fileMimeType, err := detectImageType(fileObject.FileDataAsByte())
	if err != nil {
		return nil, err
	}

	// exiftool reads from disk, so the bytes are staged in a temp file.
	file, err := os.CreateTemp("", "exif-scanner-*"+fileObject.Extension())
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(file.Name())
	if _, err := file.Write(fileObject.FileDataAsByte()); err != nil {
		file.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	results := p.et.ExtractMetadata(file.Name())
	if len(results) == 0 {
		return nil, errors.New("exiftool returned no metadata")
	}
	if results[0].Err != nil {
		return nil, fmt.Errorf("extract metadata: %w", results[0].Err)
	}
	return FetchMetaData(fileObject, results[0], fileMimeType), nil
}

// detectImageType sniffs the content and rejects anything that is not an
// image, such as an XML error document served in place of the object.
func detectImageType(data []byte) (*mimetype.MIME, error) {
	if len(data) == 0 {
		return nil, errors.New("empty object body")
	}
	fileMimeType := mimetype.Detect(data)
	if getMimeType(fileMimeType.String()) != Photo {
		return nil, fmt.Errorf("not an image: detected %s", fileMimeType.String())
	}
	return fileMimeType, nil
}

type objectMetaData struct {
	UnstructuredFileMetadata exiftool.FileMetadata
	StructuredFileMetadata   *StructuredFileMetadata
	metaDataKeys             *MetaDataKeys
}

// FetchMetaData derives the structured view from exiftool's tags. A missing
// or malformed tag leaves its field zero and is reported as a warning.
func FetchMetaData(fileObject *FileObject, fm exiftool.FileMetadata, fileMimeType *mimetype.MIME) *Metadata {
	objMetaData := &objectMetaData{
		UnstructuredFileMetadata: fm,
		StructuredFileMetadata:   new(StructuredFileMetadata),
	}
	objMetaData.setInfoFields(fileObject, fileMimeType)

	var warnings []string
	for _, step := range []struct {
		field string
		set   func() error
	}{
		{"resolution", objMetaData.setResolution},
		{"location", objMetaData.setLocation},
		{"time", objMetaData.setDateTime},
	} {
		if err := step.set(); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", step.field, err))
		}
	}

	return &Metadata{
		Key:        fileObject.ObjectKey(),
		Tags:       fm.Fields,
		Structured: objMetaData.StructuredFileMetadata,
		Warnings:   warnings,
	}
}

func (objMetaData *objectMetaData) setInfoFields(fileObject *FileObject, fileMimeType *mimetype.MIME) {
	contentType := Unknown
	if fileMimeType != nil {
		contentType = getMimeType(fileMimeType.String())
		objMetaData.StructuredFileMetadata.MimeType = fileMimeType.String()
		objMetaData.StructuredFileMetadata.Extension = strings.TrimPrefix(fileMimeType.Extension(), ".")
	}

	// stores the file size in readable format
	objMetaData.StructuredFileMetadata.Size = fileObject.ReadableFileSize()
	objMetaData.StructuredFileMetadata.Type = contentType
	objMetaData.metaDataKeys = LoadPhotoKeys()
}

func (objMetaData *objectMetaData) setResolution() error {
	unstructuredMetadata, structuredMetadata := objMetaData.UnstructuredFileMetadata, objMetaData.StructuredFileMetadata
	width, err := unstructuredMetadata.GetInt(objMetaData.metaDataKeys.width)
	if err != nil {
		return fmt.Errorf("width: %w", err)
	}
	height, err := unstructuredMetadata.GetInt(objMetaData.metaDataKeys.height)
	if err != nil {
		return fmt.Errorf("height: %w", err)
	}

	// Check the content rotation
	if rotation, err := unstructuredMetadata.GetString(objMetaData.metaDataKeys.rotation); err == nil {
		if strings.Contains(rotation, "90") || strings.Contains(rotation, "270") {
			width, height = height, width
		}
	}
	structuredMetadata.Resolution.Width = uint(width)
	structuredMetadata.Resolution.Height = uint(height)
	return nil
}

func (objMetaData *objectMetaData) setLocation() error {
	gpsPositionString, err := objMetaData.UnstructuredFileMetadata.GetString(objMetaData.metaDataKeys.gpsPosition)
	if err != nil {
		return err
	}
	location, err := parseGPSLocationString(gpsPositionString)
	if err != nil {
		return err
	}
	location.TimeZone = latlong.LookupZoneName(location.Latitude, location.Longitude)
	objMetaData.StructuredFileMetadata.Location = location
	return nil
}

func (objMetaData *objectMetaData) setDateTime() error {
	unstructuredMetadata := objMetaData.UnstructuredFileMetadata
	creationTimeString, err := unstructuredMetadata.GetString(objMetaData.metaDataKeys.gpsTime)
	layout := objMetaData.metaDataKeys.gpsTimeLayout
	if err != nil {
		layout = objMetaData.metaDataKeys.createTimeLayout
		creationTimeString, err = unstructuredMetadata.GetString(objMetaData.metaDataKeys.createTime)
		if err != nil {
			return err
		}
	}
	timeFromPost, err := time.ParseInLocation(layout, creationTimeString, time.UTC)
	if err != nil {
		return err
	}
	objMetaData.StructuredFileMetadata.Timestamp = timeFromPost.Unix()
	return nil
}

func parseGPSLocationString(unparsedLocation string) (*Location, error) {
	unparsedLocations := strings.Split(unparsedLocation, ",")
	if len(unparsedLocations) != 2 {
		return nil, fmt.Errorf("malformed GPS position %q", unparsedLocation)
	}
	latitude, err := convertLocationStringToFloat(unparsedLocations[0])
	if err != nil {
		return nil, err
	}
	longitude, err := convertLocationStringToFloat(unparsedLocations[1])
	if err != nil {
		return nil, err
	}
	if latitude < -90.0 || latitude > 90.0 || longitude < -180.0 || longitude > 180.0 {
		return nil, errors.New("invalid latitude or longitude")
	}
	return &Location{
		Latitude:  latitude,
		Longitude: longitude,
	}, nil
}

// convertLocationStringToFloat turns `51 deg 30' 26.00" N` into decimal degrees.
func convertLocationStringToFloat(location string) (float64, error) {
	location = strings.Replace(location, "deg", "", 1)
	parts := strings.Fields(location)
	if len(parts) != 4 {
		return 0, fmt.Errorf("malformed coordinate %q", strings.TrimSpace(location))
	}
	degrees, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, err
	}
	minutes, err := strconv.ParseFloat(strings.TrimSuffix(parts[1], "'"), 64)
	if err != nil {
		return 0, err
	}
	seconds, err := strconv.ParseFloat(strings.TrimSuffix(parts[2], "\""), 64)
	if err != nil {
		return 0, err
	}
	direction := parts[3]
	decimalDegrees := degrees + (minutes / 60) + (seconds / 3600)
	if direction == "S" || direction == "W" {
		decimalDegrees = -decimalDegrees
	}
	return decimalDegrees, nil
}

// getMimeType returns the file type by splitting the content type
func getMimeType(contentType string) string {
	pieces := strings.Split(contentType, "/")
	if len(pieces) != 2 {
		return Unknown
	}
	switch pieces[0] {
	case "image":
		return Photo
	case "video":
		return Video
	}
	return Unknown
}
