package utils

import (
	"strconv"
	"strings"
	"time"
)

type DateFormat string

const (
	FormatRFC3339Nano     DateFormat = time.RFC3339Nano
	FormatISO8601         DateFormat = "2006-01-02T15:04:05Z07:00"
	FormatISO8601Local    DateFormat = "2006-01-02T15:04:05.999999999"
	FormatISO8601Minutes  DateFormat = "2006-01-02T15:04"
	FormatSQLDateTime     DateFormat = "2006-01-02 15:04:05.999999999"
	FormatSQLDateTimeZone DateFormat = "2006-01-02 15:04:05.999999999Z07:00"
	FormatISO8601Date     DateFormat = "2006-01-02"
	FormatUnixTime        DateFormat = "unix"
)

// DateValidator parses the datetime spellings clients send for date_time
// fields. Values without a zone are taken as UTC; results are always UTC.
type DateValidator struct {
	supportedFormats []DateFormat
	standardFormat   DateFormat
}

type ValidationResult struct {
	IsValid        bool
	DetectedFormat DateFormat
	ParsedTime     time.Time
	StandardFormat string
	OriginalValue  string
}

func NewDateValidator() *DateValidator {
	return &DateValidator{
		supportedFormats: []DateFormat{
			FormatRFC3339Nano,
			FormatISO8601,
			FormatISO8601Local,
			FormatISO8601Minutes,
			FormatSQLDateTimeZone,
			FormatSQLDateTime,
			FormatISO8601Date,
		},
		standardFormat: FormatRFC3339Nano,
	}
}

func (dv *DateValidator) ValidateAndConvert(input string) ValidationResult {
	result := ValidationResult{
		IsValid:       false,
		OriginalValue: input,
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return result
	}

	// Unix seconds, 1970-2100
	if unixTime, err := strconv.ParseInt(input, 10, 64); err == nil {
		if unixTime > 0 && unixTime < 4102444800 {
			return dv.valid(result, time.Unix(unixTime, 0), FormatUnixTime)
		}
		return result
	}

	for _, format := range dv.supportedFormats {
		if parsedTime, err := time.ParseInLocation(string(format), input, time.UTC); err == nil {
			return dv.valid(result, parsedTime, format)
		}
	}

	return result
}

// Parse returns the UTC time for input or false when no supported format
// matches.
func (dv *DateValidator) Parse(input string) (time.Time, bool) {
	result := dv.ValidateAndConvert(input)
	return result.ParsedTime, result.IsValid
}

func (dv *DateValidator) GetSupportedFormats() []DateFormat {
	return dv.supportedFormats
}

func (dv *DateValidator) valid(
	result ValidationResult,
	parsed time.Time,
	format DateFormat,
) ValidationResult {
	// stored timestamps keep microseconds
	parsed = parsed.UTC().Truncate(time.Microsecond)
	result.IsValid = true
	result.DetectedFormat = format
	result.ParsedTime = parsed
	result.StandardFormat = parsed.Format(string(dv.standardFormat))
	return result
}
