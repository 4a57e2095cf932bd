package ledger

import "strconv"

// Layout fixes the column set and order of a serialized ledger. Field order
// is an explicit constant, shared by writer and readers downstream.
type Layout interface {
	Header() []string
	Row(rec Record) []string
}

// conversionHeader is the column order of the conversion status report.
var conversionHeader = []string{
	"File name",
	"Processing status",
	"Output file name",
	"File date",
	"Weekday",
	"Input file size",
	"Output file size",
	"Input file shape",
	"Input file path",
	"Output file path",
	"Copied input file path",
}

// acquisitionHeader is the column order of the download status report.
var acquisitionHeader = []string{
	"date",
	"status",
	"reason",
	"file_path",
	"file_size",
	"file_shape",
}

// ConversionLayout serializes records of the conversion pipeline.
type ConversionLayout struct{}

func (ConversionLayout) Header() []string { return conversionHeader }

func (ConversionLayout) Row(rec Record) []string {
	fileDate := "N/A"
	weekday := "N/A"
	if !rec.Date.IsZero() {
		fileDate = rec.Date.Format("2006-01-02")
		weekday = rec.Date.Weekday().String()
	}
	return []string{
		rec.Unit,
		string(rec.Outcome),
		rec.OutputName,
		fileDate,
		weekday,
		strconv.FormatInt(rec.InputSize, 10),
		strconv.FormatInt(rec.OutputSize, 10),
		rec.Shape.String(),
		rec.InputPath,
		rec.OutputPath,
		rec.CopiedPath,
	}
}

// AcquisitionLayout serializes records of the acquisition pipeline.
type AcquisitionLayout struct{}

func (AcquisitionLayout) Header() []string { return acquisitionHeader }

func (AcquisitionLayout) Row(rec Record) []string {
	return []string{
		rec.Unit,
		string(rec.Outcome),
		rec.Reason,
		rec.OutputPath,
		strconv.FormatInt(rec.OutputSize, 10),
		rec.Shape.String(),
	}
}
