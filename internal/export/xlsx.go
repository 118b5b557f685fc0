// Package export writes run products to spreadsheet files.
package export

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/meridian-geo/lulc-cli/internal/eval"
	"github.com/meridian-geo/lulc-cli/internal/model"
)

// WriteXLSX writes a workbook with an Areas sheet and, when a confusion
// matrix is supplied, an Accuracy sheet.
func WriteXLSX(path string, records []model.AreaRecord, cm *eval.Matrix) error {
	f := xlsx.NewFile()

	if err := writeAreas(f, records); err != nil {
		return err
	}
	if cm != nil {
		if err := writeAccuracy(f, cm); err != nil {
			return err
		}
	}

	return eris.Wrapf(f.Save(path), "export: save %s", path)
}

func writeAreas(f *xlsx.File, records []model.AreaRecord) error {
	sheet, err := f.AddSheet("Areas")
	if err != nil {
		return eris.Wrap(err, "export: add areas sheet")
	}

	header := sheet.AddRow()
	for _, name := range []string{"Year", "Class Code", "Class Name", "Area (ha)"} {
		header.AddCell().Value = name
	}

	for _, rec := range records {
		row := sheet.AddRow()
		row.AddCell().SetInt(rec.Year)
		row.AddCell().SetInt(rec.ClassCode)
		row.AddCell().Value = rec.ClassName
		row.AddCell().SetFloat(rec.AreaHectares)
	}
	return nil
}

func writeAccuracy(f *xlsx.File, cm *eval.Matrix) error {
	sheet, err := f.AddSheet("Accuracy")
	if err != nil {
		return eris.Wrap(err, "export: add accuracy sheet")
	}

	codes := cm.Codes()
	counts := cm.Counts()

	header := sheet.AddRow()
	header.AddCell().Value = "true\\pred"
	for _, c := range codes {
		header.AddCell().Value = strconv.Itoa(c)
	}

	for i, c := range codes {
		row := sheet.AddRow()
		row.AddCell().Value = strconv.Itoa(c)
		for j := range codes {
			row.AddCell().SetInt(counts[i][j])
		}
	}

	stats := sheet.AddRow()
	stats.AddCell().Value = "accuracy"
	stats.AddCell().SetFloat(cm.Accuracy())
	stats = sheet.AddRow()
	stats.AddCell().Value = "kappa"
	stats.AddCell().SetFloat(cm.Kappa())
	return nil
}
