package reporting

import (
	"github.com/xuri/excelize/v2"
)

const (
	statsSheet   = "Thong ke"
	billingSheet = "Khoan thu"
)

// sheetWriter 记录第一个写入错误，后续调用直接跳过
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (w *sheetWriter) writeRows(sheet string, rows [][]interface{}) {
	for r, values := range rows {
		for c, v := range values {
			if w.err != nil {
				return
			}
			var cell string
			if cell, w.err = excelize.CoordinatesToCellName(c+1, r+1); w.err != nil {
				return
			}
			w.err = w.f.SetCellValue(sheet, cell, v)
		}
	}
}

func (w *sheetWriter) colWidth(sheet, from, to string, width float64) {
	if w.err == nil {
		w.err = w.f.SetColWidth(sheet, from, to, width)
	}
}

func (w *sheetWriter) cellStyle(sheet, from, to string, style int) {
	if w.err == nil {
		w.err = w.f.SetCellStyle(sheet, from, to, style)
	}
}

// ExportXLSX 导出报表为 xlsx
func ExportXLSX(report Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(statsSheet)
	if err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(billingSheet); err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)
	w := &sheetWriter{f: f}

	st := report.Stats
	rows := [][]interface{}{
		{"Chi tieu", "Gia tri"},
		{"Nam", st.Year},
		{"Tong nhan khau", st.Totals.Residents},
		{"Tong ho khau", st.Totals.Households},
		{"Tam tru", st.Totals.TemporaryStays},
		{"Tam vang", st.Totals.TemporaryAbsences},
		{"Gioi tinh: Nam", st.Gender.Male},
		{"Gioi tinh: Nu", st.Gender.Female},
		{"Gioi tinh: khac", st.Gender.Unrecognized},
	}
	for _, b := range st.Age.Buckets {
		rows = append(rows, []interface{}{"Do tuoi " + b.Label, b.Count})
	}
	rows = append(rows,
		[]interface{}{"Khong co ngay sinh", st.Age.MissingBirthDate},
		[]interface{}{"Tam tru: cho duyet", st.TemporaryStay.Pending},
		[]interface{}{"Tam tru: da duyet", st.TemporaryStay.Approved},
		[]interface{}{"Tam tru: tu choi", st.TemporaryStay.Rejected},
		[]interface{}{"Tam vang: cho duyet", st.TemporaryAbsence.Pending},
		[]interface{}{"Tam vang: da duyet", st.TemporaryAbsence.Approved},
		[]interface{}{"Tam vang: tu choi", st.TemporaryAbsence.Rejected},
	)
	w.writeRows(statsSheet, rows)
	w.colWidth(statsSheet, "A", "A", 28)
	w.colWidth(statsSheet, "B", "B", 14)

	bill := report.Billing
	billRows := [][]interface{}{
		{"ID", "Khoan thu", "Loai", "Don gia", "Don vi", "Da nop", "Chua nop", "Da thu", "Con no"},
	}
	for _, fb := range bill.Fees {
		billRows = append(billRows, []interface{}{
			fb.FeeScheduleID.String(),
			fb.Name,
			string(fb.Category),
			fb.UnitPrice,
			fb.Unit,
			fb.Paid,
			fb.Unpaid,
			fb.Collected,
			fb.Outstanding,
		})
	}
	billRows = append(billRows,
		[]interface{}{},
		[]interface{}{"Tong da thu", bill.TotalCollected},
		[]interface{}{"Tong con no", bill.TotalOutstanding},
		[]interface{}{"Ho con no", bill.HouseholdsWithDebt},
		[]interface{}{"Ho da nop du", bill.HouseholdsFullyPaid},
	)
	w.writeRows(billingSheet, billRows)
	w.colWidth(billingSheet, "A", "A", 10)
	w.colWidth(billingSheet, "B", "B", 28)
	w.colWidth(billingSheet, "C", "I", 14)

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E5E7EB"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}
	w.cellStyle(statsSheet, "A1", "B1", style)
	w.cellStyle(billingSheet, "A1", "I1", style)
	if w.err != nil {
		return nil, w.err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
