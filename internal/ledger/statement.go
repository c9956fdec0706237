package ledger

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/angelmondragon/importops-backend/pkg/money"
)

const statementSheet = "Statement"

var statementHeadings = []string{"Date", "Type", "Method", "Debit", "Credit", "Balance", "Notes"}

func writeStatementXLSX(statement *Statement, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", statementSheet); err != nil {
		return err
	}

	f.SetCellValue(statementSheet, "A1", statement.PartyName)
	f.SetCellValue(statementSheet, "B1", string(statement.EntityModel))
	f.SetCellValue(statementSheet, "C1", statement.Currency)

	col := 'A'
	for _, h := range statementHeadings {
		f.SetCellValue(statementSheet, string(col)+"3", h)
		col++
	}

	rowNo := 4
	for _, line := range statement.Lines {
		entry := line.Entry
		method := ""
		if entry.PaymentMethod != nil {
			method = entry.PaymentMethod.Label()
		}
		notes := ""
		if entry.Notes != nil {
			notes = *entry.Notes
		}
		values := []any{
			entry.Date.Format("2006-01-02"),
			string(entry.TransactionType),
			method,
			money.Round(entry.Debit).InexactFloat64(),
			money.Round(entry.Credit).InexactFloat64(),
			money.Round(line.Balance).InexactFloat64(),
			notes,
		}
		col := 'A'
		for _, value := range values {
			f.SetCellValue(statementSheet, string(col)+fmt.Sprint(rowNo), value)
			col++
		}
		rowNo++
	}

	f.SetCellValue(statementSheet, "E"+fmt.Sprint(rowNo+1), "Closing balance")
	f.SetCellValue(statementSheet, "F"+fmt.Sprint(rowNo+1), money.Round(statement.ClosingBalance).InexactFloat64())

	return f.Write(w)
}
