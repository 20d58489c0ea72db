package billing

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer}
}

func (s *csvStreamer) writeRow(row []string) error {
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.pendingLines >= csvFlushEvery {
		return s.flush()
	}
	return nil
}

func (s *csvStreamer) flush() error {
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

// writeLedgerCSV streams the filtered ledger with a totals footer. Amounts
// in the entry rows stay raw decimals so spreadsheets can sum them; the
// footer carries display-formatted totals in the reporting currency.
func writeLedgerCSV(w io.Writer, view LedgerView) error {
	streamer := newCSVStreamer(w)
	header := []string{"Date", "Account Code", "Account Name", "Type", "Debit", "Credit", "Memo", "Document Ref", "Document Type", "Counterparty", "Currency", "Source", "Status"}
	if err := streamer.writeRow(header); err != nil {
		return err
	}
	for _, e := range view.Entries {
		row := []string{
			e.Date,
			e.AccountCode,
			e.AccountName,
			string(e.Type),
			formatDecimal(e.Debit),
			formatDecimal(e.Credit),
			e.Memo,
			e.DocumentRef,
			e.DocumentType,
			e.Counterparty,
			e.Currency,
			e.Source,
			e.Status,
		}
		if err := streamer.writeRow(row); err != nil {
			return err
		}
	}
	if err := streamer.writeRow([]string{"", "", "", ""}); err != nil {
		return err
	}
	footer := [][]string{
		{"Totals", "", "Debit", FormatMoney(view.ReportingCurrency, view.Totals.Debit)},
		{"Totals", "", "Credit", FormatMoney(view.ReportingCurrency, view.Totals.Credit)},
		{"Totals", "", "Imbalance", FormatMoney(view.ReportingCurrency, view.Totals.Imbalance)},
	}
	if view.MultiCurrency {
		footer = append(footer, []string{"Warning", "", "Multiple currencies present", fmt.Sprintf("%d currencies", len(view.Currencies))})
	}
	for _, row := range footer {
		if err := streamer.writeRow(row); err != nil {
			return err
		}
	}
	return streamer.flush()
}

func formatDecimal(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
