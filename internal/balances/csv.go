package balances

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeComment(line string) error {
	if s == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if !strings.HasSuffix(line, "\r\n") {
		line = strings.TrimSuffix(line, "\n")
		line += "\r\n"
	}
	_, err := s.buf.WriteString(line)
	return err
}

func (s *csvStreamer) writeRow(row []string) error {
	if s == nil || s.csv == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	if s == nil || s.csv == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
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

func (s *csvStreamer) Close() error {
	return s.Flush()
}

// writeReportCSV streams the report with a metadata preamble. The human
// totals in the trailing comment use grouped digits so large books stay
// readable in a plain-text diff.
func writeReportCSV(w io.Writer, report Report) error {
	streamer := newCSVStreamer(w)

	if err := streamer.writeComment("# Report: Account Balances"); err != nil {
		return err
	}
	window := "all"
	if report.From != nil || report.To != nil {
		from, to := "open", "open"
		if report.From != nil {
			from = report.From.Format("2006-01-02")
		}
		if report.To != nil {
			to = report.To.Format("2006-01-02")
		}
		window = from + ".." + to
	}
	rootName := report.RootName
	if rootName == "" {
		rootName = "(book root)"
	}
	if err := streamer.writeComment(fmt.Sprintf("# Root: %s | Currency: %s | Window: %s", rootName, report.Currency, window)); err != nil {
		return err
	}
	excluded := "none"
	if len(report.ExcludedCommodities) > 0 {
		excluded = strings.Join(report.ExcludedCommodities, ", ")
	}
	if err := streamer.writeComment("# Excluded commodities: " + excluded); err != nil {
		return err
	}

	if err := streamer.writeRow([]string{"Account", "Type", "Commodity", "Depth", "Period Balance", "Total Balance"}); err != nil {
		return err
	}
	for _, line := range report.Lines {
		if err := streamer.writeRow([]string{
			line.FullName,
			string(line.Type),
			line.Commodity,
			strconv.Itoa(line.Depth),
			line.PeriodBalance.StringFixed(2),
			line.TotalBalance.StringFixed(2),
		}); err != nil {
			return err
		}
	}

	if len(report.Lines) > 0 {
		root := report.Lines[0]
		printer := message.NewPrinter(language.English)
		totalF, _ := root.TotalBalance.Round(2).Float64()
		periodF, _ := root.PeriodBalance.Round(2).Float64()
		comment := printer.Sprintf("# Subtree total: %.2f %s | period: %.2f %s",
			totalF, report.Currency, periodF, report.Currency)
		if err := streamer.writeComment(comment); err != nil {
			return err
		}
	}
	return streamer.Close()
}
