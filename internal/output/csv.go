package output

import (
	"fmt"
	"strconv"
)

// CSVFollowWriter writes followed histories as CSV, one row per commit.
type CSVFollowWriter struct{}

// Write outputs the followed history as CSV.
func (w *CSVFollowWriter) Write(report *FollowReport, options OutputOptions) error {
	writer, file, err := createCSVWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	headers := []string{"SHA", "Date", "Author", "Email", "Path", "Bugfix", "Message"}
	if err := writer.Write(headers); err != nil {
		return err
	}

	for _, row := range followRows(report, options.Top) {
		record := []string{
			row.Commit.SHA,
			row.Commit.When.Format(reportDateTimeLayout),
			row.Commit.Author.Name,
			row.Commit.Author.Email,
			row.Path,
			strconv.FormatBool(row.Bugfix),
			row.Commit.Message,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// CSVDiffWriter writes revision diffs as CSV.
type CSVDiffWriter struct{}

// Write outputs the revision diff as CSV.
func (w *CSVDiffWriter) Write(report *DiffReport, options OutputOptions) error {
	writer, file, err := createCSVWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	if err := writer.Write([]string{"Kind", "OldPath", "NewPath", "Score"}); err != nil {
		return err
	}

	for _, e := range diffEntries(report) {
		record := []string{
			e.Kind.String(),
			e.OldPath,
			e.NewPath,
			fmt.Sprintf("%d", e.Score),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
