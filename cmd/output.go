package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"dynoquery/models"
	"dynoquery/results"
)

const nullCell = "-"

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

// printPage writes a result page as a table with one column per merged attribute
func printPage(out io.Writer, page *results.Page, index int) error {
	fmt.Fprintf(out, "Page %d (%d items)\n", index+1, len(page.Rows))
	if len(page.Rows) == 0 {
		return nil
	}

	w := newTable(out)
	fmt.Fprintln(w, strings.Join(page.Columns, "\t"))
	for _, row := range page.Rows {
		values := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			if cell.IsNull() {
				values[i] = nullCell
				continue
			}
			values[i] = cell.String()
		}
		fmt.Fprintln(w, strings.Join(values, "\t"))
	}
	return w.Flush()
}

// describeParams renders query parameters on one line
func describeParams(p *models.QueryParameters) string {
	var b strings.Builder
	if p.ScanMode {
		b.WriteString("scan")
	} else {
		b.WriteString("query")
	}
	if p.Index != "" && p.Index != models.TableIndex {
		fmt.Fprintf(&b, " index=%s", p.Index)
	}
	if kc := p.KeyCondition; kc != nil {
		fmt.Fprintf(&b, " %s=%s", p.PrimaryKeyName, kc.PartitionValue)
		if sc := kc.SortCondition; sc != nil {
			fmt.Fprintf(&b, " %s", describeCondition(p.SortKeyName, *sc))
		}
	}
	for _, f := range p.FilterConditions {
		fmt.Fprintf(&b, " [%s]", describeCondition(f.AttrName, f.AttributeCondition))
	}
	return b.String()
}

func describeCondition(attr string, c models.AttributeCondition) string {
	switch c.Operator {
	case models.OpAttributeExists, models.OpAttributeNotExists:
		return fmt.Sprintf("%s(%s)", c.Operator, attr)
	case models.OpBetween:
		return fmt.Sprintf("%s between %s and %s", attr, c.Value, c.Value2)
	case models.OpSize:
		op := c.SizeOperator
		if op == "" {
			op = models.OpEqual
		}
		return fmt.Sprintf("size(%s) %s %s", attr, op, c.Value)
	default:
		return fmt.Sprintf("%s %s %s", attr, c.Operator, c.Value)
	}
}

func printHistory(out io.Writer, page *models.Page[models.HistoryEntry]) error {
	w := newTable(out)
	fmt.Fprintln(w, "KEY\tTIME\tQUERY")
	for _, entry := range page.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\n", entry.Key, entry.Timestamp.Local().Format(time.DateTime), describeParams(&entry.QueryParameters))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	printFooter(out, page.Page, page.PageSize, page.Total, page.Malformed)
	return nil
}

func printSaved(out io.Writer, page *models.Page[models.SavedQuery]) error {
	w := newTable(out)
	fmt.Fprintln(w, "NAME\tDESCRIPTION\tQUERY")
	for _, saved := range page.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\n", saved.Name, saved.Description, describeParams(&saved.QueryParameters))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	printFooter(out, page.Page, page.PageSize, page.Total, page.Malformed)
	return nil
}

func printSessions(out io.Writer, page *models.Page[models.Session]) error {
	w := newTable(out)
	fmt.Fprintln(w, "ID\tNAME\tTABLE\tREGION\tPROFILE\tGROUP")
	for _, s := range page.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", s.SessionID, s.Name, s.TableName, s.Region, s.CredentialProfile, s.SessionGroupID)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	printFooter(out, page.Page, page.PageSize, page.Total, page.Malformed)
	return nil
}

func printGroups(out io.Writer, page *models.Page[models.SessionGroup]) error {
	w := newTable(out)
	fmt.Fprintln(w, "ID\tNAME")
	for _, g := range page.Items {
		fmt.Fprintf(w, "%s\t%s\n", g.SessionGroupID, g.Name)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	printFooter(out, page.Page, page.PageSize, page.Total, page.Malformed)
	return nil
}

func printFooter(out io.Writer, page, pageSize, total int, malformed []string) {
	fmt.Fprintf(out, "Page %d, %d of %d shown\n", page, min(page*pageSize, total), total)
	if len(malformed) > 0 {
		fmt.Fprintf(out, "Skipped %d unreadable records: %s\n", len(malformed), strings.Join(malformed, ", "))
	}
}
