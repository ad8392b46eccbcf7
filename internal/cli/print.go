package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/entrykeeper/internal/models"
	"github.com/dmitrijs2005/entrykeeper/internal/session"
)

func formatIcon(i models.Icon) string {
	if i.IsCustom() {
		return "custom " + i.UUID.String()
	}
	return fmt.Sprintf("#%d", i.Number)
}

func formatExpiry(expires bool, at time.Time) string {
	if !expires {
		return "never"
	}
	return at.Format(time.RFC3339)
}

func printEntry(w io.Writer, e *models.Entry) {
	ti := e.TimeInfo()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", e.UUID())
	fmt.Fprintf(tw, "Title:\t%s\n", e.Title())
	fmt.Fprintf(tw, "Username:\t%s\n", e.Username())
	fmt.Fprintf(tw, "Password:\t%s\n", mask(e.Password(), true))
	fmt.Fprintf(tw, "URL:\t%s\n", e.URL())
	fmt.Fprintf(tw, "Notes:\t%s\n", e.Notes())
	fmt.Fprintf(tw, "Icon:\t%s\n", formatIcon(e.Icon()))
	fmt.Fprintf(tw, "Expires:\t%s\n", formatExpiry(ti.Expires, ti.ExpiryTime))
	fmt.Fprintf(tw, "Modified:\t%s\n", ti.LastModified.Format(time.RFC3339))
	attrs := e.Attributes()
	for _, k := range attrs.CustomKeys() {
		fmt.Fprintf(tw, "  %s:\t%s\n", k, mask(attrs.Value(k), attrs.IsProtected(k)))
	}
	for _, k := range e.Attachments().Keys() {
		data, _ := e.Attachments().Value(k)
		fmt.Fprintf(tw, "  [file] %s:\t%d bytes\n", k, len(data))
	}
	fmt.Fprintf(tw, "History:\t%d item(s)\n", len(e.HistoryItems()))
	tw.Flush()
}

func printHistory(w io.Writer, items []*models.Entry) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No history")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tMODIFIED\tTITLE\tUSERNAME")
	for i, h := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, h.TimeInfo().LastModified.Format(time.RFC3339), h.Title(), h.Username())
	}
	tw.Flush()
}

// printSession shows the working copy of s.
func printSession(w io.Writer, s *session.Session) {
	f := s.Fields()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Mode:\t%s\n", s.Mode())
	fmt.Fprintf(tw, "Title:\t%s\n", f.Title)
	fmt.Fprintf(tw, "Username:\t%s\n", f.Username)
	fmt.Fprintf(tw, "Password:\t%s (%s)\n", mask(f.Password, true), s.PasswordCheck())
	fmt.Fprintf(tw, "URL:\t%s\n", f.URL)
	fmt.Fprintf(tw, "Notes:\t%s\n", f.Notes)
	fmt.Fprintf(tw, "Icon:\t%s\n", formatIcon(f.Icon))
	fmt.Fprintf(tw, "Expires:\t%s\n", formatExpiry(f.Expires, f.ExpiryTime))

	active, buf, _ := s.ActiveAttribute()
	for _, k := range s.AttributeKeys() {
		v, protected, _ := s.Attribute(k)
		marker := " "
		if k == active {
			marker, v = "*", buf
		}
		fmt.Fprintf(tw, "%s %s:\t%s\n", marker, k, mask(v, protected))
	}
	for _, name := range s.AttachmentNames() {
		data, _ := s.Attachment(name)
		fmt.Fprintf(tw, "  [file] %s:\t%d bytes\n", name, len(data))
	}
	if s.Permissions().CanViewHistory {
		fmt.Fprintf(tw, "History:\t%d item(s), %d marked for deletion\n", len(s.HistoryItems()), len(s.PendingHistoryDeletions()))
	}
	tw.Flush()
}
