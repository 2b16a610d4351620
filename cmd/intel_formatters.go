package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"forensics/threat"

	"github.com/fatih/color"
)

// renderReputation displays a verdict followed by each provider's answer
func renderReputation(w io.Writer, rep *threat.Reputation) {
	headerColor.Fprintln(w, strings.Repeat("═", 63))
	headerColor.Fprintf(w, "  Reputation: %s (%s)\n", rep.Target, rep.Type)
	headerColor.Fprintln(w, strings.Repeat("═", 63))
	fmt.Fprintln(w)

	printSection(w, "Verdict")
	printField(w, "Category", formatCategory(rep.Category))
	printField(w, "Score", fmt.Sprintf("%.2f", rep.Score))
	printField(w, "Malicious", formatBool(rep.IsMalicious))
	printField(w, "Checked", rep.CheckedAt.Format(time.RFC3339))
	fmt.Fprintln(w)

	printSection(w, "Sources")
	if len(rep.Sources) == 0 {
		warningColor.Fprintln(w, "  No provider supports this indicator type")
		return
	}
	for _, src := range rep.Sources {
		printField(w, src.Provider, describeSource(src.Data))
	}
}

// describeSource summarizes one provider's data on a single line
func describeSource(data any) string {
	switch d := data.(type) {
	case *threat.VirusTotalData:
		if d.NotFound {
			return "not found"
		}
		return fmt.Sprintf("%d/%d engines flagged malicious, %d suspicious", d.Malicious, d.Total, d.Suspicious)
	case *threat.AbuseIPDBData:
		s := fmt.Sprintf("confidence %d%%, %d reports", d.AbuseConfidenceScore, d.TotalReports)
		if d.IsTor {
			s += ", Tor exit"
		}
		if d.CountryCode != "" {
			s += ", " + d.CountryCode
		}
		return s
	case *threat.GreyNoiseData:
		if d.NotFound {
			return "not observed"
		}
		s := d.Classification
		if s == "" {
			s = "unclassified"
		}
		if d.Name != "" {
			s += " (" + d.Name + ")"
		}
		return s
	default:
		return fmt.Sprintf("%v", d)
	}
}

// formatCategory colors a reputation category by severity
func formatCategory(category string) string {
	switch category {
	case threat.CategoryMalicious:
		return errorColor.Sprint(category)
	case threat.CategorySuspicious, threat.CategoryPotentiallyMalicious:
		return warningColor.Sprint(category)
	case threat.CategoryClean:
		return successColor.Sprint(category)
	default:
		return category
	}
}

// formatBool formats a boolean with color
func formatBool(b bool) string {
	if b {
		return color.New(color.FgRed).Sprint("Yes")
	}
	return color.New(color.FgGreen).Sprint("No")
}

// printSection prints a section header
func printSection(w io.Writer, title string) {
	infoColor.Fprintf(w, "%s:\n", title)
}

// printField prints a labeled field
func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-14s %s\n", label+":", value)
}
