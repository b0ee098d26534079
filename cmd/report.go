package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spigell/resume-matcher/internal/pipeline"
)

// printReport writes the ranked postings in a human readable form.
func printReport(w io.Writer, result *pipeline.Result) {
	if result.Ranked.Len() == 0 {
		fmt.Fprintln(w, "No postings passed the minimum score.")
		return
	}

	if result.Location != "" {
		fmt.Fprintf(w, "Top matches in %s (search terms: %s)\n\n", result.Location, strings.Join(result.Terms, ", "))
	} else {
		fmt.Fprintf(w, "Top matches (search terms: %s)\n\n", strings.Join(result.Terms, ", "))
	}

	for i, item := range result.Ranked.Items {
		p := item.Posting
		fmt.Fprintf(w, "%d. %s at %s", i+1, p.Title, p.Company)
		if p.Location != "" {
			fmt.Fprintf(w, " (%s)", p.Location)
		}
		fmt.Fprintf(w, "\n   Match score: %d/100\n", item.Score)
		for _, factor := range item.Factors {
			fmt.Fprintf(w, "   • %s\n", factor)
		}
		if p.URL != "" {
			fmt.Fprintf(w, "   %s\n", p.URL)
		}
		fmt.Fprintln(w)
	}
}
