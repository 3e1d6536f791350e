// package formatter exports prep-run reports to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/venndale/showprep/internal/catalog"
	"github.com/venndale/showprep/internal/shared"
	"github.com/venndale/showprep/internal/tasks"
)

// joinArtists renders a track's artist names as a comma-separated string.
func joinArtists(track catalog.Track) string {
	names := make([]string, 0, len(track.Artists))
	for _, artist := range track.Artists {
		names = append(names, artist.Name)
	}
	return strings.Join(names, ", ")
}

// ExportToCSV converts a prep result's unheard tracks to CSV with columns: ID, Title, Artists, URI
func ExportToCSV(result *tasks.PrepResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artists", "URI"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range result.UnheardTracks {
		record := []string{
			track.ID,
			track.Name,
			joinArtists(track),
			track.URI,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a prep result to a Markdown report.
func ExportToMarkdown(result *tasks.PrepResult) ([]byte, error) {
	var buf bytes.Buffer

	title := result.PlaylistTitle
	if title == "" {
		title = fmt.Sprintf("%s Concert Prep", result.ArtistName)
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))

	buf.WriteString(fmt.Sprintf("**Artist**: %s\n", result.ArtistName))
	if result.SetlistFound {
		buf.WriteString(fmt.Sprintf("**Setlist**: %s (%d tracks)\n", result.TourTitle, result.SetlistTrackCount))
	}
	buf.WriteString(fmt.Sprintf("**Liked tracks**: %d\n", result.LikedCount))
	buf.WriteString(fmt.Sprintf("**New to you**: %d\n", len(result.UnheardTracks)))
	if result.PlaylistURL != "" {
		buf.WriteString(fmt.Sprintf("**Playlist**: %s\n", result.PlaylistURL))
	}
	buf.WriteString("\n")

	buf.WriteString("## Tracks to learn\n\n")
	for i, track := range result.UnheardTracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, joinArtists(track), track.Name))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a prep result to a plain text report.
func ExportToText(result *tasks.PrepResult) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Artist: %s\n", result.ArtistName))
	if result.SetlistFound {
		buf.WriteString(fmt.Sprintf("Setlist: %s\n", result.TourTitle))
	}
	if result.PlaylistURL != "" {
		buf.WriteString(fmt.Sprintf("Playlist: %s\n", result.PlaylistURL))
	}
	buf.WriteString(fmt.Sprintf("Tracks to learn: %d\n\n", len(result.UnheardTracks)))

	for i, track := range result.UnheardTracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, joinArtists(track), track.Name))
	}

	return buf.Bytes(), nil
}

// ToSummaryJSON generates a JSON representation of the run summary (without tracks).
func ToSummaryJSON(result *tasks.PrepResult) ([]byte, error) {
	summary := struct {
		Artist       string `json:"artist"`
		TourTitle    string `json:"tour_title,omitempty"`
		Liked        int    `json:"liked_tracks"`
		Unheard      int    `json:"unheard_tracks"`
		Added        int    `json:"added_tracks"`
		PlaylistURL  string `json:"playlist_url,omitempty"`
		NothingToAdd bool   `json:"nothing_to_add"`
	}{
		Artist:       result.ArtistName,
		TourTitle:    result.TourTitle,
		Liked:        result.LikedCount,
		Unheard:      len(result.UnheardTracks),
		Added:        result.AddedCount,
		PlaylistURL:  result.PlaylistURL,
		NothingToAdd: result.NothingToAdd,
	}
	return shared.MarshalJSON(summary, true)
}

// baseName derives a filesystem-friendly default base from the artist name.
func baseName(result *tasks.PrepResult) string {
	base := strings.ToLower(strings.TrimSpace(result.ArtistName))
	base = strings.ReplaceAll(base, " ", "_")
	if base == "" {
		base = "prep"
	}
	return base + "_prep"
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile  string
	SummaryFile string
}

// WriteCSVExport writes the unheard-track CSV with an accompanying summary JSON file.
//
// Defaults the base filename to the artist name & creates {base}_tracks.csv and {base}_summary.json
func WriteCSVExport(result *tasks.PrepResult, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = baseName(result)
	}

	csvData, err := ExportToCSV(result)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := baseFilepath + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	summaryJSON, err := ToSummaryJSON(result)
	if err != nil {
		return nil, fmt.Errorf("failed to generate summary JSON: %w", err)
	}

	summaryFile := baseFilepath + "_summary.json"
	if err := os.WriteFile(summaryFile, summaryJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write summary file: %w", err)
	}

	return &CSVExportResult{
		TracksFile:  tracksFile,
		SummaryFile: summaryFile,
	}, nil
}

// WriteMarkdownExport writes the Markdown report.
//
// Defaults to {base}_report.md as the filename.
func WriteMarkdownExport(result *tasks.PrepResult, filepath string) (string, error) {
	if filepath == "" {
		filepath = baseName(result) + "_report.md"
	}

	mdData, err := ExportToMarkdown(result)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	if err := os.WriteFile(filepath, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return filepath, nil
}

// WriteTextExport writes the plain text report.
//
// Defaults to {base}_tracks.txt as the filename.
func WriteTextExport(result *tasks.PrepResult, filepath string) (string, error) {
	if filepath == "" {
		filepath = baseName(result) + "_tracks.txt"
	}

	textData, err := ExportToText(result)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
