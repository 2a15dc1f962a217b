// package formatter provides functions to export liked tracks to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/desertthunder/swipebeats/internal/models"
)

// Format names an export format accepted by [Export].
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
)

// ParseFormat maps a user supplied format name (including the "md" and "txt" aliases) to a [Format].
func ParseFormat(name string) (Format, error) {
	switch name {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (csv, markdown, text, json)", name)
	}
}

// Extension returns the file extension used for the format.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatText:
		return ".txt"
	default:
		return "." + string(f)
	}
}

// Export renders records in the given format.
func Export(records []*models.LikeRecord, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(records)
	case FormatMarkdown:
		return ExportToMarkdown(records, "")
	case FormatText:
		return ExportToText(records)
	case FormatJSON:
		return ExportToJSON(records)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// ExportToCSV converts liked tracks to CSV format with columns: TrackID, Title, Artist, Genre, PreviewURL, CollectionURL, LikedAt
func ExportToCSV(records []*models.LikeRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"TrackID", "Title", "Artist", "Genre", "PreviewURL", "CollectionURL", "LikedAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, rec := range records {
		row := []string{
			strconv.FormatInt(rec.TrackID(), 10),
			rec.TrackName(),
			rec.ArtistName(),
			rec.PrimaryGenreName(),
			rec.PreviewURL(),
			rec.CollectionViewURL(),
			rec.CreatedAt().UTC().Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts liked tracks to Markdown with an optional cover image
func ExportToMarkdown(records []*models.LikeRecord, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Liked Tracks\n\n")

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", len(records))

	if len(records) == 0 {
		buf.WriteString("_No liked tracks yet._\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("## Tracks\n\n")
	for i, rec := range records {
		title := rec.TrackName()
		if rec.CollectionViewURL() != "" {
			title = fmt.Sprintf("[%s](%s)", rec.TrackName(), rec.CollectionViewURL())
		}
		genrePart := ""
		if rec.PrimaryGenreName() != "" {
			genrePart = fmt.Sprintf(" (%s)", rec.PrimaryGenreName())
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s\n", i+1, rec.ArtistName(), title, genrePart)
	}

	return buf.Bytes(), nil
}

// ExportToText converts liked tracks to plain text format
func ExportToText(records []*models.LikeRecord) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Liked tracks: %d\n\n", len(records))
	for i, rec := range records {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, rec.ArtistName(), rec.TrackName())
	}

	return buf.Bytes(), nil
}

// likeJSON is the exported shape of one liked track.
type likeJSON struct {
	TrackID       int64     `json:"track_id"`
	Title         string    `json:"title"`
	Artist        string    `json:"artist"`
	Genre         string    `json:"genre,omitempty"`
	ArtworkURL    string    `json:"artwork_url,omitempty"`
	PreviewURL    string    `json:"preview_url,omitempty"`
	CollectionURL string    `json:"collection_url,omitempty"`
	LikedAt       time.Time `json:"liked_at"`
}

// ExportToJSON converts liked tracks to an indented JSON array
func ExportToJSON(records []*models.LikeRecord) ([]byte, error) {
	out := make([]likeJSON, 0, len(records))
	for _, rec := range records {
		out = append(out, likeJSON{
			TrackID:       rec.TrackID(),
			Title:         rec.TrackName(),
			Artist:        rec.ArtistName(),
			Genre:         rec.PrimaryGenreName(),
			ArtworkURL:    rec.ArtworkURL(),
			PreviewURL:    rec.PreviewURL(),
			CollectionURL: rec.CollectionViewURL(),
			LikedAt:       rec.CreatedAt().UTC(),
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// WriteExport renders records in format and writes them to path.
//
// Defaults to liked_tracks{ext} as the filename.
func WriteExport(records []*models.LikeRecord, format Format, path string) (string, error) {
	if path == "" {
		path = "liked_tracks" + format.Extension()
	}

	data, err := Export(records, format)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}

	return path, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports liked tracks to Markdown format in a dedicated directory.
//
// Directory name defaults to "liked_tracks". The cover is the artwork of the most recent like
// (the first record); a failed download is reported on stderr and the export continues without it.
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownExport(records []*models.LikeRecord, outputDir string, withCover bool) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = "liked_tracks"
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if withCover && len(records) > 0 && records[0].ArtworkURL() != "" {
		imageData, err := DownloadImage(records[0].ArtworkURL())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := filepath.Join(outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(records, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}
