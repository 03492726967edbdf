// Package archive pulls the subtitle file out of the ZIP and RAR archives
// served by the upstream site.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/nwaples/rardecode/v2"
	"github.com/rs/zerolog"

	"github.com/titulkysubs/titulkysubs/internal/apperrors"
	"github.com/titulkysubs/titulkysubs/internal/config"
)

const (
	// maxEntrySize caps a single uncompressed entry; subtitles are far smaller.
	maxEntrySize = 20 * 1024 * 1024
	// maxTotalSize caps the declared uncompressed size of a whole archive.
	maxTotalSize = 50 * 1024 * 1024
)

// Format identifies an archive container.
type Format string

const (
	FormatUnknown Format = "unknown"
	FormatZIP     Format = "zip"
	FormatRAR     Format = "rar"
)

// SubtitleSuffixes are the entry name suffixes recognized as subtitles, in priority order.
var SubtitleSuffixes = []string{".srt", ".sub"}

var (
	zipMagics = [][]byte{
		{'P', 'K', 0x03, 0x04},
		{'P', 'K', 0x05, 0x06}, // empty archive
		{'P', 'K', 0x07, 0x08}, // spanned archive
	}
	rarMagic = []byte("Rar!\x1a\x07")
)

// DetectFormat identifies data by its magic bytes.
func DetectFormat(data []byte) Format {
	for _, magic := range zipMagics {
		if bytes.HasPrefix(data, magic) {
			return FormatZIP
		}
	}
	if bytes.HasPrefix(data, rarMagic) {
		return FormatRAR
	}
	return FormatUnknown
}

// ExtractedFile is a subtitle entry read from an archive.
type ExtractedFile struct {
	Name    string
	Content []byte
}

// Ext returns the lowercased subtitle suffix of the entry name.
func (f *ExtractedFile) Ext() string {
	return strings.ToLower(path.Ext(f.Name))
}

// Extractor locates the first subtitle entry in an archive.
type Extractor struct {
	logger zerolog.Logger
}

// NewExtractor creates an extractor.
func NewExtractor() *Extractor {
	return &Extractor{logger: config.GetLogger().With().Str("component", "archive").Logger()}
}

// Extract returns the first entry whose name ends in a subtitle suffix.
// Non-archive input, unreadable archives and archives without a subtitle all
// yield *apperrors.ErrSubtitleNotFoundInArchive.
func (e *Extractor) Extract(data []byte) (*ExtractedFile, error) {
	switch format := DetectFormat(data); format {
	case FormatZIP:
		return e.extractZip(data)
	case FormatRAR:
		return e.extractRar(data)
	default:
		return nil, &apperrors.ErrSubtitleNotFoundInArchive{Format: string(format), Err: errors.New("not an archive")}
	}
}

func isSubtitleName(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range SubtitleSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// sanitizeName keeps the base name and replaces invalid UTF-8 produced by
// archivers that store names in a legacy code page.
func sanitizeName(name string) string {
	name = strings.ToValidUTF8(name, "_")
	name = strings.ReplaceAll(name, "\\", "/")
	return path.Base(name)
}

func (e *Extractor) extractZip(data []byte) (*ExtractedFile, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &apperrors.ErrSubtitleNotFoundInArchive{Format: string(FormatZIP), Err: err}
	}
	if err := detectZipBomb(reader); err != nil {
		return nil, &apperrors.ErrSubtitleNotFoundInArchive{Format: string(FormatZIP), FileCount: len(reader.File), Err: err}
	}

	e.logger.Debug().Int("fileCount", len(reader.File)).Msg("Searching ZIP archive for subtitle")

	for _, file := range reader.File {
		if file.FileInfo().IsDir() || !isSubtitleName(file.Name) {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, &apperrors.ErrSubtitleNotFoundInArchive{Format: string(FormatZIP), FileCount: len(reader.File), Err: err}
		}
		content, err := readLimited(rc)
		rc.Close()
		if err != nil {
			return nil, &apperrors.ErrSubtitleNotFoundInArchive{Format: string(FormatZIP), FileCount: len(reader.File), Err: err}
		}
		return &ExtractedFile{Name: sanitizeName(file.Name), Content: content}, nil
	}

	return nil, &apperrors.ErrSubtitleNotFoundInArchive{Format: string(FormatZIP), FileCount: len(reader.File)}
}

func (e *Extractor) extractRar(data []byte) (*ExtractedFile, error) {
	reader, err := rardecode.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, &apperrors.ErrSubtitleNotFoundInArchive{Format: string(FormatRAR), Err: err}
	}

	count := 0
	for {
		header, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &apperrors.ErrSubtitleNotFoundInArchive{Format: string(FormatRAR), FileCount: count, Err: err}
		}
		count++
		if header.IsDir || !isSubtitleName(header.Name) {
			continue
		}
		if header.UnPackedSize > maxEntrySize {
			return nil, &apperrors.ErrSubtitleNotFoundInArchive{
				Format:    string(FormatRAR),
				FileCount: count,
				Err:       fmt.Errorf("ZIP bomb detected: entry %s exceeds maximum uncompressed size", header.Name),
			}
		}
		content, err := readLimited(reader)
		if err != nil {
			return nil, &apperrors.ErrSubtitleNotFoundInArchive{Format: string(FormatRAR), FileCount: count, Err: err}
		}
		return &ExtractedFile{Name: sanitizeName(header.Name), Content: content}, nil
	}

	return nil, &apperrors.ErrSubtitleNotFoundInArchive{Format: string(FormatRAR), FileCount: count}
}

// detectZipBomb rejects archives whose declared sizes exceed the entry or total limits.
func detectZipBomb(reader *zip.Reader) error {
	var total uint64
	for _, file := range reader.File {
		if file.UncompressedSize64 > maxEntrySize {
			return fmt.Errorf("ZIP bomb detected: entry %s exceeds maximum uncompressed size (%d > %d bytes)",
				file.Name, file.UncompressedSize64, maxEntrySize)
		}
		total += file.UncompressedSize64
		if total > maxTotalSize {
			return fmt.Errorf("ZIP bomb detected: archive exceeds maximum uncompressed size (%d bytes)", maxTotalSize)
		}
	}
	return nil
}

// readLimited reads r up to maxEntrySize, failing when the entry is larger
// than its header claimed.
func readLimited(r io.Reader) ([]byte, error) {
	content, err := io.ReadAll(io.LimitReader(r, maxEntrySize+1))
	if err != nil {
		return nil, err
	}
	if len(content) > maxEntrySize {
		return nil, fmt.Errorf("ZIP bomb detected: entry exceeds maximum uncompressed size")
	}
	return content, nil
}
