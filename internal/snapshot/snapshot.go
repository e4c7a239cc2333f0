package snapshot

import (
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sozblock/internal/config"

	"github.com/rs/zerolog/log"
)

// Error variables for the snapshot store
var (
	ErrMetadataFileNotFound = errors.New("snapshot metadata file not found")
	ErrDecodeMetadataFile   = errors.New("failed to decode snapshot metadata")
	ErrSnapshotTooOld       = errors.New("stored snapshot is too old")
	ErrOpenDataFile         = errors.New("failed to open stored snapshot data file")
	ErrFetchSource          = errors.New("error fetching page from source")
	ErrSaveSnapshotDir      = errors.New("failed to create directory for snapshot files")
	ErrCreateDataFile       = errors.New("failed to create snapshot data file")
	ErrWriteData            = errors.New("failed to write snapshot data to file")
	ErrMarshalMetadata      = errors.New("failed to marshal snapshot metadata")
	ErrWriteMetadataFile    = errors.New("failed to write snapshot metadata to file")
	ErrRemoveDataFile       = errors.New("failed to remove stored snapshot data file")
	ErrRemoveMetaFile       = errors.New("failed to remove stored snapshot metadata file")
)

// snapshotTTL bounds how long a stored page is replayed before the source
// is fetched again.
const snapshotTTL = 24 * time.Hour

// Metadata describes one stored page.
type Metadata struct {
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
	Description string    `json:"description,omitempty"`
}

// Store keeps fetched pages on disk so repeated development runs replay
// them instead of hammering the forum. Disabled stores pass every fetch
// straight through.
type Store struct {
	enabled bool
	path    string
}

func NewStore(cfg *config.Config) *Store {
	return &Store{
		enabled: cfg.Store.StoreResponses,
		path:    cfg.Store.StorePath,
	}
}

func (s *Store) Enabled() bool {
	return s != nil && s.enabled
}

// GetPage returns the stored page for pageURL when it is fresh enough,
// otherwise fetches through fetch and stores the result for next time.
func (s *Store) GetPage(pageURL string, fetch func() (io.Reader, error)) (io.Reader, *Metadata, error) {
	name := nameFromURL(pageURL)
	dataFilename, metaFilename := s.filenames(name)

	reader, meta, err := s.stored(dataFilename, metaFilename)
	if err == nil {
		log.Info().Str("file", dataFilename).Str("url", meta.URL).Msg("Using stored page snapshot")
		return reader, meta, nil
	}
	log.Debug().Err(err).Str("file", dataFilename).Msg("No usable snapshot, fetching from source")

	body, fetchErr := fetch()
	if fetchErr != nil {
		log.Err(fetchErr).Str("url", pageURL).Msg("Failed to fetch page for snapshot")
		return nil, nil, errors.Join(ErrFetchSource, fetchErr)
	}

	metadata := Metadata{
		URL:         pageURL,
		CreatedAt:   time.Now(),
		Description: strings.Join([]string{"Page snapshot taken at", time.Now().Format(time.RFC3339)}, " "),
	}

	if err := s.save(dataFilename, metaFilename, body, metadata); err != nil {
		log.Err(err).Str("dataFile", dataFilename).Str("metaFile", metaFilename).Msg("Failed to save page snapshot")
		return nil, nil, err
	}
	log.Info().Str("dataFile", dataFilename).Str("url", pageURL).Msg("Page snapshot saved")

	// Reopen from disk so the caller gets a fresh reader; the original was
	// consumed by the save.
	return s.stored(dataFilename, metaFilename)
}

// Remove deletes both data and metadata files for a page.
func (s *Store) Remove(pageURL string) error {
	if !s.Enabled() {
		return nil
	}

	dataFilename, metaFilename := s.filenames(nameFromURL(pageURL))

	if err := os.Remove(dataFilename); err == nil {
		log.Info().Str("file", dataFilename).Msg("Removed stored snapshot data file")
	} else if !os.IsNotExist(err) {
		log.Err(err).Str("file", dataFilename).Msg("Failed to remove stored snapshot data file")
		return ErrRemoveDataFile
	}

	if err := os.Remove(metaFilename); err == nil {
		log.Info().Str("file", metaFilename).Msg("Removed stored snapshot metadata file")
	} else if !os.IsNotExist(err) {
		log.Err(err).Str("file", metaFilename).Msg("Failed to remove stored snapshot metadata file")
		return ErrRemoveMetaFile
	}

	return nil
}

// stored opens and returns a reader for the stored page and its metadata.
func (s *Store) stored(dataFilename, metaFilename string) (io.Reader, *Metadata, error) {
	metaFile, err := os.Open(metaFilename)
	if err != nil {
		return nil, nil, ErrMetadataFileNotFound
	}
	defer metaFile.Close()

	metadata := &Metadata{}
	if err := json.NewDecoder(metaFile).Decode(metadata); err != nil {
		log.Err(err).Str("file", metaFilename).Msg("Failed to decode snapshot metadata")
		return nil, nil, ErrDecodeMetadataFile
	}

	if time.Since(metadata.CreatedAt) > snapshotTTL {
		log.Info().
			Time("created", metadata.CreatedAt).
			Str("url", metadata.URL).
			Msg("Stored snapshot is too old")
		return nil, metadata, ErrSnapshotTooOld
	}

	dataFile, err := os.Open(dataFilename)
	if err != nil {
		log.Err(err).Str("file", dataFilename).Msg("Failed to open stored snapshot data file")
		return nil, metadata, ErrOpenDataFile
	}
	return dataFile, metadata, nil
}

// save writes the page body and its metadata to separate files.
func (s *Store) save(dataFilename, metaFilename string, data io.Reader, metadata Metadata) error {
	dir := filepath.Dir(dataFilename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Err(err).Str("directory", dir).Msg("Failed to create directory for snapshot files")
		return ErrSaveSnapshotDir
	}

	dataFile, err := os.Create(dataFilename)
	if err != nil {
		log.Err(err).Str("file", dataFilename).Msg("Failed to create snapshot data file")
		return ErrCreateDataFile
	}
	defer dataFile.Close()

	if _, err := io.Copy(dataFile, data); err != nil {
		log.Err(err).Str("file", dataFilename).Msg("Failed to write snapshot data to file")
		return ErrWriteData
	}

	metaJSON, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		log.Err(err).Interface("metadata", metadata).Msg("Failed to marshal snapshot metadata")
		return ErrMarshalMetadata
	}
	if err := os.WriteFile(metaFilename, metaJSON, 0644); err != nil {
		log.Err(err).Str("file", metaFilename).Msg("Failed to write snapshot metadata to file")
		return ErrWriteMetadataFile
	}

	return nil
}

func (s *Store) filenames(name string) (dataFilename, metaFilename string) {
	base := filepath.Join(s.path, name+"_page")
	return base + ".dat", base + ".meta.json"
}

// nameFromURL flattens a page URL into a stable filename. Pages differing
// only by scheme or host collide on purpose; the store serves one forum.
func nameFromURL(pageURL string) string {
	name := pageURL
	if u, err := url.Parse(pageURL); err == nil {
		name = u.Path
		if u.RawQuery != "" {
			name += "_" + u.RawQuery
		}
	}

	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)
	name = strings.Trim(name, "_")

	if name == "" {
		return "index"
	}
	return name
}
