// Package backup dumps and restores the raw collections behind the
// application. Archives are plain JSON; per-collection CSV dumps exist for
// spreadsheet workflows. Restores upsert by id in sequential chunks kept
// safely below the store's per-batch ceiling.
package backup

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/idara-sms/schoolbooks-api/internal/store"
)

// chunkSize stays under the backend's documented 500-op batch ceiling.
const chunkSize = 450

const archiveVersion = "1.0"

// Metadata describes an archive.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// Archive is a full dump: collection -> id -> document.
type Archive struct {
	Collections map[string]map[string]store.Document `json:"collections"`
	Metadata    Metadata                             `json:"metadata"`
}

type Service struct {
	store store.Store
	log   zerolog.Logger
	now   func() time.Time
}

func NewService(st store.Store, log zerolog.Logger) *Service {
	return &Service{store: st, log: log, now: time.Now}
}

// Dump reads every backup collection in full.
func (s *Service) Dump(ctx context.Context) (Archive, error) {
	archive := Archive{
		Collections: make(map[string]map[string]store.Document),
		Metadata:    Metadata{Timestamp: s.now(), Version: archiveVersion},
	}

	for _, collection := range store.BackupCollections {
		s.log.Info().Str("collection", collection).Msg("backing up collection")
		docs, err := s.store.List(ctx, collection, store.ListOptions{})
		if err != nil {
			return Archive{}, fmt.Errorf("failed to back up %s: %w", collection, err)
		}
		byID := make(map[string]store.Document, len(docs))
		for _, doc := range docs {
			id, _ := doc["id"].(string)
			if id == "" {
				continue
			}
			stored := make(store.Document, len(doc))
			for k, v := range doc {
				if k == "id" {
					continue
				}
				stored[k] = v
			}
			byID[id] = stored
		}
		archive.Collections[collection] = byID
	}
	return archive, nil
}

// DumpJSON renders a full archive as indented JSON.
func (s *Service) DumpJSON(ctx context.Context) ([]byte, error) {
	archive, err := s.Dump(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(archive, "", "  ")
}

// Restore merges an archive back into the store. Documents are upserted by
// id in chunks committed sequentially, never in parallel; collections the
// archive does not contain are left untouched.
func (s *Service) Restore(ctx context.Context, archive Archive) error {
	for _, collection := range store.BackupCollections {
		byID, ok := archive.Collections[collection]
		if !ok || len(byID) == 0 {
			continue
		}
		s.log.Info().Str("collection", collection).Int("count", len(byID)).Msg("restoring collection")

		ids := make([]string, 0, len(byID))
		for id := range byID {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		chunk := make([]store.Document, 0, chunkSize)
		for _, id := range ids {
			doc := make(store.Document, len(byID[id])+1)
			for k, v := range byID[id] {
				doc[k] = v
			}
			doc["id"] = id
			chunk = append(chunk, doc)

			if len(chunk) == chunkSize {
				if err := s.store.PutMany(ctx, collection, chunk); err != nil {
					return fmt.Errorf("failed to restore %s: %w", collection, err)
				}
				chunk = chunk[:0]
			}
		}
		if len(chunk) > 0 {
			if err := s.store.PutMany(ctx, collection, chunk); err != nil {
				return fmt.Errorf("failed to restore %s: %w", collection, err)
			}
		}
	}
	return nil
}

// RestoreJSON parses an archive produced by DumpJSON and restores it.
func (s *Service) RestoreJSON(ctx context.Context, r io.Reader) error {
	var archive Archive
	if err := json.NewDecoder(r).Decode(&archive); err != nil {
		return fmt.Errorf("failed to parse backup file: %w", err)
	}
	return s.Restore(ctx, archive)
}

// DumpCollectionCSV renders one collection as CSV. The header is the union
// of all field keys across the exported rows with id forced first; fields
// containing commas or quotes get doubled-quote escaping.
func (s *Service) DumpCollectionCSV(ctx context.Context, collection string) ([]byte, error) {
	docs, err := s.store.List(ctx, collection, store.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", collection, err)
	}

	keySet := map[string]bool{}
	for _, doc := range docs {
		for k := range doc {
			if k != "id" {
				keySet[k] = true
			}
		}
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	header := append([]string{"id"}, keys...)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for _, doc := range docs {
		row := make([]string, len(header))
		for i, key := range header {
			row[i] = fieldString(doc[key])
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// RestoreCollectionCSV re-parses a CSV dump and upserts rows by id; rows
// without an id get a freshly generated one.
func (s *Service) RestoreCollectionCSV(ctx context.Context, collection string, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err == io.EOF {
		return 0, fmt.Errorf("empty file")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read header: %w", err)
	}

	var docs []store.Document
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read row: %w", err)
		}
		doc := make(store.Document, len(header))
		for i, key := range header {
			if i >= len(row) || row[i] == "" {
				continue
			}
			doc[key] = row[i]
		}
		if id, _ := doc["id"].(string); id == "" {
			doc["id"] = uuid.NewString()
		}
		docs = append(docs, doc)
	}

	for start := 0; start < len(docs); start += chunkSize {
		end := start + chunkSize
		if end > len(docs) {
			end = len(docs)
		}
		if err := s.store.PutMany(ctx, collection, docs[start:end]); err != nil {
			return 0, fmt.Errorf("failed to restore %s: %w", collection, err)
		}
	}
	return len(docs), nil
}

func fieldString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case time.Time:
		return value.Format(time.RFC3339)
	case float64:
		// Trim the ".000000" noise for integral amounts.
		if value == float64(int64(value)) {
			return fmt.Sprintf("%d", int64(value))
		}
		return fmt.Sprintf("%g", value)
	default:
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(raw)
	}
}
