package vector

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"
	bolt "go.etcd.io/bbolt"

	"hoadon/internal/logger"
)

// Document is one indexed receipt: the content string is what was
// embedded, kept alongside so search hits are self-contained.
type Document struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// Hit is one search result. Distance is squared Euclidean; smaller is
// closer.
type Hit struct {
	Document
	Distance float64
}

// Index stores vectors and answers nearest-neighbor queries.
type Index interface {
	Add(doc Document, vec []float32) error
	Search(query []float32, k int) ([]Hit, error)
	Remove(id string) error
	Count() (int, error)
	Close() error
}

var (
	docsBucket    = []byte("documents")
	vectorsBucket = []byte("vectors")
)

// BoltIndex is a bbolt-persisted exact-search index. Every query scans
// the whole collection; there is no approximation and no recall
// tradeoff.
type BoltIndex struct {
	db  *bolt.DB
	log zerolog.Logger
}

// OpenBolt opens or creates the index file.
func OpenBolt(path string) (*BoltIndex, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open vector index %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(docsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(vectorsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create index buckets: %w", err)
	}
	return &BoltIndex{db: db, log: logger.WithComponent("vector")}, nil
}

// Close releases the index file.
func (b *BoltIndex) Close() error {
	return b.db.Close()
}

// Add indexes one document. Re-adding an existing id overwrites it.
func (b *BoltIndex) Add(doc Document, vec []float32) error {
	if doc.ID == "" {
		return fmt.Errorf("document id is required")
	}
	if len(vec) == 0 {
		return fmt.Errorf("empty vector for document %s", doc.ID)
	}

	meta, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	err = b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(docsBucket).Put([]byte(doc.ID), meta); err != nil {
			return err
		}
		return tx.Bucket(vectorsBucket).Put([]byte(doc.ID), encodeVector(vec))
	})
	if err != nil {
		return fmt.Errorf("index document %s: %w", doc.ID, err)
	}

	b.log.Debug().Str("id", doc.ID).Int("dim", len(vec)).Msg("Document indexed")
	return nil
}

// Remove drops a document from the index. Removing an unknown id is a
// no-op.
func (b *BoltIndex) Remove(id string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(docsBucket).Delete([]byte(id)); err != nil {
			return err
		}
		return tx.Bucket(vectorsBucket).Delete([]byte(id))
	})
}

// Count returns the number of indexed documents.
func (b *BoltIndex) Count() (int, error) {
	var n int
	err := b.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(vectorsBucket).Stats().KeyN
		return nil
	})
	return n, err
}

// Search returns the k documents nearest to query by squared Euclidean
// distance, closest first. Vectors of a different dimension than the
// query are skipped rather than failing the whole search.
func (b *BoltIndex) Search(query []float32, k int) ([]Hit, error) {
	if k <= 0 {
		k = 5
	}

	var hits []Hit
	err := b.db.View(func(tx *bolt.Tx) error {
		docs := tx.Bucket(docsBucket)
		return tx.Bucket(vectorsBucket).ForEach(func(id, raw []byte) error {
			vec := decodeVector(raw)
			if len(vec) != len(query) {
				return nil
			}
			meta := docs.Get(id)
			if meta == nil {
				return nil
			}
			var doc Document
			if err := json.Unmarshal(meta, &doc); err != nil {
				return err
			}
			hits = append(hits, Hit{Document: doc, Distance: squaredL2(query, vec)})
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(raw []byte) []float32 {
	vec := make([]float32, len(raw)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return vec
}
