package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// SQLite is a crawl database stored in a local SQLite file. It mirrors the
// subset of the crawler schema the analyses read.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates the database file and initializes the schema
func NewSQLite(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &SQLite{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// SQLiteOpener opens <dir>/<database>.db. Missing files are an error rather
// than being created empty.
func SQLiteOpener(dir string) Opener {
	return func(ctx context.Context, database string) (Source, error) {
		path := filepath.Join(dir, database+".db")
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to open crawl database %s: %w", database, err)
		}
		return NewSQLite(path)
	}
}

// initSchema creates tables and indices if they don't exist.
// neighbor_ids holds a JSON array of peer ids, or NULL.
func (s *SQLite) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS neighbors (
		crawl_id INTEGER NOT NULL,
		peer_id TEXT NOT NULL,
		neighbor_ids TEXT,
		PRIMARY KEY (crawl_id, peer_id)
	);

	CREATE TABLE IF NOT EXISTS visits (
		visit_id INTEGER PRIMARY KEY AUTOINCREMENT,
		peer_id TEXT NOT NULL,
		dial_duration REAL
	);

	CREATE TABLE IF NOT EXISTS multi_addresses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		addr TEXT,
		country TEXT
	);

	CREATE TABLE IF NOT EXISTS peers_x_multi_addresses (
		peer_id TEXT NOT NULL,
		multi_address_id INTEGER NOT NULL,
		FOREIGN KEY (multi_address_id) REFERENCES multi_addresses(id),
		UNIQUE(peer_id, multi_address_id)
	);

	CREATE INDEX IF NOT EXISTS idx_neighbors_peer ON neighbors(peer_id);
	CREATE INDEX IF NOT EXISTS idx_visits_peer ON visits(peer_id);
	CREATE INDEX IF NOT EXISTS idx_pxma_peer ON peers_x_multi_addresses(peer_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// UpsertNeighbors records the neighbors a peer reported in a crawl.
// A nil slice is stored as NULL.
func (s *SQLite) UpsertNeighbors(crawlID int64, peerID string, neighborIDs []string) error {
	var encoded sql.NullString
	if neighborIDs != nil {
		raw, err := json.Marshal(neighborIDs)
		if err != nil {
			return fmt.Errorf("failed to encode neighbor ids: %w", err)
		}
		encoded = sql.NullString{String: string(raw), Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO neighbors (crawl_id, peer_id, neighbor_ids)
		VALUES (?, ?, ?)
		ON CONFLICT(crawl_id, peer_id) DO UPDATE SET
			neighbor_ids = EXCLUDED.neighbor_ids
	`, crawlID, peerID, encoded)
	if err != nil {
		return fmt.Errorf("failed to upsert neighbors: %w", err)
	}
	return nil
}

// InsertVisit records one dial attempt. A nil duration is stored as NULL.
func (s *SQLite) InsertVisit(peerID string, dialSeconds *float64) error {
	var d sql.NullFloat64
	if dialSeconds != nil {
		d = sql.NullFloat64{Float64: *dialSeconds, Valid: true}
	}

	if _, err := s.db.Exec("INSERT INTO visits (peer_id, dial_duration) VALUES (?, ?)", peerID, d); err != nil {
		return fmt.Errorf("failed to insert visit: %w", err)
	}
	return nil
}

// InsertAddress stores a multi address and links it to a peer.
// An empty country is stored as NULL. Returns the multi address id.
func (s *SQLite) InsertAddress(peerID, address, country string) (int64, error) {
	res, err := s.db.Exec("INSERT INTO multi_addresses (addr, country) VALUES (?, ?)",
		address, sql.NullString{String: country, Valid: country != ""})
	if err != nil {
		return 0, fmt.Errorf("failed to insert multi address: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve multi address id: %w", err)
	}

	if _, err := s.db.Exec(`
		INSERT OR IGNORE INTO peers_x_multi_addresses (peer_id, multi_address_id)
		VALUES (?, ?)
	`, peerID, id); err != nil {
		return 0, fmt.Errorf("failed to link multi address: %w", err)
	}

	return id, nil
}

// CrawlIDs returns up to limit crawl ids in ascending order
func (s *SQLite) CrawlIDs(ctx context.Context, limit int) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT crawl_id FROM neighbors ORDER BY crawl_id LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load crawl ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan crawl id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating crawl ids: %w", err)
	}

	return ids, nil
}

// NeighborRows returns the neighbor rows of the given crawls ordered by crawl
// and peer. Unreadable neighbor lists are returned as nil.
func (s *SQLite) NeighborRows(ctx context.Context, crawlIDs []int64) ([]NeighborRow, error) {
	if len(crawlIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(crawlIDs)), ",")
	args := make([]any, len(crawlIDs))
	for i, id := range crawlIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT crawl_id, peer_id, neighbor_ids
		FROM neighbors
		WHERE crawl_id IN (`+placeholders+`)
		ORDER BY crawl_id, peer_id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load neighbors: %w", err)
	}
	defer rows.Close()

	var result []NeighborRow
	for rows.Next() {
		var row NeighborRow
		var encoded sql.NullString
		if err := rows.Scan(&row.CrawlID, &row.PeerID, &encoded); err != nil {
			return nil, fmt.Errorf("failed to scan neighbors: %w", err)
		}

		if encoded.Valid {
			if err := json.Unmarshal([]byte(encoded.String), &row.NeighborIDs); err != nil {
				logrus.Warnf("Crawl %d: unreadable neighbor_ids for peer %s, treating as empty: %v",
					row.CrawlID, row.PeerID, err)
				row.NeighborIDs = nil
			}
		}

		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating neighbors: %w", err)
	}

	return result, nil
}

// Addresses returns the multi addresses of the peers crawled in a crawl
func (s *SQLite) Addresses(ctx context.Context, crawlID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ma.addr
		FROM multi_addresses ma
		JOIN peers_x_multi_addresses pxma ON ma.id = pxma.multi_address_id
		JOIN neighbors n ON pxma.peer_id = n.peer_id
		WHERE n.crawl_id = ? AND ma.addr IS NOT NULL
	`, crawlID)
	if err != nil {
		return nil, fmt.Errorf("failed to load addresses: %w", err)
	}
	defer rows.Close()

	var addrs []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addrs = append(addrs, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating addresses: %w", err)
	}

	return addrs, nil
}

// CountryFrequencies counts multi addresses per country. A missing country
// is returned as "".
func (s *SQLite) CountryFrequencies(ctx context.Context) ([]CountryCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT country, COUNT(*) AS frequency
		FROM multi_addresses
		GROUP BY country
		ORDER BY country
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load country frequencies: %w", err)
	}
	defer rows.Close()

	var counts []CountryCount
	for rows.Next() {
		var country sql.NullString
		var c CountryCount
		if err := rows.Scan(&country, &c.Frequency); err != nil {
			return nil, fmt.Errorf("failed to scan country frequency: %w", err)
		}
		c.Country = country.String
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating country frequencies: %w", err)
	}

	return counts, nil
}

// AvgDialDurations returns the mean dial duration in seconds per peer
func (s *SQLite) AvgDialDurations(ctx context.Context) ([]DialDuration, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT peer_id, AVG(dial_duration)
		FROM visits
		WHERE dial_duration IS NOT NULL
		GROUP BY peer_id
		ORDER BY peer_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load dial durations: %w", err)
	}
	defer rows.Close()

	var durations []DialDuration
	for rows.Next() {
		var d DialDuration
		var avg sql.NullFloat64
		if err := rows.Scan(&d.PeerID, &avg); err != nil {
			return nil, fmt.Errorf("failed to scan dial duration: %w", err)
		}
		d.AvgSeconds, d.Valid = avg.Float64, avg.Valid
		durations = append(durations, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dial durations: %w", err)
	}

	return durations, nil
}

// Close closes the database connection
func (s *SQLite) Close() error {
	return s.db.Close()
}
