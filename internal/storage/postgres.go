package storage

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresOptions locates the crawler's Postgres server. Every network lives
// in its own database on that server.
type PostgresOptions struct {
	Host     string
	Port     int
	User     string
	Password string
	SSLMode  string
}

// DSN builds a connection URL for one database
func (o PostgresOptions) DSN(database string) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(o.Host, strconv.Itoa(o.Port)),
		Path:   "/" + database,
	}
	if o.User != "" {
		if o.Password != "" {
			u.User = url.UserPassword(o.User, o.Password)
		} else {
			u.User = url.User(o.User)
		}
	}
	if o.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {o.SSLMode}}.Encode()
	}
	return u.String()
}

// Postgres reads a crawler database through a connection pool
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to the database and verifies the connection
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// PostgresOpener connects to the named database on the configured server
func PostgresOpener(opts PostgresOptions) Opener {
	return func(ctx context.Context, database string) (Source, error) {
		return NewPostgres(ctx, opts.DSN(database))
	}
}

// CrawlIDs returns up to limit crawl ids in ascending order
func (p *Postgres) CrawlIDs(ctx context.Context, limit int) ([]int64, error) {
	rows, err := p.pool.Query(ctx,
		"SELECT DISTINCT crawl_id::bigint FROM neighbors ORDER BY 1 LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load crawl ids: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to scan crawl ids: %w", err)
	}
	return ids, nil
}

// NeighborRows returns the neighbor rows of the given crawls ordered by crawl
// and peer
func (p *Postgres) NeighborRows(ctx context.Context, crawlIDs []int64) ([]NeighborRow, error) {
	if len(crawlIDs) == 0 {
		return nil, nil
	}

	rows, err := p.pool.Query(ctx, `
		SELECT crawl_id::bigint, peer_id::text, neighbor_ids::text[]
		FROM neighbors
		WHERE crawl_id = ANY($1)
	`, crawlIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load neighbors: %w", err)
	}

	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (NeighborRow, error) {
		var r NeighborRow
		err := row.Scan(&r.CrawlID, &r.PeerID, &r.NeighborIDs)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan neighbors: %w", err)
	}
	return result, nil
}

// Addresses returns the host part of the multi addresses of the peers crawled
// in a crawl
func (p *Postgres) Addresses(ctx context.Context, crawlID int64) ([]string, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT host(ma.addr)
		FROM multi_addresses ma
		JOIN peers_x_multi_addresses pxma ON ma.id = pxma.multi_address_id
		JOIN neighbors n ON pxma.peer_id = n.peer_id
		WHERE n.crawl_id = $1 AND ma.addr IS NOT NULL
	`, crawlID)
	if err != nil {
		return nil, fmt.Errorf("failed to load addresses: %w", err)
	}

	addrs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan addresses: %w", err)
	}
	return addrs, nil
}

// CountryFrequencies counts multi addresses per country. A missing country
// is returned as "".
func (p *Postgres) CountryFrequencies(ctx context.Context) ([]CountryCount, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT COALESCE(country, ''), COUNT(*)
		FROM multi_addresses
		GROUP BY country
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load country frequencies: %w", err)
	}

	counts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (CountryCount, error) {
		var c CountryCount
		err := row.Scan(&c.Country, &c.Frequency)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan country frequencies: %w", err)
	}
	return counts, nil
}

// AvgDialDurations returns the mean dial duration in seconds per peer
func (p *Postgres) AvgDialDurations(ctx context.Context) ([]DialDuration, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT v.peer_id::text, AVG(EXTRACT(EPOCH FROM v.dial_duration))::float8
		FROM visits v
		WHERE v.dial_duration IS NOT NULL
		GROUP BY v.peer_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load dial durations: %w", err)
	}

	durations, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (DialDuration, error) {
		var d DialDuration
		var avg *float64
		if err := row.Scan(&d.PeerID, &avg); err != nil {
			return d, err
		}
		if avg != nil {
			d.AvgSeconds, d.Valid = *avg, true
		}
		return d, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan dial durations: %w", err)
	}
	return durations, nil
}

// Close releases the pool
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
