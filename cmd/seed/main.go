package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

// Bulk loader for the postal coordinate cache. Point it at a
// plz,lat,lng CSV (e.g. an OpenGeoDB export) to prefill geo.postal_coordinates
// so the API never has to geocode common codes at request time.

// CLI flags
var (
	csvPath = flag.String("csv", "", "Path to the source CSV (required)")
	dsn     = flag.String("dsn", os.Getenv("DATABASE_URL"), "Postgres DSN (default: env DATABASE_URL)")
	dryRun  = flag.Bool("dry-run", false, "Parse + validate only; no DB writes")
	confirm = flag.Bool("confirm", false, "Required to write to the database")
)

// CSV contract
// plz,lat,lng
// One row per postal code; duplicates in the file are rejected.

type CoordCSV struct {
	PLZ string
	Lat float64
	Lng float64
}

var plzRe = regexp.MustCompile(`^\d{5}$`)

func main() {
	_ = godotenv.Load(".env.local")
	flag.Parse()
	if *csvPath == "" {
		fatalf("--csv is required")
	}
	if *dsn == "" {
		fatalf("--dsn not provided and DATABASE_URL not set")
	}

	rows, err := loadCSV(*csvPath)
	if err != nil {
		fatalf("CSV error: %v", err)
	}

	if err := validateRows(rows); err != nil {
		fatalf("CSV validation failed: %v", err)
	}

	fmt.Printf("Loaded %d postal codes from %s\n", len(rows), *csvPath)

	if *dryRun {
		fmt.Println("Plan preview:")
		fmt.Printf("  Rows to insert: %d\n", len(rows))
		fmt.Println("  Target table: geo.postal_coordinates (existing rows kept)")
		fmt.Println("Dry run complete. No changes made.")
		return
	}

	if !*confirm {
		fatalf("Refusing to run without --confirm. Add --dry-run to preview.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		fatalf("connect: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		fatalf("ping: %v", err)
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		fatalf("begin tx: %v", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op if already committed
	}()

	var before int64
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM geo.postal_coordinates`).Scan(&before); err != nil {
		fatalf("pre-count: %v", err)
	}
	fmt.Printf("Before: %d cached coordinates\n", before)

	inserted, err := insertAll(ctx, tx, rows)
	if err != nil {
		fatalf("insert data: %v", err)
	}

	var after int64
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM geo.postal_coordinates`).Scan(&after); err != nil {
		fatalf("post-count: %v", err)
	}
	fmt.Printf("After:  %d cached coordinates (%d inserted, %d already present)\n",
		after, inserted, int64(len(rows))-inserted)

	if err := tx.Commit(); err != nil {
		fatalf("commit: %v", err)
	}
	fmt.Println("Seed complete ✅")
}

func loadCSV(path string) ([]CoordCSV, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	r := csv.NewReader(br)
	r.TrimLeadingSpace = true

	headers, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := map[string]int{}
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	required := []string{"plz", "lat", "lng"}
	for _, k := range required {
		if _, ok := idx[k]; !ok {
			return nil, fmt.Errorf("missing required column: %s", k)
		}
	}

	var out []CoordCSV
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv read: %w", err)
		}

		row := CoordCSV{PLZ: strings.TrimSpace(rec[idx["plz"]])}
		row.Lat, err = strconv.ParseFloat(strings.TrimSpace(rec[idx["lat"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("parse lat for %s: %w", row.PLZ, err)
		}
		row.Lng, err = strconv.ParseFloat(strings.TrimSpace(rec[idx["lng"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("parse lng for %s: %w", row.PLZ, err)
		}

		out = append(out, row)
	}
	return out, nil
}

func validateRows(rows []CoordCSV) error {
	if len(rows) == 0 {
		return fmt.Errorf("CSV has no data rows")
	}
	seen := make(map[string]struct{}, len(rows))
	for i, r := range rows {
		if !plzRe.MatchString(r.PLZ) {
			return fmt.Errorf("row %d: invalid postal code '%s'", i+2, r.PLZ)
		}
		if r.Lat < -90 || r.Lat > 90 {
			return fmt.Errorf("row %d: latitude %f out of range", i+2, r.Lat)
		}
		if r.Lng < -180 || r.Lng > 180 {
			return fmt.Errorf("row %d: longitude %f out of range", i+2, r.Lng)
		}
		if _, dup := seen[r.PLZ]; dup {
			return fmt.Errorf("row %d: duplicate postal code '%s'", i+2, r.PLZ)
		}
		seen[r.PLZ] = struct{}{}
	}
	return nil
}

func insertAll(ctx context.Context, tx *sql.Tx, rows []CoordCSV) (int64, error) {
	// Existing rows win; a manual correction in the DB survives reseeding.
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO geo.postal_coordinates (postal_code, lat, lng, created_at)
	      VALUES ($1, $2, $3, now())
	      ON CONFLICT (postal_code) DO NOTHING`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	var inserted int64
	for _, r := range rows {
		res, err := stmt.ExecContext(ctx, r.PLZ, r.Lat, r.Lng)
		if err != nil {
			return inserted, fmt.Errorf("insert %s: %w", r.PLZ, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("rows affected for %s: %w", r.PLZ, err)
		}
		inserted += n
	}
	return inserted, nil
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
