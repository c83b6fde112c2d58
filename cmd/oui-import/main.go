// Command oui-import loads the IEEE OUI registry into the SQLite database
// nearby uses for vendor lookups.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/lcalzada-xor/nearby/internal/adapters/fingerprint"
)

const batchSize = 1000

func main() {
	dbPath := flag.String("db", "data/oui/ieee_oui.db", "Path to OUI database")
	txtPath := flag.String("txt", "", "IEEE oui.txt registry file")
	csvPath := flag.String("csv", "", "CSV registry file (prefix,vendor,...)")
	lookup := flag.String("lookup", "", "MAC address to resolve after import")
	flag.Parse()

	if *txtPath == "" && *csvPath == "" && *lookup == "" {
		flag.Usage()
		os.Exit(2)
	}

	db, err := fingerprint.NewOUIDatabase(*dbPath, batchSize, nil)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	if *txtPath != "" {
		n, err := db.ImportFile(ctx, *txtPath)
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		log.Printf("Imported %d entries from %s", n, *txtPath)
	}

	if *csvPath != "" {
		n, err := importCSV(ctx, db, *csvPath)
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		log.Printf("Imported %d entries from %s", n, *csvPath)
	}

	stats, err := db.GetStats(ctx)
	if err != nil {
		log.Fatalf("Failed to get stats: %v", err)
	}
	log.Printf("Database %s: %d entries, last updated %s", *dbPath, stats.TotalEntries, stats.LastUpdated)

	if *lookup != "" {
		mac, err := fingerprint.ParseMAC(*lookup)
		if err != nil {
			log.Fatalf("Invalid MAC %q: %v", *lookup, err)
		}
		vendor, err := db.LookupVendor(ctx, mac)
		if err != nil {
			log.Fatalf("Lookup %s: %v", mac, err)
		}
		fmt.Printf("%s\t%s\n", mac.OUI(), vendor)
	}
}

func importCSV(ctx context.Context, db *fingerprint.OUIDatabase, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	total := 0
	err = readCSV(f, time.Now(), func(batch []fingerprint.OUIEntry) error {
		if err := db.BulkInsertOUIs(ctx, batch); err != nil {
			return err
		}
		total += len(batch)
		return nil
	})
	return total, err
}

// readCSV parses "Mac Prefix,Vendor Name,..." rows after a header line and
// hands them to flush in batches.
func readCSV(r io.Reader, now time.Time, flush func([]fingerprint.OUIEntry) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("read header: %w", err)
	}

	entries := make([]fingerprint.OUIEntry, 0, batchSize)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			log.Printf("Warning: skipping line %d: %v", line, err)
			continue
		}
		if len(record) < 2 {
			continue
		}

		prefix := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(record[0]), "-", ":"))
		vendor := strings.TrimSpace(record[1])
		if len(prefix) != 8 || vendor == "" {
			continue
		}

		entries = append(entries, fingerprint.OUIEntry{
			Prefix:      prefix,
			Vendor:      vendor,
			VendorShort: shortVendor(vendor),
			LastUpdated: now,
		})
		if len(entries) == batchSize {
			if err := flush(entries); err != nil {
				return err
			}
			entries = entries[:0]
		}
	}

	if len(entries) > 0 {
		return flush(entries)
	}
	return nil
}

var vendorSuffixes = []string{
	" Co., Ltd.", " Co.,Ltd", " Inc.", " Inc", " Corporation", " Corp.", " Corp",
	" Ltd.", " Ltd", " Limited", " Co.", " LLC", " GmbH", " S.A.", " AG",
}

func shortVendor(vendor string) string {
	vendor = strings.TrimSpace(vendor)
	for _, s := range vendorSuffixes {
		vendor = strings.TrimSuffix(vendor, s)
	}
	if idx := strings.Index(vendor, ","); idx > 0 {
		vendor = vendor[:idx]
	}
	return strings.TrimSpace(vendor)
}
