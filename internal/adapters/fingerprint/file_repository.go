package fingerprint

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"
	"sync"
)

// FileVendorRepository holds vendors loaded from text registries.
type FileVendorRepository struct {
	vendors map[string]string
	mu      sync.RWMutex
}

func NewFileVendorRepository() *FileVendorRepository {
	return &FileVendorRepository{vendors: make(map[string]string)}
}

// LoadFromFile merges the entries of an OUI file into the repository.
func (f *FileVendorRepository) LoadFromFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return f.Load(file)
}

// Load merges entries read from r. See ParseOUILine for the formats.
func (f *FileVendorRepository) Load(r io.Reader) error {
	entries, err := ReadOUIEntries(r)
	if err != nil {
		return err
	}

	f.mu.Lock()
	for _, e := range entries {
		f.vendors[e.Prefix] = e.Vendor
	}
	f.mu.Unlock()
	return nil
}

func (f *FileVendorRepository) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.vendors)
}

func (f *FileVendorRepository) LookupVendor(_ context.Context, mac MACAddress) (string, error) {
	f.mu.RLock()
	vendor, ok := f.vendors[mac.OUI()]
	f.mu.RUnlock()

	if !ok {
		return "", ErrVendorNotFound
	}
	return vendor, nil
}

func (f *FileVendorRepository) Close() error {
	f.mu.Lock()
	f.vendors = make(map[string]string)
	f.mu.Unlock()
	return nil
}

// ReadOUIEntries parses every recognised line of an OUI registry.
func ReadOUIEntries(r io.Reader) ([]OUIEntry, error) {
	var entries []OUIEntry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if prefix, vendor, ok := ParseOUILine(scanner.Text()); ok {
			entries = append(entries, OUIEntry{Prefix: prefix, Vendor: vendor})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// ParseOUILine understands the IEEE registry lines
//
//	00000C     (base 16)		Cisco Systems, Inc
//	00-00-0C   (hex)		Cisco Systems, Inc
//
// and the short form "00:00:0C Cisco Systems, Inc". Comments, blank lines and
// address continuation lines are rejected.
func ParseOUILine(line string) (prefix, vendor string, ok bool) {
	line = strings.TrimSpace(line)
	if len(line) < 8 || strings.HasPrefix(line, "#") {
		return "", "", false
	}

	for _, marker := range []string{"(base 16)", "(hex)"} {
		if i := strings.Index(line, marker); i > 0 {
			prefix = normalizeOUI(strings.TrimSpace(line[:i]))
			vendor = strings.TrimSpace(line[i+len(marker):])
			return prefix, vendor, prefix != "" && vendor != ""
		}
	}

	if line[2] != ':' && line[2] != '-' {
		return "", "", false
	}
	prefix = normalizeOUI(line[:8])
	vendor = strings.TrimSpace(line[8:])
	return prefix, vendor, prefix != "" && vendor != ""
}
