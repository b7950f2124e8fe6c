// Package history persists submitted command lines to a file.
package history

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"sync"
)

// DefaultMaxItems is used when New is given a non-positive limit.
const DefaultMaxItems = 1000

type History struct {
	items    []string
	file     string
	maxItems int
	mu       sync.Mutex
}

// New returns an empty History backed by file and holding at most maxItems
// entries.
func New(file string, maxItems int) *History {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}

	return &History{
		file:     file,
		maxItems: maxItems,
	}
}

// Load reads the history file, replacing any entries in memory. A missing
// file is not an error.
func (h *History) Load() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	file, err := os.Open(h.file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()

	var items []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		items = append(items, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	h.items = items
	h.trim()

	return nil
}

func (h *History) Add(item string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.items = append(h.items, item)
	h.trim()
}

func (h *History) GetAll() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]string{}, h.items...)
}

// Save writes all entries to the history file.
func (h *History) Save() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	file, err := os.OpenFile(h.file, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, item := range h.items {
		if _, err := writer.WriteString(item + "\n"); err != nil {
			return err
		}
	}

	return writer.Flush()
}

func (h *History) trim() {
	if len(h.items) > h.maxItems {
		h.items = h.items[len(h.items)-h.maxItems:]
	}
}
