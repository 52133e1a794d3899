package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/akryshtal/conflict-sensitivity-eval/pkg/core"
)

// Load reads a dataset file (JSON array or JSONL) and validates it into a
// Store. The file is read exactly once; validation failures abort before
// any model calls happen.
func Load(path string) (*Store, error) {
	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}

	var samples []core.Sample
	switch format {
	case "json":
		samples, err = loadJSON(path)
	case "jsonl":
		samples, err = loadJSONL(path)
	default:
		err = errors.New("store: unsupported dataset format")
	}
	if err != nil {
		return nil, err
	}
	return New(samples)
}

func detectFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl":
		return "jsonl", nil
	case ".json":
		return "json", nil
	}

	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	for {
		b, err := reader.ReadByte()
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(string(b)) == "" {
			continue
		}
		if b == '[' {
			return "json", nil
		}
		if b == '{' {
			return "jsonl", nil
		}
		return "", errors.New("store: unsupported dataset format")
	}
}

func loadJSON(path string) ([]core.Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var samples []core.Sample
	if err := json.NewDecoder(file).Decode(&samples); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", path, err)
	}
	return samples, nil
}

func loadJSONL(path string) ([]core.Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 1024*1024)
	scanner.Buffer(buf, 1024*1024)

	var samples []core.Sample
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var sample core.Sample
		if err := json.Unmarshal([]byte(raw), &sample); err != nil {
			return nil, fmt.Errorf("store: %s line %d: %w", path, line, err)
		}
		samples = append(samples, sample)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}
