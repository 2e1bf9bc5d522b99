// Package env reads settings from the process environment with a .env file as a
// fallback. Variables already set in the environment always win over the file.
package env

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Processes a .env file from a given filename.
func ProcessEnv(filename string) (map[string]string, error) {
	return godotenv.Read(filename)
}

// Source looks keys up in the process environment, then in a parsed .env file.
type Source struct {
	file map[string]string
}

// Load parses filename if it exists. A missing file yields a Source backed by the
// process environment alone.
func Load(filename string) (*Source, error) {
	s := &Source{file: map[string]string{}}
	if filename == "" {
		return s, nil
	}
	vals, err := ProcessEnv(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	s.file = vals
	return s, nil
}

// FromMap builds a Source over fixed values, used in tests.
func FromMap(vals map[string]string) *Source {
	return &Source{file: vals}
}

func (s *Source) Get(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok {
		return v, true
	}
	v, ok := s.file[key]
	return v, ok
}
