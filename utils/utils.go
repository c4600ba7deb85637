package utils

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/kasa-lang/kasa/token"
	"gopkg.in/yaml.v3"
)

// ErrorAt is a static (lex or parse) diagnostic attributed to a token.
type ErrorAt struct {
	Where token.Token
	Msg   string
}

func (e ErrorAt) Error() string {
	if e.Where.Kind == token.EOF {
		return fmt.Sprintf("[line %d] Error at end: %s", e.Where.Line, e.Msg)
	}
	return fmt.Sprintf("[line %d] Error at '%s': %s", e.Where.Line, e.Where.Lexeme, e.Msg)
}

type TestData struct {
	Label    string
	Enable   bool
	Input    string
	Expected map[string]string
}

func ReadTestData(s []byte) []TestData {
	var data []TestData
	if err := yaml.Unmarshal(s, &data); err != nil {
		panic(err)
	}

	// Remove disabled test cases.
	i := 0
	for _, d := range data {
		if d.Enable {
			data[i] = d
			i++
		}
	}
	data = data[:i]

	return data
}

// FindSourceFiles returns all .kasa files under dir.
func FindSourceFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".kasa") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}
