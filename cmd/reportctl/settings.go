package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/reportkit/internal/config"
)

// settings mirrors the advanced settings keys a report export reads.
// Absent keys keep the environment value.
type settings struct {
	CSVSeparator           *string `yaml:"csv:separator"`
	CSVQuoteValues         *bool   `yaml:"csv:quoteValues"`
	CSVEscapeFormulaValues *bool   `yaml:"csv:escapeFormulaValues"`
	WorkbookCreator        *string `yaml:"export:workbookCreator"`
	SheetName              *string `yaml:"export:sheetName"`
}

// parseSettings decodes a settings document. Unknown keys are rejected.
func parseSettings(r io.Reader) (settings, error) {
	var s settings
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return settings{}, fmt.Errorf("parse settings: %w", err)
	}
	return s, nil
}

func (s settings) apply(cfg *config.ExportConfig) {
	if s.CSVSeparator != nil {
		cfg.CSVSeparator = *s.CSVSeparator
	}
	if s.CSVQuoteValues != nil {
		cfg.CSVQuoteValues = *s.CSVQuoteValues
	}
	if s.CSVEscapeFormulaValues != nil {
		cfg.CSVEscapeFormulaValues = *s.CSVEscapeFormulaValues
	}
	if s.WorkbookCreator != nil {
		cfg.WorkbookCreator = *s.WorkbookCreator
	}
	if s.SheetName != nil {
		cfg.SheetName = *s.SheetName
	}
}

// loadConfig reads the environment, applies the settings file if given and
// validates the result.
func loadConfig(settingsFile string) (*config.Config, error) {
	cfg, err := config.LoadFunc(os.Getenv)
	if err != nil {
		return nil, err
	}

	if settingsFile != "" {
		data, err := os.ReadFile(settingsFile)
		if err != nil {
			return nil, fmt.Errorf("read settings: %w", err)
		}
		s, err := parseSettings(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		s.apply(&cfg.Export)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("settings %s: %w", settingsFile, err)
		}
	}
	return cfg, nil
}
