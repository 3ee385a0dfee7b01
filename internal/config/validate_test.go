package config

import (
	"testing"
)

func TestValidateDetailed_Valid(t *testing.T) {
	cfg := DefaultConfig()
	result := cfg.ValidateDetailed()
	if !result.IsValid() {
		t.Errorf("expected valid config, got errors: %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", result.Warnings)
	}
}

func TestValidateDetailed_MissingInclude(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Include = nil
	result := cfg.ValidateDetailed()
	if result.IsValid() {
		t.Error("expected invalid config")
	}
}

func TestValidateDetailed_DisabledTransformsWarning(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Transform = TransformConfig{}
	result := cfg.ValidateDetailed()
	if len(result.Warnings) == 0 {
		t.Error("expected warning about disabled transforms")
	}
}

func TestValidateDetailed_ReadmeIsTemplate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Links.Template = cfg.Links.Readme
	result := cfg.ValidateDetailed()
	if result.IsValid() {
		t.Error("expected error when readme and template are the same file")
	}
}

func TestValidateDetailed_WeirdIncludePattern(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Include = []string{"types"}
	result := cfg.ValidateDetailed()
	if len(result.Warnings) == 0 {
		t.Error("expected warning for pattern without wildcard")
	}
}

func TestValidateDetailed_BaseURLWithoutPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "src"
	result := cfg.ValidateDetailed()
	if len(result.Warnings) == 0 {
		t.Error("expected warning for baseUrl without paths")
	}
}
