package adapter

import (
	"context"
	"fmt"
	"os"

	jsonmerge "github.com/apapsch/go-jsonmerge/v2"
)

// RawSystemConfig returns the bytes of the currently configured
// SystemConfigPath document, for inspection over the HTTP API.
func (s *Service) RawSystemConfig() ([]byte, error) {
	data, err := os.ReadFile(s.cfg.LSH.SystemConfigPath)
	if err != nil {
		return nil, fmt.Errorf("reading system config %s: %w", s.cfg.LSH.SystemConfigPath, err)
	}
	return data, nil
}

// PatchSystemConfig applies an RFC 7386 JSON merge patch to the
// on-disk SystemConfig document, persists the merged result, and
// reloads it into the orchestrator. This lets an operator edit a
// single button's actor list without re-submitting the whole document.
func (s *Service) PatchSystemConfig(ctx context.Context, patch []byte) error {
	current, err := s.RawSystemConfig()
	if err != nil {
		return err
	}

	merger := jsonmerge.Merger{}
	merged, err := merger.MergeBytes(current, patch)
	if err != nil {
		return fmt.Errorf("applying config merge patch: %w", err)
	}

	if err := os.WriteFile(s.cfg.LSH.SystemConfigPath, merged, 0o644); err != nil {
		return fmt.Errorf("writing merged system config: %w", err)
	}

	return s.ReloadSystemConfig(ctx)
}
