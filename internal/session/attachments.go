package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/entrykeeper/internal/common"
)

var errNoFileAccess = errors.New("no file access configured")

func (s *Session) AttachmentNames() []string {
	return s.attachments.Keys()
}

// Attachment returns a copy of the named attachment.
func (s *Session) Attachment(name string) ([]byte, bool) {
	data, ok := s.attachments.Value(name)
	if !ok {
		return nil, false
	}
	return bytes.Clone(data), true
}

// AddAttachment stores data under name, replacing any existing attachment
// with the same name.
func (s *Session) AddAttachment(name string, data []byte) error {
	if err := s.checkMutable("add attachment"); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("add attachment: empty name")
	}
	s.attachments.Set(name, data)
	return nil
}

func (s *Session) RemoveAttachment(name string) error {
	if err := s.checkMutable("remove attachment"); err != nil {
		return err
	}
	if !s.attachments.Remove(name) {
		return fmt.Errorf("remove attachment %q: %w", name, common.ErrAttachmentNotFound)
	}
	return nil
}

// ImportAttachment reads path through the file collaborator and adds it
// under its base name. On failure the working copy is unchanged.
func (s *Session) ImportAttachment(ctx context.Context, path string) (string, error) {
	if err := s.checkMutable("import attachment"); err != nil {
		return "", err
	}
	if s.files == nil {
		return "", fmt.Errorf("import attachment: %w: %w", common.ErrFileAccess, errNoFileAccess)
	}

	data, err := s.files.ReadFile(ctx, path)
	if err != nil {
		s.log.Warn(ctx, "attachment import failed", "path", path, "error", err)
		return "", fmt.Errorf("import attachment: %w", err)
	}

	name := filepath.Base(path)
	s.attachments.Set(name, data)
	return name, nil
}

// ExportAttachment writes the named attachment to dest. It is allowed in
// every mode. When dest exists and overwrite is false the returned error
// wraps common.ErrFileExists.
func (s *Session) ExportAttachment(ctx context.Context, name, dest string, overwrite bool) error {
	if err := s.checkOpen("export attachment"); err != nil {
		return err
	}
	data, ok := s.attachments.Value(name)
	if !ok {
		return fmt.Errorf("export attachment %q: %w", name, common.ErrAttachmentNotFound)
	}
	if s.files == nil {
		return fmt.Errorf("export attachment: %w: %w", common.ErrFileAccess, errNoFileAccess)
	}

	if err := s.files.WriteFile(ctx, dest, data, overwrite); err != nil {
		return fmt.Errorf("export attachment %q: %w", name, err)
	}
	return nil
}
