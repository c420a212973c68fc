package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

var (
	pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}
	pdfHeader = []byte("%PDF-1.7\n%âãÏÓ\n1 0 obj\n")
)

func TestSaveStoresRecognisedDocument(t *testing.T) {
	root := t.TempDir()
	s, err := NewDocumentStorage(root, 1)
	require.NoError(t, err)
	userID := uuid.New()

	content := append(append([]byte{}, pdfHeader...), bytes.Repeat([]byte("x"), 1000)...)
	doc, err := s.Save(context.Background(), userID, entity.DocumentIdentity, "../../rg.pdf", bytes.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", doc.MimeType)
	assert.Equal(t, int64(len(content)), doc.SizeBytes)
	assert.Equal(t, "rg.pdf", doc.OriginalName)
	assert.Equal(t, userID, doc.UserID)

	stored, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(doc.Path)))
	require.NoError(t, err)
	assert.Equal(t, content, stored)
}

func TestSaveRejectsUnknownContent(t *testing.T) {
	s, err := NewDocumentStorage(t.TempDir(), 1)
	require.NoError(t, err)

	_, err = s.Save(context.Background(), uuid.New(), entity.DocumentIdentity, "rg.pdf", bytes.NewReader([]byte("plain text pretending to be pdf")))
	if !apperror.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = s.Save(context.Background(), uuid.New(), entity.DocumentIdentity, "empty.png", bytes.NewReader(nil))
	if !apperror.IsValidation(err) {
		t.Fatalf("expected validation error for empty file, got %v", err)
	}
}

func TestSaveEnforcesSizeLimit(t *testing.T) {
	root := t.TempDir()
	s, err := NewDocumentStorage(root, 1)
	require.NoError(t, err)
	userID := uuid.New()

	content := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 1024*1024)...)
	_, err = s.Save(context.Background(), userID, entity.DocumentProofOfAddress, "conta.png", bytes.NewReader(content))
	if !apperror.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(root, userID.String()))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeleteIgnoresMissingFile(t *testing.T) {
	s, err := NewDocumentStorage(t.TempDir(), 1)
	require.NoError(t, err)
	assert.NoError(t, s.Delete(context.Background(), "nobody/missing.pdf"))
}
