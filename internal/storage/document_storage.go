package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

// headerSize столько байт filetype нужно для распознавания всех форматов.
const headerSize = 262

// allowedDocumentTypes MIME по магическим байтам -> расширение файла на диске.
var allowedDocumentTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// DocumentStorage файловое хранилище документов верификации.
type DocumentStorage struct {
	rootPath       string
	maxUploadBytes int64
}

func NewDocumentStorage(rootPath string, maxUploadMB int64) (*DocumentStorage, error) {
	if err := os.MkdirAll(rootPath, 0o750); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &DocumentStorage{
		rootPath:       rootPath,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// Save проверяет реальный тип файла и сохраняет его под каталогом пользователя.
// Path в результате относительный.
func (s *DocumentStorage) Save(ctx context.Context, userID uuid.UUID, kind, originalName string, r io.Reader) (*entity.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	header := make([]byte, headerSize)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("storage: не удалось прочитать файл: %w", err)
	}
	header = header[:n]
	if n == 0 {
		return nil, apperror.Validation("файл пуст", apperror.FieldError{Field: kind, Message: "пустой файл"})
	}

	detected, err := filetype.Match(header)
	if err != nil || detected == filetype.Unknown {
		return nil, apperror.Validation("не удалось определить тип файла",
			apperror.FieldError{Field: kind, Message: "допустимы JPEG, PNG, WEBP или PDF"})
	}
	mimeType := detected.MIME.Value
	ext, ok := allowedDocumentTypes[mimeType]
	if !ok {
		return nil, apperror.Validation(fmt.Sprintf("неподдерживаемый тип файла (%s)", mimeType),
			apperror.FieldError{Field: kind, Message: "допустимы JPEG, PNG, WEBP или PDF"})
	}

	id := uuid.New()
	userDir := filepath.Join(s.rootPath, userID.String())
	if err := os.MkdirAll(userDir, 0o750); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог пользователя: %w", err)
	}

	fileName := fmt.Sprintf("%s_%s%s", kind, id.String(), ext)
	targetPath := filepath.Join(userDir, fileName)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return nil, fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limited := io.LimitedReader{R: io.MultiReader(bytes.NewReader(header), r), N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limited)
	if err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("storage: ошибка записи файла: %w", err)
	}
	if written > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return nil, apperror.Validation(fmt.Sprintf("размер файла превышает лимит %d МБ", s.maxUploadBytes/1024/1024),
			apperror.FieldError{Field: kind, Message: "слишком большой файл"})
	}

	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}
	if err := os.Rename(tempPath, targetPath); err != nil {
		return nil, fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return &entity.Document{
		ID:           id,
		UserID:       userID,
		Kind:         kind,
		Path:         filepath.ToSlash(filepath.Join(userID.String(), fileName)),
		OriginalName: sanitizeFilename(originalName),
		MimeType:     mimeType,
		SizeBytes:    written,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// Delete удаляет файл; отсутствие файла ошибкой не считается.
func (s *DocumentStorage) Delete(ctx context.Context, relativePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := filepath.Join(s.rootPath, filepath.FromSlash(relativePath))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" || name == "." {
		name = "document"
	}
	return name
}
