package service

import (
	"context"
	"errors"

	"confrarias/internal/pkg"
	"confrarias/internal/storage"

	"go.uber.org/zap"
)

// Upload folders. Keys are "<folder>/<uuid>.jpg".
const (
	FolderUploads     = "uploads"
	FolderBanners     = "banners"
	FolderLogos       = "logos"
	FolderGallery     = "gallery"
	FolderDiscoveries = "discoveries"
	FolderPosts       = "posts"
	FolderEvents      = "events"
)

var uploadFolders = map[string]bool{
	FolderUploads:     true,
	FolderBanners:     true,
	FolderLogos:       true,
	FolderGallery:     true,
	FolderDiscoveries: true,
	FolderPosts:       true,
	FolderEvents:      true,
}

type UploadService struct {
	store storage.Uploader
	opts  pkg.CompressOptions
	log   *zap.Logger
}

func NewUploadService(store storage.Uploader, opts pkg.CompressOptions, log *zap.Logger) *UploadService {
	return &UploadService{store: store, opts: opts, log: log}
}

// UploadImage compresses the image and stores it, returning its public URL.
func (s *UploadService) UploadImage(ctx context.Context, caller Caller, folder string, data []byte) (string, error) {
	if err := Authorize(caller, ActionUpload, "").Err(); err != nil {
		return "", err
	}
	if folder == "" {
		folder = FolderUploads
	}
	if !uploadFolders[folder] {
		return "", invalid("Pasta de destino inválida.")
	}
	if len(data) == 0 {
		return "", invalid("Ficheiro vazio.")
	}

	out, err := pkg.CompressImage(data, s.opts)
	if err != nil {
		if errors.Is(err, pkg.ErrNotAnImage) {
			return "", invalid("O ficheiro não é uma imagem válida.")
		}
		if errors.Is(err, pkg.ErrImageTooLarge) {
			return "", invalid("A imagem tem dimensões demasiado grandes.")
		}
		s.log.Error("image compression failed", zap.Error(err))
		return "", invalid("Não foi possível processar a imagem.")
	}

	res, err := s.store.Upload(ctx, storage.UploadInput{
		Key:          folder + "/" + pkg.NewID() + ".jpg",
		Body:         out,
		ContentType:  "image/jpeg",
		CacheControl: "public, max-age=31536000, immutable",
	})
	if err != nil {
		s.log.Error("image upload failed", zap.String("folder", folder), zap.Error(err))
		return "", upstream("Não foi possível carregar a imagem.")
	}
	s.log.Debug("image uploaded",
		zap.String("url", res.URL),
		zap.Int("original_bytes", len(data)),
		zap.Int("stored_bytes", len(out)),
	)
	return res.URL, nil
}
