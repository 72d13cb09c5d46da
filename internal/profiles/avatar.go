package profiles

import (
	"context"
	"errors"
	"io"
	"net/http"

	"profile-service/internal/models"
	"profile-service/internal/respond"
	"profile-service/pkg/logger"
	"profile-service/pkg/objectstore"
)

// Uploader stores avatar images. *objectstore.Store implements it.
type Uploader interface {
	PutAvatar(ctx context.Context, key, contentType string, size int64, r io.Reader) error
	MaxSize() int64
}

// AvatarHandler accepts avatar uploads and answers with the object key to
// put in a profile.
type AvatarHandler struct {
	up  Uploader
	rs  *respond.Responder
	log logger.ILogger
}

func NewAvatarHandler(up Uploader, rs *respond.Responder, log logger.ILogger) *AvatarHandler {
	return &AvatarHandler{up: up, rs: rs, log: log}
}

type avatarResponse struct {
	Avatar string `json:"avatar"`
}

// Upload handles POST /avatars?kind={user|driver} with a multipart "avatar" file.
func (h *AvatarHandler) Upload(w http.ResponseWriter, r *http.Request) {
	kind, err := models.ParseKind(r.URL.Query().Get("kind"))
	if err != nil {
		respond.JSON(w, http.StatusBadRequest, respond.Body{Msg: "kind is invalid", Field: "kind"})
		return
	}

	// room for the multipart envelope around the file
	r.Body = http.MaxBytesReader(w, r.Body, h.up.MaxSize()+1<<20)
	file, header, err := r.FormFile("avatar")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.JSON(w, http.StatusRequestEntityTooLarge, respond.Body{Msg: "avatar is too large", Field: "avatar"})
			return
		}
		respond.JSON(w, http.StatusBadRequest, respond.Body{Msg: "avatar is required", Field: "avatar"})
		return
	}
	defer file.Close()

	if header.Size > h.up.MaxSize() {
		respond.JSON(w, http.StatusRequestEntityTooLarge, respond.Body{Msg: "avatar is too large", Field: "avatar"})
		return
	}

	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		h.rs.Error(w, r, err)
		return
	}
	contentType := http.DetectContentType(sniff[:n])
	ext, ok := objectstore.Extension(contentType)
	if !ok {
		respond.JSON(w, http.StatusBadRequest, respond.Body{Msg: "avatar type is not allowed", Field: "avatar"})
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		h.rs.Error(w, r, err)
		return
	}

	key := objectstore.AvatarKey(kind, header.Filename, ext)
	if err := h.up.PutAvatar(r.Context(), key, contentType, header.Size, file); err != nil {
		if errors.Is(err, objectstore.ErrInvalidArgument) {
			respond.JSON(w, http.StatusBadRequest, respond.Body{Msg: "avatar is invalid", Field: "avatar"})
			return
		}
		h.rs.Error(w, r, err)
		return
	}

	h.log.Info("avatar uploaded", logger.String("key", key), logger.Int64("size", header.Size))
	respond.JSON(w, http.StatusCreated, avatarResponse{Avatar: key})
}
