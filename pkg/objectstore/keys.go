package objectstore

import (
	"path"
	"strings"

	"github.com/google/uuid"

	"profile-service/internal/models"
)

// DefaultMaxSize is 5 MiB.
const DefaultMaxSize = 5 << 20

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Extension returns the file extension for an allowed image content type.
func Extension(contentType string) (string, bool) {
	ext, ok := allowedTypes[contentType]
	return ext, ok
}

// AvatarKey builds avatars/{users|drivers}/{basename}_{8 random chars}{ext}.
func AvatarKey(kind models.Kind, filename, ext string) string {
	dir := "users"
	if kind == models.KindDriver {
		dir = "drivers"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return path.Join("avatars", dir, baseName(filename)+"_"+suffix+ext)
}

// AvatarDir is the key prefix of avatars for kind.
func AvatarDir(kind models.Kind) string {
	if kind == models.KindDriver {
		return "avatars/drivers/"
	}
	return "avatars/users/"
}

func baseName(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.TrimSuffix(name, path.Ext(name))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
		if b.Len() >= 32 {
			break
		}
	}
	if b.Len() == 0 {
		return "avatar"
	}
	return b.String()
}
