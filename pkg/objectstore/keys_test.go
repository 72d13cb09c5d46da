package objectstore

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"profile-service/internal/models"
)

func TestAvatarKey(t *testing.T) {
	key := AvatarKey(models.KindDriver, "C:\\photos\\my face.PNG", ".png")
	assert.Regexp(t, regexp.MustCompile(`^avatars/drivers/myface_[0-9a-f]{8}\.png$`), key)

	key = AvatarKey(models.KindUser, "../../etc/passwd", ".jpg")
	assert.Regexp(t, regexp.MustCompile(`^avatars/users/passwd_[0-9a-f]{8}\.jpg$`), key)

	key = AvatarKey(models.KindUser, "???.webp", ".webp")
	assert.Regexp(t, regexp.MustCompile(`^avatars/users/avatar_[0-9a-f]{8}\.webp$`), key)

	assert.NotEqual(t, AvatarKey(models.KindUser, "a.png", ".png"), AvatarKey(models.KindUser, "a.png", ".png"))
}

func TestExtension(t *testing.T) {
	ext, ok := Extension("image/webp")
	assert.True(t, ok)
	assert.Equal(t, ".webp", ext)

	_, ok = Extension("image/gif")
	assert.False(t, ok)
}
