package uploads

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-reunite/internal/ports/media"
)

type stubUploader struct{ key, ct string }

func (u *stubUploader) PresignPut(ctx context.Context, key, contentType string) (media.PresignedUpload, error) {
	u.key, u.ct = key, contentType
	return media.PresignedUpload{UploadURL: "https://bucket/" + key + "?sig", Method: "PUT", Key: key}, nil
}

func TestService_PresignUpload(t *testing.T) {
	up := &stubUploader{}
	svc := NewService(up)

	res, err := svc.PresignUpload(context.Background(), "u1", "Image/PNG", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(up.key, "pets/u1/"), up.key)
	assert.True(t, strings.HasSuffix(up.key, ".png"), up.key)
	assert.Equal(t, "image/png", up.ct)
	assert.Equal(t, up.key, res.Key)

	_, err = svc.PresignUpload(context.Background(), "u1", "image/webp", KindAvatar)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(up.key, "avatars/u1/"))
}

func TestService_PresignUpload_Rejects(t *testing.T) {
	svc := NewService(&stubUploader{})
	ctx := context.Background()

	_, err := svc.PresignUpload(ctx, "u1", "application/pdf", KindPet)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.PresignUpload(ctx, "u1", "image/gif", KindPet)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.PresignUpload(ctx, "../u1", "image/jpeg", KindPet)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.PresignUpload(ctx, "u1", "image/jpeg", "secrets")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewService(nil).PresignUpload(ctx, "u1", "image/jpeg", KindPet)
	assert.ErrorIs(t, err, ErrDisabled)
}
