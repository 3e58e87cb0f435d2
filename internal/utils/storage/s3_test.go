package storage

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	put     *s3.PutObjectInput
	body    []byte
	deleted []string
}

func (f *fakeObjects) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.put = params
	f.body, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func fileHeader(t *testing.T, name, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="food_image"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["food_image"][0]
}

func TestUploadFile(t *testing.T) {
	objects := &fakeObjects{}
	s := NewAwsS3WithClient(objects, "foodshare", "us-east-1")

	key, err := s.UploadFile("abc", fileHeader(t, "bread.PNG", "image/png", []byte("png")), "/donations/", AllowImage...)
	require.NoError(t, err)
	assert.Equal(t, "donations/abc.png", key)
	assert.Equal(t, "image/png", aws.ToString(objects.put.ContentType))
	assert.Equal(t, []byte("png"), objects.body)

	_, err = s.UploadFile("abc", fileHeader(t, "notes.txt", "text/plain", []byte("x")), "donations", AllowImage...)
	assert.ErrorIs(t, err, ErrFileTypeInvalid)

	big := fileHeader(t, "big.png", "image/png", []byte("x"))
	big.Size = maxUploadSize + 1
	_, err = s.UploadFile("abc", big, "donations", AllowImage...)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestPublicLinks(t *testing.T) {
	objects := &fakeObjects{}
	s := NewAwsS3WithClient(objects, "foodshare", "us-east-1")

	link := s.GetPublicLinkKey("donations/abc.png")
	assert.Equal(t, "https://foodshare.s3.us-east-1.amazonaws.com/donations/abc.png", link)
	assert.Equal(t, "donations/abc.png", s.GetObjectKeyFromLink(link))
	assert.Empty(t, s.GetObjectKeyFromLink("https://elsewhere.example/abc.png"))

	require.NoError(t, s.DeleteFile("donations/abc.png"))
	assert.Equal(t, []string{"donations/abc.png"}, objects.deleted)
}

func TestNotConfigured(t *testing.T) {
	s := NewAwsS3WithClient(nil, "", "")
	_, err := s.UploadFile("abc", &multipart.FileHeader{}, "donations")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, s.DeleteFile("x"), ErrNotConfigured)
}
