package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
)

// maxImageSize caps avatar and image-message uploads. The server enforces
// the same limit; checking here is a fast fail that skips the round-trip.
const maxImageSize = 16 << 20 // 16 MiB

// allowedImageMimes are the image content types the server accepts.
var allowedImageMimes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
}

var (
	ErrFileTooLarge = fmt.Errorf("file exceeds the %d MiB limit", maxImageSize>>20)
	ErrBadImageType = errors.New("only PNG, JPG, JPEG and GIF images are allowed")
	ErrNoImage      = errors.New("no image selected")
)

// ValidateImageFile checks size and sniffed content type before any bytes
// leave the machine. The server remains authoritative.
func ValidateImageFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoImage, err)
	}
	if info.Size() > maxImageSize {
		return ErrFileTooLarge
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoImage, err)
	}
	defer f.Close()

	// http.DetectContentType needs at most 512 bytes.
	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return fmt.Errorf("%w: %v", ErrNoImage, err)
	}
	if !allowedImageMimes[http.DetectContentType(head[:n])] {
		return ErrBadImageType
	}
	return nil
}

// UploadAvatar uploads an image as the user's new avatar and returns the
// stored avatar reference.
func (c *Client) UploadAvatar(ctx context.Context, path string) (string, error) {
	if err := ValidateImageFile(path); err != nil {
		return "", err
	}
	var resp avatarResponse
	if err := c.postMultipart(ctx, "/api/upload/avatar", path, "avatar", nil, &resp); err != nil {
		return "", err
	}
	return resp.Avatar, nil
}

// SendImageMessage posts an image (with optional caption) into a channel.
// The sent message is not returned to the rendered list here; it arrives
// through the push feed like every other message.
func (c *Client) SendImageMessage(ctx context.Context, channelID int, path, caption string) error {
	if err := ValidateImageFile(path); err != nil {
		return err
	}
	fields := map[string]string{"channel_id": strconv.Itoa(channelID)}
	if caption != "" {
		fields["content"] = caption
	}
	var resp sendImageResponse
	return c.postMultipart(ctx, "/api/send_image_message", path, "image", fields, &resp)
}

// postMultipart streams a file plus form fields as multipart/form-data.
func (c *Client) postMultipart(ctx context.Context, apiPath, filePath, fileField string, fields map[string]string, out envelopeCarrier) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(fileField, filepath.Base(filePath))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("%w: %v", ErrTransport, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiPath, &buf)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req, out)
}
