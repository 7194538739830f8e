package main

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"souq/internal/i18n"
	"souq/internal/params"

	"github.com/shopspring/decimal"
)

const maxFormBytes = 10 << 20

// parseForm accepts multipart and urlencoded bodies and decodes the
// non-file fields into dst by their form tags.
func parseForm(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	err := r.ParseMultipartForm(maxFormBytes)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		return fmt.Errorf("parse form: %w", err)
	}

	if err := formDecoder.Decode(dst, r.PostForm); err != nil {
		return err
	}
	return Validate.Struct(dst)
}

// bilingual holds the _en/_ar pair of one text field as sent in a form.
type bilingual struct {
	En *string
	Ar *string
}

func (b bilingual) set() bool { return b.En != nil || b.Ar != nil }

// merge overlays the sent values on base.
func (b bilingual) merge(base i18n.Text) i18n.Text {
	if b.En != nil {
		base.En = *b.En
	}
	if b.Ar != nil {
		base.Ar = *b.Ar
	}
	return base.Trimmed()
}

func (b bilingual) text() i18n.Text { return b.merge(i18n.Text{}) }

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

var errInvalidImage = errors.New("invalid image type")

// sniffMIME reads the first 512 bytes and rewinds the file.
func sniffMIME(file multipart.File) (string, error) {
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("seek reset: %w", err)
	}
	return http.DetectContentType(buf[:n]), nil
}

// uploadFormImage uploads the "image" file of a multipart form, if any.
// It returns "" when the form carries no image.
func (app *application) uploadFormImage(r *http.Request, folder, prefix string) (string, error) {
	if r.MultipartForm == nil {
		return "", nil
	}
	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		return "", nil
	}
	if app.images == nil {
		return "", errImagesDisabled
	}

	file, err := files[0].Open()
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	mime, err := sniffMIME(file)
	if err != nil {
		return "", err
	}
	if !allowedImageTypes[mime] {
		return "", fmt.Errorf("%w: %s", errInvalidImage, mime)
	}

	publicID := fmt.Sprintf("%s_%d", prefix, app.now().UnixNano())
	return app.images.Upload(r.Context(), file, folder, publicID)
}

// imageError answers a failed upload.
func (app *application) imageError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errInvalidImage) || errors.Is(err, errImagesDisabled) {
		app.badRequestResponse(w, r, err)
		return
	}
	app.internalServerError(w, r, fmt.Errorf("upload image: %w", err))
}

// cleanupForm drops temp files of a parsed multipart form.
func cleanupForm(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}

// deleteImage removes a stored image. Failures are only logged.
func (app *application) deleteImage(r *http.Request, imageURL string) {
	if imageURL == "" || app.images == nil {
		return
	}
	if err := app.images.Delete(r.Context(), imageURL); err != nil {
		app.logger.Warnw("image cleanup failed", "url", imageURL, "error", err)
	}
}

// formDate parses an optional date field. Date-only end values run to the
// end of that day.
func formDate(raw *string, end bool) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*raw)
	t, err := params.ParseDate(v)
	if err != nil || t == nil {
		return nil, err
	}
	if end {
		t = params.EndOfDay(v, t)
	}
	return t, nil
}

// formDecimal parses an optional decimal field.
func formDecimal(raw *string) (*decimal.Decimal, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(*raw))
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", *raw)
	}
	return &d, nil
}
