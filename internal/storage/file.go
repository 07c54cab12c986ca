package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/jwalitptl/dentalcare/internal/model"
	apperrors "github.com/jwalitptl/dentalcare/pkg/errors"
)

// ctxReader aborts a read once its context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// SaveFile reads r to the end and returns an attachment whose URL is a
// base64 data URL. When mimeType is empty the type is sniffed from the
// content. Size and type are not restricted here.
func (a *Adapter) SaveFile(ctx context.Context, name, mimeType string, r io.Reader) (model.Attachment, error) {
	data, err := io.ReadAll(ctxReader{ctx: ctx, r: r})
	if err != nil {
		if ctx.Err() != nil {
			return model.Attachment{}, ctx.Err()
		}
		return model.Attachment{}, apperrors.Internal(fmt.Errorf("read %s: %w", name, err))
	}

	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mimetype.Detect(data).String()
	}

	return model.Attachment{
		ID:         a.newID("f"),
		Name:       name,
		URL:        EncodeDataURL(mimeType, data),
		Type:       mimeType,
		Size:       int64(len(data)),
		UploadedAt: a.now().UTC(),
	}, nil
}

// EncodeDataURL renders data as "data:<mime>;base64,<payload>".
func EncodeDataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL reverses EncodeDataURL. Only base64 data URLs are accepted.
func DecodeDataURL(url string) (mimeType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return "", nil, apperrors.BadRequest("not a data URL", nil)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, apperrors.BadRequest("malformed data URL", nil)
	}
	mimeType, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, apperrors.BadRequest("data URL is not base64 encoded", nil)
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, apperrors.BadRequest("malformed base64 payload", err)
	}
	return mimeType, data, nil
}
