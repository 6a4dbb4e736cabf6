package stylist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// upload issues a multipart/form-data POST carrying a "file" part and a
// "config" part holding the JSON-serialized options. The form writer's
// boundary content type is used verbatim; nothing else sets Content-Type.
// Uploads run under the longer UploadTimeout.
func (c *Client) upload(ctx context.Context, path, filename string, file io.Reader, config any) (json.RawMessage, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	filePart, err := form.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(filePart, file); err != nil {
		return nil, fmt.Errorf("copy file %q into form: %w", filename, err)
	}

	if config != nil {
		configJSON, err := json.Marshal(config)
		if err != nil {
			return nil, fmt.Errorf("marshal upload config: %w", err)
		}
		if err := form.WriteField("config", string(configJSON)); err != nil {
			return nil, fmt.Errorf("write config part: %w", err)
		}
	}

	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("finalize form: %w", err)
	}

	return c.roundTrip(ctx, http.MethodPost, path, &buf, form.FormDataContentType(), c.UploadTimeout)
}
